// SPDX-License-Identifier: MIT
package model

// Clone returns a deep copy of the dataset. Merge and enhancement operate
// on copies so callers holding the pre-merge snapshot are never aliased.
func (d AggregatedDataset) Clone() AggregatedDataset {
	out := AggregatedDataset{
		Metadata:   d.Metadata,
		Statistics: d.Statistics,
	}
	if d.Tags != nil {
		out.Tags = make(map[string]TagGroup, len(d.Tags))
		for name, group := range d.Tags {
			out.Tags[name] = group.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the tag group.
func (g TagGroup) Clone() TagGroup {
	out := TagGroup{
		TagName: g.TagName,
		Summary: g.Summary,
	}
	if g.Repositories != nil {
		out.Repositories = append([]RepositoryTagRecord(nil), g.Repositories...)
	}
	if g.Summary.DeploymentEnvironments != nil {
		out.Summary.DeploymentEnvironments = append([]string(nil), g.Summary.DeploymentEnvironments...)
	}
	return out
}
