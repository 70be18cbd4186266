package aggregate

import (
	"github.com/skaphos/tagscout/internal/model"
	"github.com/skaphos/tagscout/internal/sortutil"
)

// Merge folds an incoming dataset into an existing one. The incoming
// metadata wins verbatim, and any tag present in both is fully replaced by
// the incoming group (last-write-wins at tag granularity): a tag re-scanned
// with fewer repositories shows fewer repositories after the merge.
// Statistics are always recomputed from the merged tags, and neither input
// is mutated.
func Merge(existing, incoming model.AggregatedDataset) model.AggregatedDataset {
	out := existing.Clone()
	out.Metadata = incoming.Metadata
	if out.Tags == nil {
		out.Tags = make(map[string]model.TagGroup, len(incoming.Tags))
	}
	for name, group := range incoming.Tags {
		out.Tags[name] = group.Clone()
	}
	out.Statistics = computeStatistics(out.Tags, sortutil.SortedTagNames(out.Tags))
	return out
}
