// Package aggregate folds scan results into the tag-keyed dataset form and
// maintains its derived statistics.
package aggregate

import (
	"time"

	"github.com/skaphos/tagscout/internal/model"
	"github.com/skaphos/tagscout/internal/sortutil"
	"github.com/skaphos/tagscout/internal/strutil"
)

// Scan types recorded in dataset metadata.
const (
	ScanTypeSpecificTag = "specific_tag"
	ScanTypePattern     = "pattern"
)

// Aggregate converts one scan result into an aggregated dataset. Matches are
// grouped by tag name in first-seen order; deployment annotations default to
// "unknown" until Enhance is applied.
func Aggregate(res model.ScanResult, organization, scanType string) model.AggregatedDataset {
	if organization == "" {
		organization = "unknown"
	}
	if scanType == "" {
		scanType = ScanTypeSpecificTag
	}

	tags := make(map[string]model.TagGroup)
	var order []string
	for _, match := range res.Matches {
		group, ok := tags[match.TagName]
		if !ok {
			group = model.TagGroup{TagName: match.TagName}
			order = append(order, match.TagName)
		}
		group.Repositories = upsertRecord(group.Repositories, newRecord(match))
		tags[match.TagName] = group
	}
	for name, group := range tags {
		group.Summary = summarize(group.Repositories)
		tags[name] = group
	}

	return model.AggregatedDataset{
		Metadata: model.Metadata{
			LastUpdated:              time.Now().UTC().Format(time.RFC3339),
			Organization:             organization,
			TotalRepositoriesScanned: res.RepositoriesScanned,
			ScanType:                 scanType,
			SchemaVersion:            model.SchemaVersion,
		},
		Tags:       tags,
		Statistics: computeStatistics(tags, order),
	}
}

// newRecord converts a tag match into its persisted record form with
// deployment annotations defaulted.
func newRecord(match model.TagMatch) model.RepositoryTagRecord {
	return model.RepositoryTagRecord{
		RepositoryName:   match.Repository.Name,
		CommitID:         match.CommitID,
		CommitShort:      strutil.ShortCommit(match.CommitID),
		Author:           match.Author,
		AuthorEmail:      strutil.ExtractEmail(match.Author),
		Date:             match.CommittedAt,
		Message:          match.Message,
		RepositoryURL:    match.Repository.OriginURL,
		TagURL:           match.TagRefURL,
		DeploymentStatus: model.DeploymentUnknown,
		Environment:      model.EnvironmentUnknown,
		RepositoryPath:   match.Repository.LocalPath,
	}
}

// upsertRecord keeps repository names unique within a group: re-adding a
// repository replaces its record instead of duplicating it.
func upsertRecord(records []model.RepositoryTagRecord, record model.RepositoryTagRecord) []model.RepositoryTagRecord {
	for i := range records {
		if records[i].RepositoryName == record.RepositoryName {
			records[i] = record
			return records
		}
	}
	return append(records, record)
}

// summarize derives the per-group figures from its records.
func summarize(records []model.RepositoryTagRecord) model.TagSummary {
	return model.TagSummary{
		TotalRepositories:      len(records),
		LatestCommitDate:       latestDate(records),
		DeploymentEnvironments: environments(records),
	}
}

// latestDate is the lexicographic max of the non-empty record dates. The
// comparison is only sound while all timestamps share one offset and
// precision, which holds for the sources this engine consumes.
func latestDate(records []model.RepositoryTagRecord) string {
	latest := ""
	for _, r := range records {
		if r.Date > latest {
			latest = r.Date
		}
	}
	return latest
}

// environments lists the distinct deployment environments of a group,
// excluding the "unknown" and "none" placeholders.
func environments(records []model.RepositoryTagRecord) []string {
	seen := make(map[string]struct{})
	envs := []string{}
	for _, r := range records {
		if r.Environment == model.EnvironmentUnknown || r.Environment == model.EnvironmentNone {
			continue
		}
		if _, ok := seen[r.Environment]; ok {
			continue
		}
		seen[r.Environment] = struct{}{}
		envs = append(envs, r.Environment)
	}
	return envs
}

// computeStatistics derives dataset statistics from the tags map. The order
// slice supplies the deterministic tie-break for most_common_tag: the
// earlier tag name wins on equal repository counts.
func computeStatistics(tags map[string]model.TagGroup, order []string) model.DatasetStatistics {
	stats := model.DatasetStatistics{TotalUniqueTags: len(tags)}

	repos := make(map[string]struct{})
	bestCount := 0
	for _, name := range order {
		group, ok := tags[name]
		if !ok {
			continue
		}
		for _, r := range group.Repositories {
			repos[r.RepositoryName] = struct{}{}
		}
		if group.Summary.TotalRepositories > bestCount {
			bestCount = group.Summary.TotalRepositories
			stats.MostCommonTag = name
		}
		if group.Summary.LatestCommitDate > stats.LatestTagDate {
			stats.LatestTagDate = group.Summary.LatestCommitDate
		}
	}
	stats.TotalRepositoriesWithTags = len(repos)
	return stats
}

// Recompute rebuilds the statistics of a dataset from its tags map using
// ascending tag-name order as the tie-break. Statistics are derived state
// and must never be edited directly.
func Recompute(ds *model.AggregatedDataset) {
	ds.Statistics = computeStatistics(ds.Tags, sortutil.SortedTagNames(ds.Tags))
}
