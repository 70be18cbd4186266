// SPDX-License-Identifier: MIT
// Package sortutil provides deterministic ordering helpers for scan output
// and persisted dataset records.
package sortutil

import (
	"sort"

	"github.com/skaphos/tagscout/internal/model"
)

// LessRepoTag orders by repository name first, then tag name, so repeated
// scans of the same fleet render and diff stably.
func LessRepoTag(repoI, tagI, repoJ, tagJ string) bool {
	if repoI == repoJ {
		return tagI < tagJ
	}
	return repoI < repoJ
}

// SortMatches orders tag matches by repository name, then tag name.
func SortMatches(matches []model.TagMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		return LessRepoTag(matches[i].Repository.Name, matches[i].TagName, matches[j].Repository.Name, matches[j].TagName)
	})
}

// SortRecords orders repository tag records by repository name.
func SortRecords(records []model.RepositoryTagRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].RepositoryName < records[j].RepositoryName
	})
}

// SortedTagNames returns the tag names of a dataset in ascending order.
func SortedTagNames(tags map[string]model.TagGroup) []string {
	names := make([]string, 0, len(tags))
	for name := range tags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
