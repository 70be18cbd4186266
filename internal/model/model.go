// Package model defines the core data types used throughout TagScout.
package model

// SchemaVersion is the current version of the aggregated dataset schema.
const SchemaVersion = "1.0.0"

// Deployment status defaults applied to repository tag records.
const (
	DeploymentUnknown     = "unknown"
	DeploymentNotDeployed = "not_deployed"
	EnvironmentUnknown    = "unknown"
	EnvironmentNone       = "none"
)

// RepositoryRef identifies one scannable repository.
type RepositoryRef struct {
	// Name is the repository name, unique within a single scan.
	Name string `json:"name"`
	// OriginURL is the canonical URL of the repository (web URL for hosted
	// repos, file:// URL for local checkouts).
	OriginURL string `json:"origin_url"`
	// LocalPath is the filesystem path for local checkouts. Empty for
	// remote repositories.
	LocalPath string `json:"local_path,omitempty"`
}

// TagInfo is the commit metadata resolved for a single tag.
type TagInfo struct {
	CommitID string `json:"commit_id"`
	Author   string `json:"author,omitempty"`
	// CommittedAt is an ISO-8601 timestamp string.
	CommittedAt string `json:"committed_at,omitempty"`
	// Message is the first line of the commit message.
	Message string `json:"message,omitempty"`
}

// TagMatch records one (repository, matched tag) pair found during a scan.
// CommitID is empty only when the tag's existence was confirmed but its
// commit metadata could not be resolved; that is a degraded match, not an
// error.
type TagMatch struct {
	TagName     string        `json:"tag_name"`
	CommitID    string        `json:"commit_id"`
	Author      string        `json:"author,omitempty"`
	CommittedAt string        `json:"committed_at,omitempty"`
	Message     string        `json:"message,omitempty"`
	Repository  RepositoryRef `json:"repository"`
	TagRefURL   string        `json:"tag_ref_url"`
}

// ScanResult is the immutable outcome of one scan invocation.
type ScanResult struct {
	RepositoriesScanned int        `json:"repositories_scanned"`
	Matches             []TagMatch `json:"matches"`
	// RepositoriesWithMatch counts distinct repository names across Matches.
	// Pattern scans may yield several matches per repository, so this is not
	// len(Matches).
	RepositoriesWithMatch int     `json:"repositories_with_match"`
	Timestamp             string  `json:"timestamp"`
	DurationSeconds       float64 `json:"duration_seconds"`
}

// RepositoryNames returns the distinct repository names present in Matches,
// in first-seen order.
func (r ScanResult) RepositoryNames() []string {
	seen := make(map[string]struct{}, len(r.Matches))
	var names []string
	for _, m := range r.Matches {
		if _, ok := seen[m.Repository.Name]; ok {
			continue
		}
		seen[m.Repository.Name] = struct{}{}
		names = append(names, m.Repository.Name)
	}
	return names
}

// Metadata describes the provenance of an aggregated dataset.
type Metadata struct {
	LastUpdated              string `json:"last_updated"`
	Organization             string `json:"organization"`
	TotalRepositoriesScanned int    `json:"total_repositories_scanned"`
	ScanType                 string `json:"scan_type"`
	SchemaVersion            string `json:"schema_version"`
}

// RepositoryTagRecord is a TagMatch augmented with deployment annotations,
// as persisted inside a TagGroup.
type RepositoryTagRecord struct {
	RepositoryName string `json:"repository_name"`
	CommitID       string `json:"commit_id"`
	// CommitShort is the abbreviated (7 character) commit id.
	CommitShort string `json:"commit_short"`
	Author      string `json:"author"`
	// AuthorEmail is extracted when Author carries a "Name <email>" form.
	AuthorEmail      string `json:"author_email,omitempty"`
	Date             string `json:"date"`
	Message          string `json:"message"`
	RepositoryURL    string `json:"repository_url"`
	TagURL           string `json:"tag_url"`
	DeploymentStatus string `json:"deployment_status"`
	Environment      string `json:"environment"`
	RepositoryPath   string `json:"repository_path,omitempty"`
}

// TagSummary carries derived per-tag figures.
type TagSummary struct {
	TotalRepositories int `json:"total_repositories"`
	// LatestCommitDate is the lexicographic max of the record dates present.
	// Empty when no record carries a date.
	LatestCommitDate       string   `json:"latest_commit_date"`
	DeploymentEnvironments []string `json:"deployment_environments"`
}

// TagGroup collects every repository carrying one tag name. Repository
// names are unique within a group; re-adding a repository replaces its
// record.
type TagGroup struct {
	TagName      string                `json:"tag_name"`
	Repositories []RepositoryTagRecord `json:"repositories"`
	Summary      TagSummary            `json:"summary"`
}

// DatasetStatistics is always derived from the tags map; it is never edited
// directly and is recomputed after every mutation.
type DatasetStatistics struct {
	TotalUniqueTags           int    `json:"total_unique_tags"`
	TotalRepositoriesWithTags int    `json:"total_repositories_with_tags"`
	MostCommonTag             string `json:"most_common_tag"`
	LatestTagDate             string `json:"latest_tag_date"`
}

// AggregatedDataset is the persisted/exchanged form of scan results.
type AggregatedDataset struct {
	Metadata   Metadata            `json:"metadata"`
	Tags       map[string]TagGroup `json:"tags"`
	Statistics DatasetStatistics   `json:"statistics"`
}
