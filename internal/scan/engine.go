// Package scan drives a tag source across a set of repositories and
// collects matching tags into a ScanResult.
package scan

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/skaphos/tagscout/internal/model"
	"github.com/skaphos/tagscout/internal/version"
)

// ErrSourceUnavailable indicates the source could not enumerate any
// repositories at all. Per-repository lookup failures are never surfaced
// through this error; they are treated as absence and the scan continues.
var ErrSourceUnavailable = errors.New("source unavailable")

// Source supplies repository and tag enumeration to the engine. Implementations
// must return an empty tag list, not an error, for repositories that have no
// tags or are inaccessible, and a nil TagInfo when commit metadata cannot be
// resolved.
type Source interface {
	// Repositories enumerates the scannable repositories of the target.
	Repositories(ctx context.Context) ([]model.RepositoryRef, error)
	// Tags lists the tag names of one repository.
	Tags(ctx context.Context, repo model.RepositoryRef) ([]string, error)
	// TagInfo resolves commit metadata for one tag. Nil means unresolved.
	TagInfo(ctx context.Context, repo model.RepositoryRef, tagName string) (*model.TagInfo, error)
	// TagURL builds the source-specific URL for a tag reference.
	TagURL(repo model.RepositoryRef, tagName string) string
}

// Options configures a single scan. Exactly one of Candidates (exact scan)
// or Match (pattern scan) must be set.
type Options struct {
	// Candidates are the literal tag names to test, in priority order. The
	// first candidate present in a repository's tag list wins and the
	// repository contributes exactly one match.
	Candidates []string
	// Match is the pattern predicate. Every tag in the inspection window is
	// tested and a repository may contribute multiple matches.
	Match version.Matcher
	// ResultCap is a soft global bound on collected matches: once reached,
	// no further repositories are visited. Zero or negative means no cap.
	ResultCap int
	// TagWindow bounds how many tags per repository a pattern scan inspects,
	// counted from the front of the source's tag list. Zero or negative
	// means unbounded.
	TagWindow int
}

// Run executes one scan. A source-level enumeration failure aborts the scan
// with ErrSourceUnavailable; anything that goes wrong below the repository
// level is recorded as "no tags" for that repository.
func Run(ctx context.Context, src Source, opts Options) (*model.ScanResult, error) {
	if (opts.Candidates == nil) == (opts.Match == nil) {
		return nil, errors.New("scan: exactly one of candidates or match predicate required")
	}

	started := time.Now()

	repos, err := src.Repositories(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	var matches []model.TagMatch
	for _, repo := range repos {
		if capReached(opts.ResultCap, len(matches)) {
			// Soft cap: stop visiting repositories, keep what we have.
			break
		}
		if repo.Name == "" {
			continue
		}
		tags, err := src.Tags(ctx, repo)
		if err != nil {
			continue
		}
		if opts.Candidates != nil {
			if m, ok := exactMatch(ctx, src, repo, tags, opts.Candidates); ok {
				matches = append(matches, m)
			}
			continue
		}
		matches = append(matches, patternMatches(ctx, src, repo, tags, opts, len(matches))...)
	}

	res := &model.ScanResult{
		RepositoriesScanned: len(repos),
		Matches:             matches,
		Timestamp:           started.UTC().Format(time.RFC3339),
		DurationSeconds:     time.Since(started).Seconds(),
	}
	res.RepositoriesWithMatch = len(res.RepositoryNames())
	return res, nil
}

func capReached(limit, collected int) bool {
	return limit > 0 && collected >= limit
}

// exactMatch tests candidates in priority order and records at most one
// match per repository (first-match-wins, not best-match).
func exactMatch(ctx context.Context, src Source, repo model.RepositoryRef, tags, candidates []string) (model.TagMatch, bool) {
	for _, candidate := range candidates {
		if !slices.Contains(tags, candidate) {
			continue
		}
		return buildMatch(ctx, src, repo, candidate), true
	}
	return model.TagMatch{}, false
}

func patternMatches(ctx context.Context, src Source, repo model.RepositoryRef, tags []string, opts Options, collected int) []model.TagMatch {
	window := tags
	if opts.TagWindow > 0 && len(window) > opts.TagWindow {
		window = window[:opts.TagWindow]
	}

	var matches []model.TagMatch
	for _, tag := range window {
		if capReached(opts.ResultCap, collected+len(matches)) {
			break
		}
		if !opts.Match(tag) {
			continue
		}
		matches = append(matches, buildMatch(ctx, src, repo, tag))
	}
	return matches
}

// buildMatch records a confirmed tag. A failed metadata lookup leaves the
// commit fields empty; the match itself stands.
func buildMatch(ctx context.Context, src Source, repo model.RepositoryRef, tagName string) model.TagMatch {
	match := model.TagMatch{
		TagName:    tagName,
		Repository: repo,
		TagRefURL:  src.TagURL(repo, tagName),
	}
	info, err := src.TagInfo(ctx, repo, tagName)
	if err == nil && info != nil {
		match.CommitID = info.CommitID
		match.Author = info.Author
		match.CommittedAt = info.CommittedAt
		match.Message = info.Message
	}
	return match
}
