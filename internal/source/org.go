// SPDX-License-Identifier: MIT

// Package source provides the tag sources the scan engine runs against:
// a GitHub organization reached through the gh CLI, and local checkouts
// found by directory discovery.
package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/skaphos/tagscout/internal/ghx"
	"github.com/skaphos/tagscout/internal/model"
)

// DefaultPageLimit bounds how many repositories one organization
// enumeration requests from gh.
const DefaultPageLimit = 1000

// Org scans the repositories of a GitHub organization via gh.
type Org struct {
	Organization string
	Runner       ghx.Runner
	// PageLimit caps the repository enumeration. Zero means
	// DefaultPageLimit.
	PageLimit int
	// Timeout bounds each gh invocation so a wedged call cannot hang
	// the scan. Zero means no deadline.
	Timeout time.Duration
}

// NewOrg returns an organization source backed by the real gh binary.
func NewOrg(organization string, timeout time.Duration) *Org {
	return &Org{Organization: organization, Runner: &ghx.GHRunner{}, Timeout: timeout}
}

func (s *Org) lookupContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.Timeout)
}

func (s *Org) Repositories(ctx context.Context) ([]model.RepositoryRef, error) {
	limit := s.PageLimit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	ctx, cancel := s.lookupContext(ctx)
	defer cancel()
	repos, err := ghx.ListRepos(ctx, s.Runner, s.Organization, limit)
	if err != nil {
		return nil, err
	}
	refs := make([]model.RepositoryRef, 0, len(repos))
	for _, r := range repos {
		refs = append(refs, model.RepositoryRef{Name: r.Name, OriginURL: r.URL})
	}
	return refs, nil
}

// Tags lists a repository's tags. Lookup failures (deleted repos,
// permission gaps) read as an empty tag list.
func (s *Org) Tags(ctx context.Context, repo model.RepositoryRef) ([]string, error) {
	ctx, cancel := s.lookupContext(ctx)
	defer cancel()
	tags, err := ghx.ListTags(ctx, s.Runner, s.Organization, repo.Name)
	if err != nil {
		return nil, nil
	}
	return tags, nil
}

// TagInfo resolves a tag's commit metadata, or nil when the lookup fails.
func (s *Org) TagInfo(ctx context.Context, repo model.RepositoryRef, tagName string) (*model.TagInfo, error) {
	ctx, cancel := s.lookupContext(ctx)
	defer cancel()
	detail, err := ghx.TagCommit(ctx, s.Runner, s.Organization, repo.Name, tagName)
	if err != nil {
		return nil, nil
	}
	return &model.TagInfo{
		CommitID:    detail.CommitID,
		Author:      detail.Author,
		CommittedAt: detail.CommittedAt,
		Message:     detail.Message,
	}, nil
}

// TagURL builds the release page URL from the repository's own origin so
// Enterprise hosts resolve correctly, falling back to github.com when the
// enumeration carried no URL.
func (s *Org) TagURL(repo model.RepositoryRef, tagName string) string {
	if base := strings.TrimSuffix(strings.TrimSuffix(repo.OriginURL, ".git"), "/"); base != "" {
		return fmt.Sprintf("%s/releases/tag/%s", base, tagName)
	}
	return fmt.Sprintf("https://github.com/%s/%s/releases/tag/%s", s.Organization, repo.Name, tagName)
}
