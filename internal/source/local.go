// SPDX-License-Identifier: MIT

package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/skaphos/tagscout/internal/discovery"
	"github.com/skaphos/tagscout/internal/gitx"
	"github.com/skaphos/tagscout/internal/model"
)

// Local scans git checkouts discovered under a set of root directories.
type Local struct {
	Roots          []string
	Exclude        []string
	FollowSymlinks bool
}

func (s *Local) Repositories(ctx context.Context) ([]model.RepositoryRef, error) {
	return discovery.Scan(ctx, discovery.Options{
		Roots:          s.Roots,
		Exclude:        s.Exclude,
		FollowSymlinks: s.FollowSymlinks,
	})
}

// Tags lists a checkout's tags. Unreadable checkouts read as an empty
// tag list.
func (s *Local) Tags(_ context.Context, repo model.RepositoryRef) ([]string, error) {
	tags, err := gitx.ListTags(repo.LocalPath)
	if err != nil {
		return nil, nil
	}
	return tags, nil
}

// TagInfo resolves a tag's commit metadata, or nil when the lookup fails.
func (s *Local) TagInfo(_ context.Context, repo model.RepositoryRef, tagName string) (*model.TagInfo, error) {
	detail, err := gitx.Tag(repo.LocalPath, tagName)
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

// TagURL prefers a forge URL derived from the origin remote and falls
// back to a file URL for checkouts without one.
func (s *Local) TagURL(repo model.RepositoryRef, tagName string) string {
	if origin := strings.TrimSuffix(repo.OriginURL, ".git"); origin != "" && strings.HasPrefix(origin, "http") {
		return fmt.Sprintf("%s/releases/tag/%s", origin, tagName)
	}
	return fmt.Sprintf("file://%s#refs/tags/%s", repo.LocalPath, tagName)
}
