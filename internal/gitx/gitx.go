// SPDX-License-Identifier: MIT

// Package gitx reads tag and commit metadata out of local git
// checkouts using go-git, so local scans need no git binary.
package gitx

import (
	"fmt"
	"sort"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/skaphos/tagscout/internal/strutil"
)

// TagDetail is the commit metadata behind one tag.
type TagDetail struct {
	CommitID    string
	Author      string
	CommittedAt string
	Message     string
}

type taggedCommit struct {
	name string
	when time.Time
}

// ListTags returns the repository's tag names ordered newest commit
// first, matching the order a forge API would report them in.
func ListTags(path string) ([]string, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	iter, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags of %s: %w", path, err)
	}
	var tagged []taggedCommit
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		commit, err := resolveCommit(repo, ref.Hash())
		if err != nil {
			// Tags pointing at trees or blobs are not releases.
			return nil
		}
		tagged = append(tagged, taggedCommit{
			name: ref.Name().Short(),
			when: commit.Committer.When,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking tags of %s: %w", path, err)
	}
	sort.SliceStable(tagged, func(i, j int) bool {
		if !tagged[i].when.Equal(tagged[j].when) {
			return tagged[i].when.After(tagged[j].when)
		}
		return tagged[i].name > tagged[j].name
	})
	names := make([]string, 0, len(tagged))
	for _, t := range tagged {
		names = append(names, t.name)
	}
	return names, nil
}

// Tag resolves one tag to its commit detail. Annotated tags are
// followed to the commit they point at.
func Tag(path, tag string) (*TagDetail, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	ref, err := repo.Tag(tag)
	if err != nil {
		return nil, fmt.Errorf("tag %s in %s: %w", tag, path, err)
	}
	commit, err := resolveCommit(repo, ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("resolving tag %s in %s: %w", tag, path, err)
	}
	author := commit.Author.Name
	if commit.Author.Email != "" {
		author = fmt.Sprintf("%s <%s>", commit.Author.Name, commit.Author.Email)
	}
	return &TagDetail{
		CommitID:    commit.Hash.String(),
		Author:      author,
		CommittedAt: commit.Author.When.UTC().Format(time.RFC3339),
		Message:     strutil.FirstLine(commit.Message),
	}, nil
}

// OriginURL returns the first URL of the origin remote, or "" when the
// checkout has none.
func OriginURL(path string) string {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return ""
	}
	remote, err := repo.Remote("origin")
	if err != nil {
		return ""
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return ""
	}
	return urls[0]
}

func resolveCommit(repo *git.Repository, hash plumbing.Hash) (*object.Commit, error) {
	if tagObj, err := repo.TagObject(hash); err == nil {
		return tagObj.Commit()
	}
	return repo.CommitObject(hash)
}
