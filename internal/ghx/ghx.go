// SPDX-License-Identifier: MIT

// Package ghx wraps the GitHub CLI (gh) behind a small Runner
// interface so organization scans can be exercised in tests without a
// network or an authenticated gh install.
package ghx

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/skaphos/tagscout/internal/strutil"
)

// Runner executes a gh invocation and returns its stdout.
type Runner interface {
	Run(ctx context.Context, args ...string) (string, error)
}

// GHRunner runs the real gh binary.
type GHRunner struct {
	// Bin is the gh executable. Empty means "gh" from PATH.
	Bin string
}

func (r *GHRunner) Run(ctx context.Context, args ...string) (string, error) {
	bin := r.Bin
	if bin == "" {
		bin = "gh"
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("gh %s: %s", strings.Join(args, " "), msg)
	}
	return stdout.String(), nil
}

// Repo is one repository as reported by gh repo list.
type Repo struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// TagRef is one tag as reported by the repository tags API.
type TagRef struct {
	Name   string `json:"name"`
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

// Commit carries the subset of the commits API used for tag details.
type Commit struct {
	SHA    string `json:"sha"`
	Commit struct {
		Author struct {
			Name  string `json:"name"`
			Email string `json:"email"`
			Date  string `json:"date"`
		} `json:"author"`
		Message string `json:"message"`
	} `json:"commit"`
}

// AuthStatus reports whether gh has working credentials.
func AuthStatus(ctx context.Context, r Runner) bool {
	_, err := r.Run(ctx, "auth", "status")
	return err == nil
}

// ListRepos enumerates the repositories of an organization, newest
// first, up to limit entries.
func ListRepos(ctx context.Context, r Runner, org string, limit int) ([]Repo, error) {
	out, err := r.Run(ctx, "repo", "list", org,
		"--limit", fmt.Sprintf("%d", limit),
		"--json", "name,url")
	if err != nil {
		return nil, err
	}
	var repos []Repo
	if err := json.Unmarshal([]byte(out), &repos); err != nil {
		return nil, fmt.Errorf("parsing gh repo list output: %w", err)
	}
	return repos, nil
}

// ListTags returns the tag names of a repository, most recent first as
// the API reports them.
func ListTags(ctx context.Context, r Runner, org, repo string) ([]string, error) {
	out, err := r.Run(ctx, "api", fmt.Sprintf("repos/%s/%s/tags", org, repo), "--paginate")
	if err != nil {
		return nil, err
	}
	var refs []TagRef
	if err := json.Unmarshal([]byte(out), &refs); err != nil {
		return nil, fmt.Errorf("parsing tags for %s/%s: %w", org, repo, err)
	}
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.Name != "" {
			names = append(names, ref.Name)
		}
	}
	return names, nil
}

// TagDetail holds the commit metadata behind one tag.
type TagDetail struct {
	CommitID    string
	Author      string
	CommittedAt string
	Message     string
}

// TagCommit resolves a tag to its commit and returns the commit's
// author, date, and first message line. Annotated tags are followed to
// the commit they point at.
func TagCommit(ctx context.Context, r Runner, org, repo, tag string) (*TagDetail, error) {
	sha, err := tagSHA(ctx, r, org, repo, tag)
	if err != nil {
		return nil, err
	}
	out, err := r.Run(ctx, "api", fmt.Sprintf("repos/%s/%s/commits/%s", org, repo, sha))
	if err != nil {
		return nil, err
	}
	var c Commit
	if err := json.Unmarshal([]byte(out), &c); err != nil {
		return nil, fmt.Errorf("parsing commit %s of %s/%s: %w", sha, org, repo, err)
	}
	author := c.Commit.Author.Name
	if c.Commit.Author.Email != "" {
		author = fmt.Sprintf("%s <%s>", c.Commit.Author.Name, c.Commit.Author.Email)
	}
	return &TagDetail{
		CommitID:    c.SHA,
		Author:      author,
		CommittedAt: c.Commit.Author.Date,
		Message:     strutil.FirstLine(c.Commit.Message),
	}, nil
}

type refObject struct {
	Object struct {
		Type string `json:"type"`
		SHA  string `json:"sha"`
	} `json:"object"`
}

func tagSHA(ctx context.Context, r Runner, org, repo, tag string) (string, error) {
	out, err := r.Run(ctx, "api", fmt.Sprintf("repos/%s/%s/git/refs/tags/%s", org, repo, tag))
	if err != nil {
		return "", err
	}
	var ref refObject
	if err := json.Unmarshal([]byte(out), &ref); err != nil {
		return "", fmt.Errorf("parsing ref for tag %s of %s/%s: %w", tag, org, repo, err)
	}
	if ref.Object.Type != "tag" {
		return ref.Object.SHA, nil
	}
	// Annotated tag: dereference the tag object to its target commit.
	out, err = r.Run(ctx, "api", fmt.Sprintf("repos/%s/%s/git/tags/%s", org, repo, ref.Object.SHA))
	if err != nil {
		return "", err
	}
	var tagObj refObject
	if err := json.Unmarshal([]byte(out), &tagObj); err != nil {
		return "", fmt.Errorf("parsing tag object %s of %s/%s: %w", ref.Object.SHA, org, repo, err)
	}
	return tagObj.Object.SHA, nil
}
