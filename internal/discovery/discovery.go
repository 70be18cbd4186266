// Package discovery walks configured root directories to find git checkouts.
package discovery

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/skaphos/tagscout/internal/gitx"
	"github.com/skaphos/tagscout/internal/model"
)

// Options configures the discovery scan.
type Options struct {
	Roots          []string
	Exclude        []string // glob patterns to skip
	FollowSymlinks bool
}

// Scan walks all roots and returns discovered repositories. It skips
// directories matching exclude patterns and does not recurse into .git
// directories or into discovered repositories.
func Scan(ctx context.Context, opts Options) ([]model.RepositoryRef, error) {
	visited := make(map[string]struct{})
	skipDirs := make(map[string]struct{})
	var refs []model.RepositoryRef

	for _, root := range opts.Roots {
		if root == "" {
			continue
		}
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return nil, err
		}
		if err := walkRoot(ctx, absRoot, opts, visited, skipDirs, &refs); err != nil {
			return nil, err
		}
	}

	return refs, nil
}

// MatchesExclude checks whether a path matches any of the given exclude
// glob patterns.
func MatchesExclude(path string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	slashPath := filepath.ToSlash(path)
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		match, err := doublestar.Match(pattern, slashPath)
		if err != nil {
			continue
		}
		if match {
			return true
		}
	}
	return false
}

func walkRoot(ctx context.Context, root string, opts Options, visited map[string]struct{}, skipDirs map[string]struct{}, refs *[]model.RepositoryRef) error {
	realRoot := root
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		realRoot = resolved
	}
	if _, ok := visited[realRoot]; ok {
		return nil
	}
	visited[realRoot] = struct{}{}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.Type()&os.ModeSymlink != 0 && d.IsDir() && !opts.FollowSymlinks {
			return fs.SkipDir
		}

		if d.IsDir() {
			if _, ok := skipDirs[path]; ok {
				return fs.SkipDir
			}
			if d.Name() == ".git" {
				return fs.SkipDir
			}
			if MatchesExclude(path, opts.Exclude) {
				return fs.SkipDir
			}
		} else {
			return nil
		}

		isRepoRoot, gitdir := detectRepo(path)
		if isRepoRoot {
			if gitdir != "" {
				skipDirs[gitdir] = struct{}{}
			}
			*refs = append(*refs, model.RepositoryRef{
				Name:      filepath.Base(path),
				OriginURL: gitx.OriginURL(path),
				LocalPath: path,
			})
			return fs.SkipDir
		}

		if d.Type()&os.ModeSymlink != 0 && d.IsDir() && opts.FollowSymlinks {
			target, err := filepath.EvalSymlinks(path)
			if err != nil {
				return nil
			}
			info, err := os.Stat(target)
			if err != nil || !info.IsDir() {
				return nil
			}
			if err := walkRoot(ctx, target, opts, visited, skipDirs, refs); err != nil {
				return err
			}
			return fs.SkipDir
		}

		return nil
	})
}

// detectRepo reports whether dir is a repository root. Worktree
// checkouts carry a .git file whose gitdir target is returned so the
// walk can skip it.
func detectRepo(dir string) (bool, string) {
	gitPath := filepath.Join(dir, ".git")
	if info, err := os.Stat(gitPath); err == nil {
		if info.Mode().IsRegular() {
			if gitdir, ok := gitdirFromFile(gitPath); ok {
				return true, gitdir
			}
		}
		return true, ""
	}

	// Bare repo heuristic: HEAD file and objects dir.
	if _, err := os.Stat(filepath.Join(dir, "HEAD")); err == nil {
		if info, err := os.Stat(filepath.Join(dir, "objects")); err == nil && info.IsDir() {
			return true, ""
		}
	}

	return false, ""
}

func gitdirFromFile(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	content := strings.TrimSpace(string(data))
	if !strings.HasPrefix(content, "gitdir:") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(content, "gitdir:"))
	if raw == "" {
		return "", false
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw), true
	}
	return filepath.Clean(filepath.Join(filepath.Dir(path), raw)), true
}
