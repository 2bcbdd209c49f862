package sourcehost

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var _ Host = (*LocalHost)(nil)

// skipDirs are directory names never worth indexing.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	".idea":        true,
	".vscode":      true,
}

// maxLocalFileSize skips generated bundles and other oversized files.
const maxLocalFileSize = 2 << 20 // 2 MiB

// LocalHost serves a directory on disk as a repository. The repo
// identifier is interpreted as a path relative to the root (or the
// root itself when it matches the configured name). Used for
// development and tests; it has no revision history.
type LocalHost struct {
	root string
}

// NewLocalHost creates a host rooted at dir.
func NewLocalHost(dir string) (*LocalHost, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidRepo, dir)
	}
	return &LocalHost{root: dir}, nil
}

func (h *LocalHost) BaseURL() string {
	return "file://" + h.root
}

// repoDir resolves a repo identifier inside the root, guarding
// against path escapes.
func (h *LocalHost) repoDir(repo string) (string, error) {
	if repo == "" || repo == "." {
		return h.root, nil
	}
	dir := filepath.Join(h.root, filepath.FromSlash(repo))
	rel, err := filepath.Rel(h.root, dir)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%w: %q escapes root", ErrInvalidRepo, repo)
	}
	return dir, nil
}

func (h *LocalHost) ListTree(ctx context.Context, repo, revision string) ([]FileEntry, error) {
	dir, err := h.repoDir(repo)
	if err != nil {
		return nil, err
	}

	var entries []FileEntry
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Size() > maxLocalFileSize {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		entries = append(entries, FileEntry{
			Path: filepath.ToSlash(rel),
			Size: info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	return entries, nil
}

func (h *LocalHost) GetFileContent(ctx context.Context, repo, path, revision string) ([]byte, error) {
	dir, err := h.repoDir(repo)
	if err != nil {
		return nil, err
	}

	full := filepath.Join(dir, filepath.FromSlash(path))
	rel, err := filepath.Rel(dir, full)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil, fmt.Errorf("%w: %q escapes repository", ErrInvalidRepo, path)
	}

	content, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return content, nil
}

// GetDiff is unsupported for local directories; the indexer falls
// back to content-hash comparison instead.
func (h *LocalHost) GetDiff(ctx context.Context, repo, base, head string) ([]ChangedFile, error) {
	return nil, ErrDiffUnsupported
}

// ResolveRevision returns the given revision unchanged, or "local"
// when empty. Local trees have no commit identity.
func (h *LocalHost) ResolveRevision(ctx context.Context, repo, revision string) (string, error) {
	if revision == "" {
		return "local", nil
	}
	return revision, nil
}
