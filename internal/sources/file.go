// Package sources holds the built-in item sources and their converters:
// a directory walker over configured roots and a PATH executable
// scanner. Both speak only the capability interfaces from
// internal/item; the indexing core never imports this package's types.
package sources

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/keystroke-labs/lantern/internal/ignore"
	"github.com/keystroke-labs/lantern/internal/item"
)

// FileItem is one filesystem entry produced by a DirectorySource.
// Identity is the absolute path, so renames index as remove + add.
type FileItem struct {
	Path string
	Dir  bool
}

func (f FileItem) Text() string        { return filepath.Base(f.Path) }
func (f FileItem) Description() string { return f.Path }
func (f FileItem) ID() string          { return f.Path }

var (
	_ item.Item       = FileItem{}
	_ item.Identified = FileItem{}
)

// DirectoryConfig describes one directory walker source.
type DirectoryConfig struct {
	// Name is the source name and index partition key.
	Name string
	// Root is the directory to walk.
	Root string
	// MaxDepth limits recursion below Root; 0 means unlimited.
	MaxDepth int
	// Extensions admits only files with one of these suffixes
	// (lowercase, with leading dot). Empty admits every file.
	Extensions []string
	// Ignore holds extra ignore patterns, merged with the root's
	// .lanternignore file.
	Ignore []string
}

// DirectorySource walks a filesystem root and yields its files and
// directories. Directories are items too, so actions like browse have
// targets.
type DirectorySource struct {
	cfg DirectoryConfig
}

var _ item.WatchableSource = (*DirectorySource)(nil)

// NewDirectorySource creates a walker source for cfg.
func NewDirectorySource(cfg DirectoryConfig) *DirectorySource {
	for i, ext := range cfg.Extensions {
		cfg.Extensions[i] = strings.ToLower(ext)
	}
	return &DirectorySource{cfg: cfg}
}

func (s *DirectorySource) Name() string { return s.cfg.Name }

// WatchRoot exposes the walk root for change-driven rescan kicks.
func (s *DirectorySource) WatchRoot() string { return s.cfg.Root }

// Items walks the root. A missing or unreadable root fails the whole
// fetch; unreadable subdirectories are skipped so one bad permission
// bit does not hide the rest of the tree.
func (s *DirectorySource) Items(ctx context.Context) ([]item.Item, error) {
	var items []item.Item

	root := filepath.Clean(s.cfg.Root)
	ignored, err := ignore.Load(root, s.cfg.Ignore...)
	if err != nil {
		return nil, err
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if path == root {
			return nil
		}

		name := d.Name()
		if strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		if s.tooDeep(rel) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !ignored.Empty() && ignored.Match(rel, d.IsDir()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			items = append(items, FileItem{Path: path, Dir: true})
			return nil
		}
		if s.admits(name) {
			items = append(items, FileItem{Path: path})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// tooDeep reports whether a root-relative entry sits below MaxDepth.
// Root children are depth 1.
func (s *DirectorySource) tooDeep(rel string) bool {
	if s.cfg.MaxDepth <= 0 {
		return false
	}
	return strings.Count(rel, string(filepath.Separator))+1 > s.cfg.MaxDepth
}

func (s *DirectorySource) admits(name string) bool {
	if len(s.cfg.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range s.cfg.Extensions {
		if ext == want {
			return true
		}
	}
	return false
}
