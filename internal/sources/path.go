package sources

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/keystroke-labs/lantern/internal/item"
)

// ExecutableItem is one command found on the executable search path.
type ExecutableItem struct {
	// Command is the name the shell resolves, without directory.
	Command string
	// Path is the resolved file, first search-path hit winning.
	Path string
}

func (e ExecutableItem) Text() string        { return e.Command }
func (e ExecutableItem) Description() string { return e.Path }
func (e ExecutableItem) ID() string          { return e.Path }

var (
	_ item.Item       = ExecutableItem{}
	_ item.Identified = ExecutableItem{}
)

// PathSource scans the PATH-style search string for executable files.
// Shadowed entries are dropped: only the first directory providing a
// command contributes it, matching shell resolution.
type PathSource struct {
	searchPath string
}

var _ item.Source = (*PathSource)(nil)

// NewPathSource scans the process PATH environment variable.
func NewPathSource() *PathSource {
	return NewPathSourceFrom(os.Getenv("PATH"))
}

// NewPathSourceFrom scans an explicit search string instead of the
// environment.
func NewPathSourceFrom(searchPath string) *PathSource {
	return &PathSource{searchPath: searchPath}
}

func (s *PathSource) Name() string { return "path" }

func (s *PathSource) Items(ctx context.Context) ([]item.Item, error) {
	seen := make(map[string]struct{})
	var items []item.Item

	for _, dir := range filepath.SplitList(s.searchPath) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			// Dead PATH entries are common and not an error.
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			if _, dup := seen[name]; dup {
				continue
			}
			if !isExecutable(entry) {
				continue
			}
			seen[name] = struct{}{}
			items = append(items, ExecutableItem{
				Command: name,
				Path:    filepath.Join(dir, name),
			})
		}
	}
	return items, nil
}

func isExecutable(entry os.DirEntry) bool {
	if runtime.GOOS == "windows" {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		return ext == ".exe" || ext == ".bat" || ext == ".cmd" || ext == ".com"
	}
	info, err := entry.Info()
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0
}
