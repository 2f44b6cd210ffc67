package sources

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/keystroke-labs/lantern/internal/item"
)

// Browse descends into a directory item. Its argument is a relative
// path under the item, completed segment by segment.
type Browse struct{}

var _ item.ArgumentCompleter = Browse{}

func (Browse) Name() string { return "browse" }

func (Browse) CanActOn(it item.Item) bool {
	fi, ok := it.(FileItem)
	return ok && fi.Dir
}

// ActOn re-surfaces the directory itself so a follow-up argument can
// narrow it.
func (Browse) ActOn(it item.Item) (item.Item, error) {
	return it, nil
}

// ActOnWithArgs resolves args relative to the directory and returns the
// target as a new item.
func (b Browse) ActOnWithArgs(it item.Item, args string) (item.Item, error) {
	fi := it.(FileItem)
	target, err := resolveUnder(fi.Path, args)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}
	return FileItem{Path: target, Dir: info.IsDir()}, nil
}

// ArgumentCandidates lists entries under the directory named by the
// completed portion of partial. Candidates keep the partial's leading
// segments so they remain valid arguments as typed.
func (b Browse) ArgumentCandidates(ctx context.Context, it item.Item, partial string) ([]string, error) {
	fi, ok := it.(FileItem)
	if !ok || !fi.Dir {
		return nil, fmt.Errorf("browse: %q is not a directory item", it.Text())
	}

	prefix := ""
	if i := strings.LastIndexAny(partial, `/\`); i >= 0 {
		prefix = partial[:i+1]
	}
	dir, err := resolveUnder(fi.Path, prefix)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	candidates := make([]string, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		candidates = append(candidates, prefix+entry.Name())
	}
	return candidates, nil
}

// resolveUnder joins rel beneath root and rejects escapes: browse
// arguments may only descend.
func resolveUnder(root, rel string) (string, error) {
	joined := filepath.Join(root, filepath.FromSlash(rel))
	cleanRoot := filepath.Clean(root)
	if joined != cleanRoot && !strings.HasPrefix(joined, cleanRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("browse: path %q escapes %q", rel, root)
	}
	return joined, nil
}

// ShowPath surfaces an item's full path as literal text. Pure: no OS
// side effects.
type ShowPath struct{}

var _ item.Action = ShowPath{}

func (ShowPath) Name() string { return "show path" }

func (ShowPath) CanActOn(it item.Item) bool {
	switch it.(type) {
	case FileItem, ExecutableItem:
		return true
	}
	return false
}

func (ShowPath) ActOn(it item.Item) (item.Item, error) {
	switch v := it.(type) {
	case FileItem:
		return item.TextItem{Content: v.Path}, nil
	case ExecutableItem:
		return item.TextItem{Content: v.Path}, nil
	}
	return nil, fmt.Errorf("show path: unsupported item %q", it.Text())
}
