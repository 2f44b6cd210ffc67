package sources

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keystroke-labs/lantern/internal/item"
)

func writeFile(t *testing.T, path string, perm os.FileMode) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), perm))
}

func itemTexts(items []item.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Text())
	}
	return out
}

func TestDirectorySource_WalksFilesAndDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "readme.txt"), 0o644)
	writeFile(t, filepath.Join(root, "docs", "guide.txt"), 0o644)
	writeFile(t, filepath.Join(root, ".hidden", "secret.txt"), 0o644)
	writeFile(t, filepath.Join(root, ".dotfile"), 0o644)

	src := NewDirectorySource(DirectoryConfig{Name: "files", Root: root})
	items, err := src.Items(context.Background())
	require.NoError(t, err)

	texts := itemTexts(items)
	assert.ElementsMatch(t, []string{"readme.txt", "docs", "guide.txt"}, texts,
		"dotfiles and hidden directories are skipped")
}

func TestDirectorySource_ExtensionFilter(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app.desktop"), 0o644)
	writeFile(t, filepath.Join(root, "notes.txt"), 0o644)

	src := NewDirectorySource(DirectoryConfig{
		Name:       "apps",
		Root:       root,
		Extensions: []string{".desktop"},
	})
	items, err := src.Items(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"app.desktop"}, itemTexts(items))
}

func TestDirectorySource_MaxDepth(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "top.txt"), 0o644)
	writeFile(t, filepath.Join(root, "a", "mid.txt"), 0o644)
	writeFile(t, filepath.Join(root, "a", "b", "deep.txt"), 0o644)

	src := NewDirectorySource(DirectoryConfig{Name: "files", Root: root, MaxDepth: 1})
	items, err := src.Items(context.Background())
	require.NoError(t, err)

	texts := itemTexts(items)
	assert.Contains(t, texts, "top.txt")
	assert.Contains(t, texts, "a")
	assert.NotContains(t, texts, "mid.txt")
	assert.NotContains(t, texts, "deep.txt")
}

func TestDirectorySource_IgnorePatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep.txt"), 0o644)
	writeFile(t, filepath.Join(root, "debug.log"), 0o644)
	writeFile(t, filepath.Join(root, "cache", "blob"), 0o644)
	require.NoError(t, os.WriteFile(filepath.Join(root, ".lanternignore"), []byte("cache/\n"), 0o644))

	src := NewDirectorySource(DirectoryConfig{
		Name:   "files",
		Root:   root,
		Ignore: []string{"*.log"},
	})
	items, err := src.Items(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"keep.txt"}, itemTexts(items),
		".lanternignore and configured patterns both apply")
}

func TestDirectorySource_MissingRootFails(t *testing.T) {
	src := NewDirectorySource(DirectoryConfig{
		Name: "files",
		Root: filepath.Join(t.TempDir(), "does-not-exist"),
	})
	_, err := src.Items(context.Background())
	assert.Error(t, err)
}

func TestDirectorySource_HonorsContext(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), 0o644)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewDirectorySource(DirectoryConfig{Name: "files", Root: root})
	_, err := src.Items(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDirectorySource_WatchRoot(t *testing.T) {
	src := NewDirectorySource(DirectoryConfig{Name: "files", Root: "/tmp/watched"})
	assert.Equal(t, "/tmp/watched", src.WatchRoot())
}

func TestPathSource_FindsExecutables(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("exec-bit semantics are unix-only")
	}
	binA := t.TempDir()
	binB := t.TempDir()
	writeFile(t, filepath.Join(binA, "launcher"), 0o755)
	writeFile(t, filepath.Join(binA, "notes.txt"), 0o644)
	writeFile(t, filepath.Join(binB, "editor"), 0o755)

	search := binA + string(os.PathListSeparator) + binB
	src := NewPathSourceFrom(search)

	items, err := src.Items(context.Background())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"launcher", "editor"}, itemTexts(items),
		"only files with an exec bit are commands")
}

func TestPathSource_FirstDirectoryWins(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("exec-bit semantics are unix-only")
	}
	binA := t.TempDir()
	binB := t.TempDir()
	writeFile(t, filepath.Join(binA, "editor"), 0o755)
	writeFile(t, filepath.Join(binB, "editor"), 0o755)

	search := binA + string(os.PathListSeparator) + binB
	items, err := NewPathSourceFrom(search).Items(context.Background())
	require.NoError(t, err)

	require.Len(t, items, 1)
	exe := items[0].(ExecutableItem)
	assert.Equal(t, filepath.Join(binA, "editor"), exe.Path)
}

func TestPathSource_IgnoresDeadEntries(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("exec-bit semantics are unix-only")
	}
	bin := t.TempDir()
	writeFile(t, filepath.Join(bin, "tool"), 0o755)

	search := "/no/such/dir" + string(os.PathListSeparator) + bin
	items, err := NewPathSourceFrom(search).Items(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"tool"}, itemTexts(items))
}

func TestFileConverter_Fields(t *testing.T) {
	c := FileConverter{}

	fields, err := c.Convert(FileItem{Path: "/home/u/docs/guide.txt"})
	require.NoError(t, err)
	assert.Equal(t, "guide.txt", fields[item.FieldName])
	assert.Equal(t, KindFile, fields[item.FieldKind])
	assert.Equal(t, "/home/u/docs/guide.txt", fields[FieldPath])

	fields, err = c.Convert(FileItem{Path: "/home/u/docs", Dir: true})
	require.NoError(t, err)
	assert.Equal(t, KindDirectory, fields[item.FieldKind])
}

func TestExecutableConverter_Fields(t *testing.T) {
	fields, err := ExecutableConverter{}.Convert(ExecutableItem{
		Command: "editor",
		Path:    "/usr/bin/editor",
	})
	require.NoError(t, err)
	assert.Equal(t, "editor", fields[item.FieldName])
	assert.Equal(t, KindExecutable, fields[item.FieldKind])
	assert.Equal(t, "/usr/bin/editor", fields[FieldPath])
}

func TestRegistry_FirstMatchAcrossSourceConverters(t *testing.T) {
	reg := item.NewRegistry(FileConverter{}, ExecutableConverter{}, item.TextConverter{})

	fields, err := reg.Convert(ExecutableItem{Command: "editor", Path: "/usr/bin/editor"})
	require.NoError(t, err)
	assert.Equal(t, KindExecutable, fields[item.FieldKind])

	fields, err = reg.Convert(item.TextItem{Content: "raw input"})
	require.NoError(t, err)
	assert.Equal(t, "text", fields[item.FieldKind])
}
