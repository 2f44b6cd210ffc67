package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch_NameGlobs(t *testing.T) {
	m := New("*.log", "tmp")

	assert.True(t, m.Match("debug.log", false))
	assert.True(t, m.Match("nested/deep/trace.log", false))
	assert.True(t, m.Match("tmp", true))
	assert.False(t, m.Match("debug.txt", false))
}

func TestMatch_AnchoredPatterns(t *testing.T) {
	m := New("/build", "docs/drafts")

	assert.True(t, m.Match("build", true))
	assert.False(t, m.Match("src/build", true), "leading slash anchors to the root")
	assert.True(t, m.Match("docs/drafts", true))
	assert.False(t, m.Match("other/docs/drafts", true))
}

func TestMatch_DirOnly(t *testing.T) {
	m := New("cache/")

	assert.True(t, m.Match("cache", true))
	assert.False(t, m.Match("cache", false), "trailing slash matches directories only")
}

func TestMatch_NegationReincludes(t *testing.T) {
	m := New("*.log", "!keep.log")

	assert.True(t, m.Match("debug.log", false))
	assert.False(t, m.Match("keep.log", false))
}

func TestMatch_CommentsAndBlanksDropped(t *testing.T) {
	m := New("# a comment", "", "  ", "*.bak")

	assert.True(t, m.Match("old.bak", false))
	assert.False(t, m.Match("# a comment", false))
}

func TestLoad_ReadsIgnoreFile(t *testing.T) {
	root := t.TempDir()
	content := "# build output\n*.o\ncache/\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, IgnoreFileName), []byte(content), 0o644))

	m, err := Load(root, "*.swp")
	require.NoError(t, err)

	assert.True(t, m.Match("main.o", false))
	assert.True(t, m.Match("cache", true))
	assert.True(t, m.Match("edit.swp", false), "configured extras merge with the file")
	assert.False(t, m.Match("main.go", false))
}

func TestLoad_MissingFileYieldsExtrasOnly(t *testing.T) {
	m, err := Load(t.TempDir(), "*.tmp")
	require.NoError(t, err)

	assert.True(t, m.Match("x.tmp", false))
	assert.False(t, m.Empty())
}

func TestEmpty(t *testing.T) {
	assert.True(t, New().Empty())
	assert.False(t, New("*.log").Empty())
}
