package learn

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestLearn_AndLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Learn(ctx, "fire", "doc-firefox"))

	boosts, err := s.Lookup(ctx, "fire")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"doc-firefox": 1}, boosts)
}

func TestLearn_RepeatSelectionIncrementsUses(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Learn(ctx, "fire", "doc-firefox"))
	}

	boosts, err := s.Lookup(ctx, "fire")
	require.NoError(t, err)
	assert.Equal(t, 3, boosts["doc-firefox"])

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "repeat selections reuse the row")
}

func TestLookup_ExactMatchOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Learn(ctx, "fire", "doc-firefox"))

	boosts, err := s.Lookup(ctx, "fir")
	require.NoError(t, err)
	assert.Empty(t, boosts, "no partial-input learned matching")
}

func TestLookup_MultipleChoicesForSameInput(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Learn(ctx, "f", "doc-firefox"))
	require.NoError(t, s.Learn(ctx, "f", "doc-files"))
	require.NoError(t, s.Learn(ctx, "f", "doc-firefox"))

	boosts, err := s.Lookup(ctx, "f")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"doc-firefox": 2, "doc-files": 1}, boosts)
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "learn.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Learn(ctx, "fire", "doc-firefox"))
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = s2.Close() }()

	boosts, err := s2.Lookup(ctx, "fire")
	require.NoError(t, err)
	assert.Equal(t, 1, boosts["doc-firefox"])
}

func TestStore_ClosedOperationsFail(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "close is idempotent")

	ctx := context.Background()
	assert.Error(t, s.Learn(ctx, "x", "y"))
	_, err = s.Lookup(ctx, "x")
	assert.Error(t, err)
}
