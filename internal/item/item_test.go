package item

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeItem struct {
	text string
	id   string
}

func (f fakeItem) Text() string        { return f.text }
func (f fakeItem) Description() string { return "" }
func (f fakeItem) ID() string          { return f.id }

type fakeConverter struct {
	kind string
}

func (f fakeConverter) CanConvert(it Item) bool {
	fi, ok := it.(fakeItem)
	return ok && fi.id != ""
}

func (f fakeConverter) Convert(it Item) (Fields, error) {
	return Fields{FieldName: it.Text(), FieldKind: f.kind}, nil
}

func TestIdentity_PrefersIdentified(t *testing.T) {
	assert.Equal(t, "app:firefox", Identity(fakeItem{text: "Firefox", id: "app:firefox"}))
	assert.Equal(t, "plain", Identity(TextItem{Content: "plain"}))
}

func TestRegistry_FirstMatchWins(t *testing.T) {
	first := fakeConverter{kind: "first"}
	second := fakeConverter{kind: "second"}
	reg := NewRegistry(first, second)

	fields, err := reg.Convert(fakeItem{text: "x", id: "1"})
	require.NoError(t, err)
	assert.Equal(t, "first", fields[FieldKind])
}

func TestRegistry_NoConverter(t *testing.T) {
	reg := NewRegistry(fakeConverter{kind: "only"})

	// fakeConverter rejects items without an id.
	_, ok := reg.Find(fakeItem{text: "x"})
	assert.False(t, ok)

	_, err := reg.Convert(fakeItem{text: "x"})
	assert.Error(t, err)
}

func TestTextConverter_RoundTrip(t *testing.T) {
	reg := NewRegistry(TextConverter{})

	fields, err := reg.Convert(TextItem{Content: "notepad"})
	require.NoError(t, err)
	assert.Equal(t, "notepad", fields[FieldName])
	assert.Equal(t, "text", fields[FieldKind])
}

func TestActionsFor_FiltersByCapability(t *testing.T) {
	yes := stubAction{name: "yes", can: true}
	no := stubAction{name: "no", can: false}

	acts := ActionsFor(TextItem{Content: "x"}, []Action{no, yes})
	require.Len(t, acts, 1)
	assert.Equal(t, "yes", acts[0].Name())
}

type stubAction struct {
	name string
	can  bool
}

func (s stubAction) Name() string             { return s.name }
func (s stubAction) CanActOn(Item) bool       { return s.can }
func (s stubAction) ActOn(it Item) (Item, error) {
	return nil, nil
}

var _ Source = sourceFunc{}

type sourceFunc struct{}

func (sourceFunc) Name() string                              { return "fake" }
func (sourceFunc) Items(context.Context) ([]Item, error)     { return nil, nil }
