// Package item defines the capability surface between lantern's core and
// the surrounding application shell: items, item sources, converters,
// and actions. The core never inspects an item beyond what these small
// interfaces expose.
package item

import (
	"context"
)

// Item is one value from a source's domain: a file, an installed
// application, a shortcut. Identity is source-defined.
type Item interface {
	// Text is the primary display and completion text.
	Text() string
	// Description is shown alongside the completion, may be empty.
	Description() string
}

// Identified is implemented by items with a stable identity distinct
// from their display text. Items without it are identified by Text.
type Identified interface {
	ID() string
}

// Identity returns the stable identity key for an item.
func Identity(it Item) string {
	if id, ok := it.(Identified); ok {
		return id.ID()
	}
	return it.Text()
}

// TextItem is the literal fallback item: when no completion clears the
// relevance threshold the raw input is surfaced as a TextItem.
type TextItem struct {
	Content string
}

func (t TextItem) Text() string        { return t.Content }
func (t TextItem) Description() string { return "" }

// Source produces, on demand, the current full set of items it
// represents. A fetch may be slow; implementations must honor ctx.
type Source interface {
	// Name identifies the source. It is used as the index partition key
	// and for per-source interval configuration lookup.
	Name() string
	// Items returns the source's complete current item set.
	Items(ctx context.Context) ([]Item, error)
}

// WatchableSource is optionally implemented by sources backed by a
// filesystem root. Changes under the root trigger an early
// reconciliation cycle instead of waiting for the next tick.
type WatchableSource interface {
	Source
	WatchRoot() string
}

// Action acts on a selected item. Performing the action may have OS
// side effects (open, launch, copy); those are the shell's concern.
type Action interface {
	// Name is the human-readable action name shown in the action list.
	Name() string
	CanActOn(it Item) bool
	// ActOn performs the action. A non-nil returned item replaces the
	// current input; nil means the action completed with no follow-up.
	ActOn(it Item) (Item, error)
}

// ArgumentAction is an Action that accepts a free-form argument string.
type ArgumentAction interface {
	Action
	ActOnWithArgs(it Item, args string) (Item, error)
}

// ArgumentCompleter is an ArgumentAction that can complete partial
// arguments. It returns raw candidate strings; ranking and thresholds
// are applied by the autocomplete engine.
type ArgumentCompleter interface {
	ArgumentAction
	ArgumentCandidates(ctx context.Context, it Item, partial string) ([]string, error)
}

// ActionsFor returns the actions from the given set that can act on it,
// preserving registration order.
func ActionsFor(it Item, actions []Action) []Action {
	var out []Action
	for _, a := range actions {
		if a.CanActOn(it) {
			out = append(out, a)
		}
	}
	return out
}
