// Package complete resolves partial user input into ranked candidate
// commands. It reads the committed index, blends lexical closeness with
// learned-affinity boosts, and is pure with respect to the index.
package complete

import (
	"github.com/keystroke-labs/lantern/internal/item"
)

// IndexedItem is an item reconstructed from a committed index document.
// It carries enough identity to act on and to replay into the learning
// store.
type IndexedItem struct {
	Name string
	Desc string
	// Source names the item source that produced the document.
	Source string
	// Kind is the converter-assigned item kind, used for action dispatch.
	Kind string
	// DocID is the index identity key.
	DocID string
}

func (i IndexedItem) Text() string        { return i.Name }
func (i IndexedItem) Description() string { return i.Desc }
func (i IndexedItem) ID() string          { return i.DocID }

// CommandResult is one ranked candidate.
type CommandResult struct {
	Item item.Item
	// DocID is empty for literal text fallbacks, which are not learned.
	DocID    string
	SourceID string
	// Score is the combined ranking score (lexical plus learned boost).
	Score float64
	// Lexical is the string-similarity component alone.
	Lexical float64
}

// Result is the outcome of one query: a best completion plus ordered
// alternates. Immutable once produced; the next keystroke supersedes it
// wholesale.
type Result struct {
	Input         string
	Completion    CommandResult
	Alternates    []CommandResult
	HasCompletion bool
}

// Literal builds the fallback result treating input as a literal text
// item. Callers use it when no candidate clears the threshold or when
// the query path fails.
func Literal(input string) Result {
	return Result{
		Input:      input,
		Completion: CommandResult{Item: item.TextItem{Content: input}},
		Alternates: []CommandResult{},
	}
}

// Options returns the completion followed by the alternates, the order
// a selection list presents them in.
func (r Result) Options() []CommandResult {
	if !r.HasCompletion {
		return []CommandResult{r.Completion}
	}
	out := make([]CommandResult, 0, 1+len(r.Alternates))
	out = append(out, r.Completion)
	out = append(out, r.Alternates...)
	return out
}
