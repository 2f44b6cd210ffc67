package complete

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/keystroke-labs/lantern/internal/errors"
	"github.com/keystroke-labs/lantern/internal/index"
	"github.com/keystroke-labs/lantern/internal/item"
	"github.com/keystroke-labs/lantern/internal/learn"
)

// learnedBoost lifts any previously-chosen completion above every
// purely lexical candidate: an explicit human choice is a stronger
// signal than string similarity (lexical scores stay within [0, 1]).
const learnedBoost = 10.0

// Config tunes the engine.
type Config struct {
	// MinRelevance is the lexical score below which a candidate is
	// dropped unless a learned association rescues it.
	MinRelevance float64
	// MaxAlternates caps the alternates list.
	MaxAlternates int
	// MaxCandidates caps how many index hits are considered per query.
	MaxCandidates int
	// LearnCacheSize sizes the learned-boost LRU on the keystroke path.
	LearnCacheSize int
	// SourcePriority breaks ties between sources; earlier names win.
	SourcePriority []string
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		MinRelevance:   0.5,
		MaxAlternates:  9,
		MaxCandidates:  50,
		LearnCacheSize: 256,
	}
}

// Engine ranks index candidates for partial input.
type Engine struct {
	store    *index.Store
	learner  *learn.Store
	cache    *lru.Cache[string, map[string]int]
	cfg      Config
	priority map[string]int
}

// New creates an engine over the index and learning stores.
func New(store *index.Store, learner *learn.Store, cfg Config) (*Engine, error) {
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = DefaultConfig().MaxCandidates
	}
	if cfg.LearnCacheSize <= 0 {
		cfg.LearnCacheSize = DefaultConfig().LearnCacheSize
	}

	cache, err := lru.New[string, map[string]int](cfg.LearnCacheSize)
	if err != nil {
		return nil, err
	}

	priority := make(map[string]int, len(cfg.SourcePriority))
	for i, name := range cfg.SourcePriority {
		priority[name] = i
	}

	return &Engine{
		store:    store,
		learner:  learner,
		cache:    cache,
		cfg:      cfg,
		priority: priority,
	}, nil
}

// Query resolves input into a ranked completion result. Read-only with
// respect to the index; errors are returned for the caller to degrade
// into a literal-text fallback.
func (e *Engine) Query(ctx context.Context, input string) (Result, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Literal(input), nil
	}

	hits, err := e.store.Query(ctx, trimmed, e.cfg.MaxCandidates)
	if err != nil {
		return Literal(input), errors.QueryError(err)
	}

	boosts := e.learnedBoosts(ctx, trimmed)

	candidates := make([]CommandResult, 0, len(hits))
	for _, hit := range hits {
		name := hit.Name()
		if name == "" {
			continue
		}

		lex := lexicalScore(trimmed, name)
		uses := boosts[hit.ID]
		if uses == 0 && lex < e.cfg.MinRelevance {
			continue
		}

		score := lex
		if uses > 0 {
			score = learnedBoost + float64(uses) + lex
		}

		candidates = append(candidates, CommandResult{
			Item: IndexedItem{
				Name:   name,
				Desc:   hit.Fields[item.FieldDescription],
				Source: hit.SourceID,
				Kind:   hit.Fields[item.FieldKind],
				DocID:  hit.ID,
			},
			DocID:    hit.ID,
			SourceID: hit.SourceID,
			Score:    score,
			Lexical:  lex,
		})
	}

	if len(candidates) == 0 {
		return Result{Input: input, Completion: Literal(input).Completion, Alternates: []CommandResult{}}, nil
	}

	e.rank(candidates)

	alternates := candidates[1:]
	if len(alternates) > e.cfg.MaxAlternates {
		alternates = alternates[:e.cfg.MaxAlternates]
	}

	return Result{
		Input:         input,
		Completion:    candidates[0],
		Alternates:    alternates,
		HasCompletion: true,
	}, nil
}

// rank orders candidates by combined score, then lexical score, then
// source priority, then index order (SliceStable) for determinism.
func (e *Engine) rank(candidates []CommandResult) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Lexical != b.Lexical {
			return a.Lexical > b.Lexical
		}
		return e.sourceRank(a.SourceID) < e.sourceRank(b.SourceID)
	})
}

func (e *Engine) sourceRank(source string) int {
	if rank, ok := e.priority[source]; ok {
		return rank
	}
	return len(e.priority)
}

// learnedBoosts fetches learned associations for the literal input,
// through the LRU. Learning is advisory: failures degrade to no boost.
func (e *Engine) learnedBoosts(ctx context.Context, input string) map[string]int {
	if e.learner == nil {
		return nil
	}
	if cached, ok := e.cache.Get(input); ok {
		return cached
	}

	boosts, err := e.learner.Lookup(ctx, input)
	if err != nil {
		slog.Warn("learned_lookup_failed",
			slog.String("input", input),
			slog.String("error", err.Error()))
		return nil
	}
	e.cache.Add(input, boosts)
	return boosts
}

// Learn records the user's selection for input. Literal text fallbacks
// carry no document identity and are not learned. Does not retroactively
// alter already-issued results.
func (e *Engine) Learn(ctx context.Context, input string, chosen CommandResult) error {
	if chosen.DocID == "" {
		return nil
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}

	if err := e.learner.Learn(ctx, input, chosen.DocID); err != nil {
		return errors.Wrap(errors.ErrCodeLearnFailed, err)
	}
	e.cache.Remove(input)
	return nil
}

// CompleteArguments ranks an action's argument candidates against the
// partial argument text. Same contract as Query, scoped to the action's
// argument domain; no learning applies.
func (e *Engine) CompleteArguments(ctx context.Context, action item.ArgumentCompleter, it item.Item, partial string) (Result, error) {
	candidates, err := action.ArgumentCandidates(ctx, it, partial)
	if err != nil {
		return Literal(partial), errors.QueryError(err)
	}

	trimmed := strings.TrimSpace(partial)
	results := make([]CommandResult, 0, len(candidates))
	for _, cand := range candidates {
		lex := 1.0
		if trimmed != "" {
			lex = lexicalScore(trimmed, cand)
			if lex < e.cfg.MinRelevance {
				continue
			}
		}
		results = append(results, CommandResult{
			Item:    item.TextItem{Content: cand},
			Score:   lex,
			Lexical: lex,
		})
	}

	if len(results) == 0 {
		return Result{Input: partial, Completion: Literal(partial).Completion, Alternates: []CommandResult{}}, nil
	}

	e.rank(results)

	alternates := results[1:]
	if len(alternates) > e.cfg.MaxAlternates {
		alternates = alternates[:e.cfg.MaxAlternates]
	}

	return Result{
		Input:         partial,
		Completion:    results[0],
		Alternates:    alternates,
		HasCompletion: true,
	}, nil
}
