package index

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/gofrs/flock"
)

// Store is the durable full-text index shared between the indexing
// pipeline (writer) and the autocomplete pipeline (reader). Bleve
// batches give the committed-snapshot read model: queries observe
// either the pre-commit or post-commit state, never a partial cycle.
type Store struct {
	mu     sync.RWMutex
	index  bleve.Index
	path   string
	lock   *flock.Flock
	closed bool
}

// Batch accumulates one cycle's upserts and deletes. Applying it via
// Commit is the cycle's single atomic visibility point.
type Batch struct {
	b   *bleve.Batch
	ids map[string]struct{}
}

// validateIntegrity checks if a Bleve index directory is valid before
// opening. Returns nil if valid or absent.
func validateIntegrity(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	metaPath := filepath.Join(path, "index_meta.json")
	info, err := os.Stat(metaPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("index_meta.json missing (corrupted index)")
	}
	if err != nil {
		return fmt.Errorf("cannot stat index_meta.json: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("index_meta.json is empty (corrupted)")
	}

	data, err := os.ReadFile(metaPath)
	if err != nil {
		return fmt.Errorf("cannot read index_meta.json: %w", err)
	}
	var meta map[string]interface{}
	if err := json.Unmarshal(data, &meta); err != nil {
		return fmt.Errorf("index_meta.json is corrupt: %w", err)
	}

	return nil
}

// isCorruptionError checks if an error indicates Bleve index corruption.
func isCorruptionError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "unexpected end of JSON") ||
		strings.Contains(errStr, "error parsing mapping JSON") ||
		strings.Contains(errStr, "failed to load segment") ||
		strings.Contains(errStr, "error opening bolt") ||
		err == bleve.ErrorIndexMetaCorrupt
}

// Open opens or creates the index at path. Opening is idempotent; a
// corrupted index is cleared and recreated (the next reconciliation
// cycles repopulate it). An empty path creates an in-memory index for
// testing. The on-disk index directory is guarded by a file lock so a
// second lantern process fails fast instead of corrupting segments.
func Open(path string) (*Store, error) {
	indexMapping, err := createIndexMapping()
	if err != nil {
		return nil, fmt.Errorf("failed to create index mapping: %w", err)
	}

	if path == "" {
		idx, err := bleve.NewMemOnly(indexMapping)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory index: %w", err)
		}
		return &Store{index: idx}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", filepath.Dir(path), err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire index lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("index at %s is locked by another process", path)
	}

	if validErr := validateIntegrity(path); validErr != nil {
		slog.Warn("index_corrupted",
			slog.String("path", path),
			slog.String("error", validErr.Error()))

		if removeErr := os.RemoveAll(path); removeErr != nil {
			_ = lock.Unlock()
			return nil, fmt.Errorf("index corrupted at %s and cannot remove: %w (original error: %v)", path, removeErr, validErr)
		}
		slog.Info("index_cleared",
			slog.String("path", path),
			slog.String("reason", "corruption detected, sources will reindex"))
	}

	idx, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		idx, err = bleve.New(path, indexMapping)
	} else if err != nil && isCorruptionError(err) {
		slog.Warn("index_open_failed",
			slog.String("path", path),
			slog.String("error", err.Error()))

		if removeErr := os.RemoveAll(path); removeErr != nil {
			_ = lock.Unlock()
			return nil, fmt.Errorf("index corrupted, cannot clear: %w (original: %v)", removeErr, err)
		}
		idx, err = bleve.New(path, indexMapping)
	}
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("failed to create/open index: %w", err)
	}

	return &Store{index: idx, path: path, lock: lock}, nil
}

// createIndexMapping builds the Bleve mapping: dynamic text fields for
// converter output, keyword-analyzed system fields kept out of the
// composite field so run tags never match user input.
func createIndexMapping() (*mapping.IndexMappingImpl, error) {
	indexMapping := bleve.NewIndexMapping()

	system := bleve.NewTextFieldMapping()
	system.Analyzer = keyword.Name
	system.IncludeInAll = false

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt(FieldSourceID, system)
	doc.AddFieldMappingsAt(FieldRunTag, system)
	indexMapping.DefaultMapping = doc

	return indexMapping, nil
}

// NewBatch starts an empty batch.
func (s *Store) NewBatch() *Batch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &Batch{b: s.index.NewBatch(), ids: make(map[string]struct{})}
}

// Upsert stages a document write. The same ID staged twice keeps the
// last write.
func (b *Batch) Upsert(doc Document) error {
	data := make(map[string]interface{}, len(doc.Fields)+2)
	for k, v := range doc.Fields {
		data[k] = v
	}
	data[FieldSourceID] = doc.SourceID
	data[FieldRunTag] = doc.RunTag

	if err := b.b.Index(doc.ID, data); err != nil {
		return fmt.Errorf("failed to stage document %s: %w", doc.ID, err)
	}
	b.ids[doc.ID] = struct{}{}
	return nil
}

// Delete stages a document removal.
func (b *Batch) Delete(id string) {
	b.b.Delete(id)
}

// Len returns the number of staged operations.
func (b *Batch) Len() int {
	return b.b.Size()
}

// DeleteStale stages deletion of every committed document of sourceID
// whose run tag differs from keepTag, skipping IDs the batch is about
// to upsert. This is the staleness sweep: O(stale documents), no diff
// against the previous item set needed.
func (s *Store) DeleteStale(ctx context.Context, b *Batch, sourceID, keepTag string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, fmt.Errorf("index is closed")
	}

	bySource := bleve.NewTermQuery(sourceID)
	bySource.SetField(FieldSourceID)
	currentTag := bleve.NewTermQuery(keepTag)
	currentTag.SetField(FieldRunTag)

	stale := bleve.NewBooleanQuery()
	stale.AddMust(bySource)
	stale.AddMustNot(currentTag)

	docCount, _ := s.index.DocCount()
	req := bleve.NewSearchRequest(stale)
	req.Size = int(docCount)
	req.Fields = []string{}

	result, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("stale document search failed: %w", err)
	}

	swept := 0
	for _, hit := range result.Hits {
		if _, upserting := b.ids[hit.ID]; upserting {
			continue
		}
		b.b.Delete(hit.ID)
		swept++
	}
	return swept, nil
}

// Commit applies the batch atomically. On error nothing from the batch
// becomes visible; the previous committed state stays authoritative.
func (s *Store) Commit(ctx context.Context, b *Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("index is closed")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.index.Batch(b.b); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

// Query searches the committed index for candidates matching input as
// an exact token, prefix, or fuzzy match. Hits carry stored fields.
func (s *Store) Query(ctx context.Context, input string, limit int) ([]Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("index is closed")
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return []Hit{}, nil
	}

	// Prefix and fuzzy terms are not analyzed by bleve, so lowercase to
	// line up with the standard analyzer's tokens.
	term := strings.ToLower(input)

	match := bleve.NewMatchQuery(input)
	prefix := bleve.NewPrefixQuery(term)
	fuzzy := bleve.NewFuzzyQuery(term)
	fuzzy.SetFuzziness(1)

	req := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(match, prefix, fuzzy))
	req.Size = limit
	req.Fields = []string{"*"}

	result, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	hits := make([]Hit, 0, len(result.Hits))
	for _, m := range result.Hits {
		h := Hit{
			ID:     m.ID,
			Score:  m.Score,
			Fields: make(map[string]string, len(m.Fields)),
		}
		for k, v := range m.Fields {
			str, ok := v.(string)
			if !ok {
				continue
			}
			switch k {
			case FieldSourceID:
				h.SourceID = str
			case FieldRunTag:
				h.RunTag = str
			default:
				h.Fields[k] = str
			}
		}
		hits = append(hits, h)
	}
	return hits, nil
}

// CountForSource returns the number of committed documents for a source.
func (s *Store) CountForSource(ctx context.Context, sourceID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, fmt.Errorf("index is closed")
	}

	bySource := bleve.NewTermQuery(sourceID)
	bySource.SetField(FieldSourceID)

	docCount, _ := s.index.DocCount()
	req := bleve.NewSearchRequest(bySource)
	req.Size = int(docCount)
	req.Fields = []string{}

	result, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("source count failed: %w", err)
	}
	return int(result.Total), nil
}

// DocCount returns the total number of committed documents.
func (s *Store) DocCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, fmt.Errorf("index is closed")
	}
	return s.index.DocCount()
}

// Close closes the index and releases the directory lock.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	if s.index != nil {
		err = s.index.Close()
	}
	if s.lock != nil {
		_ = s.lock.Unlock()
	}
	return err
}
