// Package index provides the persistent full-text index over converted
// items. It wraps Bleve v2 with the document lifecycle lantern needs:
// idempotent open-or-create, upsert by identity, predicate delete of
// stale documents, and an atomic batch commit readers can never observe
// half-applied.
package index

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// System fields attached to every document. They are indexed verbatim
// (keyword analyzer) and excluded from the composite search field.
const (
	FieldSourceID = "source_id"
	FieldRunTag   = "run_tag"
)

// Document is the indexable representation of one item: converter
// fields plus the system fields identifying the producing source and
// the reconciliation cycle that last wrote it.
type Document struct {
	// ID is the identity key; re-indexing the same item overwrites in
	// place rather than accumulating duplicates.
	ID string
	// SourceID names the item source that produced this document.
	SourceID string
	// RunTag is the opaque token of the cycle that last wrote it.
	RunTag string
	// Fields are the converter-produced named text fields.
	Fields map[string]string
}

// Hit is one query match with its stored fields.
type Hit struct {
	ID       string
	Score    float64
	SourceID string
	RunTag   string
	Fields   map[string]string
}

// Name returns the hit's primary completion text.
func (h Hit) Name() string { return h.Fields["name"] }

// DocumentID derives the identity key for an item within a source.
// Deterministic so every cycle upserts the same key for the same item.
func DocumentID(sourceID, itemID string) string {
	input := fmt.Sprintf("%s:%s", sourceID, itemID)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])[:16]
}
