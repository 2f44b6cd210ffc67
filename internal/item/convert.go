package item

import (
	"fmt"
)

// Fields is the set of named text fields a converter derives from one
// item. The index store adds its own system fields on top.
type Fields map[string]string

// Well-known field names. Converters may add arbitrary extra fields;
// these three drive completion display and action dispatch.
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldKind        = "kind"
)

// Converter turns items it recognizes into indexable fields.
// Implementations are registered in a Registry; polymorphism over item
// types is a first-match lookup, not open-ended dynamic dispatch.
type Converter interface {
	CanConvert(it Item) bool
	Convert(it Item) (Fields, error)
}

// Registry is an ordered converter lookup table. Registration order is
// match order; the first converter claiming an item wins.
type Registry struct {
	converters []Converter
}

// NewRegistry creates a registry with the given converters.
func NewRegistry(converters ...Converter) *Registry {
	return &Registry{converters: converters}
}

// Register appends a converter to the lookup table.
func (r *Registry) Register(c Converter) {
	r.converters = append(r.converters, c)
}

// Find returns the first converter that can convert it.
func (r *Registry) Find(it Item) (Converter, bool) {
	for _, c := range r.converters {
		if c.CanConvert(it) {
			return c, true
		}
	}
	return nil, false
}

// Convert resolves a converter for it and applies it.
func (r *Registry) Convert(it Item) (Fields, error) {
	c, ok := r.Find(it)
	if !ok {
		return nil, fmt.Errorf("no converter registered for item %q", it.Text())
	}
	return c.Convert(it)
}

// TextConverter converts TextItem values. It backs the literal-input
// fallback and keeps the registry total over core item types.
type TextConverter struct{}

func (TextConverter) CanConvert(it Item) bool {
	_, ok := it.(TextItem)
	return ok
}

func (TextConverter) Convert(it Item) (Fields, error) {
	return Fields{
		FieldName: it.Text(),
		FieldKind: "text",
	}, nil
}
