package complete

import (
	"strings"

	"github.com/hbollon/go-edlib"
)

// Score bands: exact input always outranks a prefix match, and any
// prefix match outranks any fuzzy match.
const (
	exactScore   = 1.0
	prefixFloor  = 0.8
	fuzzyCeiling = 0.8
)

// lexicalScore rates how closely candidate matches input, in [0, 1].
// Exact (case-insensitive) = 1.0; prefix matches land in
// [prefixFloor, 1.0) scaled by coverage; everything else is
// Jaro-Winkler similarity compressed under fuzzyCeiling.
func lexicalScore(input, candidate string) float64 {
	in := strings.ToLower(strings.TrimSpace(input))
	c := strings.ToLower(strings.TrimSpace(candidate))

	if in == "" || c == "" {
		return 0
	}
	if in == c {
		return exactScore
	}
	if strings.HasPrefix(c, in) {
		coverage := float64(len(in)) / float64(len(c))
		return prefixFloor + (exactScore-prefixFloor)*coverage
	}
	// Token-level prefix: "fire" still ranks "mozilla firefox" as a
	// prefix match, slightly under a whole-string prefix.
	for _, tok := range strings.FieldsFunc(c, isTokenBoundary) {
		if strings.HasPrefix(tok, in) {
			coverage := float64(len(in)) / float64(len(tok))
			return prefixFloor + (exactScore-prefixFloor)*coverage*0.9
		}
	}

	sim, err := edlib.StringsSimilarity(in, c, edlib.JaroWinkler)
	if err != nil {
		return 0
	}
	return fuzzyCeiling * float64(sim)
}

func isTokenBoundary(r rune) bool {
	switch r {
	case ' ', '-', '_', '.', '/', '\\':
		return true
	}
	return false
}
