package notes

import (
	"math/rand/v2"
	"strings"
)

// VariantSeparator splits a note body into alternative texts.
const VariantSeparator = "%%%"

// Selector picks one variant of a note body per retrieval.
type Selector struct {
	intn func(n int) int
}

func NewSelector() *Selector {
	return &Selector{intn: rand.IntN}
}

// NewSelectorWithSource is used by tests that need a predictable pick.
func NewSelectorWithSource(intn func(n int) int) *Selector {
	return &Selector{intn: intn}
}

func (s *Selector) Select(raw string) string {
	if raw == "" {
		return ""
	}

	variants := strings.Split(raw, VariantSeparator)
	if len(variants) == 1 {
		return variants[0]
	}

	i := s.intn(len(variants))
	if i < 0 || i >= len(variants) {
		return ""
	}
	return variants[i]
}

// SelectVariant picks a variant using the shared random source.
func SelectVariant(raw string) string {
	return defaultSelector.Select(raw)
}

var defaultSelector = NewSelector()
