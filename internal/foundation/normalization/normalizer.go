// Package normalization maps free-form configuration strings onto typed enum
// values.
package normalization

import (
	"fmt"
	"sort"
	"strings"
)

// Func cleans a raw string before lookup.
type Func func(string) string

// Normalizer provides type-safe string-to-enum normalization.
type Normalizer[T comparable] struct {
	values       map[string]T
	defaultValue T
	clean        Func
	validKeys    []string // cached for error messages
}

// NewNormalizer creates a normalizer from a map of accepted spellings. Keys
// are cleaned with the same function used on input, which defaults to
// lower-casing and trimming whitespace.
func NewNormalizer[T comparable](values map[string]T, defaultValue T, clean ...Func) *Normalizer[T] {
	fn := Func(defaultNormalization)
	if len(clean) > 0 && clean[0] != nil {
		fn = clean[0]
	}

	normalized := make(map[string]T, len(values))
	validKeys := make([]string, 0, len(values))
	for k, v := range values {
		key := fn(k)
		normalized[key] = v
		validKeys = append(validKeys, key)
	}
	sort.Strings(validKeys)

	return &Normalizer[T]{
		values:       normalized,
		defaultValue: defaultValue,
		clean:        fn,
		validKeys:    validKeys,
	}
}

// Normalize converts raw to the enum type, returning the default value when
// raw is not recognized.
func (n *Normalizer[T]) Normalize(raw string) T {
	if value, ok := n.values[n.clean(raw)]; ok {
		return value
	}
	return n.defaultValue
}

// NormalizeWithError converts raw to the enum type and reports unknown input.
func (n *Normalizer[T]) NormalizeWithError(raw string) (T, error) {
	if value, ok := n.values[n.clean(raw)]; ok {
		return value, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid value %q, valid options: %s", raw, strings.Join(n.validKeys, ", "))
}

// ValidKeys returns every accepted spelling, sorted.
func (n *Normalizer[T]) ValidKeys() []string {
	out := make([]string, len(n.validKeys))
	copy(out, n.validKeys)
	return out
}

func defaultNormalization(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
