// Package natkey centralizes natural-key normalization. Every cross-table join
// on names, categories, disciplines or column headers goes through here.
package natkey

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Key is a normalized composite key.
type Key string

const sep = "\x1f"

// Fold trims and lowercases s.
func Fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Equal compares two labels case-insensitively after trimming.
func Equal(a, b string) bool {
	return Fold(a) == Fold(b)
}

// Of builds a key from the folded parts.
func Of(parts ...string) Key {
	folded := make([]string, len(parts))
	for i, p := range parts {
		folded[i] = Fold(p)
	}
	return Key(strings.Join(folded, sep))
}

// Name is the (first, last) person key.
func Name(first, last string) Key {
	return Of(first, last)
}

// Person is the (first, last, birthdate) person key.
func Person(first, last, birthdate string) Key {
	return Of(first, last, birthdate)
}

// Sex normalizes a sex label to title case ("male" -> "Male").
func Sex(s string) string {
	return cases.Title(language.Und).String(strings.TrimSpace(s))
}

// Column normalizes a header for matching: spaces removed, lowercased.
func Column(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

// Index groups values by key, preserving insertion order within a key.
type Index[T any] map[Key][]T

// NewIndex builds an index over items with keyFn.
func NewIndex[T any](items []T, keyFn func(T) Key) Index[T] {
	idx := make(Index[T], len(items))
	for _, it := range items {
		k := keyFn(it)
		idx[k] = append(idx[k], it)
	}
	return idx
}

// First returns the first value stored under k.
func (idx Index[T]) First(k Key) (T, bool) {
	var zero T
	vs := idx[k]
	if len(vs) == 0 {
		return zero, false
	}
	return vs[0], true
}
