// Package predicate defines the structured filter shared by the typed-parameter
// and natural-language lookup paths.
package predicate

import (
	"fmt"
	"unicode/utf8"

	"github.com/kailas-cloud/strindex/internal/domain"
)

// Predicate is a set of optional constraints over record properties. Nil means absent.
// Length bounds are inclusive.
type Predicate struct {
	IsPalindrome      *bool   `json:"is_palindrome,omitempty"`
	WordCount         *int    `json:"word_count,omitempty"`
	MinLength         *int    `json:"min_length,omitempty"`
	MaxLength         *int    `json:"max_length,omitempty"`
	ContainsCharacter *string `json:"contains_character,omitempty"`
}

// IsEmpty reports whether no constraint is set.
func (p Predicate) IsEmpty() bool {
	return p.IsPalindrome == nil && p.WordCount == nil &&
		p.MinLength == nil && p.MaxLength == nil && p.ContainsCharacter == nil
}

// Params holds the typed structured filters of a list request, as bound from the query string.
type Params struct {
	IsPalindrome      *bool
	MinLength         *int
	MaxLength         *int
	WordCount         *int
	ContainsCharacter *string
}

// Predicate range-checks every present field and converts the params into a Predicate.
// Integers must be non-negative and contains_character must be exactly one character.
func (p Params) Predicate() (Predicate, error) {
	for name, v := range map[string]*int{
		"min_length": p.MinLength,
		"max_length": p.MaxLength,
		"word_count": p.WordCount,
	} {
		if v != nil && *v < 0 {
			return Predicate{}, fmt.Errorf("%s must be a non-negative integer: %w", name, domain.ErrInvalidFilter)
		}
	}
	if p.ContainsCharacter != nil && utf8.RuneCountInString(*p.ContainsCharacter) != 1 {
		return Predicate{}, fmt.Errorf("contains_character must be a single character: %w", domain.ErrInvalidFilter)
	}

	return Predicate{
		IsPalindrome:      p.IsPalindrome,
		WordCount:         p.WordCount,
		MinLength:         p.MinLength,
		MaxLength:         p.MaxLength,
		ContainsCharacter: p.ContainsCharacter,
	}, nil
}

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
