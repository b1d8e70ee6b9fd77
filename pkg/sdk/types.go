package strindex

import (
	"time"

	"github.com/kailas-cloud/strindex/internal/domain/predicate"
	domrec "github.com/kailas-cloud/strindex/internal/domain/record"
)

// Properties are the values computed from a string.
type Properties struct {
	Length                int            `json:"length"`
	IsPalindrome          bool           `json:"is_palindrome"`
	UniqueCharacters      int            `json:"unique_characters"`
	WordCount             int            `json:"word_count"`
	SHA256Hash            string         `json:"sha256_hash"`
	CharacterFrequencyMap map[string]int `json:"character_frequency_map"`
}

// Record is a stored string.
type Record struct {
	ID         string     `json:"id"`
	Value      string     `json:"value"`
	Properties Properties `json:"properties"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Filters constrain a lookup. Nil fields are ignored; length bounds are inclusive.
type Filters struct {
	IsPalindrome      *bool   `json:"is_palindrome,omitempty"`
	MinLength         *int    `json:"min_length,omitempty"`
	MaxLength         *int    `json:"max_length,omitempty"`
	WordCount         *int    `json:"word_count,omitempty"`
	ContainsCharacter *string `json:"contains_character,omitempty"`
}

// ListResult is the outcome of List.
type ListResult struct {
	Records []Record
	Count   int
	Filters Filters
}

// PhraseResult is the outcome of ListByPhrase.
type PhraseResult struct {
	Records []Record
	Count   int
	// Original is the phrase as given.
	Original string
	// Parsed is the structured interpretation of Original.
	Parsed Filters
}

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }

func recordFromDomain(r *domrec.Record) Record {
	p := r.Properties()
	return Record{
		ID:    r.ID(),
		Value: r.Value(),
		Properties: Properties{
			Length:                p.Length,
			IsPalindrome:          p.IsPalindrome,
			UniqueCharacters:      p.UniqueCharacters,
			WordCount:             p.WordCount,
			SHA256Hash:            p.SHA256Hash,
			CharacterFrequencyMap: p.CharacterFrequencyMap,
		},
		CreatedAt: r.CreatedAt(),
	}
}

func recordsFromDomain(recs []domrec.Record) []Record {
	out := make([]Record, len(recs))
	for i := range recs {
		out[i] = recordFromDomain(&recs[i])
	}
	return out
}

func (f Filters) params() predicate.Params {
	return predicate.Params{
		IsPalindrome:      f.IsPalindrome,
		MinLength:         f.MinLength,
		MaxLength:         f.MaxLength,
		WordCount:         f.WordCount,
		ContainsCharacter: f.ContainsCharacter,
	}
}

func filtersFromPredicate(p predicate.Predicate) Filters {
	return Filters{
		IsPalindrome:      p.IsPalindrome,
		MinLength:         p.MinLength,
		MaxLength:         p.MaxLength,
		WordCount:         p.WordCount,
		ContainsCharacter: p.ContainsCharacter,
	}
}
