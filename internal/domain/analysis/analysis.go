// Package analysis derives the canonical property set of a string.
package analysis

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Properties is the set of values computed from a string. Fully determined by the input.
type Properties struct {
	Length                int            `json:"length"`
	IsPalindrome          bool           `json:"is_palindrome"`
	UniqueCharacters      int            `json:"unique_characters"`
	WordCount             int            `json:"word_count"`
	SHA256Hash            string         `json:"sha256_hash"`
	CharacterFrequencyMap map[string]int `json:"character_frequency_map"`
}

// Analyze computes Properties for value. Total over every input, including "".
// Characters are Unicode code points.
func Analyze(value string) Properties {
	freq := make(map[string]int)
	for _, r := range value {
		freq[string(r)]++
	}

	return Properties{
		Length:                utf8.RuneCountInString(value),
		IsPalindrome:          IsPalindrome(value),
		UniqueCharacters:      len(freq),
		WordCount:             WordCount(value),
		SHA256Hash:            Hash(value),
		CharacterFrequencyMap: freq,
	}
}

// Hash returns the lowercase hex SHA-256 of the UTF-8 bytes of value.
func Hash(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

// IsPalindrome reports whether value reads the same reversed once lower-cased
// and stripped of whitespace. The empty string is a palindrome.
func IsPalindrome(value string) bool {
	normalized := Normalize(value)
	for i, j := 0, len(normalized)-1; i < j; i, j = i+1, j-1 {
		if normalized[i] != normalized[j] {
			return false
		}
	}
	return true
}

// Normalize lower-cases value and drops every whitespace rune.
func Normalize(value string) []rune {
	out := make([]rune, 0, len(value))
	for _, r := range strings.ToLower(value) {
		if unicode.IsSpace(r) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// WordCount counts whitespace-delimited tokens. Empty and whitespace-only input yields 0.
func WordCount(value string) int {
	return len(strings.Fields(value))
}
