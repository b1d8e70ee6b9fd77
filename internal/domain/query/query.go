// Package query is the store-neutral query form that structured predicates compile to.
// Each store renders an Expression natively (FT.SEARCH, SQL) or evaluates it in process.
package query

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/strindex/internal/domain/predicate"
)

// Stored property names referenced by compiled conditions.
const (
	FieldValue        = "value"
	FieldLength       = "length"
	FieldIsPalindrome = "is_palindrome"
	FieldWordCount    = "word_count"
)

// MaxConditions is the maximum number of conditions in one expression.
const MaxConditions = 32

// Expression is a conjunction of conditions. The empty expression matches every record.
type Expression struct {
	must []Condition
}

// NewExpression validates and creates an Expression.
func NewExpression(must []Condition) (Expression, error) {
	if len(must) > MaxConditions {
		return Expression{}, fmt.Errorf("too many conditions (max %d)", MaxConditions)
	}
	return Expression{must: must}, nil
}

// Must returns the conditions, all of which must hold.
func (e Expression) Must() []Condition { return e.must }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool { return len(e.must) == 0 }

// Kind discriminates condition variants.
type Kind int

const (
	// KindBool is an exact match on a boolean property.
	KindBool Kind = iota
	// KindInt is an exact match on an integer property.
	KindInt
	// KindRange is an inclusive integer range.
	KindRange
	// KindContains is a case-insensitive character membership test on a text property.
	KindContains
)

// Condition is a single clause over one stored property.
type Condition struct {
	key       string
	kind      Kind
	boolVal   bool
	intVal    int
	rangeExpr *Range
	char      string
}

// NewBoolMatch creates an exact boolean match.
func NewBoolMatch(key string, v bool) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{key: key, kind: KindBool, boolVal: v}, nil
}

// NewIntMatch creates an exact integer match.
func NewIntMatch(key string, v int) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{key: key, kind: KindInt, intVal: v}, nil
}

// NewRange creates an inclusive range condition.
func NewRange(key string, r Range) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{key: key, kind: KindRange, rangeExpr: &r}, nil
}

// NewContains creates a case-insensitive membership test for char.
func NewContains(key, char string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if char == "" {
		return Condition{}, fmt.Errorf("character is required for key %q", key)
	}
	return Condition{key: key, kind: KindContains, char: char}, nil
}

// Key returns the property name.
func (c Condition) Key() string { return c.key }

// Kind returns the condition variant.
func (c Condition) Kind() Kind { return c.kind }

// Bool returns the boolean match value.
func (c Condition) Bool() bool { return c.boolVal }

// Int returns the integer match value.
func (c Condition) Int() int { return c.intVal }

// Range returns the range expression, nil unless Kind is KindRange.
func (c Condition) Range() *Range { return c.rangeExpr }

// Char returns the character of a contains condition.
func (c Condition) Char() string { return c.char }

// Range is an inclusive integer range. A nil bound is open.
type Range struct {
	gte *int
	lte *int
}

// NewRangeFilter validates and creates a Range. At least one bound is required.
// Bounds are not checked against each other: min > max is a valid range that matches nothing.
func NewRangeFilter(gte, lte *int) (Range, error) {
	if gte == nil && lte == nil {
		return Range{}, fmt.Errorf("at least one range boundary is required")
	}
	return Range{gte: gte, lte: lte}, nil
}

// GTE returns the inclusive lower bound.
func (r Range) GTE() *int { return r.gte }

// LTE returns the inclusive upper bound.
func (r Range) LTE() *int { return r.lte }

// Contains reports whether n lies within the range.
func (r Range) Contains(n int) bool {
	if r.gte != nil && n < *r.gte {
		return false
	}
	if r.lte != nil && n > *r.lte {
		return false
	}
	return true
}

// Compile maps a predicate onto an Expression. Total: every present field becomes one
// condition and the empty predicate compiles to the match-all expression.
func Compile(p predicate.Predicate) Expression {
	var must []Condition

	if p.IsPalindrome != nil {
		must = append(must, Condition{key: FieldIsPalindrome, kind: KindBool, boolVal: *p.IsPalindrome})
	}
	if p.WordCount != nil {
		must = append(must, Condition{key: FieldWordCount, kind: KindInt, intVal: *p.WordCount})
	}
	if p.MinLength != nil || p.MaxLength != nil {
		must = append(must, Condition{
			key:       FieldLength,
			kind:      KindRange,
			rangeExpr: &Range{gte: p.MinLength, lte: p.MaxLength},
		})
	}
	if p.ContainsCharacter != nil && *p.ContainsCharacter != "" {
		must = append(must, Condition{key: FieldValue, kind: KindContains, char: *p.ContainsCharacter})
	}

	return Expression{must: must}
}

// Row exposes the stored properties of one record to in-process evaluation.
type Row interface {
	Bool(key string) (bool, bool)
	Int(key string) (int, bool)
	Text(key string) (string, bool)
}

// Matches evaluates the expression against row. A condition on a property the row
// does not have never holds.
func (e Expression) Matches(row Row) bool {
	for _, c := range e.must {
		if !c.matches(row) {
			return false
		}
	}
	return true
}

func (c Condition) matches(row Row) bool {
	switch c.kind {
	case KindBool:
		v, ok := row.Bool(c.key)
		return ok && v == c.boolVal
	case KindInt:
		v, ok := row.Int(c.key)
		return ok && v == c.intVal
	case KindRange:
		v, ok := row.Int(c.key)
		return ok && c.rangeExpr.Contains(v)
	case KindContains:
		v, ok := row.Text(c.key)
		return ok && ContainsFold(v, c.char)
	default:
		return false
	}
}

// ContainsFold reports whether s contains char, ignoring case.
func ContainsFold(s, char string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(char))
}

// CharTokensField names the derived multi-value property holding the character
// tokens of the text property key.
func CharTokensField(key string) string { return key + "_chars" }

// CharToken encodes one lowercased code point as a separator-safe token.
func CharToken(r rune) string { return fmt.Sprintf("u%x", r) }

// CharTokens returns the distinct tokens of the lowercased s in first-seen order.
// A string contains char case-insensitively only if its tokens include every
// token of char.
func CharTokens(s string) []string {
	lower := strings.ToLower(s)
	seen := make(map[rune]struct{}, len(lower))
	out := make([]string, 0, len(lower))
	for _, r := range lower {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, CharToken(r))
	}
	return out
}
