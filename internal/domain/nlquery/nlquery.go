// Package nlquery translates free-form lookup phrases into a structured predicate
// through a fixed, ordered list of lexical rules.
package nlquery

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/kailas-cloud/strindex/internal/domain"
	"github.com/kailas-cloud/strindex/internal/domain/predicate"
)

const (
	reasonEmpty       = "query must be a non-empty string"
	reasonUnparseable = "unable to parse query"
	reasonOutOfRange  = "number out of range"
)

// Rule names, in evaluation order.
const (
	RulePalindromic         = "palindromic"
	RuleSingleWord          = "single_word"
	RuleWordCount           = "word_count"
	RuleLongerThan          = "longer_than"
	RuleShorterThan         = "shorter_than"
	RuleLetter              = "letter"
	RuleContainingTheLetter = "containing_the_letter"
)

var (
	wordCountRe   = regexp.MustCompile(`(\d+)\s+word`)
	longerThanRe  = regexp.MustCompile(`longer than\s+(\d+)`)
	shorterThanRe = regexp.MustCompile(`shorter than\s+(\d+)`)
	letterRe      = regexp.MustCompile(`letter\s+([a-z])`)
	containingRe  = regexp.MustCompile(`containing the letter\s*'?([a-z])'?`)
)

// rule inspects the normalized phrase and writes into p when it fires.
type rule struct {
	name  string
	apply func(q string, p *predicate.Predicate) (bool, error)
}

// rules is evaluated top to bottom; a later rule overwrites a field set by an earlier one.
// The order is observable: a numeric word count beats "single/one word", and
// "containing the letter" beats a bare "letter".
var rules = []rule{
	{RulePalindromic, func(q string, p *predicate.Predicate) (bool, error) {
		if !strings.Contains(q, "palindromic") {
			return false, nil
		}
		p.IsPalindrome = predicate.Bool(true)
		return true, nil
	}},
	{RuleSingleWord, func(q string, p *predicate.Predicate) (bool, error) {
		if !strings.Contains(q, "single word") && !strings.Contains(q, "one word") {
			return false, nil
		}
		p.WordCount = predicate.Int(1)
		return true, nil
	}},
	{RuleWordCount, numberRule(wordCountRe, func(p *predicate.Predicate, n int) bool {
		p.WordCount = predicate.Int(n)
		return true
	})},
	{RuleLongerThan, numberRule(longerThanRe, func(p *predicate.Predicate, n int) bool {
		if n == math.MaxInt {
			return false
		}
		p.MinLength = predicate.Int(n + 1)
		return true
	})},
	{RuleShorterThan, numberRule(shorterThanRe, func(p *predicate.Predicate, n int) bool {
		p.MaxLength = predicate.Int(n - 1)
		return true
	})},
	{RuleLetter, letterRule(letterRe)},
	{RuleContainingTheLetter, letterRule(containingRe)},
}

// numberRule extracts the first integer group of re and hands it to set.
// set returns false when the derived bound cannot be represented.
func numberRule(
	re *regexp.Regexp, set func(p *predicate.Predicate, n int) bool,
) func(string, *predicate.Predicate) (bool, error) {
	return func(q string, p *predicate.Predicate) (bool, error) {
		m := re.FindStringSubmatch(q)
		if m == nil {
			return false, nil
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || !set(p, n) {
			return false, domain.NewParseError(reasonOutOfRange)
		}
		return true, nil
	}
}

func letterRule(re *regexp.Regexp) func(string, *predicate.Predicate) (bool, error) {
	return func(q string, p *predicate.Predicate) (bool, error) {
		m := re.FindStringSubmatch(q)
		if m == nil {
			return false, nil
		}
		p.ContainsCharacter = predicate.String(m[1])
		return true, nil
	}
}

// Translate maps phrase to a predicate. It fails with a *domain.ParseError when the
// phrase is blank or when no rule fires.
func Translate(phrase string) (predicate.Predicate, error) {
	p, _, err := Explain(phrase)
	return p, err
}

// Explain is Translate that also reports the names of the rules that fired, in order.
func Explain(phrase string) (predicate.Predicate, []string, error) {
	q := strings.ToLower(strings.TrimSpace(phrase))
	if q == "" {
		return predicate.Predicate{}, nil, domain.NewParseError(reasonEmpty)
	}

	var (
		p       predicate.Predicate
		matched []string
	)
	for _, r := range rules {
		ok, err := r.apply(q, &p)
		if err != nil {
			return predicate.Predicate{}, nil, err
		}
		if ok {
			matched = append(matched, r.name)
		}
	}

	if p.IsEmpty() {
		return predicate.Predicate{}, nil, domain.NewParseError(reasonUnparseable)
	}
	return p, matched, nil
}
