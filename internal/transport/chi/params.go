package chi

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	gochi "github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/strindex/internal/domain"
	"github.com/kailas-cloud/strindex/internal/domain/predicate"
)

const (
	paramStringValue = "string_value"
	paramQuery       = "query"
)

// bindListParams binds the typed list filters. A value of the wrong type is an invalid filter.
func bindListParams(q url.Values) (predicate.Params, error) {
	var (
		p          predicate.Params
		palindrome *string
	)

	bindings := []struct {
		name string
		dest any
	}{
		{"is_palindrome", &palindrome},
		{"min_length", &p.MinLength},
		{"max_length", &p.MaxLength},
		{"word_count", &p.WordCount},
		{"contains_character", &p.ContainsCharacter},
	}
	for _, b := range bindings {
		if err := runtime.BindQueryParameter("form", true, false, b.name, q, b.dest); err != nil {
			return predicate.Params{}, fmt.Errorf("%s has an invalid value: %w", b.name, domain.ErrInvalidFilter)
		}
	}

	if palindrome != nil {
		switch strings.ToLower(*palindrome) {
		case "true":
			p.IsPalindrome = predicate.Bool(true)
		case "false":
			p.IsPalindrome = predicate.Bool(false)
		default:
			return predicate.Params{}, fmt.Errorf("is_palindrome must be true or false: %w", domain.ErrInvalidFilter)
		}
	}
	return p, nil
}

// bindPhrase binds the natural-language query parameter.
func bindPhrase(q url.Values) (string, error) {
	var phrase *string
	if err := runtime.BindQueryParameter("form", true, false, paramQuery, q, &phrase); err != nil {
		return "", domain.NewParseError("query must be a single string")
	}
	if phrase == nil || strings.TrimSpace(*phrase) == "" {
		return "", domain.NewParseError("query must be a non-empty string")
	}
	return *phrase, nil
}

// pathValue returns the decoded {string_value} segment.
// chi routes on RawPath when the URL carries escapes Path cannot express, leaving the param encoded.
func pathValue(r *http.Request) string {
	v := gochi.URLParam(r, paramStringValue)
	if r.URL.RawPath == "" {
		return v
	}
	if decoded, err := url.PathUnescape(v); err == nil {
		return decoded
	}
	return v
}
