package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/strindex/internal/db"
	"github.com/kailas-cloud/strindex/internal/domain/query"
)

// Search lists the hashes matching q.Filters via FT.SEARCH. LIMIT is always sent
// explicitly because the server default truncates to 10 hits.
func (s *Store) Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, errors.New("index name is required")
	}
	if q.Limit <= 0 {
		return nil, errors.New("limit must be positive")
	}
	args := []string{q.IndexName, buildQuery(q.Filters)}

	if q.SortBy != "" {
		args = append(args, "SORTBY", q.SortBy, "ASC")
	}

	args = append(args,
		"LIMIT", "0", strconv.Itoa(q.Limit),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isRedisErr(err, "no such index") || isRedisErr(err, "unknown index name") {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseListResult(raw)
}

// --- Result parsing ---

func parseListResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/2)
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		entries = append(entries, db.SearchEntry{
			Key:    key,
			Fields: parseFieldPairs(fields),
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Query building ---

// buildQuery renders expr as an FT.SEARCH query string. Conditions are
// space-joined, which the query language reads as AND.
func buildQuery(expr query.Expression) string {
	if expr.IsEmpty() {
		return "*"
	}

	parts := make([]string, 0, len(expr.Must()))
	for _, cond := range expr.Must() {
		if p := buildCondition(cond); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

func buildCondition(cond query.Condition) string {
	switch cond.Kind() {
	case query.KindBool:
		return buildTagFilter(cond.Key(), strconv.FormatBool(cond.Bool()))
	case query.KindInt:
		n := strconv.Itoa(cond.Int())
		return fmt.Sprintf("@%s:[%s %s]", cond.Key(), n, n)
	case query.KindRange:
		return buildNumericFilter(cond.Key(), *cond.Range())
	case query.KindContains:
		return buildContainsFilter(cond.Key(), cond.Char())
	default:
		return ""
	}
}

func buildTagFilter(key, value string) string {
	return fmt.Sprintf("@%s:{%s}", key, tagEscaper.Replace(value))
}

func buildNumericFilter(key string, r query.Range) string {
	minBound := "-inf"
	maxBound := "+inf"

	if r.GTE() != nil {
		minBound = strconv.Itoa(*r.GTE())
	}
	if r.LTE() != nil {
		maxBound = strconv.Itoa(*r.LTE())
	}

	return fmt.Sprintf("@%s:[%s %s]", key, minBound, maxBound)
}

// buildContainsFilter matches the character tokens stored alongside the text
// property. Every token of char must be present.
func buildContainsFilter(key, char string) string {
	field := query.CharTokensField(key)
	tokens := query.CharTokens(char)
	parts := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		parts = append(parts, buildTagFilter(field, tok))
	}
	return strings.Join(parts, " ")
}

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	" ", "\\ ",
)
