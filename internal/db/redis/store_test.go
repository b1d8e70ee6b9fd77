package redis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/strindex/internal/db"
	"github.com/kailas-cloud/strindex/internal/domain/predicate"
	"github.com/kailas-cloud/strindex/internal/domain/query"
)

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	err := s.Ping(context.Background())
	if !isDBError(err) {
		t.Fatalf("expected db.Error, got %v", err)
	}
}

func TestWaitForReady_ImmediatePing(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c)
	if err := s.WaitForReady(context.Background(), time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWaitForReady_RetriesUntilUp(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	gomock.InOrder(
		c.EXPECT().
			Do(gomock.Any(), mock.Match("PING")).
			Return(mock.ErrorResult(errors.New("connection refused"))),
		c.EXPECT().
			Do(gomock.Any(), mock.Match("PING")).
			Return(mock.Result(mock.RedisString("PONG"))),
	)

	s := NewStoreForTest(c)
	if err := s.WaitForReady(context.Background(), 2*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWaitForReady_Timeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(errors.New("connection refused"))).
		AnyTimes()

	s := NewStoreForTest(c)
	err := s.WaitForReady(context.Background(), 250*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}

func TestContainsIgnoreCase(t *testing.T) {
	tests := []struct {
		s, sub string
		want   bool
	}{
		{"Index Already Exists", "index already exists", true},
		{"UNKNOWN INDEX NAME", "unknown index name", true},
		{"hello world", "world", true},
		{"short", "longer than input", false},
		{"", "", true},
	}
	for _, tc := range tests {
		got := containsIgnoreCase(tc.s, tc.sub)
		if got != tc.want {
			t.Errorf("containsIgnoreCase(%q, %q) = %v, want %v", tc.s, tc.sub, got, tc.want)
		}
	}
}

// --- hash.go tests ---

// isCreateScript matches the create script for key, by SHA or by source.
func isCreateScript(cmd []string, verb, key string) bool {
	return len(cmd) > 4 && cmd[0] == verb && cmd[2] == "1" && cmd[3] == key
}

func TestHCreate(t *testing.T) {
	tests := []struct {
		name  string
		reply int64
		want  bool
	}{
		{"written", 1, true},
		{"already complete", 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			c := mock.NewClient(ctrl)

			var sent []string
			c.EXPECT().
				Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
					sent = cmd
					return isCreateScript(cmd, "EVALSHA", "str:abc")
				})).
				Return(mock.Result(mock.RedisInt64(tc.reply)))

			s := NewStoreForTest(c)
			ok, err := s.HCreate(context.Background(), "str:abc", "created_at", map[string]string{
				"value":      "abc",
				"length":     "3",
				"created_at": "2026-01-01T00:00:00Z",
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tc.want {
				t.Errorf("HCreate = %v, want %v", ok, tc.want)
			}
			// guard first, then field/value pairs sorted by field name
			assertArgs(t, sent[4:], []string{
				"created_at",
				"created_at", "2026-01-01T00:00:00Z",
				"length", "3",
				"value", "abc",
			})
		})
	}
}

func TestHCreate_FallsBackToEval(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	gomock.InOrder(
		c.EXPECT().
			Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
				return isCreateScript(cmd, "EVALSHA", "str:abc")
			})).
			Return(mock.Result(mock.RedisError("NOSCRIPT No matching script"))),
		c.EXPECT().
			Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
				return isCreateScript(cmd, "EVAL", "str:abc") && strings.Contains(cmd[1], "HEXISTS")
			})).
			Return(mock.Result(mock.RedisInt64(1))),
	)

	s := NewStoreForTest(c)
	ok, err := s.HCreate(context.Background(), "str:abc", "created_at", map[string]string{"created_at": "t"})
	if err != nil || !ok {
		t.Fatalf("HCreate = %v, %v; want true, nil", ok, err)
	}
}

func TestHCreate_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	_, err := s.HCreate(context.Background(), "k", "created_at", map[string]string{"created_at": "t"})
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %v", err)
	}
}

func TestHCreate_RejectsFieldsWithoutGuard(t *testing.T) {
	s := NewStoreForTest(nil)
	for _, fields := range []map[string]string{nil, {"value": "v"}} {
		if _, err := s.HCreate(context.Background(), "k", "created_at", fields); !isDBError(err) {
			t.Errorf("fields %v: expected db.Error, got %v", fields, err)
		}
	}
}

func TestHGetAll_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGETALL", "str:abc")).
		Return(mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
			"value":  mock.RedisString("abc"),
			"length": mock.RedisString("3"),
		})))

	s := NewStoreForTest(c)
	m, err := s.HGetAll(context.Background(), "str:abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m["value"] != "abc" || m["length"] != "3" {
		t.Errorf("unexpected map: %v", m)
	}
}

func TestHGetAll_Missing(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGETALL", "str:none")).
		Return(mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{})))

	s := NewStoreForTest(c)
	_, err := s.HGetAll(context.Background(), "str:none")
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestHGetAll_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGETALL", "str:abc")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	_, err := s.HGetAll(context.Background(), "str:abc")
	if !isDBError(err) {
		t.Fatalf("expected db.Error, got %v", err)
	}
}

func TestDel(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	gomock.InOrder(
		c.EXPECT().
			Do(gomock.Any(), mock.Match("DEL", "str:abc")).
			Return(mock.Result(mock.RedisInt64(1))),
		c.EXPECT().
			Do(gomock.Any(), mock.Match("DEL", "str:abc")).
			Return(mock.Result(mock.RedisInt64(0))),
	)

	s := NewStoreForTest(c)
	if err := s.Del(context.Background(), "str:abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Del(context.Background(), "str:abc"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound on second delete, got %v", err)
	}
}

// --- index.go tests ---

func testIndex() *db.IndexDefinition {
	b := db.NewIndex("str:idx").
		Prefix("str:").
		Tag("is_palindrome").
		Numeric("length").
		TagWithOpts("value_chars", ",", false).
		Numeric("created_at_us").Sortable()
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}

func TestCreateIndex_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match(
			"FT.CREATE", "str:idx", "ON", "HASH", "PREFIX", "1", "str:",
			"SCHEMA", "is_palindrome", "TAG", "length", "NUMERIC",
			"value_chars", "TAG", "SEPARATOR", ",",
			"created_at_us", "NUMERIC", "SORTABLE",
		)).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	if err := s.CreateIndex(context.Background(), testIndex()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateIndex_AlreadyExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.Result(mock.RedisError("Index already exists")))

	s := NewStoreForTest(c)
	err := s.CreateIndex(context.Background(), testIndex())
	if !errors.Is(err, db.ErrIndexExists) {
		t.Errorf("expected ErrIndexExists, got %v", err)
	}
}

func TestCreateIndex_InvalidDefinition(t *testing.T) {
	s := NewStoreForTest(nil)
	err := s.CreateIndex(context.Background(), &db.IndexDefinition{Name: "idx"})
	if err == nil {
		t.Fatal("expected error for definition without fields")
	}
}

func TestIndexExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	gomock.InOrder(
		c.EXPECT().
			Do(gomock.Any(), mock.Match("FT.INFO", "str:idx")).
			Return(mock.Result(mock.RedisArray(mock.RedisString("index_name"), mock.RedisString("str:idx")))),
		c.EXPECT().
			Do(gomock.Any(), mock.Match("FT.INFO", "str:idx")).
			Return(mock.Result(mock.RedisError("Unknown Index name"))),
	)

	s := NewStoreForTest(c)
	exists, err := s.IndexExists(context.Background(), "str:idx")
	if err != nil || !exists {
		t.Fatalf("expected existing index, got %v, %v", exists, err)
	}
	exists, err = s.IndexExists(context.Background(), "str:idx")
	if err != nil || exists {
		t.Fatalf("expected missing index, got %v, %v", exists, err)
	}
}

func TestBuildFieldArgs_AllTypes(t *testing.T) {
	tests := []struct {
		name  string
		field db.IndexField
		want  []string
	}{
		{"tag", db.IndexField{Name: "f", Type: db.IndexFieldTag}, []string{"f", "TAG"}},
		{"numeric", db.IndexField{Name: "f", Type: db.IndexFieldNumeric}, []string{"f", "NUMERIC"}},
		{"tag_opts", db.IndexField{Name: "f", Type: db.IndexFieldTag, TagSeparator: ",", TagCaseSensitive: true},
			[]string{"f", "TAG", "SEPARATOR", ",", "CASESENSITIVE"}},
		{"sortable", db.IndexField{Name: "f", Type: db.IndexFieldNumeric, Sortable: true}, []string{"f", "NUMERIC", "SORTABLE"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			args, err := buildFieldArgs(&tc.field)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertArgs(t, args, tc.want)
		})
	}
}

func TestBuildFieldArgs_Errors(t *testing.T) {
	if _, err := buildFieldArgs(&db.IndexField{Name: "", Type: db.IndexFieldTag}); err == nil {
		t.Error("expected error for empty field name")
	}
	if _, err := buildFieldArgs(&db.IndexField{Name: "f", Type: db.IndexFieldType(99)}); err == nil {
		t.Error("expected error for unknown type")
	}
}

// --- search.go tests ---

func TestSearch_SendsExplicitLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.SEARCH", "str:idx", "*", "LIMIT", "0", "10000", "DIALECT", "2")).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(2),
			mock.RedisString("str:1"),
			mock.RedisArray(mock.RedisString("value"), mock.RedisString("a")),
			mock.RedisString("str:2"),
			mock.RedisArray(mock.RedisString("value"), mock.RedisString("b")),
		)))

	s := NewStoreForTest(c)
	res, err := s.Search(context.Background(), &db.SearchQuery{IndexName: "str:idx", Limit: 10000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 2 || len(res.Entries) != 2 {
		t.Fatalf("expected 2 entries, got total=%d entries=%d", res.Total, len(res.Entries))
	}
	if res.Entries[1].Key != "str:2" || res.Entries[1].Fields["value"] != "b" {
		t.Errorf("unexpected entry: %+v", res.Entries[1])
	}
}

func TestSearch_SortsBeforeLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match(
			"FT.SEARCH", "str:idx", "@is_palindrome:{true}",
			"SORTBY", "created_at_us", "ASC",
			"LIMIT", "0", "5", "DIALECT", "2",
		)).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	cond, err := query.NewBoolMatch(query.FieldIsPalindrome, true)
	if err != nil {
		t.Fatal(err)
	}
	expr, err := query.NewExpression([]query.Condition{cond})
	if err != nil {
		t.Fatal(err)
	}

	s := NewStoreForTest(c)
	res, err := s.Search(context.Background(), &db.SearchQuery{
		IndexName: "str:idx",
		Filters:   expr,
		SortBy:    "created_at_us",
		Limit:     5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Entries) != 0 {
		t.Errorf("expected no entries, got %d", len(res.Entries))
	}
}

func TestSearch_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	s := NewStoreForTest(c)
	res, err := s.Search(context.Background(), &db.SearchQuery{IndexName: "str:idx", Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 0 || len(res.Entries) != 0 {
		t.Errorf("expected no entries, got %+v", res)
	}
}

func TestSearch_MissingIndex(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisError("str:idx: no such index")))

	s := NewStoreForTest(c)
	_, err := s.Search(context.Background(), &db.SearchQuery{IndexName: "str:idx", Limit: 10})
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestSearch_Validation(t *testing.T) {
	s := NewStoreForTest(nil)
	cases := []*db.SearchQuery{
		{Limit: 10},
		{IndexName: "idx"},
		{IndexName: "idx", Limit: -1},
	}
	for _, q := range cases {
		if _, err := s.Search(context.Background(), q); err == nil {
			t.Errorf("expected error for %+v", q)
		}
	}
}

// --- Query building tests ---

func TestBuildQuery_Empty(t *testing.T) {
	if got := buildQuery(query.Expression{}); got != "*" {
		t.Errorf("expected *, got %q", got)
	}
}

func TestBuildQuery_Compiled(t *testing.T) {
	tests := []struct {
		name string
		p    predicate.Predicate
		want string
	}{
		{"palindrome", predicate.Predicate{IsPalindrome: predicate.Bool(true)}, "@is_palindrome:{true}"},
		{"not palindrome", predicate.Predicate{IsPalindrome: predicate.Bool(false)}, "@is_palindrome:{false}"},
		{"word count", predicate.Predicate{WordCount: predicate.Int(2)}, "@word_count:[2 2]"},
		{"min only", predicate.Predicate{MinLength: predicate.Int(5)}, "@length:[5 +inf]"},
		{"max only", predicate.Predicate{MaxLength: predicate.Int(9)}, "@length:[-inf 9]"},
		{"both bounds", predicate.Predicate{MinLength: predicate.Int(1), MaxLength: predicate.Int(3)}, "@length:[1 3]"},
		{"contains", predicate.Predicate{ContainsCharacter: predicate.String("Z")}, "@value_chars:{u7a}"},
		{
			"combined",
			predicate.Predicate{
				IsPalindrome:      predicate.Bool(true),
				WordCount:         predicate.Int(1),
				MinLength:         predicate.Int(3),
				ContainsCharacter: predicate.String("a"),
			},
			"@is_palindrome:{true} @word_count:[1 1] @length:[3 +inf] @value_chars:{u61}",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := buildQuery(query.Compile(tc.p)); got != tc.want {
				t.Errorf("buildQuery = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestBuildTagFilter_Escapes(t *testing.T) {
	if got := buildTagFilter("f", "a b-c"); got != `@f:{a\ b\-c}` {
		t.Errorf("unexpected escaping: %q", got)
	}
}

func TestParseFieldPairs_SkipsOddTail(t *testing.T) {
	m := parseFieldPairs([]rueidis.RedisMessage{
		mock.RedisString("a"), mock.RedisString("1"),
		mock.RedisString("dangling"),
	})
	if len(m) != 1 || m["a"] != "1" {
		t.Errorf("unexpected map: %v", m)
	}
}

func assertArgs(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("args = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("args = %v, want %v", got, want)
		}
	}
}

// isDBError is a test helper for checking wrapped db.Error.
func isDBError(err error) bool {
	var dbErr *db.Error
	return errors.As(err, &dbErr)
}
