package sqlite

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/strindex/internal/domain/query"
)

// columns maps query properties onto table columns.
var columns = map[string]string{
	query.FieldValue:        "value_lower",
	query.FieldLength:       "length",
	query.FieldIsPalindrome: "is_palindrome",
	query.FieldWordCount:    "word_count",
}

// buildWhere renders expr as a WHERE clause with positional arguments.
// The empty expression renders to "" and matches every row.
func buildWhere(expr query.Expression) (string, []any, error) {
	if expr.IsEmpty() {
		return "", nil, nil
	}

	var (
		parts []string
		args  []any
	)
	for _, c := range expr.Must() {
		col, ok := columns[c.Key()]
		if !ok {
			return "", nil, fmt.Errorf("unknown property %q", c.Key())
		}

		switch c.Kind() {
		case query.KindBool:
			parts = append(parts, col+" = ?")
			args = append(args, boolInt(c.Bool()))
		case query.KindInt:
			parts = append(parts, col+" = ?")
			args = append(args, c.Int())
		case query.KindRange:
			r := c.Range()
			if r.GTE() != nil {
				parts = append(parts, col+" >= ?")
				args = append(args, *r.GTE())
			}
			if r.LTE() != nil {
				parts = append(parts, col+" <= ?")
				args = append(args, *r.LTE())
			}
		case query.KindContains:
			// value_lower is lowered in Go; SQLite lower() only folds ASCII.
			parts = append(parts, "instr("+col+", ?) > 0")
			args = append(args, strings.ToLower(c.Char()))
		default:
			return "", nil, fmt.Errorf("unsupported condition kind %d", c.Kind())
		}
	}

	return " WHERE " + strings.Join(parts, " AND "), args, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
