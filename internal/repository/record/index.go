package record

import "github.com/kailas-cloud/strindex/internal/db"

// Key layout under the configured prefix.
const (
	recordSegment = "str:"
	indexSegment  = "str:idx"
)

func recordKey(prefix, hash string) string { return prefix + recordSegment + hash }

func indexName(prefix string) string { return prefix + indexSegment }

// buildIndex defines the FT index over the filterable hash fields.
func buildIndex(prefix string) (*db.IndexDefinition, error) {
	return db.NewIndex(indexName(prefix)).
		OnHash().
		Prefix(prefix+recordSegment).
		Tag(fieldIsPalindrome).
		Numeric(fieldWordCount).
		Numeric(fieldLength).
		TagWithOpts(fieldValueChars, tokenSeparator, false).
		Numeric(fieldCreatedOrder).Sortable().
		Build()
}
