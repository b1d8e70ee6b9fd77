package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/strindex/internal/domain/analysis"
	"github.com/kailas-cloud/strindex/internal/domain/query"
	domrec "github.com/kailas-cloud/strindex/internal/domain/record"
)

// Hash field names. Filterable fields share their names with the query package.
const (
	fieldValue            = query.FieldValue
	fieldLength           = query.FieldLength
	fieldIsPalindrome     = query.FieldIsPalindrome
	fieldWordCount        = query.FieldWordCount
	fieldUniqueCharacters = "unique_characters"
	fieldSHA256           = "sha256_hash"
	fieldFrequency        = "character_frequency_map"
	fieldCreatedAt        = "created_at"
	// fieldCreatedOrder is created_at in unix microseconds, the SORTBY key.
	fieldCreatedOrder = "created_at_us"
)

var fieldValueChars = query.CharTokensField(fieldValue)

// tokenSeparator joins character tokens in the TAG field.
const tokenSeparator = ","

// buildHashFields flattens rec into the fields of its hash.
func buildHashFields(rec *domrec.Record) (map[string]string, error) {
	props := rec.Properties()
	freq, err := json.Marshal(props.CharacterFrequencyMap)
	if err != nil {
		return nil, fmt.Errorf("marshal frequency map: %w", err)
	}

	return map[string]string{
		fieldValue:            rec.Value(),
		fieldLength:           strconv.Itoa(props.Length),
		fieldIsPalindrome:     strconv.FormatBool(props.IsPalindrome),
		fieldUniqueCharacters: strconv.Itoa(props.UniqueCharacters),
		fieldWordCount:        strconv.Itoa(props.WordCount),
		fieldSHA256:           props.SHA256Hash,
		fieldFrequency:        string(freq),
		fieldValueChars:       strings.Join(query.CharTokens(rec.Value()), tokenSeparator),
		fieldCreatedAt:        rec.CreatedAt().UTC().Format(time.RFC3339Nano),
		fieldCreatedOrder:     strconv.FormatInt(rec.CreatedAt().UnixMicro(), 10),
	}, nil
}

// errIncomplete marks a hash lacking value or created_at. Create replaces such a
// hash; lookups skip it.
var errIncomplete = errors.New("record hash is incomplete")

// parseHashFields rebuilds a record from a stored hash.
func parseHashFields(m map[string]string) (domrec.Record, error) {
	value, ok := m[fieldValue]
	if !ok {
		return domrec.Record{}, fmt.Errorf("missing %s: %w", fieldValue, errIncomplete)
	}
	createdRaw, ok := m[fieldCreatedAt]
	if !ok {
		return domrec.Record{}, fmt.Errorf("missing %s: %w", fieldCreatedAt, errIncomplete)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, createdRaw)
	if err != nil {
		return domrec.Record{}, fmt.Errorf("parse %s: %w", fieldCreatedAt, err)
	}
	length, err := strconv.Atoi(m[fieldLength])
	if err != nil {
		return domrec.Record{}, fmt.Errorf("parse %s: %w", fieldLength, err)
	}
	unique, err := strconv.Atoi(m[fieldUniqueCharacters])
	if err != nil {
		return domrec.Record{}, fmt.Errorf("parse %s: %w", fieldUniqueCharacters, err)
	}
	words, err := strconv.Atoi(m[fieldWordCount])
	if err != nil {
		return domrec.Record{}, fmt.Errorf("parse %s: %w", fieldWordCount, err)
	}
	palindrome, err := strconv.ParseBool(m[fieldIsPalindrome])
	if err != nil {
		return domrec.Record{}, fmt.Errorf("parse %s: %w", fieldIsPalindrome, err)
	}
	var freq map[string]int
	if err := json.Unmarshal([]byte(m[fieldFrequency]), &freq); err != nil {
		return domrec.Record{}, fmt.Errorf("parse %s: %w", fieldFrequency, err)
	}

	props := analysis.Properties{
		Length:                length,
		IsPalindrome:          palindrome,
		UniqueCharacters:      unique,
		WordCount:             words,
		SHA256Hash:            m[fieldSHA256],
		CharacterFrequencyMap: freq,
	}
	return domrec.Reconstruct(value, props, createdAt), nil
}
