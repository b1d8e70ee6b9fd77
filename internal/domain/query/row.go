package query

import "github.com/kailas-cloud/strindex/internal/domain/record"

type recordRow struct {
	rec *record.Record
}

// RecordRow adapts a record to Row.
func RecordRow(rec *record.Record) Row {
	return recordRow{rec: rec}
}

func (r recordRow) Bool(key string) (bool, bool) {
	if key == FieldIsPalindrome {
		return r.rec.Properties().IsPalindrome, true
	}
	return false, false
}

func (r recordRow) Int(key string) (int, bool) {
	switch key {
	case FieldLength:
		return r.rec.Properties().Length, true
	case FieldWordCount:
		return r.rec.Properties().WordCount, true
	default:
		return 0, false
	}
}

func (r recordRow) Text(key string) (string, bool) {
	if key == FieldValue {
		return r.rec.Value(), true
	}
	return "", false
}
