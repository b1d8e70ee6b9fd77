package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/strindex/internal/domain"
	"github.com/kailas-cloud/strindex/internal/domain/analysis"
	"github.com/kailas-cloud/strindex/internal/domain/query"
	domrec "github.com/kailas-cloud/strindex/internal/domain/record"
	"github.com/kailas-cloud/strindex/internal/metrics"
)

const backendLabel = "sqlite"

// timeLayout is fixed-width so that created_at sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const selectColumns = `value, length, is_palindrome, unique_characters, word_count,
	sha256_hash, character_frequency_map, created_at`

// Create inserts rec. The primary key on value rejects duplicates.
func (s *Store) Create(ctx context.Context, rec domrec.Record) (domrec.Record, error) {
	start := time.Now()
	stored, err := s.create(ctx, rec)
	metrics.ObserveStore(backendLabel, "create", start, isFailure(err))
	return stored, err
}

func (s *Store) create(ctx context.Context, rec domrec.Record) (domrec.Record, error) {
	stored := rec.WithCreatedAt(s.now().UTC())
	props := stored.Properties()

	freq, err := json.Marshal(props.CharacterFrequencyMap)
	if err != nil {
		return domrec.Record{}, fmt.Errorf("marshal frequency map: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO strings (
			value, value_lower, sha256_hash, length, is_palindrome,
			unique_characters, word_count, character_frequency_map, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		stored.Value(),
		strings.ToLower(stored.Value()),
		props.SHA256Hash,
		props.Length,
		boolInt(props.IsPalindrome),
		props.UniqueCharacters,
		props.WordCount,
		string(freq),
		stored.CreatedAt().Format(timeLayout),
	)
	if err != nil {
		return domrec.Record{}, fmt.Errorf("insert string: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return domrec.Record{}, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domrec.Record{}, domain.ErrAlreadyExists
	}
	return stored, nil
}

// FindOne returns the record stored for exactly value.
func (s *Store) FindOne(ctx context.Context, value string) (domrec.Record, error) {
	start := time.Now()
	row := s.db.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM strings WHERE value = ?", value)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		err = domain.ErrNotFound
	}
	metrics.ObserveStore(backendLabel, "find_one", start, isFailure(err))
	if err != nil {
		return domrec.Record{}, err
	}
	return rec, nil
}

// Find returns the records matching expr.
func (s *Store) Find(ctx context.Context, expr query.Expression) ([]domrec.Record, error) {
	start := time.Now()
	recs, err := s.find(ctx, expr)
	metrics.ObserveStore(backendLabel, "find", start, isFailure(err))
	return recs, err
}

func (s *Store) find(ctx context.Context, expr query.Expression) ([]domrec.Record, error) {
	where, args, err := buildWhere(expr)
	if err != nil {
		return nil, fmt.Errorf("build where: %w", err)
	}

	q := "SELECT " + selectColumns + " FROM strings" + where +
		" ORDER BY created_at, value LIMIT " + strconv.Itoa(s.maxResults)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query strings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var recs []domrec.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate strings: %w", err)
	}
	return recs, nil
}

// DeleteOne removes the record stored for exactly value and returns it.
func (s *Store) DeleteOne(ctx context.Context, value string) (domrec.Record, error) {
	start := time.Now()
	rec, err := s.deleteOne(ctx, value)
	metrics.ObserveStore(backendLabel, "delete", start, isFailure(err))
	return rec, err
}

func (s *Store) deleteOne(ctx context.Context, value string) (domrec.Record, error) {
	row := s.db.QueryRowContext(ctx,
		"DELETE FROM strings WHERE value = ? RETURNING "+selectColumns, value)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domrec.Record{}, domain.ErrNotFound
	}
	if err != nil {
		return domrec.Record{}, err
	}
	return rec, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (domrec.Record, error) {
	var (
		value, hash, freqJSON, created string
		props                          analysis.Properties
		palindrome                     int
	)
	if err := sc.Scan(
		&value, &props.Length, &palindrome, &props.UniqueCharacters, &props.WordCount,
		&hash, &freqJSON, &created,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domrec.Record{}, err
		}
		return domrec.Record{}, fmt.Errorf("scan string: %w", err)
	}

	createdAt, err := time.Parse(timeLayout, created)
	if err != nil {
		return domrec.Record{}, fmt.Errorf("parse created_at: %w", err)
	}
	if err := json.Unmarshal([]byte(freqJSON), &props.CharacterFrequencyMap); err != nil {
		return domrec.Record{}, fmt.Errorf("parse character_frequency_map: %w", err)
	}
	props.IsPalindrome = palindrome == 1
	props.SHA256Hash = hash

	return domrec.Reconstruct(value, props, createdAt), nil
}

func isFailure(err error) bool {
	return err != nil && !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrAlreadyExists)
}
