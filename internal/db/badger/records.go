package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/kailas-cloud/strindex/internal/domain"
	"github.com/kailas-cloud/strindex/internal/domain/analysis"
	"github.com/kailas-cloud/strindex/internal/domain/query"
	domrec "github.com/kailas-cloud/strindex/internal/domain/record"
	"github.com/kailas-cloud/strindex/internal/metrics"
)

const (
	backendLabel = "badger"
	recordPrefix = "str/"
	// createAttempts bounds retries of a create that lost a transaction conflict.
	createAttempts = 2
)

// storedRecord is the JSON value kept under a record key.
type storedRecord struct {
	Value      string              `json:"value"`
	Properties analysis.Properties `json:"properties"`
	CreatedAt  time.Time           `json:"created_at"`
}

func recordKey(hash string) []byte { return []byte(recordPrefix + hash) }

func encode(rec *domrec.Record) ([]byte, error) {
	data, err := json.Marshal(storedRecord{
		Value:      rec.Value(),
		Properties: rec.Properties(),
		CreatedAt:  rec.CreatedAt(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	return data, nil
}

func decode(val []byte) (domrec.Record, error) {
	var sr storedRecord
	if err := json.Unmarshal(val, &sr); err != nil {
		return domrec.Record{}, fmt.Errorf("unmarshal record: %w", err)
	}
	return domrec.Reconstruct(sr.Value, sr.Properties, sr.CreatedAt), nil
}

func readRecord(item *badger.Item) (domrec.Record, error) {
	var rec domrec.Record
	err := item.Value(func(val []byte) error {
		var derr error
		rec, derr = decode(val)
		return derr
	})
	return rec, err
}

// Create stores rec unless its key is taken. A commit that conflicts with a
// concurrent writer is retried once; the retry then sees the winner's key.
func (s *Store) Create(ctx context.Context, rec domrec.Record) (domrec.Record, error) {
	start := time.Now()
	stored, err := s.create(ctx, rec)
	metrics.ObserveStore(backendLabel, "create", start, isFailure(err))
	return stored, err
}

func (s *Store) create(ctx context.Context, rec domrec.Record) (domrec.Record, error) {
	key := recordKey(rec.ID())
	var (
		stored domrec.Record
		err    error
	)
	for attempt := 1; attempt <= createAttempts; attempt++ {
		if err = ctx.Err(); err != nil {
			return domrec.Record{}, err
		}
		stored = rec.WithCreatedAt(s.now().UTC())
		err = s.db.Update(func(txn *badger.Txn) error {
			_, gerr := txn.Get(key)
			if gerr == nil {
				return domain.ErrAlreadyExists
			}
			if !errors.Is(gerr, badger.ErrKeyNotFound) {
				return gerr
			}
			data, eerr := encode(&stored)
			if eerr != nil {
				return eerr
			}
			return txn.Set(key, data)
		})
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
		s.logger.Debug("Create conflicted, retrying", zap.String("id", rec.ID()), zap.Int("attempt", attempt))
	}

	switch {
	case err == nil:
		return stored, nil
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, badger.ErrConflict):
		return domrec.Record{}, domain.ErrAlreadyExists
	default:
		return domrec.Record{}, fmt.Errorf("create record: %w", err)
	}
}

// FindOne returns the record stored for exactly value.
func (s *Store) FindOne(ctx context.Context, value string) (domrec.Record, error) {
	start := time.Now()
	rec, err := s.findOne(ctx, value)
	metrics.ObserveStore(backendLabel, "find_one", start, isFailure(err))
	return rec, err
}

func (s *Store) findOne(_ context.Context, value string) (domrec.Record, error) {
	var rec domrec.Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(analysis.Hash(value)))
		if err != nil {
			return err
		}
		rec, err = readRecord(item)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domrec.Record{}, domain.ErrNotFound
	}
	if err != nil {
		return domrec.Record{}, fmt.Errorf("get record: %w", err)
	}
	if rec.Value() != value {
		return domrec.Record{}, domain.ErrNotFound
	}
	return rec, nil
}

// Find scans every record, keeps those matching expr and returns the first
// matches in listing order, up to the result cap.
func (s *Store) Find(ctx context.Context, expr query.Expression) ([]domrec.Record, error) {
	start := time.Now()
	recs, err := s.find(ctx, expr)
	metrics.ObserveStore(backendLabel, "find", start, isFailure(err))
	return recs, err
}

func (s *Store) find(ctx context.Context, expr query.Expression) ([]domrec.Record, error) {
	var recs []domrec.Record
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(recordPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec, err := readRecord(it.Item())
			if err != nil {
				return fmt.Errorf("key %s: %w", it.Item().Key(), err)
			}
			if !expr.Matches(query.RecordRow(&rec)) {
				continue
			}
			recs = append(recs, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan records: %w", err)
	}

	slices.SortFunc(recs, domrec.Compare)
	if len(recs) > s.maxResults {
		s.logger.Warn("Lookup truncated",
			zap.Int("total", len(recs)),
			zap.Int("returned", s.maxResults),
		)
		recs = recs[:s.maxResults]
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

func (s *Store) deleteOne(_ context.Context, value string) (domrec.Record, error) {
	key := recordKey(analysis.Hash(value))
	var rec domrec.Record
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		if rec, err = readRecord(item); err != nil {
			return err
		}
		if rec.Value() != value {
			return badger.ErrKeyNotFound
		}
		return txn.Delete(key)
	})
	// A conflict means a concurrent delete of the same key committed first.
	if errors.Is(err, badger.ErrKeyNotFound) || errors.Is(err, badger.ErrConflict) {
		return domrec.Record{}, domain.ErrNotFound
	}
	if err != nil {
		return domrec.Record{}, fmt.Errorf("delete record: %w", err)
	}
	return rec, nil
}

func isFailure(err error) bool {
	return err != nil && !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrAlreadyExists)
}
