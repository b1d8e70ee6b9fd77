package redis

import (
	"context"
	"errors"
	"sort"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/strindex/internal/db"
)

// createHashScript replaces the hash at KEYS[1] with the ARGV[2:] field/value
// pairs unless it already holds field ARGV[1]. Replies 1 when written.
var createHashScript = rueidis.NewLuaScript(`
if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 1 then
  return 0
end
redis.call('DEL', KEYS[1])
redis.call('HSET', KEYS[1], unpack(ARGV, 2))
return 1
`)

// HCreate writes fields to key in one server-side step unless the stored hash
// already holds guard. A hash without guard is replaced, never merged.
func (s *Store) HCreate(ctx context.Context, key, guard string, fields map[string]string) (bool, error) {
	if len(fields) == 0 {
		return false, &db.Error{Op: db.OpHCreate, Err: errors.New("no fields to write")}
	}
	if _, ok := fields[guard]; !ok {
		return false, &db.Error{Op: db.OpHCreate, Err: errors.New("fields must include " + guard)}
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	args := make([]string, 0, 1+2*len(names))
	args = append(args, guard)
	for _, name := range names {
		args = append(args, name, fields[name])
	}

	n, err := createHashScript.Exec(ctx, s.client, []string{key}, args).AsInt64()
	if err != nil {
		return false, &db.Error{Op: db.OpHCreate, Err: err}
	}
	return n == 1, nil
}

// HGetAll returns all fields of a hash. A missing key yields ErrKeyNotFound.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	cmd := s.b().Hgetall().Key(key).Build()
	m, err := s.do(ctx, cmd).AsStrMap()
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	if len(m) == 0 {
		return nil, db.ErrKeyNotFound
	}
	return m, nil
}

// Del deletes a key. A missing key yields ErrKeyNotFound.
func (s *Store) Del(ctx context.Context, key string) error {
	cmd := s.b().Del().Key(key).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	if n == 0 {
		return db.ErrKeyNotFound
	}
	return nil
}
