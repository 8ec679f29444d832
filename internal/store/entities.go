package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// FetchFunc loads an entity from the remote catalog.
type FetchFunc[T any] func(ctx context.Context, id int64) (T, error)

// Get returns the cached entity for id. The boolean is false on a miss.
func Get[T any](ctx context.Context, s *Store, codec Codec[T], id int64) (T, bool, error) {
	ctx = ensureContext(ctx)
	var zero T
	query := fmt.Sprintf("SELECT %s, cached_at FROM %s WHERE %s = ?",
		strings.Join(codec.Columns(), ", "), quoteIdent(codec.Table()), codec.Key())

	var (
		value   T
		scanErr error
	)
	err := retryOnBusy(ctx, func() error {
		value, scanErr = codec.Scan(s.db.QueryRowContext(ctx, query, id))
		return scanErr
	})
	if errors.Is(err, sql.ErrNoRows) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("get %s %d: %w", codec.Table(), id, err)
	}
	return value, true, nil
}

// Put inserts or replaces an entity row and returns it stamped with its
// cache time. Existing rows are updated in place so path index rows that
// reference a file survive a re-fetch.
func Put[T any](ctx context.Context, s *Store, codec Codec[T], value T) (T, error) {
	ctx = ensureContext(ctx)
	columns := codec.Columns()
	updates := make([]string, 0, len(columns))
	for _, column := range columns {
		if column == codec.Key() {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = excluded.%s", column, column))
	}
	updates = append(updates, "cached_at = excluded.cached_at")

	query := fmt.Sprintf("INSERT INTO %s (%s, cached_at) VALUES (%s) ON CONFLICT(%s) DO UPDATE SET %s",
		quoteIdent(codec.Table()),
		strings.Join(columns, ", "),
		placeholders(len(columns)+1),
		codec.Key(),
		strings.Join(updates, ", "),
	)

	cachedAt := s.now().UTC()
	args := append(codec.Values(value), formatTime(cachedAt))
	if _, err := s.execWithRetry(ctx, query, args...); err != nil {
		return value, fmt.Errorf("put %s %d: %w", codec.Table(), codec.ID(value), err)
	}
	return codec.Stamp(value, cachedAt), nil
}

// GetOrFetch returns the cached entity for id, calling fetch and caching the
// result on a miss. Fetch failures are returned unchanged and nothing is
// written.
func GetOrFetch[T any](ctx context.Context, s *Store, codec Codec[T], id int64, fetch FetchFunc[T]) (T, error) {
	var zero T
	cached, ok, err := Get(ctx, s, codec, id)
	if err != nil {
		return zero, err
	}
	if ok {
		return cached, nil
	}

	live, err := fetch(ctx, id)
	if err != nil {
		return zero, err
	}
	return Put(ctx, s, codec, live)
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
