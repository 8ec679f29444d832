package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// PathEntry maps an on-disk path to the catalog file it hashed to.
type PathEntry struct {
	Path     string `json:"path"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	FID      int64  `json:"fid"`

	// MovedFrom is set by LookupPath when the entry was found under an
	// older path and moved.
	MovedFrom string `json:"moved_from,omitempty"`
}

// NormalizeFilename returns the form filenames are stored and matched in.
func NormalizeFilename(name string) string {
	return norm.NFC.String(name)
}

// LookupPath finds the entry recorded for path, or failing that the entry
// with the same filename and size. When the match was recorded under a
// different path, the entry is moved to path before returning; any other
// entry already at path is replaced.
func (s *Store) LookupPath(ctx context.Context, path, filename string, size int64) (PathEntry, bool, error) {
	ctx = ensureContext(ctx)
	filename = NormalizeFilename(filename)

	var (
		entry PathEntry
		found bool
	)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		found = false
		entry = PathEntry{}
		row := tx.QueryRowContext(ctx, `SELECT path, filename, filesize, fid FROM indexed_files
			WHERE path = ? OR (filename = ? AND filesize = ?)
			ORDER BY (path = ?) DESC
			LIMIT 1`, path, filename, size, path)
		if err := row.Scan(&entry.Path, &entry.Filename, &entry.Size, &entry.FID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return err
		}
		found = true
		if entry.Path == path {
			return nil
		}
		if _, err := tx.ExecContext(ctx, "UPDATE OR REPLACE indexed_files SET path = ? WHERE path = ?", path, entry.Path); err != nil {
			return fmt.Errorf("move entry from %s: %w", entry.Path, err)
		}
		entry.MovedFrom = entry.Path
		entry.Path = path
		return nil
	})
	if err != nil {
		return PathEntry{}, false, fmt.Errorf("lookup path %s: %w", path, err)
	}
	return entry, found, nil
}

// RecordPath inserts or replaces the entry for entry.Path. An existing entry
// with the same filename and size is replaced as well.
func (s *Store) RecordPath(ctx context.Context, entry PathEntry) error {
	entry.Filename = NormalizeFilename(entry.Filename)
	_, err := s.execWithRetry(ctx,
		"INSERT OR REPLACE INTO indexed_files (path, filename, filesize, fid) VALUES (?, ?, ?, ?)",
		entry.Path, entry.Filename, entry.Size, entry.FID)
	if err != nil {
		return fmt.Errorf("record path %s: %w", entry.Path, err)
	}
	return nil
}

// ListPaths returns every path index entry ordered by path.
func (s *Store) ListPaths(ctx context.Context) ([]PathEntry, error) {
	return s.queryPaths(ctx, "SELECT path, filename, filesize, fid FROM indexed_files ORDER BY path")
}

// PathsForFile returns the entries that resolve to fid.
func (s *Store) PathsForFile(ctx context.Context, fid int64) ([]PathEntry, error) {
	return s.queryPaths(ctx, "SELECT path, filename, filesize, fid FROM indexed_files WHERE fid = ? ORDER BY path", fid)
}

func (s *Store) queryPaths(ctx context.Context, query string, args ...any) ([]PathEntry, error) {
	ctx = ensureContext(ctx)
	var entries []PathEntry
	err := retryOnBusy(ctx, func() error {
		entries = entries[:0]
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var entry PathEntry
			if err := rows.Scan(&entry.Path, &entry.Filename, &entry.Size, &entry.FID); err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list paths: %w", err)
	}
	return entries, nil
}

// DeleteMissingPaths removes entries whose path no longer exists according
// to exists and returns the removed paths. All paths are read before any
// deletion. An exists error stops the prune; entries removed before it stay
// removed and are still returned.
func (s *Store) DeleteMissingPaths(ctx context.Context, exists func(path string) (bool, error)) ([]string, error) {
	ctx = ensureContext(ctx)
	entries, err := s.ListPaths(ctx)
	if err != nil {
		return nil, err
	}

	var deleted []string
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		present, err := exists(entry.Path)
		if err != nil {
			return deleted, fmt.Errorf("check %s: %w", entry.Path, err)
		}
		if present {
			continue
		}
		if _, err := s.execWithRetry(ctx, "DELETE FROM indexed_files WHERE path = ?", entry.Path); err != nil {
			return deleted, fmt.Errorf("delete path %s: %w", entry.Path, err)
		}
		deleted = append(deleted, entry.Path)
	}
	return deleted, nil
}
