package testsupport

import (
	"context"
	"testing"

	"tetsu/internal/catalog"
	"tetsu/internal/config"
	"tetsu/internal/store"
)

// MustOpenStore opens the index database named by cfg and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg.Paths.Database)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// SeedFile caches a file record and records path for it.
func SeedFile(t testing.TB, st *store.Store, file catalog.File, path, filename string) {
	t.Helper()

	ctx := context.Background()
	if _, err := store.Put(ctx, st, store.FileCodec, file); err != nil {
		t.Fatalf("store.Put file %d: %v", file.FID, err)
	}
	if path == "" {
		return
	}
	entry := store.PathEntry{Path: path, Filename: filename, Size: file.Size, FID: file.FID}
	if err := st.RecordPath(ctx, entry); err != nil {
		t.Fatalf("RecordPath %s: %v", path, err)
	}
}
