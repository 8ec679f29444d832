package ed2k_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"tetsu/internal/ed2k"
)

func TestHashFileIsDeterministic(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := []byte(strings.Repeat("tetsu", 4096))
	if err := afero.WriteFile(fs, "/media/a.mkv", content, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := afero.WriteFile(fs, "/media/copy/b.mkv", content, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	first, size, err := ed2k.HashFile(context.Background(), fs, "/media/a.mkv", 4)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	if size != int64(len(content)) {
		t.Fatalf("unexpected size %d", size)
	}
	again, _, err := ed2k.HashFile(context.Background(), fs, "/media/a.mkv", 1)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	copyHash, _, err := ed2k.HashFile(context.Background(), fs, "/media/copy/b.mkv", 0)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	if first != again || first != copyHash {
		t.Fatalf("expected identical hashes, got %s %s %s", first, again, copyHash)
	}

	s := first.String()
	if len(s) != 32 || strings.ToLower(s) != s {
		t.Fatalf("expected 32 lowercase hex characters, got %q", s)
	}
}

func TestHashFileMultiChunkIsStableAcrossWorkers(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := make([]byte, 3*ed2k.ChunkSize+5)
	for i := range content {
		content[i] = byte(i*31 + i/4099)
	}
	if err := afero.WriteFile(fs, "/media/long.mkv", content, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	ctx := context.Background()
	want, err := ed2k.Sum(ctx, bytes.NewReader(content), int64(len(content)), 1)
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	for attempt := range 3 {
		for _, workers := range []int{1, 2, 8} {
			got, size, err := ed2k.HashFile(ctx, fs, "/media/long.mkv", workers)
			if err != nil {
				t.Fatalf("HashFile workers=%d: %v", workers, err)
			}
			if size != int64(len(content)) {
				t.Fatalf("unexpected size %d", size)
			}
			if got != want {
				t.Fatalf("attempt %d workers=%d: got %s want %s", attempt, workers, got, want)
			}
		}
	}
}

func TestHashFileMissingPath(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, _, err := ed2k.HashFile(context.Background(), fs, "/missing.mkv", 1)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "/missing.mkv") {
		t.Fatalf("expected path in error, got %v", err)
	}
}

func TestHashFileRejectsDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/media", 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, _, err := ed2k.HashFile(context.Background(), fs, "/media", 1); err == nil {
		t.Fatal("expected error hashing a directory")
	}
}

func TestParseHashRoundTripAndNormalize(t *testing.T) {
	h, err := ed2k.ParseHash("31D6CFE0D16AE931B73C59D7E0C089C0")
	if err != nil {
		t.Fatalf("ParseHash: %v", err)
	}
	if h.String() != "31d6cfe0d16ae931b73c59d7e0c089c0" {
		t.Fatalf("unexpected string form %s", h)
	}
	if h.IsZero() {
		t.Fatal("parsed hash should not be zero")
	}
	if _, err := ed2k.ParseHash("abc"); err == nil {
		t.Fatal("expected length error")
	}
	if _, err := ed2k.ParseHash(strings.Repeat("zz", 16)); err == nil {
		t.Fatal("expected hex error")
	}
	norm, err := ed2k.Normalize(" 31D6CFE0D16AE931B73C59D7E0C089C0 ")
	if err != nil || norm != "31d6cfe0d16ae931b73c59d7e0c089c0" {
		t.Fatalf("unexpected normalize result %q err=%v", norm, err)
	}
}
