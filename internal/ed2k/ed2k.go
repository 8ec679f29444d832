package ed2k

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/crypto/md4"
	"golang.org/x/sync/errgroup"
)

// ChunkSize is the fixed ed2k chunk length in bytes.
const ChunkSize int64 = 9728000

// Size is the length of a digest in bytes.
const Size = md4.Size

// Hash is an ed2k digest.
type Hash [Size]byte

// String renders the hash as 32 lowercase hex characters.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether the hash is unset.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// ParseHash decodes a 32 character hex string.
func ParseHash(value string) (Hash, error) {
	var h Hash
	value = strings.TrimSpace(value)
	if len(value) != Size*2 {
		return h, fmt.Errorf("ed2k hash must be %d hex characters, got %d", Size*2, len(value))
	}
	if _, err := hex.Decode(h[:], []byte(value)); err != nil {
		return h, fmt.Errorf("decode ed2k hash: %w", err)
	}
	return h, nil
}

// HashFile hashes the file at path. workers <= 0 uses one worker per CPU.
func HashFile(ctx context.Context, fs afero.Fs, path string, workers int) (Hash, int64, error) {
	file, err := fs.Open(path)
	if err != nil {
		return Hash{}, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return Hash{}, 0, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return Hash{}, 0, fmt.Errorf("hash %s: is a directory", path)
	}

	size := info.Size()
	sum, err := Sum(ctx, file, size, workers)
	if err != nil {
		return Hash{}, 0, fmt.Errorf("hash %s: %w", path, err)
	}
	return sum, size, nil
}

// Sum hashes size bytes read from r.
func Sum(ctx context.Context, r io.ReaderAt, size int64, workers int) (Hash, error) {
	return sumChunks(ctx, r, size, ChunkSize, workers)
}

// sumChunks reads chunks in order from the calling goroutine and fans the
// MD4 work out to the group. Handles such as afero's in-memory files keep a
// shared cursor behind ReadAt, so reads must not overlap.
func sumChunks(ctx context.Context, r io.ReaderAt, size, chunkSize int64, workers int) (Hash, error) {
	if size < 0 {
		return Hash{}, fmt.Errorf("invalid size %d", size)
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	count := chunkCount(size, chunkSize)
	digests := make([][Size]byte, count)
	bufLen := min(chunkSize, size)
	free := make(chan []byte, workers+1)
	for range cap(free) {
		free <- nil
	}

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i := range count {
		if err := gctx.Err(); err != nil {
			break
		}
		offset := int64(i) * chunkSize
		length := min(chunkSize, size-offset)

		buf := <-free
		if buf == nil {
			buf = make([]byte, bufLen)
		}
		if err := readChunk(r, buf[:length], offset); err != nil {
			free <- buf
			group.Go(func() error { return fmt.Errorf("chunk %d: %w", i, err) })
			break
		}
		group.Go(func() error {
			defer func() { free <- buf }()
			digests[i] = digestChunk(buf[:length])
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Hash{}, err
	}
	if err := ctx.Err(); err != nil {
		return Hash{}, err
	}

	root := md4.New()
	for i := range digests {
		root.Write(digests[i][:])
	}
	var out Hash
	copy(out[:], root.Sum(nil))
	return out, nil
}

// chunkCount never yields a trailing empty chunk, but an empty input still
// has one (empty) chunk.
func chunkCount(size, chunkSize int64) int {
	if size == 0 {
		return 1
	}
	return int((size + chunkSize - 1) / chunkSize)
}

func readChunk(r io.ReaderAt, buf []byte, offset int64) error {
	n, err := io.ReadFull(io.NewSectionReader(r, offset, int64(len(buf))), buf)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("short read at offset %d (%d of %d bytes): %w", offset, n, len(buf), io.ErrUnexpectedEOF)
	}
	return err
}

func digestChunk(chunk []byte) [Size]byte {
	var out [Size]byte
	h := md4.New()
	h.Write(chunk)
	copy(out[:], h.Sum(nil))
	return out
}

// Normalize lowercases and validates a hex hash string.
func Normalize(value string) (string, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if _, err := ParseHash(value); err != nil {
		return "", err
	}
	return value, nil
}
