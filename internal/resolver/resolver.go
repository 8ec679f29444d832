package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"

	"tetsu/internal/catalog"
	"tetsu/internal/ed2k"
	"tetsu/internal/logging"
	"tetsu/internal/store"
)

// Source describes how a file was resolved.
type Source string

const (
	// SourceCache means the path index matched the path itself.
	SourceCache Source = "cache"
	// SourceMoved means the path index matched by filename and size and the
	// entry was moved to the new path.
	SourceMoved Source = "moved"
	// SourceHashed means the file was hashed and looked up remotely.
	SourceHashed Source = "hashed"
)

var (
	// ErrUnreadable wraps I/O failures on the file being resolved.
	ErrUnreadable = errors.New("file unreadable")
	// ErrNotIndexed is returned by Lookup for paths absent from the index.
	ErrNotIndexed = errors.New("file not indexed")
)

// Resolution is the outcome of resolving one path. File is nil when the
// catalog does not know the content.
type Resolution struct {
	Path   string          `json:"path"`
	Source Source          `json:"source"`
	File   *catalog.File   `json:"file,omitempty"`
	Entry  store.PathEntry `json:"entry"`
	ED2K   string          `json:"ed2k,omitempty"`
	Size   int64           `json:"size"`
}

// Resolver is the cache-aside facade over the store and the catalog.
type Resolver struct {
	store   *store.Store
	catalog catalog.Service
	fs      afero.Fs
	workers int
	logger  *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFs overrides the filesystem. The default is the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(r *Resolver) {
		if fs != nil {
			r.fs = fs
		}
	}
}

// WithHashWorkers sets the ed2k worker count. Zero uses one per CPU.
func WithHashWorkers(workers int) Option {
	return func(r *Resolver) {
		if workers >= 0 {
			r.workers = workers
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a resolver. svc may be nil for offline use; any operation that
// needs the catalog then reports ErrNotIndexed or a catalog not-found error.
func New(st *store.Store, svc catalog.Service, opts ...Option) *Resolver {
	r := &Resolver{
		store:   st,
		catalog: svc,
		fs:      afero.NewOsFs(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "resolver")
	return r
}

// ResolveFile returns the catalog file for path, or nil when the catalog does
// not know its content.
func (r *Resolver) ResolveFile(ctx context.Context, path string) (*catalog.File, error) {
	res, err := r.Resolve(ctx, path)
	if err != nil {
		return nil, err
	}
	return res.File, nil
}

// Resolve is ResolveFile with details about how the answer was found.
func (r *Resolver) Resolve(ctx context.Context, path string) (Resolution, error) {
	path = cleanPath(path)
	res := Resolution{Path: path}

	info, err := r.fs.Stat(path)
	if err != nil {
		return res, fmt.Errorf("%w: stat %s: %w", ErrUnreadable, path, err)
	}
	if !info.Mode().IsRegular() {
		return res, fmt.Errorf("%w: %s is not a regular file", ErrUnreadable, path)
	}
	res.Size = info.Size()

	entry, found, err := r.store.LookupPath(ctx, path, filepath.Base(path), info.Size())
	if err != nil {
		return res, err
	}
	if found {
		return r.resolveIndexed(ctx, res, entry)
	}
	return r.resolveByHash(ctx, res)
}

func (r *Resolver) resolveIndexed(ctx context.Context, res Resolution, entry store.PathEntry) (Resolution, error) {
	res.Entry = entry
	res.Source = SourceCache
	if entry.MovedFrom != "" {
		res.Source = SourceMoved
		r.logger.Info("indexed file moved",
			logging.String(logging.FieldEventType, "path_moved"),
			logging.String(logging.FieldPath, res.Path),
			logging.String(logging.FieldMovedFrom, entry.MovedFrom),
			logging.FID(entry.FID))
	} else {
		r.logger.Debug("found in index",
			logging.String(logging.FieldPath, res.Path),
			logging.FID(entry.FID))
	}

	file, err := store.GetOrFetch(ctx, r.store, store.FileCodec, entry.FID, r.fetchFile)
	if err != nil {
		if catalog.IsNotFound(err) {
			r.logger.Info("indexed file no longer in catalog",
				logging.String(logging.FieldEventType, "file_vanished"),
				logging.String(logging.FieldPath, res.Path),
				logging.FID(entry.FID))
			return res, nil
		}
		return res, fmt.Errorf("resolve file %d: %w", entry.FID, err)
	}
	res.File = &file
	res.ED2K = file.ED2K
	return res, nil
}

func (r *Resolver) resolveByHash(ctx context.Context, res Resolution) (Resolution, error) {
	res.Source = SourceHashed
	if r.catalog == nil {
		return res, ErrNotIndexed
	}

	r.logger.Info("hashing",
		logging.String(logging.FieldEventType, "hash_started"),
		logging.String(logging.FieldPath, res.Path),
		logging.Size(res.Size))
	sum, size, err := ed2k.HashFile(ctx, r.fs, res.Path, r.workers)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, ctxErr
		}
		return res, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	res.ED2K = sum.String()
	res.Size = size

	live, err := r.catalog.FileByHash(ctx, size, res.ED2K)
	if err != nil {
		if catalog.IsNotFound(err) {
			r.logger.Info("file unknown to catalog",
				logging.String(logging.FieldEventType, "file_unknown"),
				logging.String(logging.FieldPath, res.Path),
				logging.ED2K(res.ED2K),
				logging.Size(size))
			return res, nil
		}
		return res, fmt.Errorf("lookup %s: %w", res.Path, err)
	}

	file, err := store.Put(ctx, r.store, store.FileCodec, live)
	if err != nil {
		return res, err
	}
	entry := store.PathEntry{
		Path:     res.Path,
		Filename: store.NormalizeFilename(filepath.Base(res.Path)),
		Size:     size,
		FID:      file.FID,
	}
	if err := r.store.RecordPath(ctx, entry); err != nil {
		return res, err
	}
	res.File = &file
	res.Entry = entry
	return res, nil
}

func (r *Resolver) fetchFile(ctx context.Context, fid int64) (catalog.File, error) {
	if r.catalog == nil {
		return catalog.File{}, catalog.NotFound("file", 0)
	}
	return r.catalog.FileByID(ctx, fid)
}

// ResolveAnime returns the anime for aid, fetching it on a cache miss.
func (r *Resolver) ResolveAnime(ctx context.Context, aid int64) (catalog.Anime, error) {
	return store.GetOrFetch(ctx, r.store, store.AnimeCodec, aid, r.fetchAnime)
}

// ResolveEpisode returns the episode for eid, fetching it on a cache miss.
func (r *Resolver) ResolveEpisode(ctx context.Context, eid int64) (catalog.Episode, error) {
	return store.GetOrFetch(ctx, r.store, store.EpisodeCodec, eid, r.fetchEpisode)
}

// ResolveGroup returns the group for gid, fetching it on a cache miss.
func (r *Resolver) ResolveGroup(ctx context.Context, gid int64) (catalog.Group, error) {
	return store.GetOrFetch(ctx, r.store, store.GroupCodec, gid, r.fetchGroup)
}

func (r *Resolver) fetchAnime(ctx context.Context, aid int64) (catalog.Anime, error) {
	if r.catalog == nil {
		return catalog.Anime{}, catalog.NotFound("anime", 0)
	}
	return r.catalog.AnimeByID(ctx, aid)
}

func (r *Resolver) fetchEpisode(ctx context.Context, eid int64) (catalog.Episode, error) {
	if r.catalog == nil {
		return catalog.Episode{}, catalog.NotFound("episode", 0)
	}
	return r.catalog.EpisodeByID(ctx, eid)
}

func (r *Resolver) fetchGroup(ctx context.Context, gid int64) (catalog.Group, error) {
	if r.catalog == nil {
		return catalog.Group{}, catalog.NotFound("group", 0)
	}
	return r.catalog.GroupByID(ctx, gid)
}

func cleanPath(path string) string {
	if path == "" {
		return path
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
