package resolver

import (
	"context"
	"fmt"
	"path/filepath"

	"tetsu/internal/catalog"
	"tetsu/internal/logging"
	"tetsu/internal/store"
)

// Description is a file together with its related catalog entities. A nil
// entity means the catalog does not know it (or, offline, it is not cached).
type Description struct {
	Resolution
	Anime   *catalog.Anime   `json:"anime,omitempty"`
	Episode *catalog.Episode `json:"episode,omitempty"`
	Group   *catalog.Group   `json:"group,omitempty"`
	Unknown []string         `json:"unknown,omitempty"`
}

// Describe resolves path and its anime, episode, and group. Related entities
// the catalog does not know are listed in Unknown rather than failing.
func (r *Resolver) Describe(ctx context.Context, path string) (*Description, error) {
	res, err := r.Resolve(ctx, path)
	if err != nil {
		return nil, err
	}
	desc := &Description{Resolution: res}
	if res.File == nil {
		return desc, nil
	}
	if err := r.describeRelated(ctx, desc, true); err != nil {
		return nil, err
	}
	return desc, nil
}

// Lookup describes a path from the local index alone. It never hashes. With
// online set, entities missing from the cache are fetched; otherwise they
// are left nil. Paths absent from the index return ErrNotIndexed.
func (r *Resolver) Lookup(ctx context.Context, path string, online bool) (*Description, error) {
	path = cleanPath(path)
	info, err := r.fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %w", ErrUnreadable, path, err)
	}

	entry, found, err := r.store.LookupPath(ctx, path, filepath.Base(path), info.Size())
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNotIndexed, path)
	}

	desc := &Description{Resolution: Resolution{
		Path:   path,
		Source: SourceCache,
		Entry:  entry,
		Size:   info.Size(),
	}}
	if entry.MovedFrom != "" {
		desc.Source = SourceMoved
	}

	online = online && r.catalog != nil
	var file catalog.File
	if online {
		file, err = store.GetOrFetch(ctx, r.store, store.FileCodec, entry.FID, r.fetchFile)
	} else {
		var ok bool
		file, ok, err = store.Get(ctx, r.store, store.FileCodec, entry.FID)
		if err == nil && !ok {
			return nil, fmt.Errorf("%w: %s (file %d not cached)", ErrNotIndexed, path, entry.FID)
		}
	}
	if err != nil {
		if catalog.IsNotFound(err) {
			desc.Unknown = append(desc.Unknown, "file")
			return desc, nil
		}
		return nil, err
	}
	desc.File = &file
	desc.ED2K = file.ED2K

	if err := r.describeRelated(ctx, desc, online); err != nil {
		return nil, err
	}
	return desc, nil
}

func (r *Resolver) describeRelated(ctx context.Context, desc *Description, online bool) error {
	file := desc.File

	anime, err := related(ctx, r, store.AnimeCodec, file.AID, r.fetchAnime, online)
	if err != nil {
		return r.relatedErr(desc, "anime", err)
	}
	desc.Anime = anime
	if anime == nil && file.AID != 0 {
		desc.Unknown = append(desc.Unknown, "anime")
	}

	episode, err := related(ctx, r, store.EpisodeCodec, file.EID, r.fetchEpisode, online)
	if err != nil {
		return r.relatedErr(desc, "episode", err)
	}
	desc.Episode = episode
	if episode == nil && file.EID != 0 {
		desc.Unknown = append(desc.Unknown, "episode")
	}

	group, err := related(ctx, r, store.GroupCodec, file.GID, r.fetchGroup, online)
	if err != nil {
		return r.relatedErr(desc, "group", err)
	}
	desc.Group = group
	if group == nil && file.GID != 0 {
		desc.Unknown = append(desc.Unknown, "group")
	}

	if len(desc.Unknown) > 0 {
		r.logger.Info("related entities unknown",
			logging.String(logging.FieldEventType, "related_unknown"),
			logging.String(logging.FieldPath, desc.Path),
			logging.Any("unknown", desc.Unknown))
	}
	return nil
}

func (r *Resolver) relatedErr(desc *Description, kind string, err error) error {
	return fmt.Errorf("resolve %s for %s: %w", kind, desc.Path, err)
}

// related fetches one related entity. Zero ids (AniDB's "none") and
// not-found replies yield nil without error.
func related[T any](ctx context.Context, r *Resolver, codec store.Codec[T], id int64, fetch store.FetchFunc[T], online bool) (*T, error) {
	if id == 0 {
		return nil, nil
	}
	if !online {
		value, ok, err := store.Get(ctx, r.store, codec, id)
		if err != nil || !ok {
			return nil, err
		}
		return &value, nil
	}
	value, err := store.GetOrFetch(ctx, r.store, codec, id, fetch)
	if err != nil {
		if catalog.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &value, nil
}
