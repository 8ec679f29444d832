package catalog

import "context"

// Service resolves catalog entities. Implementations return an error whose
// Kind is KindNotFound when the catalog has no such entity.
type Service interface {
	AnimeByID(ctx context.Context, aid int64) (Anime, error)
	EpisodeByID(ctx context.Context, eid int64) (Episode, error)
	GroupByID(ctx context.Context, gid int64) (Group, error)
	FileByID(ctx context.Context, fid int64) (File, error)
	FileByHash(ctx context.Context, size int64, ed2k string) (File, error)
}
