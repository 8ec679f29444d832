package testsupport

import (
	"context"
	"fmt"
	"sync"

	"tetsu/internal/catalog"
)

// FakeCatalog is an in-memory catalog.Service that counts calls.
type FakeCatalog struct {
	mu       sync.Mutex
	anime    map[int64]catalog.Anime
	episodes map[int64]catalog.Episode
	groups   map[int64]catalog.Group
	files    map[int64]catalog.File
	byHash   map[string]int64
	calls    map[string]int

	// Err, when set, is returned by every call.
	Err error
}

// NewFakeCatalog returns an empty fake.
func NewFakeCatalog() *FakeCatalog {
	return &FakeCatalog{
		anime:    make(map[int64]catalog.Anime),
		episodes: make(map[int64]catalog.Episode),
		groups:   make(map[int64]catalog.Group),
		files:    make(map[int64]catalog.File),
		byHash:   make(map[string]int64),
		calls:    make(map[string]int),
	}
}

func hashKey(size int64, ed2k string) string {
	return fmt.Sprintf("%d:%s", size, ed2k)
}

// AddFile registers a file, indexed by its size and ed2k hash.
func (f *FakeCatalog) AddFile(file catalog.File) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[file.FID] = file
	f.byHash[hashKey(file.Size, file.ED2K)] = file.FID
}

// AddAnime registers an anime.
func (f *FakeCatalog) AddAnime(anime catalog.Anime) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.anime[anime.AID] = anime
}

// AddEpisode registers an episode.
func (f *FakeCatalog) AddEpisode(episode catalog.Episode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.episodes[episode.EID] = episode
}

// AddGroup registers a group.
func (f *FakeCatalog) AddGroup(group catalog.Group) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.groups[group.GID] = group
}

// Calls returns how many times method was invoked.
func (f *FakeCatalog) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// TotalCalls returns the number of calls across all methods.
func (f *FakeCatalog) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func (f *FakeCatalog) record(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
	return f.Err
}

func (f *FakeCatalog) AnimeByID(_ context.Context, aid int64) (catalog.Anime, error) {
	if err := f.record("AnimeByID"); err != nil {
		return catalog.Anime{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	anime, ok := f.anime[aid]
	if !ok {
		return catalog.Anime{}, catalog.NotFound("anime", 330)
	}
	return anime, nil
}

func (f *FakeCatalog) EpisodeByID(_ context.Context, eid int64) (catalog.Episode, error) {
	if err := f.record("EpisodeByID"); err != nil {
		return catalog.Episode{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	episode, ok := f.episodes[eid]
	if !ok {
		return catalog.Episode{}, catalog.NotFound("episode", 340)
	}
	return episode, nil
}

func (f *FakeCatalog) GroupByID(_ context.Context, gid int64) (catalog.Group, error) {
	if err := f.record("GroupByID"); err != nil {
		return catalog.Group{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	group, ok := f.groups[gid]
	if !ok {
		return catalog.Group{}, catalog.NotFound("group", 350)
	}
	return group, nil
}

func (f *FakeCatalog) FileByID(_ context.Context, fid int64) (catalog.File, error) {
	if err := f.record("FileByID"); err != nil {
		return catalog.File{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.files[fid]
	if !ok {
		return catalog.File{}, catalog.NotFound("file", 320)
	}
	return file, nil
}

func (f *FakeCatalog) FileByHash(_ context.Context, size int64, ed2k string) (catalog.File, error) {
	if err := f.record("FileByHash"); err != nil {
		return catalog.File{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	fid, ok := f.byHash[hashKey(size, ed2k)]
	if !ok {
		return catalog.File{}, catalog.NotFound("file", 320)
	}
	return f.files[fid], nil
}

var _ catalog.Service = (*FakeCatalog)(nil)
