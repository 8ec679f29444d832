package anidb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"tetsu/internal/catalog"
)

// FileByHash looks a file up by size and ed2k hash.
func (c *Client) FileByHash(ctx context.Context, size int64, ed2k string) (catalog.File, error) {
	if size < 0 || ed2k == "" {
		return catalog.File{}, errors.New("file size and ed2k hash required")
	}
	return c.file(ctx, []param{
		{"size", strconv.FormatInt(size, 10)},
		{"ed2k", ed2k},
		{"fmask", fileMask},
		{"amask", fileAnimeMask},
	})
}

// FileByID looks a file up by its AniDB file id.
func (c *Client) FileByID(ctx context.Context, fid int64) (catalog.File, error) {
	return c.file(ctx, []param{
		{"fid", strconv.FormatInt(fid, 10)},
		{"fmask", fileMask},
		{"amask", fileAnimeMask},
	})
}

func (c *Client) file(ctx context.Context, params []param) (catalog.File, error) {
	line, err := c.fetch(ctx, "FILE", params, codeFile, codeNoSuchFile)
	if err != nil {
		return catalog.File{}, err
	}
	file, err := decodeFile(line)
	if err != nil {
		return catalog.File{}, catalog.NewError(catalog.KindFatal, "anidb file", codeFile, err)
	}
	return file, nil
}

// AnimeByID fetches an anime.
func (c *Client) AnimeByID(ctx context.Context, aid int64) (catalog.Anime, error) {
	line, err := c.fetch(ctx, "ANIME", []param{
		{"aid", strconv.FormatInt(aid, 10)},
		{"amask", animeMask},
	}, codeAnime, codeNoSuchAnime)
	if err != nil {
		return catalog.Anime{}, err
	}
	anime, err := decodeAnime(line)
	if err != nil {
		return catalog.Anime{}, catalog.NewError(catalog.KindFatal, "anidb anime", codeAnime, err)
	}
	return anime, nil
}

// EpisodeByID fetches an episode.
func (c *Client) EpisodeByID(ctx context.Context, eid int64) (catalog.Episode, error) {
	line, err := c.fetch(ctx, "EPISODE", []param{{"eid", strconv.FormatInt(eid, 10)}}, codeEpisode, codeNoSuchEpisode)
	if err != nil {
		return catalog.Episode{}, err
	}
	episode, err := decodeEpisode(line)
	if err != nil {
		return catalog.Episode{}, catalog.NewError(catalog.KindFatal, "anidb episode", codeEpisode, err)
	}
	return episode, nil
}

// GroupByID fetches a release group.
func (c *Client) GroupByID(ctx context.Context, gid int64) (catalog.Group, error) {
	line, err := c.fetch(ctx, "GROUP", []param{{"gid", strconv.FormatInt(gid, 10)}}, codeGroup, codeNoSuchGroup)
	if err != nil {
		return catalog.Group{}, err
	}
	group, err := decodeGroup(line)
	if err != nil {
		return catalog.Group{}, catalog.NewError(catalog.KindFatal, "anidb group", codeGroup, err)
	}
	return group, nil
}

// fetch runs command and returns its single data line.
func (c *Client) fetch(ctx context.Context, command string, params []param, okCode, missingCode int) (string, error) {
	r, err := c.call(ctx, command, params)
	if err != nil {
		return "", err
	}
	name := strings.ToLower(command)
	op := "anidb " + name
	switch r.code {
	case okCode:
		if len(r.data) == 0 {
			return "", catalog.NewError(catalog.KindFatal, op, r.code, fmt.Errorf("%w: empty body", errMalformed))
		}
		return r.data[0], nil
	case missingCode:
		return "", catalog.NotFound(op, r.code)
	default:
		return "", c.unexpected(name, r)
	}
}
