package store

import (
	"database/sql"
	"time"

	"tetsu/internal/catalog"
)

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Codec maps one entity type to its table. Columns lists the key column
// first; cached_at is handled by the store and is not part of Columns.
type Codec[T any] interface {
	Table() string
	Key() string
	Columns() []string
	ID(T) int64
	Values(T) []any
	// Scan reads Columns followed by cached_at.
	Scan(Scanner) (T, error)
	Stamp(T, time.Time) T
}

var (
	AnimeCodec   Codec[catalog.Anime]   = animeCodec{}
	EpisodeCodec Codec[catalog.Episode] = episodeCodec{}
	GroupCodec   Codec[catalog.Group]   = groupCodec{}
	FileCodec    Codec[catalog.File]    = fileCodec{}
)

type animeCodec struct{}

func (animeCodec) Table() string { return "anime" }
func (animeCodec) Key() string   { return "aid" }

func (animeCodec) Columns() []string {
	return []string{
		"aid", "dateflags", "year", "atype", "related_aid_list", "related_aid_type",
		"romaji_name", "kanji_name", "english_name", "short_name_list", "episodes",
		"special_ep_count", "air_date", "end_date", "picname", "nsfw", "characterid_list",
		"specials_count", "credits_count", "other_count", "trailer_count", "parody_count",
	}
}

func (animeCodec) ID(a catalog.Anime) int64 { return a.AID }

func (animeCodec) Stamp(a catalog.Anime, t time.Time) catalog.Anime {
	a.CachedAt = t
	return a
}

func (animeCodec) Values(a catalog.Anime) []any {
	return []any{
		a.AID, a.DateFlags, a.Year, a.Type, joinInts(a.RelatedAIDs), joinStrings(a.RelatedTypes),
		a.RomajiName, a.KanjiName, a.EnglishName, joinStrings(a.ShortNames), a.Episodes,
		a.SpecialEpisodes, a.AirDate, a.EndDate, a.PictureName, boolToInt(a.Restricted), joinInts(a.CharacterIDs),
		a.SpecialsCount, a.CreditsCount, a.OtherCount, a.TrailerCount, a.ParodyCount,
	}
}

func (animeCodec) Scan(scanner Scanner) (catalog.Anime, error) {
	var (
		a            catalog.Anime
		dateFlags    sql.NullInt64
		year         sql.NullString
		atype        sql.NullString
		relatedAIDs  sql.NullString
		relatedTypes sql.NullString
		romaji       sql.NullString
		kanji        sql.NullString
		english      sql.NullString
		shortNames   sql.NullString
		episodes     sql.NullInt64
		specials     sql.NullInt64
		airDate      sql.NullInt64
		endDate      sql.NullInt64
		picname      sql.NullString
		nsfw         sql.NullInt64
		characters   sql.NullString
		specialCount sql.NullInt64
		credits      sql.NullInt64
		other        sql.NullInt64
		trailers     sql.NullInt64
		parodies     sql.NullInt64
		cachedAt     sql.NullString
	)
	if err := scanner.Scan(
		&a.AID, &dateFlags, &year, &atype, &relatedAIDs, &relatedTypes,
		&romaji, &kanji, &english, &shortNames, &episodes,
		&specials, &airDate, &endDate, &picname, &nsfw, &characters,
		&specialCount, &credits, &other, &trailers, &parodies, &cachedAt,
	); err != nil {
		return catalog.Anime{}, err
	}
	a.DateFlags = dateFlags.Int64
	a.Year = year.String
	a.Type = atype.String
	a.RelatedAIDs = splitInts(relatedAIDs)
	a.RelatedTypes = splitStrings(relatedTypes)
	a.RomajiName = romaji.String
	a.KanjiName = kanji.String
	a.EnglishName = english.String
	a.ShortNames = splitStrings(shortNames)
	a.Episodes = episodes.Int64
	a.SpecialEpisodes = specials.Int64
	a.AirDate = airDate.Int64
	a.EndDate = endDate.Int64
	a.PictureName = picname.String
	a.Restricted = nsfw.Int64 != 0
	a.CharacterIDs = splitInts(characters)
	a.SpecialsCount = specialCount.Int64
	a.CreditsCount = credits.Int64
	a.OtherCount = other.Int64
	a.TrailerCount = trailers.Int64
	a.ParodyCount = parodies.Int64
	a.CachedAt = parseTime(cachedAt)
	return a, nil
}

type episodeCodec struct{}

func (episodeCodec) Table() string { return "episodes" }
func (episodeCodec) Key() string   { return "eid" }

func (episodeCodec) Columns() []string {
	return []string{"eid", "aid", "length", "rating", "votes", "epno", "eng", "romaji", "kanji", "aired", "etype"}
}

func (episodeCodec) ID(e catalog.Episode) int64 { return e.EID }

func (episodeCodec) Stamp(e catalog.Episode, t time.Time) catalog.Episode {
	e.CachedAt = t
	return e
}

func (episodeCodec) Values(e catalog.Episode) []any {
	return []any{
		e.EID, e.AID, e.Length, e.Rating, e.Votes, e.Number,
		e.EnglishName, e.RomajiName, e.KanjiName, e.Aired, e.Type,
	}
}

func (episodeCodec) Scan(scanner Scanner) (catalog.Episode, error) {
	var (
		e        catalog.Episode
		aid      sql.NullInt64
		length   sql.NullInt64
		rating   sql.NullInt64
		votes    sql.NullInt64
		epno     sql.NullString
		eng      sql.NullString
		romaji   sql.NullString
		kanji    sql.NullString
		aired    sql.NullInt64
		etype    sql.NullInt64
		cachedAt sql.NullString
	)
	if err := scanner.Scan(&e.EID, &aid, &length, &rating, &votes, &epno, &eng, &romaji, &kanji, &aired, &etype, &cachedAt); err != nil {
		return catalog.Episode{}, err
	}
	e.AID = aid.Int64
	e.Length = length.Int64
	e.Rating = rating.Int64
	e.Votes = votes.Int64
	e.Number = epno.String
	e.EnglishName = eng.String
	e.RomajiName = romaji.String
	e.KanjiName = kanji.String
	e.Aired = aired.Int64
	e.Type = etype.Int64
	e.CachedAt = parseTime(cachedAt)
	return e, nil
}

type groupCodec struct{}

func (groupCodec) Table() string { return "groups" }
func (groupCodec) Key() string   { return "gid" }

func (groupCodec) Columns() []string {
	return []string{
		"gid", "rating", "votes", "acount", "fcount", "name", "short", "irc_channel",
		"irc_server", "url", "picname", "foundeddate", "disbandeddate", "dateflags",
		"lastreleasedate", "lastactivitydate", "grouprelations",
	}
}

func (groupCodec) ID(g catalog.Group) int64 { return g.GID }

func (groupCodec) Stamp(g catalog.Group, t time.Time) catalog.Group {
	g.CachedAt = t
	return g
}

func (groupCodec) Values(g catalog.Group) []any {
	return []any{
		g.GID, g.Rating, g.Votes, g.AnimeCount, g.FileCount, g.Name, g.ShortName, g.IRCChannel,
		g.IRCServer, g.URL, g.PictureName, g.FoundedDate, g.DisbandedDate, g.DateFlags,
		g.LastReleaseDate, g.LastActivityDate, joinStrings(g.Relations),
	}
}

func (groupCodec) Scan(scanner Scanner) (catalog.Group, error) {
	var (
		g            catalog.Group
		rating       sql.NullInt64
		votes        sql.NullInt64
		animeCount   sql.NullInt64
		fileCount    sql.NullInt64
		name         sql.NullString
		short        sql.NullString
		ircChannel   sql.NullString
		ircServer    sql.NullString
		url          sql.NullString
		picname      sql.NullString
		founded      sql.NullInt64
		disbanded    sql.NullInt64
		dateFlags    sql.NullInt64
		lastRelease  sql.NullInt64
		lastActivity sql.NullInt64
		relations    sql.NullString
		cachedAt     sql.NullString
	)
	if err := scanner.Scan(
		&g.GID, &rating, &votes, &animeCount, &fileCount, &name, &short, &ircChannel,
		&ircServer, &url, &picname, &founded, &disbanded, &dateFlags,
		&lastRelease, &lastActivity, &relations, &cachedAt,
	); err != nil {
		return catalog.Group{}, err
	}
	g.Rating = rating.Int64
	g.Votes = votes.Int64
	g.AnimeCount = animeCount.Int64
	g.FileCount = fileCount.Int64
	g.Name = name.String
	g.ShortName = short.String
	g.IRCChannel = ircChannel.String
	g.IRCServer = ircServer.String
	g.URL = url.String
	g.PictureName = picname.String
	g.FoundedDate = founded.Int64
	g.DisbandedDate = disbanded.Int64
	g.DateFlags = dateFlags.Int64
	g.LastReleaseDate = lastRelease.Int64
	g.LastActivityDate = lastActivity.Int64
	g.Relations = splitStrings(relations)
	g.CachedAt = parseTime(cachedAt)
	return g, nil
}

type fileCodec struct{}

func (fileCodec) Table() string { return "files" }
func (fileCodec) Key() string   { return "fid" }

func (fileCodec) Columns() []string {
	return []string{
		"fid", "aid", "eid", "gid", "state", "size", "ed2k", "colour_depth", "quality",
		"source", "audio_codec_list", "audio_bitrate_list", "video_codec", "video_bitrate",
		"video_resolution", "dub_language", "sub_language", "length_in_seconds",
		"description", "aired_date",
	}
}

func (fileCodec) ID(f catalog.File) int64 { return f.FID }

func (fileCodec) Stamp(f catalog.File, t time.Time) catalog.File {
	f.CachedAt = t
	return f
}

func (fileCodec) Values(f catalog.File) []any {
	return []any{
		f.FID, f.AID, f.EID, f.GID, f.State, f.Size, f.ED2K, f.ColourDepth, f.Quality,
		f.Source, joinStrings(f.AudioCodecs), joinInts(f.AudioBitrates), f.VideoCodec, f.VideoBitrate,
		f.VideoResolution, f.DubLanguage, f.SubLanguage, f.LengthSeconds,
		f.Description, f.AiredDate,
	}
}

func (fileCodec) Scan(scanner Scanner) (catalog.File, error) {
	var (
		f            catalog.File
		aid          sql.NullInt64
		eid          sql.NullInt64
		gid          sql.NullInt64
		state        sql.NullInt64
		size         sql.NullInt64
		ed2k         sql.NullString
		colourDepth  sql.NullString
		quality      sql.NullString
		source       sql.NullString
		audioCodecs  sql.NullString
		audioBitrate sql.NullString
		videoCodec   sql.NullString
		videoBitrate sql.NullInt64
		resolution   sql.NullString
		dub          sql.NullString
		sub          sql.NullString
		length       sql.NullInt64
		description  sql.NullString
		aired        sql.NullInt64
		cachedAt     sql.NullString
	)
	if err := scanner.Scan(
		&f.FID, &aid, &eid, &gid, &state, &size, &ed2k, &colourDepth, &quality,
		&source, &audioCodecs, &audioBitrate, &videoCodec, &videoBitrate,
		&resolution, &dub, &sub, &length, &description, &aired, &cachedAt,
	); err != nil {
		return catalog.File{}, err
	}
	f.AID = aid.Int64
	f.EID = eid.Int64
	f.GID = gid.Int64
	f.State = state.Int64
	f.Size = size.Int64
	f.ED2K = ed2k.String
	f.ColourDepth = colourDepth.String
	f.Quality = quality.String
	f.Source = source.String
	f.AudioCodecs = splitStrings(audioCodecs)
	f.AudioBitrates = splitInts(audioBitrate)
	f.VideoCodec = videoCodec.String
	f.VideoBitrate = videoBitrate.Int64
	f.VideoResolution = resolution.String
	f.DubLanguage = dub.String
	f.SubLanguage = sub.String
	f.LengthSeconds = length.Int64
	f.Description = description.String
	f.AiredDate = aired.Int64
	f.CachedAt = parseTime(cachedAt)
	return f, nil
}
