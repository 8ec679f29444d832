package catalog

import "time"

// Anime is the catalog's top-level work.
type Anime struct {
	AID             int64     `json:"aid"`
	DateFlags       int64     `json:"date_flags"`
	Year            string    `json:"year"`
	Type            string    `json:"type"`
	RelatedAIDs     []int64   `json:"related_aids,omitempty"`
	RelatedTypes    []string  `json:"related_types,omitempty"`
	RomajiName      string    `json:"romaji_name"`
	KanjiName       string    `json:"kanji_name"`
	EnglishName     string    `json:"english_name"`
	ShortNames      []string  `json:"short_names,omitempty"`
	Episodes        int64     `json:"episodes"`
	SpecialEpisodes int64     `json:"special_episodes"`
	AirDate         int64     `json:"air_date"`
	EndDate         int64     `json:"end_date"`
	PictureName     string    `json:"picture_name"`
	Restricted      bool      `json:"restricted"`
	CharacterIDs    []int64   `json:"character_ids,omitempty"`
	SpecialsCount   int64     `json:"specials_count"`
	CreditsCount    int64     `json:"credits_count"`
	OtherCount      int64     `json:"other_count"`
	TrailerCount    int64     `json:"trailer_count"`
	ParodyCount     int64     `json:"parody_count"`
	CachedAt        time.Time `json:"cached_at"`
}

// Title returns the best display name available.
func (a *Anime) Title() string {
	if a == nil {
		return ""
	}
	switch {
	case a.EnglishName != "":
		return a.EnglishName
	case a.RomajiName != "":
		return a.RomajiName
	default:
		return a.KanjiName
	}
}

// Episode belongs to one anime. AID is advisory and never enforced.
type Episode struct {
	EID         int64     `json:"eid"`
	AID         int64     `json:"aid"`
	Length      int64     `json:"length"`
	Rating      int64     `json:"rating"`
	Votes       int64     `json:"votes"`
	Number      string    `json:"number"`
	EnglishName string    `json:"english_name"`
	RomajiName  string    `json:"romaji_name"`
	KanjiName   string    `json:"kanji_name"`
	Aired       int64     `json:"aired"`
	Type        int64     `json:"type"`
	CachedAt    time.Time `json:"cached_at"`
}

// Title returns the best display name available.
func (e *Episode) Title() string {
	if e == nil {
		return ""
	}
	switch {
	case e.EnglishName != "":
		return e.EnglishName
	case e.RomajiName != "":
		return e.RomajiName
	default:
		return e.KanjiName
	}
}

// Group is a release group.
type Group struct {
	GID              int64     `json:"gid"`
	Rating           int64     `json:"rating"`
	Votes            int64     `json:"votes"`
	AnimeCount       int64     `json:"anime_count"`
	FileCount        int64     `json:"file_count"`
	Name             string    `json:"name"`
	ShortName        string    `json:"short_name"`
	IRCChannel       string    `json:"irc_channel"`
	IRCServer        string    `json:"irc_server"`
	URL              string    `json:"url"`
	PictureName      string    `json:"picture_name"`
	FoundedDate      int64     `json:"founded_date"`
	DisbandedDate    int64     `json:"disbanded_date"`
	DateFlags        int64     `json:"date_flags"`
	LastReleaseDate  int64     `json:"last_release_date"`
	LastActivityDate int64     `json:"last_activity_date"`
	Relations        []string  `json:"relations,omitempty"`
	CachedAt         time.Time `json:"cached_at"`
}

// File is one released file identified by size and ed2k hash.
type File struct {
	FID             int64     `json:"fid"`
	AID             int64     `json:"aid"`
	EID             int64     `json:"eid"`
	GID             int64     `json:"gid"`
	State           int64     `json:"state"`
	Size            int64     `json:"size"`
	ED2K            string    `json:"ed2k"`
	ColourDepth     string    `json:"colour_depth"`
	Quality         string    `json:"quality"`
	Source          string    `json:"source"`
	AudioCodecs     []string  `json:"audio_codecs,omitempty"`
	AudioBitrates   []int64   `json:"audio_bitrates,omitempty"`
	VideoCodec      string    `json:"video_codec"`
	VideoBitrate    int64     `json:"video_bitrate"`
	VideoResolution string    `json:"video_resolution"`
	DubLanguage     string    `json:"dub_language"`
	SubLanguage     string    `json:"sub_language"`
	LengthSeconds   int64     `json:"length_seconds"`
	Description     string    `json:"description"`
	AiredDate       int64     `json:"aired_date"`
	CachedAt        time.Time `json:"cached_at"`
}
