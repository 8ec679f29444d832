package anidb

import (
	"fmt"

	"tetsu/internal/catalog"
)

// The decoders read fields in the order the masks in protocol.go request
// them. The first field is always the entity id.

func decodeFile(line string) (catalog.File, error) {
	f, err := splitFields(line, fileFieldCount)
	if err != nil {
		return catalog.File{}, err
	}
	file := catalog.File{
		FID:             f.int(),
		AID:             f.int(),
		EID:             f.int(),
		GID:             f.int(),
		State:           f.int(),
		Size:            f.int(),
		ED2K:            f.str(),
		ColourDepth:     f.str(),
		Quality:         f.str(),
		Source:          f.str(),
		AudioCodecs:     f.strList(),
		AudioBitrates:   f.intList(),
		VideoCodec:      f.str(),
		VideoBitrate:    f.int(),
		VideoResolution: f.str(),
		DubLanguage:     f.str(),
		SubLanguage:     f.str(),
		LengthSeconds:   f.int(),
		Description:     f.str(),
		AiredDate:       f.int(),
	}
	if f.err != nil {
		return catalog.File{}, fmt.Errorf("file: %w", f.err)
	}
	return file, nil
}

func decodeAnime(line string) (catalog.Anime, error) {
	f, err := splitFields(line, animeFieldCount)
	if err != nil {
		return catalog.Anime{}, err
	}
	anime := catalog.Anime{
		AID:             f.int(),
		DateFlags:       f.int(),
		Year:            f.str(),
		Type:            f.str(),
		RelatedAIDs:     f.intList(),
		RelatedTypes:    f.strList(),
		RomajiName:      f.str(),
		KanjiName:       f.str(),
		EnglishName:     f.str(),
		ShortNames:      f.strList(),
		Episodes:        f.int(),
		SpecialEpisodes: f.int(),
		AirDate:         f.int(),
		EndDate:         f.int(),
		PictureName:     f.str(),
		Restricted:      f.bool(),
		CharacterIDs:    f.intList(),
		SpecialsCount:   f.int(),
		CreditsCount:    f.int(),
		OtherCount:      f.int(),
		TrailerCount:    f.int(),
		ParodyCount:     f.int(),
	}
	if f.err != nil {
		return catalog.Anime{}, fmt.Errorf("anime: %w", f.err)
	}
	return anime, nil
}

func decodeEpisode(line string) (catalog.Episode, error) {
	f, err := splitFields(line, episodeFieldCount)
	if err != nil {
		return catalog.Episode{}, err
	}
	episode := catalog.Episode{
		EID:         f.int(),
		AID:         f.int(),
		Length:      f.int(),
		Rating:      f.int(),
		Votes:       f.int(),
		Number:      f.str(),
		EnglishName: f.str(),
		RomajiName:  f.str(),
		KanjiName:   f.str(),
		Aired:       f.int(),
		Type:        f.int(),
	}
	if f.err != nil {
		return catalog.Episode{}, fmt.Errorf("episode: %w", f.err)
	}
	return episode, nil
}

func decodeGroup(line string) (catalog.Group, error) {
	f, err := splitFields(line, groupFieldCount)
	if err != nil {
		return catalog.Group{}, err
	}
	group := catalog.Group{
		GID:              f.int(),
		Rating:           f.int(),
		Votes:            f.int(),
		AnimeCount:       f.int(),
		FileCount:        f.int(),
		Name:             f.str(),
		ShortName:        f.str(),
		IRCChannel:       f.str(),
		IRCServer:        f.str(),
		URL:              f.str(),
		PictureName:      f.str(),
		FoundedDate:      f.int(),
		DisbandedDate:    f.int(),
		DateFlags:        f.int(),
		LastReleaseDate:  f.int(),
		LastActivityDate: f.int(),
		Relations:        f.strList(),
	}
	if f.err != nil {
		return catalog.Group{}, fmt.Errorf("group: %w", f.err)
	}
	return group, nil
}
