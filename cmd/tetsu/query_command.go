package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tetsu/internal/catalog"
	"tetsu/internal/config"
	"tetsu/internal/resolver"
	"tetsu/internal/store"
)

func newQueryCommand(ctx *commandContext) *cobra.Command {
	var online bool

	cmd := &cobra.Command{
		Use:   "query <file>",
		Short: "Show what the index knows about a file",
		Long: "Describe a previously indexed file from the local index. The file is\n" +
			"never hashed. With --online, related entries missing from the cache are\n" +
			"fetched from AniDB.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				return runQuery(cmd, ctx, cfg, st, args[0], online)
			})
		},
	}
	cmd.Flags().BoolVar(&online, "online", false, "Fetch uncached related entries from AniDB")
	return cmd
}

type queryOutput struct {
	*resolver.Description
	OtherPaths []string `json:"other_paths,omitempty"`
}

func runQuery(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, st *store.Store, arg string, online bool) error {
	path, err := config.ExpandPath(strings.TrimSpace(arg))
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	var svc catalog.Service
	if online {
		client, err := ctx.newSession(cfg, logger)
		if err != nil {
			return err
		}
		defer closeSession(cmd.Context(), client, logger)
		svc = client
	}
	res := resolver.New(st, svc, resolver.WithLogger(logger))

	desc, err := res.Lookup(cmd.Context(), path, online)
	if err != nil {
		if errors.Is(err, resolver.ErrNotIndexed) {
			return fmt.Errorf("%w (run 'tetsu index' on its directory first)", err)
		}
		return err
	}

	output := queryOutput{Description: desc}
	if desc.File != nil {
		entries, err := st.PathsForFile(cmd.Context(), desc.File.FID)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if entry.Path != desc.Path {
				output.OtherPaths = append(output.OtherPaths, entry.Path)
			}
		}
	}

	if ctx.jsonOutput() {
		return writeJSON(cmd, output)
	}
	writeDescription(cmd.OutOrStdout(), output)
	return nil
}

func writeDescription(out io.Writer, q queryOutput) {
	desc := q.Description
	indexFields := [][2]string{
		{"Path", desc.Path},
		{"Size", humanBytes(desc.Size)},
		{"Match", string(desc.Source)},
		{"Moved from", desc.Entry.MovedFrom},
		{"Indexed as", desc.Entry.Filename},
		{"Other paths", strings.Join(q.OtherPaths, "\n")},
	}
	fmt.Fprintln(out, renderFields("Index", indexFields))

	if f := desc.File; f != nil {
		fmt.Fprintln(out, renderFields("File "+strconv.FormatInt(f.FID, 10), [][2]string{
			{"ed2k", f.ED2K},
			{"Size", humanBytes(f.Size)},
			{"Quality", f.Quality},
			{"Source", f.Source},
			{"Video", joinNonEmpty([]string{f.VideoCodec, f.VideoResolution})},
			{"Audio", strings.Join(f.AudioCodecs, ", ")},
			{"Dub", f.DubLanguage},
			{"Subs", f.SubLanguage},
			{"Length", formatDurationSeconds(f.LengthSeconds)},
			{"Aired", formatEpoch(f.AiredDate)},
			{"Description", f.Description},
			{"Cached", formatCachedAt(f.CachedAt)},
		}))
	}
	if a := desc.Anime; a != nil {
		fmt.Fprintln(out, renderFields("Anime "+strconv.FormatInt(a.AID, 10), [][2]string{
			{"Title", a.Title()},
			{"Romaji", a.RomajiName},
			{"Kanji", a.KanjiName},
			{"Type", a.Type},
			{"Year", a.Year},
			{"Episodes", formatNonZero(a.Episodes)},
			{"Aired", joinNonEmpty([]string{formatEpoch(a.AirDate), formatEpoch(a.EndDate)})},
			{"18+", restrictedLabel(a.Restricted)},
			{"Cached", formatCachedAt(a.CachedAt)},
		}))
	}
	if e := desc.Episode; e != nil {
		fmt.Fprintln(out, renderFields("Episode "+strconv.FormatInt(e.EID, 10), [][2]string{
			{"Number", e.Number},
			{"Title", e.Title()},
			{"Romaji", e.RomajiName},
			{"Length", formatEpisodeLength(e.Length)},
			{"Aired", formatEpoch(e.Aired)},
			{"Cached", formatCachedAt(e.CachedAt)},
		}))
	}
	if g := desc.Group; g != nil {
		fmt.Fprintln(out, renderFields("Group "+strconv.FormatInt(g.GID, 10), [][2]string{
			{"Name", g.Name},
			{"Short name", g.ShortName},
			{"URL", g.URL},
			{"IRC", joinNonEmpty([]string{g.IRCChannel, g.IRCServer})},
			{"Cached", formatCachedAt(g.CachedAt)},
		}))
	}
	if len(desc.Unknown) > 0 {
		fmt.Fprintf(out, "Not cached: %s\n", strings.Join(desc.Unknown, ", "))
	}
}

func restrictedLabel(restricted bool) string {
	if !restricted {
		return ""
	}
	return yesNo(restricted)
}

func formatDurationSeconds(sec int64) string {
	if sec <= 0 {
		return ""
	}
	return (time.Duration(sec) * time.Second).String()
}

// formatEpisodeLength renders AniDB episode lengths, which are in minutes.
func formatEpisodeLength(minutes int64) string {
	if minutes <= 0 {
		return ""
	}
	return strconv.FormatInt(minutes, 10) + "m"
}
