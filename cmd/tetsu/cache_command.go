package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tetsu/internal/config"
	"tetsu/internal/store"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the local index database",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))

	return cacheCmd
}

type cacheStats struct {
	Database  string      `json:"database"`
	SizeBytes int64       `json:"size_bytes"`
	Rows      store.Stats `json:"rows"`
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show row counts per table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				rows, err := st.Counts(cmd.Context())
				if err != nil {
					return err
				}
				stats := cacheStats{Database: st.Path(), Rows: rows}
				if info, err := os.Stat(st.Path()); err == nil {
					stats.SizeBytes = info.Size()
				}

				if ctx.jsonOutput() {
					return writeJSON(cmd, stats)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Database: %s (%s)\n", stats.Database, humanBytes(stats.SizeBytes))
				fmt.Fprintln(out, renderTable("", []string{"Table", "Rows"}, [][]string{
					{"anime", humanCount(rows.Anime)},
					{"episodes", humanCount(rows.Episodes)},
					{"groups", humanCount(rows.Groups)},
					{"files", humanCount(rows.Files)},
					{"indexed paths", humanCount(rows.Paths)},
				}, []columnAlignment{alignLeft, alignRight}))
				return nil
			})
		},
	}
}
