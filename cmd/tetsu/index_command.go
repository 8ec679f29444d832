package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"tetsu/internal/config"
	"tetsu/internal/logging"
	"tetsu/internal/preflight"
	"tetsu/internal/reconcile"
	"tetsu/internal/resolver"
	"tetsu/internal/store"
)

func newIndexCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "index <dir>",
		Short: "Hash, identify, and index every file under a directory",
		Long: "Walk <dir>, resolve each file against the local index or AniDB, then\n" +
			"remove index entries whose files no longer exist.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, ctx, args[0])
		},
	}
}

func runIndex(cmd *cobra.Command, ctx *commandContext, dir string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}
	root, err := config.ExpandPath(dir)
	if err != nil {
		return fmt.Errorf("resolve directory: %w", err)
	}
	if root, err = filepath.Abs(root); err != nil {
		return fmt.Errorf("resolve directory: %w", err)
	}

	runCtx := logging.WithRunID(cmd.Context(), uuid.NewString())
	logger = logging.WithContext(runCtx, logger)

	if err := preflight.FirstFailure(preflight.RunIndex(runCtx, cfg, root)); err != nil {
		return err
	}

	lockPath := cfg.Paths.Database + ".lock"
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire index lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another tetsu index run holds %s", lockPath)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	st, err := store.Open(cfg.Paths.Database)
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	defer st.Close()

	client, err := ctx.newSession(cfg, logger)
	if err != nil {
		return err
	}
	defer closeSession(runCtx, client, logger)

	res := resolver.New(st, client,
		resolver.WithHashWorkers(cfg.Hashing.Workers),
		resolver.WithLogger(logger))

	opts := []reconcile.Option{
		reconcile.WithLogger(logger),
		reconcile.WithSkipUnreadable(cfg.Scan.SkipUnreadable),
	}
	var bar *barProgress
	if !ctx.jsonOutput() && isTerminal(cmd.ErrOrStderr()) {
		bar = newBarProgress(cmd.ErrOrStderr())
		opts = append(opts, reconcile.WithProgress(bar))
	}

	report, runErr := reconcile.New(res, st, opts...).Run(runCtx, root)
	if bar != nil {
		bar.finish()
	}
	if report != nil {
		if err := renderReport(cmd, ctx, report); err != nil {
			return errors.Join(runErr, err)
		}
	}
	return runErr
}

func renderReport(cmd *cobra.Command, ctx *commandContext, report *reconcile.Report) error {
	if ctx.jsonOutput() {
		return writeJSON(cmd, report)
	}
	out := cmd.OutOrStdout()
	writeReportSummary(out, report)

	var rows [][]string
	for _, result := range report.Results {
		if result.Outcome == reconcile.OutcomeCached {
			continue
		}
		detail := result.Anime
		if result.Episode != "" {
			detail += " - " + result.Episode
		}
		if result.Group != "" {
			detail += " [" + result.Group + "]"
		}
		if result.Outcome == reconcile.OutcomeMoved {
			detail = "from " + result.MovedFrom
		}
		if result.Error != "" {
			detail = result.Error
		}
		rows = append(rows, []string{string(result.Outcome), result.Path, humanBytes(result.Size), detail})
	}
	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable("Changes", []string{"Outcome", "Path", "Size", "Detail"}, rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}))
	}
	if len(report.Pruned) > 0 {
		pruned := make([][]string, 0, len(report.Pruned))
		for _, path := range report.Pruned {
			pruned = append(pruned, []string{path})
		}
		fmt.Fprintln(out, renderTable("Pruned", []string{"Path"}, pruned, nil))
	}
	return nil
}

func writeReportSummary(out io.Writer, report *reconcile.Report) {
	c := report.Counts
	rows := [][]string{
		{"Discovered", strconv.Itoa(c.Discovered)},
		{"Empty (skipped)", strconv.Itoa(c.Empty)},
		{"Cached", strconv.Itoa(c.Cached)},
		{"Moved", strconv.Itoa(c.Moved)},
		{"Hashed", strconv.Itoa(c.Hashed)},
		{"Unknown", strconv.Itoa(c.Unknown)},
		{"Failed", strconv.Itoa(c.Failed)},
		{"Pruned", strconv.Itoa(c.Pruned)},
		{"Elapsed", report.Elapsed.Round(time.Millisecond).String()},
	}
	title := "Index " + report.Root
	if report.Phase != reconcile.PhaseDone {
		title += " (stopped during " + string(report.Phase) + ")"
	}
	fmt.Fprintln(out, renderTable(title, []string{"", "Files"}, rows, []columnAlignment{alignLeft, alignRight}))
}
