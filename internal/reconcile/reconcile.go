package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"tetsu/internal/logging"
	"tetsu/internal/resolver"
	"tetsu/internal/store"
)

// Progress receives per-file updates during the Process phase.
type Progress interface {
	Discovered(total int)
	FileDone(index int, result Result)
}

// Reconciler runs reconciliation passes over a directory tree.
type Reconciler struct {
	resolver       *resolver.Resolver
	store          *store.Store
	fs             afero.Fs
	logger         *slog.Logger
	progress       Progress
	skipUnreadable bool
	now            func() time.Time
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithFs overrides the filesystem walked and checked during prune. It should
// match the filesystem given to the resolver.
func WithFs(fs afero.Fs) Option {
	return func(r *Reconciler) {
		if fs != nil {
			r.fs = fs
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithProgress registers a progress sink.
func WithProgress(progress Progress) Option {
	return func(r *Reconciler) {
		r.progress = progress
	}
}

// WithSkipUnreadable downgrades per-file I/O errors from fatal to failed.
func WithSkipUnreadable(skip bool) Option {
	return func(r *Reconciler) {
		r.skipUnreadable = skip
	}
}

// New creates a reconciler over the resolver and its store.
func New(res *resolver.Resolver, st *store.Store, opts ...Option) *Reconciler {
	r := &Reconciler{
		resolver: res,
		store:    st,
		fs:       afero.NewOsFs(),
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "reconcile")
	return r
}

// Run performs one Discover, Process, Prune pass over root.
func (r *Reconciler) Run(ctx context.Context, root string) (*Report, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %q: %w", root, err)
	}
	logger := logging.WithContext(ctx, r.logger)
	report := &Report{Root: abs, Phase: PhaseDiscover, StartedAt: r.now()}
	defer func() {
		report.Elapsed = r.now().Sub(report.StartedAt)
	}()

	logger.Info("reconciliation started",
		logging.String(logging.FieldEventType, "reconcile_start"),
		logging.String("root", abs))

	paths, empty, err := r.discover(ctx, logger, abs)
	if err != nil {
		return report, err
	}
	report.Counts.Discovered = len(paths)
	report.Counts.Empty = empty
	if r.progress != nil {
		r.progress.Discovered(len(paths))
	}

	report.Phase = PhaseProcess
	if err := r.process(ctx, logger, report, paths); err != nil {
		logging.ErrorWithContext(logger, "reconciliation aborted", "reconcile_aborted",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix the cause and rerun; the index was not pruned"),
			logging.Int("processed", len(report.Results)),
			logging.Int("discovered", len(paths)))
		return report, err
	}

	report.Phase = PhasePrune
	pruned, err := r.store.DeleteMissingPaths(ctx, func(path string) (bool, error) {
		return afero.Exists(r.fs, path)
	})
	report.Pruned = pruned
	report.Counts.Pruned = len(pruned)
	if err != nil {
		return report, fmt.Errorf("prune: %w", err)
	}
	for _, path := range pruned {
		logger.Info("pruned missing path",
			logging.String(logging.FieldEventType, "path_pruned"),
			logging.String(logging.FieldPath, path))
	}

	report.Phase = PhaseDone
	logger.Info("reconciliation finished",
		logging.String(logging.FieldEventType, "reconcile_complete"),
		logging.Int("discovered", report.Counts.Discovered),
		logging.Int("empty", report.Counts.Empty),
		logging.Int("cached", report.Counts.Cached),
		logging.Int("moved", report.Counts.Moved),
		logging.Int("hashed", report.Counts.Hashed),
		logging.Int("unknown", report.Counts.Unknown),
		logging.Int("failed", report.Counts.Failed),
		logging.Int("pruned", report.Counts.Pruned),
		logging.Duration("elapsed", r.now().Sub(report.StartedAt)))
	return report, nil
}

// discover collects every non-empty regular file under root in walk order.
// Zero-byte files all share one ed2k hash and carry no media, so they are
// counted and left out of the index.
func (r *Reconciler) discover(ctx context.Context, logger *slog.Logger, root string) ([]string, int, error) {
	info, err := r.fs.Stat(root)
	if err != nil {
		return nil, 0, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, 0, fmt.Errorf("root %s is not a directory", root)
	}

	var paths []string
	empty := 0
	err = afero.Walk(r.fs, root, func(path string, info os.FileInfo, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if !r.skipUnreadable || path == root {
				return fmt.Errorf("%w: %s: %w", resolver.ErrUnreadable, path, walkErr)
			}
			logging.WarnWithContext(logger, "skipping unreadable entry", "walk_unreadable",
				logging.String(logging.FieldPath, path),
				logging.Error(walkErr),
				logging.String(logging.FieldErrorHint, "check permissions on the directory"),
				logging.String(logging.FieldImpact, "files below this entry are not indexed"))
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if info.Size() == 0 {
			empty++
			logger.Debug("skipping empty file",
				logging.String(logging.FieldEventType, "discover_skip_empty"),
				logging.String(logging.FieldPath, path))
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("discover %s: %w", root, err)
	}
	logger.Info("discovery complete",
		logging.String(logging.FieldEventType, "discover_complete"),
		logging.Int("files", len(paths)),
		logging.Int("empty", empty))
	return paths, empty, nil
}

func (r *Reconciler) process(ctx context.Context, logger *slog.Logger, report *Report, paths []string) error {
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		result, err := r.processFile(ctx, logger, path)
		if err != nil {
			return fmt.Errorf("process %s: %w", path, err)
		}
		report.add(result)
		if r.progress != nil {
			r.progress.FileDone(i, result)
		}
	}
	return nil
}

func (r *Reconciler) processFile(ctx context.Context, logger *slog.Logger, path string) (Result, error) {
	desc, err := r.resolver.Describe(ctx, path)
	if err != nil {
		if r.skipUnreadable && errors.Is(err, resolver.ErrUnreadable) && ctx.Err() == nil {
			logging.WarnWithContext(logger, "skipping unreadable file", "file_unreadable",
				logging.String(logging.FieldPath, path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the file's permissions and the disk"),
				logging.String(logging.FieldImpact, "file is not indexed in this run"))
			return Result{Path: path, Outcome: OutcomeFailed, Error: err.Error()}, nil
		}
		return Result{}, err
	}
	return resultFromDescription(desc), nil
}
