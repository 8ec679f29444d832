package preflight

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"tetsu/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunIndex executes the checks an index run needs: the library root must be
// traversable, the database directory writable, and AniDB credentials and
// server address usable.
func RunIndex(ctx context.Context, cfg *config.Config, root string) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckReadableDirectory("Library root", root),
		CheckDirectoryAccess("Database directory", filepath.Dir(cfg.Paths.Database)),
		CheckAniDBCredentials(cfg),
		CheckAniDBServer(ctx, cfg.AniDB.Server),
	}
	return results
}

// FirstFailure returns an error describing the first failed check, or nil.
func FirstFailure(results []Result) error {
	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return errors.New("preflight failed: " + strings.Join(failed, "; "))
}
