package main

import (
	"context"
	"log/slog"
	"time"

	"tetsu/internal/anidb"
	"tetsu/internal/logging"
)

const logoutTimeout = 5 * time.Second

// closeSession logs out best effort, even when ctx was cancelled by a signal.
func closeSession(ctx context.Context, client *anidb.Client, logger *slog.Logger) {
	if client == nil {
		return
	}
	logoutCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), logoutTimeout)
	defer cancel()
	if err := client.Logout(logoutCtx); err != nil {
		logging.WarnWithContext(logger, "anidb logout failed", "anidb_logout_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the session expires on its own after 35 minutes"),
			logging.String(logging.FieldImpact, "none"))
	}
	if err := client.Close(); err != nil {
		logger.Debug("close anidb socket", logging.Error(err))
	}
}
