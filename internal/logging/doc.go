// Package logging assembles structured slog loggers and formatting helpers used
// across tetsu.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so a reconciliation run can tag
// every log line with its run ID. The package also provides a no-op logger for
// tests and wiring code that cannot fail.
//
// Lines about a media file carry FieldPath, then FieldFID once the file is
// resolved or FieldED2K and FieldSize when AniDB does not know it. Use the
// FID, ED2K and Size helpers so the keys stay identical in console and JSON
// output.
//
// Prefer these constructors over hand-rolled slog setup so new components emit
// data with the same shape as the rest of the system.
package logging
