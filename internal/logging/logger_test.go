package logging_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tetsu/internal/config"
	"tetsu/internal/logging"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello from config")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "tetsu.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello from config") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message without caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "debug",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleLoggerHeaderCarriesComponentAndRunID(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-header.log")

	base, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := logging.WithRunID(context.Background(), "0123456789abcdef")
	logger := logging.WithContext(ctx, logging.NewComponentLogger(base, "reconcile"))
	logger.Info("pass finished", logging.String(logging.FieldPath, "/media/a b.mkv"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	for _, want := range []string{"[reconcile]", "run 01234567", "pass finished", `path="/media/a b.mkv"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should move into the header, got %q", line)
	}
}

func TestJSONLoggerUsesLowercaseLevels(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")

	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Warn("json message", logging.String("k", "v"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(content, &payload); err != nil {
		t.Fatalf("decode json log line: %v", err)
	}
	if payload["level"] != "warn" {
		t.Fatalf("expected lowercase level, got %v", payload["level"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", payload)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.WarnWithContext(logger, "skipped", "file_skipped")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	for _, key := range []string{logging.FieldEventType, logging.FieldErrorHint, logging.FieldImpact} {
		if !strings.Contains(string(content), `"`+key+`"`) {
			t.Fatalf("expected %s in %q", key, content)
		}
	}
}

func TestRunIDFromContext(t *testing.T) {
	if _, ok := logging.RunIDFromContext(context.Background()); ok {
		t.Fatal("expected no run id on bare context")
	}
	ctx := logging.WithRunID(context.Background(), " abc ")
	id, ok := logging.RunIDFromContext(ctx)
	if !ok || id != "abc" {
		t.Fatalf("unexpected run id %q (ok=%v)", id, ok)
	}
}

func TestFileFieldsUseStableKeys(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "fields.json")
	consolePath := filepath.Join(dir, "fields.log")
	const hash = "a448017aaf21d8525fc10ae87aa6729d"

	jsonLogger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{jsonPath}})
	if err != nil {
		t.Fatalf("New json: %v", err)
	}
	consoleLogger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{consolePath}})
	if err != nil {
		t.Fatalf("New console: %v", err)
	}
	for _, logger := range []*slog.Logger{jsonLogger, consoleLogger} {
		logger.Info("file unknown to catalog",
			logging.String(logging.FieldPath, "/media/Show 01.mkv"),
			logging.FID(4242),
			logging.ED2K(hash),
			logging.Size(9728000))
	}

	content, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("read json log: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(content, &payload); err != nil {
		t.Fatalf("decode json log line: %v", err)
	}
	if payload[logging.FieldFID] != float64(4242) || payload[logging.FieldSize] != float64(9728000) {
		t.Fatalf("expected numeric fid and size, got %v", payload)
	}
	if payload[logging.FieldED2K] != hash || payload[logging.FieldPath] != "/media/Show 01.mkv" {
		t.Fatalf("unexpected string fields %v", payload)
	}

	content, err = os.ReadFile(consolePath)
	if err != nil {
		t.Fatalf("read console log: %v", err)
	}
	line := string(content)
	for _, want := range []string{`path="/media/Show 01.mkv"`, "fid=4242", "ed2k=" + hash, "size=9728000"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
}
