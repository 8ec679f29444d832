package main

import (
	"io"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"

	"tetsu/internal/reconcile"
)

// barProgress draws a terminal progress bar for a reconciliation run.
type barProgress struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

func newBarProgress(out io.Writer) *barProgress {
	return &barProgress{out: out}
}

func (p *barProgress) Discovered(total int) {
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription("indexing"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func (p *barProgress) FileDone(_ int, result reconcile.Result) {
	if p.bar == nil {
		return
	}
	p.bar.Describe(string(result.Outcome) + " " + filepath.Base(result.Path))
	_ = p.bar.Add(1)
}

func (p *barProgress) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}
