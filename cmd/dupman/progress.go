package main

import (
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// progressThrottle limits how often the bar is redrawn.
const progressThrottle = 65 * time.Millisecond

// barProgress renders scanner progress as a terminal progress bar.
// Concurrent scans of the same stage share one bar, which ends when the
// last of them is done.
type barProgress struct {
	mu     sync.Mutex
	out    io.Writer
	bar    *progressbar.ProgressBar
	stage  string
	active int
}

func newBarProgress(out io.Writer) *barProgress {
	return &barProgress{out: out}
}

// Start opens a bar for stage, or grows the current one when another run of
// the same stage is still active.
func (p *barProgress) Start(stage string, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar != nil && p.active > 0 && p.stage == stage {
		p.bar.ChangeMax(p.bar.GetMax() + total)
		p.active++
		return
	}
	if p.bar != nil {
		_ = p.bar.Finish()
	}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription(stage),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionThrottle(progressThrottle),
	)
	p.stage = stage
	p.active = 1
}

// Increment advances the current bar by one.
func (p *barProgress) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

// Done ends one run of the current stage and finishes the bar after the
// last one.
func (p *barProgress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.active > 0 {
		p.active--
	}
	if p.bar != nil && p.active == 0 {
		_ = p.bar.Finish()
		p.bar = nil
	}
}
