// Package scheduler drives the real-time side of the sim: a recurring
// passive-income tick with a bounded catch-up delta, and a periodic
// autosave hook.
package scheduler

import (
	"context"
	"time"

	"sidegig/internal/game"
)

const (
	DefaultInterval = time.Second
	// MaxDelta bounds one tick's elapsed time so a suspended process
	// does not accrue a runaway delta in a single step.
	MaxDelta = 5 * time.Second
)

type Ticker struct {
	Engine   *game.Engine
	Clock    game.Clock
	Interval time.Duration
	MaxDelta time.Duration

	last time.Time
}

func NewTicker(eng *game.Engine) *Ticker {
	return &Ticker{
		Engine:   eng,
		Clock:    eng.Clock,
		Interval: DefaultInterval,
		MaxDelta: MaxDelta,
	}
}

// Tick accrues the time since the previous tick, clamped to MaxDelta.
// The first call only arms the baseline.
func (t *Ticker) Tick() {
	now := t.Clock.Now()
	if t.last.IsZero() {
		t.last = now
		return
	}
	dt := now.Sub(t.last)
	t.last = now
	if dt <= 0 {
		return
	}
	if dt > t.MaxDelta {
		dt = t.MaxDelta
	}
	t.Engine.AccruePassive(dt)
}

// Run ticks until the context is canceled.
func (t *Ticker) Run(ctx context.Context) {
	interval := t.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Tick()
		}
	}
}
