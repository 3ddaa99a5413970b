// Package engine implements the adaptive crawl orchestration: run
// control, the recursive navigation walk, the strategy fallback
// orchestrator, and per-run metrics collection.
package engine

import (
	"context"
	"sync"
)

// Gate is the cooperative pause gate of a run. The walk calls Wait at
// every discrete step boundary (page transition, item emission); a
// closed gate blocks the next step without canceling in-flight I/O.
type Gate struct {
	mu     sync.Mutex
	paused bool
	resume chan struct{}
}

// NewGate returns an open Gate.
func NewGate() *Gate {
	return &Gate{resume: make(chan struct{})}
}

// Close pauses the gate. Subsequent Wait calls block until Open.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.paused = true
}

// Open resumes the gate, releasing all blocked waiters.
func (g *Gate) Open() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.paused {
		return
	}
	g.paused = false
	close(g.resume)
	g.resume = make(chan struct{})
}

// Paused reports whether the gate is currently closed.
func (g *Gate) Paused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paused
}

// Wait blocks while the gate is paused. It returns the context error if
// the context is canceled first, so a stopped run unblocks and observes
// cancellation even while paused.
func (g *Gate) Wait(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		g.mu.Lock()
		if !g.paused {
			g.mu.Unlock()
			return nil
		}
		resume := g.resume
		g.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-resume:
		}
	}
}
