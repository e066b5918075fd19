package view

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/matsen/labsite/internal/viz"
)

// fakeRenderer records widget calls and lets tests emit events.
type fakeRenderer struct {
	mu        sync.Mutex
	renders   int
	nodes     []viz.Node
	edges     []viz.Edge
	unselects int
	handlers  map[int]func(Event)
	nextID    int
	err       error // returned by Render
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{handlers: make(map[int]func(Event))}
}

func (r *fakeRenderer) Render(nodes []viz.Node, edges []viz.Edge, opts viz.Options) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renders++
	r.nodes = nodes
	r.edges = edges
	return r.err
}

func (r *fakeRenderer) failWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *fakeRenderer) UnselectAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unselects++
}

func (r *fakeRenderer) Subscribe(handler func(Event)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.handlers[id] = handler
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.handlers, id)
	}
}

func (r *fakeRenderer) emit(e Event) {
	r.mu.Lock()
	hs := make([]func(Event), 0, len(r.handlers))
	for _, h := range r.handlers {
		hs = append(hs, h)
	}
	r.mu.Unlock()
	for _, h := range hs {
		h(e)
	}
}

func (r *fakeRenderer) stats() (renders, unselects, subscribers int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.renders, r.unselects, len(r.handlers)
}

// fakeClipboard records writes. With err set, every write fails. With block set,
// writes wait for their context to be canceled.
type fakeClipboard struct {
	mu    sync.Mutex
	texts []string
	err   error
	block bool
}

func (c *fakeClipboard) WriteText(ctx context.Context, text string) error {
	if c.block {
		<-ctx.Done()
		return ctx.Err()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.texts = append(c.texts, text)
	return nil
}

func (c *fakeClipboard) written() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.texts...)
}

// fakeTimer is a manually fired timer.
type fakeTimer struct {
	mu      sync.Mutex
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	wasActive := !t.stopped
	t.stopped = true
	return wasActive
}

func (t *fakeTimer) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// fire runs the timer function even if stopped, as a timer that already fired would.
func (t *fakeTimer) fire() {
	t.fn()
}

// fakeClock hands out fakeTimers.
type fakeClock struct {
	mu        sync.Mutex
	timers    []*fakeTimer
	durations []time.Duration
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{fn: f}
	c.timers = append(c.timers, t)
	c.durations = append(c.durations, d)
	return t
}

func (c *fakeClock) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

func (c *fakeClock) timer(i int) *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timers[i]
}

// waitFor polls cond until it holds or a second passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
