package view

import (
	"context"
	"sync"
	"time"

	"github.com/matsen/labsite/internal/publication"
	"github.com/matsen/labsite/internal/viz"
	"go.uber.org/zap"
)

// Status is what the view currently shows.
type Status int

const (
	// StatusPlaceholder is shown until the view is mounted.
	StatusPlaceholder Status = iota
	// StatusEmpty is shown when there are no authors to draw.
	StatusEmpty
	// StatusGraph means the widget has been rendered.
	StatusGraph
	// StatusError means the widget failed to draw the graph; State.Err says why.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusPlaceholder:
		return "placeholder"
	case StatusEmpty:
		return "empty"
	case StatusGraph:
		return "graph"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// PageConfig is the title and description shown above the graph.
type PageConfig struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// State is a snapshot of the view for drawing.
type State struct {
	Config   PageConfig
	Embedded bool
	Mounted  bool
	Copied   bool
	Status   Status
	Nodes    int
	Edges    int
	Err      error // Last render failure, if Status is StatusError
}

// timer is the part of *time.Timer the view needs.
type timer interface {
	Stop() bool
}

// Option configures a View.
type Option func(*View)

// WithLogger sets the logger. Clipboard failures are logged at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(v *View) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithHintDuration sets how long the copy confirmation stays visible.
func WithHintDuration(d time.Duration) Option {
	return func(v *View) {
		if d > 0 {
			v.hintDuration = d
		}
	}
}

// WithEmbedded selects compact sizing for embedding in another page.
func WithEmbedded(embedded bool) Option {
	return func(v *View) {
		v.embedded = embedded
	}
}

// WithOptions overrides the widget options.
func WithOptions(opts viz.Options) Option {
	return func(v *View) {
		v.options = opts
	}
}

// View is one co-authorship graph view. All state is local to the instance.
//
// The view starts unmounted and shows a placeholder. Mount flips it to mounted exactly
// once; after Unmount it stays down. The widget model is rebuilt only when the
// publication list passed to SetPublications is a different slice.
type View struct {
	config       PageConfig
	embedded     bool
	renderer     Renderer
	clipboard    Clipboard
	logger       *zap.Logger
	hintDuration time.Duration
	options      viz.Options
	afterFunc    func(time.Duration, func()) timer
	memo         viz.Memo

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	pubs        []publication.Publication
	model       *viz.Model
	mounted     bool
	unmounted   bool
	copied      bool
	renderErr   error
	hintTimer   timer
	hintGen     uint64
	unsubscribe func()
	onChange    func()
}

// New creates an unmounted view over pubs.
func New(config PageConfig, pubs []publication.Publication, renderer Renderer, clipboard Clipboard, opts ...Option) *View {
	ctx, cancel := context.WithCancel(context.Background())
	v := &View{
		config:       config,
		renderer:     renderer,
		clipboard:    clipboard,
		logger:       zap.NewNop(),
		hintDuration: viz.DefaultHintDuration,
		options:      viz.DefaultOptions(),
		afterFunc: func(d time.Duration, f func()) timer {
			return time.AfterFunc(d, f)
		},
		ctx:    ctx,
		cancel: cancel,
		pubs:   pubs,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// OnChange registers a function called whenever the state visible through State changes.
// It is called without the view's lock held, possibly from a timer goroutine.
func (v *View) OnChange(fn func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onChange = fn
}

// State returns a snapshot of the view.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := State{
		Config:   v.config,
		Embedded: v.embedded,
		Mounted:  v.mounted,
		Copied:   v.copied,
		Status:   StatusPlaceholder,
	}
	if v.mounted {
		s.Status = StatusGraph
		if v.model.IsEmpty() {
			s.Status = StatusEmpty
		}
		if v.renderErr != nil {
			s.Status = StatusError
			s.Err = v.renderErr
		}
		if v.model != nil {
			s.Nodes = len(v.model.Nodes)
			s.Edges = len(v.model.Edges)
		}
	}
	return s
}

// Model returns the current widget model, or nil before mount.
func (v *View) Model() *viz.Model {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.model
}

// Mount marks the environment ready, subscribes to widget events and renders the graph.
// Only the first call has any effect, and a view cannot be mounted again after Unmount.
func (v *View) Mount() error {
	v.mu.Lock()
	if v.mounted || v.unmounted {
		v.mu.Unlock()
		return nil
	}
	v.mounted = true
	v.model = v.memo.Get(v.pubs)
	model := v.model
	v.mu.Unlock()

	unsubscribe := v.renderer.Subscribe(v.handleEvent)
	v.mu.Lock()
	if v.unmounted {
		v.mu.Unlock()
		unsubscribe()
		return nil
	}
	v.unsubscribe = unsubscribe
	v.mu.Unlock()

	err := v.render(model)
	v.notify()
	return err
}

// SetPublications replaces the publication list. A different slice rebuilds the
// model and re-renders a mounted view; the same slice is a no-op.
func (v *View) SetPublications(pubs []publication.Publication) error {
	v.mu.Lock()
	v.pubs = pubs
	if !v.mounted {
		v.mu.Unlock()
		return nil
	}
	model := v.memo.Get(pubs)
	if model == v.model {
		v.mu.Unlock()
		return nil
	}
	v.model = model
	v.mu.Unlock()

	err := v.render(model)
	v.notify()
	return err
}

// Unmount tears the view down: the pending hint timer is canceled, in-flight clipboard
// writes are canceled and awaited, and widget events are unsubscribed.
func (v *View) Unmount() {
	v.mu.Lock()
	if !v.mounted {
		v.unmounted = true
		v.mu.Unlock()
		v.cancel()
		return
	}
	v.mounted = false
	v.unmounted = true
	v.copied = false
	if v.hintTimer != nil {
		v.hintTimer.Stop()
		v.hintTimer = nil
	}
	v.hintGen++
	unsubscribe := v.unsubscribe
	v.unsubscribe = nil
	v.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	v.cancel()
	v.wg.Wait()
}

// render draws a non-empty model through the widget. Empty models are shown as the
// empty state without touching the widget. The outcome is kept for State.
func (v *View) render(model *viz.Model) error {
	var err error
	if !model.IsEmpty() {
		err = v.renderer.Render(model.Nodes, model.Edges, v.options)
	}
	if err != nil {
		v.logger.Warn("rendering graph failed", zap.Error(err))
	}

	v.mu.Lock()
	v.renderErr = err
	v.mu.Unlock()
	return err
}

// handleEvent translates widget events into view actions.
func (v *View) handleEvent(e Event) {
	switch e.Kind {
	case EventSelectEdge:
		if len(e.Edges) != 1 {
			return
		}
		v.mu.Lock()
		model := v.model
		v.mu.Unlock()

		if edge, ok := model.EdgeByID(e.Edges[0]); ok && edge.Title != "" {
			v.copyAsync(viz.CopyText(edge.Title))
		}
		v.renderer.UnselectAll()

	case EventClick:
		if len(e.Edges) == 0 {
			v.renderer.UnselectAll()
		}
	}
}

// copyAsync writes text to the clipboard in the background and shows the hint on success.
func (v *View) copyAsync(text string) {
	v.mu.Lock()
	if !v.mounted {
		v.mu.Unlock()
		return
	}
	v.wg.Add(1)
	v.mu.Unlock()

	go func() {
		defer v.wg.Done()
		if err := v.clipboard.WriteText(v.ctx, text); err != nil {
			// No user-visible error for a failed copy; the hint just doesn't appear.
			v.logger.Debug("clipboard write failed", zap.Error(err))
			return
		}
		v.showHint()
	}()
}

// showHint shows the copy confirmation and (re)schedules its hide. A newer copy
// replaces the pending hide of an older one.
func (v *View) showHint() {
	v.mu.Lock()
	if !v.mounted {
		v.mu.Unlock()
		return
	}
	v.copied = true
	if v.hintTimer != nil {
		v.hintTimer.Stop()
	}
	v.hintGen++
	gen := v.hintGen
	v.hintTimer = v.afterFunc(v.hintDuration, func() { v.hideHint(gen) })
	v.mu.Unlock()

	v.notify()
}

// hideHint hides the confirmation unless a newer copy or teardown superseded gen.
func (v *View) hideHint(gen uint64) {
	v.mu.Lock()
	if gen != v.hintGen || !v.mounted {
		v.mu.Unlock()
		return
	}
	v.copied = false
	v.hintTimer = nil
	v.mu.Unlock()

	v.notify()
}

func (v *View) notify() {
	v.mu.Lock()
	fn := v.onChange
	v.mu.Unlock()
	if fn != nil {
		fn()
	}
}
