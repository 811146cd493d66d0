// Package diagram is an in-process rendering surface for org charts.
//
// An [Engine] keeps its own copy of the records, the way an interactive
// diagram library keeps its own model. User actions run inside a transaction
// ([Engine.Transact]); when a transaction commits, the engine emits exactly
// one [chart.Batch] describing what changed to the installed model-change
// handler. Selection changes are reported to selection listeners as
// [bridge.SelectionEvent] values.
//
// The engine implements [bridge.Surface], so a [bridge.Bridge] can keep it in
// step with a store:
//
//	eng := diagram.New()
//	b := bridge.New(st, eng, tpl)
//	b.Mount()
//	defer b.Unmount()
//
//	eng.Select(chart.IntKey(4))
//	eng.Transact(func(tx *diagram.Tx) error {
//	    return tx.Reparent(chart.IntKey(4), chart.IntKey(2))
//	})
//
// Rendering goes through [github.com/matzehuels/orgchart/pkg/render/nodelink].
package diagram

import (
	"context"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/orgchart/pkg/bridge"
	"github.com/matzehuels/orgchart/pkg/chart"
	"github.com/matzehuels/orgchart/pkg/config"
	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/render"
	"github.com/matzehuels/orgchart/pkg/render/nodelink"
)

type listener struct {
	id bridge.ListenerID
	fn func(bridge.SelectionEvent)
}

// Engine is the reference diagram. The zero value is not usable; call [New].
type Engine struct {
	mu sync.Mutex

	tpl       *config.Template
	records   []chart.Record
	index     *chart.Index
	collapsed map[chart.Key]bool
	selected  chart.Key

	listeners []listener
	nextID    bridge.ListenerID
	onChange  func(chart.Batch)

	inits   int
	redraws int

	logger *log.Logger
	newKey func() chart.Key
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithKeyFunc replaces the generator for keys of created records. The
// default yields random UUID string keys.
func WithKeyFunc(fn func() chart.Key) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newKey = fn
		}
	}
}

// New returns an empty engine using the default template.
func New(opts ...Option) *Engine {
	e := &Engine{
		tpl:       config.Default(),
		index:     chart.BuildIndex(nil),
		collapsed: make(map[chart.Key]bool),
		logger:    log.Default(),
		newKey:    func() chart.Key { return chart.StringKey(uuid.NewString()) },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ bridge.Surface = (*Engine)(nil)

// Init installs the node template and layout. A nil template means
// config.Default().
func (e *Engine) Init(tpl *config.Template) {
	if tpl == nil {
		tpl = config.Default()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tpl = tpl
	e.inits++
}

// Sync replaces the engine's records with a copy of records unless skip is
// set. When the selected record is gone afterwards, listeners receive an
// empty selection.
func (e *Engine) Sync(records []chart.Record, skip bool) {
	e.mu.Lock()
	if skip {
		e.mu.Unlock()
		e.logger.Debug("diagram sync skipped", "records", len(records))
		return
	}
	e.records = chart.CloneRecords(records)
	e.index.Rebuild(e.records)
	e.redraws++
	lost := !e.selected.IsZero() && !e.index.Contains(e.selected)
	if lost {
		e.selected = chart.Key{}
	}
	obs := slices.Clone(e.listeners)
	e.mu.Unlock()

	e.logger.Debug("diagram redrawn", "records", len(records))
	if lost {
		notify(obs, bridge.SelectionEvent{Part: bridge.PartNone})
	}
}

// AddSelectionListener registers fn for selection events.
func (e *Engine) AddSelectionListener(fn func(bridge.SelectionEvent)) bridge.ListenerID {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	e.listeners = append(e.listeners, listener{id: e.nextID, fn: fn})
	return e.nextID
}

// RemoveSelectionListener removes the listener registered under id.
func (e *Engine) RemoveSelectionListener(id bridge.ListenerID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = slices.DeleteFunc(e.listeners, func(l listener) bool { return l.id == id })
}

// SetModelChangeHandler installs fn as the receiver of committed batches.
func (e *Engine) SetModelChangeHandler(fn func(chart.Batch)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onChange = fn
}

// Listeners returns the number of registered selection listeners.
func (e *Engine) Listeners() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners)
}

// HasModelChangeHandler reports whether a handler is installed.
func (e *Engine) HasModelChangeHandler() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.onChange != nil
}

// Inits returns how often Init was called.
func (e *Engine) Inits() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inits
}

// Redraws returns how often Sync replaced the records.
func (e *Engine) Redraws() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.redraws
}

// Template returns the installed template.
func (e *Engine) Template() *config.Template {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tpl
}

// Records returns a copy of the engine's records.
func (e *Engine) Records() []chart.Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return chart.CloneRecords(e.records)
}

// Record returns a copy of the record with key k.
func (e *Engine) Record(k chart.Key) (chart.Record, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i, ok := e.index.Lookup(k)
	if !ok {
		return chart.Record{}, false
	}
	return e.records[i].Clone(), true
}

// Selection returns the key of the selected node, or the zero key.
func (e *Engine) Selection() chart.Key {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected
}

// Select selects the node with key k and notifies listeners. It returns an
// error with code LOOKUP_MISS when no node has that key.
func (e *Engine) Select(k chart.Key) error {
	e.mu.Lock()
	if !e.index.Contains(k) {
		e.mu.Unlock()
		return errors.New(errors.ErrCodeLookupMiss, "no node with key %#v", k)
	}
	e.selected = k
	obs := slices.Clone(e.listeners)
	e.mu.Unlock()

	notify(obs, bridge.SelectionEvent{Part: bridge.PartNode, Key: k})
	return nil
}

// SelectLink selects the link from child to its parent. Links are not nodes,
// so the node selection is dropped.
func (e *Engine) SelectLink(child chart.Key) error {
	e.mu.Lock()
	i, ok := e.index.Lookup(child)
	if !ok || !e.index.Contains(e.records[i].Parent) {
		e.mu.Unlock()
		return errors.New(errors.ErrCodeLookupMiss, "no link to %#v", child)
	}
	e.selected = chart.Key{}
	obs := slices.Clone(e.listeners)
	e.mu.Unlock()

	notify(obs, bridge.SelectionEvent{Part: bridge.PartLink, Key: child})
	return nil
}

// ClearSelection deselects everything, as a click on the background does.
func (e *Engine) ClearSelection() {
	e.mu.Lock()
	e.selected = chart.Key{}
	obs := slices.Clone(e.listeners)
	e.mu.Unlock()

	notify(obs, bridge.SelectionEvent{Part: bridge.PartNone})
}

// ToggleInfo expands or collapses the info panel of node k and returns the
// new state. It is a visual change and emits no batch.
func (e *Engine) ToggleInfo(k chart.Key) (expanded bool, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.index.Contains(k) {
		return false, errors.New(errors.ErrCodeLookupMiss, "no node with key %#v", k)
	}
	if e.collapsed[k] {
		delete(e.collapsed, k)
		return true, nil
	}
	e.collapsed[k] = true
	return false, nil
}

// Expanded reports whether the info panel of node k is shown.
func (e *Engine) Expanded(k chart.Key) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.collapsed[k]
}

// DOT returns the current chart as Graphviz source.
func (e *Engine) DOT(detailed bool) string {
	e.mu.Lock()
	opts := nodelink.Options{
		Template:  e.tpl,
		Detailed:  detailed,
		Collapsed: make(map[chart.Key]bool, len(e.collapsed)),
		Selected:  e.selected,
	}
	for k := range e.collapsed {
		opts.Collapsed[k] = true
	}
	records := chart.CloneRecords(e.records)
	e.mu.Unlock()

	return nodelink.ToDOT(records, opts)
}

// Render draws the current chart in the given format.
func (e *Engine) Render(ctx context.Context, format render.Format) ([]byte, error) {
	return nodelink.Render(ctx, e.DOT(false), format)
}

func notify(obs []listener, ev bridge.SelectionEvent) {
	for _, l := range obs {
		l.fn(ev)
	}
}
