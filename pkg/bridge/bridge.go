// Package bridge connects a rendering surface to the authoritative store.
//
// A rendering surface owns its own visual model of the chart. It reports user
// actions as selection events and change batches, and it receives the
// authoritative records back together with a flag telling it whether it
// already shows them. [Bridge] wires the two directions:
//
//	surface --selection--> Bridge.OnChangedSelection --> Store.Select
//	surface --batch------> Bridge.OnModelChange      --> Store.Apply
//	Store   --records----> Surface.Sync(records, skip)
//
// Only snapshots whose records changed reach the surface; selection changes
// and live edits do not make it redraw.
//
// Mount and Unmount are symmetric: every registration made by Mount is undone
// by Unmount, and both may be called repeatedly.
package bridge

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orgchart/pkg/chart"
	"github.com/matzehuels/orgchart/pkg/config"
	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/store"
)

// Part classifies what a selection event refers to.
type Part int

const (
	// PartNone means nothing is selected.
	PartNone Part = iota
	// PartNode is a record's node.
	PartNode
	// PartLink is a reporting link. Links cannot be selected in the store.
	PartLink
)

// String returns the lower-case name of the part.
func (p Part) String() string {
	switch p {
	case PartNode:
		return "node"
	case PartLink:
		return "link"
	}
	return "none"
}

// SelectionEvent is raised by a surface when its selection changes. Key is
// the record key for PartNode and the child key for PartLink.
type SelectionEvent struct {
	Part Part
	Key  chart.Key
}

// ListenerID identifies a registered selection listener.
type ListenerID uint64

// Surface is a rendering engine that keeps its own copy of the chart.
type Surface interface {
	// Init configures node templates and layout. The bridge calls it once
	// per mount, before any other method.
	Init(tpl *config.Template)

	// Sync offers the authoritative records. When skip is true the surface
	// produced this state itself and must not redraw.
	Sync(records []chart.Record, skip bool)

	AddSelectionListener(fn func(SelectionEvent)) ListenerID
	RemoveSelectionListener(id ListenerID)

	// SetModelChangeHandler installs fn to receive one batch per committed
	// transaction. A nil fn removes the handler.
	SetModelChangeHandler(fn func(chart.Batch))
}

// Bridge binds one store to one surface.
type Bridge struct {
	store   *store.Store
	surface Surface
	tpl     *config.Template
	logger  *log.Logger

	mu          sync.Mutex
	mounted     bool
	listener    ListenerID
	unsubscribe func()
	synced      uint64 // collection generation last offered to the surface
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// New returns an unmounted bridge. A nil template means config.Default().
func New(s *store.Store, surface Surface, tpl *config.Template, opts ...Option) *Bridge {
	if tpl == nil {
		tpl = config.Default()
	}
	b := &Bridge{
		store:   s,
		surface: surface,
		tpl:     tpl,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Mount initializes the surface, registers the selection listener and the
// change handler, subscribes to the store, and pushes the current records.
// Mounting a mounted bridge does nothing.
func (b *Bridge) Mount() {
	b.mu.Lock()
	if b.mounted {
		b.mu.Unlock()
		return
	}
	b.mounted = true

	b.surface.Init(b.tpl)
	b.listener = b.surface.AddSelectionListener(b.OnChangedSelection)
	b.surface.SetModelChangeHandler(func(batch chart.Batch) { b.OnModelChange(batch) })
	b.unsubscribe = b.store.Subscribe(b.push)
	snap := b.store.Snapshot()
	b.synced = snap.Generation()
	b.mu.Unlock()

	b.logger.Debug("bridge mounted", "records", snap.Len(), "version", snap.Version())
	b.surface.Sync(snap.Records(), false)
}

// Unmount removes every registration made by Mount. Unmounting an unmounted
// bridge does nothing.
func (b *Bridge) Unmount() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.mounted {
		return
	}
	b.mounted = false

	b.surface.RemoveSelectionListener(b.listener)
	b.surface.SetModelChangeHandler(nil)
	b.unsubscribe()
	b.listener, b.unsubscribe = 0, nil
	b.logger.Debug("bridge unmounted")
}

// Mounted reports whether the bridge is mounted.
func (b *Bridge) Mounted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mounted
}

// push offers a snapshot to the surface when its records changed since the
// last offer. Selection changes and live edits leave the surface alone.
func (b *Bridge) push(snap *store.Snapshot) {
	b.mu.Lock()
	if snap.Generation() <= b.synced {
		b.mu.Unlock()
		return
	}
	b.synced = snap.Generation()
	b.mu.Unlock()

	b.surface.Sync(snap.Records(), snap.SkipsDiagramUpdate())
}

// OnChangedSelection forwards a surface selection to the store. A node event
// selects its record; anything else clears the selection.
func (b *Bridge) OnChangedSelection(ev SelectionEvent) {
	if ev.Part != PartNode || ev.Key.IsZero() {
		b.store.ClearSelection()
		return
	}
	if err := b.store.Select(ev.Key); err != nil {
		b.logger.Debug("selection not resolved", "key", ev.Key, "err", err)
	}
}

// OnModelChange folds a surface change batch into the store.
func (b *Bridge) OnModelChange(batch chart.Batch) store.Result {
	res := b.store.Apply(batch)
	if len(res.Ignored) > 0 {
		b.logger.Debug("batch entries did not resolve", "keys", res.Ignored)
	}
	return res
}

// OnFieldEdit forwards a side-panel edit to the store. Recoverable errors are
// logged and returned; the store keeps its last consistent state.
func (b *Bridge) OnFieldEdit(path, value string, commit bool) error {
	err := b.store.EditField(path, value, commit)
	if err != nil && errors.Recoverable(err) {
		b.logger.Debug("field edit ignored", "field", path, "err", err)
	}
	return err
}

// Store returns the bound store.
func (b *Bridge) Store() *store.Store { return b.store }
