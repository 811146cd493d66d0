package diagram

import (
	"context"
	"io"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orgchart/pkg/bridge"
	"github.com/matzehuels/orgchart/pkg/chart"
	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/render"
)

func rec(key, parent int64, name string) chart.Record {
	r := chart.Record{Key: chart.IntKey(key), Attrs: chart.Attributes{"name": name}}
	if parent >= 0 {
		r.Parent = chart.IntKey(parent)
	}
	return r
}

// sample is 0 <- 1 <- {2, 3}.
func sample() []chart.Record {
	return []chart.Record{
		rec(0, -1, "Ban Ki-moon"),
		rec(1, 0, "Patricia O'Brien"),
		rec(2, 1, "Peter Taksøe-Jensen"),
		rec(3, 1, "Other Employees"),
	}
}

func newEngine(t *testing.T) (*Engine, *[]chart.Batch) {
	t.Helper()
	n := 100
	e := New(
		WithLogger(log.New(io.Discard)),
		WithKeyFunc(func() chart.Key {
			n++
			return chart.StringKey("new-" + strconv.Itoa(n))
		}),
	)
	e.Sync(sample(), false)

	var batches []chart.Batch
	e.SetModelChangeHandler(func(b chart.Batch) { batches = append(batches, b) })
	return e, &batches
}

func recordSelections(e *Engine) *[]bridge.SelectionEvent {
	var events []bridge.SelectionEvent
	e.AddSelectionListener(func(ev bridge.SelectionEvent) { events = append(events, ev) })
	return &events
}

func TestSync(t *testing.T) {
	e := New(WithLogger(log.New(io.Discard)))

	e.Sync(sample(), false)
	if got := len(e.Records()); got != 4 {
		t.Fatalf("records = %d, want 4", got)
	}
	if e.Redraws() != 1 {
		t.Errorf("Redraws() = %d, want 1", e.Redraws())
	}

	e.Sync(sample()[:1], true)
	if got := len(e.Records()); got != 4 {
		t.Errorf("skipped sync replaced records: %d", got)
	}
	if e.Redraws() != 1 {
		t.Errorf("skipped sync redrew: %d", e.Redraws())
	}
}

func TestSyncCopiesInput(t *testing.T) {
	e := New(WithLogger(log.New(io.Discard)))
	in := sample()
	e.Sync(in, false)
	in[0].Attrs["name"] = "changed"

	r, _ := e.Record(chart.IntKey(0))
	if r.Value("name") != "Ban Ki-moon" {
		t.Errorf("engine shares attributes with caller: %q", r.Value("name"))
	}
}

func TestSyncDropsVanishedSelection(t *testing.T) {
	e, _ := newEngine(t)
	if err := e.Select(chart.IntKey(3)); err != nil {
		t.Fatal(err)
	}
	events := recordSelections(e)

	e.Sync(sample()[:3], false)
	if !e.Selection().IsZero() {
		t.Errorf("Selection() = %v after sync removed it", e.Selection())
	}
	if len(*events) != 1 || (*events)[0].Part != bridge.PartNone {
		t.Errorf("events = %v, want one PartNone", *events)
	}
}

func TestSelect(t *testing.T) {
	e, _ := newEngine(t)
	events := recordSelections(e)

	if err := e.Select(chart.IntKey(2)); err != nil {
		t.Fatal(err)
	}
	if err := e.SelectLink(chart.IntKey(2)); err != nil {
		t.Fatal(err)
	}
	e.ClearSelection()

	want := []bridge.SelectionEvent{
		{Part: bridge.PartNode, Key: chart.IntKey(2)},
		{Part: bridge.PartLink, Key: chart.IntKey(2)},
		{Part: bridge.PartNone},
	}
	if !slices.Equal(*events, want) {
		t.Errorf("events = %v, want %v", *events, want)
	}

	if err := e.Select(chart.IntKey(42)); !errors.Is(err, errors.ErrCodeLookupMiss) {
		t.Errorf("Select(42) err = %v", err)
	}
	if err := e.SelectLink(chart.IntKey(0)); !errors.Is(err, errors.ErrCodeLookupMiss) {
		t.Errorf("SelectLink(root) err = %v", err)
	}
	if len(*events) != 3 {
		t.Errorf("failed selections raised events: %v", *events)
	}
}

func TestListeners(t *testing.T) {
	e := New()
	var a, b int
	ida := e.AddSelectionListener(func(bridge.SelectionEvent) { a++ })
	e.AddSelectionListener(func(bridge.SelectionEvent) { b++ })

	e.ClearSelection()
	e.RemoveSelectionListener(ida)
	e.ClearSelection()

	if a != 1 || b != 2 {
		t.Errorf("calls = %d, %d; want 1, 2", a, b)
	}
	if e.Listeners() != 1 {
		t.Errorf("Listeners() = %d", e.Listeners())
	}
}

func TestTransact_OneBatchPerCommit(t *testing.T) {
	e, batches := newEngine(t)

	_, err := e.Transact(func(tx *Tx) error {
		if err := tx.SetField(chart.IntKey(2), "title", "Director"); err != nil {
			return err
		}
		return tx.SetField(chart.IntKey(2), "title", "Deputy")
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(*batches) != 1 {
		t.Fatalf("batches = %d, want 1", len(*batches))
	}
	b := (*batches)[0]
	if len(b.Modified) != 1 || b.Modified[0].Value("title") != "Deputy" {
		t.Errorf("Modified = %v, want final value once", b.Modified)
	}
	r, _ := e.Record(chart.IntKey(2))
	if r.Value("title") != "Deputy" {
		t.Errorf("engine record = %v", r)
	}
}

func TestTransact_Rollback(t *testing.T) {
	e, batches := newEngine(t)

	_, err := e.Transact(func(tx *Tx) error {
		if err := tx.SetField(chart.IntKey(2), "title", "Director"); err != nil {
			return err
		}
		return tx.Reparent(chart.IntKey(0), chart.IntKey(3))
	})
	if !errors.Is(err, errors.ErrCodeCycle) {
		t.Fatalf("err = %v, want CYCLE", err)
	}
	if len(*batches) != 0 {
		t.Errorf("rolled back transaction emitted %v", *batches)
	}
	r, _ := e.Record(chart.IntKey(2))
	if _, ok := r.Get("title"); ok {
		t.Error("rolled back edit is visible")
	}
}

func TestTransact_NoChangesNoBatch(t *testing.T) {
	e, batches := newEngine(t)
	_, err := e.Transact(func(tx *Tx) error {
		return tx.Reparent(chart.IntKey(2), chart.IntKey(1))
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(*batches) != 0 {
		t.Errorf("no-op transaction emitted %v", *batches)
	}
}

func TestReparent(t *testing.T) {
	tests := []struct {
		name      string
		key       chart.Key
		parent    chart.Key
		wantCode  errors.Code
		wantAfter chart.Key
	}{
		{name: "move up", key: chart.IntKey(2), parent: chart.IntKey(0), wantAfter: chart.IntKey(0)},
		{name: "make root", key: chart.IntKey(2), parent: chart.Key{}, wantAfter: chart.Key{}},
		{name: "under self", key: chart.IntKey(1), parent: chart.IntKey(1), wantCode: errors.ErrCodeCycle},
		{name: "under descendant", key: chart.IntKey(1), parent: chart.IntKey(3), wantCode: errors.ErrCodeCycle},
		{name: "unknown node", key: chart.IntKey(9), parent: chart.IntKey(0), wantCode: errors.ErrCodeLookupMiss},
		{name: "unknown parent", key: chart.IntKey(2), parent: chart.IntKey(9), wantCode: errors.ErrCodeLookupMiss},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, batches := newEngine(t)
			_, err := e.Transact(func(tx *Tx) error { return tx.Reparent(tt.key, tt.parent) })

			if tt.wantCode != "" {
				if !errors.Is(err, tt.wantCode) {
					t.Errorf("err = %v, want %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			r, _ := e.Record(tt.key)
			if r.Parent != tt.wantAfter {
				t.Errorf("parent = %v, want %v", r.Parent, tt.wantAfter)
			}
			if len(*batches) != 1 || len((*batches)[0].Modified) != 1 {
				t.Errorf("batches = %v", *batches)
			}
		})
	}
}

func TestCreateChild(t *testing.T) {
	e, batches := newEngine(t)

	var k chart.Key
	_, err := e.Transact(func(tx *Tx) (err error) {
		k, err = tx.CreateChild(chart.IntKey(1), chart.Attributes{"name": "(new person)"})
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if k != chart.StringKey("new-101") {
		t.Errorf("key = %v", k)
	}

	b := (*batches)[0]
	if !slices.Equal(b.Inserted, []chart.Key{k}) {
		t.Errorf("Inserted = %v", b.Inserted)
	}
	if len(b.Modified) != 1 || b.Modified[0].Key != k || b.Modified[0].Parent != chart.IntKey(1) {
		t.Errorf("Modified = %v", b.Modified)
	}
	if got := len(e.Records()); got != 5 {
		t.Errorf("records = %d, want 5", got)
	}

	_, err = e.Transact(func(tx *Tx) error {
		_, err := tx.CreateChild(chart.IntKey(9), nil)
		return err
	})
	if !errors.Is(err, errors.ErrCodeLookupMiss) {
		t.Errorf("CreateChild under unknown parent err = %v", err)
	}
}

func TestCreateChild_DefaultKeys(t *testing.T) {
	e := New(WithLogger(log.New(io.Discard)))
	var a, b chart.Key
	_, err := e.Transact(func(tx *Tx) (err error) {
		if a, err = tx.CreateChild(chart.Key{}, nil); err != nil {
			return err
		}
		b, err = tx.CreateChild(a, nil)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if a == b || a.IsNumeric() || len(a.String()) != 36 {
		t.Errorf("generated keys %v, %v", a, b)
	}
}

func TestDelete(t *testing.T) {
	e, batches := newEngine(t)
	if err := e.Select(chart.IntKey(1)); err != nil {
		t.Fatal(err)
	}
	events := recordSelections(e)

	if _, err := e.Transact(func(tx *Tx) error { return tx.Delete(chart.IntKey(1)) }); err != nil {
		t.Fatal(err)
	}

	b := (*batches)[0]
	if !slices.Equal(b.Removed, []chart.Key{chart.IntKey(1)}) || len(b.Modified) != 0 {
		t.Errorf("batch = %+v", b)
	}
	r, ok := e.Record(chart.IntKey(2))
	if !ok || r.Parent != chart.IntKey(1) {
		t.Errorf("report lost its parent key: %v", r)
	}
	if !e.Selection().IsZero() || len(*events) != 1 || (*events)[0].Part != bridge.PartNone {
		t.Errorf("selection = %v, events = %v", e.Selection(), *events)
	}
}

func TestDeleteTree(t *testing.T) {
	e, batches := newEngine(t)
	if _, err := e.Transact(func(tx *Tx) error { return tx.DeleteTree(chart.IntKey(1)) }); err != nil {
		t.Fatal(err)
	}

	want := []chart.Key{chart.IntKey(1), chart.IntKey(2), chart.IntKey(3)}
	if got := (*batches)[0].Removed; !slices.Equal(got, want) {
		t.Errorf("Removed = %v, want %v", got, want)
	}
	if got := chart.Keys(e.Records()); !slices.Equal(got, []chart.Key{chart.IntKey(0)}) {
		t.Errorf("records = %v", got)
	}
}

func TestCreateThenDelete(t *testing.T) {
	e, batches := newEngine(t)
	_, err := e.Transact(func(tx *Tx) error {
		k, err := tx.CreateChild(chart.IntKey(0), nil)
		if err != nil {
			return err
		}
		return tx.Delete(k)
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(*batches) != 0 {
		t.Errorf("transient node leaked into %v", *batches)
	}
}

func TestSetField(t *testing.T) {
	e, _ := newEngine(t)
	tests := []struct {
		field string
		code  errors.Code
	}{
		{field: "", code: errors.ErrCodeInvalidField},
		{field: "key", code: errors.ErrCodeInvalidField},
		{field: "boss", code: errors.ErrCodeInvalidField},
	}
	for _, tt := range tests {
		_, err := e.Transact(func(tx *Tx) error { return tx.SetField(chart.IntKey(0), tt.field, "x") })
		if !errors.Is(err, tt.code) {
			t.Errorf("SetField(%q) err = %v, want %s", tt.field, err, tt.code)
		}
	}
}

func TestToggleInfo(t *testing.T) {
	e, batches := newEngine(t)

	expanded, err := e.ToggleInfo(chart.IntKey(1))
	if err != nil || expanded {
		t.Fatalf("ToggleInfo = %v, %v", expanded, err)
	}
	if e.Expanded(chart.IntKey(1)) {
		t.Error("node still expanded")
	}
	if !strings.Contains(e.DOT(false), `"n1" [label="Patricia O'Brien"];`) {
		t.Errorf("collapsed node keeps its info panel:\n%s", e.DOT(false))
	}

	if expanded, _ := e.ToggleInfo(chart.IntKey(1)); !expanded {
		t.Error("second toggle did not expand")
	}
	if len(*batches) != 0 {
		t.Errorf("visual toggle emitted %v", *batches)
	}
	if _, err := e.ToggleInfo(chart.IntKey(9)); !errors.Is(err, errors.ErrCodeLookupMiss) {
		t.Errorf("ToggleInfo(9) err = %v", err)
	}
}

func TestRender(t *testing.T) {
	e, _ := newEngine(t)
	out, err := e.Render(context.Background(), render.FormatDOT)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `"n1" -> "n2"`) {
		t.Errorf("DOT missing link:\n%s", out)
	}
}
