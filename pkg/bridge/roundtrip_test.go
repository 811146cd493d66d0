package bridge_test

import (
	"io"
	"slices"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orgchart/pkg/bridge"
	"github.com/matzehuels/orgchart/pkg/chart"
	"github.com/matzehuels/orgchart/pkg/config"
	"github.com/matzehuels/orgchart/pkg/diagram"
	"github.com/matzehuels/orgchart/pkg/store"
)

func mount(t *testing.T) (*diagram.Engine, *store.Store) {
	t.Helper()
	quiet := log.New(io.Discard)
	tpl := config.Default()

	st, err := store.New([]chart.Record{
		{Key: chart.IntKey(0), Attrs: chart.Attributes{"name": "Ban Ki-moon"}},
		{Key: chart.IntKey(1), Parent: chart.IntKey(0), Attrs: chart.Attributes{"name": "Patricia O'Brien"}},
		{Key: chart.IntKey(2), Parent: chart.IntKey(1), Attrs: chart.Attributes{"name": "Peter Taksøe-Jensen"}},
	}, store.WithLogger(quiet), store.WithReservedFields(tpl.Reserved()...))
	if err != nil {
		t.Fatal(err)
	}
	eng := diagram.New(diagram.WithLogger(quiet))
	b := bridge.New(st, eng, tpl, bridge.WithLogger(quiet))
	b.Mount()
	t.Cleanup(b.Unmount)
	return eng, st
}

func assertInSync(t *testing.T, eng *diagram.Engine, st *store.Store) {
	t.Helper()
	got := eng.Records()
	want := st.Snapshot().Records()
	if !slices.EqualFunc(got, want, chart.Record.Equal) {
		t.Errorf("diagram and store diverged:\n diagram: %v\n store:   %v", got, want)
	}
	if err := st.Snapshot().Verify(); err != nil {
		t.Errorf("index inconsistent: %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	eng, st := mount(t)
	assertInSync(t, eng, st)
	redraws := eng.Redraws()

	if err := eng.Select(chart.IntKey(2)); err != nil {
		t.Fatal(err)
	}
	if sel, ok := st.Snapshot().Selected(); !ok || sel.Key != chart.IntKey(2) {
		t.Fatalf("store selection = %v", sel.Key)
	}

	if _, err := eng.Transact(func(tx *diagram.Tx) error {
		return tx.Reparent(chart.IntKey(2), chart.IntKey(0))
	}); err != nil {
		t.Fatal(err)
	}
	assertInSync(t, eng, st)
	if eng.Redraws() != redraws {
		t.Error("diagram redrew its own change")
	}
	sel, _ := st.Snapshot().Selected()
	if sel.Parent != chart.IntKey(0) {
		t.Errorf("selection not refreshed: parent = %v", sel.Parent)
	}

	var created chart.Key
	if _, err := eng.Transact(func(tx *diagram.Tx) (err error) {
		created, err = tx.CreateChild(chart.IntKey(1), chart.Attributes{"name": "(new person)"})
		return err
	}); err != nil {
		t.Fatal(err)
	}
	assertInSync(t, eng, st)
	if _, _, ok := st.Snapshot().Lookup(created); !ok {
		t.Errorf("created node %v missing from store", created)
	}
}

func TestRoundTrip_FieldEdit(t *testing.T) {
	eng, st := mount(t)
	b := bridge.New(st, eng, nil, bridge.WithLogger(log.New(io.Discard)))

	if err := eng.Select(chart.IntKey(1)); err != nil {
		t.Fatal(err)
	}
	redraws := eng.Redraws()

	if err := b.OnFieldEdit("title", "Legal Counsel", false); err != nil {
		t.Fatal(err)
	}
	if r, _ := eng.Record(chart.IntKey(1)); r.Value("title") != "" {
		t.Error("live edit reached the diagram before commit")
	}

	if err := b.OnFieldEdit("title", "Legal Counsel", true); err != nil {
		t.Fatal(err)
	}
	if eng.Redraws() <= redraws {
		t.Error("committed edit did not redraw")
	}
	if r, _ := eng.Record(chart.IntKey(1)); r.Value("title") != "Legal Counsel" {
		t.Errorf("diagram title = %q", r.Value("title"))
	}
	assertInSync(t, eng, st)
}

func TestRoundTrip_LiveEditAfterCommit(t *testing.T) {
	eng, st := mount(t)
	b := bridge.New(st, eng, nil, bridge.WithLogger(log.New(io.Discard)))

	if err := eng.Select(chart.IntKey(2)); err != nil {
		t.Fatal(err)
	}
	if err := b.OnFieldEdit("name", "Peter", true); err != nil {
		t.Fatal(err)
	}
	if st.Snapshot().SkipsDiagramUpdate() {
		t.Fatal("commit left the suppression flag set")
	}
	redraws := eng.Redraws()

	for _, v := range []string{"P", "Pe", "Pet"} {
		if err := b.OnFieldEdit("title", v, false); err != nil {
			t.Fatal(err)
		}
	}
	if eng.Redraws() != redraws {
		t.Errorf("live edits redrew the diagram %d times", eng.Redraws()-redraws)
	}
	if sel, _ := st.Snapshot().Selected(); sel.Value("title") != "Pet" {
		t.Errorf("side panel title = %q", sel.Value("title"))
	}
	assertInSync(t, eng, st)
}

func TestRoundTrip_SelectDoesNotRedraw(t *testing.T) {
	eng, st := mount(t)
	if st.Snapshot().SkipsDiagramUpdate() {
		t.Fatal("fresh store has the suppression flag set")
	}
	redraws := eng.Redraws()

	for _, k := range []int64{0, 1, 2} {
		if err := eng.Select(chart.IntKey(k)); err != nil {
			t.Fatal(err)
		}
	}
	eng.ClearSelection()

	if eng.Redraws() != redraws {
		t.Errorf("selection changes redrew the diagram %d times", eng.Redraws()-redraws)
	}
}

func TestRoundTrip_DeleteSelected(t *testing.T) {
	eng, st := mount(t)
	if err := eng.Select(chart.IntKey(1)); err != nil {
		t.Fatal(err)
	}

	if _, err := eng.Transact(func(tx *diagram.Tx) error { return tx.Delete(chart.IntKey(1)) }); err != nil {
		t.Fatal(err)
	}
	assertInSync(t, eng, st)
	if _, ok := st.Snapshot().Selected(); ok {
		t.Error("store kept a removed selection")
	}
	r, _, _ := st.Snapshot().Lookup(chart.IntKey(2))
	if r.Parent != chart.IntKey(1) {
		t.Errorf("orphan lost its parent key: %v", r.Parent)
	}
}
