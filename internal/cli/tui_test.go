package cli

import (
	"io"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/orgchart/pkg/chart"
	"github.com/matzehuels/orgchart/pkg/config"
	orgio "github.com/matzehuels/orgchart/pkg/io"
)

func newTestEditor(t *testing.T) (editorModel, *editSession) {
	t.Helper()
	path := copyFixture(t, "chart.json")
	tpl := config.Default()
	records, err := orgio.ImportFile(path, orgio.PropertiesOf(tpl))
	if err != nil {
		t.Fatal(err)
	}
	s, err := newEditSession(path, tpl, records, log.New(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.close)
	return newEditorModel(s), s
}

func keys(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press feeds key presses to the model, one message per entry.
func press(m editorModel, presses ...string) editorModel {
	for _, p := range presses {
		next, _ := m.Update(keys(p))
		m = next.(editorModel)
	}
	return m
}

func selectedKey(t *testing.T, s *editSession) chart.Key {
	t.Helper()
	r, ok := s.selected()
	if !ok {
		return chart.Key{}
	}
	return r.Key
}

func TestEditorNavigation(t *testing.T) {
	m, s := newTestEditor(t)

	if len(m.Rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(m.Rows))
	}
	if got := selectedKey(t, s); got != chart.IntKey(0) {
		t.Fatalf("initial selection = %#v, want 0", got)
	}

	m = press(m, "j", "j")
	if got := selectedKey(t, s); got != chart.IntKey(2) {
		t.Errorf("selection after j j = %#v, want 2", got)
	}
	if s.diagram.Selection() != chart.IntKey(2) {
		t.Errorf("diagram selection = %#v, want 2", s.diagram.Selection())
	}

	m = press(m, "k", "k", "k")
	if m.Cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.Cursor)
	}

	press(m, "esc")
	if _, ok := s.selected(); ok {
		t.Error("esc did not clear the selection")
	}
}

func TestEditorEditField(t *testing.T) {
	m, s := newTestEditor(t)
	m = press(m, "j") // Amina Mohammed

	m = press(m, "e", "!")
	if m.mode != modeEdit {
		t.Fatalf("mode = %v, want edit", m.mode)
	}
	r, _ := s.selected()
	if got := r.Value("name"); got != "Amina Mohammed!" {
		t.Errorf("live value = %q", got)
	}
	if got, _ := s.diagram.Record(chart.IntKey(1)); got.Value("name") != "Amina Mohammed" {
		t.Errorf("diagram saw a live edit: %q", got.Value("name"))
	}

	m = press(m, "enter")
	if m.mode != modeBrowse {
		t.Errorf("mode = %v after commit", m.mode)
	}
	if got, _ := s.diagram.Record(chart.IntKey(1)); got.Value("name") != "Amina Mohammed!" {
		t.Errorf("diagram name after commit = %q", got.Value("name"))
	}
	if !s.dirty {
		t.Error("session not dirty after a commit")
	}
}

func TestEditorDiscardEdit(t *testing.T) {
	m, s := newTestEditor(t)
	m = press(m, "e", "backspace", "backspace", "esc")

	r, _ := s.selected()
	if got := r.Value("name"); got != "Antonio Guterres" {
		t.Errorf("name after esc = %q, want the committed value", got)
	}
	if s.dirty {
		t.Error("discarded edit marked the session dirty")
	}
	if m.mode != modeBrowse {
		t.Errorf("mode = %v", m.mode)
	}
}

func TestEditorReadOnlyField(t *testing.T) {
	m, _ := newTestEditor(t)
	m.Field = 0 // key
	m = press(m, "e")

	if m.mode != modeBrowse || !m.failed {
		t.Errorf("editing the key: mode = %v, failed = %v", m.mode, m.failed)
	}
}

func TestEditorCreateAndDelete(t *testing.T) {
	m, s := newTestEditor(t)
	m = press(m, "j", "n")

	if len(m.Rows) != 5 {
		t.Fatalf("rows after n = %d, want 5", len(m.Rows))
	}
	r, ok := s.selected()
	if !ok || r.Parent != chart.IntKey(1) || r.Value("name") != newPersonName {
		t.Fatalf("new record = %+v", r)
	}
	if s.store.Snapshot().Len() != 5 {
		t.Errorf("store has %d records, want 5", s.store.Snapshot().Len())
	}

	m = press(m, "d")
	if len(m.Rows) != 4 || s.store.Snapshot().Len() != 4 {
		t.Errorf("after d: rows = %d, store = %d", len(m.Rows), s.store.Snapshot().Len())
	}

	press(m, "k", "k", "D") // Amina Mohammed and her reports
	if s.store.Snapshot().Len() != 1 {
		t.Errorf("after D on 1: store = %d records, want 1", s.store.Snapshot().Len())
	}
}

func TestEditorMove(t *testing.T) {
	m, s := newTestEditor(t)

	// Move 3 under 2.
	m = press(m, "j", "j", "j", "m", "k", "enter")
	if m.mode != modeBrowse {
		t.Fatalf("mode = %v", m.mode)
	}
	r, _, _ := s.store.Snapshot().Lookup(chart.IntKey(3))
	if r.Parent != chart.IntKey(2) {
		t.Errorf("3 reports to %#v, want 2", r.Parent)
	}

	// A cycle is refused.
	m = press(m, "k", "k", "m", "j", "j", "enter")
	if !m.failed {
		t.Error("moving 1 under its own report succeeded")
	}
	r, _, _ = s.store.Snapshot().Lookup(chart.IntKey(1))
	if r.Parent != chart.IntKey(0) {
		t.Errorf("1 reports to %#v after a refused move", r.Parent)
	}

	// r makes a root.
	press(m, "m", "r")
	r, _, _ = s.store.Snapshot().Lookup(chart.IntKey(1))
	if r.HasParent() {
		t.Errorf("1 still reports to %#v", r.Parent)
	}
}

func TestEditorSearch(t *testing.T) {
	m, s := newTestEditor(t)
	m = press(m, "/", "s", "p", "e", "h", "enter")

	if got := selectedKey(t, s); got != chart.IntKey(3) {
		t.Errorf("search selected %#v, want 3", got)
	}

	m = press(m, "/", "z", "z", "z", "enter")
	if !m.failed {
		t.Error("search without a match did not report")
	}
}

func TestEditorSave(t *testing.T) {
	m, s := newTestEditor(t)
	press(m, "e", "!", "enter", "w")

	if s.dirty || s.saves != 1 {
		t.Fatalf("dirty = %v, saves = %d", s.dirty, s.saves)
	}
	records, err := orgio.ImportFile(s.path, orgio.DefaultProperties())
	if err != nil {
		t.Fatal(err)
	}
	if got := records[0].Value("name"); got != "Antonio Guterres!" {
		t.Errorf("saved name = %q", got)
	}
	if filepath.Ext(s.path) != ".json" {
		t.Errorf("path = %s", s.path)
	}
}

func TestEditorView(t *testing.T) {
	m, _ := newTestEditor(t)
	m = press(m, "j")

	view := m.View()
	for _, want := range []string{"Org Chart", "Antonio Guterres", "▸", "Amina Mohammed", "Field", "Deputy Secretary-General"} {
		if !strings.Contains(view, want) {
			t.Errorf("view lacks %q", want)
		}
	}
}

func TestEditorWindowSize(t *testing.T) {
	m, _ := newTestEditor(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	if got := next.(editorModel).Height; got != 5 {
		t.Errorf("height = %d, want minimum 5", got)
	}
}
