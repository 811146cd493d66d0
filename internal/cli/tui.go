package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/orgchart/pkg/bridge"
	"github.com/matzehuels/orgchart/pkg/chart"
	"github.com/matzehuels/orgchart/pkg/config"
	"github.com/matzehuels/orgchart/pkg/diagram"
	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/inspector"
	orgio "github.com/matzehuels/orgchart/pkg/io"
	"github.com/matzehuels/orgchart/pkg/store"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorTeal)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listMovingStyle   = lipgloss.NewStyle().Foreground(colorAmber)
	statusErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

// newPersonName is the name given to nodes created in the editor.
const newPersonName = "(new person)"

// =============================================================================
// editSession - store, diagram, and side panel wired together
// =============================================================================

// editSession owns the synchronized state behind the editor. It is shared by
// every copy of the bubbletea model.
type editSession struct {
	path  string
	tpl   *config.Template
	props orgio.Properties

	store   *store.Store
	diagram *diagram.Engine
	bridge  *bridge.Bridge
	panel   *inspector.Inspector

	dirty bool
	saves int
}

// newEditSession builds a store over records, mounts a diagram engine on it,
// and connects a side panel. Call close when done.
func newEditSession(path string, tpl *config.Template, records []chart.Record, logger *log.Logger) (*editSession, error) {
	st, err := store.New(records, store.WithLogger(logger), store.WithReservedFields(tpl.Reserved()...))
	if err != nil {
		return nil, err
	}
	eng := diagram.New(diagram.WithLogger(logger))
	br := bridge.New(st, eng, tpl, bridge.WithLogger(logger))
	br.Mount()

	return &editSession{
		path:    path,
		tpl:     tpl,
		props:   orgio.PropertiesOf(tpl),
		store:   st,
		diagram: eng,
		bridge:  br,
		panel:   inspector.New(tpl, br.OnFieldEdit),
	}, nil
}

func (s *editSession) close() { s.bridge.Unmount() }

// selected returns the record shown in the side panel, including live edits.
func (s *editSession) selected() (chart.Record, bool) {
	return s.store.Snapshot().Selected()
}

func (s *editSession) transact(fn func(tx *diagram.Tx) error) error {
	b, err := s.diagram.Transact(fn)
	if err == nil && !b.IsEmpty() {
		s.dirty = true
	}
	return err
}

func (s *editSession) save() error {
	if err := orgio.ExportFile(s.path, s.store.Snapshot().Records(), s.props); err != nil {
		return err
	}
	s.dirty = false
	s.saves++
	return nil
}

// =============================================================================
// editorModel - interactive tree editor with a side panel
// =============================================================================

type editorMode int

const (
	modeBrowse editorMode = iota
	modeEdit
	modeMove
	modeSearch
)

type treeRow struct {
	rec   chart.Record
	depth int
}

// editorModel is the bubbletea model of "orgchart edit".
type editorModel struct {
	session *editSession

	Rows   []treeRow
	Cursor int
	Offset int
	Height int
	Field  int // side panel row

	mode   editorMode
	input  textinput.Model
	moving chart.Key
	status string
	failed bool
}

// newEditorModel creates the editor and selects the first node.
func newEditorModel(s *editSession) editorModel {
	ti := textinput.New()
	ti.CharLimit = 256

	m := editorModel{
		session: s,
		Height:  20,
		Field:   2,
		input:   ti,
	}
	m.refresh()
	m.selectCursor()
	return m
}

func (m editorModel) Init() tea.Cmd {
	return nil
}

func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeEdit:
			return m.updateEdit(msg)
		case modeMove:
			return m.updateMove(msg)
		case modeSearch:
			return m.updateSearch(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m editorModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.session
	m.status, m.failed = "", false

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1)
		m.selectCursor()
	case "down", "j":
		m.moveCursor(1)
		m.selectCursor()
	case "tab":
		m.moveField(1)
	case "shift+tab":
		m.moveField(-1)
	case "esc":
		s.diagram.ClearSelection()
	case "enter", "e":
		f, ok := m.currentField()
		if !ok {
			return m, nil
		}
		if f.ReadOnly {
			m.setStatus(fmt.Errorf("%s is read only", f.Name))
			return m, nil
		}
		m.mode = modeEdit
		m.input.Prompt = f.Name + ": "
		m.input.SetValue(f.Value)
		m.input.CursorEnd()
		return m, m.input.Focus()
	case "n":
		parent := m.cursorKey()
		var created chart.Key
		err := s.transact(func(tx *diagram.Tx) (err error) {
			created, err = tx.CreateChild(parent, chart.Attributes{s.tpl.Bindings.Name: newPersonName})
			return err
		})
		if m.setStatus(err) {
			return m, nil
		}
		m.refresh()
		m.focus(created)
		m.selectCursor()
		m.status = "Created " + newPersonName
	case "d", "D":
		k := m.cursorKey()
		if k.IsZero() {
			return m, nil
		}
		del := func(tx *diagram.Tx) error { return tx.Delete(k) }
		if msg.String() == "D" {
			del = func(tx *diagram.Tx) error { return tx.DeleteTree(k) }
		}
		if m.setStatus(s.transact(del)) {
			return m, nil
		}
		m.refresh()
		m.selectCursor()
		m.status = fmt.Sprintf("Deleted %s", k)
	case "m":
		if k := m.cursorKey(); !k.IsZero() {
			m.mode = modeMove
			m.moving = k
		}
	case "/":
		m.mode = modeSearch
		m.input.Prompt = "/"
		m.input.SetValue("")
		return m, m.input.Focus()
	case "i":
		if k := m.cursorKey(); !k.IsZero() {
			expanded, err := s.diagram.ToggleInfo(k)
			if !m.setStatus(err) {
				state := "hidden"
				if expanded {
					state = "shown"
				}
				m.status = fmt.Sprintf("Info panel of %s %s", k, state)
			}
		}
	case "w":
		if !m.setStatus(s.save()) {
			m.status = "Saved " + s.path
		}
	}
	return m, nil
}

func (m editorModel) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.session
	f, _ := m.currentField()

	switch msg.String() {
	case "enter":
		m.mode = modeBrowse
		m.input.Blur()
		if m.setStatus(s.panel.Blur(f.Name, m.input.Value())) {
			return m, nil
		}
		s.dirty = true
		m.refresh()
		m.status = "Updated " + f.Name
		return m, nil
	case "esc":
		m.mode = modeBrowse
		m.input.Blur()
		// Reselecting discards the live edit.
		m.selectCursor()
		m.status = "Edit discarded"
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.setStatus(s.panel.Change(f.Name, m.input.Value()))
	return m, cmd
}

func (m editorModel) updateMove(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.session
	m.status, m.failed = "", false

	switch msg.String() {
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "esc":
		m.mode = modeBrowse
		m.focus(m.moving)
	case "enter", "r":
		var parent chart.Key
		if msg.String() == "enter" {
			parent = m.cursorKey()
		}
		moving := m.moving
		m.mode = modeBrowse
		if m.setStatus(s.transact(func(tx *diagram.Tx) error { return tx.Reparent(moving, parent) })) {
			m.focus(moving)
			return m, nil
		}
		m.refresh()
		m.focus(moving)
		m.selectCursor()
		m.status = fmt.Sprintf("Moved %s", moving)
	}
	return m, nil
}

func (m editorModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil
	case "enter":
		m.mode = modeBrowse
		m.input.Blur()
		matches := inspector.Find(m.session.diagram.Records(), m.input.Value(), m.session.tpl.Bindings.Name)
		if len(matches) == 0 {
			m.setStatus(errors.New(errors.ErrCodeNotFound, "no match for %q", m.input.Value()))
			return m, nil
		}
		m.focus(matches[0].Record.Key)
		m.selectCursor()
		m.status = fmt.Sprintf("%d match(es)", len(matches))
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// refresh rebuilds the tree rows from the diagram and keeps the cursor on
// the selected node when there is one.
func (m *editorModel) refresh() {
	tree := chart.NewTree(m.session.diagram.Records())
	m.Rows = m.Rows[:0]
	tree.Walk(func(r chart.Record, depth int) bool {
		m.Rows = append(m.Rows, treeRow{rec: r, depth: depth})
		return true
	})
	if sel := m.session.diagram.Selection(); !sel.IsZero() {
		m.focus(sel)
	}
	m.moveCursor(0)
}

// focus moves the cursor to the row of k.
func (m *editorModel) focus(k chart.Key) {
	for i, row := range m.Rows {
		if row.rec.Key == k {
			m.Cursor = i
			break
		}
	}
	m.moveCursor(0)
}

func (m *editorModel) moveCursor(delta int) {
	m.Cursor += delta
	if m.Cursor >= len(m.Rows) {
		m.Cursor = len(m.Rows) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m *editorModel) moveField(delta int) {
	r, ok := m.session.selected()
	if !ok {
		return
	}
	n := len(m.session.panel.Fields(r))
	m.Field = ((m.Field+delta)%n + n) % n
}

func (m editorModel) cursorKey() chart.Key {
	if m.Cursor >= len(m.Rows) {
		return chart.Key{}
	}
	return m.Rows[m.Cursor].rec.Key
}

// selectCursor selects the node under the cursor in the diagram, which
// forwards the selection to the store.
func (m *editorModel) selectCursor() {
	k := m.cursorKey()
	if k.IsZero() {
		m.session.diagram.ClearSelection()
		return
	}
	m.setStatus(m.session.diagram.Select(k))
}

func (m *editorModel) currentField() (inspector.Field, bool) {
	r, ok := m.session.selected()
	if !ok {
		return inspector.Field{}, false
	}
	fields := m.session.panel.Fields(r)
	if m.Field >= len(fields) {
		m.Field = len(fields) - 1
	}
	return fields[m.Field], true
}

// setStatus shows err in the status line and reports whether there was one.
func (m *editorModel) setStatus(err error) bool {
	if err == nil {
		return false
	}
	m.status, m.failed = errors.UserMessage(err), true
	return true
}

func (m editorModel) View() string {
	var b strings.Builder

	title := "Org Chart"
	if m.session.dirty {
		title += " *"
	}
	b.WriteString(styleTitle.Render(title) + " " + listDimStyle.Render(m.session.path))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(m.help()))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.viewTree(), "   ", m.viewPanel()))
	b.WriteString("\n\n")

	switch {
	case m.mode == modeSearch:
		b.WriteString(m.input.View())
	case m.failed:
		b.WriteString(statusErrorStyle.Render(markFailed + " " + m.status))
	case m.status != "":
		b.WriteString(styleOK.Render(markOK) + " " + m.status)
	default:
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))))
	}
	return b.String()
}

func (m editorModel) help() string {
	switch m.mode {
	case modeEdit:
		return "type to edit  ⏎ commit  esc discard"
	case modeMove:
		return "↑/↓ choose new boss  ⏎ move here  r make root  esc cancel"
	case modeSearch:
		return "type a name  ⏎ jump  esc cancel"
	}
	return "↑/↓ select  tab field  e edit  n new  d delete  D delete tree  m move  / find  i info  w save  q quit"
}

func (m editorModel) viewTree() string {
	var b strings.Builder
	name := m.session.tpl.Bindings.Name
	titleAttr := m.session.tpl.Bindings.Title

	end := min(m.Offset+m.Height, len(m.Rows))
	for i := m.Offset; i < end; i++ {
		row := m.Rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		label := row.rec.Value(name)
		if label == "" {
			label = row.rec.Key.String()
		}
		line := cursor + strings.Repeat("  ", row.depth) + label
		if t := row.rec.Value(titleAttr); t != "" {
			line += listDimStyle.Render(" · " + t)
		}

		switch {
		case m.mode == modeMove && row.rec.Key == m.moving:
			b.WriteString(listMovingStyle.Render(line))
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		default:
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	if len(m.Rows) == 0 {
		b.WriteString(listDimStyle.Render("  (empty chart, press n to add a root)"))
	}
	return b.String()
}

func (m editorModel) viewPanel() string {
	r, ok := m.session.selected()
	if !ok {
		return listDimStyle.Render("Nothing selected")
	}
	fields := m.session.panel.Fields(r)

	rows := make([][]string, len(fields))
	for i, f := range fields {
		value := f.Value
		if !f.Present {
			value = "—"
		}
		if m.mode == modeEdit && i == m.Field {
			value = m.input.View()
		}
		rows[i] = []string{f.Name, value}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Field", "Value").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row >= len(fields) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == m.Field:
				return base.Foreground(colorTeal).Bold(true)
			case fields[row].ReadOnly || !fields[row].Present:
				return base.Foreground(colorDim)
			}
			return base.Foreground(colorWhite)
		})
	return t.Render()
}
