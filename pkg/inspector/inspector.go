// Package inspector presents the selected record as an editable field list.
//
// The side panel of an org chart editor shows one row per known attribute of
// the selected record. Typing into a row is a live edit; leaving the row
// commits it. [Inspector] turns both into calls of an edit callback with the
// signature (path, value, commit), which is what [bridge.Bridge.OnFieldEdit]
// expects.
package inspector

import (
	"slices"

	"github.com/matzehuels/orgchart/pkg/chart"
	"github.com/matzehuels/orgchart/pkg/config"
	"github.com/matzehuels/orgchart/pkg/errors"
)

// Field is one row of the panel.
type Field struct {
	Name     string
	Value    string
	Present  bool // the record carries the attribute
	ReadOnly bool // key and parent rows
}

// EditFunc receives edits from the panel.
type EditFunc func(path, value string, commit bool) error

// Inspector builds field lists and routes edits.
type Inspector struct {
	tpl    *config.Template
	onEdit EditFunc
}

// New returns an inspector that lays out fields according to tpl and sends
// edits to onEdit. A nil template means config.Default().
func New(tpl *config.Template, onEdit EditFunc) *Inspector {
	if tpl == nil {
		tpl = config.Default()
	}
	return &Inspector{tpl: tpl, onEdit: onEdit}
}

// Fields returns the rows for r. The key and parent come first and are read
// only; then every inspector field from the template, present or not; then
// any other attribute of r in sorted order.
func (in *Inspector) Fields(r chart.Record) []Field {
	fields := []Field{
		{Name: in.tpl.KeyProperty, Value: r.Key.String(), Present: true, ReadOnly: true},
		{Name: in.tpl.ParentProperty, Value: r.Parent.String(), Present: r.HasParent(), ReadOnly: true},
	}
	for _, name := range in.tpl.Fields(r.Attrs.Names()) {
		v, ok := r.Get(name)
		fields = append(fields, Field{Name: name, Value: v, Present: ok})
	}
	return fields
}

// Editable reports whether the panel allows editing the named field.
func (in *Inspector) Editable(name string) bool {
	return name != "" && !slices.Contains(in.tpl.Reserved(), name)
}

// Change reports a keystroke in a field: a live edit that is not committed.
func (in *Inspector) Change(path, value string) error {
	return in.edit(path, value, false)
}

// Blur reports that a field lost focus: the value is committed.
func (in *Inspector) Blur(path, value string) error {
	return in.edit(path, value, true)
}

func (in *Inspector) edit(path, value string, commit bool) error {
	if !in.Editable(path) {
		return errors.New(errors.ErrCodeInvalidField, "field %q cannot be edited", path)
	}
	if in.onEdit == nil {
		return nil
	}
	return in.onEdit(path, value, commit)
}
