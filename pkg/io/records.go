package io

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/orgchart/pkg/chart"
	"github.com/matzehuels/orgchart/pkg/config"
	"github.com/matzehuels/orgchart/pkg/errors"
)

// Properties names the node object members that carry structure.
type Properties struct {
	Key    string
	Parent string
}

// DefaultProperties returns the "key" and "boss" property names.
func DefaultProperties() Properties {
	return Properties{Key: "key", Parent: "boss"}
}

// PropertiesOf returns the property names configured in t.
func PropertiesOf(t *config.Template) Properties {
	return Properties{Key: t.KeyProperty, Parent: t.ParentProperty}
}

func (p Properties) orDefault() Properties {
	d := DefaultProperties()
	if p.Key == "" {
		p.Key = d.Key
	}
	if p.Parent == "" {
		p.Parent = d.Parent
	}
	return p
}

// model is the saved-model wrapper around a node data array.
type model struct {
	KeyProperty    string           `json:"nodeKeyProperty" yaml:"nodeKeyProperty"`
	ParentProperty string           `json:"nodeParentKeyProperty" yaml:"nodeParentKeyProperty"`
	Nodes          []map[string]any `json:"nodeDataArray" yaml:"nodeDataArray"`
}

func (m model) properties(p Properties) Properties {
	if m.KeyProperty != "" {
		p.Key = m.KeyProperty
	}
	if m.ParentProperty != "" {
		p.Parent = m.ParentProperty
	}
	return p
}

func toRecords(nodes []map[string]any, p Properties) ([]chart.Record, error) {
	records := make([]chart.Record, 0, len(nodes))
	for i, n := range nodes {
		r, err := toRecord(n, p)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		records = append(records, r)
	}
	return records, nil
}

func toRecord(n map[string]any, p Properties) (chart.Record, error) {
	var r chart.Record
	raw, ok := n[p.Key]
	if !ok || raw == nil {
		return r, errors.New(errors.ErrCodeInvalidKey, "missing %q property", p.Key)
	}
	k, err := toKey(raw)
	if err != nil {
		return r, err
	}
	if k.IsZero() {
		return r, errors.New(errors.ErrCodeInvalidKey, "empty %q property", p.Key)
	}
	r.Key = k

	if raw, ok := n[p.Parent]; ok && raw != nil {
		if r.Parent, err = toKey(raw); err != nil {
			return r, fmt.Errorf("%s: %w", p.Parent, err)
		}
	}

	r.Attrs = make(chart.Attributes, len(n))
	for name, v := range n {
		if name == p.Key || name == p.Parent || v == nil {
			continue
		}
		s, err := scalar(v)
		if err != nil {
			return r, fmt.Errorf("%s: %w", name, err)
		}
		r.Attrs[name] = s
	}
	return r, nil
}

func toKey(v any) (chart.Key, error) {
	switch v := v.(type) {
	case string:
		return chart.StringKey(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return chart.Key{}, errors.Wrap(errors.ErrCodeInvalidKey, err, "key %s", v)
		}
		return chart.NumberKey(f), nil
	case int:
		return chart.IntKey(int64(v)), nil
	case int64:
		return chart.IntKey(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return chart.Key{}, errors.New(errors.ErrCodeInvalidKey, "key %d out of range", v)
		}
		return chart.IntKey(int64(v)), nil
	case float64:
		return chart.NumberKey(v), nil
	}
	return chart.Key{}, errors.New(errors.ErrCodeInvalidKey, "key must be a number or string, got %T", v)
}

func scalar(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "attribute must be a scalar, got %T", v)
}

// keyValue returns the native form of k for encoding: an integer or float for
// numeric keys, a string otherwise.
func keyValue(k chart.Key) any {
	if !k.IsNumeric() {
		return k.String()
	}
	if n, ok := k.Int(); ok {
		return n
	}
	f, _ := strconv.ParseFloat(k.String(), 64)
	return f
}

func fromRecords(records []chart.Record, p Properties) []map[string]any {
	out := make([]map[string]any, len(records))
	for i, r := range records {
		out[i] = fromRecord(r, p)
	}
	return out
}

func fromRecord(r chart.Record, p Properties) map[string]any {
	n := make(map[string]any, len(r.Attrs)+2)
	for name, v := range r.Attrs {
		n[name] = v
	}
	n[p.Key] = keyValue(r.Key)
	if r.HasParent() {
		n[p.Parent] = keyValue(r.Parent)
	}
	return n
}

func validate(records []chart.Record) ([]chart.Record, error) {
	if err := chart.Validate(records); err != nil {
		code := errors.ErrCodeInvalidInput
		switch {
		case stderrors.Is(err, chart.ErrDuplicateKey):
			code = errors.ErrCodeDuplicateKey
		case stderrors.Is(err, chart.ErrCycle), stderrors.Is(err, chart.ErrSelfParent):
			code = errors.ErrCodeCycle
		case stderrors.Is(err, chart.ErrInvalidKey):
			code = errors.ErrCodeInvalidKey
		}
		return nil, errors.Wrap(code, err, "dataset")
	}
	return records, nil
}
