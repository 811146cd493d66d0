package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/orgchart/pkg/chart"
	"github.com/matzehuels/orgchart/pkg/errors"
)

type batch struct {
	Inserted []any            `json:"insertedNodeKeys,omitempty"`
	Modified []map[string]any `json:"modifiedNodeData,omitempty"`
	Removed  []any            `json:"removedNodeKeys,omitempty"`
}

// ReadBatch decodes a JSON change batch from r. Node objects in
// "modifiedNodeData" use the property names of p.
func ReadBatch(r io.Reader, p Properties) (chart.Batch, error) {
	p = p.orDefault()
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var in batch
	if err := dec.Decode(&in); err != nil {
		return chart.Batch{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode batch")
	}

	var (
		out chart.Batch
		err error
	)
	if out.Modified, err = toRecords(in.Modified, p); err != nil {
		return chart.Batch{}, fmt.Errorf("modifiedNodeData: %w", err)
	}
	if out.Inserted, err = toKeys(in.Inserted); err != nil {
		return chart.Batch{}, fmt.Errorf("insertedNodeKeys: %w", err)
	}
	if out.Removed, err = toKeys(in.Removed); err != nil {
		return chart.Batch{}, fmt.Errorf("removedNodeKeys: %w", err)
	}
	return out, nil
}

func toKeys(values []any) ([]chart.Key, error) {
	if len(values) == 0 {
		return nil, nil
	}
	keys := make([]chart.Key, len(values))
	for i, v := range values {
		k, err := toKey(v)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if k.IsZero() {
			return nil, errors.New(errors.ErrCodeInvalidKey, "entry %d: empty key", i)
		}
		keys[i] = k
	}
	return keys, nil
}

// WriteBatch encodes b as indented JSON and writes it to w.
func WriteBatch(w io.Writer, b chart.Batch, p Properties) error {
	p = p.orDefault()
	out := batch{Modified: fromRecords(b.Modified, p)}
	for _, k := range b.Inserted {
		out.Inserted = append(out.Inserted, keyValue(k))
	}
	for _, k := range b.Removed {
		out.Removed = append(out.Removed, keyValue(k))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ImportBatch reads a JSON change batch from path.
func ImportBatch(path string, p Properties) (chart.Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return chart.Batch{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "batch %s", path)
		}
		return chart.Batch{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadBatch(f, p)
}
