package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/orgchart/pkg/chart"
)

// WriteJSON encodes records as an indented JSON node data array and writes
// it to w. The output can be re-imported with [ReadJSON].
func WriteJSON(w io.Writer, records []chart.Record, p Properties) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fromRecords(records, p.orDefault())); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteYAML encodes records as a YAML sequence and writes it to w.
func WriteYAML(w io.Writer, records []chart.Record, p Properties) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(fromRecords(records, p.orDefault())); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// Write encodes records in the given format.
func Write(w io.Writer, format Format, records []chart.Record, p Properties) error {
	if format == FormatYAML {
		return WriteYAML(w, records, p)
	}
	return WriteJSON(w, records, p)
}

// ExportFile writes records to path, choosing the encoder from the file
// extension.
func ExportFile(path string, records []chart.Record, p Properties) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(f, format, records, p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
