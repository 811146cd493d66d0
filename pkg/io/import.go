package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/orgchart/pkg/chart"
	"github.com/matzehuels/orgchart/pkg/errors"
)

// Format identifies a dataset encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DetectFormat derives the format from the file extension of path.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeUnsupported, "cannot tell dataset format of %s (use .json, .yaml or .yml)", path)
}

// ReadJSON decodes a JSON dataset from r.
//
// The input is either a node data array or a saved model object with a
// "nodeDataArray" member. Each node must carry the key property; every other
// scalar member except the parent property becomes an attribute.
//
// ReadJSON returns an error if the JSON is malformed, a key is missing or not
// a number or string, an attribute is not a scalar, two nodes share a key, or
// the parent references form a cycle. Dangling parent references are allowed.
// ReadJSON does not close r.
func ReadJSON(r io.Reader, p Properties) ([]chart.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	p = p.orDefault()

	var nodes []map[string]any
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		var m model
		if err := decodeJSON(data, &m); err != nil {
			return nil, err
		}
		nodes, p = m.Nodes, m.properties(p)
	} else if err := decodeJSON(data, &nodes); err != nil {
		return nil, err
	}

	records, err := toRecords(nodes, p)
	if err != nil {
		return nil, err
	}
	return validate(records)
}

func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode JSON")
	}
	return nil
}

// ReadYAML decodes a YAML dataset from r. It accepts the same structures as
// [ReadJSON] and applies the same checks. ReadYAML does not close r.
func ReadYAML(r io.Reader, p Properties) ([]chart.Record, error) {
	p = p.orDefault()

	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode YAML")
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}

	var nodes []map[string]any
	switch root.Kind {
	case yaml.MappingNode:
		var m model
		if err := root.Decode(&m); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode YAML model")
		}
		nodes, p = m.Nodes, m.properties(p)
	case yaml.SequenceNode:
		if err := root.Decode(&nodes); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode YAML nodes")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "YAML dataset must be a sequence or a mapping (line %d)", root.Line)
	}

	records, err := toRecords(nodes, p)
	if err != nil {
		return nil, err
	}
	return validate(records)
}

// ImportFile reads the dataset at path, choosing the decoder from the file
// extension. The error wraps the underlying cause with the file path.
func ImportFile(path string, p Properties) ([]chart.Record, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "dataset %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var records []chart.Record
	switch format {
	case FormatYAML:
		records, err = ReadYAML(f, p)
	default:
		records, err = ReadJSON(f, p)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}
