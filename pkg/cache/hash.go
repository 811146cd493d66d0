package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/orgchart/pkg/chart"
)

// hashKey joins prefix and the SHA-256 of parts encoded as a JSON array.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DatasetHash identifies a chart by its records rather than the file they
// were read from. The same chart saved as JSON or YAML, or with the members
// of a node reordered, hashes the same. Record order is significant because
// it fixes sibling order in the diagram.
func DatasetHash(records []chart.Record) string {
	type node struct {
		Key    chart.Key        `json:"k"`
		Parent chart.Key        `json:"p"`
		Attrs  chart.Attributes `json:"a,omitempty"`
	}
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, r := range records {
		// Keys and string maps always encode.
		_ = enc.Encode(node{Key: r.Key, Parent: r.Parent, Attrs: r.Attrs})
	}
	return hex.EncodeToString(h.Sum(nil))
}
