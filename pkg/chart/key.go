package chart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Key identifies a record. A key is either numeric or a string; the zero value
// is the absent key.
type Key struct {
	text    string
	numeric bool
}

// IntKey returns a numeric key.
func IntKey(n int64) Key { return Key{text: strconv.FormatInt(n, 10), numeric: true} }

// NumberKey returns a numeric key for f. Integral values print without a
// fraction, so NumberKey(3) == IntKey(3).
func NumberKey(f float64) Key {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return IntKey(int64(f))
	}
	return Key{text: strconv.FormatFloat(f, 'f', -1, 64), numeric: true}
}

// StringKey returns a string key. StringKey("") is the zero Key.
func StringKey(s string) Key { return Key{text: s} }

// ParseKey interprets s the way a command line user would type it: anything
// that parses as a number becomes a numeric key, everything else a string key.
func ParseKey(s string) Key {
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return NumberKey(f)
	}
	return StringKey(s)
}

// IsZero reports whether k is the absent key.
func (k Key) IsZero() bool { return k.text == "" }

// IsNumeric reports whether k is a numeric key.
func (k Key) IsNumeric() bool { return k.numeric }

// String returns the textual form of the key, without quotes.
func (k Key) String() string { return k.text }

// Int returns the key as an integer, if it is a numeric key without a fraction.
func (k Key) Int() (int64, bool) {
	if !k.numeric {
		return 0, false
	}
	n, err := strconv.ParseInt(k.text, 10, 64)
	return n, err == nil
}

// GoString renders numeric keys bare and string keys quoted, which keeps test
// failure output unambiguous.
func (k Key) GoString() string {
	if k.numeric {
		return k.text
	}
	return strconv.Quote(k.text)
}

// MarshalJSON encodes numeric keys as JSON numbers and string keys as strings.
// The zero key encodes as null.
func (k Key) MarshalJSON() ([]byte, error) {
	switch {
	case k.IsZero():
		return []byte("null"), nil
	case k.numeric:
		return []byte(k.text), nil
	default:
		return json.Marshal(k.text)
	}
}

// UnmarshalJSON accepts a JSON number, a JSON string, or null.
func (k *Key) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*k = Key{}
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*k = StringKey(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("key must be a number or string: %s", data)
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("key %s: %w", n, err)
	}
	*k = NumberKey(f)
	return nil
}
