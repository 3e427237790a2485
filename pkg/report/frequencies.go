package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/matzehuels/wordbubbles/pkg/bubble"
)

// Entry is one label and its count.
type Entry struct {
	Label string
	Count float64
}

// Frequencies is a label→count table that remembers the order in which the
// labels appeared in the JSON object.
type Frequencies []Entry

// Items converts the table into bubble items, preserving order.
func (f Frequencies) Items() []bubble.Item {
	items := make([]bubble.Item, len(f))
	for i, e := range f {
		items[i] = bubble.Item{Label: e.Label, Weight: e.Count}
	}
	return items
}

// Map returns the table as a plain map.
func (f Frequencies) Map() map[string]float64 {
	m := make(map[string]float64, len(f))
	for _, e := range f {
		if _, ok := m[e.Label]; !ok {
			m[e.Label] = e.Count
		}
	}
	return m
}

// UnmarshalJSON decodes a JSON object of numbers, keeping key order.
// A JSON null decodes to an empty table.
func (f *Frequencies) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*f = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("frequencies: expected object, got %v", tok)
	}

	out := Frequencies{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)

		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		num, ok := valTok.(json.Number)
		if !ok {
			return fmt.Errorf("frequencies: value for %q is not a number", key)
		}
		v, err := strconv.ParseFloat(num.String(), 64)
		if err != nil {
			return fmt.Errorf("frequencies: value for %q: %w", key, err)
		}
		out = append(out, Entry{Label: key, Count: v})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*f = out
	return nil
}

// MarshalJSON encodes the table as a JSON object in table order.
func (f Frequencies) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Label)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatFloat(e.Count, 'f', -1, 64))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
