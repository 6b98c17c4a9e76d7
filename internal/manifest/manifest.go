// Package manifest scans an image tree and writes the images.json file that
// pairs each RGB image with an optional mask, grouped by category.
package manifest

import (
	"bytes"
	"encoding/json"
)

// Entry pairs one RGB image with its mask, if any.
type Entry struct {
	Name string `json:"name"`
	RGB  string `json:"rgb"`
	Mask string `json:"mask,omitempty"`
}

// Manifest holds entries per category and keeps category order on output.
type Manifest struct {
	Categories []string
	Entries    map[string][]Entry
}

// Total returns the number of entries across categories.
func (m *Manifest) Total() int {
	n := 0
	for _, entries := range m.Entries {
		n += len(entries)
	}
	return n
}

// MarshalJSON writes one object keyed by category in configured order.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, category := range m.Categories {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(category)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		entries := m.Entries[category]
		if entries == nil {
			entries = []Entry{}
		}
		value, err := json.Marshal(entries)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
