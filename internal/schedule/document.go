package schedule

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// New returns an empty document with the current format version.
func New(name string) *Document {
	if name == "" {
		name = "Schedule"
	}
	return &Document{Version: Version, ScheduleName: name, Items: []Item{}}
}

// Clone returns a deep copy. The working schedule is always a clone of the
// authoritative one, so edits never alias server state.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	data, err := json.Marshal(d)
	if err != nil {
		// A Document is plain data; marshalling it cannot fail in practice.
		out := *d
		return &out
	}
	var out Document
	if err := json.Unmarshal(data, &out); err != nil {
		cp := *d
		return &cp
	}
	if out.Items == nil {
		out.Items = []Item{}
	}
	return &out
}

// Equal reports whether two documents are equal by value. Comparison is by
// canonical JSON so it matches exactly what would go over the wire.
func Equal(a, b *Document) bool {
	if a == nil || b == nil {
		return a == b
	}
	aj, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bj, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(aj, bj)
}

// Parse decodes a Schedule 1.0 JSON document. A document whose "schedule"
// member is missing or not a list is rejected; this is the one place where
// malformed input surfaces as an error rather than a default, because the
// user explicitly asked to load this data.
func Parse(data []byte) (*Document, error) {
	var probe struct {
		Schedule json.RawMessage `json:"schedule"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("invalid schedule JSON: %w", err)
	}
	trimmed := bytes.TrimSpace(probe.Schedule)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("invalid schedule format: missing \"schedule\" array")
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid schedule JSON: %w", err)
	}
	if doc.Items == nil {
		doc.Items = []Item{}
	}
	return &doc, nil
}

// LoadFile reads and parses a schedule file from disk.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule file %q: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}
	return doc, nil
}

// SaveFile writes the document to disk, pretty-printed for hand editing.
func (d *Document) SaveFile(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode schedule: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write schedule file %q: %w", path, err)
	}
	return nil
}
