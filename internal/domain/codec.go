package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// The content store is schemaless about scalar types: numeric IDs arrive as
// numbers or strings depending on the collection, prices come back as
// strings, and file fields may be an ID, an expanded object, or an absolute
// URL. The types below absorb that looseness at decode time so the rest of
// the code sees plain Go values.

// ID is a content-store record identifier. Accepts a JSON string, number,
// or expanded relation object carrying an "id" field.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*id = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("domain.ID: %w", err)
		}
		*id = ID(s)
	case '{':
		var obj struct {
			ID json.Number `json:"id"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("domain.ID: %w", err)
		}
		*id = ID(obj.ID.String())
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("domain.ID: %w", err)
		}
		*id = ID(n.String())
	}

	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(id))
}

func (id ID) String() string { return string(id) }

// IsZero reports whether the ID is empty.
func (id ID) IsZero() bool { return id == "" }

// Money is a price value. Accepts a JSON number, numeric string, or null;
// anything unparseable decodes to zero rather than failing the record.
type Money float64

func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*m = 0
		return nil
	}

	s := strings.Trim(string(data), `"`)
	if s == "" {
		*m = 0
		return nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*m = 0
		return nil
	}

	*m = Money(f)
	return nil
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(m))
}

// Quantity is a stock count or other small integer. Accepts a JSON number,
// numeric string, or null; fractional values are truncated and garbage
// decodes to zero.
type Quantity int

func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*q = 0
		return nil
	}

	s := strings.Trim(string(data), `"`)
	if s == "" {
		*q = 0
		return nil
	}

	if n, err := strconv.Atoi(s); err == nil {
		*q = Quantity(n)
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		*q = Quantity(int(f))
		return nil
	}

	*q = 0
	return nil
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(q))
}

// FileRef is a reference to an uploaded asset: a bare file ID, an expanded
// file object, or a full external URL stored verbatim.
type FileRef string

func (f *FileRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}

	if data[0] == '{' {
		var obj struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("domain.FileRef: %w", err)
		}
		*f = FileRef(obj.ID)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("domain.FileRef: %w", err)
	}
	*f = FileRef(s)
	return nil
}

func (f FileRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(f))
}

// IsZero reports whether the reference is empty.
func (f FileRef) IsZero() bool { return f == "" }

// IsURL reports whether the reference is already an absolute URL.
func (f FileRef) IsURL() bool {
	return strings.HasPrefix(string(f), "http://") || strings.HasPrefix(string(f), "https://")
}

// timestampLayouts covers the formats the content store emits: RFC 3339
// with or without zone, and date-only.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Timestamp wraps time.Time with tolerant parsing of content-store
// timestamp strings.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		t.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("domain.Timestamp: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}

	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed
			return nil
		}
	}

	return fmt.Errorf("domain.Timestamp: unrecognized time %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}
