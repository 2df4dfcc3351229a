package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// DocumentTypeKey is the conventional field holding a document's display label.
const DocumentTypeKey = "document_type"

// NameKey is the field compared across documents by the name conflict check.
const NameKey = "name"

// Field is a single extracted key/value pair. A nil Value is a JSON null.
type Field struct {
	Key   string
	Value *string
}

// Document is an ordered mapping of field name to value as produced by the
// extractor. Keys are unique; order is the order the extractor emitted them.
type Document []Field

// Documents is the array of extracted documents a review works on.
type Documents []Document

func (d Document) IndexOf(key string) int {
	for i, f := range d {
		if f.Key == key {
			return i
		}
	}
	return -1
}

func (d Document) Has(key string) bool {
	return d.IndexOf(key) >= 0
}

// Value returns the value stored for key and whether the key is present.
func (d Document) Value(key string) (*string, bool) {
	i := d.IndexOf(key)
	if i < 0 {
		return nil, false
	}
	return d[i].Value, true
}

// StringValue returns the value for key, or "" when the key is absent or null.
func (d Document) StringValue(key string) string {
	v, _ := d.Value(key)
	if v == nil {
		return ""
	}
	return *v
}

func (d Document) DocumentType() string {
	return strings.TrimSpace(d.StringValue(DocumentTypeKey))
}

func (d Document) Keys() []string {
	keys := make([]string, len(d))
	for i, f := range d {
		keys[i] = f.Key
	}
	return keys
}

// Clone returns a deep copy; no value pointer is shared with d.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for i, f := range d {
		out[i] = Field{Key: f.Key, Value: cloneString(f.Value)}
	}
	return out
}

// Set returns a copy of d with key set to value. An existing key keeps its
// position; a new key is appended.
func (d Document) Set(key string, value *string) Document {
	out := d.Clone()
	if i := out.IndexOf(key); i >= 0 {
		out[i].Value = cloneString(value)
		return out
	}
	return append(out, Field{Key: key, Value: cloneString(value)})
}

// Without returns a copy of d with key removed.
func (d Document) Without(key string) Document {
	out := make(Document, 0, len(d))
	for _, f := range d {
		if f.Key == key {
			continue
		}
		out = append(out, Field{Key: f.Key, Value: cloneString(f.Value)})
	}
	return out
}

func (d Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if f.Value == nil {
			buf.WriteString("null")
			continue
		}
		value, err := json.Marshal(*f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a flat JSON object keeping key order. Strings and
// null map directly; any other value is kept as its compact JSON text.
func (d *Document) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	if tok == nil {
		*d = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("document must be a JSON object, got %v", tok)
	}

	out := make(Document, 0)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("read document key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("document key must be a string, got %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("read value for %q: %w", key, err)
		}

		value, err := rawFieldValue(raw)
		if err != nil {
			return fmt.Errorf("decode value for %q: %w", key, err)
		}

		if i := out.IndexOf(key); i >= 0 {
			out[i].Value = value
			continue
		}
		out = append(out, Field{Key: key, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("read document end: %w", err)
	}

	*d = out
	return nil
}

func rawFieldValue(raw json.RawMessage) (*string, error) {
	trimmed := bytes.TrimSpace(raw)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		return nil, nil
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, err
		}
		return &s, nil
	case trimmed[0] == '{' || trimmed[0] == '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return nil, err
		}
		s := buf.String()
		return &s, nil
	default:
		s := string(trimmed)
		return &s, nil
	}
}

func (ds Documents) Clone() Documents {
	if ds == nil {
		return nil
	}
	out := make(Documents, len(ds))
	for i, d := range ds {
		out[i] = d.Clone()
	}
	return out
}

// FirstDocumentType returns the first non-blank document_type in order.
func (ds Documents) FirstDocumentType() string {
	for _, d := range ds {
		if t := d.DocumentType(); t != "" {
			return t
		}
	}
	return ""
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
