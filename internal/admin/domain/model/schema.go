package model

import (
	"bytes"
	"encoding/json"

	"go.mongodb.org/mongo-driver/bson"
)

// MaxExamples is the number of sample values kept per field.
const MaxExamples = 3

// FieldSchema is the inferred profile of one top-level field.
type FieldSchema struct {
	Field    string        `json:"-"`
	Types    []TypeTag     `json:"types"`
	Nullable bool          `json:"nullable"`
	Examples []interface{} `json:"examples"`
}

// ExampleValue converts a sampled value for the wire. Embedded documents
// become plain maps, recursively through arrays; scalars are kept as is.
func ExampleValue(v interface{}) interface{} {
	switch t := v.(type) {
	case bson.D:
		m := make(bson.M, len(t))
		for _, e := range t {
			m[e.Key] = ExampleValue(e.Value)
		}
		return m
	case bson.M:
		m := make(bson.M, len(t))
		for k, val := range t {
			m[k] = ExampleValue(val)
		}
		return m
	case bson.A:
		out := make(bson.A, len(t))
		for i, val := range t {
			out[i] = ExampleValue(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = ExampleValue(val)
		}
		return out
	default:
		return v
	}
}

// HasType reports whether t was observed for this field.
func (f *FieldSchema) HasType(t TypeTag) bool {
	for _, seen := range f.Types {
		if seen == t {
			return true
		}
	}
	return false
}

// Schema is an ordered set of field profiles, in first-seen order.
type Schema struct {
	fields []*FieldSchema
	index  map[string]int
}

// NewSchema returns an empty schema.
func NewSchema() *Schema {
	return &Schema{index: map[string]int{}}
}

// Len returns the number of fields.
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fields)
}

// Field returns the profile for name, or nil.
func (s *Schema) Field(name string) *FieldSchema {
	if s == nil {
		return nil
	}
	if i, ok := s.index[name]; ok {
		return s.fields[i]
	}
	return nil
}

// Fields returns profiles in first-seen order.
func (s *Schema) Fields() []*FieldSchema {
	if s == nil {
		return nil
	}
	return s.fields
}

// Names returns field names in first-seen order.
func (s *Schema) Names() []string {
	names := make([]string, 0, s.Len())
	for _, f := range s.Fields() {
		names = append(names, f.Field)
	}
	return names
}

// Upsert returns the profile for name, creating it at the end if needed.
func (s *Schema) Upsert(name string) *FieldSchema {
	if f := s.Field(name); f != nil {
		return f
	}
	if s.index == nil {
		s.index = map[string]int{}
	}
	f := &FieldSchema{Field: name, Types: []TypeTag{}, Examples: []interface{}{}}
	s.index[name] = len(s.fields)
	s.fields = append(s.fields, f)
	return f
}

// MarshalJSON renders the schema as an object keyed by field name, keeping
// first-seen order.
func (s *Schema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range s.Fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Field)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
