package iceberg

import (
	"fmt"
	"strings"

	"github.com/gear6io/icebergcore/pkg/errors"
)

// Schema is an Iceberg schema: a struct of fields plus a schema ID and the
// set of field IDs that form the identifier (primary key-like) columns.
type Schema struct {
	ID               int
	Struct           *Struct
	IdentifierFields map[int]struct{}
}

// NewSchema builds a Schema from fields, assigning the given schema ID.
func NewSchema(id int, fields ...*NestedField) *Schema {
	return &Schema{ID: id, Struct: NewStruct(fields...), IdentifierFields: map[int]struct{}{}}
}

// Fields returns the top-level fields in declaration order.
func (s *Schema) Fields() []*NestedField { return s.Struct.Fields }

// FieldByID looks up a top-level field by its stable ID.
func (s *Schema) FieldByID(id int) (*NestedField, bool) { return s.Struct.FieldByID(id) }

// FieldByName resolves a dot-separated path ("address.city") to the
// leaf field, descending through nested structs.
func (s *Schema) FieldByName(path string) (*NestedField, bool) {
	parts := strings.Split(path, ".")
	st := s.Struct
	var field *NestedField
	for i, part := range parts {
		f, ok := st.FieldByName(part)
		if !ok {
			return nil, false
		}
		field = f
		if i == len(parts)-1 {
			return field, true
		}
		nested, ok := f.Type.(*Struct)
		if !ok {
			return nil, false
		}
		st = nested
	}
	return field, field != nil
}

// HighestFieldID returns the maximum field ID reachable in this schema,
// used to seed a FieldIDManager when evolving a schema whose
// last-assigned counter was lost.
func (s *Schema) HighestFieldID() int {
	max := 0
	var walk func(Type)
	walkField := func(f *NestedField) {
		if f.ID > max {
			max = f.ID
		}
		walk(f.Type)
	}
	walk = func(t Type) {
		switch v := t.(type) {
		case *Struct:
			for _, f := range v.Fields {
				walkField(f)
			}
		case *List:
			if v.ElementID > max {
				max = v.ElementID
			}
			walk(v.Element)
		case *Map:
			if v.KeyID > max {
				max = v.KeyID
			}
			if v.ValueID > max {
				max = v.ValueID
			}
			walk(v.Key)
			walk(v.Value)
		}
	}
	for _, f := range s.Struct.Fields {
		walkField(f)
	}
	return max
}

// Equals compares schemas structurally, ignoring schema ID.
func (s *Schema) Equals(other *Schema) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.Struct.Equals(other.Struct)
}

// Validate checks the structural invariants a schema must satisfy: field
// IDs are unique across the whole tree, names are unique within each
// struct level, and decimal/fixed parameters are sane.
func (s *Schema) Validate() error {
	seen := map[int]string{}
	var walk func(st *Struct, path string) error
	walk = func(st *Struct, path string) error {
		names := map[string]struct{}{}
		for _, f := range st.Fields {
			if _, dup := names[f.Name]; dup {
				return errors.New(ErrDuplicateFieldName,
					fmt.Sprintf("duplicate field name %q at %s", f.Name, path), nil).
					AddContext("field", f.Name)
			}
			names[f.Name] = struct{}{}

			if prev, dup := seen[f.ID]; dup {
				return errors.New(ErrInvalidFieldID,
					fmt.Sprintf("field ID %d reused by %q and %q", f.ID, prev, f.Name), nil)
			}
			seen[f.ID] = f.Name

			if err := validateTypeParams(f.Type); err != nil {
				return err
			}
			if nested, ok := f.Type.(*Struct); ok {
				if err := walk(nested, path+"."+f.Name); err != nil {
					return err
				}
			}
			if lst, ok := f.Type.(*List); ok {
				if _, dup := seen[lst.ElementID]; dup {
					return errors.New(ErrInvalidFieldID, fmt.Sprintf("field ID %d reused by list element", lst.ElementID), nil)
				}
				seen[lst.ElementID] = f.Name + ".element"
			}
			if m, ok := f.Type.(*Map); ok {
				if _, dup := seen[m.KeyID]; dup {
					return errors.New(ErrInvalidFieldID, fmt.Sprintf("field ID %d reused by map key", m.KeyID), nil)
				}
				seen[m.KeyID] = f.Name + ".key"
				if _, dup := seen[m.ValueID]; dup {
					return errors.New(ErrInvalidFieldID, fmt.Sprintf("field ID %d reused by map value", m.ValueID), nil)
				}
				seen[m.ValueID] = f.Name + ".value"
			}
		}
		return nil
	}
	return walk(s.Struct, "$")
}

func validateTypeParams(t Type) error {
	switch v := t.(type) {
	case *Decimal:
		if v.Precision < 1 || v.Precision > 38 {
			return errors.New(ErrInvalidDecimalParam, fmt.Sprintf("decimal precision %d out of range [1,38]", v.Precision), nil)
		}
		if v.Scale < 0 || v.Scale > v.Precision {
			return errors.New(ErrInvalidDecimalParam, fmt.Sprintf("decimal scale %d out of range [0,%d]", v.Scale, v.Precision), nil)
		}
	case *Fixed:
		if v.Length < 1 {
			return errors.New(ErrInvalidFixedLength, fmt.Sprintf("fixed length %d must be positive", v.Length), nil)
		}
	}
	return nil
}
