package iceberg

import (
	"encoding/json"
	"fmt"
)

// MarshalType renders a Type in the exact wire form the Iceberg table-
// metadata JSON spec uses: primitives and parameterized types as bare
// strings, structs/lists/maps as tagged objects.
func MarshalType(t Type) ([]byte, error) {
	switch v := t.(type) {
	case *Primitive:
		return json.Marshal(v.String())
	case *Decimal:
		return json.Marshal(v.String())
	case *Fixed:
		return json.Marshal(v.String())
	case *Struct:
		return marshalStruct(v)
	case *List:
		return marshalList(v)
	case *Map:
		return marshalMap(v)
	}
	return nil, fmt.Errorf("cannot marshal unknown type %T", t)
}

type jsonField struct {
	ID             int             `json:"id"`
	Name           string          `json:"name"`
	Required       bool            `json:"required"`
	Type           json.RawMessage `json:"type"`
	Doc            string          `json:"doc,omitempty"`
	InitialDefault json.RawMessage `json:"initial-default,omitempty"`
	WriteDefault   json.RawMessage `json:"write-default,omitempty"`
}

type jsonStruct struct {
	Type   string      `json:"type"`
	Fields []jsonField `json:"fields"`
}

type jsonList struct {
	Type            string          `json:"type"`
	ElementID       int             `json:"element-id"`
	Element         json.RawMessage `json:"element"`
	ElementRequired bool            `json:"element-required"`
}

type jsonMap struct {
	Type          string          `json:"type"`
	KeyID         int             `json:"key-id"`
	Key           json.RawMessage `json:"key"`
	ValueID       int             `json:"value-id"`
	Value         json.RawMessage `json:"value"`
	ValueRequired bool            `json:"value-required"`
}

func marshalField(f *NestedField) (jsonField, error) {
	typeJSON, err := MarshalType(f.Type)
	if err != nil {
		return jsonField{}, err
	}
	jf := jsonField{ID: f.ID, Name: f.Name, Required: f.Required, Type: typeJSON, Doc: f.Doc}
	if f.InitialDefault != nil {
		b, err := json.Marshal(f.InitialDefault)
		if err != nil {
			return jsonField{}, err
		}
		jf.InitialDefault = b
	}
	if f.WriteDefault != nil {
		b, err := json.Marshal(f.WriteDefault)
		if err != nil {
			return jsonField{}, err
		}
		jf.WriteDefault = b
	}
	return jf, nil
}

func marshalStruct(s *Struct) ([]byte, error) {
	fields := make([]jsonField, len(s.Fields))
	for i, f := range s.Fields {
		jf, err := marshalField(f)
		if err != nil {
			return nil, err
		}
		fields[i] = jf
	}
	return json.Marshal(jsonStruct{Type: "struct", Fields: fields})
}

func marshalList(l *List) ([]byte, error) {
	elem, err := MarshalType(l.Element)
	if err != nil {
		return nil, err
	}
	return json.Marshal(jsonList{Type: "list", ElementID: l.ElementID, Element: elem, ElementRequired: l.ElementRequired})
}

func marshalMap(m *Map) ([]byte, error) {
	key, err := MarshalType(m.Key)
	if err != nil {
		return nil, err
	}
	val, err := MarshalType(m.Value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(jsonMap{Type: "map", KeyID: m.KeyID, Key: key, ValueID: m.ValueID, Value: val, ValueRequired: m.ValueRequired})
}

// UnmarshalType parses a Type from its wire JSON form.
func UnmarshalType(data []byte) (Type, error) {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		return ParsePrimitive(asString)
	}

	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("unrecognized type JSON: %w", err)
	}

	switch probe.Type {
	case "struct":
		var js jsonStruct
		if err := json.Unmarshal(data, &js); err != nil {
			return nil, err
		}
		fields := make([]*NestedField, len(js.Fields))
		for i, jf := range js.Fields {
			f, err := unmarshalField(jf)
			if err != nil {
				return nil, err
			}
			fields[i] = f
		}
		return NewStruct(fields...), nil
	case "list":
		var jl jsonList
		if err := json.Unmarshal(data, &jl); err != nil {
			return nil, err
		}
		elem, err := UnmarshalType(jl.Element)
		if err != nil {
			return nil, err
		}
		return NewList(jl.ElementID, elem, jl.ElementRequired), nil
	case "map":
		var jm jsonMap
		if err := json.Unmarshal(data, &jm); err != nil {
			return nil, err
		}
		key, err := UnmarshalType(jm.Key)
		if err != nil {
			return nil, err
		}
		val, err := UnmarshalType(jm.Value)
		if err != nil {
			return nil, err
		}
		return NewMap(jm.KeyID, key, jm.ValueID, val, jm.ValueRequired), nil
	}
	return nil, fmt.Errorf("unrecognized type kind %q", probe.Type)
}

func unmarshalField(jf jsonField) (*NestedField, error) {
	t, err := UnmarshalType(jf.Type)
	if err != nil {
		return nil, err
	}
	f := &NestedField{ID: jf.ID, Name: jf.Name, Required: jf.Required, Type: t, Doc: jf.Doc}
	if len(jf.InitialDefault) > 0 {
		var v any
		if err := json.Unmarshal(jf.InitialDefault, &v); err != nil {
			return nil, err
		}
		f.InitialDefault = v
	}
	if len(jf.WriteDefault) > 0 {
		var v any
		if err := json.Unmarshal(jf.WriteDefault, &v); err != nil {
			return nil, err
		}
		f.WriteDefault = v
	}
	return f, nil
}

// jsonSchema is the wire shape of a Schema: a struct type plus a schema ID
// and identifier-field-ids.
type jsonSchema struct {
	Type               string      `json:"type"`
	SchemaID           int         `json:"schema-id"`
	Fields             []jsonField `json:"fields"`
	IdentifierFieldIDs []int       `json:"identifier-field-ids,omitempty"`
}

// MarshalJSON renders the schema in the Iceberg table-metadata wire form.
func (s *Schema) MarshalJSON() ([]byte, error) {
	fields := make([]jsonField, len(s.Struct.Fields))
	for i, f := range s.Struct.Fields {
		jf, err := marshalField(f)
		if err != nil {
			return nil, err
		}
		fields[i] = jf
	}
	ids := make([]int, 0, len(s.IdentifierFields))
	for id := range s.IdentifierFields {
		ids = append(ids, id)
	}
	return json.Marshal(jsonSchema{Type: "struct", SchemaID: s.ID, Fields: fields, IdentifierFieldIDs: ids})
}

// UnmarshalJSON parses a schema from its wire JSON form.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var js jsonSchema
	if err := json.Unmarshal(data, &js); err != nil {
		return err
	}
	fields := make([]*NestedField, len(js.Fields))
	for i, jf := range js.Fields {
		f, err := unmarshalField(jf)
		if err != nil {
			return err
		}
		fields[i] = f
	}
	s.ID = js.SchemaID
	s.Struct = NewStruct(fields...)
	s.IdentifierFields = map[int]struct{}{}
	for _, id := range js.IdentifierFieldIDs {
		s.IdentifierFields[id] = struct{}{}
	}
	return nil
}
