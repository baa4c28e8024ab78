// Package iceberg implements the Iceberg schema, partition-spec, sort-order
// and type system: field-ID-stable schemas, evolution rules, partition
// transforms and their canonical encodings.
package iceberg

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// TypeKind identifies the kind of an IcebergType.
type TypeKind string

const (
	KindBoolean TypeKind = "boolean"
	KindInt     TypeKind = "int"
	KindLong    TypeKind = "long"
	KindFloat   TypeKind = "float"
	KindDouble  TypeKind = "double"
	KindString  TypeKind = "string"
	KindBinary  TypeKind = "binary"
	KindDate    TypeKind = "date"
	KindTime    TypeKind = "time"

	KindTimestamp     TypeKind = "timestamp"
	KindTimestamptz   TypeKind = "timestamptz"
	KindTimestampNs   TypeKind = "timestamp_ns"
	KindTimestamptzNs TypeKind = "timestamptz_ns"
	KindUUID          TypeKind = "uuid"
	KindUnknown       TypeKind = "unknown"
	KindVariant       TypeKind = "variant"
	KindGeometry      TypeKind = "geometry"
	KindGeography     TypeKind = "geography"

	KindDecimal TypeKind = "decimal"
	KindFixed   TypeKind = "fixed"

	KindList   TypeKind = "list"
	KindMap    TypeKind = "map"
	KindStruct TypeKind = "struct"
)

// Type is the base interface for every Iceberg type: primitive,
// parameterized or nested.
type Type interface {
	Kind() TypeKind
	String() string
	Equals(other Type) bool
	Hash() uint64
	IsPrimitive() bool
	IsNested() bool
	IsParameterized() bool
}

// Visitor traverses a Type tree.
type Visitor interface {
	VisitPrimitive(p *Primitive) error
	VisitDecimal(d *Decimal) error
	VisitFixed(f *Fixed) error
	VisitList(l *List) error
	VisitMap(m *Map) error
	VisitStruct(s *Struct) error
}

type baseType struct {
	kind TypeKind
}

func (b *baseType) Kind() TypeKind { return b.kind }

func (b *baseType) IsPrimitive() bool {
	switch b.kind {
	case KindBoolean, KindInt, KindLong, KindFloat, KindDouble, KindString,
		KindBinary, KindDate, KindTime, KindTimestamp, KindTimestamptz,
		KindTimestampNs, KindTimestamptzNs, KindUUID, KindUnknown, KindVariant,
		KindGeometry, KindGeography:
		return true
	default:
		return false
	}
}

func (b *baseType) IsNested() bool {
	switch b.kind {
	case KindList, KindMap, KindStruct:
		return true
	default:
		return false
	}
}

func (b *baseType) IsParameterized() bool {
	switch b.kind {
	case KindDecimal, KindFixed:
		return true
	default:
		return false
	}
}

func hashString(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

// Primitive is a non-parameterized, non-nested type.
type Primitive struct {
	baseType
}

func NewPrimitive(kind TypeKind) *Primitive { return &Primitive{baseType{kind: kind}} }

func (p *Primitive) String() string { return string(p.kind) }

func (p *Primitive) Equals(other Type) bool {
	o, ok := other.(*Primitive)
	return ok && o.kind == p.kind
}

func (p *Primitive) Hash() uint64 { return hashString(string(p.kind)) }

func (p *Primitive) Accept(v Visitor) error { return v.VisitPrimitive(p) }

var (
	Boolean     = NewPrimitive(KindBoolean)
	Int32       = NewPrimitive(KindInt)
	Int64       = NewPrimitive(KindLong)
	Float32     = NewPrimitive(KindFloat)
	Float64     = NewPrimitive(KindDouble)
	StringType  = NewPrimitive(KindString)
	Binary      = NewPrimitive(KindBinary)
	Date        = NewPrimitive(KindDate)
	Time        = NewPrimitive(KindTime)
	Timestamp   = NewPrimitive(KindTimestamp)
	Timestamptz = NewPrimitive(KindTimestamptz)
	TimestampNs = NewPrimitive(KindTimestampNs)
	TimestamptzNs = NewPrimitive(KindTimestamptzNs)
	UUID        = NewPrimitive(KindUUID)
	Unknown     = NewPrimitive(KindUnknown)
	Variant     = NewPrimitive(KindVariant)
	Geometry    = NewPrimitive(KindGeometry)
	Geography   = NewPrimitive(KindGeography)
)

// Decimal is a fixed-precision decimal(P,S) type.
type Decimal struct {
	baseType
	Precision int
	Scale     int
}

func NewDecimal(precision, scale int) *Decimal {
	return &Decimal{baseType: baseType{kind: KindDecimal}, Precision: precision, Scale: scale}
}

func (d *Decimal) String() string { return fmt.Sprintf("decimal(%d, %d)", d.Precision, d.Scale) }

func (d *Decimal) Equals(other Type) bool {
	o, ok := other.(*Decimal)
	return ok && o.Precision == d.Precision && o.Scale == d.Scale
}

func (d *Decimal) Hash() uint64 { return hashString(d.String()) }

func (d *Decimal) Accept(v Visitor) error { return v.VisitDecimal(d) }

// Fixed is a fixed-length byte array type.
type Fixed struct {
	baseType
	Length int
}

func NewFixed(length int) *Fixed {
	return &Fixed{baseType: baseType{kind: KindFixed}, Length: length}
}

func (f *Fixed) String() string { return fmt.Sprintf("fixed[%d]", f.Length) }

func (f *Fixed) Equals(other Type) bool {
	o, ok := other.(*Fixed)
	return ok && o.Length == f.Length
}

func (f *Fixed) Hash() uint64 { return hashString(f.String()) }

func (f *Fixed) Accept(v Visitor) error { return v.VisitFixed(f) }

// NestedField is a single field in a Struct, carrying its stable field ID.
type NestedField struct {
	ID       int
	Name     string
	Type     Type
	Required bool
	Doc      string
	// InitialDefault / WriteDefault let an added optional field carry a
	// default for old and new writers respectively. nil means no default.
	InitialDefault any
	WriteDefault   any
}

func (f *NestedField) String() string {
	req := "optional"
	if f.Required {
		req = "required"
	}
	return fmt.Sprintf("%d: %s: %s %s", f.ID, f.Name, req, f.Type.String())
}

func (f *NestedField) Equals(other *NestedField) bool {
	if f == nil || other == nil {
		return f == other
	}
	return f.ID == other.ID && f.Name == other.Name && f.Required == other.Required && f.Type.Equals(other.Type)
}

// Struct is an ordered list of named, field-ID-tagged fields.
type Struct struct {
	baseType
	Fields []*NestedField
}

func NewStruct(fields ...*NestedField) *Struct {
	return &Struct{baseType: baseType{kind: KindStruct}, Fields: fields}
}

func (s *Struct) String() string {
	parts := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		parts[i] = f.String()
	}
	return "struct<" + strings.Join(parts, ", ") + ">"
}

func (s *Struct) Equals(other Type) bool {
	o, ok := other.(*Struct)
	if !ok || len(o.Fields) != len(s.Fields) {
		return false
	}
	for i, f := range s.Fields {
		if !f.Equals(o.Fields[i]) {
			return false
		}
	}
	return true
}

func (s *Struct) Hash() uint64 {
	h := fnv.New64a()
	for _, f := range s.Fields {
		fmt.Fprintf(h, "%d:%s", f.ID, f.Type.String())
	}
	return h.Sum64()
}

func (s *Struct) Accept(v Visitor) error { return v.VisitStruct(s) }

// FieldByID looks up a field by its stable ID.
func (s *Struct) FieldByID(id int) (*NestedField, bool) {
	for _, f := range s.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return nil, false
}

// FieldByName looks up a top-level field by name.
func (s *Struct) FieldByName(name string) (*NestedField, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// List is a homogeneous list type with a single field-ID-tagged element.
type List struct {
	baseType
	ElementID       int
	Element         Type
	ElementRequired bool
}

func NewList(elementID int, element Type, required bool) *List {
	return &List{baseType: baseType{kind: KindList}, ElementID: elementID, Element: element, ElementRequired: required}
}

func (l *List) String() string { return fmt.Sprintf("list<%s>", l.Element.String()) }

func (l *List) Equals(other Type) bool {
	o, ok := other.(*List)
	return ok && o.ElementID == l.ElementID && o.ElementRequired == l.ElementRequired && o.Element.Equals(l.Element)
}

func (l *List) Hash() uint64 { return hashString(fmt.Sprintf("%d:%s", l.ElementID, l.Element.String())) }

func (l *List) Accept(v Visitor) error { return v.VisitList(l) }

// Map is a key/value type with separately field-ID-tagged key and value.
type Map struct {
	baseType
	KeyID         int
	Key           Type
	ValueID       int
	Value         Type
	ValueRequired bool
}

func NewMap(keyID int, key Type, valueID int, value Type, valueRequired bool) *Map {
	return &Map{baseType: baseType{kind: KindMap}, KeyID: keyID, Key: key, ValueID: valueID, Value: value, ValueRequired: valueRequired}
}

func (m *Map) String() string { return fmt.Sprintf("map<%s, %s>", m.Key.String(), m.Value.String()) }

func (m *Map) Equals(other Type) bool {
	o, ok := other.(*Map)
	return ok && o.KeyID == m.KeyID && o.ValueID == m.ValueID && o.ValueRequired == m.ValueRequired &&
		o.Key.Equals(m.Key) && o.Value.Equals(m.Value)
}

func (m *Map) Hash() uint64 {
	return hashString(fmt.Sprintf("%d:%s/%d:%s", m.KeyID, m.Key.String(), m.ValueID, m.Value.String()))
}

func (m *Map) Accept(v Visitor) error { return v.VisitMap(m) }

// ParsePrimitive resolves a primitive/parameterized type from its Iceberg
// string form (e.g. "int", "decimal(9, 2)", "fixed[16]"). It does not
// handle nested types, which are parsed structurally from JSON instead.
func ParsePrimitive(s string) (Type, error) {
	switch s {
	case string(KindBoolean):
		return Boolean, nil
	case string(KindInt):
		return Int32, nil
	case string(KindLong):
		return Int64, nil
	case string(KindFloat):
		return Float32, nil
	case string(KindDouble):
		return Float64, nil
	case string(KindString):
		return StringType, nil
	case string(KindBinary):
		return Binary, nil
	case string(KindDate):
		return Date, nil
	case string(KindTime):
		return Time, nil
	case string(KindTimestamp):
		return Timestamp, nil
	case string(KindTimestamptz):
		return Timestamptz, nil
	case string(KindTimestampNs):
		return TimestampNs, nil
	case string(KindTimestamptzNs):
		return TimestamptzNs, nil
	case string(KindUUID):
		return UUID, nil
	case string(KindUnknown):
		return Unknown, nil
	case string(KindVariant):
		return Variant, nil
	case string(KindGeometry):
		return Geometry, nil
	case string(KindGeography):
		return Geography, nil
	}
	if strings.HasPrefix(s, "decimal(") && strings.HasSuffix(s, ")") {
		var p, sc int
		if _, err := fmt.Sscanf(s, "decimal(%d, %d)", &p, &sc); err != nil {
			return nil, fmt.Errorf("invalid decimal type %q: %w", s, err)
		}
		return NewDecimal(p, sc), nil
	}
	if strings.HasPrefix(s, "fixed[") && strings.HasSuffix(s, "]") {
		var l int
		if _, err := fmt.Sscanf(s, "fixed[%d]", &l); err != nil {
			return nil, fmt.Errorf("invalid fixed type %q: %w", s, err)
		}
		return NewFixed(l), nil
	}
	return nil, fmt.Errorf("unrecognized primitive type %q", s)
}
