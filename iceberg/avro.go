package iceberg

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	avro "github.com/hamba/avro/v2"
)

// Avro schema property names the Iceberg spec reserves for carrying field
// IDs and logical-type hints through an otherwise-plain Avro schema.
const (
	avroAdjustToUTCProp = "adjust-to-utc"
	avroElementIDProp   = "element-id"
	avroFieldIDProp     = "field-id"
	avroFieldNameProp   = "iceberg-field-name"
	avroKeyIDProp       = "key-id"
	avroValueIDProp     = "value-id"
)

// avroConverter turns a Schema into the avro.RecordSchema manifest entries
// and manifest-list files are encoded with, tagging every field with its
// Iceberg field ID the way the manifest reader needs to recover it.
type avroConverter struct {
	schemaName string
	idStack    []int
}

// ToAvroSchema converts an Iceberg schema into its Avro record-schema
// representation, with every field (including nested struct/list/map
// members) tagged with its Iceberg field ID via schema properties.
func ToAvroSchema(recordName string, schema *Schema) (avro.Schema, error) {
	c := &avroConverter{schemaName: recordName}
	return c.convertStruct(schema.Struct, 0)
}

func (c *avroConverter) structName(depth int) string {
	if depth == 0 || len(c.idStack) == 0 {
		return c.schemaName
	}
	return fmt.Sprintf("r%d", c.idStack[len(c.idStack)-1])
}

func (c *avroConverter) convertStruct(st *Struct, depth int) (avro.Schema, error) {
	fields := make([]*avro.Field, 0, len(st.Fields))
	for _, f := range st.Fields {
		c.idStack = append(c.idStack, f.ID)
		fieldSchema, err := c.convertType(f.Type, depth+1)
		c.idStack = c.idStack[:len(c.idStack)-1]
		if err != nil {
			return nil, err
		}
		if !f.Required {
			fieldSchema, err = makeOptional(fieldSchema)
			if err != nil {
				return nil, err
			}
		}

		name := f.Name
		props := map[string]any{avroFieldIDProp: strconv.Itoa(f.ID)}
		sanitized := sanitizeAvroName(name)
		if sanitized != name {
			props[avroFieldNameProp] = name
			name = sanitized
		}

		opts := []avro.SchemaOption{avro.WithProps(props)}
		if f.Doc != "" {
			opts = append(opts, avro.WithDoc(f.Doc))
		}
		if f.WriteDefault != nil {
			opts = append(opts, avro.WithDefault(f.WriteDefault))
		} else if !f.Required {
			opts = append(opts, avro.WithDefault(nil))
		}

		field, err := avro.NewField(name, fieldSchema, opts...)
		if err != nil {
			return nil, fmt.Errorf("avro field %q: %w", name, err)
		}
		fields = append(fields, field)
	}

	name := c.structName(depth)
	return avro.NewRecordSchema(name, "", fields)
}

func (c *avroConverter) convertType(t Type, depth int) (avro.Schema, error) {
	switch v := t.(type) {
	case *Struct:
		return c.convertStruct(v, depth)
	case *List:
		c.idStack = append(c.idStack, v.ElementID)
		elem, err := c.convertType(v.Element, depth+1)
		c.idStack = c.idStack[:len(c.idStack)-1]
		if err != nil {
			return nil, err
		}
		if !v.ElementRequired {
			if elem, err = makeOptional(elem); err != nil {
				return nil, err
			}
		}
		return avro.NewArraySchema(elem, avro.WithProps(map[string]any{avroElementIDProp: v.ElementID})), nil
	case *Map:
		keySchema, err := c.convertType(v.Key, depth+1)
		if err != nil {
			return nil, err
		}
		valSchema, err := c.convertType(v.Value, depth+1)
		if err != nil {
			return nil, err
		}
		if !v.ValueRequired {
			if valSchema, err = makeOptional(valSchema); err != nil {
				return nil, err
			}
		}
		if keySchema.Type() == avro.String {
			return avro.NewMapSchema(valSchema, avro.WithProps(map[string]any{
				avroKeyIDProp:   v.KeyID,
				avroValueIDProp: v.ValueID,
			})), nil
		}
		return newKeyValueArray(v.KeyID, v.ValueID, keySchema, valSchema)
	case *Decimal:
		return avro.NewPrimitiveSchema(avro.Bytes, avro.NewDecimalLogicalSchema(v.Precision, v.Scale)), nil
	case *Fixed:
		return avro.NewFixedSchema(fmt.Sprintf("fixed_%d", v.Length), "", v.Length, nil)
	case *Primitive:
		return convertPrimitive(v)
	}
	return nil, fmt.Errorf("unsupported type %s", t.String())
}

func convertPrimitive(p *Primitive) (avro.Schema, error) {
	switch p.Kind() {
	case KindBoolean:
		return avro.NewPrimitiveSchema(avro.Boolean, nil), nil
	case KindInt:
		return avro.NewPrimitiveSchema(avro.Int, nil), nil
	case KindLong:
		return avro.NewPrimitiveSchema(avro.Long, nil), nil
	case KindFloat:
		return avro.NewPrimitiveSchema(avro.Float, nil), nil
	case KindDouble:
		return avro.NewPrimitiveSchema(avro.Double, nil), nil
	case KindString:
		return avro.NewPrimitiveSchema(avro.String, nil), nil
	case KindBinary, KindVariant, KindGeometry, KindGeography, KindUnknown:
		return avro.NewPrimitiveSchema(avro.Bytes, nil), nil
	case KindUUID:
		return avro.NewFixedSchema("uuid_fixed", "", 16, avro.NewPrimitiveLogicalSchema(avro.UUID))
	case KindDate:
		return avro.NewPrimitiveSchema(avro.Int, avro.NewPrimitiveLogicalSchema(avro.Date)), nil
	case KindTime:
		return avro.NewPrimitiveSchema(avro.Long, avro.NewPrimitiveLogicalSchema(avro.TimeMicros)), nil
	case KindTimestamp, KindTimestampNs:
		opt := avro.WithProps(map[string]any{avroAdjustToUTCProp: false})
		return avro.NewPrimitiveSchema(avro.Long, avro.NewPrimitiveLogicalSchema(avro.TimestampMicros), opt), nil
	case KindTimestamptz, KindTimestamptzNs:
		opt := avro.WithProps(map[string]any{avroAdjustToUTCProp: true})
		return avro.NewPrimitiveSchema(avro.Long, avro.NewPrimitiveLogicalSchema(avro.TimestampMicros), opt), nil
	}
	return nil, fmt.Errorf("unsupported primitive kind %q", p.Kind())
}

func makeOptional(s avro.Schema) (avro.Schema, error) {
	return avro.NewUnionSchema([]avro.Schema{&avro.NullSchema{}, s})
}

func newKeyValueArray(keyID, valueID int, keySchema, valueSchema avro.Schema) (avro.Schema, error) {
	kv := "k" + strconv.Itoa(keyID) + "_v" + strconv.Itoa(valueID)
	keyField, err := avro.NewField("key", keySchema, avro.WithProps(map[string]any{avroFieldIDProp: keyID}))
	if err != nil {
		return nil, fmt.Errorf("map key field: %w", err)
	}
	valField, err := avro.NewField("value", valueSchema, avro.WithProps(map[string]any{avroFieldIDProp: valueID}))
	if err != nil {
		return nil, fmt.Errorf("map value field: %w", err)
	}
	rec, err := avro.NewRecordSchema(kv, "", []*avro.Field{keyField, valField})
	if err != nil {
		return nil, fmt.Errorf("map key-value record: %w", err)
	}
	return avro.NewArraySchema(rec), nil
}

// sanitizeAvroName rewrites an Iceberg column name into a valid Avro name
// ([A-Za-z_][A-Za-z0-9_]*), preserving the original in a schema property so
// it can be recovered exactly.
func sanitizeAvroName(name string) string {
	if name == "" {
		return name
	}
	runes := []rune(name)
	var sb strings.Builder
	first := runes[0]
	if unicode.IsLetter(first) || first == '_' {
		sb.WriteRune(first)
	} else {
		sb.WriteString(sanitizeRune(first))
	}
	for _, r := range runes[1:] {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			sb.WriteRune(r)
		} else {
			sb.WriteString(sanitizeRune(r))
		}
	}
	return sb.String()
}

func sanitizeRune(r rune) string {
	if unicode.IsDigit(r) {
		return "_" + string(r)
	}
	return "_x" + strconv.QuoteRuneToASCII(r)
}
