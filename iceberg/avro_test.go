package iceberg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToAvroSchemaPrimitives(t *testing.T) {
	schema := NewSchema(0,
		&NestedField{ID: 1, Name: "id", Type: Int64, Required: true},
		&NestedField{ID: 2, Name: "name", Type: StringType, Required: false},
	)
	avroSchema, err := ToAvroSchema("test_table", schema)
	require.NoError(t, err)
	require.Contains(t, avroSchema.String(), "\"name\":\"test_table\"")
}

func TestToAvroSchemaNested(t *testing.T) {
	schema := sampleSchema()
	_, err := ToAvroSchema("nested_table", schema)
	require.NoError(t, err)
}

func TestToAvroSchemaMap(t *testing.T) {
	schema := NewSchema(0,
		&NestedField{ID: 1, Name: "tags", Type: NewMap(2, StringType, 3, Int64, true), Required: false},
	)
	_, err := ToAvroSchema("map_table", schema)
	require.NoError(t, err)
}
