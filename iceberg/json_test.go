package iceberg

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSchemaJSONRoundTrip(t *testing.T) {
	schema := sampleSchema()
	data, err := json.Marshal(schema)
	require.NoError(t, err)
	require.Contains(t, string(data), `"type":"struct"`)

	var got Schema
	require.NoError(t, json.Unmarshal(data, &got))
	require.True(t, schema.Equals(&got))
	require.Equal(t, schema.ID, got.ID)
}

func TestSchemaJSONRoundTripWithDecimalAndList(t *testing.T) {
	schema := NewSchema(1,
		&NestedField{ID: 1, Name: "amount", Type: NewDecimal(10, 2), Required: true},
		&NestedField{ID: 2, Name: "tags", Type: NewList(3, StringType, false), Required: false},
	)
	data, err := json.Marshal(schema)
	require.NoError(t, err)

	var got Schema
	require.NoError(t, json.Unmarshal(data, &got))
	require.True(t, schema.Equals(&got))
}

func TestPartitionSpecJSONRoundTrip(t *testing.T) {
	schema := sampleSchema()
	bucket, _ := ParseTransform("bucket[16]")
	spec, _, err := NewPartitionSpecBuilder(schema, 0, FirstPartitionFieldID-1).
		AddField("id", bucket, "id_bucket").
		Build()
	require.NoError(t, err)

	data, err := json.Marshal(spec)
	require.NoError(t, err)

	var got PartitionSpec
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, spec.Fields[0].Transform, got.Fields[0].Transform)
}

func TestSortOrderJSONRoundTrip(t *testing.T) {
	schema := sampleSchema()
	identity, _ := ParseTransform("identity")
	order, err := NewSortOrder(schema, 1, SortField{SourceID: 1, Transform: identity, Direction: SortAsc, NullOrder: NullsFirst})
	require.NoError(t, err)

	data, err := json.Marshal(order)
	require.NoError(t, err)

	var got SortOrder
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, order.Fields[0].Direction, got.Fields[0].Direction)
}
