package iceberg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsTypePromotable(t *testing.T) {
	require.True(t, IsTypePromotable(Int32, Int64))
	require.True(t, IsTypePromotable(Float32, Float64))
	require.True(t, IsTypePromotable(NewDecimal(9, 2), NewDecimal(18, 2)))
	require.False(t, IsTypePromotable(NewDecimal(9, 2), NewDecimal(18, 3)))
	require.False(t, IsTypePromotable(Int64, Int32))
	require.False(t, IsTypePromotable(StringType, Int32))
}

func TestCompareSchemasFullyCompatible(t *testing.T) {
	old := NewSchema(0, &NestedField{ID: 1, Name: "id", Type: Int32, Required: true})
	updated := NewSchema(1, &NestedField{ID: 1, Name: "id", Type: Int64, Required: true},
		&NestedField{ID: 2, Name: "extra", Type: StringType, Required: false})
	require.Equal(t, FullyCompatible, CompareSchemas(old, updated))
}

func TestCompareSchemasBackwardOnly(t *testing.T) {
	old := NewSchema(0,
		&NestedField{ID: 1, Name: "id", Type: Int64, Required: true},
		&NestedField{ID: 2, Name: "extra", Type: StringType, Required: false})
	updated := NewSchema(1, &NestedField{ID: 1, Name: "id", Type: Int64, Required: true})
	require.Equal(t, BackwardCompatible, CompareSchemas(old, updated))
}

func TestCompareSchemasIncompatible(t *testing.T) {
	old := NewSchema(0, &NestedField{ID: 1, Name: "id", Type: Int64, Required: true})
	updated := NewSchema(1, &NestedField{ID: 1, Name: "id", Type: StringType, Required: true})
	require.Equal(t, Incompatible, CompareSchemas(old, updated))
}
