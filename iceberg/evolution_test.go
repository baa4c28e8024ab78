package iceberg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvolutionAddColumn(t *testing.T) {
	base := sampleSchema()
	schema, lastID, err := NewEvolution(base, base.HighestFieldID()).
		AddColumn("email", StringType, false, nil).
		Build()
	require.NoError(t, err)
	require.Equal(t, 6, lastID)
	f, ok := schema.FieldByName("email")
	require.True(t, ok)
	require.Equal(t, 6, f.ID)
}

func TestEvolutionAddRequiredColumnNeedsDefault(t *testing.T) {
	base := sampleSchema()
	_, _, err := NewEvolution(base, base.HighestFieldID()).
		AddColumn("balance", Int64, true, nil).
		Build()
	require.Error(t, err)

	_, _, err = NewEvolution(base, base.HighestFieldID()).
		AddColumn("balance", Int64, true, int64(0)).
		Build()
	require.NoError(t, err)
}

func TestEvolutionDropColumn(t *testing.T) {
	base := sampleSchema()
	schema, _, err := NewEvolution(base, base.HighestFieldID()).
		DropColumn("name").
		Build()
	require.NoError(t, err)
	_, ok := schema.FieldByName("name")
	require.False(t, ok)
}

func TestEvolutionDropMissingColumn(t *testing.T) {
	base := sampleSchema()
	_, _, err := NewEvolution(base, base.HighestFieldID()).DropColumn("nope").Build()
	require.Error(t, err)
}

func TestEvolutionRenamePreservesID(t *testing.T) {
	base := sampleSchema()
	schema, _, err := NewEvolution(base, base.HighestFieldID()).
		RenameColumn("name", "full_name").
		Build()
	require.NoError(t, err)
	f, ok := schema.FieldByName("full_name")
	require.True(t, ok)
	require.Equal(t, 2, f.ID)
}

func TestEvolutionUpdateColumnTypePromotion(t *testing.T) {
	base := NewSchema(0, &NestedField{ID: 1, Name: "count", Type: Int32, Required: true})
	schema, _, err := NewEvolution(base, base.HighestFieldID()).
		UpdateColumnType("count", Int64).
		Build()
	require.NoError(t, err)
	f, _ := schema.FieldByName("count")
	require.Equal(t, KindLong, f.Type.Kind())
}

func TestEvolutionUpdateColumnTypeNarrowingRejected(t *testing.T) {
	base := NewSchema(0, &NestedField{ID: 1, Name: "count", Type: Int64, Required: true})
	_, _, err := NewEvolution(base, base.HighestFieldID()).
		UpdateColumnType("count", Int32).
		Build()
	require.Error(t, err)
}

func TestEvolutionMakeOptionalColumnRequiredNeedsDefault(t *testing.T) {
	base := sampleSchema()
	_, _, err := NewEvolution(base, base.HighestFieldID()).
		MakeColumnRequired("name", nil).
		Build()
	require.Error(t, err)

	schema, _, err := NewEvolution(base, base.HighestFieldID()).
		MakeColumnRequired("name", "unknown").
		Build()
	require.NoError(t, err)
	f, _ := schema.FieldByName("name")
	require.True(t, f.Required)
}

func TestEvolutionMoveColumn(t *testing.T) {
	base := sampleSchema()
	schema, _, err := NewEvolution(base, base.HighestFieldID()).
		MoveColumnFirst("address").
		Build()
	require.NoError(t, err)
	require.Equal(t, "address", schema.Fields()[0].Name)
}

func TestEvolutionMoveColumnLast(t *testing.T) {
	base := sampleSchema()
	schema, _, err := NewEvolution(base, base.HighestFieldID()).
		MoveColumnLast("id").
		Build()
	require.NoError(t, err)
	fields := schema.Fields()
	require.Equal(t, "id", fields[len(fields)-1].Name)
}

func TestEvolutionMoveColumnBefore(t *testing.T) {
	base := sampleSchema()
	schema, _, err := NewEvolution(base, base.HighestFieldID()).
		MoveColumnBefore("address", "id").
		Build()
	require.NoError(t, err)
	require.Equal(t, "address", schema.Fields()[0].Name)
	require.Equal(t, "id", schema.Fields()[1].Name)
}

func TestEvolutionMoveColumnBeforeMissingReference(t *testing.T) {
	base := sampleSchema()
	_, _, err := NewEvolution(base, base.HighestFieldID()).
		MoveColumnBefore("address", "nope").
		Build()
	require.Error(t, err)
}

func TestEvolutionAddNestedColumn(t *testing.T) {
	base := sampleSchema()
	schema, lastID, err := NewEvolution(base, base.HighestFieldID()).
		AddColumn("address.country", StringType, false, nil).
		Build()
	require.NoError(t, err)
	require.Equal(t, 6, lastID)
	f, ok := schema.FieldByName("address.country")
	require.True(t, ok)
	require.Equal(t, 6, f.ID)
}

func TestEvolutionAddNestedColumnMissingParent(t *testing.T) {
	base := sampleSchema()
	_, _, err := NewEvolution(base, base.HighestFieldID()).
		AddColumn("nope.country", StringType, false, nil).
		Build()
	require.Error(t, err)
}

func TestEvolutionAddNestedColumnNotAStruct(t *testing.T) {
	base := sampleSchema()
	_, _, err := NewEvolution(base, base.HighestFieldID()).
		AddColumn("name.first", StringType, false, nil).
		Build()
	require.Error(t, err)
}

func TestEvolutionDropNestedColumn(t *testing.T) {
	base := sampleSchema()
	schema, _, err := NewEvolution(base, base.HighestFieldID()).
		DropColumn("address.city").
		Build()
	require.NoError(t, err)
	_, ok := schema.FieldByName("address.city")
	require.False(t, ok)
	_, ok = schema.FieldByName("address.zip")
	require.True(t, ok)
}

func TestEvolutionRenameNestedColumnPreservesID(t *testing.T) {
	base := sampleSchema()
	schema, _, err := NewEvolution(base, base.HighestFieldID()).
		RenameColumn("address.city", "town").
		Build()
	require.NoError(t, err)
	f, ok := schema.FieldByName("address.town")
	require.True(t, ok)
	require.Equal(t, 4, f.ID)
}

func TestEvolutionUpdateNestedColumnType(t *testing.T) {
	base := NewSchema(0,
		&NestedField{ID: 1, Name: "point", Type: NewStruct(
			&NestedField{ID: 2, Name: "x", Type: Int32, Required: true},
		), Required: false},
	)
	schema, _, err := NewEvolution(base, base.HighestFieldID()).
		UpdateColumnType("point.x", Int64).
		Build()
	require.NoError(t, err)
	f, _ := schema.FieldByName("point.x")
	require.Equal(t, KindLong, f.Type.Kind())
}
