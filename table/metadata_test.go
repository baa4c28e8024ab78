package table

import (
	"encoding/json"
	"testing"

	"github.com/gear6io/icebergcore/iceberg"
	"github.com/stretchr/testify/require"
)

func sampleSchema() *iceberg.Schema {
	return iceberg.NewSchema(0,
		&iceberg.NestedField{ID: 1, Name: "id", Type: iceberg.Int64, Required: true},
		&iceberg.NestedField{ID: 2, Name: "name", Type: iceberg.StringType, Required: false},
	)
}

func sampleMetadata() *Metadata {
	return NewTableMetadata("11111111-1111-1111-1111-111111111111", "s3://b/t", sampleSchema(), FormatV2)
}

func TestNewTableMetadataValidates(t *testing.T) {
	m := sampleMetadata()
	require.NoError(t, m.Validate())
	require.Equal(t, 2, m.LastColumnID)
	require.Equal(t, MinPartitionFieldID, m.LastPartitionID)
}

func TestMetadataValidateRejectsUnknownCurrentSchema(t *testing.T) {
	m := sampleMetadata()
	m.CurrentSchemaID = 99
	require.Error(t, m.Validate())
}

func TestMetadataValidateRejectsLowLastColumnID(t *testing.T) {
	m := sampleMetadata()
	m.LastColumnID = 0
	require.Error(t, m.Validate())
}

func TestMetadataCloneIsIndependent(t *testing.T) {
	m := sampleMetadata()
	c := m.Clone()
	c.Properties["k"] = "v"
	require.NotContains(t, m.Properties, "k")
	c.Schemas = append(c.Schemas, sampleSchema())
	require.Len(t, m.Schemas, 1)
}

func TestSnapshotSummaryJSONIsFlat(t *testing.T) {
	s := &SnapshotSummary{Operation: "append", Counters: map[string]string{"added-records": "10"}}
	data, err := json.Marshal(s)
	require.NoError(t, err)
	require.JSONEq(t, `{"operation":"append","added-records":"10"}`, string(data))

	var got SnapshotSummary
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, "append", got.Operation)
	require.Equal(t, "10", got.Counters["added-records"])
}

func TestMetadataRefResolvesImplicitMain(t *testing.T) {
	m := sampleMetadata()
	id := int64(42)
	m.CurrentSnapshotID = &id
	ref, ok := m.Ref("main")
	require.True(t, ok)
	require.Equal(t, int64(42), ref.SnapshotID)
}
