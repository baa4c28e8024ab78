package table

import (
	"testing"

	"github.com/gear6io/icebergcore/iceberg"
	"github.com/stretchr/testify/require"
)

func TestAddSchemaUpdatesLastColumnID(t *testing.T) {
	m := sampleMetadata()
	extra := iceberg.NewSchema(1,
		&iceberg.NestedField{ID: 1, Name: "id", Type: iceberg.Int64, Required: true},
		&iceberg.NestedField{ID: 2, Name: "name", Type: iceberg.StringType, Required: false},
		&iceberg.NestedField{ID: 3, Name: "extra", Type: iceberg.StringType, Required: false},
	)
	require.NoError(t, AddSchema(extra).Apply(m))
	require.Equal(t, 3, m.LastColumnID)
	require.Len(t, m.Schemas, 2)
}

func TestAddSchemaRejectsDuplicateID(t *testing.T) {
	m := sampleMetadata()
	require.Error(t, AddSchema(m.Schemas[0]).Apply(m))
}

func TestSetCurrentSchemaLatest(t *testing.T) {
	m := sampleMetadata()
	extra := iceberg.NewSchema(1, &iceberg.NestedField{ID: 1, Name: "id", Type: iceberg.Int64, Required: true})
	require.NoError(t, AddSchema(extra).Apply(m))
	require.NoError(t, SetCurrentSchema(-1).Apply(m))
	require.Equal(t, 1, m.CurrentSchemaID)
}

func TestSetCurrentSchemaUnknownFails(t *testing.T) {
	m := sampleMetadata()
	require.Error(t, SetCurrentSchema(99).Apply(m))
}

func TestAddPartitionSpecAdvancesLastPartitionID(t *testing.T) {
	m := sampleMetadata()
	spec := &iceberg.PartitionSpec{ID: 1, Fields: []iceberg.PartitionField{
		{SourceID: 1, FieldID: 1000, Name: "id_bucket"},
	}}
	require.NoError(t, AddPartitionSpec(spec).Apply(m))
	require.Equal(t, 1000, m.LastPartitionID)
	require.NoError(t, SetDefaultSpec(-1).Apply(m))
	require.Equal(t, 1, m.DefaultSpecID)
}

func TestAddSnapshotRejectsNonIncreasingSequence(t *testing.T) {
	m := sampleMetadata()
	require.NoError(t, AddSnapshot(&Snapshot{SnapshotID: 1, SequenceNumber: 1}).Apply(m))
	require.Error(t, AddSnapshot(&Snapshot{SnapshotID: 2, SequenceNumber: 1}).Apply(m))
}

func TestSetSnapshotRefMainUpdatesCurrentSnapshot(t *testing.T) {
	m := sampleMetadata()
	require.NoError(t, AddSnapshot(&Snapshot{SnapshotID: 1, SequenceNumber: 1}).Apply(m))
	require.NoError(t, SetSnapshotRef("main", &Ref{SnapshotID: 1, Type: RefBranch}).Apply(m))
	require.NotNil(t, m.CurrentSnapshotID)
	require.Equal(t, int64(1), *m.CurrentSnapshotID)
	require.Len(t, m.SnapshotLog, 1)
}

func TestSetSnapshotRefUnknownSnapshotFails(t *testing.T) {
	m := sampleMetadata()
	require.Error(t, SetSnapshotRef("main", &Ref{SnapshotID: 404, Type: RefBranch}).Apply(m))
}

func TestRemoveSnapshotsDropsByID(t *testing.T) {
	m := sampleMetadata()
	require.NoError(t, AddSnapshot(&Snapshot{SnapshotID: 1, SequenceNumber: 1}).Apply(m))
	require.NoError(t, AddSnapshot(&Snapshot{SnapshotID: 2, SequenceNumber: 2}).Apply(m))
	require.NoError(t, RemoveSnapshots([]int64{1}).Apply(m))
	require.Len(t, m.Snapshots, 1)
	require.Equal(t, int64(2), m.Snapshots[0].SnapshotID)
}

func TestSetAndRemoveProperties(t *testing.T) {
	m := sampleMetadata()
	require.NoError(t, SetProperties(map[string]string{"a": "1", "b": "2"}).Apply(m))
	require.Equal(t, "1", m.Properties["a"])
	require.NoError(t, RemoveProperties([]string{"a"}).Apply(m))
	require.NotContains(t, m.Properties, "a")
	require.Equal(t, "2", m.Properties["b"])
}

func TestUpgradeFormatVersionAddsNextRowID(t *testing.T) {
	m := sampleMetadata()
	require.Nil(t, m.NextRowID)
	require.NoError(t, UpgradeFormatVersion(FormatV3).Apply(m))
	require.NotNil(t, m.NextRowID)
	require.Equal(t, FormatV3, m.FormatVersion)
}

func TestUpgradeFormatVersionRejectsDowngrade(t *testing.T) {
	m := sampleMetadata()
	require.NoError(t, UpgradeFormatVersion(FormatV3).Apply(m))
	require.Error(t, UpgradeFormatVersion(FormatV2).Apply(m))
}

func TestApplyAllStopsOnError(t *testing.T) {
	m := sampleMetadata()
	err := ApplyAll([]Update{
		SetProperties(map[string]string{"a": "1"}),
		SetCurrentSchema(99),
	}, m)
	require.Error(t, err)
	require.Equal(t, "1", m.Properties["a"])
}
