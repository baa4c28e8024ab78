package table

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssertCreateAgainstExistingTableFails(t *testing.T) {
	m := sampleMetadata()
	require.Error(t, AssertCreate().Check(m))
}

func TestAssertCreateAgainstNilMetadataSucceeds(t *testing.T) {
	require.NoError(t, AssertCreate().Check(nil))
}

func TestAssertTableUUIDMismatch(t *testing.T) {
	m := sampleMetadata()
	require.Error(t, AssertTableUUID("not-the-uuid").Check(m))
	require.NoError(t, AssertTableUUID(m.TableUUID).Check(m))
}

func TestAssertRefSnapshotIDAbsentRef(t *testing.T) {
	m := sampleMetadata()
	require.NoError(t, AssertRefSnapshotID("main", nil).Check(m))

	id := int64(5)
	require.Error(t, AssertRefSnapshotID("main", &id).Check(m))
}

func TestAssertRefSnapshotIDMatches(t *testing.T) {
	m := sampleMetadata()
	m.Snapshots = append(m.Snapshots, &Snapshot{SnapshotID: 5, SequenceNumber: 1})
	m.Refs["main"] = &Ref{SnapshotID: 5, Type: RefBranch}

	id := int64(5)
	require.NoError(t, AssertRefSnapshotID("main", &id).Check(m))

	wrong := int64(6)
	require.Error(t, AssertRefSnapshotID("main", &wrong).Check(m))
}

func TestAssertLastAssignedFieldID(t *testing.T) {
	m := sampleMetadata()
	require.NoError(t, AssertLastAssignedFieldID(m.LastColumnID).Check(m))
	require.Error(t, AssertLastAssignedFieldID(m.LastColumnID+1).Check(m))
}

func TestAssertCurrentSchemaIDAndDefaults(t *testing.T) {
	m := sampleMetadata()
	require.NoError(t, AssertCurrentSchemaID(m.CurrentSchemaID).Check(m))
	require.NoError(t, AssertDefaultSpecID(m.DefaultSpecID).Check(m))
	require.NoError(t, AssertDefaultSortOrderID(m.DefaultSortOrderID).Check(m))
	require.Error(t, AssertCurrentSchemaID(m.CurrentSchemaID+1).Check(m))
}

func TestCheckAllStopsAtFirstFailure(t *testing.T) {
	m := sampleMetadata()
	err := CheckAll([]Requirement{
		AssertTableUUID(m.TableUUID),
		AssertCurrentSchemaID(99),
	}, m)
	require.Error(t, err)
}
