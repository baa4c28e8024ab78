package snapshot

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gear6io/icebergcore/table"
)

func TestClassifyAppendDeleteOverwrite(t *testing.T) {
	require.Equal(t, OpAppend, ChangeSet{AddedDataFiles: 3}.Classify(false))
	require.Equal(t, OpDelete, ChangeSet{DeletedDataFiles: 2}.Classify(false))
	require.Equal(t, OpOverwrite, ChangeSet{AddedDataFiles: 1, DeletedDataFiles: 1}.Classify(false))
	require.Equal(t, OpReplace, ChangeSet{AddedDataFiles: 1}.Classify(true))
}

func TestBuildRejectsNonIncreasingSequenceNumber(t *testing.T) {
	parent := &table.Snapshot{SnapshotID: 1, SequenceNumber: 5, TimestampMs: 1000}
	_, err := Build(parent, 2, 5, 2000, "s3://bucket/m2.avro", 0, ChangeSet{AddedDataFiles: 1}, false)
	require.Error(t, err)

	_, err = Build(parent, 2, 4, 2000, "s3://bucket/m2.avro", 0, ChangeSet{AddedDataFiles: 1}, false)
	require.Error(t, err)
}

func TestBuildProducesAppendSnapshot(t *testing.T) {
	s, err := Build(nil, 1, 1, 1000, "s3://bucket/m1.avro", 0, ChangeSet{AddedDataFiles: 2, AddedRecords: 20}, false)
	require.NoError(t, err)
	require.Nil(t, s.ParentSnapshotID)
	require.Equal(t, "append", s.Summary.Operation)
	require.Equal(t, "2", s.Summary.Counters["added-data-files"])
	require.Equal(t, "20", s.Summary.Counters["added-records"])
}

func TestBuildRejectsEmptyChangeSet(t *testing.T) {
	_, err := Build(nil, 1, 1, 1000, "s3://bucket/m1.avro", 0, ChangeSet{}, false)
	require.Error(t, err)

	s, err := Build(nil, 1, 1, 1000, "s3://bucket/m1.avro", 0, ChangeSet{}, true)
	require.NoError(t, err)
	require.Equal(t, "replace", s.Summary.Operation)
}

func TestBuildChainsParent(t *testing.T) {
	parent := &table.Snapshot{SnapshotID: 1, SequenceNumber: 1, TimestampMs: 1000}
	s, err := Build(parent, 2, 2, 2000, "s3://bucket/m2.avro", 0, ChangeSet{AddedDataFiles: 1}, false)
	require.NoError(t, err)
	require.NotNil(t, s.ParentSnapshotID)
	require.Equal(t, int64(1), *s.ParentSnapshotID)
}
