package table

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/gear6io/icebergcore/iceberg"
	"github.com/gear6io/icebergcore/storage"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func baseSchema() *iceberg.Schema {
	return iceberg.NewSchema(0,
		&iceberg.NestedField{ID: 1, Name: "id", Type: iceberg.Int64, Required: true},
		&iceberg.NestedField{ID: 2, Name: "name", Type: iceberg.StringType, Required: false},
	)
}

func newTestTable(t *testing.T) *Table {
	t.Helper()
	backend := storage.NewMemBackend(zerolog.Nop())
	return NewTable(backend, "s3://b/t", zerolog.Nop(), nil)
}

// scenario A: create then append.
func TestCommitCreateThenAppend(t *testing.T) {
	ctx := context.Background()
	tbl := newTestTable(t)
	schema := baseSchema()

	created, err := tbl.Commit(ctx, CommitRequest{
		Requirements: []Requirement{AssertCreate()},
		Updates: []Update{
			AddSchema(schema),
			SetCurrentSchema(-1),
		},
	})
	require.NoError(t, err)
	require.Equal(t, 0, created.CurrentSchemaID)

	exists, err := tbl.Backend.Exists(ctx, MetadataPath(tbl.Location, 1))
	require.NoError(t, err)
	require.True(t, exists)

	snapshot := &Snapshot{
		SnapshotID:     100,
		SequenceNumber: 1,
		TimestampMs:    1,
		ManifestList:   "s3://b/t/metadata/snap-100.avro",
		SchemaID:       created.CurrentSchemaID,
		Summary: &SnapshotSummary{
			Operation: "append",
			Counters: map[string]string{
				"added-data-files":   "10",
				"added-records":      "1000",
				"added-files-size":   "4096",
				"total-data-files":   "10",
				"total-records":      "1000",
				"total-files-size":   "4096",
			},
		},
	}

	updated, err := tbl.Commit(ctx, CommitRequest{
		Requirements: []Requirement{AssertTableUUID(created.TableUUID)},
		Updates: []Update{
			AddSnapshot(snapshot),
			SetSnapshotRef("main", &Ref{SnapshotID: 100, Type: RefBranch}),
		},
	})
	require.NoError(t, err)

	require.Equal(t, int64(1), updated.LastSequenceNumber)
	require.NotNil(t, updated.CurrentSnapshotID)
	require.Equal(t, int64(100), *updated.CurrentSnapshotID)
	require.Equal(t, int64(100), updated.Refs["main"].SnapshotID)

	exists, err = tbl.Backend.Exists(ctx, MetadataPath(tbl.Location, 2))
	require.NoError(t, err)
	require.True(t, exists)

	hint, err := tbl.Backend.Get(ctx, VersionHintPath(tbl.Location))
	require.NoError(t, err)
	require.Equal(t, "2", string(hint))
}

// scenario E: OCC conflict — a racing writer stages v2 without advancing
// the version hint; Table.Commit's load finds v2 in the metadata listing,
// re-bases onto it, and lands on v3 instead of failing the caller.
func TestCommitOCCConflictRebasesAndSucceeds(t *testing.T) {
	ctx := context.Background()
	tbl := newTestTable(t)
	schema := baseSchema()

	created, err := tbl.Commit(ctx, CommitRequest{
		Requirements: []Requirement{AssertCreate()},
		Updates: []Update{
			AddSchema(schema),
			SetCurrentSchema(-1),
		},
	})
	require.NoError(t, err)

	// Simulate process A winning the race for v2 by writing it directly,
	// before process B's commit below.
	racer := created.Clone()
	racer.Properties["racer"] = "A"
	data, err := json.Marshal(racer)
	require.NoError(t, err)
	require.NoError(t, tbl.Backend.PutIfAbsent(ctx, MetadataPath(tbl.Location, 2), data))

	updated, err := tbl.Commit(ctx, CommitRequest{
		Requirements: []Requirement{AssertTableUUID(created.TableUUID)},
		Updates: []Update{
			SetProperties(map[string]string{"committer": "B"}),
		},
	})
	require.NoError(t, err)

	exists, err := tbl.Backend.Exists(ctx, MetadataPath(tbl.Location, 3))
	require.NoError(t, err)
	require.True(t, exists, "process B should land on v3 after re-basing past the racer's v2")
	require.Equal(t, "B", updated.Properties["committer"])
}

func TestCommitRequirementFailureFailsCommit(t *testing.T) {
	ctx := context.Background()
	tbl := newTestTable(t)
	schema := baseSchema()

	_, err := tbl.Commit(ctx, CommitRequest{
		Requirements: []Requirement{AssertCreate()},
		Updates:      []Update{AddSchema(schema), SetCurrentSchema(-1)},
	})
	require.NoError(t, err)

	_, err = tbl.Commit(ctx, CommitRequest{
		Requirements: []Requirement{AssertCreate()},
		Updates:      []Update{AddSchema(schema), SetCurrentSchema(-1)},
	})
	require.Error(t, err)
}

func TestLoadReturnsNilForNonexistentTable(t *testing.T) {
	tbl := newTestTable(t)
	m, err := tbl.Load(context.Background())
	require.NoError(t, err)
	require.Nil(t, m)
}
