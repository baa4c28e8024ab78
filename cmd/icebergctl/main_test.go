package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/gear6io/icebergcore/iceberg"
	"github.com/gear6io/icebergcore/table"
)

func sampleMetadataFile(t *testing.T) string {
	schema := iceberg.NewSchema(1, &iceberg.NestedField{ID: 1, Name: "id", Type: iceberg.Int64, Required: true})
	m := table.NewTableMetadata("11111111-2222-3333-4444-555555555555", "s3://bucket/tbl", schema, table.FormatV2)
	m.Snapshots = []*table.Snapshot{{
		SnapshotID:     1,
		SequenceNumber: 1,
		TimestampMs:    1000,
		ManifestList:   "s3://bucket/tbl/metadata/snap-1.avro",
		SchemaID:       1,
		Summary:        &table.SnapshotSummary{Operation: "append", Counters: map[string]string{"added-data-files": "1"}},
	}}
	m.CurrentSnapshotID = &m.Snapshots[0].SnapshotID
	m.LastSequenceNumber = 1
	m.Refs["main"] = &table.Ref{SnapshotID: 1, Type: table.RefBranch}

	data, err := json.Marshal(m)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "metadata.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestRunInspectPrintsSchemaAndRefs(t *testing.T) {
	path := sampleMetadataFile(t)
	require.NoError(t, runInspect(zerolog.Nop(), path, 0))
}

func TestRunInspectRejectsMissingFile(t *testing.T) {
	err := runInspect(zerolog.Nop(), "/nonexistent/metadata.json", 0)
	require.Error(t, err)
}

func TestBucketCommandComputesConsistentBucket(t *testing.T) {
	logger := zerolog.Nop()
	cmd := newBucketCommand(logger)
	cmd.SetArgs([]string{"16", "user-1234"})
	require.NoError(t, cmd.Execute())
}

func TestBucketCommandRejectsNonPositiveCount(t *testing.T) {
	logger := zerolog.Nop()
	cmd := newBucketCommand(logger)
	cmd.SetArgs([]string{"0", "user-1234"})
	require.Error(t, cmd.Execute())
}
