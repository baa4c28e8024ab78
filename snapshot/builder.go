// Package snapshot implements snapshot-summary building (operation
// classification, counter rendering) and ref retention on top of the
// table package's Snapshot/Ref/SnapshotSummary types.
package snapshot

import (
	"strconv"

	"github.com/gear6io/icebergcore/pkg/errors"
	"github.com/gear6io/icebergcore/table"
)

// Operation is a snapshot's classification.
type Operation string

const (
	OpAppend    Operation = "append"
	OpDelete    Operation = "delete"
	OpOverwrite Operation = "overwrite"
	OpReplace   Operation = "replace"
)

// ChangeSet tallies what a snapshot's manifests added and removed,
// enough to classify its operation and render its summary counters.
type ChangeSet struct {
	AddedDataFiles     int
	DeletedDataFiles   int
	AddedDeleteFiles   int
	DeletedDeleteFiles int
	AddedRecords       int64
	DeletedRecords     int64
	AddedFileSizeBytes int64
	RemovedFileSizeBytes int64

	// TotalDataFiles/TotalRecords/TotalFileSizeBytes are the table-wide
	// totals after this snapshot, for the "total-*" summary counters.
	TotalDataFiles     int
	TotalDeleteFiles   int
	TotalRecords       int64
	TotalFileSizeBytes int64

	// ChangedPartitionCount distinguishes an overwrite confined to one
	// partition from one spanning many; 0 means unpartitioned or not
	// tracked.
	ChangedPartitionCount int
}

// Classify determines a changeset's operation: append-only if only files
// were added, delete-only if only files were removed, overwrite if both
// occurred, replace if the caller explicitly marks a wholesale rewrite
// (e.g. compaction) via forceReplace.
func (c ChangeSet) Classify(forceReplace bool) Operation {
	if forceReplace {
		return OpReplace
	}
	addedAny := c.AddedDataFiles > 0 || c.AddedDeleteFiles > 0
	removedAny := c.DeletedDataFiles > 0 || c.DeletedDeleteFiles > 0
	switch {
	case addedAny && removedAny:
		return OpOverwrite
	case addedAny:
		return OpAppend
	case removedAny:
		return OpDelete
	default:
		return OpAppend
	}
}

// Summary renders c's counters as a table.SnapshotSummary under op.
func (c ChangeSet) Summary(op Operation) *table.SnapshotSummary {
	counters := map[string]string{
		"added-data-files":       strconv.Itoa(c.AddedDataFiles),
		"deleted-data-files":     strconv.Itoa(c.DeletedDataFiles),
		"added-delete-files":     strconv.Itoa(c.AddedDeleteFiles),
		"removed-delete-files":   strconv.Itoa(c.DeletedDeleteFiles),
		"added-records":          strconv.FormatInt(c.AddedRecords, 10),
		"deleted-records":        strconv.FormatInt(c.DeletedRecords, 10),
		"added-files-size":       strconv.FormatInt(c.AddedFileSizeBytes, 10),
		"removed-files-size":     strconv.FormatInt(c.RemovedFileSizeBytes, 10),
		"total-data-files":       strconv.Itoa(c.TotalDataFiles),
		"total-delete-files":     strconv.Itoa(c.TotalDeleteFiles),
		"total-records":          strconv.FormatInt(c.TotalRecords, 10),
		"total-files-size":       strconv.FormatInt(c.TotalFileSizeBytes, 10),
	}
	if c.ChangedPartitionCount > 0 {
		counters["changed-partition-count"] = strconv.Itoa(c.ChangedPartitionCount)
	}
	return &table.SnapshotSummary{Operation: string(op), Counters: counters}
}

// Build constructs the next snapshot in a table's history. parent may be
// nil for a table's first snapshot. It refuses to build a snapshot whose
// sequence number is not strictly greater than the parent's, and refuses
// an empty changeset unless forceReplace marks a deliberate no-op rewrite.
func Build(parent *table.Snapshot, snapshotID, sequenceNumber, timestampMs int64, manifestListPath string, schemaID int, changes ChangeSet, forceReplace bool) (*table.Snapshot, error) {
	if parent != nil && sequenceNumber <= parent.SequenceNumber {
		return nil, newError(ErrSequenceNotMonotonic, "snapshot sequence number must strictly increase over its parent")
	}
	if !forceReplace && changes.AddedDataFiles == 0 && changes.DeletedDataFiles == 0 &&
		changes.AddedDeleteFiles == 0 && changes.DeletedDeleteFiles == 0 {
		return nil, newError(ErrNoChanges, "snapshot has no added or removed files")
	}
	var parentID *int64
	if parent != nil {
		parentID = &parent.SnapshotID
	}
	op := changes.Classify(forceReplace)
	return &table.Snapshot{
		SnapshotID:       snapshotID,
		ParentSnapshotID: parentID,
		SequenceNumber:   sequenceNumber,
		TimestampMs:      timestampMs,
		ManifestList:     manifestListPath,
		SchemaID:         schemaID,
		Summary:          changes.Summary(op),
	}, nil
}

func newError(code errors.Code, msg string) error {
	return errors.New(code, msg, nil)
}
