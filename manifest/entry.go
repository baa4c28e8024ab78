// Package manifest implements the per-file manifest and manifest-list
// layer: DataFile/ManifestEntry records against the Iceberg v2/v3 field
// set, their Avro encoding via hamba/avro/v2, and the manifest-list that
// aggregates per-column statistics across a manifest.
package manifest

import "github.com/gear6io/icebergcore/table"

// FileFormat names the row-level file format a DataFile's bytes are encoded
// in. The core never reads or writes those bytes itself (out of scope); it
// only records which format a reader should use.
type FileFormat string

const (
	FormatParquet FileFormat = "parquet"
	FormatAvro    FileFormat = "avro"
	FormatORC     FileFormat = "orc"
	// FormatPuffin marks a v3 deletion-vector DataFile, whose bytes live
	// in a Puffin container rather than a row-format file.
	FormatPuffin FileFormat = "puffin"
)

// Content distinguishes the three file kinds that share the DataFile shape.
type Content int8

const (
	ContentData            Content = 0
	ContentPositionDeletes Content = 1
	ContentEqualityDeletes Content = 2
)

// Status is a manifest entry's lifecycle state relative to the snapshot
// that references it.
type Status int8

const (
	StatusExisting Status = 0
	StatusAdded    Status = 1
	StatusDeleted  Status = 2
)

// Reserved field IDs for the internal position-delete schema, re-exported
// here since manifest entries are where they actually appear.
const (
	PositionDeleteFilePathFieldID = table.PositionDeleteFilePathFieldID
	PositionDeletePosFieldID      = table.PositionDeletePosFieldID
	PositionDeleteSchemaID        = table.PositionDeleteSchemaID
	EqualityDeleteSchemaID        = table.EqualityDeleteSchemaID
)

// DataFile describes one physical file referenced from a manifest: a data
// file, a position-delete file, or an equality-delete file, distinguished
// by Content. All three kinds share this shape.
type DataFile struct {
	Content         Content
	FilePath        string
	FileFormat      FileFormat
	Partition       map[string]any // partition field name -> typed value
	RecordCount     int64
	FileSizeInBytes int64

	ColumnSizes     map[int]int64
	ValueCounts     map[int]int64
	NullValueCounts map[int]int64
	NanValueCounts  map[int]int64
	LowerBounds     map[int][]byte
	UpperBounds     map[int][]byte

	KeyMetadata  []byte
	SplitOffsets []int64
	SortOrderID  *int

	// EqualityIDs is set only on content=2 (equality-delete) files: the
	// field IDs the delete projects over.
	EqualityIDs []int

	// Deletion-vector fields (v3 only). Present together or not at all.
	ContentOffset      *int64
	ContentSizeInBytes *int64
	ReferencedDataFile *string
}

// IsDeletionVector reports whether f is a v3 deletion vector: a
// content=1 entry carrying all three DV fields rather than a legacy
// position-delete file.
func (f *DataFile) IsDeletionVector() bool {
	return f.Content == ContentPositionDeletes &&
		f.ContentOffset != nil && f.ContentSizeInBytes != nil && f.ReferencedDataFile != nil
}

// ValidateDV enforces that the three deletion-vector fields are present
// together or not at all.
func (f *DataFile) ValidateDV() error {
	n := 0
	if f.ContentOffset != nil {
		n++
	}
	if f.ContentSizeInBytes != nil {
		n++
	}
	if f.ReferencedDataFile != nil {
		n++
	}
	if n != 0 && n != 3 {
		return newError(ErrInvalidDataFile, "deletion-vector fields must be present together or not at all")
	}
	if n == 3 && f.Content != ContentPositionDeletes {
		return newError(ErrInvalidDataFile, "deletion-vector fields require content=1 (position deletes)")
	}
	return nil
}

// ManifestEntry is one row in a manifest: a data or delete file plus the
// snapshot bookkeeping that places it in the table's history. An entry
// carried forward unchanged from a parent snapshot keeps its original
// SnapshotID and SequenceNumber; only newly added entries get the
// committing snapshot's.
type ManifestEntry struct {
	Status             Status
	SnapshotID         int64
	SequenceNumber     int64
	FileSequenceNumber *int64
	DataFile           *DataFile
}
