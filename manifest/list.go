package manifest

import (
	"bytes"
	"io"
	"strconv"

	"github.com/hamba/avro/v2/ocf"

	"github.com/gear6io/icebergcore/iceberg"
	"github.com/gear6io/icebergcore/stats"
)

// PartitionFieldSummary aggregates one partition field's values across a
// manifest's entries, used for zone-map pruning at the manifest-list level
// before a manifest is even opened.
type PartitionFieldSummary struct {
	ContainsNull bool
	ContainsNaN  *bool // float/double partition fields only
	LowerBound   []byte
	UpperBound   []byte
}

// ManifestFile is a manifest-list entry: everything a reader needs to
// decide whether to open the manifest it points at.
type ManifestFile struct {
	ManifestPath       string
	ManifestLength     int64
	PartitionSpecID    int
	Content            Content
	SequenceNumber     int64
	MinSequenceNumber  int64
	AddedSnapshotID    int64
	AddedFilesCount    *int
	ExistingFilesCount *int
	DeletedFilesCount  *int
	AddedRowsCount     *int64
	ExistingRowsCount  *int64
	DeletedRowsCount   *int64
	Partitions         []PartitionFieldSummary
}

type avroPartitionFieldSummary struct {
	ContainsNull bool   `avro:"contains_null"`
	ContainsNaN  *bool  `avro:"contains_nan"`
	LowerBound   []byte `avro:"lower_bound"`
	UpperBound   []byte `avro:"upper_bound"`
}

type avroManifestFile struct {
	ManifestPath       string                      `avro:"manifest_path"`
	ManifestLength     int64                       `avro:"manifest_length"`
	PartitionSpecID    int32                       `avro:"partition_spec_id"`
	Content            int32                       `avro:"content"`
	SequenceNumber     int64                       `avro:"sequence_number"`
	MinSequenceNumber  int64                       `avro:"min_sequence_number"`
	AddedSnapshotID    int64                       `avro:"added_snapshot_id"`
	AddedFilesCount    *int32                      `avro:"added_files_count"`
	ExistingFilesCount *int32                      `avro:"existing_files_count"`
	DeletedFilesCount  *int32                      `avro:"deleted_files_count"`
	AddedRowsCount     *int64                      `avro:"added_rows_count"`
	ExistingRowsCount  *int64                      `avro:"existing_rows_count"`
	DeletedRowsCount   *int64                      `avro:"deleted_rows_count"`
	Partitions         []avroPartitionFieldSummary `avro:"partitions"`
}

func toAvroManifestFile(m *ManifestFile) avroManifestFile {
	parts := make([]avroPartitionFieldSummary, len(m.Partitions))
	for i, p := range m.Partitions {
		parts[i] = avroPartitionFieldSummary{
			ContainsNull: p.ContainsNull,
			ContainsNaN:  p.ContainsNaN,
			LowerBound:   p.LowerBound,
			UpperBound:   p.UpperBound,
		}
	}
	return avroManifestFile{
		ManifestPath:       m.ManifestPath,
		ManifestLength:     m.ManifestLength,
		PartitionSpecID:    int32(m.PartitionSpecID),
		Content:            int32(m.Content),
		SequenceNumber:     m.SequenceNumber,
		MinSequenceNumber:  m.MinSequenceNumber,
		AddedSnapshotID:    m.AddedSnapshotID,
		AddedFilesCount:    toIntPtr32(m.AddedFilesCount),
		ExistingFilesCount: toIntPtr32(m.ExistingFilesCount),
		DeletedFilesCount:  toIntPtr32(m.DeletedFilesCount),
		AddedRowsCount:     m.AddedRowsCount,
		ExistingRowsCount:  m.ExistingRowsCount,
		DeletedRowsCount:   m.DeletedRowsCount,
		Partitions:         parts,
	}
}

func fromAvroManifestFile(a avroManifestFile) *ManifestFile {
	parts := make([]PartitionFieldSummary, len(a.Partitions))
	for i, p := range a.Partitions {
		parts[i] = PartitionFieldSummary{
			ContainsNull: p.ContainsNull,
			ContainsNaN:  p.ContainsNaN,
			LowerBound:   p.LowerBound,
			UpperBound:   p.UpperBound,
		}
	}
	return &ManifestFile{
		ManifestPath:       a.ManifestPath,
		ManifestLength:     a.ManifestLength,
		PartitionSpecID:    int(a.PartitionSpecID),
		Content:            Content(a.Content),
		SequenceNumber:     a.SequenceNumber,
		MinSequenceNumber:  a.MinSequenceNumber,
		AddedSnapshotID:    a.AddedSnapshotID,
		AddedFilesCount:    fromIntPtr32(a.AddedFilesCount),
		ExistingFilesCount: fromIntPtr32(a.ExistingFilesCount),
		DeletedFilesCount:  fromIntPtr32(a.DeletedFilesCount),
		AddedRowsCount:     a.AddedRowsCount,
		ExistingRowsCount:  a.ExistingRowsCount,
		DeletedRowsCount:   a.DeletedRowsCount,
		Partitions:         parts,
	}
}

// WriteList encodes a snapshot's live manifests as a manifest-list Avro
// file.
func WriteList(w io.Writer, snapshotID int64, manifests []*ManifestFile) error {
	listSchema, err := manifestFileAvroSchema()
	if err != nil {
		return err
	}
	enc, err := ocf.NewEncoder(listSchema.String(), w,
		ocf.WithMetadata(map[string][]byte{
			"snapshot-id": []byte(strconv.FormatInt(snapshotID, 10)),
		}),
		ocf.WithCodec(ocf.Null),
	)
	if err != nil {
		return newError(ErrEncode, "failed to open manifest-list writer: "+err.Error())
	}
	for _, m := range manifests {
		wire := toAvroManifestFile(m)
		if err := enc.Encode(&wire); err != nil {
			return newError(ErrEncode, "failed to encode manifest-list entry: "+err.Error())
		}
	}
	return enc.Close()
}

// ReadList decodes a manifest-list file written by WriteList.
func ReadList(r io.Reader) ([]*ManifestFile, error) {
	dec, err := ocf.NewDecoder(r)
	if err != nil {
		return nil, newError(ErrDecode, "failed to open manifest-list reader: "+err.Error())
	}
	var out []*ManifestFile
	for dec.HasNext() {
		var wire avroManifestFile
		if err := dec.Decode(&wire); err != nil {
			return nil, newError(ErrDecode, "failed to decode manifest-list entry: "+err.Error())
		}
		out = append(out, fromAvroManifestFile(wire))
	}
	if err := dec.Error(); err != nil {
		return nil, newError(ErrDecode, "manifest-list decoder error: "+err.Error())
	}
	return out, nil
}

// WriteListToBytes mirrors WriteToBytes for manifest-lists.
func WriteListToBytes(snapshotID int64, manifests []*ManifestFile) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteList(&buf, snapshotID, manifests); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Summarize aggregates a manifest's entries into the ManifestFile record
// that belongs in its snapshot's manifest-list: counts by status, and per
// partition-field summaries with the min/max bound under that field's type
// comparator, lower bounds taking the min and upper bounds the max. Each
// partition-field summary records only whether any entry has a null or NaN
// value; per-column statistics (null/NaN counts, column sizes, column
// bounds) are not aggregated into the ManifestFile.
func Summarize(path string, length int64, spec *iceberg.PartitionSpec, specSchema *iceberg.Schema, content Content, sequenceNumber, addedSnapshotID int64, entries []*ManifestEntry) (*ManifestFile, error) {
	resultStruct, err := spec.ResultStruct(specSchema)
	if err != nil {
		return nil, err
	}

	var added, existing, deleted int
	var addedRows, existingRows, deletedRows int64
	minSeq := sequenceNumber

	type fieldAgg struct {
		containsNull bool
		containsNaN  *bool
		lower, upper []byte
		typ          iceberg.Type
	}
	aggs := make([]*fieldAgg, len(resultStruct.Fields))
	for i, f := range resultStruct.Fields {
		var nan *bool
		if stats.IsFloatKind(f.Type) {
			b := false
			nan = &b
		}
		aggs[i] = &fieldAgg{containsNaN: nan, typ: f.Type}
	}

	for _, e := range entries {
		if e.SequenceNumber < minSeq {
			minSeq = e.SequenceNumber
		}
		switch e.Status {
		case StatusAdded:
			added++
			addedRows += e.DataFile.RecordCount
		case StatusExisting:
			existing++
			existingRows += e.DataFile.RecordCount
		case StatusDeleted:
			deleted++
			deletedRows += e.DataFile.RecordCount
		}

		for i, f := range resultStruct.Fields {
			v, ok := e.DataFile.Partition[f.Name]
			agg := aggs[i]
			if !ok || v == nil {
				agg.containsNull = true
				continue
			}
			enc, isNaN, err := stats.EncodeBound(f.Type, v)
			if err != nil {
				return nil, err
			}
			if isNaN {
				if agg.containsNaN != nil {
					t := true
					agg.containsNaN = &t
				}
				continue
			}
			if agg.lower == nil || stats.Compare(agg.typ, enc, agg.lower) < 0 {
				agg.lower = enc
			}
			if agg.upper == nil || stats.Compare(agg.typ, enc, agg.upper) > 0 {
				agg.upper = enc
			}
		}
	}

	summaries := make([]PartitionFieldSummary, len(aggs))
	for i, a := range aggs {
		summaries[i] = PartitionFieldSummary{
			ContainsNull: a.containsNull,
			ContainsNaN:  a.containsNaN,
			LowerBound:   a.lower,
			UpperBound:   a.upper,
		}
	}

	return &ManifestFile{
		ManifestPath:       path,
		ManifestLength:     length,
		PartitionSpecID:    spec.ID,
		Content:            content,
		SequenceNumber:     sequenceNumber,
		MinSequenceNumber:  minSeq,
		AddedSnapshotID:    addedSnapshotID,
		AddedFilesCount:    intPtr(added),
		ExistingFilesCount: intPtr(existing),
		DeletedFilesCount:  intPtr(deleted),
		AddedRowsCount:     int64Ptr(addedRows),
		ExistingRowsCount:  int64Ptr(existingRows),
		DeletedRowsCount:   int64Ptr(deletedRows),
		Partitions:         summaries,
	}, nil
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }
