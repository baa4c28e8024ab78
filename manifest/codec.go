package manifest

import (
	avro "github.com/hamba/avro/v2"
)

// The Avro record schemas built in schema.go encode maps as arrays of
// key/value records (Avro has no int-keyed map type); these mirror that
// shape on the Go side so hamba/avro/v2's reflection codec can bind
// directly to struct fields instead of a generic map[string]interface{}.
type avroIntLong struct {
	Key   int32 `avro:"key"`
	Value int64 `avro:"value"`
}

type avroIntBytes struct {
	Key   int32 `avro:"key"`
	Value []byte `avro:"value"`
}

// avroDataFile is the wire shape of the "r2" data_file record. Partition is
// decoded generically since its record shape varies per partition spec and
// is not known at compile time.
type avroDataFile struct {
	Content            int32          `avro:"content"`
	FilePath           string         `avro:"file_path"`
	FileFormat         string         `avro:"file_format"`
	Partition          map[string]any `avro:"partition"`
	RecordCount        int64          `avro:"record_count"`
	FileSizeInBytes    int64          `avro:"file_size_in_bytes"`
	ColumnSizes        []avroIntLong  `avro:"column_sizes"`
	ValueCounts        []avroIntLong  `avro:"value_counts"`
	NullValueCounts    []avroIntLong  `avro:"null_value_counts"`
	NanValueCounts     []avroIntLong  `avro:"nan_value_counts"`
	LowerBounds        []avroIntBytes `avro:"lower_bounds"`
	UpperBounds        []avroIntBytes `avro:"upper_bounds"`
	KeyMetadata        []byte         `avro:"key_metadata"`
	SplitOffsets       []int64        `avro:"split_offsets"`
	EqualityIDs        []int32        `avro:"equality_ids"`
	SortOrderID        *int32         `avro:"sort_order_id"`
	ContentOffset      *int64         `avro:"content_offset"`
	ContentSizeInBytes *int64         `avro:"content_size_in_bytes"`
	ReferencedDataFile *string        `avro:"referenced_data_file"`
}

type avroManifestEntry struct {
	Status             int32        `avro:"status"`
	SnapshotID         int64        `avro:"snapshot_id"`
	SequenceNumber     int64        `avro:"sequence_number"`
	FileSequenceNumber *int64       `avro:"file_sequence_number"`
	DataFile           avroDataFile `avro:"data_file"`
}

func toIntLongPairs(m map[int]int64) []avroIntLong {
	if len(m) == 0 {
		return nil
	}
	out := make([]avroIntLong, 0, len(m))
	for k, v := range m {
		out = append(out, avroIntLong{Key: int32(k), Value: v})
	}
	return out
}

func fromIntLongPairs(pairs []avroIntLong) map[int]int64 {
	if len(pairs) == 0 {
		return nil
	}
	out := make(map[int]int64, len(pairs))
	for _, p := range pairs {
		out[int(p.Key)] = p.Value
	}
	return out
}

func toIntBytesPairs(m map[int][]byte) []avroIntBytes {
	if len(m) == 0 {
		return nil
	}
	out := make([]avroIntBytes, 0, len(m))
	for k, v := range m {
		out = append(out, avroIntBytes{Key: int32(k), Value: v})
	}
	return out
}

func fromIntBytesPairs(pairs []avroIntBytes) map[int][]byte {
	if len(pairs) == 0 {
		return nil
	}
	out := make(map[int][]byte, len(pairs))
	for _, p := range pairs {
		out[int(p.Key)] = p.Value
	}
	return out
}

func toInt32Slice(s []int) []int32 {
	if len(s) == 0 {
		return nil
	}
	out := make([]int32, len(s))
	for i, v := range s {
		out[i] = int32(v)
	}
	return out
}

func fromInt32Slice(s []int32) []int {
	if len(s) == 0 {
		return nil
	}
	out := make([]int, len(s))
	for i, v := range s {
		out[i] = int(v)
	}
	return out
}

func toIntPtr32(p *int) *int32 {
	if p == nil {
		return nil
	}
	v := int32(*p)
	return &v
}

func fromIntPtr32(p *int32) *int {
	if p == nil {
		return nil
	}
	v := int(*p)
	return &v
}

func toAvroDataFile(f *DataFile) avroDataFile {
	return avroDataFile{
		Content:            int32(f.Content),
		FilePath:           f.FilePath,
		FileFormat:         string(f.FileFormat),
		Partition:          f.Partition,
		RecordCount:        f.RecordCount,
		FileSizeInBytes:    f.FileSizeInBytes,
		ColumnSizes:        toIntLongPairs(f.ColumnSizes),
		ValueCounts:        toIntLongPairs(f.ValueCounts),
		NullValueCounts:    toIntLongPairs(f.NullValueCounts),
		NanValueCounts:     toIntLongPairs(f.NanValueCounts),
		LowerBounds:        toIntBytesPairs(f.LowerBounds),
		UpperBounds:        toIntBytesPairs(f.UpperBounds),
		KeyMetadata:        f.KeyMetadata,
		SplitOffsets:       f.SplitOffsets,
		EqualityIDs:        toInt32Slice(f.EqualityIDs),
		SortOrderID:        toIntPtr32(f.SortOrderID),
		ContentOffset:      f.ContentOffset,
		ContentSizeInBytes: f.ContentSizeInBytes,
		ReferencedDataFile: f.ReferencedDataFile,
	}
}

func fromAvroDataFile(a avroDataFile) *DataFile {
	return &DataFile{
		Content:            Content(a.Content),
		FilePath:           a.FilePath,
		FileFormat:         FileFormat(a.FileFormat),
		Partition:          a.Partition,
		RecordCount:        a.RecordCount,
		FileSizeInBytes:    a.FileSizeInBytes,
		ColumnSizes:        fromIntLongPairs(a.ColumnSizes),
		ValueCounts:        fromIntLongPairs(a.ValueCounts),
		NullValueCounts:    fromIntLongPairs(a.NullValueCounts),
		NanValueCounts:     fromIntLongPairs(a.NanValueCounts),
		LowerBounds:        fromIntBytesPairs(a.LowerBounds),
		UpperBounds:        fromIntBytesPairs(a.UpperBounds),
		KeyMetadata:        a.KeyMetadata,
		SplitOffsets:       a.SplitOffsets,
		EqualityIDs:        fromInt32Slice(a.EqualityIDs),
		SortOrderID:        fromIntPtr32(a.SortOrderID),
		ContentOffset:      a.ContentOffset,
		ContentSizeInBytes: a.ContentSizeInBytes,
		ReferencedDataFile: a.ReferencedDataFile,
	}
}

// EncodeEntry encodes a manifest entry to its Avro binary form using the
// given schema (built for the entry's partition spec by
// manifestEntryAvroSchema).
func EncodeEntry(schema avro.Schema, e *ManifestEntry) ([]byte, error) {
	wire := avroManifestEntry{
		Status:             int32(e.Status),
		SnapshotID:         e.SnapshotID,
		SequenceNumber:     e.SequenceNumber,
		FileSequenceNumber: e.FileSequenceNumber,
		DataFile:           toAvroDataFile(e.DataFile),
	}
	data, err := avro.Marshal(schema, &wire)
	if err != nil {
		return nil, newError(ErrEncode, "failed to encode manifest entry: "+err.Error())
	}
	return data, nil
}

// DecodeEntry decodes a manifest entry previously written with EncodeEntry.
func DecodeEntry(schema avro.Schema, data []byte) (*ManifestEntry, error) {
	var wire avroManifestEntry
	if err := avro.Unmarshal(schema, data, &wire); err != nil {
		return nil, newError(ErrDecode, "failed to decode manifest entry: "+err.Error())
	}
	return &ManifestEntry{
		Status:             Status(wire.Status),
		SnapshotID:         wire.SnapshotID,
		SequenceNumber:     wire.SequenceNumber,
		FileSequenceNumber: wire.FileSequenceNumber,
		DataFile:           fromAvroDataFile(wire.DataFile),
	}, nil
}
