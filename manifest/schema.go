package manifest

import (
	"fmt"

	avro "github.com/hamba/avro/v2"

	"github.com/gear6io/icebergcore/iceberg"
)

// Stat-map key/value field IDs. These are internal to this module's Avro
// encoding (Iceberg represents a map<int,T> as an array of key/value
// records, same as iceberg.ToAvroSchema does for non-string-keyed maps) and
// do not need to match any external reader's numbering.
const (
	columnSizeKV     = 117
	valueCountKV     = 119
	nullCountKV      = 121
	nanCountKV       = 123
	lowerBoundKV     = 125
	upperBoundKV     = 127
	partitionSummary = 129
)

func optional(s avro.Schema) (avro.Schema, error) {
	return avro.NewUnionSchema([]avro.Schema{&avro.NullSchema{}, s})
}

func mustField(name string, s avro.Schema, fieldID int) *avro.Field {
	f, err := avro.NewField(name, s, avro.WithProps(map[string]any{"field-id": fieldID}))
	if err != nil {
		panic(fmt.Sprintf("manifest: building avro field %q: %v", name, err))
	}
	return f
}

func intLongMapSchema(name string, baseID int) (avro.Schema, error) {
	return keyValueArraySchema(name, baseID, avro.NewPrimitiveSchema(avro.Long, nil))
}

func intBytesMapSchema(name string, baseID int) (avro.Schema, error) {
	return keyValueArraySchema(name, baseID, avro.NewPrimitiveSchema(avro.Bytes, nil))
}

func keyValueArraySchema(name string, baseID int, valSchema avro.Schema) (avro.Schema, error) {
	keyField := mustField("key", avro.NewPrimitiveSchema(avro.Int, nil), baseID)
	valField := mustField("value", valSchema, baseID+1)
	rec, err := avro.NewRecordSchema(name, "", []*avro.Field{keyField, valField})
	if err != nil {
		return nil, err
	}
	return avro.NewArraySchema(rec), nil
}

// partitionAvroSchema builds the Avro record schema for a partition tuple,
// reusing iceberg.ToAvroSchema's field-ID-tagging converter over the
// partition spec's result struct instead of a table column schema.
func partitionAvroSchema(schema *iceberg.Schema, spec *iceberg.PartitionSpec) (avro.Schema, error) {
	st, err := spec.ResultStruct(schema)
	if err != nil {
		return nil, err
	}
	partitionSchema := iceberg.NewSchema(spec.ID, st.Fields...)
	return iceberg.ToAvroSchema(fmt.Sprintf("r%d_partition", spec.ID), partitionSchema)
}

// dataFileAvroSchema builds the "r2" data_file record, parameterized by the
// partition tuple schema for the manifest's partition spec.
func dataFileAvroSchema(partitionSchema avro.Schema) (avro.Schema, error) {
	columnSizes, err := intLongMapSchema("k117_v118", columnSizeKV)
	if err != nil {
		return nil, err
	}
	valueCounts, err := intLongMapSchema("k119_v120", valueCountKV)
	if err != nil {
		return nil, err
	}
	nullCounts, err := intLongMapSchema("k121_v122", nullCountKV)
	if err != nil {
		return nil, err
	}
	nanCounts, err := intLongMapSchema("k123_v124", nanCountKV)
	if err != nil {
		return nil, err
	}
	lowerBounds, err := intBytesMapSchema("k125_v126", lowerBoundKV)
	if err != nil {
		return nil, err
	}
	upperBounds, err := intBytesMapSchema("k127_v128", upperBoundKV)
	if err != nil {
		return nil, err
	}

	optBytes, err := optional(avro.NewPrimitiveSchema(avro.Bytes, nil))
	if err != nil {
		return nil, err
	}
	optSplitOffsets, err := optional(avro.NewArraySchema(avro.NewPrimitiveSchema(avro.Long, nil)))
	if err != nil {
		return nil, err
	}
	optEqualityIDs, err := optional(avro.NewArraySchema(avro.NewPrimitiveSchema(avro.Int, nil)))
	if err != nil {
		return nil, err
	}
	optInt, err := optional(avro.NewPrimitiveSchema(avro.Int, nil))
	if err != nil {
		return nil, err
	}
	optLong, err := optional(avro.NewPrimitiveSchema(avro.Long, nil))
	if err != nil {
		return nil, err
	}
	optString, err := optional(avro.NewPrimitiveSchema(avro.String, nil))
	if err != nil {
		return nil, err
	}

	fields := []*avro.Field{
		mustField("content", avro.NewPrimitiveSchema(avro.Int, nil), 134),
		mustField("file_path", avro.NewPrimitiveSchema(avro.String, nil), 100),
		mustField("file_format", avro.NewPrimitiveSchema(avro.String, nil), 101),
		mustField("partition", partitionSchema, 102),
		mustField("record_count", avro.NewPrimitiveSchema(avro.Long, nil), 103),
		mustField("file_size_in_bytes", avro.NewPrimitiveSchema(avro.Long, nil), 104),
		mustField("column_sizes", columnSizes, 108),
		mustField("value_counts", valueCounts, 109),
		mustField("null_value_counts", nullCounts, 110),
		mustField("nan_value_counts", nanCounts, 137),
		mustField("lower_bounds", lowerBounds, 125),
		mustField("upper_bounds", upperBounds, 128),
		mustField("key_metadata", optBytes, 131),
		mustField("split_offsets", optSplitOffsets, 132),
		mustField("equality_ids", optEqualityIDs, 135),
		mustField("sort_order_id", optInt, 140),
		mustField("content_offset", optLong, 142),
		mustField("content_size_in_bytes", optLong, 143),
		mustField("referenced_data_file", optString, 144),
	}
	return avro.NewRecordSchema("r2", "", fields)
}

// manifestEntryAvroSchema builds the full manifest_entry record for the
// given partition spec.
func manifestEntryAvroSchema(schema *iceberg.Schema, spec *iceberg.PartitionSpec) (avro.Schema, error) {
	partitionSchema, err := partitionAvroSchema(schema, spec)
	if err != nil {
		return nil, err
	}
	dataFileSchema, err := dataFileAvroSchema(partitionSchema)
	if err != nil {
		return nil, err
	}
	optLong, err := optional(avro.NewPrimitiveSchema(avro.Long, nil))
	if err != nil {
		return nil, err
	}
	fields := []*avro.Field{
		mustField("status", avro.NewPrimitiveSchema(avro.Int, nil), 0),
		mustField("snapshot_id", avro.NewPrimitiveSchema(avro.Long, nil), 1),
		mustField("sequence_number", avro.NewPrimitiveSchema(avro.Long, nil), 3),
		mustField("file_sequence_number", optLong, 4),
		mustField("data_file", dataFileSchema, 2),
	}
	return avro.NewRecordSchema("manifest_entry", "", fields)
}

// partitionFieldSummaryAvroSchema builds the PartitionFieldSummary record
// nested inside a manifest-file's partitions array.
func partitionFieldSummaryAvroSchema() (avro.Schema, error) {
	optBytes, err := optional(avro.NewPrimitiveSchema(avro.Bytes, nil))
	if err != nil {
		return nil, err
	}
	optBool, err := optional(avro.NewPrimitiveSchema(avro.Boolean, nil))
	if err != nil {
		return nil, err
	}
	fields := []*avro.Field{
		mustField("contains_null", avro.NewPrimitiveSchema(avro.Boolean, nil), 509),
		mustField("contains_nan", optBool, 518),
		mustField("lower_bound", optBytes, 510),
		mustField("upper_bound", optBytes, 511),
	}
	return avro.NewRecordSchema("r508", "", fields)
}

// manifestFileAvroSchema builds the manifest_file record referenced from a
// manifest-list.
func manifestFileAvroSchema() (avro.Schema, error) {
	summary, err := partitionFieldSummaryAvroSchema()
	if err != nil {
		return nil, err
	}
	optInt, err := optional(avro.NewPrimitiveSchema(avro.Int, nil))
	if err != nil {
		return nil, err
	}
	fields := []*avro.Field{
		mustField("manifest_path", avro.NewPrimitiveSchema(avro.String, nil), 500),
		mustField("manifest_length", avro.NewPrimitiveSchema(avro.Long, nil), 501),
		mustField("partition_spec_id", avro.NewPrimitiveSchema(avro.Int, nil), 502),
		mustField("content", avro.NewPrimitiveSchema(avro.Int, nil), 517),
		mustField("sequence_number", avro.NewPrimitiveSchema(avro.Long, nil), 515),
		mustField("min_sequence_number", avro.NewPrimitiveSchema(avro.Long, nil), 516),
		mustField("added_snapshot_id", avro.NewPrimitiveSchema(avro.Long, nil), 503),
		mustField("added_files_count", optInt, 504),
		mustField("existing_files_count", optInt, 505),
		mustField("deleted_files_count", optInt, 506),
		mustField("added_rows_count", optional2(avro.NewPrimitiveSchema(avro.Long, nil)), 512),
		mustField("existing_rows_count", optional2(avro.NewPrimitiveSchema(avro.Long, nil)), 513),
		mustField("deleted_rows_count", optional2(avro.NewPrimitiveSchema(avro.Long, nil)), 514),
		mustField("partitions", optional2(avro.NewArraySchema(summary)), 507),
	}
	return avro.NewRecordSchema("manifest_file", "", fields)
}

// optional2 is optional without the error return, for call sites where a
// NullSchema/UnionSchema construction cannot fail.
func optional2(s avro.Schema) avro.Schema {
	u, err := avro.NewUnionSchema([]avro.Schema{&avro.NullSchema{}, s})
	if err != nil {
		panic(fmt.Sprintf("manifest: building optional schema: %v", err))
	}
	return u
}
