package manifest

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	"github.com/hamba/avro/v2/ocf"

	"github.com/gear6io/icebergcore/iceberg"
)

// Avro object-container-file metadata keys the manifest header carries,
// mirroring the real Iceberg manifest format's use of OCF metadata for the
// partition spec and format version rather than a leading data record.
const (
	metaFormatVersion = "format-version"
	metaPartitionSpec = "partition-spec"
	metaPartitionID   = "partition-spec-id"
	metaSchema        = "schema"
	metaContent       = "content"
)

// Write encodes entries as a manifest Avro file: an OCF container whose
// header metadata carries the partition spec and schema, and whose body is
// one manifest_entry record per data or delete file.
func Write(w io.Writer, schema *iceberg.Schema, spec *iceberg.PartitionSpec, formatVersion int, content Content, entries []*ManifestEntry) error {
	entrySchema, err := manifestEntryAvroSchema(schema, spec)
	if err != nil {
		return err
	}
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return newError(ErrEncode, "failed to encode partition spec header: "+err.Error())
	}
	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return newError(ErrEncode, "failed to encode schema header: "+err.Error())
	}

	enc, err := ocf.NewEncoder(entrySchema.String(), w,
		ocf.WithMetadata(map[string][]byte{
			metaFormatVersion: []byte(strconv.Itoa(formatVersion)),
			metaPartitionSpec: specJSON,
			metaPartitionID:   []byte(strconv.Itoa(spec.ID)),
			metaSchema:        schemaJSON,
			metaContent:       []byte(strconv.Itoa(int(content))),
		}),
		ocf.WithCodec(ocf.Null),
	)
	if err != nil {
		return newError(ErrEncode, "failed to open manifest writer: "+err.Error())
	}

	for _, e := range entries {
		wire := avroManifestEntry{
			Status:             int32(e.Status),
			SnapshotID:         e.SnapshotID,
			SequenceNumber:     e.SequenceNumber,
			FileSequenceNumber: e.FileSequenceNumber,
			DataFile:           toAvroDataFile(e.DataFile),
		}
		if err := enc.Encode(&wire); err != nil {
			return newError(ErrEncode, "failed to encode manifest entry: "+err.Error())
		}
	}
	return enc.Close()
}

// ReadResult is a manifest file's header plus its decoded entries.
type ReadResult struct {
	FormatVersion int
	PartitionSpec *iceberg.PartitionSpec
	Schema        *iceberg.Schema
	Content       Content
	Entries       []*ManifestEntry
}

// Read decodes a manifest file written by Write.
func Read(r io.Reader) (*ReadResult, error) {
	dec, err := ocf.NewDecoder(r)
	if err != nil {
		return nil, newError(ErrDecode, "failed to open manifest reader: "+err.Error())
	}

	meta := dec.Metadata()
	var spec iceberg.PartitionSpec
	if raw, ok := meta[metaPartitionSpec]; ok {
		if err := json.Unmarshal(raw, &spec); err != nil {
			return nil, newError(ErrDecode, "failed to parse partition-spec header: "+err.Error())
		}
	}
	var schema iceberg.Schema
	if raw, ok := meta[metaSchema]; ok {
		if err := json.Unmarshal(raw, &schema); err != nil {
			return nil, newError(ErrDecode, "failed to parse schema header: "+err.Error())
		}
	}
	result := &ReadResult{
		FormatVersion: mustAtoi(meta[metaFormatVersion]),
		PartitionSpec: &spec,
		Schema:        &schema,
		Content:       Content(mustAtoi(meta[metaContent])),
	}

	for dec.HasNext() {
		var wire avroManifestEntry
		if err := dec.Decode(&wire); err != nil {
			return nil, newError(ErrDecode, "failed to decode manifest entry: "+err.Error())
		}
		result.Entries = append(result.Entries, &ManifestEntry{
			Status:             Status(wire.Status),
			SnapshotID:         wire.SnapshotID,
			SequenceNumber:     wire.SequenceNumber,
			FileSequenceNumber: wire.FileSequenceNumber,
			DataFile:           fromAvroDataFile(wire.DataFile),
		})
	}
	if err := dec.Error(); err != nil {
		return nil, newError(ErrDecode, "manifest decoder error: "+err.Error())
	}
	return result, nil
}

// WriteToBytes is a convenience wrapper around Write for callers (tests,
// in-memory commit paths) that want the encoded manifest as a []byte rather
// than streaming it to a storage backend.
func WriteToBytes(schema *iceberg.Schema, spec *iceberg.PartitionSpec, formatVersion int, content Content, entries []*ManifestEntry) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, schema, spec, formatVersion, content, entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// mustAtoi parses a small trusted integer out of OCF header metadata,
// defaulting to 0 for a missing or corrupt key rather than failing the
// whole read (a manifest's header is advisory; the entries are authoritative).
func mustAtoi(b []byte) int {
	n, err := strconv.Atoi(string(b))
	if err != nil {
		return 0
	}
	return n
}
