// Package table implements the Iceberg table-metadata document, the
// requirement/update commit protocol with optimistic concurrency control,
// and a compare-and-swap-plus-retry commit loop on top of it.
package table

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gear6io/icebergcore/iceberg"
	"github.com/gear6io/icebergcore/pkg/errors"
)

// FormatVersion is the table-metadata format version: 2 or 3.
type FormatVersion int

const (
	FormatV2 FormatVersion = 2
	FormatV3 FormatVersion = 3
)

// RefType distinguishes a branch (mutable head) from a tag (fixed point).
type RefType string

const (
	RefBranch RefType = "branch"
	RefTag    RefType = "tag"
)

// Ref is one entry in table-metadata's `refs` map.
type Ref struct {
	SnapshotID         int64          `json:"snapshot-id"`
	Type               RefType        `json:"type"`
	MaxRefAgeMs        *int64         `json:"max-ref-age-ms,omitempty"`
	MaxSnapshotAgeMs   *int64         `json:"max-snapshot-age-ms,omitempty"`
	MinSnapshotsToKeep *int           `json:"min-snapshots-to-keep,omitempty"`
}

// SnapshotSummary carries the operation classification and its numeric
// counters, rendered as strings per the Iceberg wire format. On the wire
// it is a single flat JSON object with "operation" as one key among the
// counters, not a nested sub-object — see MarshalJSON/UnmarshalJSON.
type SnapshotSummary struct {
	Operation string
	Counters  map[string]string
}

// MarshalJSON flattens Operation and Counters into one JSON object.
func (s *SnapshotSummary) MarshalJSON() ([]byte, error) {
	flat := make(map[string]string, len(s.Counters)+1)
	for k, v := range s.Counters {
		flat[k] = v
	}
	flat["operation"] = s.Operation
	return json.Marshal(flat)
}

// UnmarshalJSON splits the flat summary object back into Operation and
// the remaining counters.
func (s *SnapshotSummary) UnmarshalJSON(data []byte) error {
	var flat map[string]string
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	s.Operation = flat["operation"]
	delete(flat, "operation")
	s.Counters = flat
	return nil
}

// Snapshot is one point in a table's history.
type Snapshot struct {
	SnapshotID       int64            `json:"snapshot-id"`
	ParentSnapshotID *int64           `json:"parent-snapshot-id,omitempty"`
	SequenceNumber   int64            `json:"sequence-number"`
	TimestampMs      int64            `json:"timestamp-ms"`
	ManifestList     string           `json:"manifest-list"`
	SchemaID         int              `json:"schema-id"`
	Summary          *SnapshotSummary `json:"summary"`
	FirstRowID       *int64           `json:"first-row-id,omitempty"`
	AddedRows        *int64           `json:"added-rows,omitempty"`
}

// EncryptionKey is a v3-only table-metadata entry.
type EncryptionKey struct {
	KeyID         string `json:"key-id"`
	EncryptedKey  string `json:"encrypted-key-metadata"`
	EncryptionAlg string `json:"encryption-algorithm,omitempty"`
}

// SnapshotLogEntry and MetadataLogEntry are the append-only audit trails.
type SnapshotLogEntry struct {
	TimestampMs int64 `json:"timestamp-ms"`
	SnapshotID  int64 `json:"snapshot-id"`
}

type MetadataLogEntry struct {
	TimestampMs int64  `json:"timestamp-ms"`
	MetadataFile string `json:"metadata-file"`
}

// Metadata is the root table-metadata document, field for field with the
// exact hyphenated Iceberg key names.
type Metadata struct {
	FormatVersion      FormatVersion           `json:"format-version"`
	TableUUID          string                  `json:"table-uuid"`
	Location           string                  `json:"location"`
	LastSequenceNumber int64                   `json:"last-sequence-number"`
	LastUpdatedMs      int64                   `json:"last-updated-ms"`
	LastColumnID       int                     `json:"last-column-id"`
	Schemas            []*iceberg.Schema       `json:"schemas"`
	CurrentSchemaID    int                     `json:"current-schema-id"`
	PartitionSpecs     []*iceberg.PartitionSpec `json:"partition-specs"`
	DefaultSpecID      int                     `json:"default-spec-id"`
	LastPartitionID    int                     `json:"last-partition-id"`
	SortOrders         []*iceberg.SortOrder    `json:"sort-orders"`
	DefaultSortOrderID int                     `json:"default-sort-order-id"`
	Snapshots          []*Snapshot             `json:"snapshots"`
	CurrentSnapshotID  *int64                  `json:"current-snapshot-id"`
	SnapshotLog        []SnapshotLogEntry      `json:"snapshot-log"`
	MetadataLog        []MetadataLogEntry      `json:"metadata-log"`
	Refs               map[string]*Ref         `json:"refs"`
	Properties         map[string]string       `json:"properties"`
	NextRowID          *int64                  `json:"next-row-id,omitempty"`
	EncryptionKeys     []EncryptionKey         `json:"encryption-keys,omitempty"`
}

// MinPartitionFieldID is the seed value for last-partition-id on a
// brand-new unpartitioned table: one below iceberg.FirstPartitionFieldID,
// the floor every partition field ID must meet.
const MinPartitionFieldID = 999

// PositionDeleteSchemaID and EqualityDeleteSchemaID are the reserved
// negative schema IDs assigned to the internal delete schemas.
const (
	PositionDeleteSchemaID = -1
	EqualityDeleteSchemaID = -2
)

// Reserved position-delete field IDs.
const (
	PositionDeleteFilePathFieldID = 2147483546
	PositionDeletePosFieldID      = 2147483545
)

// CurrentSchema returns the schema named by CurrentSchemaID.
func (m *Metadata) CurrentSchema() (*iceberg.Schema, error) {
	for _, s := range m.Schemas {
		if s.ID == m.CurrentSchemaID {
			return s, nil
		}
	}
	return nil, errors.New(ErrMetadataInvalid, fmt.Sprintf("current-schema-id %d not found in schemas", m.CurrentSchemaID), nil)
}

// DefaultPartitionSpec returns the spec named by DefaultSpecID.
func (m *Metadata) DefaultPartitionSpec() (*iceberg.PartitionSpec, error) {
	for _, s := range m.PartitionSpecs {
		if s.ID == m.DefaultSpecID {
			return s, nil
		}
	}
	return nil, errors.New(ErrMetadataInvalid, fmt.Sprintf("default-spec-id %d not found in partition-specs", m.DefaultSpecID), nil)
}

// DefaultSortOrder returns the order named by DefaultSortOrderID.
func (m *Metadata) DefaultSortOrder() (*iceberg.SortOrder, error) {
	if m.DefaultSortOrderID == 0 {
		return iceberg.UnsortedOrder, nil
	}
	for _, s := range m.SortOrders {
		if s.ID == m.DefaultSortOrderID {
			return s, nil
		}
	}
	return nil, errors.New(ErrMetadataInvalid, fmt.Sprintf("default-sort-order-id %d not found in sort-orders", m.DefaultSortOrderID), nil)
}

// SnapshotByID looks up a snapshot by its ID.
func (m *Metadata) SnapshotByID(id int64) (*Snapshot, bool) {
	for _, s := range m.Snapshots {
		if s.SnapshotID == id {
			return s, true
		}
	}
	return nil, false
}

// Ref resolves a named ref, including the implicit "main" pointing at
// CurrentSnapshotID when refs doesn't carry an explicit entry for it.
func (m *Metadata) Ref(name string) (*Ref, bool) {
	if r, ok := m.Refs[name]; ok {
		return r, true
	}
	if name == "main" && m.CurrentSnapshotID != nil {
		return &Ref{SnapshotID: *m.CurrentSnapshotID, Type: RefBranch}, true
	}
	return nil, false
}

// Validate checks the cross-referential invariants a complete metadata
// document must satisfy.
func (m *Metadata) Validate() error {
	if m.FormatVersion != FormatV2 && m.FormatVersion != FormatV3 {
		return errors.New(ErrMetadataInvalid, fmt.Sprintf("unsupported format-version %d", m.FormatVersion), nil)
	}
	if m.TableUUID == "" {
		return errors.New(ErrMetadataInvalid, "table-uuid must not be empty", nil)
	}

	schemaIDs := map[int]struct{}{}
	maxFieldID := 0
	for _, s := range m.Schemas {
		schemaIDs[s.ID] = struct{}{}
		if h := s.HighestFieldID(); h > maxFieldID {
			maxFieldID = h
		}
	}
	if _, ok := schemaIDs[m.CurrentSchemaID]; !ok {
		return errors.New(ErrMetadataInvalid, "current-schema-id not present in schemas", nil)
	}
	if m.LastColumnID < maxFieldID {
		return errors.New(ErrMetadataInvalid, fmt.Sprintf("last-column-id %d is less than highest field id %d", m.LastColumnID, maxFieldID), nil)
	}

	specIDs := map[int]struct{}{}
	maxPartitionID := MinPartitionFieldID
	for _, spec := range m.PartitionSpecs {
		specIDs[spec.ID] = struct{}{}
		for _, f := range spec.Fields {
			if f.FieldID < iceberg.FirstPartitionFieldID {
				return errors.New(ErrMetadataInvalid, fmt.Sprintf("partition field id %d below minimum %d", f.FieldID, iceberg.FirstPartitionFieldID), nil)
			}
			if f.FieldID > maxPartitionID {
				maxPartitionID = f.FieldID
			}
		}
	}
	if _, ok := specIDs[m.DefaultSpecID]; !ok && len(m.PartitionSpecs) > 0 {
		return errors.New(ErrMetadataInvalid, "default-spec-id not present in partition-specs", nil)
	}
	if m.LastPartitionID < maxPartitionID {
		return errors.New(ErrMetadataInvalid, fmt.Sprintf("last-partition-id %d is less than highest partition field id %d", m.LastPartitionID, maxPartitionID), nil)
	}

	if m.DefaultSortOrderID != 0 {
		found := false
		for _, o := range m.SortOrders {
			if o.ID == m.DefaultSortOrderID {
				found = true
				break
			}
		}
		if !found {
			return errors.New(ErrMetadataInvalid, "default-sort-order-id not present in sort-orders", nil)
		}
	}

	snapIDs := map[int64]struct{}{}
	var maxSeq int64
	for _, s := range m.Snapshots {
		snapIDs[s.SnapshotID] = struct{}{}
		if s.SequenceNumber > maxSeq {
			maxSeq = s.SequenceNumber
		}
	}
	if m.CurrentSnapshotID != nil {
		if _, ok := snapIDs[*m.CurrentSnapshotID]; !ok {
			return errors.New(ErrMetadataInvalid, "current-snapshot-id not present in snapshots", nil)
		}
	}
	if m.LastSequenceNumber < maxSeq {
		return errors.New(ErrMetadataInvalid, "last-sequence-number is less than the highest snapshot sequence number", nil)
	}

	for name, r := range m.Refs {
		if _, ok := snapIDs[r.SnapshotID]; !ok {
			return errors.New(ErrMetadataInvalid, fmt.Sprintf("ref %q points at unknown snapshot-id %d", name, r.SnapshotID), nil)
		}
	}

	if m.FormatVersion == FormatV3 && m.NextRowID != nil && *m.NextRowID < 0 {
		return errors.New(ErrMetadataInvalid, "next-row-id must be non-negative", nil)
	}

	return nil
}

// Clone produces a deep-enough copy of m for use as the base of a candidate
// metadata value during a commit: slices and maps are copied, but schema/
// spec/order pointers are shared (they're immutable once appended).
func (m *Metadata) Clone() *Metadata {
	c := *m
	c.Schemas = append([]*iceberg.Schema(nil), m.Schemas...)
	c.PartitionSpecs = append([]*iceberg.PartitionSpec(nil), m.PartitionSpecs...)
	c.SortOrders = append([]*iceberg.SortOrder(nil), m.SortOrders...)
	c.Snapshots = append([]*Snapshot(nil), m.Snapshots...)
	c.SnapshotLog = append([]SnapshotLogEntry(nil), m.SnapshotLog...)
	c.MetadataLog = append([]MetadataLogEntry(nil), m.MetadataLog...)
	c.Refs = make(map[string]*Ref, len(m.Refs))
	for k, v := range m.Refs {
		rc := *v
		c.Refs[k] = &rc
	}
	c.Properties = make(map[string]string, len(m.Properties))
	for k, v := range m.Properties {
		c.Properties[k] = v
	}
	return &c
}

// NewTableMetadata creates a brand-new table's initial metadata document
// with a single schema, an unpartitioned default spec, and no snapshots.
func NewTableMetadata(tableUUID, location string, schema *iceberg.Schema, formatVersion FormatVersion) *Metadata {
	now := time.Now().UnixMilli()
	unpartitioned := &iceberg.PartitionSpec{ID: 0, Fields: nil}
	m := &Metadata{
		FormatVersion:      formatVersion,
		TableUUID:          tableUUID,
		Location:           location,
		LastSequenceNumber: 0,
		LastUpdatedMs:      now,
		LastColumnID:       schema.HighestFieldID(),
		Schemas:            []*iceberg.Schema{schema},
		CurrentSchemaID:    schema.ID,
		PartitionSpecs:     []*iceberg.PartitionSpec{unpartitioned},
		DefaultSpecID:      0,
		LastPartitionID:    MinPartitionFieldID,
		SortOrders:         []*iceberg.SortOrder{iceberg.UnsortedOrder},
		DefaultSortOrderID: 0,
		Snapshots:          nil,
		CurrentSnapshotID:  nil,
		Refs:               map[string]*Ref{},
		Properties:         map[string]string{},
	}
	if formatVersion == FormatV3 {
		zero := int64(0)
		m.NextRowID = &zero
	}
	return m
}
