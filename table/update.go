package table

import (
	"fmt"
	"time"

	"github.com/gear6io/icebergcore/iceberg"
	"github.com/gear6io/icebergcore/pkg/errors"
)

// UpdateKind names one of the metadata mutation kinds a commit can carry.
type UpdateKind string

const (
	UpdAddSchema            UpdateKind = "add-schema"
	UpdSetCurrentSchema     UpdateKind = "set-current-schema"
	UpdAddPartitionSpec     UpdateKind = "add-partition-spec"
	UpdSetDefaultSpec       UpdateKind = "set-default-spec"
	UpdAddSortOrder         UpdateKind = "add-sort-order"
	UpdSetDefaultSortOrder  UpdateKind = "set-default-sort-order"
	UpdAddSnapshot          UpdateKind = "add-snapshot"
	UpdSetSnapshotRef       UpdateKind = "set-snapshot-ref"
	UpdRemoveSnapshots      UpdateKind = "remove-snapshots"
	UpdRemoveSnapshotRef    UpdateKind = "remove-snapshot-ref"
	UpdSetLocation          UpdateKind = "set-location"
	UpdSetProperties        UpdateKind = "set-properties"
	UpdRemoveProperties     UpdateKind = "remove-properties"
	UpdUpgradeFormatVersion UpdateKind = "upgrade-format-version"
)

// Update is one pure mutation folded into a candidate metadata document
// during a commit. Each Apply call mutates m in place; callers operate on
// a Clone() so the original stays untouched if the commit later fails.
type Update struct {
	Kind UpdateKind

	Schema         *iceberg.Schema
	SchemaID       int
	PartitionSpec  *iceberg.PartitionSpec
	SpecID         int
	SortOrder      *iceberg.SortOrder
	SortOrderID    int
	Snapshot       *Snapshot
	RefName        string
	Ref            *Ref
	SnapshotIDs    []int64
	Location       string
	Properties     map[string]string
	PropertyKeys   []string
	FormatVersion  FormatVersion
}

func AddSchema(s *iceberg.Schema) Update { return Update{Kind: UpdAddSchema, Schema: s} }
func SetCurrentSchema(id int) Update     { return Update{Kind: UpdSetCurrentSchema, SchemaID: id} }
func AddPartitionSpec(s *iceberg.PartitionSpec) Update {
	return Update{Kind: UpdAddPartitionSpec, PartitionSpec: s}
}
func SetDefaultSpec(id int) Update { return Update{Kind: UpdSetDefaultSpec, SpecID: id} }
func AddSortOrder(o *iceberg.SortOrder) Update {
	return Update{Kind: UpdAddSortOrder, SortOrder: o}
}
func SetDefaultSortOrder(id int) Update { return Update{Kind: UpdSetDefaultSortOrder, SortOrderID: id} }
func AddSnapshot(s *Snapshot) Update    { return Update{Kind: UpdAddSnapshot, Snapshot: s} }
func SetSnapshotRef(name string, ref *Ref) Update {
	return Update{Kind: UpdSetSnapshotRef, RefName: name, Ref: ref}
}
func RemoveSnapshots(ids []int64) Update { return Update{Kind: UpdRemoveSnapshots, SnapshotIDs: ids} }
func RemoveSnapshotRef(name string) Update {
	return Update{Kind: UpdRemoveSnapshotRef, RefName: name}
}
func SetLocation(loc string) Update { return Update{Kind: UpdSetLocation, Location: loc} }
func SetProperties(props map[string]string) Update {
	return Update{Kind: UpdSetProperties, Properties: props}
}
func RemoveProperties(keys []string) Update {
	return Update{Kind: UpdRemoveProperties, PropertyKeys: keys}
}
func UpgradeFormatVersion(v FormatVersion) Update {
	return Update{Kind: UpdUpgradeFormatVersion, FormatVersion: v}
}

// Apply folds u into m, mutating it in place.
func (u Update) Apply(m *Metadata) error {
	switch u.Kind {
	case UpdAddSchema:
		for _, s := range m.Schemas {
			if s.ID == u.Schema.ID {
				return errors.New(ErrUpdateInvalid, fmt.Sprintf("schema id %d already present", s.ID), nil)
			}
		}
		if h := u.Schema.HighestFieldID(); h > m.LastColumnID {
			m.LastColumnID = h
		}
		m.Schemas = append(m.Schemas, u.Schema)

	case UpdSetCurrentSchema:
		id := u.SchemaID
		if id == -1 && len(m.Schemas) > 0 {
			id = m.Schemas[len(m.Schemas)-1].ID
		}
		found := false
		for _, s := range m.Schemas {
			if s.ID == id {
				found = true
				break
			}
		}
		if !found {
			return errors.New(ErrUpdateInvalid, fmt.Sprintf("schema id %d not found", id), nil)
		}
		m.CurrentSchemaID = id

	case UpdAddPartitionSpec:
		for _, s := range m.PartitionSpecs {
			if s.ID == u.PartitionSpec.ID {
				return errors.New(ErrUpdateInvalid, fmt.Sprintf("partition spec id %d already present", s.ID), nil)
			}
		}
		for _, f := range u.PartitionSpec.Fields {
			if f.FieldID > m.LastPartitionID {
				m.LastPartitionID = f.FieldID
			}
		}
		m.PartitionSpecs = append(m.PartitionSpecs, u.PartitionSpec)

	case UpdSetDefaultSpec:
		id := u.SpecID
		if id == -1 && len(m.PartitionSpecs) > 0 {
			id = m.PartitionSpecs[len(m.PartitionSpecs)-1].ID
		}
		found := false
		for _, s := range m.PartitionSpecs {
			if s.ID == id {
				found = true
				break
			}
		}
		if !found {
			return errors.New(ErrUpdateInvalid, fmt.Sprintf("partition spec id %d not found", id), nil)
		}
		m.DefaultSpecID = id

	case UpdAddSortOrder:
		for _, o := range m.SortOrders {
			if o.ID == u.SortOrder.ID {
				return errors.New(ErrUpdateInvalid, fmt.Sprintf("sort order id %d already present", o.ID), nil)
			}
		}
		m.SortOrders = append(m.SortOrders, u.SortOrder)

	case UpdSetDefaultSortOrder:
		id := u.SortOrderID
		if id == -1 && len(m.SortOrders) > 0 {
			id = m.SortOrders[len(m.SortOrders)-1].ID
		}
		if id != 0 {
			found := false
			for _, o := range m.SortOrders {
				if o.ID == id {
					found = true
					break
				}
			}
			if !found {
				return errors.New(ErrUpdateInvalid, fmt.Sprintf("sort order id %d not found", id), nil)
			}
		}
		m.DefaultSortOrderID = id

	case UpdAddSnapshot:
		for _, s := range m.Snapshots {
			if s.SnapshotID == u.Snapshot.SnapshotID {
				return errors.New(ErrUpdateInvalid, fmt.Sprintf("snapshot id %d already present", s.SnapshotID), nil)
			}
		}
		if u.Snapshot.SequenceNumber <= m.LastSequenceNumber && len(m.Snapshots) > 0 {
			return errors.New(ErrUpdateInvalid, "snapshot sequence-number must be strictly increasing", nil)
		}
		m.Snapshots = append(m.Snapshots, u.Snapshot)
		if u.Snapshot.SequenceNumber > m.LastSequenceNumber {
			m.LastSequenceNumber = u.Snapshot.SequenceNumber
		}

	case UpdSetSnapshotRef:
		if _, ok := m.SnapshotByID(u.Ref.SnapshotID); !ok {
			return errors.New(ErrUpdateInvalid, fmt.Sprintf("snapshot id %d not found", u.Ref.SnapshotID), nil)
		}
		if m.Refs == nil {
			m.Refs = map[string]*Ref{}
		}
		m.Refs[u.RefName] = u.Ref
		if u.RefName == "main" {
			id := u.Ref.SnapshotID
			m.CurrentSnapshotID = &id
			m.SnapshotLog = append(m.SnapshotLog, SnapshotLogEntry{TimestampMs: time.Now().UnixMilli(), SnapshotID: id})
		}

	case UpdRemoveSnapshots:
		remove := map[int64]struct{}{}
		for _, id := range u.SnapshotIDs {
			remove[id] = struct{}{}
		}
		kept := m.Snapshots[:0:0]
		for _, s := range m.Snapshots {
			if _, drop := remove[s.SnapshotID]; !drop {
				kept = append(kept, s)
			}
		}
		m.Snapshots = kept

	case UpdRemoveSnapshotRef:
		delete(m.Refs, u.RefName)
		if u.RefName == "main" {
			m.CurrentSnapshotID = nil
		}

	case UpdSetLocation:
		m.Location = u.Location

	case UpdSetProperties:
		if m.Properties == nil {
			m.Properties = map[string]string{}
		}
		for k, v := range u.Properties {
			m.Properties[k] = v
		}

	case UpdRemoveProperties:
		for _, k := range u.PropertyKeys {
			delete(m.Properties, k)
		}

	case UpdUpgradeFormatVersion:
		if u.FormatVersion < m.FormatVersion {
			return errors.New(ErrUpdateInvalid, "cannot downgrade format-version", nil)
		}
		m.FormatVersion = u.FormatVersion
		if u.FormatVersion == FormatV3 && m.NextRowID == nil {
			zero := int64(0)
			m.NextRowID = &zero
		}

	default:
		return errors.New(ErrUpdateInvalid, fmt.Sprintf("unknown update kind %q", u.Kind), nil)
	}
	return nil
}

// ApplyAll folds every update into m in order, stopping at the first error.
func ApplyAll(updates []Update, m *Metadata) error {
	for _, u := range updates {
		if err := u.Apply(m); err != nil {
			return err
		}
	}
	return nil
}
