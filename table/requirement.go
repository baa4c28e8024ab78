package table

import (
	"fmt"

	"github.com/gear6io/icebergcore/pkg/errors"
)

// RequirementKind names one of the assertion kinds a commit can carry.
type RequirementKind string

const (
	ReqAssertCreate                RequirementKind = "assert-create"
	ReqAssertTableUUID             RequirementKind = "assert-table-uuid"
	ReqAssertRefSnapshotID         RequirementKind = "assert-ref-snapshot-id"
	ReqAssertLastAssignedFieldID   RequirementKind = "assert-last-assigned-field-id"
	ReqAssertLastAssignedPartitionID RequirementKind = "assert-last-assigned-partition-id"
	ReqAssertCurrentSchemaID       RequirementKind = "assert-current-schema-id"
	ReqAssertDefaultSpecID         RequirementKind = "assert-default-spec-id"
	ReqAssertDefaultSortOrderID    RequirementKind = "assert-default-sort-order-id"
)

// Requirement is one precondition a commit asserts against the currently
// loaded metadata before any update is applied.
type Requirement struct {
	Kind RequirementKind

	TableUUID    string
	RefName      string
	SnapshotID   *int64 // nil means "ref must not exist"
	LastFieldID  int
	LastPartitionID int
	SchemaID     int
	SpecID       int
	SortOrderID  int
}

// AssertCreate asserts that the table does not yet exist.
func AssertCreate() Requirement { return Requirement{Kind: ReqAssertCreate} }

// AssertTableUUID asserts the loaded metadata's table-uuid matches.
func AssertTableUUID(uuid string) Requirement {
	return Requirement{Kind: ReqAssertTableUUID, TableUUID: uuid}
}

// AssertRefSnapshotID asserts that ref currently points at snapshotID, or
// does not exist when snapshotID is nil.
func AssertRefSnapshotID(ref string, snapshotID *int64) Requirement {
	return Requirement{Kind: ReqAssertRefSnapshotID, RefName: ref, SnapshotID: snapshotID}
}

func AssertLastAssignedFieldID(id int) Requirement {
	return Requirement{Kind: ReqAssertLastAssignedFieldID, LastFieldID: id}
}

func AssertLastAssignedPartitionID(id int) Requirement {
	return Requirement{Kind: ReqAssertLastAssignedPartitionID, LastPartitionID: id}
}

func AssertCurrentSchemaID(id int) Requirement {
	return Requirement{Kind: ReqAssertCurrentSchemaID, SchemaID: id}
}

func AssertDefaultSpecID(id int) Requirement {
	return Requirement{Kind: ReqAssertDefaultSpecID, SpecID: id}
}

func AssertDefaultSortOrderID(id int) Requirement {
	return Requirement{Kind: ReqAssertDefaultSortOrderID, SortOrderID: id}
}

// Check evaluates r against the currently loaded metadata. m is nil for an
// as-yet-uncreated table, which only AssertCreate accepts.
func (r Requirement) Check(m *Metadata) error {
	switch r.Kind {
	case ReqAssertCreate:
		if m != nil {
			return errors.New(ErrCommitConflict, "table already exists", nil)
		}
		return nil
	}

	if m == nil {
		return errors.New(ErrCommitConflict, fmt.Sprintf("requirement %s checked against nonexistent table", r.Kind), nil)
	}

	switch r.Kind {
	case ReqAssertTableUUID:
		if m.TableUUID != r.TableUUID {
			return errors.New(ErrCommitConflict, fmt.Sprintf("table-uuid mismatch: expected %s, got %s", r.TableUUID, m.TableUUID), nil)
		}
	case ReqAssertRefSnapshotID:
		ref, ok := m.Ref(r.RefName)
		if r.SnapshotID == nil {
			if ok {
				return errors.New(ErrCommitConflict, fmt.Sprintf("ref %q exists but requirement asserts it does not", r.RefName), nil)
			}
			return nil
		}
		if !ok {
			return errors.New(ErrCommitConflict, fmt.Sprintf("ref %q does not exist", r.RefName), nil)
		}
		if ref.SnapshotID != *r.SnapshotID {
			return errors.New(ErrCommitConflict, fmt.Sprintf("ref %q points at %d, expected %d", r.RefName, ref.SnapshotID, *r.SnapshotID), nil)
		}
	case ReqAssertLastAssignedFieldID:
		if m.LastColumnID != r.LastFieldID {
			return errors.New(ErrCommitConflict, fmt.Sprintf("last-column-id is %d, expected %d", m.LastColumnID, r.LastFieldID), nil)
		}
	case ReqAssertLastAssignedPartitionID:
		if m.LastPartitionID != r.LastPartitionID {
			return errors.New(ErrCommitConflict, fmt.Sprintf("last-partition-id is %d, expected %d", m.LastPartitionID, r.LastPartitionID), nil)
		}
	case ReqAssertCurrentSchemaID:
		if m.CurrentSchemaID != r.SchemaID {
			return errors.New(ErrCommitConflict, fmt.Sprintf("current-schema-id is %d, expected %d", m.CurrentSchemaID, r.SchemaID), nil)
		}
	case ReqAssertDefaultSpecID:
		if m.DefaultSpecID != r.SpecID {
			return errors.New(ErrCommitConflict, fmt.Sprintf("default-spec-id is %d, expected %d", m.DefaultSpecID, r.SpecID), nil)
		}
	case ReqAssertDefaultSortOrderID:
		if m.DefaultSortOrderID != r.SortOrderID {
			return errors.New(ErrCommitConflict, fmt.Sprintf("default-sort-order-id is %d, expected %d", m.DefaultSortOrderID, r.SortOrderID), nil)
		}
	default:
		return errors.New(ErrRequirementFailed, fmt.Sprintf("unknown requirement kind %q", r.Kind), nil)
	}
	return nil
}

// CheckAll evaluates every requirement, failing on the first violation.
func CheckAll(reqs []Requirement, m *Metadata) error {
	for _, r := range reqs {
		if err := r.Check(m); err != nil {
			return err
		}
	}
	return nil
}
