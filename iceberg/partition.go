package iceberg

import (
	"fmt"
	"sort"

	"github.com/gear6io/icebergcore/pkg/errors"
)

// PartitionField maps one source schema field through a transform into one
// partition-struct field, carrying its own stable (>= 1000) field ID.
type PartitionField struct {
	SourceID  int
	FieldID   int
	Name      string
	Transform Transform
}

// PartitionSpec is an ordered list of partition fields plus a spec ID.
type PartitionSpec struct {
	ID     int
	Fields []PartitionField
}

// FirstPartitionFieldID is the lowest field ID partition fields may use,
// reserved distinct from schema column IDs.
const FirstPartitionFieldID = 1000

// PartitionSpecBuilder builds a PartitionSpec against a schema, allocating
// partition field IDs from a per-table counter (distinct from the schema's
// column-ID counter).
type PartitionSpecBuilder struct {
	schema *Schema
	specID int
	ids    *FieldIDManager
	fields []PartitionField
	err    error
}

// NewPartitionSpecBuilder starts a builder; lastAssignedPartitionID is the
// table's last-assigned partition field ID counter (seeded to
// FirstPartitionFieldID-1 for a brand-new table).
func NewPartitionSpecBuilder(schema *Schema, specID, lastAssignedPartitionID int) *PartitionSpecBuilder {
	return &PartitionSpecBuilder{schema: schema, specID: specID, ids: NewFieldIDManager(lastAssignedPartitionID)}
}

// AddField adds a partition field over sourceName using the given
// transform, naming the resulting partition column name.
func (b *PartitionSpecBuilder) AddField(sourceName string, transform Transform, name string) *PartitionSpecBuilder {
	if b.err != nil {
		return b
	}
	f, ok := b.schema.Struct.FieldByName(sourceName)
	if !ok {
		b.err = errors.New(ErrFieldNotFound, fmt.Sprintf("partition source field %q not found", sourceName), nil)
		return b
	}
	if _, err := transform.ResultTypeFor(f.Type); err != nil {
		b.err = err
		return b
	}
	id := b.ids.Next()
	if id < FirstPartitionFieldID {
		b.ids.Reserve(FirstPartitionFieldID)
		id = FirstPartitionFieldID
	}
	b.fields = append(b.fields, PartitionField{
		SourceID: f.ID, FieldID: id, Name: name, Transform: transform,
	})
	return b
}

// Build finalizes the spec and returns the updated partition-field-ID
// counter alongside it.
func (b *PartitionSpecBuilder) Build() (*PartitionSpec, int, error) {
	if b.err != nil {
		return nil, 0, b.err
	}
	names := map[string]struct{}{}
	for _, f := range b.fields {
		if _, dup := names[f.Name]; dup {
			return nil, 0, errors.New(ErrPartitionSpecError, fmt.Sprintf("duplicate partition field name %q", f.Name), nil)
		}
		names[f.Name] = struct{}{}
	}
	return &PartitionSpec{ID: b.specID, Fields: b.fields}, b.ids.LastAssigned(), nil
}

// ResultStruct derives the partition-tuple struct type for spec against
// schema, used to type-check partition values written to manifests.
func (spec *PartitionSpec) ResultStruct(schema *Schema) (*Struct, error) {
	fields := make([]*NestedField, 0, len(spec.Fields))
	for _, pf := range spec.Fields {
		src, ok := schema.FieldByID(pf.SourceID)
		if !ok {
			return nil, errors.New(ErrFieldNotFound, fmt.Sprintf("partition source field id %d not found in schema", pf.SourceID), nil)
		}
		rt, err := pf.Transform.ResultTypeFor(src.Type)
		if err != nil {
			return nil, err
		}
		fields = append(fields, &NestedField{ID: pf.FieldID, Name: pf.Name, Type: rt, Required: false})
	}
	return NewStruct(fields...), nil
}

// IsUnpartitioned reports whether the spec has no fields. A spec whose
// fields all use the void transform is not reported as unpartitioned.
func (spec *PartitionSpec) IsUnpartitioned() bool { return len(spec.Fields) == 0 }

// Evolve produces a new spec ID and field set by appending/removing fields
// relative to the current spec. Partition evolution never rewrites old
// data files, so removed fields become void transforms of the same field
// ID rather than being deleted: old manifests' partition tuples remain
// positionally valid.
func (spec *PartitionSpec) Evolve(newSpecID int, add []PartitionField, removeNames []string) *PartitionSpec {
	remove := map[string]struct{}{}
	for _, n := range removeNames {
		remove[n] = struct{}{}
	}
	fields := make([]PartitionField, 0, len(spec.Fields)+len(add))
	for _, f := range spec.Fields {
		if _, drop := remove[f.Name]; drop {
			f.Transform = Transform{Kind: TransformVoid}
		}
		fields = append(fields, f)
	}
	fields = append(fields, add...)
	return &PartitionSpec{ID: newSpecID, Fields: fields}
}

// PartitionChangeKind classifies one field-level difference between two
// partition specs.
type PartitionChangeKind string

const (
	PartitionFieldAdded            PartitionChangeKind = "add-field"
	PartitionFieldRemoved          PartitionChangeKind = "remove-field"
	PartitionFieldRenamed          PartitionChangeKind = "rename-field"
	PartitionFieldTransformChanged PartitionChangeKind = "change-transform"
)

// PartitionFieldChange is one classified difference produced by
// DiffPartitionSpecs.
type PartitionFieldChange struct {
	Kind PartitionChangeKind
	// FieldID is the stable partition field ID the change applies to.
	FieldID int
	// OldName/NewName are populated for rename-field; OldTransform/
	// NewTransform for change-transform. A field present in only one
	// spec reports just the name/transform side that exists.
	OldName      string
	NewName      string
	OldTransform Transform
	NewTransform Transform
}

// DiffPartitionSpecs classifies the differences between oldSpec and
// newSpec by matching fields by their stable FieldID, the partition-spec
// analogue of CompareSchemas: a field present only in newSpec is an add,
// one present only in oldSpec is a remove, and a field present in both
// reports a rename and/or a transform change if either differs. Results
// are ordered by FieldID for a deterministic diff.
func DiffPartitionSpecs(oldSpec, newSpec *PartitionSpec) []PartitionFieldChange {
	oldByID := make(map[int]PartitionField, len(oldSpec.Fields))
	for _, f := range oldSpec.Fields {
		oldByID[f.FieldID] = f
	}
	newByID := make(map[int]PartitionField, len(newSpec.Fields))
	for _, f := range newSpec.Fields {
		newByID[f.FieldID] = f
	}

	ids := make([]int, 0, len(oldByID)+len(newByID))
	seen := map[int]struct{}{}
	for _, f := range oldSpec.Fields {
		if _, ok := seen[f.FieldID]; !ok {
			seen[f.FieldID] = struct{}{}
			ids = append(ids, f.FieldID)
		}
	}
	for _, f := range newSpec.Fields {
		if _, ok := seen[f.FieldID]; !ok {
			seen[f.FieldID] = struct{}{}
			ids = append(ids, f.FieldID)
		}
	}
	sort.Ints(ids)

	var changes []PartitionFieldChange
	for _, id := range ids {
		oldField, hasOld := oldByID[id]
		newField, hasNew := newByID[id]
		switch {
		case hasNew && !hasOld:
			changes = append(changes, PartitionFieldChange{
				Kind: PartitionFieldAdded, FieldID: id,
				NewName: newField.Name, NewTransform: newField.Transform,
			})
		case hasOld && !hasNew:
			changes = append(changes, PartitionFieldChange{
				Kind: PartitionFieldRemoved, FieldID: id,
				OldName: oldField.Name, OldTransform: oldField.Transform,
			})
		default:
			if oldField.Name != newField.Name {
				changes = append(changes, PartitionFieldChange{
					Kind: PartitionFieldRenamed, FieldID: id,
					OldName: oldField.Name, NewName: newField.Name,
				})
			}
			if oldField.Transform != newField.Transform {
				changes = append(changes, PartitionFieldChange{
					Kind: PartitionFieldTransformChanged, FieldID: id,
					OldTransform: oldField.Transform, NewTransform: newField.Transform,
				})
			}
		}
	}
	return changes
}
