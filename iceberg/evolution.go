package iceberg

import (
	"fmt"
	"strings"

	"github.com/gear6io/icebergcore/pkg/errors"
)

// Evolution builds a new Schema from a base one by applying a sequence of
// additive/renaming/widening operations. It is a fresh, single-use builder
// per evolution call — no shared mutable state survives across calls.
type Evolution struct {
	base    *Schema
	fields  []*NestedField
	ids     *FieldIDManager
	newID   int
	renamed map[int]string
	err     error
}

// NewEvolution starts an evolution of base, allocating new field IDs from
// the given last-assigned counter (normally the table's last-column-id).
func NewEvolution(base *Schema, lastAssignedFieldID int) *Evolution {
	// Deep-copy the field tree (including nested struct fields) so that
	// in-place edits never reach the base schema.
	var clone func(fs []*NestedField) []*NestedField
	clone = func(fs []*NestedField) []*NestedField {
		out := make([]*NestedField, len(fs))
		for i, f := range fs {
			c := *f
			if st, ok := f.Type.(*Struct); ok {
				c.Type = NewStruct(clone(st.Fields)...)
			}
			out[i] = &c
		}
		return out
	}
	fields := clone(base.Fields())
	return &Evolution{
		base:    base,
		fields:  fields,
		ids:     NewFieldIDManager(lastAssignedFieldID),
		newID:   base.ID + 1,
		renamed: map[int]string{},
	}
}

func (e *Evolution) fail(err error) *Evolution {
	if e.err == nil {
		e.err = err
	}
	return e
}

// splitPath splits a dot path into its leading segment and the remainder,
// the same notation Schema.FieldByName uses to address nested fields.
func splitPath(path string) (head, rest string) {
	if i := strings.IndexByte(path, '.'); i >= 0 {
		return path[:i], path[i+1:]
	}
	return path, ""
}

// container resolves path against the evolution's current field set (not
// the base schema, so an evolution can target a field it already added or
// renamed earlier in the same chain), returning the slice that holds or
// should hold the leaf name, plus that leaf name itself. A dotted path
// descends through each intermediate field, which must itself be a
// struct.
func (e *Evolution) container(path string) (*[]*NestedField, string, error) {
	head, rest := splitPath(path)
	if rest == "" {
		return &e.fields, head, nil
	}
	for _, f := range e.fields {
		if f.Name == head {
			return containerWithin(f, rest)
		}
	}
	return nil, "", errors.New(ErrFieldNotFound, fmt.Sprintf("field %q not found", head), nil)
}

func containerWithin(parent *NestedField, path string) (*[]*NestedField, string, error) {
	st, ok := parent.Type.(*Struct)
	if !ok {
		return nil, "", errors.New(ErrFieldNotFound, fmt.Sprintf("field %q is not a struct", parent.Name), nil)
	}
	head, rest := splitPath(path)
	if rest == "" {
		return &st.Fields, head, nil
	}
	for _, f := range st.Fields {
		if f.Name == head {
			return containerWithin(f, rest)
		}
	}
	return nil, "", errors.New(ErrFieldNotFound, fmt.Sprintf("field %q not found", head), nil)
}

// findField resolves path to its containing slice, its index within that
// slice, and the field itself.
func (e *Evolution) findField(path string) (container *[]*NestedField, idx int, field *NestedField, err error) {
	c, leaf, err := e.container(path)
	if err != nil {
		return nil, -1, nil, err
	}
	for i, f := range *c {
		if f.Name == leaf {
			return c, i, f, nil
		}
	}
	return nil, -1, nil, errors.New(ErrFieldNotFound, fmt.Sprintf("field %q not found", path), nil)
}

// AddColumn appends a new optional-by-default column, addressed by a dot
// path for a field nested inside an existing struct column. Required new
// columns must carry a write-default.
func (e *Evolution) AddColumn(name string, typ Type, required bool, writeDefault any) *Evolution {
	if e.err != nil {
		return e
	}
	container, leaf, err := e.container(name)
	if err != nil {
		return e.fail(err)
	}
	for _, f := range *container {
		if f.Name == leaf {
			return e.fail(errors.New(ErrFieldExists, fmt.Sprintf("field %q already exists", name), nil))
		}
	}
	if required && writeDefault == nil {
		return e.fail(errors.New(ErrRequiredFieldNoDefault,
			fmt.Sprintf("required column %q needs a write-default", name), nil))
	}
	id := e.ids.Next()
	*container = append(*container, &NestedField{
		ID: id, Name: leaf, Type: typ, Required: required, WriteDefault: writeDefault,
	})
	return e
}

// DropColumn removes a column addressed by name or dot path. The field ID
// is retired, never reused by a later AddColumn in this or any future
// evolution.
func (e *Evolution) DropColumn(name string) *Evolution {
	if e.err != nil {
		return e
	}
	container, idx, _, err := e.findField(name)
	if err != nil {
		return e.fail(err)
	}
	*container = append((*container)[:idx], (*container)[idx+1:]...)
	return e
}

// RenameColumn changes a field's name without touching its ID, so readers
// on the prior name keep resolving via field ID. oldName may be a dot
// path; newName replaces only the final segment.
func (e *Evolution) RenameColumn(oldName, newName string) *Evolution {
	if e.err != nil {
		return e
	}
	_, _, field, err := e.findField(oldName)
	if err != nil {
		return e.fail(err)
	}
	field.Name = newName
	return e
}

// UpdateColumnType widens a field's type in place. Only promotions allowed
// by IsTypePromotable are accepted.
func (e *Evolution) UpdateColumnType(name string, newType Type) *Evolution {
	if e.err != nil {
		return e
	}
	_, _, field, err := e.findField(name)
	if err != nil {
		return e.fail(err)
	}
	if !IsTypePromotable(field.Type, newType) {
		return e.fail(errors.New(ErrIncompatibleType,
			fmt.Sprintf("cannot promote %q from %s to %s", name, field.Type, newType), nil))
	}
	field.Type = newType
	return e
}

// MakeColumnOptional relaxes a required field to optional. Always legal.
func (e *Evolution) MakeColumnOptional(name string) *Evolution {
	return e.setRequired(name, false, true)
}

// MakeColumnRequired tightens an optional field to required. Only legal
// when a write-default is supplied.
func (e *Evolution) MakeColumnRequired(name string, writeDefault any) *Evolution {
	if e.err != nil {
		return e
	}
	if writeDefault == nil {
		return e.fail(errors.New(ErrRequiredFieldNoDefault,
			fmt.Sprintf("making %q required needs a write-default", name), nil))
	}
	return e.setRequired(name, true, false)
}

func (e *Evolution) setRequired(name string, required, allowNoDefault bool) *Evolution {
	if e.err != nil {
		return e
	}
	_, _, field, err := e.findField(name)
	if err != nil {
		return e.fail(err)
	}
	field.Required = required
	return e
}

// UpdateColumnDoc sets a field's documentation string.
func (e *Evolution) UpdateColumnDoc(name, doc string) *Evolution {
	if e.err != nil {
		return e
	}
	_, _, field, err := e.findField(name)
	if err != nil {
		return e.fail(err)
	}
	field.Doc = doc
	return e
}

// MoveColumnFirst, MoveColumnLast, MoveColumnBefore, and MoveColumnAfter
// reorder top-level fields without affecting field IDs.
func (e *Evolution) MoveColumnFirst(name string) *Evolution {
	return e.moveColumn(name, 0)
}

func (e *Evolution) MoveColumnLast(name string) *Evolution {
	return e.moveColumn(name, len(e.fields))
}

func (e *Evolution) MoveColumnBefore(name, before string) *Evolution {
	if e.err != nil {
		return e
	}
	beforeIdx := -1
	for i, f := range e.fields {
		if f.Name == before {
			beforeIdx = i
			break
		}
	}
	if beforeIdx == -1 {
		return e.fail(errors.New(ErrInvalidPosition, fmt.Sprintf("reference field %q not found", before), nil))
	}
	return e.moveColumn(name, beforeIdx)
}

func (e *Evolution) MoveColumnAfter(name, after string) *Evolution {
	if e.err != nil {
		return e
	}
	afterIdx := -1
	for i, f := range e.fields {
		if f.Name == after {
			afterIdx = i
			break
		}
	}
	if afterIdx == -1 {
		return e.fail(errors.New(ErrInvalidPosition, fmt.Sprintf("reference field %q not found", after), nil))
	}
	return e.moveColumn(name, afterIdx+1)
}

func (e *Evolution) moveColumn(name string, targetIdx int) *Evolution {
	if e.err != nil {
		return e
	}
	idx := -1
	for i, f := range e.fields {
		if f.Name == name {
			idx = i
			break
		}
	}
	if idx == -1 {
		return e.fail(errors.New(ErrFieldNotFound, fmt.Sprintf("field %q not found", name), nil))
	}
	f := e.fields[idx]
	e.fields = append(e.fields[:idx], e.fields[idx+1:]...)
	if targetIdx > idx {
		targetIdx--
	}
	if targetIdx < 0 {
		targetIdx = 0
	}
	if targetIdx > len(e.fields) {
		targetIdx = len(e.fields)
	}
	e.fields = append(e.fields[:targetIdx], append([]*NestedField{f}, e.fields[targetIdx:]...)...)
	return e
}

// Build finalizes the evolution, returning the new schema (with schema ID
// incremented by one from the base) and the updated field-ID counter.
func (e *Evolution) Build() (*Schema, int, error) {
	if e.err != nil {
		return nil, 0, e.err
	}
	schema := NewSchema(e.newID, e.fields...)
	for k := range e.base.IdentifierFields {
		if _, ok := schema.FieldByID(k); ok {
			schema.IdentifierFields[k] = struct{}{}
		}
	}
	if err := schema.Validate(); err != nil {
		return nil, 0, err
	}
	return schema, e.ids.LastAssigned(), nil
}
