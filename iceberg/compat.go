package iceberg

// IsTypePromotable reports whether from can be widened to to under the
// Iceberg schema evolution rules: int->long, float->double,
// decimal(P,S)->decimal(P2,S) for P2>=P, and fixed[L]->binary. Equal types
// are also accepted (a no-op rather than a promotion); every other pair is
// rejected.
func IsTypePromotable(from, to Type) bool {
	if from.Equals(to) {
		return true
	}
	switch f := from.(type) {
	case *Primitive:
		t, ok := to.(*Primitive)
		if !ok {
			return false
		}
		switch f.Kind() {
		case KindInt:
			return t.Kind() == KindLong
		case KindFloat:
			return t.Kind() == KindDouble
		case KindDate:
			return false
		}
		return false
	case *Decimal:
		t, ok := to.(*Decimal)
		if !ok {
			return false
		}
		return t.Precision >= f.Precision && t.Scale == f.Scale
	case *Fixed:
		t, ok := to.(*Primitive)
		return ok && t.Kind() == KindBinary
	}
	return false
}

// Compatibility classifies how a new schema relates to an old one for
// reader/writer compatibility purposes.
type Compatibility int

const (
	// Incompatible means at least one change is unsafe for this direction.
	Incompatible Compatibility = iota
	// BackwardCompatible means a reader built for the new schema can read
	// data written with the old schema (no field was made required, and
	// every added required field carries an initial default).
	BackwardCompatible
	// ForwardCompatible means a reader built for the old schema can read
	// data written with the new schema (no field of the old schema was
	// removed).
	ForwardCompatible
	// FullyCompatible means both directions hold.
	FullyCompatible
)

// CompareSchemas classifies newSchema relative to oldSchema by walking
// matching fields (by ID) and checking evolution compatibility rules: a
// field removed breaks forward compatibility; an optional field made
// required, or a field added as required without an initial default,
// breaks backward compatibility; a type change that is not a promotion
// breaks both.
func CompareSchemas(oldSchema, newSchema *Schema) Compatibility {
	backward := true
	forward := true

	oldByID := map[int]*NestedField{}
	for _, f := range oldSchema.Fields() {
		oldByID[f.ID] = f
	}
	newByID := map[int]*NestedField{}
	for _, f := range newSchema.Fields() {
		newByID[f.ID] = f
	}

	for id, oldField := range oldByID {
		newField, ok := newByID[id]
		if !ok {
			// Field removed: old readers of new data lose a column they
			// expect; new readers of old data are unaffected.
			forward = false
			continue
		}
		if !IsTypePromotable(oldField.Type, newField.Type) && !oldField.Type.Equals(newField.Type) {
			backward = false
			forward = false
		}
		if oldField.Required && !newField.Required {
			// Relaxing required->optional: old data already satisfies it,
			// so both directions still hold for this field alone.
			continue
		}
		if !oldField.Required && newField.Required {
			backward = false
		}
	}

	for id, newField := range newByID {
		if _, ok := oldByID[id]; ok {
			continue
		}
		// New field: backward-compatible only if it's optional or carries
		// a default old data can be backfilled with.
		if newField.Required && newField.InitialDefault == nil {
			backward = false
		}
	}

	switch {
	case backward && forward:
		return FullyCompatible
	case backward:
		return BackwardCompatible
	case forward:
		return ForwardCompatible
	default:
		return Incompatible
	}
}
