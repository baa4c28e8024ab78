// Package variant implements variant-column shredding configuration:
// mapping the `write.variant.*` table properties (config.VariantShredConfig)
// onto per-path synthetic field IDs, using the iceberg package's
// FieldIDManager idiom, so a shredded sub-field's statistics can be
// collected and pruned exactly like an ordinary column's.
package variant

import (
	"sort"

	"github.com/gear6io/icebergcore/config"
	"github.com/gear6io/icebergcore/iceberg"
)

// ShreddedField is one path shredded out of a variant column, with its
// own synthetic field ID and declared type.
type ShreddedField struct {
	Path    string
	FieldID int
	Type    iceberg.Type
}

// ColumnShredSpec is one variant column's full shredding configuration.
type ColumnShredSpec struct {
	Column string
	Fields []ShreddedField
}

// BuildShredSpecs derives the shredding plan for every column named in
// cfg.ShredColumns, allocating synthetic field IDs from ids in
// deterministic (column, then sorted path) order so the same config
// always produces the same IDs across writers.
func BuildShredSpecs(cfg config.VariantShredConfig, ids *iceberg.FieldIDManager) ([]ColumnShredSpec, error) {
	cols := append([]string(nil), cfg.ShredColumns...)
	sort.Strings(cols)

	specs := make([]ColumnShredSpec, 0, len(cols))
	for _, col := range cols {
		paths := append([]string(nil), cfg.FieldsByCol[col]...)
		sort.Strings(paths)
		types := cfg.TypesByCol[col]

		fields := make([]ShreddedField, 0, len(paths))
		seen := map[string]struct{}{}
		for _, p := range paths {
			if _, dup := seen[p]; dup {
				return nil, newError(ErrDuplicatePath, "duplicate shred path "+p+" for column "+col)
			}
			seen[p] = struct{}{}

			typeName, ok := types[p]
			if !ok {
				return nil, newError(ErrUnknownShredType, "no declared type for shred path "+p+" in column "+col)
			}
			t, err := iceberg.ParsePrimitive(typeName)
			if err != nil {
				return nil, newError(ErrUnknownShredType, "unparseable shred type "+typeName+" for path "+p+": "+err.Error())
			}
			fields = append(fields, ShreddedField{Path: p, FieldID: ids.Next(), Type: t})
		}
		specs = append(specs, ColumnShredSpec{Column: col, Fields: fields})
	}
	return specs, nil
}

// FieldID looks up a shredded path's synthetic field ID within a
// column's spec.
func (s ColumnShredSpec) FieldID(path string) (int, bool) {
	for _, f := range s.Fields {
		if f.Path == path {
			return f.FieldID, true
		}
	}
	return 0, false
}
