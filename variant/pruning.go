package variant

import "github.com/gear6io/icebergcore/stats"

// ZoneFor builds a stats.Zone usable with stats.CanPrune/Predicate for
// one column's shredded sub-fields, given their collected bounds keyed
// by path. Paths absent from bounds are simply omitted from the zone
// (treated as unrecorded, per stats.CanPrune's "missing bounds never
// prunes" rule) rather than erroring, since a value observed only as
// the variant's untyped fallback never gets a shredded bound.
func (s ColumnShredSpec) ZoneFor(bounds map[string]stats.Bound) stats.Zone {
	zone := make(stats.Zone, len(s.Fields))
	for _, f := range s.Fields {
		if b, ok := bounds[f.Path]; ok {
			zone[f.FieldID] = b
		}
	}
	return zone
}
