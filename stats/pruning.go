package stats

import "github.com/gear6io/icebergcore/iceberg"

// Op is a comparison operator a predicate applies to one field.
type Op string

const (
	OpEq  Op = "="
	OpNeq Op = "!="
	OpLt  Op = "<"
	OpLte Op = "<="
	OpGt  Op = ">"
	OpGte Op = ">="
)

// Zone is the binary-encoded [lower, upper] bound pair for one column,
// keyed by field ID, as recorded in a manifest entry or manifest-list
// partition summary. A missing entry means no bound was recorded.
type Zone map[int]Bound

// Bound is one field's recorded lower/upper bound; either may be nil if
// unrecorded.
type Bound struct {
	Lower, Upper []byte
}

// CanPrune reports whether the zone cannot possibly contain a row matching
// field op value. Missing bounds always return false (cannot prune): a
// zone with no recorded stats must be read.
func CanPrune(zone Zone, fieldID int, fieldType iceberg.Type, op Op, value []byte) bool {
	b, ok := zone[fieldID]
	if !ok || b.Lower == nil || b.Upper == nil {
		return false
	}
	min, max := b.Lower, b.Upper
	cmp := func(a, c []byte) int { return Compare(fieldType, a, c) }

	switch op {
	case OpEq:
		return cmp(value, min) < 0 || cmp(value, max) > 0
	case OpNeq:
		return cmp(min, max) == 0 && cmp(min, value) == 0
	case OpLt:
		return cmp(min, value) >= 0
	case OpLte:
		return cmp(min, value) > 0
	case OpGt:
		return cmp(max, value) <= 0
	case OpGte:
		return cmp(max, value) < 0
	}
	return false
}

// Predicate is one node of a compound pushdown predicate: either a leaf
// comparison or an AND/OR of sub-predicates.
type Predicate struct {
	// Leaf fields; FieldID identifies the column, empty And/Or means this
	// is a leaf.
	FieldID   int
	FieldType iceberg.Type
	Op        Op
	Value     []byte

	And []Predicate
	Or  []Predicate
}

// CanPrune evaluates a compound predicate against a zone: an AND can prune
// if any conjunct can prune (their bound ranges never overlap a matching
// row); an OR can only prune if every disjunct can prune.
func (p Predicate) CanPrune(zone Zone) bool {
	switch {
	case len(p.And) > 0:
		for _, sub := range p.And {
			if sub.CanPrune(zone) {
				return true
			}
		}
		return false
	case len(p.Or) > 0:
		for _, sub := range p.Or {
			if !sub.CanPrune(zone) {
				return false
			}
		}
		return true
	default:
		return CanPrune(zone, p.FieldID, p.FieldType, p.Op, p.Value)
	}
}
