package stats

import "github.com/gear6io/icebergcore/iceberg"

// Collector accumulates one column's value-count/null-count/nan-count/
// column-size and running min/max bound as rows are appended. Callers
// observe values in any order; Observe may be called zero or more times
// before Finish.
type Collector struct {
	fieldType iceberg.Type
	valueCount,
	nullCount,
	nanCount,
	columnSize int64
	lower, upper []byte
}

// NewCollector starts a collector for a column of the given type.
func NewCollector(fieldType iceberg.Type) *Collector {
	return &Collector{fieldType: fieldType}
}

// ObserveNull records a null value: counted in valueCount and nullCount,
// never affecting bounds.
func (c *Collector) ObserveNull() {
	c.valueCount++
	c.nullCount++
}

// Observe records a non-null value of size bytes (its on-disk encoded
// size, for columnSize), updating the running min/max unless it is NaN.
func (c *Collector) Observe(v any, size int64) error {
	c.valueCount++
	c.columnSize += size

	enc, isNaN, err := EncodeBound(c.fieldType, v)
	if err != nil {
		return err
	}
	if isNaN {
		c.nanCount++
		return nil
	}
	if c.lower == nil || Compare(c.fieldType, enc, c.lower) < 0 {
		c.lower = enc
	}
	if c.upper == nil || Compare(c.fieldType, enc, c.upper) > 0 {
		c.upper = enc
	}
	return nil
}

// ColumnStats is the finished aggregate for one column.
type ColumnStats struct {
	ValueCount  int64
	NullCount   int64
	NanCount    int64
	ColumnSize  int64
	LowerBound  []byte // nil if every value was null or NaN
	UpperBound  []byte
}

// Finish returns the accumulated statistics.
func (c *Collector) Finish() ColumnStats {
	return ColumnStats{
		ValueCount: c.valueCount,
		NullCount:  c.nullCount,
		NanCount:   c.nanCount,
		ColumnSize: c.columnSize,
		LowerBound: c.lower,
		UpperBound: c.upper,
	}
}

// MergeColumnStats combines two aggregates for the same column across
// different files/manifests: counts and sizes sum; bounds take the
// min/max under the column's comparator.
func MergeColumnStats(t iceberg.Type, a, b ColumnStats) ColumnStats {
	out := ColumnStats{
		ValueCount: a.ValueCount + b.ValueCount,
		NullCount:  a.NullCount + b.NullCount,
		NanCount:   a.NanCount + b.NanCount,
		ColumnSize: a.ColumnSize + b.ColumnSize,
		LowerBound: a.LowerBound,
		UpperBound: a.UpperBound,
	}
	if out.LowerBound == nil || (b.LowerBound != nil && Compare(t, b.LowerBound, out.LowerBound) < 0) {
		out.LowerBound = b.LowerBound
	}
	if out.UpperBound == nil || (b.UpperBound != nil && Compare(t, b.UpperBound, out.UpperBound) > 0) {
		out.UpperBound = b.UpperBound
	}
	return out
}

// TruncateUpperBoundString truncates s to its first l code points, then
// increments the rightmost code point <= U+10FFFE by one so the result
// stays a valid upper bound for any untruncated string sharing that
// prefix. If every code point in the truncated prefix is already
// U+10FFFF, the prefix is returned unchanged — a wider-than-tight bound
// is accepted rather than failing.
func TruncateUpperBoundString(s string, l int) string {
	r := []rune(s)
	if len(r) <= l {
		return s
	}
	prefix := r[:l]
	for i := len(prefix) - 1; i >= 0; i-- {
		if prefix[i] <= 0x10FFFE {
			prefix[i]++
			return string(prefix[:i+1])
		}
	}
	return string(prefix)
}
