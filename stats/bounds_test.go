package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gear6io/icebergcore/iceberg"
)

func TestEncodeBoundRoundTripOrderingInt(t *testing.T) {
	lo, _, err := EncodeBound(iceberg.Int32, int32(5))
	require.NoError(t, err)
	hi, _, err := EncodeBound(iceberg.Int32, int32(9))
	require.NoError(t, err)
	require.Negative(t, Compare(iceberg.Int32, lo, hi))
	require.Positive(t, Compare(iceberg.Int32, hi, lo))
	require.Zero(t, Compare(iceberg.Int32, lo, lo))
}

func TestEncodeBoundStringLexicographic(t *testing.T) {
	a, _, err := EncodeBound(iceberg.StringType, "apple")
	require.NoError(t, err)
	b, _, err := EncodeBound(iceberg.StringType, "banana")
	require.NoError(t, err)
	require.Negative(t, Compare(iceberg.StringType, a, b))
}

func TestEncodeBoundFloatNaNExcluded(t *testing.T) {
	_, isNaN, err := EncodeBound(iceberg.Float64, math.NaN())
	require.NoError(t, err)
	require.True(t, isNaN)
}

func TestEncodeBoundBooleanOrdering(t *testing.T) {
	f, _, err := EncodeBound(iceberg.Boolean, false)
	require.NoError(t, err)
	tr, _, err := EncodeBound(iceberg.Boolean, true)
	require.NoError(t, err)
	require.Negative(t, Compare(iceberg.Boolean, f, tr))
}

func TestTruncateUpperBoundStringIncrementsLastCodePoint(t *testing.T) {
	got := TruncateUpperBoundString("abcdef", 3)
	require.Equal(t, "abd", got)
}

func TestTruncateUpperBoundStringNoTruncationNeeded(t *testing.T) {
	require.Equal(t, "abc", TruncateUpperBoundString("abc", 10))
}

func TestMergeColumnStatsSumsCountsAndWidensBounds(t *testing.T) {
	loA, _, _ := EncodeBound(iceberg.Int32, int32(1))
	hiA, _, _ := EncodeBound(iceberg.Int32, int32(10))
	loB, _, _ := EncodeBound(iceberg.Int32, int32(-5))
	hiB, _, _ := EncodeBound(iceberg.Int32, int32(3))

	a := ColumnStats{ValueCount: 10, NullCount: 1, LowerBound: loA, UpperBound: hiA}
	b := ColumnStats{ValueCount: 5, NullCount: 0, LowerBound: loB, UpperBound: hiB}

	merged := MergeColumnStats(iceberg.Int32, a, b)
	require.Equal(t, int64(15), merged.ValueCount)
	require.Equal(t, int64(1), merged.NullCount)
	require.Equal(t, loB, merged.LowerBound)
	require.Equal(t, hiA, merged.UpperBound)
}
