package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gear6io/icebergcore/iceberg"
)

func TestCollectorTracksCountsAndBounds(t *testing.T) {
	c := NewCollector(iceberg.Int64)
	require.NoError(t, c.Observe(int64(5), 8))
	require.NoError(t, c.Observe(int64(-3), 8))
	c.ObserveNull()
	require.NoError(t, c.Observe(int64(10), 8))

	got := c.Finish()
	require.Equal(t, int64(4), got.ValueCount)
	require.Equal(t, int64(1), got.NullCount)
	require.Equal(t, int64(24), got.ColumnSize)

	lo, _, _ := EncodeBound(iceberg.Int64, int64(-3))
	hi, _, _ := EncodeBound(iceberg.Int64, int64(10))
	require.Equal(t, lo, got.LowerBound)
	require.Equal(t, hi, got.UpperBound)
}

func TestCollectorFloatNaNCountedSeparately(t *testing.T) {
	c := NewCollector(iceberg.Float64)
	require.NoError(t, c.Observe(float64(1.5), 8))
	require.NoError(t, c.Observe(math.NaN(), 8))

	got := c.Finish()
	require.Equal(t, int64(2), got.ValueCount)
	require.Equal(t, int64(1), got.NanCount)
	hi, _, _ := EncodeBound(iceberg.Float64, float64(1.5))
	require.Equal(t, hi, got.UpperBound)
}
