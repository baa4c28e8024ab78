package stats

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gear6io/icebergcore/iceberg"
)

func zoneFor(t *testing.T, fieldID int, ft iceberg.Type, lo, hi any) Zone {
	t.Helper()
	l, _, err := EncodeBound(ft, lo)
	require.NoError(t, err)
	u, _, err := EncodeBound(ft, hi)
	require.NoError(t, err)
	return Zone{fieldID: {Lower: l, Upper: u}}
}

func encode(t *testing.T, ft iceberg.Type, v any) []byte {
	t.Helper()
	b, _, err := EncodeBound(ft, v)
	require.NoError(t, err)
	return b
}

func TestCanPruneEqualityOutsideRange(t *testing.T) {
	z := zoneFor(t, 1, iceberg.Int32, int32(10), int32(20))
	require.True(t, CanPrune(z, 1, iceberg.Int32, OpEq, encode(t, iceberg.Int32, int32(5))))
	require.False(t, CanPrune(z, 1, iceberg.Int32, OpEq, encode(t, iceberg.Int32, int32(15))))
}

func TestCanPruneLessThanMinGreaterOrEqual(t *testing.T) {
	z := zoneFor(t, 1, iceberg.Int32, int32(10), int32(20))
	require.True(t, CanPrune(z, 1, iceberg.Int32, OpLt, encode(t, iceberg.Int32, int32(10))))
	require.False(t, CanPrune(z, 1, iceberg.Int32, OpLt, encode(t, iceberg.Int32, int32(11))))
}

func TestCanPruneMissingBoundsNeverPrunes(t *testing.T) {
	z := Zone{}
	require.False(t, CanPrune(z, 1, iceberg.Int32, OpEq, encode(t, iceberg.Int32, int32(5))))
}

func TestCanPruneNotEqualOnlyWhenSingleton(t *testing.T) {
	z := zoneFor(t, 1, iceberg.Int32, int32(7), int32(7))
	require.True(t, CanPrune(z, 1, iceberg.Int32, OpNeq, encode(t, iceberg.Int32, int32(7))))

	z2 := zoneFor(t, 1, iceberg.Int32, int32(7), int32(9))
	require.False(t, CanPrune(z2, 1, iceberg.Int32, OpNeq, encode(t, iceberg.Int32, int32(7))))
}

func TestPredicateAndPrunesIfAnyConjunctPrunes(t *testing.T) {
	z := zoneFor(t, 1, iceberg.Int32, int32(10), int32(20))
	pred := Predicate{And: []Predicate{
		{FieldID: 1, FieldType: iceberg.Int32, Op: OpEq, Value: encode(t, iceberg.Int32, int32(5))},
		{FieldID: 1, FieldType: iceberg.Int32, Op: OpEq, Value: encode(t, iceberg.Int32, int32(15))},
	}}
	require.True(t, pred.CanPrune(z))
}

func TestPredicateOrPrunesOnlyIfAllDisjunctsPrune(t *testing.T) {
	z := zoneFor(t, 1, iceberg.Int32, int32(10), int32(20))
	prunable := Predicate{FieldID: 1, FieldType: iceberg.Int32, Op: OpEq, Value: encode(t, iceberg.Int32, int32(5))}
	notPrunable := Predicate{FieldID: 1, FieldType: iceberg.Int32, Op: OpEq, Value: encode(t, iceberg.Int32, int32(15))}

	require.False(t, (Predicate{Or: []Predicate{prunable, notPrunable}}).CanPrune(z))
	require.True(t, (Predicate{Or: []Predicate{prunable, prunable}}).CanPrune(z))
}
