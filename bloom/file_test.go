package bloom

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteReadFileRoundTrip(t *testing.T) {
	f1, err := NewFilter(100, 0.01, 0)
	require.NoError(t, err)
	f1.Insert([]byte("apple"))

	f2, err := NewFilter(100, 0.01, 0)
	require.NoError(t, err)
	f2.Insert([]byte("42"))

	data, err := WriteFile([]ColumnFilter{
		{FieldID: 1, ColumnName: "category", Filter: f1, Count: 100, FalsePositiveRate: 0.01},
		{FieldID: 2, ColumnName: "id", Filter: f2, Count: 100, FalsePositiveRate: 0.01},
	})
	require.NoError(t, err)

	entries, err := ReadFile(data)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	catFilter, err := Lookup(entries, 1)
	require.NoError(t, err)
	require.True(t, catFilter.MightContain([]byte("apple")))

	idFilter, err := Lookup(entries, 2)
	require.NoError(t, err)
	require.True(t, idFilter.MightContain([]byte("42")))

	_, err = Lookup(entries, 999)
	require.Error(t, err)
}

func TestReadFileRejectsBadMagic(t *testing.T) {
	_, err := ReadFile([]byte("garbage data that is not a bloom file"))
	require.Error(t, err)
}
