package bloom

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoFalseNegatives(t *testing.T) {
	f, err := NewFilter(1000, 0.01, 0)
	require.NoError(t, err)

	inserted := make([][]byte, 0, 1000)
	for i := 0; i < 1000; i++ {
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], uint64(i))
		f.Insert(b[:])
		inserted = append(inserted, b[:])
	}
	for _, v := range inserted {
		require.True(t, f.MightContain(v), "inserted value must never report absent")
	}
}

func TestFalsePositiveRateRoughlyBounded(t *testing.T) {
	f, err := NewFilter(1000, 0.01, 0)
	require.NoError(t, err)
	for i := 0; i < 1000; i++ {
		f.Insert([]byte(fmt.Sprintf("present-%d", i)))
	}
	falsePositives := 0
	trials := 10000
	for i := 0; i < trials; i++ {
		if f.MightContain([]byte(fmt.Sprintf("absent-%d", i))) {
			falsePositives++
		}
	}
	rate := float64(falsePositives) / float64(trials)
	require.Less(t, rate, 0.1, "false positive rate should stay in the right ballpark of the 1%% target")
}

func TestMaxBytesClampsBlockCount(t *testing.T) {
	f, err := NewFilter(1_000_000, 0.0001, 64)
	require.NoError(t, err)
	require.LessOrEqual(t, f.NumBlocks()*32, 64)
}

func TestMergeUnionsMembership(t *testing.T) {
	a, err := NewFilter(100, 0.01, 0)
	require.NoError(t, err)
	b, err := NewFilter(100, 0.01, 0)
	require.NoError(t, err)
	for len(a.blocks) != len(b.blocks) {
		t.Fatalf("test fixture requires equal-sized filters")
	}

	a.Insert([]byte("alpha"))
	b.Insert([]byte("beta"))

	require.NoError(t, a.Merge(b))
	require.True(t, a.MightContain([]byte("alpha")))
	require.True(t, a.MightContain([]byte("beta")))
}

func TestMergeRejectsMismatchedBlockCounts(t *testing.T) {
	a, err := NewFilter(10, 0.01, 0)
	require.NoError(t, err)
	b, err := NewFilter(100000, 0.0001, 0)
	require.NoError(t, err)
	require.NotEqual(t, a.NumBlocks(), b.NumBlocks())
	require.Error(t, a.Merge(b))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	f, err := NewFilter(500, 0.02, 0)
	require.NoError(t, err)
	f.Insert([]byte("hello"))

	data, err := Encode(f, 500, 0.02)
	require.NoError(t, err)

	got, trailer, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, f.NumBlocks(), got.NumBlocks())
	require.True(t, got.MightContain([]byte("hello")))
	require.Equal(t, int64(500), trailer.Count)
	require.Equal(t, "SPLIT_BLOCK", trailer.Algorithm)
	require.Equal(t, "XXHASH64", trailer.HashFunction)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	_, _, err := Decode([]byte("not a bloom filter blob at all"))
	require.Error(t, err)
}
