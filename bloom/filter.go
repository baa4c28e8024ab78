// Package bloom implements split-block Bloom filters for per-column
// equality-predicate pruning: construction, binary serialization/
// parsing, membership query, and merging of two filters built over the
// same configuration. The block layout and salt constants follow the
// Parquet split-block Bloom filter scheme bit-for-bit so the binary
// format stays interoperable with other Iceberg implementations.
package bloom

import (
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/gear6io/icebergcore/pkg/errors"
)

// blockWords is the number of 32-bit words per block (32 bytes / 4).
const blockWords = 8

// saltConstants are the eight odd constants the Parquet split-block
// scheme multiplies the lower 32 hash bits by to derive each word's set
// bit. Fixed by the format; changing them breaks interoperability.
var saltConstants = [blockWords]uint32{
	0x47b6137b, 0x44974d91, 0x8824ad5b, 0xa2b7289d,
	0x705495c7, 0x2df1424b, 0x9efc4947, 0x5c6bfb31,
}

// block is one 32-byte split-block: eight 32-bit words, each with
// exactly one salted bit set once an item lands in that block.
type block [blockWords]uint32

// blockMask derives the per-word set-bit mask for the low 32 bits of a
// hash, per the Parquet split-block scheme: word i gets bit
// (loBits*salt[i])>>27 set.
func blockMask(loBits uint32) block {
	var m block
	for i, salt := range saltConstants {
		y := loBits * salt
		m[i] = 1 << (y >> 27)
	}
	return m
}

// Filter is one split-block Bloom filter over a single column's values.
type Filter struct {
	blocks []block
}

// minBlocks is the smallest filter this package builds; a zero-size
// filter would divide by zero when deriving a block index.
const minBlocks = 1

// NewFilter builds an empty filter sized to hold expectedItems distinct
// values at approximately falsePositiveRate. maxBytes, if positive, caps
// the filter's serialized block size (clamping the false-positive rate
// upward rather than exceeding the budget).
func NewFilter(expectedItems int64, falsePositiveRate float64, maxBytes int64) (*Filter, error) {
	if expectedItems < 0 {
		return nil, errors.New(ErrInvalidConfig, "expected item count must be non-negative", nil)
	}
	if falsePositiveRate <= 0 || falsePositiveRate >= 1 {
		return nil, errors.New(ErrInvalidConfig, "false positive rate must be in (0, 1)", nil)
	}
	numBlocks := optimalNumBlocks(expectedItems, falsePositiveRate)
	if maxBytes > 0 {
		capBlocks := int(maxBytes / 32)
		if capBlocks < minBlocks {
			capBlocks = minBlocks
		}
		if numBlocks > capBlocks {
			numBlocks = capBlocks
		}
	}
	if numBlocks < minBlocks {
		numBlocks = minBlocks
	}
	return &Filter{blocks: make([]block, numBlocks)}, nil
}

// optimalNumBlocks computes the number of 32-byte blocks needed so that
// n items produce approximately p false-positive rate, following the
// Parquet split-block sizing formula, then rounds the byte count up to
// the next power of two block count (the scheme's block-index mask
// relies on power-of-two block counts for an even hash distribution).
func optimalNumBlocks(n int64, p float64) int {
	if n == 0 {
		return minBlocks
	}
	numBits := math.Ceil(-8 * float64(n) / math.Log(1-math.Pow(p, 1.0/8)))
	numBytes := numBits / 8
	numBlocks := int(math.Ceil(numBytes / 32))
	if numBlocks < minBlocks {
		numBlocks = minBlocks
	}
	return nextPowerOfTwo(numBlocks)
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// hash64 computes the XXH64 hash (seed 0) of a value's raw bytes.
func hash64(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// blockIndex derives a hash's destination block, per the split-block
// scheme: the high 32 bits mod the block count.
func (f *Filter) blockIndex(h uint64) int {
	return int((h >> 32) % uint64(len(f.blocks)))
}

// Insert adds raw's bytes to the filter.
func (f *Filter) Insert(raw []byte) {
	h := hash64(raw)
	idx := f.blockIndex(h)
	mask := blockMask(uint32(h))
	b := &f.blocks[idx]
	for i := range mask {
		b[i] |= mask[i]
	}
}

// MightContain reports whether raw may have been inserted. False means
// definitely not inserted; true may be a false positive. MightContain
// never returns false for a value that was actually inserted.
func (f *Filter) MightContain(raw []byte) bool {
	h := hash64(raw)
	idx := f.blockIndex(h)
	mask := blockMask(uint32(h))
	b := f.blocks[idx]
	for i := range mask {
		if b[i]&mask[i] != mask[i] {
			return false
		}
	}
	return true
}

// NumBlocks reports the filter's block count (its size is NumBlocks()*32
// bytes).
func (f *Filter) NumBlocks() int { return len(f.blocks) }

// Merge combines other into f in place, requiring both filters to share
// the same block count (they must have been built for the same
// expected-item/false-positive-rate configuration). The merged filter
// might-contain everything either input might-contain.
func (f *Filter) Merge(other *Filter) error {
	if len(f.blocks) != len(other.blocks) {
		return errors.New(ErrBlockCountMismatch, "cannot merge bloom filters with different block counts", nil)
	}
	for i := range f.blocks {
		for w := 0; w < blockWords; w++ {
			f.blocks[i][w] |= other.blocks[i][w]
		}
	}
	return nil
}
