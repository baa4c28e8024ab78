package bloom

import (
	"encoding/binary"
	"encoding/json"

	"github.com/gear6io/icebergcore/pkg/errors"
)

// magic is the 4-byte tag at the start of a single-column Bloom filter
// blob, distinct from any other file kind this module writes (manifest
// Avro files start with Avro's own "Obj\x01" magic; metadata/version
// files are JSON/text).
var magic = [4]byte{'I', 'B', 'L', 'M'}

const formatVersion byte = 1

// Trailer records the construction parameters a reader needs to judge
// a filter's expected accuracy.
type Trailer struct {
	Count             int64   `json:"count"`
	FalsePositiveRate float64 `json:"falsePositiveRate"`
	Algorithm         string  `json:"algorithm"`
	HashFunction      string  `json:"hashFunction"`
}

// Encode serializes f as `magic(4) | version(1) | num_blocks(4, LE) |
// blocks[num_blocks*32]` followed by a JSON trailer and its length (4
// bytes LE) as a footer.
func Encode(f *Filter, count int64, falsePositiveRate float64) ([]byte, error) {
	trailer := Trailer{
		Count:             count,
		FalsePositiveRate: falsePositiveRate,
		Algorithm:         "SPLIT_BLOCK",
		HashFunction:      "XXHASH64",
	}
	trailerJSON, err := json.Marshal(trailer)
	if err != nil {
		return nil, errors.New(ErrInvalidConfig, "failed to encode bloom filter trailer: "+err.Error(), nil)
	}

	numBlocks := len(f.blocks)
	out := make([]byte, 0, 4+1+4+numBlocks*32+len(trailerJSON)+4)
	out = append(out, magic[:]...)
	out = append(out, formatVersion)

	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(numBlocks))
	out = append(out, hdr[:]...)

	for _, b := range f.blocks {
		var buf [32]byte
		for i, w := range b {
			binary.LittleEndian.PutUint32(buf[i*4:i*4+4], w)
		}
		out = append(out, buf[:]...)
	}

	out = append(out, trailerJSON...)
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(trailerJSON)))
	out = append(out, lenBuf[:]...)
	return out, nil
}

// Decode parses a filter previously written by Encode.
func Decode(data []byte) (*Filter, *Trailer, error) {
	if len(data) < 4+1+4+4 {
		return nil, nil, errors.New(ErrTruncated, "bloom filter blob too short", nil)
	}
	if [4]byte(data[:4]) != magic {
		return nil, nil, errors.New(ErrBadMagic, "bloom filter magic mismatch", nil)
	}
	version := data[4]
	if version != formatVersion {
		return nil, nil, errors.New(ErrUnsupportedVersion, "unsupported bloom filter version", nil)
	}
	numBlocks := int(binary.LittleEndian.Uint32(data[5:9]))
	blocksEnd := 9 + numBlocks*32
	if blocksEnd+4 > len(data) {
		return nil, nil, errors.New(ErrTruncated, "bloom filter blob truncated before trailer", nil)
	}

	blocks := make([]block, numBlocks)
	for i := 0; i < numBlocks; i++ {
		off := 9 + i*32
		var b block
		for w := 0; w < blockWords; w++ {
			b[w] = binary.LittleEndian.Uint32(data[off+w*4 : off+w*4+4])
		}
		blocks[i] = b
	}

	trailerLen := binary.LittleEndian.Uint32(data[len(data)-4:])
	trailerStart := len(data) - 4 - int(trailerLen)
	if trailerStart < blocksEnd {
		return nil, nil, errors.New(ErrTruncated, "bloom filter trailer length out of range", nil)
	}
	var trailer Trailer
	if err := json.Unmarshal(data[trailerStart:trailerStart+int(trailerLen)], &trailer); err != nil {
		return nil, nil, errors.New(ErrTruncated, "failed to decode bloom filter trailer: "+err.Error(), nil)
	}

	return &Filter{blocks: blocks}, &trailer, nil
}
