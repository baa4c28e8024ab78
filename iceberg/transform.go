package iceberg

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gear6io/icebergcore/pkg/errors"
	"github.com/spaolacci/murmur3"
)

// TransformKind identifies a partition/sort transform function.
type TransformKind string

const (
	TransformIdentity TransformKind = "identity"
	TransformBucket   TransformKind = "bucket"
	TransformTruncate TransformKind = "truncate"
	TransformYear     TransformKind = "year"
	TransformMonth    TransformKind = "month"
	TransformDay      TransformKind = "day"
	TransformHour     TransformKind = "hour"
	TransformVoid     TransformKind = "void"
)

// Transform is a parsed partition/sort transform, e.g. "bucket[16]" or
// "truncate[10]".
type Transform struct {
	Kind TransformKind
	Arg  int // N for bucket[N], W for truncate[W]; unused otherwise
}

func (t Transform) String() string {
	switch t.Kind {
	case TransformBucket:
		return fmt.Sprintf("bucket[%d]", t.Arg)
	case TransformTruncate:
		return fmt.Sprintf("truncate[%d]", t.Arg)
	default:
		return string(t.Kind)
	}
}

// ParseTransform parses the canonical string form of a transform.
func ParseTransform(s string) (Transform, error) {
	switch s {
	case string(TransformIdentity), string(TransformYear), string(TransformMonth),
		string(TransformDay), string(TransformHour), string(TransformVoid):
		return Transform{Kind: TransformKind(s)}, nil
	}
	if strings.HasPrefix(s, "bucket[") && strings.HasSuffix(s, "]") {
		var n int
		if _, err := fmt.Sscanf(s, "bucket[%d]", &n); err != nil || n <= 0 {
			return Transform{}, errors.New(ErrInvalidTransform, fmt.Sprintf("invalid bucket transform %q", s), nil)
		}
		return Transform{Kind: TransformBucket, Arg: n}, nil
	}
	if strings.HasPrefix(s, "truncate[") && strings.HasSuffix(s, "]") {
		var w int
		if _, err := fmt.Sscanf(s, "truncate[%d]", &w); err != nil || w <= 0 {
			return Transform{}, errors.New(ErrInvalidTransform, fmt.Sprintf("invalid truncate transform %q", s), nil)
		}
		return Transform{Kind: TransformTruncate, Arg: w}, nil
	}
	return Transform{}, errors.New(ErrInvalidTransform, fmt.Sprintf("unrecognized transform %q", s), nil)
}

// ResultTypeFor returns the partition/sort result type for applying t to a
// source column of type sourceType.
func (t Transform) ResultTypeFor(sourceType Type) (Type, error) {
	switch t.Kind {
	case TransformIdentity:
		return sourceType, nil
	case TransformBucket:
		return Int32, nil
	case TransformTruncate:
		return sourceType, nil
	case TransformYear, TransformMonth:
		return Int32, nil
	case TransformDay:
		return Date, nil
	case TransformHour:
		return Int32, nil
	case TransformVoid:
		return sourceType, nil
	}
	return nil, errors.New(ErrInvalidTransform, fmt.Sprintf("unknown transform %q", t.Kind), nil)
}

// bucketHash32 runs the 32-bit bit variant of MurmurHash3 (x86_32, seed 0)
// over the transform's canonical byte encoding of a value, per the Iceberg
// bucket-partitioning spec.
func bucketHash32(canonical []byte) int32 {
	return int32(murmur3.Sum32WithSeed(canonical, 0))
}

// Bucket computes bucket[n] for a canonically-encoded value.
func Bucket(canonical []byte, n int) int32 {
	h := bucketHash32(canonical)
	// (h & MaxInt32) % n, per the Iceberg partitioning spec's non-negative
	// modulus rule.
	return (h & math.MaxInt32) % int32(n)
}

// CanonicalInt32 encodes an int32 value in the little-endian form the
// bucket-transform hash expects.
func CanonicalInt32(v int32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(v))
	return b
}

// CanonicalInt64 encodes an int64 value (also used for date/time/timestamp
// values, which are all stored as the appropriate int64 count internally).
func CanonicalInt64(v int64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, uint64(v))
	return b
}

// CanonicalString encodes a string as UTF-8 bytes.
func CanonicalString(v string) []byte { return []byte(v) }

// CanonicalDecimal encodes a decimal's unscaled value as a two's-complement
// big-endian byte array, per the Iceberg decimal bucket-transform spec.
func CanonicalDecimal(unscaled []byte) []byte { return unscaled }

// TruncateInt truncates an integer value down to the nearest multiple of w.
func TruncateInt(v int64, w int64) int64 {
	if w <= 0 {
		return v
	}
	r := v % w
	if r < 0 {
		r += w
	}
	return v - r
}

// TruncateString truncates a string to at most w unicode code points.
func TruncateString(v string, w int) string {
	r := []rune(v)
	if len(r) <= w {
		return v
	}
	return string(r[:w])
}

// TruncateBinary truncates a byte slice to at most w bytes.
func TruncateBinary(v []byte, w int) []byte {
	if len(v) <= w {
		return v
	}
	return v[:w]
}

const epochYear = 1970

// YearOf returns the number of years since the Unix epoch for t.
func YearOf(t time.Time) int32 { return int32(t.UTC().Year() - epochYear) }

// MonthOf returns the number of months since the Unix epoch for t.
func MonthOf(t time.Time) int32 {
	u := t.UTC()
	return int32((u.Year()-epochYear)*12 + int(u.Month()) - 1)
}

// DayOf returns the number of days since the Unix epoch for t (an Iceberg
// "date" value).
func DayOf(t time.Time) int32 {
	days := t.UTC().Truncate(24 * time.Hour).Unix() / 86400
	return int32(days)
}

// HourOf returns the number of hours since the Unix epoch for t.
func HourOf(t time.Time) int32 {
	return int32(t.UTC().Unix() / 3600)
}
