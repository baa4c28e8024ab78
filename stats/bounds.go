// Package stats implements the column-statistics collector, comparators,
// binary bound encoding, and zone-map pruning predicates used to skip
// files during a scan.
package stats

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"math/big"

	"github.com/google/uuid"

	"github.com/gear6io/icebergcore/iceberg"
	"github.com/gear6io/icebergcore/pkg/errors"
)

// IsFloatKind reports whether t is float or double, the only kinds that
// track a NaN count and exclude NaN values from min/max bounds.
func IsFloatKind(t iceberg.Type) bool {
	p, ok := t.(*iceberg.Primitive)
	return ok && (p.Kind() == iceberg.KindFloat || p.Kind() == iceberg.KindDouble)
}

// EncodeBound renders v (a Go value of the type t's Kind implies, e.g. bool
// for boolean, int32 for int, int64 for long/timestamp/time, float32/
// float64 for float/double, string for string/uuid, []byte for binary/
// fixed/decimal) into its binary lower/upper-bound encoding.
// isNaN reports a float/double value that was NaN: the caller excludes it
// from bounds and instead counts it.
func EncodeBound(t iceberg.Type, v any) (encoded []byte, isNaN bool, err error) {
	switch p := t.(type) {
	case *iceberg.Primitive:
		return encodePrimitiveBound(p, v)
	case *iceberg.Decimal:
		b, err := asBytes(v)
		if err != nil {
			return nil, false, err
		}
		return b, false, nil
	case *iceberg.Fixed:
		b, err := asBytes(v)
		if err != nil {
			return nil, false, err
		}
		return b, false, nil
	}
	return nil, false, errf(ErrUnsupportedType, "cannot encode bound for type %s", t.String())
}

func encodePrimitiveBound(p *iceberg.Primitive, v any) ([]byte, bool, error) {
	switch p.Kind() {
	case iceberg.KindBoolean:
		b, err := asBool(v)
		if err != nil {
			return nil, false, err
		}
		if b {
			return []byte{1}, false, nil
		}
		return []byte{0}, false, nil
	case iceberg.KindInt, iceberg.KindDate:
		n, err := asInt32(v)
		if err != nil {
			return nil, false, err
		}
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, uint32(n))
		return buf, false, nil
	case iceberg.KindLong, iceberg.KindTime, iceberg.KindTimestamp, iceberg.KindTimestamptz,
		iceberg.KindTimestampNs, iceberg.KindTimestamptzNs:
		n, err := asInt64(v)
		if err != nil {
			return nil, false, err
		}
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, uint64(n))
		return buf, false, nil
	case iceberg.KindFloat:
		f, err := asFloat32(v)
		if err != nil {
			return nil, false, err
		}
		if math.IsNaN(float64(f)) {
			return nil, true, nil
		}
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, math.Float32bits(f))
		return buf, false, nil
	case iceberg.KindDouble:
		f, err := asFloat64(v)
		if err != nil {
			return nil, false, err
		}
		if math.IsNaN(f) {
			return nil, true, nil
		}
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, math.Float64bits(f))
		return buf, false, nil
	case iceberg.KindString:
		s, err := asString(v)
		if err != nil {
			return nil, false, err
		}
		return []byte(s), false, nil
	case iceberg.KindUUID:
		b, err := asUUIDBytes(v)
		if err != nil {
			return nil, false, err
		}
		return b, false, nil
	case iceberg.KindBinary, iceberg.KindVariant, iceberg.KindGeometry, iceberg.KindGeography, iceberg.KindUnknown:
		b, err := asBytes(v)
		if err != nil {
			return nil, false, err
		}
		return b, false, nil
	}
	return nil, false, errf(ErrUnsupportedType, "cannot encode bound for primitive kind %q", p.Kind())
}

// Compare orders two binary-encoded bounds of the same type t, using the
// comparator appropriate to its type family.
func Compare(t iceberg.Type, a, b []byte) int {
	switch p := t.(type) {
	case *iceberg.Primitive:
		return comparePrimitive(p, a, b)
	case *iceberg.Decimal:
		// Unscaled two's-complement big-endian values, compared as signed
		// integers (bounds of one column share its scale).
		x, y := new(big.Int).SetBytes(a), new(big.Int).SetBytes(b)
		if len(a) > 0 && a[0]&0x80 != 0 {
			x.Sub(x, new(big.Int).Lsh(big.NewInt(1), uint(len(a)*8)))
		}
		if len(b) > 0 && b[0]&0x80 != 0 {
			y.Sub(y, new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8)))
		}
		return x.Cmp(y)
	case *iceberg.Fixed:
		return bytes.Compare(a, b) // raw unsigned byte order
	}
	return bytes.Compare(a, b)
}

func comparePrimitive(p *iceberg.Primitive, a, b []byte) int {
	switch p.Kind() {
	case iceberg.KindBoolean:
		// false < true
		if len(a) == 0 || len(b) == 0 {
			return bytes.Compare(a, b)
		}
		return int(a[0]) - int(b[0])
	case iceberg.KindInt, iceberg.KindDate:
		x := int32(binary.LittleEndian.Uint32(a))
		y := int32(binary.LittleEndian.Uint32(b))
		return cmpInt64(int64(x), int64(y))
	case iceberg.KindLong, iceberg.KindTime, iceberg.KindTimestamp, iceberg.KindTimestamptz,
		iceberg.KindTimestampNs, iceberg.KindTimestamptzNs:
		x := int64(binary.LittleEndian.Uint64(a))
		y := int64(binary.LittleEndian.Uint64(b))
		return cmpInt64(x, y)
	case iceberg.KindFloat:
		x := math.Float32frombits(binary.LittleEndian.Uint32(a))
		y := math.Float32frombits(binary.LittleEndian.Uint32(b))
		return cmpFloat64(float64(x), float64(y))
	case iceberg.KindDouble:
		x := math.Float64frombits(binary.LittleEndian.Uint64(a))
		y := math.Float64frombits(binary.LittleEndian.Uint64(b))
		return cmpFloat64(x, y)
	case iceberg.KindString, iceberg.KindUUID, iceberg.KindBinary,
		iceberg.KindVariant, iceberg.KindGeometry, iceberg.KindGeography, iceberg.KindUnknown:
		return bytes.Compare(a, b) // lexicographic by unsigned byte / Unicode code-point order
	}
	return bytes.Compare(a, b)
}

func cmpInt64(x, y int64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

func cmpFloat64(x, y float64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

func asBool(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, errf(ErrValueKind, "expected bool, got %T", v)
	}
	return b, nil
}

func asInt32(v any) (int32, error) {
	switch n := v.(type) {
	case int32:
		return n, nil
	case int:
		return int32(n), nil
	}
	return 0, errf(ErrValueKind, "expected int32, got %T", v)
}

func asInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int:
		return int64(n), nil
	}
	return 0, errf(ErrValueKind, "expected int64, got %T", v)
}

func asFloat32(v any) (float32, error) {
	f, ok := v.(float32)
	if !ok {
		return 0, errf(ErrValueKind, "expected float32, got %T", v)
	}
	return f, nil
}

func asFloat64(v any) (float64, error) {
	switch f := v.(type) {
	case float64:
		return f, nil
	case float32:
		return float64(f), nil
	}
	return 0, errf(ErrValueKind, "expected float64, got %T", v)
}

func asString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", errf(ErrValueKind, "expected string, got %T", v)
	}
	return s, nil
}

func asBytes(v any) ([]byte, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, errf(ErrValueKind, "expected []byte, got %T", v)
	}
	return b, nil
}

func asUUIDBytes(v any) ([]byte, error) {
	switch u := v.(type) {
	case uuid.UUID:
		b := u
		return b[:], nil
	case string:
		parsed, err := uuid.Parse(u)
		if err != nil {
			return nil, errf(ErrValueKind, "invalid uuid string %q", u)
		}
		return parsed[:], nil
	case []byte:
		if len(u) != 16 {
			return nil, errf(ErrValueKind, "uuid bytes must be 16 bytes, got %d", len(u))
		}
		return u, nil
	}
	return nil, errf(ErrValueKind, "expected uuid, got %T", v)
}

func errf(code errors.Code, format string, args ...any) error {
	return errors.New(code, fmt.Sprintf(format, args...), nil)
}
