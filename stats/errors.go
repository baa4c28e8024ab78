package stats

import "github.com/gear6io/icebergcore/pkg/errors"

var (
	ErrUnsupportedType = errors.MustNewCode("stats.unsupported_type")
	ErrValueKind       = errors.MustNewCode("stats.value_kind_mismatch")
)
