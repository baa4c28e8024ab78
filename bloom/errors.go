package bloom

import "github.com/gear6io/icebergcore/pkg/errors"

var (
	ErrInvalidConfig      = errors.MustNewCode("bloom.invalid_config")
	ErrBlockCountMismatch = errors.MustNewCode("bloom.block_count_mismatch")
	ErrBadMagic           = errors.MustNewCode("bloom.bad_magic")
	ErrUnsupportedVersion = errors.MustNewCode("bloom.unsupported_version")
	ErrTruncated          = errors.MustNewCode("bloom.truncated")
	ErrUnknownColumn      = errors.MustNewCode("bloom.unknown_column")
)
