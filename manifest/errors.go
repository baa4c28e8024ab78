package manifest

import "github.com/gear6io/icebergcore/pkg/errors"

var (
	ErrInvalidDataFile   = errors.MustNewCode("manifest.invalid_data_file")
	ErrInvalidManifest   = errors.MustNewCode("manifest.invalid_manifest")
	ErrPartitionMismatch = errors.MustNewCode("manifest.partition_mismatch")
	ErrEncode            = errors.MustNewCode("manifest.encode_failed")
	ErrDecode            = errors.MustNewCode("manifest.decode_failed")
)

func newError(code errors.Code, msg string) error {
	return errors.New(code, msg, nil)
}
