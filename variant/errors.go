package variant

import "github.com/gear6io/icebergcore/pkg/errors"

var (
	ErrUnknownShredType = errors.MustNewCode("variant.unknown_shred_type")
	ErrDuplicatePath    = errors.MustNewCode("variant.duplicate_path")
)

func newError(code errors.Code, msg string) error {
	return errors.New(code, msg, nil)
}
