package deletes

import "github.com/gear6io/icebergcore/pkg/errors"

var (
	ErrInvalidDeleteFile = errors.MustNewCode("deletes.invalid_delete_file")
	ErrMultipleActiveDVs = errors.MustNewCode("deletes.multiple_active_dvs")
)

func newError(code errors.Code, msg string) error {
	return errors.New(code, msg, nil)
}
