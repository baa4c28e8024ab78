package storage

import "github.com/gear6io/icebergcore/pkg/errors"

var (
	ErrNotFound      = errors.MustNewCode("storage.not_found")
	ErrAlreadyExists = errors.MustNewCode("storage.already_exists")
	ErrIO            = errors.MustNewCode("storage.io_failure")
)
