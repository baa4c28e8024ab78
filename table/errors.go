package table

import "github.com/gear6io/icebergcore/pkg/errors"

var (
	ErrMetadataInvalid     = errors.MustNewCode("table.metadata_invalid")
	ErrRequirementFailed   = errors.MustNewCode("table.requirement_failed")
	ErrUpdateInvalid       = errors.MustNewCode("table.update_invalid")
	ErrCommitConflict      = errors.MustNewCode("table.commit_conflict")
	ErrCommitRetryExhausted = errors.MustNewCode("table.commit_retry_exhausted")
	ErrCommitTransaction   = errors.MustNewCode("table.commit_transaction")
	ErrRefNotFound         = errors.MustNewCode("table.ref_not_found")
)
