package iceberg

import "github.com/gear6io/icebergcore/pkg/errors"

// Schema validation and evolution error codes, grouped by concern
// (structural validation, field lookup/mutation, partitioning/ordering).
var (
	ErrInvalidFieldID      = errors.MustNewCode("iceberg.invalid_field_id")
	ErrDuplicateFieldName  = errors.MustNewCode("iceberg.duplicate_field_name")
	ErrInvalidType         = errors.MustNewCode("iceberg.invalid_type")
	ErrInvalidDecimalParam = errors.MustNewCode("iceberg.invalid_decimal_param")
	ErrInvalidFixedLength  = errors.MustNewCode("iceberg.invalid_fixed_length")

	ErrFieldNotFound           = errors.MustNewCode("iceberg.field_not_found")
	ErrFieldExists             = errors.MustNewCode("iceberg.field_exists")
	ErrIncompatibleType        = errors.MustNewCode("iceberg.incompatible_type")
	ErrRequiredFieldNoDefault  = errors.MustNewCode("iceberg.required_no_default")
	ErrInvalidOperation        = errors.MustNewCode("iceberg.invalid_operation")
	ErrInvalidPosition         = errors.MustNewCode("iceberg.invalid_position")
	ErrIdentifierFieldConflict = errors.MustNewCode("iceberg.identifier_field_conflict")

	ErrInvalidTransform   = errors.MustNewCode("iceberg.invalid_transform")
	ErrPartitionSpecError = errors.MustNewCode("iceberg.partition_spec_error")
	ErrSortOrderError     = errors.MustNewCode("iceberg.sort_order_error")
)
