package snapshot

import "github.com/gear6io/icebergcore/pkg/errors"

var (
	ErrSequenceNotMonotonic = errors.MustNewCode("snapshot.sequence_not_monotonic")
	ErrNoChanges            = errors.MustNewCode("snapshot.no_changes")
)
