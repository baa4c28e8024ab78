package iceberg

import (
	"fmt"

	"github.com/gear6io/icebergcore/pkg/errors"
)

// SortDirection is "asc" or "desc".
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// NullOrder is "nulls-first" or "nulls-last".
type NullOrder string

const (
	NullsFirst NullOrder = "nulls-first"
	NullsLast  NullOrder = "nulls-last"
)

// SortField is one column (through an optional transform) in a SortOrder.
type SortField struct {
	SourceID  int
	Transform Transform
	Direction SortDirection
	NullOrder NullOrder
}

// SortOrder is an ordered list of sort fields plus an order ID. Order ID 0
// is reserved for "unsorted" and must have no fields.
type SortOrder struct {
	ID     int
	Fields []SortField
}

// UnsortedOrder is the canonical order-id-0 "no sort order" value.
var UnsortedOrder = &SortOrder{ID: 0}

// NewSortOrder validates and constructs a sort order against schema.
func NewSortOrder(schema *Schema, id int, fields ...SortField) (*SortOrder, error) {
	if id == 0 && len(fields) > 0 {
		return nil, errors.New(ErrSortOrderError, "sort order id 0 is reserved for the unsorted order and must have no fields", nil)
	}
	for _, f := range fields {
		if _, ok := schema.FieldByID(f.SourceID); !ok {
			return nil, errors.New(ErrFieldNotFound, fmt.Sprintf("sort field source id %d not found in schema", f.SourceID), nil)
		}
		if f.Direction != SortAsc && f.Direction != SortDesc {
			return nil, errors.New(ErrSortOrderError, fmt.Sprintf("invalid sort direction %q", f.Direction), nil)
		}
		if f.NullOrder != NullsFirst && f.NullOrder != NullsLast {
			return nil, errors.New(ErrSortOrderError, fmt.Sprintf("invalid null order %q", f.NullOrder), nil)
		}
	}
	return &SortOrder{ID: id, Fields: fields}, nil
}

// IsUnsorted reports whether this is the order-id-0 unsorted order.
func (s *SortOrder) IsUnsorted() bool { return s.ID == 0 && len(s.Fields) == 0 }

// SatisfiedBy reports whether this sort order's prefix is satisfied by
// other's field ordering, direction and null order, used to decide whether
// data written under one sort order can be treated as clustered by another
// (a compatible-prefix relationship, not full equality).
func (s *SortOrder) SatisfiedBy(other *SortOrder) bool {
	if len(other.Fields) < len(s.Fields) {
		return false
	}
	for i, f := range s.Fields {
		o := other.Fields[i]
		if f.SourceID != o.SourceID || f.Transform != o.Transform ||
			f.Direction != o.Direction || f.NullOrder != o.NullOrder {
			return false
		}
	}
	return true
}
