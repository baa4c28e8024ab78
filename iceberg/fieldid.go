package iceberg

// FieldIDManager assigns monotonically increasing field IDs, mirroring the
// `last-column-id` counter carried in table metadata: once allocated, an ID
// is never reused even if the field it named is later dropped.
type FieldIDManager struct {
	last int
}

// NewFieldIDManager seeds the counter from the table's last-assigned value.
func NewFieldIDManager(lastAssigned int) *FieldIDManager {
	return &FieldIDManager{last: lastAssigned}
}

// Next allocates and returns the next unused field ID.
func (m *FieldIDManager) Next() int {
	m.last++
	return m.last
}

// LastAssigned returns the highest ID handed out so far.
func (m *FieldIDManager) LastAssigned() int { return m.last }

// Reserve advances the counter past id if id is higher than anything seen,
// used when importing a schema whose fields already carry IDs.
func (m *FieldIDManager) Reserve(id int) {
	if id > m.last {
		m.last = id
	}
}
