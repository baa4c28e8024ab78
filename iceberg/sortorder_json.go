package iceberg

import "encoding/json"

type jsonSortField struct {
	SourceID  int    `json:"source-id"`
	Transform string `json:"transform"`
	Direction string `json:"direction"`
	NullOrder string `json:"null-order"`
}

type jsonSortOrder struct {
	OrderID int             `json:"order-id"`
	Fields  []jsonSortField `json:"fields"`
}

// MarshalJSON renders the sort order in the Iceberg table-metadata wire form.
func (s *SortOrder) MarshalJSON() ([]byte, error) {
	fields := make([]jsonSortField, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = jsonSortField{
			SourceID: f.SourceID, Transform: f.Transform.String(),
			Direction: string(f.Direction), NullOrder: string(f.NullOrder),
		}
	}
	return json.Marshal(jsonSortOrder{OrderID: s.ID, Fields: fields})
}

// UnmarshalJSON parses a sort order from its wire JSON form.
func (s *SortOrder) UnmarshalJSON(data []byte) error {
	var js jsonSortOrder
	if err := json.Unmarshal(data, &js); err != nil {
		return err
	}
	fields := make([]SortField, len(js.Fields))
	for i, jf := range js.Fields {
		tr, err := ParseTransform(jf.Transform)
		if err != nil {
			return err
		}
		fields[i] = SortField{
			SourceID: jf.SourceID, Transform: tr,
			Direction: SortDirection(jf.Direction), NullOrder: NullOrder(jf.NullOrder),
		}
	}
	s.ID = js.OrderID
	s.Fields = fields
	return nil
}
