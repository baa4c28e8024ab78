package iceberg

import "encoding/json"

type jsonPartitionField struct {
	SourceID  int    `json:"source-id"`
	FieldID   int    `json:"field-id"`
	Name      string `json:"name"`
	Transform string `json:"transform"`
}

type jsonPartitionSpec struct {
	SpecID int                  `json:"spec-id"`
	Fields []jsonPartitionField `json:"fields"`
}

// MarshalJSON renders the spec in the Iceberg table-metadata wire form.
func (spec *PartitionSpec) MarshalJSON() ([]byte, error) {
	fields := make([]jsonPartitionField, len(spec.Fields))
	for i, f := range spec.Fields {
		fields[i] = jsonPartitionField{SourceID: f.SourceID, FieldID: f.FieldID, Name: f.Name, Transform: f.Transform.String()}
	}
	return json.Marshal(jsonPartitionSpec{SpecID: spec.ID, Fields: fields})
}

// UnmarshalJSON parses a spec from its wire JSON form.
func (spec *PartitionSpec) UnmarshalJSON(data []byte) error {
	var js jsonPartitionSpec
	if err := json.Unmarshal(data, &js); err != nil {
		return err
	}
	fields := make([]PartitionField, len(js.Fields))
	for i, jf := range js.Fields {
		tr, err := ParseTransform(jf.Transform)
		if err != nil {
			return err
		}
		fields[i] = PartitionField{SourceID: jf.SourceID, FieldID: jf.FieldID, Name: jf.Name, Transform: tr}
	}
	spec.ID = js.SpecID
	spec.Fields = fields
	return nil
}
