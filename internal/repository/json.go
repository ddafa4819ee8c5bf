package repository

import "encoding/json"

// jsonColumn marshals a value for storage in a JSON column. A nil slice is
// stored as "[]" so scans never see NULL.
func jsonColumn(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return []byte("[]"), nil
	}
	return b, nil
}

// scanJSON unmarshals a JSON column into dst, treating empty input as an
// absent value.
func scanJSON(raw []byte, dst interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
