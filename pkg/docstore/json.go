package docstore

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// JSON is a raw JSON column that works with both PostgreSQL and SQLite.
type JSON json.RawMessage

// Value implements driver.Valuer interface for database writes.
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	if !json.Valid(j) {
		return nil, errors.New("invalid JSON")
	}
	return []byte(j), nil
}

// Scan implements sql.Scanner interface for database reads.
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = JSON("null")
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = append([]byte(nil), v...)
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to unmarshal JSON value: unsupported type %T", value)
	}

	if !json.Valid(bytes) {
		return errors.New("invalid JSON in database")
	}

	*j = JSON(bytes)
	return nil
}

// MarshalJSON implements json.Marshaler interface.
func (j JSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return []byte(j), nil
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return errors.New("JSON: UnmarshalJSON on nil pointer")
	}
	*j = append((*j)[0:0], data...)
	return nil
}

// encodeMap serializes a document payload. A nil map is stored as "{}".
func encodeMap(m map[string]any) (JSON, error) {
	if m == nil {
		return JSON("{}"), nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("error encoding document data: %w", err)
	}
	return JSON(b), nil
}

// decodeMap deserializes a stored payload. "null" yields an empty map.
// Numbers decode as json.Number so integers keep their exact value.
func decodeMap(j JSON) (map[string]any, error) {
	m := map[string]any{}
	if len(j) == 0 || string(j) == "null" {
		return m, nil
	}
	dec := json.NewDecoder(bytes.NewReader(j))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("error decoding document data: %w", err)
	}
	return m, nil
}

// normalize round-trips constraint values through JSON so they compare equal
// to decoded document fields (e.g. int 3 becomes json.Number "3").
func normalize(m map[string]any) (map[string]any, error) {
	if len(m) == 0 {
		return nil, nil
	}
	encoded, err := encodeMap(m)
	if err != nil {
		return nil, err
	}
	return decodeMap(encoded)
}
