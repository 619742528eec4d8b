package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON type for flexible storage
type JSON map[string]interface{}

// NewJSON copies a plain map into a JSON column value.
func NewJSON(m map[string]interface{}) JSON {
	if m == nil {
		return nil
	}
	j := make(JSON, len(m))
	for k, v := range m {
		j[k] = v
	}
	return j
}

// Value implements the driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	b, err := scanBytes(value)
	if err != nil || b == nil {
		return err
	}
	return json.Unmarshal(b, j)
}

// Strings is a JSON-encoded list column (card codes, image URLs, user ids).
type Strings []string

func (s Strings) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *Strings) Scan(value interface{}) error {
	b, err := scanBytes(value)
	if err != nil || b == nil {
		return err
	}
	return json.Unmarshal(b, (*[]string)(s))
}

// UintList is a JSON-encoded list of ids.
type UintList []uint

func (l UintList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]uint(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *UintList) Scan(value interface{}) error {
	b, err := scanBytes(value)
	if err != nil || b == nil {
		return err
	}
	return json.Unmarshal(b, (*[]uint)(l))
}

func scanBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported json column type %T", value)
	}
}
