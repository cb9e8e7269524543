package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JSONDocument is a JSON value stored in a TEXT or JSONB column and embedded
// verbatim when marshalled.
type JSONDocument []byte

// NewJSONDocument marshals v.
func NewJSONDocument(v interface{}) (JSONDocument, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return JSONDocument(b), nil
}

// Value implements driver.Valuer interface
func (j JSONDocument) Value() (driver.Value, error) {
	if len(j) == 0 {
		return "null", nil
	}
	return string(j), nil
}

// Scan implements sql.Scanner interface
func (j *JSONDocument) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append(JSONDocument(nil), v...)
	case string:
		*j = JSONDocument(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONDocument", value)
	}
	return nil
}

// MarshalJSON implements json.Marshaler
func (j JSONDocument) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

// UnmarshalJSON implements json.Unmarshaler
func (j *JSONDocument) UnmarshalJSON(data []byte) error {
	*j = append(JSONDocument(nil), data...)
	return nil
}

// Decode unmarshals the document into v.
func (j JSONDocument) Decode(v interface{}) error {
	return json.Unmarshal(j, v)
}

// AnalysisRun is one stored analysis outcome
type AnalysisRun struct {
	ID        uuid.UUID    `json:"id" db:"id"`
	Kind      string       `json:"kind" db:"kind"`
	DatasetID string       `json:"dataset_id" db:"dataset_id"`
	Params    JSONDocument `json:"params" db:"params"`
	Result    JSONDocument `json:"result" db:"result"`
	Message   string       `json:"message,omitempty" db:"message"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}

// RunFilter narrows a run listing. Zero values match everything; Limit 0
// means the repository default.
type RunFilter struct {
	Kind      string `json:"kind,omitempty" form:"kind"`
	DatasetID string `json:"dataset_id,omitempty" form:"dataset_id"`
	Limit     int    `json:"limit,omitempty" form:"limit"`
}
