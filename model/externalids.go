package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/censustools/kintree/helper"
)

// ExternalIDs maps a namespace (e.g. "national_id", "census_2021") to an
// identifier string. Stored as JSONB in PostgreSQL.
type ExternalIDs map[string]string

// Value implements the driver.Valuer interface for database storage
func (e ExternalIDs) Value() (driver.Value, error) {
	return e.Marshal()
}

// Scan implements the sql.Scanner interface for database retrieval
func (e *ExternalIDs) Scan(value interface{}) error {
	return e.Unmarshal(value)
}

// Marshal converts ExternalIDs to JSON bytes
func (e ExternalIDs) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Unmarshal converts JSON bytes or ExternalIDs to ExternalIDs
func (e *ExternalIDs) Unmarshal(value interface{}) error {
	if value == nil {
		*e = ExternalIDs{}
		return nil
	}

	if s, ok := value.(ExternalIDs); ok {
		*e = s
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return helper.NewError("byte assertion", errors.New("type assertion to []byte failed"))
	}

	return json.Unmarshal(b, e)
}
