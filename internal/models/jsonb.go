package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"sku-reconciliation-service/internal/matching"
)

// JSONB custom type for PostgreSQL JSONB
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = make(map[string]interface{})
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

func (j JSONB) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}(j))
}

func (j *JSONB) UnmarshalJSON(data []byte) error {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*j = JSONB(m)
	return nil
}

// PlatformList stores an ordered list of platforms in a JSONB column
type PlatformList []matching.Platform

func (p PlatformList) Value() (driver.Value, error) {
	if p == nil {
		return json.Marshal([]matching.Platform{})
	}
	return json.Marshal([]matching.Platform(p))
}

func (p *PlatformList) Scan(value interface{}) error {
	if value == nil {
		*p = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported platform list type %T", value)
	}
	return json.Unmarshal(data, (*[]matching.Platform)(p))
}
