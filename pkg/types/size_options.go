package types

import (
	"database/sql/driver"
	"encoding/json"
)

// SizeOption is one purchasable size of a print and its price in euros.
type SizeOption struct {
	Size  string  `json:"size"`
	Price float64 `json:"price"`
}

// SizeOptions stores the available sizes of a print inside a JSONB column.
type SizeOptions []SizeOption

// Value serializes the options to JSON text so both Postgres JSONB and SQLite
// TEXT columns accept it.
func (s SizeOptions) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	raw, err := json.Marshal([]SizeOption(s))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan decodes JSONB into the options slice.
func (s *SizeOptions) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded []SizeOption
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*s = decoded
	return nil
}

// Find returns the option for size.
func (s SizeOptions) Find(size string) (SizeOption, bool) {
	for _, opt := range s {
		if opt.Size == size {
			return opt, true
		}
	}
	return SizeOption{}, false
}
