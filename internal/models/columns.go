package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// LineItem is one row of a bill. Margin is the commission percentage captured
// at the time of sale; it is unset on bills recorded before margins existed.
type LineItem struct {
	ProductID *int64              `json:"product_id,omitempty"`
	Name      string              `json:"name,omitempty"`
	Price     decimal.Decimal     `json:"price"`
	Quantity  decimal.Decimal     `json:"quantity"`
	Margin    decimal.NullDecimal `json:"margin"`
}

// LineItems is stored as a JSON column
type LineItems []LineItem

func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

func (l *LineItems) Scan(src any) error {
	return scanJSON(src, l)
}

// StringSlice is stored as a JSON array column
type StringSlice []string

func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func (s *StringSlice) Scan(src any) error {
	return scanJSON(src, s)
}

func scanJSON(src any, dest any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dest)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported JSON column type %T", src)
	}
}
