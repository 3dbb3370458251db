// Package entity provides base types for all domain entities.
package entity

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Attributes holds per-entity custom fields, stored as JSONB. Numeric
// values are decoded as json.Number rather than float64 so quantities and
// money survive the round trip without precision loss.
type Attributes map[string]any

// Scan implements sql.Scanner for reading JSONB.
func (a *Attributes) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*a = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported type for Attributes: %T", src)
	}
	if len(raw) == 0 {
		*a = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var result map[string]any
	if err := dec.Decode(&result); err != nil {
		return fmt.Errorf("failed to decode Attributes: %w", err)
	}
	*a = result
	return nil
}

// Value implements driver.Valuer for writing JSONB.
func (a Attributes) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

// Has checks if key exists (including nil values).
func (a Attributes) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// Set adds or updates a value, allocating the map on first use.
func (a *Attributes) Set(key string, value any) Attributes {
	if *a == nil {
		*a = make(Attributes)
	}
	(*a)[key] = value
	return *a
}

// GetString returns the string value, or "" when absent or of another type.
func (a Attributes) GetString(key string) string {
	v, _ := a[key].(string)
	return v
}

// GetBool returns the boolean value, or false when absent.
func (a Attributes) GetBool(key string) bool {
	v, _ := a[key].(bool)
	return v
}

// GetDecimal returns the value as a decimal with full precision, which is
// what monetary custom fields need.
func (a Attributes) GetDecimal(key string) decimal.Decimal {
	var raw string
	switch v := a[key].(type) {
	case json.Number:
		raw = v.String()
	case string:
		raw = v
	case float64:
		return decimal.NewFromFloat(v)
	default:
		return decimal.Zero
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}
