package model

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrNotFound is returned when an exact lookup (symbol, code, identifier)
// matches no record. It is an expected outcome, not a fault.
var ErrNotFound = errors.New("company not found")

// Company is a single listed company as supplied by the dataset provider.
// Records are immutable once loaded.
type Company struct {
	MarketCap MarketCap `json:"mcap"`
	ShortName string    `json:"companyshortname"`
	Name      string    `json:"companyname"`
	ISIN      string    `json:"isin"`
	Sector    string    `json:"sectorname"`
	Industry  string    `json:"industryname"`
	Type      string    `json:"type"`
	BSECode   Code      `json:"bsecode,omitempty"`
	NSESymbol Code      `json:"nsesymbol,omitempty"`
}

// Validate checks that the record carries the fields every consumer relies on.
// Market cap is not checked; invalid values are filtered at layout time.
func (c *Company) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("company name cannot be empty")
	}
	return nil
}

// Label returns the text drawn inside a bubble.
func (c Company) Label() string {
	return c.Name
}

// MarketCap is a market capitalisation in crores. Source data is loosely
// typed, so any JSON value decodes without error; only finite positive
// numbers are Valid.
type MarketCap struct {
	value float64
	set   bool
}

// NewMarketCap wraps a numeric market cap.
func NewMarketCap(v float64) MarketCap {
	return MarketCap{value: v, set: true}
}

// Value returns the raw number (0 when the source value was not numeric).
func (m MarketCap) Value() float64 {
	return m.value
}

// IsNumber reports whether the source value was a JSON number.
func (m MarketCap) IsNumber() bool {
	return m.set
}

// Valid is true iff the market cap is a finite number greater than zero.
func (m MarketCap) Valid() bool {
	return m.set && !math.IsNaN(m.value) && !math.IsInf(m.value, 0) && m.value > 0
}

// UnmarshalJSON accepts any JSON value. Non-numbers leave the market cap unset.
func (m *MarketCap) UnmarshalJSON(data []byte) error {
	*m = MarketCap{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	if c := data[0]; c != '-' && (c < '0' || c > '9') {
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return nil
	}
	m.value = v
	m.set = true
	return nil
}

// MarshalJSON writes the number, or null when the source value was not numeric.
func (m MarketCap) MarshalJSON() ([]byte, error) {
	if !m.set || math.IsNaN(m.value) || math.IsInf(m.value, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, m.value, 'f', -1, 64), nil
}

// Code is an exchange symbol or numeric exchange code. Exchange feeds publish
// BSE codes as numbers or strings; both normalise to the decimal string form.
// The empty Code means the company is not listed on that exchange.
type Code string

// UnmarshalJSON accepts a JSON string, number or null.
func (c *Code) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*c = ""
	case data[0] == '"':
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return fmt.Errorf("decode exchange code %s: %w", data, err)
		}
		*c = Code(s)
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("decode exchange code %s: %w", data, err)
		}
		*c = Code(strconv.FormatFloat(f, 'f', -1, 64))
	}
	return nil
}

// String returns the code, or "-" when absent.
func (c Code) String() string {
	if c == "" {
		return "-"
	}
	return string(c)
}
