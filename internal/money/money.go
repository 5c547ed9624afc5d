// Package money provides monetary amounts for quote pricing.
package money

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// consultFactoryLabel is the wire representation of a non-numeric price.
const consultFactoryLabel = "consult_factory"

// Amount is a monetary amount that may instead be the consult-factory
// sentinel: a valid pricing outcome whose numeric value is only available
// out-of-band. The sentinel propagates through arithmetic.
type Amount struct {
	value          decimal.Decimal
	consultFactory bool
}

// Zero returns a zero amount.
func Zero() Amount {
	return Amount{}
}

// FromDecimal wraps a decimal value.
func FromDecimal(d decimal.Decimal) Amount {
	return Amount{value: d}
}

// FromFloat wraps a float value.
func FromFloat(f float64) Amount {
	return Amount{value: decimal.NewFromFloat(f)}
}

// ConsultFactory returns the consult-factory sentinel.
func ConsultFactory() Amount {
	return Amount{consultFactory: true}
}

// IsConsultFactory reports whether the amount is the sentinel.
func (a Amount) IsConsultFactory() bool {
	return a.consultFactory
}

// Decimal returns the numeric value. It is zero for the sentinel; callers
// must check IsConsultFactory before using the value.
func (a Amount) Decimal() decimal.Decimal {
	return a.value
}

// Add sums two amounts. If either side is the sentinel the result is the
// sentinel: a price is never partially numeric.
func (a Amount) Add(b Amount) Amount {
	if a.consultFactory || b.consultFactory {
		return ConsultFactory()
	}
	return Amount{value: a.value.Add(b.value)}
}

// RoundCents rounds the amount to the currency's minor unit.
func (a Amount) RoundCents() Amount {
	if a.consultFactory {
		return a
	}
	return Amount{value: a.value.Round(2)}
}

// Equal reports whether two amounts are the same outcome.
func (a Amount) Equal(b Amount) bool {
	if a.consultFactory || b.consultFactory {
		return a.consultFactory == b.consultFactory
	}
	return a.value.Equal(b.value)
}

// String renders the amount for display and storage.
func (a Amount) String() string {
	if a.consultFactory {
		return consultFactoryLabel
	}
	return a.value.StringFixed(2)
}

// ParseStored reverses String, used when reading quotes back from storage.
func ParseStored(s string) (Amount, error) {
	if s == consultFactoryLabel {
		return ConsultFactory(), nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, err
	}
	return Amount{value: d}, nil
}

// MarshalJSON renders either the fixed-point value or the sentinel label,
// so API clients can never mistake the sentinel for a zero price.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON parses the String/MarshalJSON representation.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseStored(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
