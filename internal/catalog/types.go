// Package catalog provides read access to product families, their
// configurable options, and material pricing rules.
//
// Options are always family-scoped: the same option name can carry a
// different choice set and different adders per family, and lookups are
// keyed by (family, option name) so instances are never merged.
package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sensorline/levelquote/internal/money"
)

// OptionCategory classifies a configurable attribute.
type OptionCategory string

const (
	CategoryMaterial   OptionCategory = "material"
	CategoryVoltage    OptionCategory = "voltage"
	CategoryLength     OptionCategory = "length"
	CategoryConnection OptionCategory = "connection"
	CategoryInsulator  OptionCategory = "insulator"
	CategoryHousing    OptionCategory = "housing"
	CategoryAccessory  OptionCategory = "accessory"
)

// PriceBasis tags how an option's adders are applied.
type PriceBasis string

const (
	BasisFixed   PriceBasis = "fixed"
	BasisPerInch PriceBasis = "per_inch"
	BasisPerFoot PriceBasis = "per_foot"
)

// ProductFamily is a product line. Immutable after catalog load.
type ProductFamily struct {
	ID          int64
	Name        string
	Description string
	Category    string
	// BasePrice is the consult-factory sentinel for families priced only
	// by factory quote.
	BasePrice  money.Amount
	BaseLength float64
}

// Choice is one selectable value of an option.
type Choice struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Adder is a price delta for a single choice. Manual marks choices priced
// by factory quote.
type Adder struct {
	Manual bool
	Amount decimal.Decimal
}

// UnmarshalJSON accepts either a number or the "manual" sentinel string.
func (a *Adder) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "manual" {
			return fmt.Errorf("adder string value must be \"manual\", got %q", s)
		}
		*a = Adder{Manual: true}
		return nil
	}
	var d decimal.Decimal
	if err := json.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("adder must be a number or \"manual\": %w", err)
	}
	*a = Adder{Amount: d}
	return nil
}

// MarshalJSON is the inverse of UnmarshalJSON.
func (a Adder) MarshalJSON() ([]byte, error) {
	if a.Manual {
		return json.Marshal("manual")
	}
	return json.Marshal(a.Amount)
}

// Option is a configurable attribute with its choice list, adders, and
// structured rules. An Option value held by a FamilyOption has already
// been specialized to that family.
type Option struct {
	ID       int64
	Name     string
	Category OptionCategory
	Basis    PriceBasis
	Choices  []Choice
	Adders   map[string]Adder
	Rules    []Rule
	// ModelSuffix marks options whose code is appended to the model number
	// (housing, diameter upgrades and the like).
	ModelSuffix bool
}

// Choice returns the choice with the given code.
func (o Option) Choice(code string) (Choice, bool) {
	for _, c := range o.Choices {
		if c.Code == code {
			return c, true
		}
	}
	return Choice{}, false
}

// FamilyOption is an option as offered by one specific family.
type FamilyOption struct {
	Option      Option
	Available   bool
	Required    bool
	DefaultCode string
	Position    int
}

// MaterialRule carries the length and pricing metadata of a probe material.
type MaterialRule struct {
	Code               string
	Name               string
	BaseLength         float64
	PerInchAdder       decimal.Decimal
	PerFootAdder       decimal.Decimal
	HasLengthSurcharge bool
	LengthSurcharge    decimal.Decimal
	BasePriceAdder     decimal.Decimal
	StandardLengths    []float64
}

// IsStandardLength reports whether the length is in the material's
// pre-approved standard set (lengths that do not trigger the surcharge).
func (m MaterialRule) IsStandardLength(length float64) bool {
	for _, l := range m.StandardLengths {
		if l == length {
			return true
		}
	}
	return false
}

// FamilySnapshot is the immutable catalog view a configuration session
// works against. It is loaded once per session; later catalog edits are
// not observed until the next load.
type FamilySnapshot struct {
	Family    ProductFamily
	Options   []FamilyOption
	Materials map[string]MaterialRule
}

// Option returns the family-scoped option with the given name.
func (s *FamilySnapshot) Option(name string) (FamilyOption, bool) {
	for _, fo := range s.Options {
		if fo.Option.Name == name {
			return fo, true
		}
	}
	return FamilyOption{}, false
}

// OptionByCategory returns the first available option of the category.
func (s *FamilySnapshot) OptionByCategory(cat OptionCategory) (FamilyOption, bool) {
	for _, fo := range s.Options {
		if fo.Option.Category == cat && fo.Available {
			return fo, true
		}
	}
	return FamilyOption{}, false
}

// Rules returns the structured rules of every option in the snapshot.
func (s *FamilySnapshot) Rules() []Rule {
	var rules []Rule
	for _, fo := range s.Options {
		rules = append(rules, fo.Option.Rules...)
	}
	return rules
}
