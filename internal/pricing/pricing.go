// Package pricing computes a quoted price from a family snapshot and a
// selection map. It is pure: the same inputs always produce the same
// result, and the session treats the result as a recomputable cache.
package pricing

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/sensorline/levelquote/internal/catalog"
	qerr "github.com/sensorline/levelquote/internal/errors"
	"github.com/sensorline/levelquote/internal/money"
)

const inchesPerFoot = 12.0

// OptionAdder is one applied option price delta.
type OptionAdder struct {
	Option string
	Choice string
	Amount money.Amount
}

// Breakdown contains the line-item values of the price calculation.
type Breakdown struct {
	Base            money.Amount
	MaterialAdder   money.Amount
	LengthAdder     money.Amount
	LengthSurcharge money.Amount
	OptionAdders    []OptionAdder
}

// Result groups the full pricing output.
type Result struct {
	Breakdown Breakdown
	Total     money.Amount
}

// Calculate prices a (possibly partial) selection against a family
// snapshot. The computation order is fixed: base price, material adder,
// length pricing, nonstandard-length surcharge, then every remaining
// option adder. A consult-factory value anywhere makes the whole total
// consult-factory; a missing adder entry is an UnknownAdder error, never a
// silent zero.
func Calculate(snap *catalog.FamilySnapshot, selected map[string]string) (Result, error) {
	for name := range selected {
		if _, ok := snap.Option(name); !ok {
			return Result{}, qerr.Newf(qerr.TypeNotFound,
				"selection references option %q, which family %q does not offer", name, snap.Family.Name)
		}
	}

	b := Breakdown{
		Base:            snap.Family.BasePrice,
		MaterialAdder:   money.Zero(),
		LengthAdder:     money.Zero(),
		LengthSurcharge: money.Zero(),
	}
	total := snap.Family.BasePrice

	materialName, materialCode := selectedCategory(snap, selected, catalog.CategoryMaterial)
	_, lengthCode := selectedCategory(snap, selected, catalog.CategoryLength)

	if materialCode != "" {
		adder, err := lookupAdder(snap, materialName, materialCode)
		if err != nil {
			return Result{}, err
		}
		b.MaterialAdder = adder
		total = total.Add(adder)
	}

	if materialCode != "" && lengthCode != "" {
		rule, ok := snap.Materials[materialCode]
		if !ok {
			return Result{}, qerr.Newf(qerr.TypeNotFound, "material %q has no material rule", materialCode)
		}

		length, err := LengthValue(lengthCode)
		if err != nil {
			return Result{}, err
		}

		b.LengthAdder = lengthCharge(rule, length)
		total = total.Add(b.LengthAdder)

		if rule.HasLengthSurcharge && !rule.IsStandardLength(length) {
			b.LengthSurcharge = money.FromDecimal(rule.LengthSurcharge)
			total = total.Add(b.LengthSurcharge)
		}
	}

	for _, fo := range snap.Options {
		if fo.Option.Category == catalog.CategoryMaterial || fo.Option.Category == catalog.CategoryLength {
			continue
		}
		code, ok := selected[fo.Option.Name]
		if !ok {
			continue
		}
		adder, err := lookupAdder(snap, fo.Option.Name, code)
		if err != nil {
			return Result{}, err
		}
		b.OptionAdders = append(b.OptionAdders, OptionAdder{
			Option: fo.Option.Name,
			Choice: code,
			Amount: adder,
		})
		total = total.Add(adder)
	}

	return Result{Breakdown: b, Total: total.RoundCents()}, nil
}

// lengthCharge prices the length delta above the material's base length.
// Per-foot materials bill whole feet, rounded up; lengths at or below the
// base length add nothing.
func lengthCharge(rule catalog.MaterialRule, length float64) money.Amount {
	extra := length - rule.BaseLength
	if extra <= 0 {
		return money.Zero()
	}

	if !rule.PerFootAdder.IsZero() {
		feet := int64(math.Ceil(extra / inchesPerFoot))
		return money.FromDecimal(rule.PerFootAdder.Mul(decimal.NewFromInt(feet)))
	}
	if !rule.PerInchAdder.IsZero() {
		return money.FromDecimal(rule.PerInchAdder.Mul(decimal.NewFromFloat(extra)))
	}
	return money.Zero()
}

func lookupAdder(snap *catalog.FamilySnapshot, optionName, code string) (money.Amount, error) {
	fo, ok := snap.Option(optionName)
	if !ok {
		return money.Amount{}, qerr.Newf(qerr.TypeNotFound,
			"family %q does not offer option %q", snap.Family.Name, optionName)
	}

	adder, ok := fo.Option.Adders[code]
	if !ok {
		return money.Amount{}, qerr.Newf(qerr.TypeUnknownAdder,
			"option %q has no adder for choice %q", optionName, code).
			WithContext("family", snap.Family.Name)
	}
	if adder.Manual {
		return money.ConsultFactory(), nil
	}
	return money.FromDecimal(adder.Amount), nil
}

func selectedCategory(snap *catalog.FamilySnapshot, selected map[string]string, cat catalog.OptionCategory) (name, code string) {
	fo, ok := snap.OptionByCategory(cat)
	if !ok {
		return "", ""
	}
	return fo.Option.Name, selected[fo.Option.Name]
}

// LengthValue parses a length choice code into inches.
func LengthValue(code string) (float64, error) {
	length, err := strconv.ParseFloat(code, 64)
	if err != nil {
		return 0, qerr.Wrap(qerr.TypeInternal, "length choice code is not numeric", err).
			WithContext("code", code)
	}
	return length, nil
}
