// Package seed loads the level-sensor catalog into an empty or partially
// seeded database. Runs are idempotent: existing rows are left alone.
package seed

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sensorline/levelquote/internal/catalog"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

type choiceSpec struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

type optionSpec struct {
	name        string
	category    catalog.OptionCategory
	basis       catalog.PriceBasis
	choices     []choiceSpec
	adders      map[string]any
	rules       []catalog.Rule
	modelSuffix bool
}

type familyOptionSpec struct {
	option      string
	required    bool
	defaultCode string
	choices     []choiceSpec   // family-specific override, nil keeps the generic list
	adders      map[string]any // family-specific override, nil keeps the generic map
}

type familySpec struct {
	name        string
	description string
	category    string
	basePrice   *float64
	baseLength  float64
	options     []familyOptionSpec
}

type materialSpec struct {
	code            string
	name            string
	baseLength      float64
	perInch         float64
	perFoot         float64
	hasSurcharge    bool
	surcharge       float64
	basePriceAdder  float64
	standardLengths []float64
}

func price(v float64) *float64 { return &v }

var lengthChoices = []choiceSpec{
	{Code: "10", Label: "10 in"},
	{Code: "12", Label: "12 in"},
	{Code: "18", Label: "18 in"},
	{Code: "20", Label: "20 in"},
	{Code: "24", Label: "24 in"},
	{Code: "30", Label: "30 in"},
	{Code: "36", Label: "36 in"},
	{Code: "48", Label: "48 in"},
	{Code: "60", Label: "60 in"},
	{Code: "72", Label: "72 in"},
}

var optionSpecs = []optionSpec{
	{
		name:     "Voltage",
		category: catalog.CategoryVoltage,
		basis:    catalog.BasisFixed,
		choices: []choiceSpec{
			{Code: "120", Label: "120 VAC"},
			{Code: "240", Label: "240 VAC"},
			{Code: "24", Label: "24 VDC"},
		},
		adders: map[string]any{"120": 0, "240": 0, "24": 35},
	},
	{
		name:     "Material",
		category: catalog.CategoryMaterial,
		basis:    catalog.BasisFixed,
		choices: []choiceSpec{
			{Code: "S", Label: "316 stainless steel probe"},
			{Code: "H", Label: "Hastelloy C-276 probe"},
			{Code: "T", Label: "PTFE-sleeved 316SS probe"},
			{Code: "M", Label: "Monel 400 probe"},
		},
		adders: map[string]any{"S": 0, "H": 110, "T": 85, "M": "manual"},
		rules: []catalog.Rule{
			// PTFE sleeves are not produced past 60 inches.
			catalog.LengthCeilingRule{MaterialCode: "T", MaxLength: 60},
		},
	},
	{
		name:     "Probe Length",
		category: catalog.CategoryLength,
		basis:    catalog.BasisPerFoot,
		choices:  lengthChoices,
		adders:   map[string]any{},
	},
	{
		name:     "Connection Type",
		category: catalog.CategoryConnection,
		basis:    catalog.BasisFixed,
		choices: []choiceSpec{
			{Code: "NPT", Label: "3/4 in NPT process connection"},
			{Code: "FLG", Label: "flanged process connection"},
		},
		adders: map[string]any{"NPT": 0, "FLG": 60},
	},
	{
		name:     "Flange Rating",
		category: catalog.CategoryConnection,
		basis:    catalog.BasisFixed,
		choices: []choiceSpec{
			{Code: "150", Label: "150# RF flange"},
			{Code: "300", Label: "300# RF flange"},
		},
		adders: map[string]any{"150": 95, "300": 210},
		rules: []catalog.Rule{
			catalog.RequiresRule{Option: "Flange Rating", PrereqOption: "Connection Type", PrereqChoice: "FLG"},
		},
	},
	{
		name:     "Insulator",
		category: catalog.CategoryInsulator,
		basis:    catalog.BasisFixed,
		choices: []choiceSpec{
			{Code: "D", Label: "Delrin insulator"},
			{Code: "P", Label: "PEEK insulator"},
			{Code: "C", Label: "ceramic insulator"},
		},
		adders: map[string]any{"D": 0, "P": 48, "C": 120},
		rules: []catalog.Rule{
			// Ceramic insulators cannot be fitted over a PTFE sleeve.
			catalog.ExcludesRule{Option: "Material", Choice: "T", OtherOption: "Insulator", OtherChoice: "C"},
		},
	},
	{
		name:     "Housing",
		category: catalog.CategoryHousing,
		basis:    catalog.BasisFixed,
		choices: []choiceSpec{
			{Code: "N4", Label: "NEMA 4 housing"},
			{Code: "XP", Label: "explosion-proof housing"},
		},
		adders:      map[string]any{"N4": 0, "XP": 225},
		modelSuffix: true,
	},
}

var materialSpecs = []materialSpec{
	{
		code: "S", name: "316 Stainless Steel",
		baseLength: 10, perFoot: 60,
		standardLengths: []float64{10, 12, 18, 24, 36, 48, 60, 72},
	},
	{
		code: "H", name: "Hastelloy C-276",
		baseLength: 10, perFoot: 110,
		hasSurcharge: true, surcharge: 300,
		basePriceAdder:  110,
		standardLengths: []float64{10, 12, 18, 24, 36},
	},
	{
		code: "T", name: "PTFE-Sleeved 316SS",
		baseLength: 10, perInch: 9,
		basePriceAdder:  85,
		standardLengths: []float64{10, 12, 18, 24, 36, 48, 60},
	},
	{
		code: "M", name: "Monel 400",
		baseLength:      10,
		standardLengths: []float64{10, 12, 18, 24},
	},
}

var familySpecs = []familySpec{
	{
		name:        "LS700",
		description: "single-point level switch",
		category:    "level_switch",
		basePrice:   price(680),
		baseLength:  10,
		options: []familyOptionSpec{
			{option: "Voltage", required: true, defaultCode: "120"},
			{option: "Material", required: true, defaultCode: "S"},
			{option: "Probe Length", required: true, defaultCode: "10"},
			{option: "Connection Type", required: true, defaultCode: "NPT"},
			{option: "Flange Rating"},
			{option: "Insulator", required: true, defaultCode: "D"},
			{option: "Housing"},
		},
	},
	{
		name:        "LS2000",
		description: "dual-point level switch",
		category:    "level_switch",
		basePrice:   price(925),
		baseLength:  12,
		options: []familyOptionSpec{
			{option: "Voltage", required: true, defaultCode: "120"},
			{
				// The dual-point line only runs stainless and Hastelloy,
				// and carries its own adder schedule.
				option: "Material", required: true, defaultCode: "S",
				choices: []choiceSpec{
					{Code: "S", Label: "316 stainless steel probes"},
					{Code: "H", Label: "Hastelloy C-276 probes"},
				},
				adders: map[string]any{"S": 0, "H": 140},
			},
			{option: "Probe Length", required: true, defaultCode: "12"},
			{option: "Connection Type", required: true, defaultCode: "NPT"},
			{option: "Flange Rating"},
			{option: "Insulator", required: true, defaultCode: "D"},
			{option: "Housing"},
		},
	},
	{
		name:        "RF9000",
		description: "RF capacitance level transmitter",
		category:    "transmitter",
		basePrice:   nil, // priced by factory quote only
		baseLength:  10,
		options: []familyOptionSpec{
			{option: "Voltage", required: true, defaultCode: "24"},
			{option: "Material", required: true, defaultCode: "S"},
			{option: "Probe Length", required: true, defaultCode: "10"},
			{option: "Connection Type", required: true, defaultCode: "NPT"},
			{option: "Flange Rating"},
			{option: "Insulator", required: true, defaultCode: "P"},
			{option: "Housing"},
		},
	},
}

// Run executes the catalog seed in an idempotent way.
func Run(db *sql.DB) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	for _, m := range materialSpecs {
		if err := ensureMaterial(tx, m, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}
	for _, o := range optionSpecs {
		if err := ensureOption(tx, o, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}
	for _, f := range familySpecs {
		if err := ensureFamily(tx, f, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureMaterial(tx *sql.Tx, m materialSpec, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM materials WHERE code = ? LIMIT 1)`, m.code).Scan(&exists); err != nil {
		return fmt.Errorf("check material %q existence: %w", m.code, err)
	}
	if exists {
		return nil
	}

	standard, err := json.Marshal(m.standardLengths)
	if err != nil {
		return fmt.Errorf("encode standard lengths for material %q: %w", m.code, err)
	}

	if _, err := tx.Exec(`
		INSERT INTO materials (
			code, name, base_length_in, per_inch_adder, per_foot_adder,
			has_length_surcharge, length_surcharge, base_price_adder,
			standard_lengths_json
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.code, m.name, m.baseLength, m.perInch, m.perFoot,
		m.hasSurcharge, m.surcharge, m.basePriceAdder, string(standard)); err != nil {
		return fmt.Errorf("insert material %q: %w", m.code, err)
	}
	stats.Inserts++
	return nil
}

func ensureOption(tx *sql.Tx, o optionSpec, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM options WHERE name = ? LIMIT 1)`, o.name).Scan(&exists); err != nil {
		return fmt.Errorf("check option %q existence: %w", o.name, err)
	}
	if exists {
		return nil
	}

	choices, adders, err := encodeChoicesAndAdders(o.name, o.choices, o.adders)
	if err != nil {
		return err
	}

	var rules any
	if len(o.rules) > 0 {
		encoded, err := catalog.EncodeRules(o.rules)
		if err != nil {
			return fmt.Errorf("encode rules for option %q: %w", o.name, err)
		}
		rules = string(encoded)
	}

	if _, err := tx.Exec(`
		INSERT INTO options (name, category, price_basis, choices_json, adders_json, rules_json, model_suffix)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, o.name, string(o.category), string(o.basis), choices, adders, rules, o.modelSuffix); err != nil {
		return fmt.Errorf("insert option %q: %w", o.name, err)
	}
	stats.Inserts++
	return nil
}

func ensureFamily(tx *sql.Tx, f familySpec, stats *Stats) error {
	var familyID int64
	err := tx.QueryRow(`SELECT id FROM product_families WHERE name = ?`, f.name).Scan(&familyID)
	switch {
	case err == sql.ErrNoRows:
		var basePrice any
		if f.basePrice != nil {
			basePrice = *f.basePrice
		}
		res, err := tx.Exec(`
			INSERT INTO product_families (name, description, category, base_price, base_length_in)
			VALUES (?, ?, ?, ?, ?)
		`, f.name, f.description, f.category, basePrice, f.baseLength)
		if err != nil {
			return fmt.Errorf("insert family %q: %w", f.name, err)
		}
		familyID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("family %q insert id: %w", f.name, err)
		}
		stats.Inserts++
	case err != nil:
		return fmt.Errorf("check family %q existence: %w", f.name, err)
	}

	for position, fo := range f.options {
		if err := ensureFamilyOption(tx, familyID, f.name, position, fo, stats); err != nil {
			return err
		}
	}
	return nil
}

func ensureFamilyOption(tx *sql.Tx, familyID int64, familyName string, position int, fo familyOptionSpec, stats *Stats) error {
	var optionID int64
	if err := tx.QueryRow(`SELECT id FROM options WHERE name = ?`, fo.option).Scan(&optionID); err != nil {
		return fmt.Errorf("look up option %q for family %q: %w", fo.option, familyName, err)
	}

	var exists bool
	if err := tx.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM family_options WHERE family_id = ? AND option_id = ? LIMIT 1)
	`, familyID, optionID).Scan(&exists); err != nil {
		return fmt.Errorf("check family option %q/%q existence: %w", familyName, fo.option, err)
	}
	if exists {
		return nil
	}

	var choices, adders any
	if fo.choices != nil || fo.adders != nil {
		encodedChoices, encodedAdders, err := encodeChoicesAndAdders(fo.option, fo.choices, fo.adders)
		if err != nil {
			return err
		}
		if fo.choices != nil {
			choices = encodedChoices
		}
		if fo.adders != nil {
			adders = encodedAdders
		}
	}

	var defaultCode any
	if fo.defaultCode != "" {
		defaultCode = fo.defaultCode
	}

	if _, err := tx.Exec(`
		INSERT INTO family_options (family_id, option_id, is_available, is_required, default_code, choices_json, adders_json, position)
		VALUES (?, ?, TRUE, ?, ?, ?, ?, ?)
	`, familyID, optionID, fo.required, defaultCode, choices, adders, position); err != nil {
		return fmt.Errorf("insert family option %q/%q: %w", familyName, fo.option, err)
	}
	stats.Inserts++
	return nil
}

func encodeChoicesAndAdders(optionName string, choices []choiceSpec, adders map[string]any) (string, string, error) {
	encodedChoices, err := json.Marshal(choices)
	if err != nil {
		return "", "", fmt.Errorf("encode choices for option %q: %w", optionName, err)
	}
	encodedAdders, err := json.Marshal(adders)
	if err != nil {
		return "", "", fmt.Errorf("encode adders for option %q: %w", optionName, err)
	}
	return string(encodedChoices), string(encodedAdders), nil
}
