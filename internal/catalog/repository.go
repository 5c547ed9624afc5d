package catalog

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	qerr "github.com/sensorline/levelquote/internal/errors"
	"github.com/sensorline/levelquote/internal/logging"
	"github.com/sensorline/levelquote/internal/money"
)

// Repository reads the catalog tables. It exposes no mutation API; catalog
// authoring is a separate workflow.
type Repository struct {
	db *sql.DB
}

// NewRepository wraps an open database handle.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Families lists every product family, ordered by name.
func (r *Repository) Families() ([]ProductFamily, error) {
	rows, err := r.db.Query(`
		SELECT id, name, description, category, base_price, base_length_in
		FROM product_families
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("query product families: %w", err)
	}
	defer rows.Close()

	families := make([]ProductFamily, 0)
	for rows.Next() {
		fam, err := scanFamily(rows)
		if err != nil {
			return nil, err
		}
		families = append(families, fam)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product families: %w", err)
	}

	return families, nil
}

// FamilyByName returns the family with the given unique name.
func (r *Repository) FamilyByName(name string) (ProductFamily, error) {
	row := r.db.QueryRow(`
		SELECT id, name, description, category, base_price, base_length_in
		FROM product_families
		WHERE name = ?
	`, name)

	fam, err := scanFamily(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ProductFamily{}, qerr.Newf(qerr.TypeNotFound, "product family %q not found", name)
		}
		return ProductFamily{}, err
	}
	return fam, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFamily(row rowScanner) (ProductFamily, error) {
	var fam ProductFamily
	var basePrice sql.NullFloat64
	if err := row.Scan(&fam.ID, &fam.Name, &fam.Description, &fam.Category, &basePrice, &fam.BaseLength); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ProductFamily{}, err
		}
		return ProductFamily{}, fmt.Errorf("scan product family: %w", err)
	}

	if basePrice.Valid {
		fam.BasePrice = money.FromFloat(basePrice.Float64)
	} else {
		fam.BasePrice = money.ConsultFactory()
	}
	return fam, nil
}

// OptionsForFamily returns the family's options in catalog order, each
// already specialized with the family's choice/adder overrides. Options of
// other families are never consulted.
func (r *Repository) OptionsForFamily(familyID int64) ([]FamilyOption, error) {
	rows, err := r.db.Query(`
		SELECT
			o.id, o.name, o.category, o.price_basis,
			o.choices_json, o.adders_json, COALESCE(o.rules_json, ''),
			o.model_suffix,
			fo.is_available, fo.is_required, COALESCE(fo.default_code, ''),
			COALESCE(fo.choices_json, ''), COALESCE(fo.adders_json, ''),
			fo.position
		FROM family_options fo
		JOIN options o ON o.id = fo.option_id
		WHERE fo.family_id = ?
		ORDER BY fo.position, fo.id
	`, familyID)
	if err != nil {
		return nil, fmt.Errorf("query family options: %w", err)
	}
	defer rows.Close()

	options := make([]FamilyOption, 0)
	for rows.Next() {
		var fo FamilyOption
		var choicesJSON, addersJSON, rulesJSON string
		var famChoicesJSON, famAddersJSON string
		if err := rows.Scan(
			&fo.Option.ID, &fo.Option.Name, &fo.Option.Category, &fo.Option.Basis,
			&choicesJSON, &addersJSON, &rulesJSON,
			&fo.Option.ModelSuffix,
			&fo.Available, &fo.Required, &fo.DefaultCode,
			&famChoicesJSON, &famAddersJSON,
			&fo.Position,
		); err != nil {
			return nil, fmt.Errorf("scan family option: %w", err)
		}

		if famChoicesJSON != "" {
			choicesJSON = famChoicesJSON
		}
		if famAddersJSON != "" {
			addersJSON = famAddersJSON
		}

		if fo.Option.Choices, err = decodeChoices(fo.Option.Name, choicesJSON); err != nil {
			return nil, err
		}
		if fo.Option.Adders, err = decodeAdders(fo.Option.Name, addersJSON); err != nil {
			return nil, err
		}
		if fo.Option.Rules, err = DecodeRules([]byte(rulesJSON)); err != nil {
			return nil, qerr.Wrap(qerr.TypeInternal, fmt.Sprintf("option %q has malformed rules", fo.Option.Name), err)
		}

		warnAdderCoverage(fo.Option)
		options = append(options, fo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate family options: %w", err)
	}

	return options, nil
}

// MaterialRule returns the length/pricing metadata for a material code.
func (r *Repository) MaterialRule(code string) (MaterialRule, error) {
	row := r.db.QueryRow(`
		SELECT code, name, base_length_in, per_inch_adder, per_foot_adder,
		       has_length_surcharge, length_surcharge, base_price_adder,
		       standard_lengths_json
		FROM materials
		WHERE code = ?
	`, code)

	rule, err := scanMaterial(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return MaterialRule{}, qerr.Newf(qerr.TypeNotFound, "material %q not found", code)
		}
		return MaterialRule{}, err
	}
	return rule, nil
}

func scanMaterial(row rowScanner) (MaterialRule, error) {
	var m MaterialRule
	var perInch, perFoot, surcharge, baseAdder float64
	var standardJSON string
	if err := row.Scan(
		&m.Code, &m.Name, &m.BaseLength, &perInch, &perFoot,
		&m.HasLengthSurcharge, &surcharge, &baseAdder, &standardJSON,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return MaterialRule{}, err
		}
		return MaterialRule{}, fmt.Errorf("scan material: %w", err)
	}

	m.PerInchAdder = decimal.NewFromFloat(perInch)
	m.PerFootAdder = decimal.NewFromFloat(perFoot)
	m.LengthSurcharge = decimal.NewFromFloat(surcharge)
	m.BasePriceAdder = decimal.NewFromFloat(baseAdder)

	if err := json.Unmarshal([]byte(standardJSON), &m.StandardLengths); err != nil {
		return MaterialRule{}, fmt.Errorf("decode standard lengths for material %q: %w", m.Code, err)
	}
	return m, nil
}

// LoadSnapshot loads a family and everything a configuration session needs
// into one immutable view.
func (r *Repository) LoadSnapshot(familyName string) (*FamilySnapshot, error) {
	family, err := r.FamilyByName(familyName)
	if err != nil {
		return nil, err
	}

	options, err := r.OptionsForFamily(family.ID)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(`
		SELECT code, name, base_length_in, per_inch_adder, per_foot_adder,
		       has_length_surcharge, length_surcharge, base_price_adder,
		       standard_lengths_json
		FROM materials
		ORDER BY code
	`)
	if err != nil {
		return nil, fmt.Errorf("query materials: %w", err)
	}
	defer rows.Close()

	materials := make(map[string]MaterialRule)
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, err
		}
		materials[m.Code] = m
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate materials: %w", err)
	}

	return &FamilySnapshot{Family: family, Options: options, Materials: materials}, nil
}

func decodeChoices(optionName, data string) ([]Choice, error) {
	var choices []Choice
	if err := json.Unmarshal([]byte(data), &choices); err != nil {
		return nil, qerr.Wrap(qerr.TypeInternal, fmt.Sprintf("option %q has malformed choices", optionName), err)
	}

	seen := make(map[string]struct{}, len(choices))
	for _, c := range choices {
		if c.Code == "" {
			return nil, qerr.Newf(qerr.TypeInternal, "option %q has a choice with an empty code", optionName)
		}
		if _, dup := seen[c.Code]; dup {
			return nil, qerr.Newf(qerr.TypeInternal, "option %q has duplicate choice code %q", optionName, c.Code)
		}
		seen[c.Code] = struct{}{}
	}
	return choices, nil
}

func decodeAdders(optionName, data string) (map[string]Adder, error) {
	adders := make(map[string]Adder)
	if err := json.Unmarshal([]byte(data), &adders); err != nil {
		return nil, qerr.Wrap(qerr.TypeInternal, fmt.Sprintf("option %q has malformed adders", optionName), err)
	}
	return adders, nil
}

// warnAdderCoverage flags choices with no price entry at load time so the
// catalog data can be corrected before a quote trips over UnknownAdder.
// Length options are exempt: their pricing comes from material rules.
func warnAdderCoverage(opt Option) {
	if opt.Category == CategoryLength {
		return
	}
	for _, c := range opt.Choices {
		if _, ok := opt.Adders[c.Code]; !ok {
			logging.Warn("choice has no adder entry",
				zap.String("option", opt.Name),
				zap.String("choice", c.Code),
			)
		}
	}
}
