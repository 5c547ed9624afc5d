package configurator

import (
	"strings"

	"github.com/sensorline/levelquote/internal/catalog"
)

// ModelNumber derives the canonical model-number string for a selection.
// Field order is fixed: family name, voltage code, material code, length,
// then the codes of suffix-bearing options in catalog order. Absent fields
// are omitted; the function is total over any selection and depends on
// nothing but its inputs.
func ModelNumber(snap *catalog.FamilySnapshot, selected Selection) string {
	parts := []string{snap.Family.Name}

	if code := selectedByCategory(snap, selected, catalog.CategoryVoltage); code != "" {
		parts = append(parts, code)
	}
	if code := selectedByCategory(snap, selected, catalog.CategoryMaterial); code != "" {
		parts = append(parts, code)
	}
	if code := selectedByCategory(snap, selected, catalog.CategoryLength); code != "" {
		parts = append(parts, code)
	}

	for _, fo := range snap.Options {
		if !fo.Option.ModelSuffix {
			continue
		}
		if code, ok := selected[fo.Option.Name]; ok {
			parts = append(parts, code)
		}
	}

	return strings.Join(parts, "-")
}

// Description assembles the prose description from the same fields as the
// model number, using display labels instead of codes.
func Description(snap *catalog.FamilySnapshot, selected Selection) string {
	parts := []string{}
	if snap.Family.Description != "" {
		parts = append(parts, snap.Family.Name+" "+snap.Family.Description)
	} else {
		parts = append(parts, snap.Family.Name)
	}

	appendLabel := func(cat catalog.OptionCategory) {
		fo, ok := snap.OptionByCategory(cat)
		if !ok {
			return
		}
		code, ok := selected[fo.Option.Name]
		if !ok {
			return
		}
		choice, ok := fo.Option.Choice(code)
		if !ok {
			return
		}
		if cat == catalog.CategoryLength {
			parts = append(parts, choice.Label+" probe")
			return
		}
		parts = append(parts, choice.Label)
	}

	appendLabel(catalog.CategoryVoltage)
	appendLabel(catalog.CategoryMaterial)
	appendLabel(catalog.CategoryLength)

	for _, fo := range snap.Options {
		switch fo.Option.Category {
		case catalog.CategoryVoltage, catalog.CategoryMaterial, catalog.CategoryLength:
			continue
		}
		code, ok := selected[fo.Option.Name]
		if !ok {
			continue
		}
		if choice, ok := fo.Option.Choice(code); ok {
			parts = append(parts, choice.Label)
		}
	}

	return strings.Join(parts, ", ")
}
