// Package configurator implements the configuration engine: the
// compatibility resolver, the per-quote-line configuration session, and
// the model number / description generator.
package configurator

import (
	"github.com/sensorline/levelquote/internal/catalog"
	qerr "github.com/sensorline/levelquote/internal/errors"
	"github.com/sensorline/levelquote/internal/pricing"
)

// Selection maps option names to selected choice codes. At most one code
// per option.
type Selection map[string]string

func (s Selection) clone() Selection {
	out := make(Selection, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// ValidChoiceSets returns, for every available and currently-selectable
// option without a selection, the choice codes that keep the whole
// selection rule-consistent. Options gated behind an unmet prerequisite
// are omitted; an option present with an empty slice has been exhausted
// by the other selections.
func ValidChoiceSets(snap *catalog.FamilySnapshot, selected Selection) map[string][]catalog.Choice {
	sets := make(map[string][]catalog.Choice)
	for _, fo := range snap.Options {
		name := fo.Option.Name
		if !fo.Available {
			continue
		}
		if _, done := selected[name]; done {
			continue
		}
		if !optionSelectable(snap, selected, fo.Option) {
			continue
		}

		valid := make([]catalog.Choice, 0, len(fo.Option.Choices))
		for _, c := range fo.Option.Choices {
			if choiceAllowed(snap, selected, name, c.Code) {
				valid = append(valid, c)
			}
		}
		sets[name] = valid
	}
	return sets
}

// ValidChoices returns the valid choice set for a single option. For an
// option that already has a selection it returns nil: the selection is
// fixed until cleared.
func ValidChoices(snap *catalog.FamilySnapshot, selected Selection, name string) ([]catalog.Choice, error) {
	fo, ok := snap.Option(name)
	if !ok || !fo.Available {
		return nil, qerr.Newf(qerr.TypeNotFound, "family %q does not offer option %q", snap.Family.Name, name)
	}
	if _, done := selected[name]; done {
		return nil, nil
	}
	if !optionSelectable(snap, selected, fo.Option) {
		return []catalog.Choice{}, nil
	}

	valid := make([]catalog.Choice, 0, len(fo.Option.Choices))
	for _, c := range fo.Option.Choices {
		if choiceAllowed(snap, selected, name, c.Code) {
			valid = append(valid, c)
		}
	}
	return valid, nil
}

// ExhaustedOptions lists selectable options whose valid choice set has
// been reduced to nothing. This is a condition for the caller to surface,
// not an error.
func ExhaustedOptions(snap *catalog.FamilySnapshot, selected Selection) []string {
	var exhausted []string
	for name, choices := range ValidChoiceSets(snap, selected) {
		if len(choices) == 0 {
			exhausted = append(exhausted, name)
		}
	}
	return exhausted
}

// choiceAllowed provisionally applies (name, code) and re-evaluates every
// rule against the combined selection. Rules combine by logical AND; a
// choice restricted by two rules is simply excluded.
func choiceAllowed(snap *catalog.FamilySnapshot, selected Selection, name, code string) bool {
	fo, ok := snap.Option(name)
	if !ok || !fo.Available {
		return false
	}
	if _, ok := fo.Option.Choice(code); !ok {
		return false
	}

	trial := selected.clone()
	trial[name] = code
	return selectionConsistent(snap, trial)
}

// selectionConsistent evaluates every structured rule over a complete
// selection map.
func selectionConsistent(snap *catalog.FamilySnapshot, selected Selection) bool {
	materialCode := selectedByCategory(snap, selected, catalog.CategoryMaterial)
	lengthCode := selectedByCategory(snap, selected, catalog.CategoryLength)

	for _, rule := range snap.Rules() {
		switch r := rule.(type) {
		case catalog.LengthCeilingRule:
			if materialCode != r.MaterialCode || lengthCode == "" {
				continue
			}
			length, err := pricing.LengthValue(lengthCode)
			if err != nil {
				return false
			}
			if length > r.MaxLength {
				return false
			}
		case catalog.ExcludesRule:
			if selected[r.Option] == r.Choice && selected[r.OtherOption] == r.OtherChoice {
				return false
			}
		case catalog.RequiresRule:
			if _, chosen := selected[r.Option]; !chosen {
				continue
			}
			if selected[r.PrereqOption] != r.PrereqChoice {
				return false
			}
		}
	}
	return true
}

// optionSelectable reports whether the option's prerequisite rules are met
// by the current selection (dependent availability).
func optionSelectable(snap *catalog.FamilySnapshot, selected Selection, opt catalog.Option) bool {
	for _, rule := range snap.Rules() {
		r, ok := rule.(catalog.RequiresRule)
		if !ok || r.Option != opt.Name {
			continue
		}
		if selected[r.PrereqOption] != r.PrereqChoice {
			return false
		}
	}
	return true
}

func selectedByCategory(snap *catalog.FamilySnapshot, selected Selection, cat catalog.OptionCategory) string {
	fo, ok := snap.OptionByCategory(cat)
	if !ok {
		return ""
	}
	return selected[fo.Option.Name]
}
