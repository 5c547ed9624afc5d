package configurator

import (
	"sort"

	"github.com/google/uuid"

	"github.com/sensorline/levelquote/internal/catalog"
	qerr "github.com/sensorline/levelquote/internal/errors"
	"github.com/sensorline/levelquote/internal/money"
	"github.com/sensorline/levelquote/internal/pricing"
)

// State is the lifecycle state of a configuration session.
type State string

const (
	StateActive    State = "active"
	StateFinalized State = "finalized"
)

// Session is the stateful engine behind one quote line item. It owns a
// selection map, re-resolves option validity after each change, and caches
// the price and model number, both re-derivable from the selection alone.
// Sessions share no mutable state with each other.
type Session struct {
	id       string
	snap     *catalog.FamilySnapshot
	selected Selection
	state    State
	price    pricing.Result
}

// Finalized is the export record handed to the quote-storage collaborator.
// The collaborator trusts it and never re-derives price or validity.
type Finalized struct {
	ModelNumber     string            `json:"modelNumber"`
	Description     string            `json:"description"`
	SelectedOptions map[string]string `json:"selectedOptions"`
	Price           money.Amount      `json:"price"`
}

// StartConfiguration creates an active session for the family, seeding the
// catalog's default selections and computing an initial price.
func StartConfiguration(snap *catalog.FamilySnapshot) (*Session, error) {
	s := &Session{
		id:       uuid.NewString(),
		snap:     snap,
		selected: make(Selection),
		state:    StateActive,
	}

	// Defaults apply in catalog order; a default that conflicts with an
	// earlier one is skipped rather than failing the start.
	for _, fo := range snap.Options {
		if !fo.Available || fo.DefaultCode == "" {
			continue
		}
		if choiceAllowed(snap, s.selected, fo.Option.Name, fo.DefaultCode) {
			s.selected[fo.Option.Name] = fo.DefaultCode
		}
	}

	if err := s.reprice(); err != nil {
		return nil, err
	}
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// FamilyName returns the configured product family's name.
func (s *Session) FamilyName() string { return s.snap.Family.Name }

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// Selected returns a copy of the current selection map.
func (s *Session) Selected() map[string]string {
	return s.selected.clone()
}

// Price returns the current total price.
func (s *Session) Price() money.Amount { return s.price.Total }

// Breakdown returns the current price breakdown.
func (s *Session) Breakdown() pricing.Breakdown { return s.price.Breakdown }

// ModelNumber returns the model number for the current selection.
func (s *Session) ModelNumber() string {
	return ModelNumber(s.snap, s.selected)
}

// Description returns the prose description for the current selection.
func (s *Session) Description() string {
	return Description(s.snap, s.selected)
}

// ValidChoices returns the resolver's valid set for one option.
func (s *Session) ValidChoices(name string) ([]catalog.Choice, error) {
	return ValidChoices(s.snap, s.selected, name)
}

// ValidChoiceSets returns the resolver's valid sets for every unselected
// option.
func (s *Session) ValidChoiceSets() map[string][]catalog.Choice {
	return ValidChoiceSets(s.snap, s.selected)
}

// ExhaustedOptions lists options with no valid combination remaining.
func (s *Session) ExhaustedOptions() []string {
	return ExhaustedOptions(s.snap, s.selected)
}

// MissingRequired lists required options that do not have a selection yet.
// Options gated behind an unmet prerequisite are not counted against the
// configuration.
func (s *Session) MissingRequired() []string {
	var missing []string
	for _, fo := range s.snap.Options {
		if !fo.Available || !fo.Required {
			continue
		}
		if !optionSelectable(s.snap, s.selected, fo.Option) {
			continue
		}
		if _, ok := s.selected[fo.Option.Name]; !ok {
			missing = append(missing, fo.Option.Name)
		}
	}
	sort.Strings(missing)
	return missing
}

// SelectOption records a choice for an option, then re-resolves dependent
// validity and the price. Selecting the already-selected code is a no-op.
//
// The choice must be in the resolver's currently-valid set for the option
// given the rest of the selection; anything else is rejected with
// InvalidChoice and the session is left unchanged. Selections that only
// existed because of the changed option (dependent availability) do not
// veto the change: they are cleared in cascade rather than leaving an
// inconsistent state.
func (s *Session) SelectOption(name, code string) error {
	if s.state == StateFinalized {
		return qerr.New(qerr.TypeAlreadyFinalized, "configuration is finalized")
	}

	fo, ok := s.snap.Option(name)
	if !ok || !fo.Available {
		return qerr.Newf(qerr.TypeNotFound, "family %q does not offer option %q", s.snap.Family.Name, name)
	}

	if s.selected[name] == code {
		return nil
	}

	rest := s.selected.clone()
	delete(rest, name)

	if !optionSelectable(s.snap, rest, fo.Option) {
		return qerr.Newf(qerr.TypeInvalidChoice, "option %q is not selectable yet", name)
	}

	base := rest.clone()
	for dep := range requiresDependents(s.snap, name) {
		delete(base, dep)
	}
	if !choiceAllowed(s.snap, base, name, code) {
		return qerr.Newf(qerr.TypeInvalidChoice, "choice %q is not valid for option %q", code, name).
			WithContext("family", s.snap.Family.Name)
	}

	previous := s.selected.clone()
	s.selected[name] = code
	s.cascadeClear(name)

	if err := s.reprice(); err != nil {
		s.selected = previous
		return err
	}
	return nil
}

// ClearOption removes a selection, cascading to selections that depended
// on it. Clearing an unselected option is a no-op.
func (s *Session) ClearOption(name string) error {
	if s.state == StateFinalized {
		return qerr.New(qerr.TypeAlreadyFinalized, "configuration is finalized")
	}
	if _, ok := s.selected[name]; !ok {
		return nil
	}

	previous := s.selected.clone()
	delete(s.selected, name)
	s.cascadeClear("")

	if err := s.reprice(); err != nil {
		s.selected = previous
		return err
	}
	return nil
}

// Finalize freezes the session once every required option is selected,
// returning the export record.
func (s *Session) Finalize() (Finalized, error) {
	if s.state == StateFinalized {
		return Finalized{}, qerr.New(qerr.TypeAlreadyFinalized, "configuration is already finalized")
	}

	if missing := s.MissingRequired(); len(missing) > 0 {
		err := qerr.New(qerr.TypeIncompleteConfiguration, "required options are not selected").
			WithContext("missing", missing)
		return Finalized{}, err
	}

	s.state = StateFinalized
	return Finalized{
		ModelNumber:     ModelNumber(s.snap, s.selected),
		Description:     Description(s.snap, s.selected),
		SelectedOptions: s.selected.clone(),
		Price:           s.price.Total,
	}, nil
}

// cascadeClear drops selections invalidated by the rest of the selection
// until a fixed point is reached. keep names the selection that triggered
// the cascade and is never dropped.
func (s *Session) cascadeClear(keep string) {
	for {
		cleared := false
		for _, fo := range s.snap.Options {
			name := fo.Option.Name
			if name == keep {
				continue
			}
			code, ok := s.selected[name]
			if !ok {
				continue
			}

			rest := s.selected.clone()
			delete(rest, name)
			if !optionSelectable(s.snap, rest, fo.Option) || !choiceAllowed(s.snap, rest, name, code) {
				delete(s.selected, name)
				cleared = true
			}
		}
		if !cleared {
			return
		}
	}
}

// requiresDependents returns the names of options whose availability
// depends, directly or through a prerequisite chain, on name.
func requiresDependents(snap *catalog.FamilySnapshot, name string) map[string]bool {
	deps := map[string]bool{}
	for {
		grew := false
		for _, rule := range snap.Rules() {
			req, ok := rule.(catalog.RequiresRule)
			if !ok {
				continue
			}
			if (req.PrereqOption == name || deps[req.PrereqOption]) && !deps[req.Option] {
				deps[req.Option] = true
				grew = true
			}
		}
		if !grew {
			return deps
		}
	}
}

func (s *Session) reprice() error {
	result, err := pricing.Calculate(s.snap, s.selected)
	if err != nil {
		return err
	}
	s.price = result
	return nil
}
