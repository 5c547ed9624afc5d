package server

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/sensorline/levelquote/internal/catalog"
	"github.com/sensorline/levelquote/internal/configurator"
	qerr "github.com/sensorline/levelquote/internal/errors"
	"github.com/sensorline/levelquote/internal/pricing"
)

type choiceView struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

type familyView struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	BasePrice   string `json:"basePrice"`
	BaseLength  float64 `json:"baseLengthIn"`
}

type familyOptionView struct {
	Name        string       `json:"name"`
	Category    string       `json:"category"`
	Required    bool         `json:"required"`
	DefaultCode string       `json:"defaultCode,omitempty"`
	Choices     []choiceView `json:"choices"`
}

type familyDetailView struct {
	familyView
	Options []familyOptionView `json:"options"`
}

type optionAdderView struct {
	Option string `json:"option"`
	Choice string `json:"choice"`
	Amount string `json:"amount"`
}

type breakdownView struct {
	Base            string            `json:"base"`
	MaterialAdder   string            `json:"materialAdder"`
	LengthAdder     string            `json:"lengthAdder"`
	LengthSurcharge string            `json:"lengthSurcharge"`
	OptionAdders    []optionAdderView `json:"optionAdders,omitempty"`
}

type configurationView struct {
	ID              string                  `json:"id"`
	Family          string                  `json:"family"`
	State           string                  `json:"state"`
	Selections      map[string]string       `json:"selections"`
	Price           string                  `json:"price"`
	ConsultFactory  bool                    `json:"consultFactory"`
	Breakdown       breakdownView           `json:"breakdown"`
	ModelNumber     string                  `json:"modelNumber"`
	Description     string                  `json:"description"`
	ValidChoices    map[string][]choiceView `json:"validChoices"`
	Exhausted       []string                `json:"exhaustedOptions,omitempty"`
	MissingRequired []string                `json:"missingRequired,omitempty"`
}

func familyToView(fam catalog.ProductFamily) familyView {
	return familyView{
		Name:        fam.Name,
		Description: fam.Description,
		Category:    fam.Category,
		BasePrice:   fam.BasePrice.String(),
		BaseLength:  fam.BaseLength,
	}
}

func choicesToView(choices []catalog.Choice) []choiceView {
	out := make([]choiceView, 0, len(choices))
	for _, c := range choices {
		out = append(out, choiceView{Code: c.Code, Label: c.Label})
	}
	return out
}

func breakdownToView(b pricing.Breakdown) breakdownView {
	view := breakdownView{
		Base:            b.Base.String(),
		MaterialAdder:   b.MaterialAdder.String(),
		LengthAdder:     b.LengthAdder.String(),
		LengthSurcharge: b.LengthSurcharge.String(),
	}
	for _, a := range b.OptionAdders {
		view.OptionAdders = append(view.OptionAdders, optionAdderView{
			Option: a.Option,
			Choice: a.Choice,
			Amount: a.Amount.String(),
		})
	}
	return view
}

func sessionToView(sess *configurator.Session) configurationView {
	sets := sess.ValidChoiceSets()
	validChoices := make(map[string][]choiceView, len(sets))
	for name, choices := range sets {
		validChoices[name] = choicesToView(choices)
	}

	exhausted := sess.ExhaustedOptions()
	sort.Strings(exhausted)

	return configurationView{
		ID:              sess.ID(),
		Family:          sess.FamilyName(),
		State:           string(sess.State()),
		Selections:      sess.Selected(),
		Price:           sess.Price().String(),
		ConsultFactory:  sess.Price().IsConsultFactory(),
		Breakdown:       breakdownToView(sess.Breakdown()),
		ModelNumber:     sess.ModelNumber(),
		Description:     sess.Description(),
		ValidChoices:    validChoices,
		Exhausted:       exhausted,
		MissingRequired: sess.MissingRequired(),
	}
}

func (s *Server) handleFamiliesList(w http.ResponseWriter, r *http.Request) {
	families, err := s.repo.Families()
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]familyView, 0, len(families))
	for _, fam := range families {
		views = append(views, familyToView(fam))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleFamilyDetail(w http.ResponseWriter, r *http.Request) {
	snap, err := s.repo.LoadSnapshot(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}

	detail := familyDetailView{familyView: familyToView(snap.Family)}
	for _, fo := range snap.Options {
		if !fo.Available {
			continue
		}
		detail.Options = append(detail.Options, familyOptionView{
			Name:        fo.Option.Name,
			Category:    string(fo.Option.Category),
			Required:    fo.Required,
			DefaultCode: fo.DefaultCode,
			Choices:     choicesToView(fo.Option.Choices),
		})
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleStartConfiguration(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Family string `json:"family"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Family == "" {
		writeError(w, qerr.New(qerr.TypeNotFound, "family is required"))
		return
	}

	snap, err := s.repo.LoadSnapshot(req.Family)
	if err != nil {
		writeError(w, err)
		return
	}

	sess, err := configurator.StartConfiguration(snap)
	if err != nil {
		writeError(w, err)
		return
	}

	s.storeSession(sess)
	writeJSON(w, http.StatusCreated, sessionToView(sess))
}

func (s *Server) handleConfigurationState(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, qerr.New(qerr.TypeNotFound, "configuration not found"))
		return
	}
	writeJSON(w, http.StatusOK, sessionToView(sess))
}

func (s *Server) handleSelectOption(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, qerr.New(qerr.TypeNotFound, "configuration not found"))
		return
	}

	var req struct {
		Option string `json:"option"`
		Choice string `json:"choice"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := sess.SelectOption(req.Option, req.Choice); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionToView(sess))
}

func (s *Server) handleClearOption(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, qerr.New(qerr.TypeNotFound, "configuration not found"))
		return
	}

	var req struct {
		Option string `json:"option"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := sess.ClearOption(req.Option); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionToView(sess))
}

func (s *Server) handleValidChoices(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, qerr.New(qerr.TypeNotFound, "configuration not found"))
		return
	}

	option := r.URL.Query().Get("option")
	if option == "" {
		sets := sess.ValidChoiceSets()
		views := make(map[string][]choiceView, len(sets))
		for name, choices := range sets {
			views[name] = choicesToView(choices)
		}
		writeJSON(w, http.StatusOK, views)
		return
	}

	choices, err := sess.ValidChoices(option)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, choicesToView(choices))
}

func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, qerr.New(qerr.TypeNotFound, "configuration not found"))
		return
	}

	var req struct {
		Title string `json:"title"`
		Notes string `json:"notes"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	finalized, err := sess.Finalize()
	if err != nil {
		writeError(w, err)
		return
	}

	quoteID, err := s.insertQuote(sess.FamilyName(), req.Title, req.Notes, finalized)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		QuoteID string `json:"quoteId"`
		configurator.Finalized
	}{QuoteID: quoteID, Finalized: finalized})
}
