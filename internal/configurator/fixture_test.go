package configurator

import (
	"github.com/shopspring/decimal"

	"github.com/sensorline/levelquote/internal/catalog"
	"github.com/sensorline/levelquote/internal/money"
)

// levelSwitchSnapshot mirrors the seeded LS700 family closely enough for
// engine tests: four materials, a PTFE length ceiling, a ceramic-insulator
// exclusion, and a flange rating gated behind a flanged connection.
func levelSwitchSnapshot() *catalog.FamilySnapshot {
	choices := func(pairs ...string) []catalog.Choice {
		out := make([]catalog.Choice, 0, len(pairs)/2)
		for i := 0; i < len(pairs); i += 2 {
			out = append(out, catalog.Choice{Code: pairs[i], Label: pairs[i+1]})
		}
		return out
	}
	adders := func(m map[string]any) map[string]catalog.Adder {
		out := make(map[string]catalog.Adder, len(m))
		for code, v := range m {
			switch v := v.(type) {
			case int:
				out[code] = catalog.Adder{Amount: decimal.NewFromInt(int64(v))}
			case string:
				out[code] = catalog.Adder{Manual: true}
			}
		}
		return out
	}

	return &catalog.FamilySnapshot{
		Family: catalog.ProductFamily{
			ID: 1, Name: "LS700", Description: "single-point level switch",
			BasePrice: money.FromFloat(680), BaseLength: 10,
		},
		Options: []catalog.FamilyOption{
			{
				Available: true, Required: true, DefaultCode: "120", Position: 0,
				Option: catalog.Option{
					Name: "Voltage", Category: catalog.CategoryVoltage,
					Choices: choices("120", "120 VAC", "240", "240 VAC", "24", "24 VDC"),
					Adders:  adders(map[string]any{"120": 0, "240": 0, "24": 35}),
				},
			},
			{
				Available: true, Required: true, DefaultCode: "S", Position: 1,
				Option: catalog.Option{
					Name: "Material", Category: catalog.CategoryMaterial,
					Choices: choices(
						"S", "316 stainless steel probe",
						"H", "Hastelloy C-276 probe",
						"T", "PTFE-sleeved 316SS probe",
						"M", "Monel 400 probe",
					),
					Adders: adders(map[string]any{"S": 0, "H": 110, "T": 85, "M": "manual"}),
					Rules: []catalog.Rule{
						catalog.LengthCeilingRule{MaterialCode: "T", MaxLength: 60},
					},
				},
			},
			{
				Available: true, Required: true, DefaultCode: "10", Position: 2,
				Option: catalog.Option{
					Name: "Probe Length", Category: catalog.CategoryLength,
					Choices: choices(
						"10", "10 in", "12", "12 in", "18", "18 in", "20", "20 in",
						"24", "24 in", "36", "36 in", "60", "60 in", "72", "72 in",
					),
					Adders: map[string]catalog.Adder{},
				},
			},
			{
				Available: true, Required: true, DefaultCode: "NPT", Position: 3,
				Option: catalog.Option{
					Name: "Connection Type", Category: catalog.CategoryConnection,
					Choices: choices("NPT", "3/4 in NPT process connection", "FLG", "flanged process connection"),
					Adders:  adders(map[string]any{"NPT": 0, "FLG": 60}),
				},
			},
			{
				Available: true, Position: 4,
				Option: catalog.Option{
					Name: "Flange Rating", Category: catalog.CategoryConnection,
					Choices: choices("150", "150# RF flange", "300", "300# RF flange"),
					Adders:  adders(map[string]any{"150": 95, "300": 210}),
					Rules: []catalog.Rule{
						catalog.RequiresRule{Option: "Flange Rating", PrereqOption: "Connection Type", PrereqChoice: "FLG"},
					},
				},
			},
			{
				Available: true, Required: true, DefaultCode: "D", Position: 5,
				Option: catalog.Option{
					Name: "Insulator", Category: catalog.CategoryInsulator,
					Choices: choices("D", "Delrin insulator", "P", "PEEK insulator", "C", "ceramic insulator"),
					Adders:  adders(map[string]any{"D": 0, "P": 48, "C": 120}),
					Rules: []catalog.Rule{
						catalog.ExcludesRule{Option: "Material", Choice: "T", OtherOption: "Insulator", OtherChoice: "C"},
					},
				},
			},
			{
				Available: true, Position: 6,
				Option: catalog.Option{
					Name: "Housing", Category: catalog.CategoryHousing, ModelSuffix: true,
					Choices: choices("N4", "NEMA 4 housing", "XP", "explosion-proof housing"),
					Adders:  adders(map[string]any{"N4": 0, "XP": 225}),
				},
			},
		},
		Materials: map[string]catalog.MaterialRule{
			"S": {
				Code: "S", BaseLength: 10, PerFootAdder: decimal.NewFromInt(60),
				StandardLengths: []float64{10, 12, 18, 24, 36, 60, 72},
			},
			"H": {
				Code: "H", BaseLength: 10, PerFootAdder: decimal.NewFromInt(110),
				HasLengthSurcharge: true, LengthSurcharge: decimal.NewFromInt(300),
				StandardLengths: []float64{10, 12, 18, 24, 36},
			},
			"T": {
				Code: "T", BaseLength: 10, PerInchAdder: decimal.NewFromInt(9),
				StandardLengths: []float64{10, 12, 18, 24, 36, 60},
			},
			"M": {Code: "M", BaseLength: 10, StandardLengths: []float64{10, 12}},
		},
	}
}

func choiceCodes(choices []catalog.Choice) []string {
	codes := make([]string, 0, len(choices))
	for _, c := range choices {
		codes = append(codes, c.Code)
	}
	return codes
}
