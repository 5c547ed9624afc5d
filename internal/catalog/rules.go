package catalog

import (
	"encoding/json"
	"fmt"
)

// RuleKind identifies the category of a structured option rule.
type RuleKind string

const (
	// RuleLengthCeiling caps the probe length of a material.
	RuleLengthCeiling RuleKind = "length_ceiling"

	// RuleExcludes declares that one choice rules out a choice of another
	// option (symmetric).
	RuleExcludes RuleKind = "excludes"

	// RuleRequires gates an option behind a prerequisite option value.
	RuleRequires RuleKind = "requires"
)

// Rule is a structured compatibility constraint between option choices.
type Rule interface {
	Kind() RuleKind
}

// LengthCeilingRule forbids combining a material with probe lengths above
// MaxLength inches.
type LengthCeilingRule struct {
	MaterialCode string  `json:"material"`
	MaxLength    float64 `json:"max_length_in"`
}

func (LengthCeilingRule) Kind() RuleKind { return RuleLengthCeiling }

// ExcludesRule forbids combining Choice of Option with OtherChoice of
// OtherOption.
type ExcludesRule struct {
	Option      string `json:"option"`
	Choice      string `json:"choice"`
	OtherOption string `json:"other_option"`
	OtherChoice string `json:"other_choice"`
}

func (ExcludesRule) Kind() RuleKind { return RuleExcludes }

// RequiresRule makes Option selectable only once PrereqOption has been set
// to PrereqChoice.
type RequiresRule struct {
	Option       string `json:"option"`
	PrereqOption string `json:"prereq_option"`
	PrereqChoice string `json:"prereq_choice"`
}

func (RequiresRule) Kind() RuleKind { return RuleRequires }

type ruleEnvelope struct {
	Type RuleKind `json:"type"`
}

// DecodeRules parses the rules_json column into typed rules. Unknown rule
// types fail the decode: an unenforceable rule silently dropped is worse
// than a load error.
func DecodeRules(data []byte) ([]Rule, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode rules list: %w", err)
	}

	rules := make([]Rule, 0, len(raws))
	for i, raw := range raws {
		var env ruleEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("decode rule %d envelope: %w", i, err)
		}

		switch env.Type {
		case RuleLengthCeiling:
			var r LengthCeilingRule
			if err := json.Unmarshal(raw, &r); err != nil {
				return nil, fmt.Errorf("decode length_ceiling rule %d: %w", i, err)
			}
			rules = append(rules, r)
		case RuleExcludes:
			var r ExcludesRule
			if err := json.Unmarshal(raw, &r); err != nil {
				return nil, fmt.Errorf("decode excludes rule %d: %w", i, err)
			}
			rules = append(rules, r)
		case RuleRequires:
			var r RequiresRule
			if err := json.Unmarshal(raw, &r); err != nil {
				return nil, fmt.Errorf("decode requires rule %d: %w", i, err)
			}
			rules = append(rules, r)
		default:
			return nil, fmt.Errorf("rule %d has unknown type %q", i, env.Type)
		}
	}

	return rules, nil
}

// EncodeRules is the inverse of DecodeRules, used by seeding.
func EncodeRules(rules []Rule) ([]byte, error) {
	if len(rules) == 0 {
		return nil, nil
	}

	out := make([]map[string]any, 0, len(rules))
	for _, r := range rules {
		raw, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("encode rule: %w", err)
		}
		m := map[string]any{}
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("re-decode rule: %w", err)
		}
		m["type"] = string(r.Kind())
		out = append(out, m)
	}

	return json.Marshal(out)
}
