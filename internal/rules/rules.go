// Package rules maps committed answers to follow-up questions. The rule table
// is pure data; evaluation is deterministic and side-effect free.
package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
)

// PredicateKind selects how a rule matches the committed value.
type PredicateKind string

const (
	// PredicateEquals matches the exact value of a radio/yes-no answer.
	PredicateEquals PredicateKind = "equals"
	// PredicateMatches applies a case-insensitive regexp to free text.
	PredicateMatches PredicateKind = "matches"
)

// RuleSpec is the on-disk shape of one rule.
type RuleSpec struct {
	Trigger   string        `json:"trigger"`
	Predicate PredicateKind `json:"predicate"`
	Value     string        `json:"value"`
	Inject    string        `json:"inject"`
}

type rule struct {
	trigger string
	kind    PredicateKind
	value   string
	pattern *regexp.Regexp
	inject  string
}

// Engine evaluates the rule table in insertion order.
type Engine struct {
	rules []rule
}

// rulesFile mirrors the rules JSON file.
type rulesFile struct {
	Rules []RuleSpec `json:"rules"`
}

// Load reads a rule table from a JSON file.
func Load(path string) (*Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	var file rulesFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse rules JSON: %w", err)
	}

	return New(file.Rules)
}

// New compiles a rule table.
func New(specs []RuleSpec) (*Engine, error) {
	compiled := make([]rule, 0, len(specs))
	for i, spec := range specs {
		if spec.Trigger == "" || spec.Inject == "" {
			return nil, fmt.Errorf("rule %d: trigger and inject are required", i)
		}

		r := rule{trigger: spec.Trigger, kind: spec.Predicate, value: spec.Value, inject: spec.Inject}
		switch spec.Predicate {
		case PredicateEquals:
		case PredicateMatches:
			pattern, err := regexp.Compile("(?i)" + spec.Value)
			if err != nil {
				return nil, fmt.Errorf("rule %d: compile pattern %q: %w", i, spec.Value, err)
			}
			r.pattern = pattern
		default:
			return nil, fmt.Errorf("rule %d: unknown predicate kind %q", i, spec.Predicate)
		}

		compiled = append(compiled, r)
	}

	return &Engine{rules: compiled}, nil
}

// Evaluate returns the question ids injected by (questionID, value), in the
// order the matching rules are listed. The caller deduplicates against its
// queue, so re-evaluating the same pair stays idempotent.
func (e *Engine) Evaluate(questionID, value string) []string {
	var injected []string
	for _, r := range e.rules {
		if r.trigger != questionID {
			continue
		}

		switch r.kind {
		case PredicateEquals:
			if value == r.value {
				injected = append(injected, r.inject)
			}
		case PredicateMatches:
			if r.pattern.MatchString(value) {
				injected = append(injected, r.inject)
			}
		}
	}
	return injected
}

// Len returns the number of compiled rules.
func (e *Engine) Len() int {
	return len(e.rules)
}

// DefaultSpecs is the built-in rule table used when no rules file is
// configured: a chemical-exposure incident asks for proof documents, and any
// mention of hospitalization asks for medical records.
func DefaultSpecs() []RuleSpec {
	return []RuleSpec{
		{
			Trigger:   "B3_mechanism",
			Predicate: PredicateEquals,
			Value:     "chemical",
			Inject:    "C2_documents_proof",
		},
		{
			Trigger:   "B5_treatment",
			Predicate: PredicateMatches,
			Value:     `hospital(ized|ization)?|emergency\s+room|\bER\b|admitted`,
			Inject:    "C3_medical_records",
		},
	}
}
