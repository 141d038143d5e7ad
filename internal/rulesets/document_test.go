package rulesets

import (
	"strings"
	"testing"
)

func TestValidateDocument_NonArray(t *testing.T) {
	report := ValidateDocument([]byte(`{}`))

	if report.Valid() {
		t.Fatal("object document must be invalid")
	}
	if len(report.Errors) != 1 || report.Errors[0] != "Ruleset must be an array of rules" {
		t.Errorf("errors = %v, want the non-array message", report.Errors)
	}
	if report.RuleCount != 0 {
		t.Errorf("ruleCount = %d, want 0", report.RuleCount)
	}
}

func TestValidateDocument_Null(t *testing.T) {
	for _, doc := range []string{`null`, `  null `} {
		report := ValidateDocument([]byte(doc))

		if report.Valid() {
			t.Fatalf("null document %q must be invalid", doc)
		}
		if len(report.Errors) != 1 || report.Errors[0] != "Ruleset must be an array of rules" {
			t.Errorf("errors = %v, want the non-array message", report.Errors)
		}
	}

	if _, err := ParseDocument([]byte(`null`)); err == nil {
		t.Error("ParseDocument(null) must fail")
	}
}

func TestValidateDocument_ParseFailure(t *testing.T) {
	report := ValidateDocument([]byte(`[{"rule_id": `))

	if report.Valid() {
		t.Fatal("malformed JSON must be invalid")
	}
	if len(report.Errors) != 1 {
		t.Fatalf("errors = %v, want exactly the parser message", report.Errors)
	}
}

func TestValidateDocument_EmptyArray(t *testing.T) {
	report := ValidateDocument([]byte(`[]`))

	if !report.Valid() {
		t.Fatalf("empty array must be valid, errors = %v", report.Errors)
	}
	if len(report.Warnings) != 1 || report.Warnings[0] != "ruleset contains no rules" {
		t.Errorf("warnings = %v, want the empty-ruleset warning", report.Warnings)
	}
}

func TestValidateDocument_PerElement(t *testing.T) {
	doc := `[
		{"rule_id": "lc.ucp600.art14a", "domain": "icc.ucp600", "jurisdiction": "global", "conditions": []},
		{"domain": "icc.ucp600", "jurisdiction": "global", "conditions": []},
		{"rule_id": "lc.ucp600.art14b"},
		"not an object"
	]`

	report := ValidateDocument([]byte(doc))

	if report.RuleCount != 4 {
		t.Errorf("ruleCount = %d, want 4 (array length regardless of validity)", report.RuleCount)
	}
	if report.Valid() {
		t.Fatal("document with missing rule_id must be invalid")
	}

	wantErrors := []string{
		"rule 2: missing rule_id",
		"rule 4: not a JSON object",
	}
	if len(report.Errors) != len(wantErrors) {
		t.Fatalf("errors = %v, want %v", report.Errors, wantErrors)
	}
	for i, want := range wantErrors {
		if report.Errors[i] != want {
			t.Errorf("errors[%d] = %q, want %q", i, report.Errors[i], want)
		}
	}

	for _, want := range []string{
		"rule 3: missing domain",
		"rule 3: missing jurisdiction",
		"rule 3: missing conditions",
	} {
		found := false
		for _, w := range report.Warnings {
			if strings.HasPrefix(w, want) {
				found = true
			}
		}
		if !found {
			t.Errorf("warnings = %v, missing %q", report.Warnings, want)
		}
	}
}

func TestValidateDocument_LegacyConditionSpelling(t *testing.T) {
	doc := `[{"rule_id": "lc.ucp600.art14a", "domain": "d", "jurisdiction": "j", "condition": []}]`

	report := ValidateDocument([]byte(doc))

	if !report.Valid() {
		t.Fatalf("errors = %v, want none", report.Errors)
	}
	for _, w := range report.Warnings {
		if strings.Contains(w, "conditions") {
			t.Errorf("legacy condition spelling must satisfy the conditions check, got warning %q", w)
		}
	}
}

func TestRawRuleFieldAccess(t *testing.T) {
	elements, err := ParseDocument([]byte(`[{"rule_id": "r1", "requires_llm": true, "severity": "warn"}]`))
	if err != nil {
		t.Fatalf("ParseDocument error = %v", err)
	}
	if len(elements) != 1 {
		t.Fatalf("elements = %d, want 1", len(elements))
	}

	el := elements[0]
	if got := el.StringField("rule_id"); got != "r1" {
		t.Errorf("StringField(rule_id) = %q, want r1", got)
	}
	if got := el.StringField("missing"); got != "" {
		t.Errorf("StringField(missing) = %q, want empty", got)
	}
	if !el.BoolField("requires_llm") {
		t.Error("BoolField(requires_llm) = false, want true")
	}
	if el.BoolField("severity") {
		t.Error("BoolField on a string field must be false")
	}
}
