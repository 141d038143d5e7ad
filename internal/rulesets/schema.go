package rulesets

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ruleSchema is the authoritative per-element import schema. The
// severity enum carries the import-time literals; warn is normalized
// to the canonical "warning" after validation. Fields the schema does
// not require (domain, jurisdiction, conditions) are defaulted from
// upload parameters, never rejected.
const ruleSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["rule_id", "severity", "expected_outcome"],
	"properties": {
		"rule_id": {"type": "string", "minLength": 1},
		"severity": {"enum": ["fail", "warn", "info"]},
		"expected_outcome": {"type": "string", "minLength": 1},
		"conditions": {"type": "array"},
		"condition": {"type": "array"},
		"domain": {"type": "string"},
		"jurisdiction": {"type": "string"},
		"title": {"type": "string"},
		"document_type": {"type": "string"},
		"requires_llm": {"type": "boolean"}
	}
}`

var compiledRuleSchema = jsonschema.MustCompileString("rule.schema.json", ruleSchema)

// CheckImportElement validates one document element against the import
// schema. Returns a single descriptive error naming the 1-indexed
// element, or nil when the element is importable.
func CheckImportElement(index int, raw json.RawMessage) error {
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("rule %d: %v", index+1, err)
	}
	if err := compiledRuleSchema.Validate(v); err != nil {
		return fmt.Errorf("rule %d: %v", index+1, err)
	}
	return nil
}
