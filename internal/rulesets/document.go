package rulesets

import (
	"encoding/json"
	"fmt"
)

// ValidationReport is the outcome of structural validation of an
// uploaded rule document. Validity means zero errors; warnings do not
// block an upload.
type ValidationReport struct {
	RuleCount int      `json:"ruleCount"`
	Errors    []string `json:"errors"`
	Warnings  []string `json:"warnings"`
}

// Valid reports whether the document passed validation.
func (r *ValidationReport) Valid() bool {
	return len(r.Errors) == 0
}

// RawRule is one decoded element of an uploaded rule document.
// Fields holds the decoded object for key presence checks; Raw
// preserves the original bytes for storage.
type RawRule struct {
	Fields map[string]json.RawMessage
	Raw    json.RawMessage
}

// ValidateDocument runs local structural validation on a rule document.
//
// A JSON parse failure is terminal and surfaces the parser's message
// verbatim. The top-level value must be an array; an empty array is a
// warning, not an error. Per element (1-indexed, in order): a missing
// rule_id is an error; missing domain or jurisdiction is a warning
// (defaulted from the upload's parameters); missing both "conditions"
// and the legacy "condition" spelling is a warning (defaults to empty).
// Rule count is the array length regardless of validity.
func ValidateDocument(data []byte) *ValidationReport {
	report := &ValidationReport{}

	elements, err := decodeArray(data)
	if err != nil {
		report.Errors = append(report.Errors, err.Error())
		return report
	}

	report.RuleCount = len(elements)
	if len(elements) == 0 {
		report.Warnings = append(report.Warnings, "ruleset contains no rules")
		return report
	}

	for i, el := range elements {
		n := i + 1
		if el.Fields == nil {
			report.Errors = append(report.Errors, fmt.Sprintf("rule %d: not a JSON object", n))
			continue
		}
		if !hasString(el.Fields, "rule_id") {
			report.Errors = append(report.Errors, fmt.Sprintf("rule %d: missing rule_id", n))
		}
		if _, ok := el.Fields["domain"]; !ok {
			report.Warnings = append(report.Warnings, fmt.Sprintf("rule %d: missing domain, defaults to upload domain", n))
		}
		if _, ok := el.Fields["jurisdiction"]; !ok {
			report.Warnings = append(report.Warnings, fmt.Sprintf("rule %d: missing jurisdiction, defaults to upload jurisdiction", n))
		}
		if !hasArray(el.Fields, "conditions") && !hasArray(el.Fields, "condition") {
			report.Warnings = append(report.Warnings, fmt.Sprintf("rule %d: missing conditions, defaults to empty", n))
		}
	}

	return report
}

// ParseDocument decodes a rule document into its elements.
// Same top-level contract as ValidateDocument: parse errors are
// returned verbatim, non-arrays are rejected.
func ParseDocument(data []byte) ([]RawRule, error) {
	return decodeArray(data)
}

func decodeArray(data []byte) ([]RawRule, error) {
	var top json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, err
	}

	// A top-level null unmarshals into a nil slice without error.
	var raws []json.RawMessage
	if err := json.Unmarshal(top, &raws); err != nil || string(top) == "null" {
		return nil, fmt.Errorf("Ruleset must be an array of rules")
	}

	elements := make([]RawRule, len(raws))
	for i, r := range raws {
		var fields map[string]json.RawMessage
		// Non-object elements keep nil Fields; reported per element.
		_ = json.Unmarshal(r, &fields)
		elements[i] = RawRule{Fields: fields, Raw: r}
	}
	return elements, nil
}

// hasString reports whether key is present and a non-empty JSON string.
func hasString(fields map[string]json.RawMessage, key string) bool {
	raw, ok := fields[key]
	if !ok {
		return false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return false
	}
	return s != ""
}

// hasArray reports whether key is present and a JSON array.
func hasArray(fields map[string]json.RawMessage, key string) bool {
	raw, ok := fields[key]
	if !ok {
		return false
	}
	var a []json.RawMessage
	return json.Unmarshal(raw, &a) == nil
}

// StringField extracts a string field from a decoded element, returning
// empty string when absent or not a string.
func (r RawRule) StringField(key string) string {
	raw, ok := r.Fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// BoolField extracts a boolean field, returning false when absent.
func (r RawRule) BoolField(key string) bool {
	raw, ok := r.Fields[key]
	if !ok {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false
	}
	return b
}
