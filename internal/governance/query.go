package governance

import (
	"net/url"
	"strconv"
)

// Query-string persistence mirrors both views' state into one URL so
// navigation state survives reloads and can be shared as a link. Each
// view has its own parameter prefix; a parameter equal to its default
// is omitted entirely.

// EncodeRules writes the rules view state into values.
func (f RulesFilters) EncodeRules(values url.Values) {
	setQuery(values, "rulesSearch", f.Search, "")
	setQuery(values, "rulesDomain", f.Domain, "")
	setQuery(values, "rulesDocType", f.DocumentType, "")
	setQuery(values, "rulesSeverity", f.Severity, "")
	activation := f.Activation
	if activation == "" {
		activation = ActivationActive
	}
	setQuery(values, "rulesActive", string(activation), string(ActivationActive))
	setQueryPage(values, "rulesPage", f.Page)
}

// DecodeRules reads the rules view state out of values, applying
// defaults for absent parameters.
func DecodeRules(values url.Values) RulesFilters {
	return RulesFilters{
		Search:       values.Get("rulesSearch"),
		Domain:       values.Get("rulesDomain"),
		DocumentType: values.Get("rulesDocType"),
		Severity:     values.Get("rulesSeverity"),
		Activation:   decodeActivation(values.Get("rulesActive")),
		Page:         decodePage(values.Get("rulesPage")),
	}
}

// EncodeRulesets writes the rulesets view state into values.
func (f RulesetFilters) EncodeRulesets(values url.Values) {
	setQuery(values, "setsStatus", f.Status, "")
	setQuery(values, "setsJurisdiction", f.Jurisdiction, "")
	setQuery(values, "setsDomain", f.Domain, "")
	setQuery(values, "setsRulebook", f.Rulebook, "")
	setQuery(values, "setsSearch", f.Search, "")
	setQueryPage(values, "setsPage", f.Page)
}

// DecodeRulesets reads the rulesets view state out of values. The
// rulebook/domain coupling is re-established through the setters so a
// hand-edited inconsistent link cannot produce an unrepresentable
// combination.
func DecodeRulesets(values url.Values) RulesetFilters {
	f := RulesetFilters{
		Status:       values.Get("setsStatus"),
		Jurisdiction: values.Get("setsJurisdiction"),
		Search:       values.Get("setsSearch"),
		Page:         decodePage(values.Get("setsPage")),
	}
	f.SetDomain(values.Get("setsDomain"), false)
	f.SetRulebook(values.Get("setsRulebook"))
	return f
}

func setQuery(values url.Values, key, value, def string) {
	if value == def {
		values.Del(key)
		return
	}
	values.Set(key, value)
}

func setQueryPage(values url.Values, key string, page int) {
	if page <= 1 {
		values.Del(key)
		return
	}
	values.Set(key, strconv.Itoa(page))
}

func decodeActivation(raw string) Activation {
	switch Activation(raw) {
	case ActivationInactive, ActivationAll:
		return Activation(raw)
	default:
		return ActivationActive
	}
}

func decodePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
