// Package governance holds the listing view state for admin tooling:
// filter coupling, pagination clamping, query-string persistence and
// the stale-response guard. It owns no I/O; callers feed it pages
// fetched through the client package and replace their local copies
// with whatever the server returns.
package governance

import (
	"github.com/lcgate/rulekeeper/internal/client"
	"github.com/lcgate/rulekeeper/internal/types"
)

// Activation is the tri-state rules activation filter.
type Activation string

const (
	ActivationActive   Activation = "active"
	ActivationInactive Activation = "inactive"
	ActivationAll      Activation = "all"
)

// RulesFilters is the rules listing view state. The zero value is the
// default view: no filters, active rules, page 1.
type RulesFilters struct {
	Search       string
	Domain       string
	DocumentType string
	Severity     string
	Activation   Activation
	Page         int
}

// ClientFilter translates the view state into a listing request.
func (f RulesFilters) ClientFilter() client.RuleFilter {
	cf := client.RuleFilter{
		Search:       f.Search,
		Domain:       f.Domain,
		DocumentType: f.DocumentType,
		Severity:     f.Severity,
		Page:         f.Page,
		PageSize:     types.RulesPageSize,
	}
	switch f.Activation {
	case ActivationAll:
		cf.All = true
	case ActivationInactive:
		inactive := false
		cf.Active = &inactive
	default:
		active := true
		cf.Active = &active
	}
	if cf.Page < 1 {
		cf.Page = 1
	}
	return cf
}

// RulesetFilters is the rulesets listing view state. Empty strings
// mean "all". The rulebook/domain pair can never hold an inconsistent
// combination; use SetRulebook and SetDomain rather than assigning
// the fields directly.
type RulesetFilters struct {
	Status       string
	Jurisdiction string
	Domain       string
	Rulebook     string
	Search       string
	Page         int
}

// SetRulebook selects a rulebook filter. A specific rulebook forces
// the domain filter to its parent domain; clearing the rulebook
// leaves the domain filter independent.
func (f *RulesetFilters) SetRulebook(rulebook string) {
	f.Rulebook = rulebook
	if rulebook == "" {
		return
	}
	if parent := types.DomainOfRulebook(rulebook); parent != "" {
		f.Domain = parent
	}
}

// SetDomain selects a domain filter. With resetRulebook, any specific
// rulebook selection is cleared back to "all"; without it an existing
// rulebook selection is kept only while it still belongs to the new
// domain.
func (f *RulesetFilters) SetDomain(domain string, resetRulebook bool) {
	f.Domain = domain
	if resetRulebook {
		f.Rulebook = ""
		return
	}
	if f.Rulebook != "" && domain != "" && !types.RulebookBelongsTo(domain, f.Rulebook) {
		f.Rulebook = ""
	}
}

// ClientFilter translates the view state into a listing request.
func (f RulesetFilters) ClientFilter() client.RulesetFilter {
	cf := client.RulesetFilter{
		Status:       f.Status,
		Jurisdiction: f.Jurisdiction,
		Domain:       f.Domain,
		Rulebook:     f.Rulebook,
		Search:       f.Search,
		Page:         f.Page,
		PageSize:     types.RulesetsPageSize,
	}
	if cf.Page < 1 {
		cf.Page = 1
	}
	return cf
}

// ClampPage pulls an out-of-range page back into [1, totalPages]. A
// page beyond the end lands on the last page, never past it.
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		return totalPages
	}
	if page < 1 {
		return 1
	}
	return page
}
