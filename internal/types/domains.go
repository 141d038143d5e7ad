package types

// RulebookOption is one selectable rulebook within a primary domain.
type RulebookOption struct {
	Value string // stored domain value, e.g. "icc.ucp600"
	Label string // display label, e.g. "UCP 600"
}

// DomainOption is a primary compliance domain with its rulebook options.
// The table is static: adding a rulebook is a code change, matching how
// rulebook standards are actually adopted (rarely, and with review).
type DomainOption struct {
	Value     string
	Label     string
	Rulebooks []RulebookOption
}

// Domains is the canonical domain → rulebook table. Order is the
// display order. A ruleset's Domain is either a primary domain value
// or one of its rulebook option values.
var Domains = []DomainOption{
	{
		Value: "icc.ucp600",
		Label: "Documentary Credits (UCP 600)",
		Rulebooks: []RulebookOption{
			{Value: "icc.ucp600", Label: "UCP 600"},
			{Value: "icc.isbp821", Label: "ISBP 821"},
			{Value: "icc.urr725", Label: "URR 725"},
		},
	},
	{
		Value: "icc.urc522",
		Label: "Documentary Collections (URC 522)",
		Rulebooks: []RulebookOption{
			{Value: "icc.urc522", Label: "URC 522"},
		},
	},
	{
		Value: "icc.urdg758",
		Label: "Demand Guarantees (URDG 758)",
		Rulebooks: []RulebookOption{
			{Value: "icc.urdg758", Label: "URDG 758"},
		},
	},
	{
		Value: "sanctions",
		Label: "Sanctions Screening",
		Rulebooks: []RulebookOption{
			{Value: "sanctions.ofac", Label: "OFAC SDN"},
			{Value: "sanctions.un", Label: "UN Consolidated"},
			{Value: "sanctions.eu", Label: "EU Consolidated"},
		},
	},
	{
		Value: "customs",
		Label: "Customs & HS Classification",
		Rulebooks: []RulebookOption{
			{Value: "customs.hs", Label: "HS Nomenclature"},
			{Value: "customs.bd", Label: "Bangladesh Customs"},
		},
	},
	{
		Value: "vat",
		Label: "VAT & Indirect Tax",
		Rulebooks: []RulebookOption{
			{Value: "vat.eu", Label: "EU VAT"},
			{Value: "vat.bd", Label: "Bangladesh VAT"},
		},
	},
}

// DomainByValue returns the primary domain entry, or nil when unknown.
func DomainByValue(value string) *DomainOption {
	for i := range Domains {
		if Domains[i].Value == value {
			return &Domains[i]
		}
	}
	return nil
}

// RulebookBelongsTo reports whether rulebook is one of domain's options.
func RulebookBelongsTo(domain, rulebook string) bool {
	d := DomainByValue(domain)
	if d == nil {
		return false
	}
	for _, rb := range d.Rulebooks {
		if rb.Value == rulebook {
			return true
		}
	}
	return false
}

// DomainOfRulebook returns the primary domain owning a rulebook value,
// or empty string when the rulebook is unknown.
func DomainOfRulebook(rulebook string) string {
	for _, d := range Domains {
		for _, rb := range d.Rulebooks {
			if rb.Value == rulebook {
				return d.Value
			}
		}
	}
	return ""
}

// RulebookLabel returns the display label for a rulebook value, or the
// value itself when unknown. Unknown values still render; labels are a
// presentation concern only.
func RulebookLabel(value string) string {
	for _, d := range Domains {
		for _, rb := range d.Rulebooks {
			if rb.Value == value {
				return rb.Label
			}
		}
	}
	return value
}

// DomainLabel returns the display label for a primary domain value, or
// the value itself when unknown.
func DomainLabel(value string) string {
	if d := DomainByValue(value); d != nil {
		return d.Label
	}
	return value
}
