package types

// Severity classifies the outcome weight of a rule.
//
// Two literal sets exist historically: uploaded documents carry
// {fail, warn, info} while governance views use the canonical
// {info, warning, fail, risk}. Import normalizes warn to warning;
// risk is assignable only through governance edits, never on import.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityFail    Severity = "fail"
	SeverityRisk    Severity = "risk"
)

// importSeverities maps import-time literals to canonical severities.
var importSeverities = map[string]Severity{
	"fail": SeverityFail,
	"warn": SeverityWarning,
	"info": SeverityInfo,
}

// ParseSeverity validates a canonical severity literal.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(s) {
	case SeverityInfo, SeverityWarning, SeverityFail, SeverityRisk:
		return Severity(s), nil
	}
	return "", ErrUnknownSeverity
}

// NormalizeImportSeverity maps an import-time literal to its canonical
// severity. Only {fail, warn, info} are accepted on import.
func NormalizeImportSeverity(s string) (Severity, error) {
	if sev, ok := importSeverities[s]; ok {
		return sev, nil
	}
	return "", ErrUnknownSeverity
}
