package types

import "errors"

// Sentinel errors for RuleKeeper operations.
var (
	// ErrRulesetNotFound indicates the referenced ruleset does not exist.
	ErrRulesetNotFound = errors.New("ruleset not found")

	// ErrRuleNotFound indicates the referenced rule does not exist.
	ErrRuleNotFound = errors.New("rule not found")

	// ErrDuplicateDraft indicates a draft with identical
	// (domain, rulebook_version, ruleset_version) already exists.
	ErrDuplicateDraft = errors.New("draft already exists for this domain, rulebook and version")

	// ErrInvalidTransition indicates a lifecycle transition not allowed
	// from the ruleset's current status.
	ErrInvalidTransition = errors.New("invalid ruleset status transition")

	// ErrUnknownStatus indicates an unrecognized ruleset status literal.
	ErrUnknownStatus = errors.New("unknown ruleset status")

	// ErrUnknownSeverity indicates an unrecognized severity literal.
	ErrUnknownSeverity = errors.New("unknown severity")

	// ErrUploadTooLarge indicates the uploaded document exceeds MaxUploadSize.
	ErrUploadTooLarge = errors.New("upload exceeds maximum size")

	// ErrTooManyRules indicates an upload exceeds MaxRulesPerUpload elements.
	ErrTooManyRules = errors.New("upload has too many rules")

	// ErrUnknownDomain indicates a domain absent from the rulebook table.
	ErrUnknownDomain = errors.New("unknown domain")

	// ErrRulebookMismatch indicates a rulebook that does not belong to
	// the selected domain's option list.
	ErrRulebookMismatch = errors.New("selected rulebook does not belong to the selected domain")
)
