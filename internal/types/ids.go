package types

import (
	"time"

	"github.com/google/uuid"
)

// RulesetID represents a UUIDv7 ruleset identifier.
// String alias enables type safety while maintaining JSON string
// serialization. UUIDv7 time-ordering ensures sequential IDs cluster
// in B-tree indexes.
type RulesetID string

// RuleID represents a UUIDv7 rule storage identifier.
// Distinct from the rule's stable business key (Rule.Key).
type RuleID string

// AuditID represents a UUIDv7 audit entry identifier.
type AuditID string

// NewRulesetID generates a UUIDv7 ruleset identifier.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewRulesetID() RulesetID {
	return RulesetID(uuid.Must(uuid.NewV7()).String())
}

// NewRuleID generates a UUIDv7 rule storage identifier.
func NewRuleID() RuleID {
	return RuleID(uuid.Must(uuid.NewV7()).String())
}

// NewAuditID generates a UUIDv7 audit entry identifier.
func NewAuditID() AuditID {
	return AuditID(uuid.Must(uuid.NewV7()).String())
}

// ParseRulesetID validates and converts a string to RulesetID.
// Rejects malformed UUIDs to prevent invalid IDs from entering the system.
func ParseRulesetID(s string) (RulesetID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return RulesetID(s), nil
}

// ParseRuleID validates and converts a string to RuleID.
func ParseRuleID(s string) (RuleID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return RuleID(s), nil
}

// RulesetIDTime extracts the timestamp embedded in a UUIDv7 ID.
// Enables time-based queries without database lookup.
// Returns zero time for invalid UUIDs; caller should check IsZero().
func RulesetIDTime(id RulesetID) time.Time {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return time.Time{}
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec)
}
