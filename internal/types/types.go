// Package types provides domain models shared across RuleKeeper components.
//
// Zero-dependency design: types.go and errors.go use only encoding/json so
// the client package can embed them without pulling in storage or transport
// dependencies. ID utilities in ids.go import uuid but are isolated for
// selective inclusion.
package types

import (
	"encoding/json"
	"time"
)

// Status represents the lifecycle state of a ruleset.
// Exactly one ruleset may be active per (domain, jurisdiction) pair.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusActive    Status = "active"
	StatusArchived  Status = "archived"
)

// ParseStatus validates a status literal.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusDraft, StatusScheduled, StatusActive, StatusArchived:
		return Status(s), nil
	}
	return "", ErrUnknownStatus
}

// Ruleset is a versioned bundle of rules for one (domain, jurisdiction)
// pair, based on a named rulebook standard.
type Ruleset struct {
	ID              RulesetID  `db:"id" json:"id"`
	Domain          string     `db:"domain" json:"domain"`
	Jurisdiction    string     `db:"jurisdiction" json:"jurisdiction"`
	RulebookVersion string     `db:"rulebook_version" json:"rulebookVersion"`
	RulesetVersion  string     `db:"ruleset_version" json:"rulesetVersion"`
	Status          Status     `db:"status" json:"status"`
	RuleCount       int        `db:"rule_count" json:"ruleCount"`
	PublishedAt     *time.Time `db:"published_at" json:"publishedAt,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
	EffectiveFrom   *time.Time `db:"effective_from" json:"effectiveFrom,omitempty"`
	EffectiveTo     *time.Time `db:"effective_to" json:"effectiveTo,omitempty"`
	Notes           string     `db:"notes" json:"notes,omitempty"`
}

// Rule is one evaluable compliance condition. Key is the stable business
// identifier (wire name "ruleId"), distinct from the storage ID.
type Rule struct {
	ID           RuleID          `db:"id" json:"id"`
	Key          string          `db:"rule_key" json:"ruleId"`
	RulesetID    RulesetID       `db:"ruleset_id" json:"rulesetId"`
	Title        string          `db:"title" json:"title"`
	Domain       string          `db:"domain" json:"domain"`
	Jurisdiction string          `db:"jurisdiction" json:"jurisdiction"`
	DocumentType string          `db:"document_type" json:"documentType"`
	Severity     Severity        `db:"severity" json:"severity"`
	RequiresLLM  bool            `db:"requires_llm" json:"requiresLlm"`
	IsActive     bool            `db:"is_active" json:"isActive"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updatedAt"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
}

// ImportSummary is the result of one upload/import operation.
// Produced once per upload; never persisted as a first-class entity.
type ImportSummary struct {
	TotalRules int      `json:"totalRules"`
	Inserted   int      `json:"inserted"`
	Updated    int      `json:"updated"`
	Skipped    int      `json:"skipped"`
	Warnings   []string `json:"warnings"`
	Errors     []string `json:"errors"`
}

// AuditEntry is an append-only record of a governance action.
type AuditEntry struct {
	ID        AuditID         `db:"id" json:"id"`
	Action    string          `db:"action" json:"action"`
	EntityID  string          `db:"entity_id" json:"entityId,omitempty"`
	Metadata  json.RawMessage `db:"metadata" json:"metadata,omitempty"`
	Actor     string          `db:"actor" json:"actor"`
	Timestamp time.Time       `db:"created_at" json:"timestamp"`
}

// Audit action names, one per mutating operation.
const (
	ActionUploadRuleset   = "upload_ruleset"
	ActionPublishRuleset  = "publish_ruleset"
	ActionRollbackRuleset = "rollback_ruleset"
	ActionArchiveRuleset  = "archive_ruleset"
	ActionDeleteRuleset   = "delete_ruleset"
	ActionUpdateRule      = "update_rule"
	ActionBulkSyncRules   = "bulk_sync_rules"
)

// Resource limits enforced at API and store boundaries.
const (
	// MaxUploadSize caps a ruleset document upload. A full rulebook
	// export runs well under 1MB; larger files indicate a wrong file.
	MaxUploadSize = 4 * 1024 * 1024

	// MaxRulesPerUpload bounds per-upload transaction size.
	MaxRulesPerUpload = 5000

	// SnapshotLimit is the maximum rulesets fetched for the client-side
	// duplicate-draft pre-check snapshot.
	SnapshotLimit = 1000

	// RulesPageSize is the fixed page size for the rules listing.
	RulesPageSize = 25

	// RulesetsPageSize is the default page size for the rulesets listing.
	RulesetsPageSize = 10
)
