package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lcgate/rulekeeper/internal/rulesets"
	"github.com/lcgate/rulekeeper/internal/types"
)

// UploadParams carries the metadata accompanying a ruleset document
// upload. Domain is the stored domain value (a rulebook option value
// such as "icc.ucp600"); the rulebook/domain cross-check happens at
// the API boundary before import.
type UploadParams struct {
	Domain          string
	Jurisdiction    string
	RulebookVersion string
	RulesetVersion  string
	EffectiveFrom   *time.Time
	EffectiveTo     *time.Time
	Notes           string
}

// ImportRuleset creates a draft ruleset from validated document
// elements and upserts its rules by business key in one transaction.
//
// Per element: schema violations (missing rule_id, bad severity
// literal, missing expected_outcome) are recorded as errors and the
// element is skipped; missing domain, jurisdiction or conditions are
// defaulted from the upload parameters and recorded as warnings. An
// upload where every element fails is rolled back entirely.
func (s *Store) ImportRuleset(ctx context.Context, p UploadParams, elements []rulesets.RawRule) (*types.Ruleset, *types.ImportSummary, error) {
	if len(elements) > types.MaxRulesPerUpload {
		return nil, nil, types.ErrTooManyRules
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Pre-check the duplicate-draft invariant for a friendly error; the
	// partial unique index remains authoritative under concurrency.
	var drafts int
	dupQuery := `SELECT COUNT(*) FROM rulesets
		WHERE domain = ? AND rulebook_version = ? AND ruleset_version = ? AND status = ?`
	err = tx.GetContext(ctx, &drafts, tx.Rebind(dupQuery),
		p.Domain, p.RulebookVersion, p.RulesetVersion, types.StatusDraft)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check for duplicate draft: %w", err)
	}
	if drafts > 0 {
		return nil, nil, types.ErrDuplicateDraft
	}

	now := s.now()
	rs := &types.Ruleset{
		ID:              types.NewRulesetID(),
		Domain:          p.Domain,
		Jurisdiction:    p.Jurisdiction,
		RulebookVersion: p.RulebookVersion,
		RulesetVersion:  p.RulesetVersion,
		Status:          types.StatusDraft,
		CreatedAt:       now,
		EffectiveFrom:   p.EffectiveFrom,
		EffectiveTo:     p.EffectiveTo,
		Notes:           p.Notes,
	}

	insert := `INSERT INTO rulesets (id, domain, jurisdiction, rulebook_version, ruleset_version,
		status, rule_count, created_at, effective_from, effective_to, notes)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, tx.Rebind(insert),
		rs.ID, rs.Domain, rs.Jurisdiction, rs.RulebookVersion, rs.RulesetVersion,
		rs.Status, rs.CreatedAt, rs.EffectiveFrom, rs.EffectiveTo, rs.Notes)
	if err != nil {
		if isUniqueViolation(err, "uq_rulesets_single_draft", "domain", "rulebook_version", "ruleset_version") {
			return nil, nil, types.ErrDuplicateDraft
		}
		return nil, nil, fmt.Errorf("failed to insert ruleset: %w", err)
	}

	summary := &types.ImportSummary{
		TotalRules: len(elements),
		Warnings:   []string{},
		Errors:     []string{},
	}

	for i, el := range elements {
		if err := rulesets.CheckImportElement(i, el.Raw); err != nil {
			summary.Errors = append(summary.Errors, err.Error())
			summary.Skipped++
			continue
		}
		inserted, err := s.upsertRule(ctx, tx, rs, p, i, el, summary, now)
		if err != nil {
			return nil, nil, err
		}
		if inserted {
			summary.Inserted++
		} else {
			summary.Updated++
		}
	}

	imported := summary.Inserted + summary.Updated
	if imported == 0 {
		return nil, summary, fmt.Errorf("no importable rules in document (%d skipped)", summary.Skipped)
	}

	rs.RuleCount = imported
	if _, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE rulesets SET rule_count = ? WHERE id = ?`), imported, rs.ID); err != nil {
		return nil, nil, fmt.Errorf("failed to update rule count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit import: %w", err)
	}
	return rs, summary, nil
}

// upsertRule writes one document element, keyed by rule_id. Returns
// true when a new row was inserted, false when an existing business
// key was updated in place.
func (s *Store) upsertRule(ctx context.Context, tx *sqlx.Tx, rs *types.Ruleset, p UploadParams,
	index int, el rulesets.RawRule, summary *types.ImportSummary, now time.Time) (bool, error) {

	key := el.StringField("rule_id")
	n := index + 1

	domain := el.StringField("domain")
	if domain == "" {
		domain = p.Domain
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("rule %d: missing domain, defaulted to %s", n, p.Domain))
	}
	jurisdiction := el.StringField("jurisdiction")
	if jurisdiction == "" {
		jurisdiction = p.Jurisdiction
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("rule %d: missing jurisdiction, defaulted to %s", n, p.Jurisdiction))
	}

	severity, err := types.NormalizeImportSeverity(el.StringField("severity"))
	if err != nil {
		// Schema validation already enforced the literal set.
		return false, fmt.Errorf("rule %d: %w", n, err)
	}

	payload, defaulted, err := normalizePayload(el, domain, jurisdiction)
	if err != nil {
		return false, fmt.Errorf("rule %d: failed to normalize payload: %w", n, err)
	}
	if defaulted {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("rule %d: missing conditions, defaulted to empty", n))
	}

	title := el.StringField("title")
	documentType := el.StringField("document_type")
	requiresLLM := el.BoolField("requires_llm")

	var existingID types.RuleID
	err = tx.GetContext(ctx, &existingID, tx.Rebind(`SELECT id FROM rules WHERE rule_key = ?`), key)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("rule %d: failed to look up business key: %w", n, err)
	}
	if err == nil {
		update := `UPDATE rules SET ruleset_id = ?, title = ?, domain = ?, jurisdiction = ?,
			document_type = ?, severity = ?, requires_llm = ?, updated_at = ?, payload = ?
			WHERE id = ?`
		if _, err := tx.ExecContext(ctx, tx.Rebind(update),
			rs.ID, title, domain, jurisdiction, documentType, severity, requiresLLM, now, payload, existingID); err != nil {
			return false, fmt.Errorf("rule %d: failed to update: %w", n, err)
		}
		return false, nil
	}

	insert := `INSERT INTO rules (id, rule_key, ruleset_id, title, domain, jurisdiction,
		document_type, severity, requires_llm, is_active, updated_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, tx.Rebind(insert),
		types.NewRuleID(), key, rs.ID, title, domain, jurisdiction,
		documentType, severity, requiresLLM, true, now, payload); err != nil {
		return false, fmt.Errorf("rule %d: failed to insert: %w", n, err)
	}
	return true, nil
}

// normalizePayload injects defaulted fields into the stored payload so
// downstream consumers see the effective rule, not the sparse upload.
// Returns the marshaled payload and whether conditions were defaulted.
func normalizePayload(el rulesets.RawRule, domain, jurisdiction string) ([]byte, bool, error) {
	fields := make(map[string]json.RawMessage, len(el.Fields)+3)
	for k, v := range el.Fields {
		fields[k] = v
	}

	if _, ok := fields["domain"]; !ok {
		raw, _ := json.Marshal(domain)
		fields["domain"] = raw
	}
	if _, ok := fields["jurisdiction"]; !ok {
		raw, _ := json.Marshal(jurisdiction)
		fields["jurisdiction"] = raw
	}

	defaulted := false
	_, hasConditions := fields["conditions"]
	_, hasLegacy := fields["condition"]
	if !hasConditions && !hasLegacy {
		fields["conditions"] = json.RawMessage("[]")
		defaulted = true
	}

	payload, err := json.Marshal(fields)
	if err != nil {
		return nil, false, err
	}
	return payload, defaulted, nil
}
