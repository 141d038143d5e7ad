package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lcgate/rulekeeper/internal/types"
)

// RuleFilter selects rules for listing. Active is tri-state: nil means
// all rules, otherwise an exact activation match. Search matches the
// business key, title, and payload description.
type RuleFilter struct {
	Search       string
	Domain       string
	DocumentType string
	Severity     string
	Active       *bool
	Page         int
	PageSize     int
}

// RulePage is one page of a filtered rule listing.
type RulePage struct {
	Items      []types.Rule `json:"items"`
	Total      int          `json:"total"`
	Page       int          `json:"page"`
	TotalPages int          `json:"totalPages"`
}

// RuleUpdate is a partial rule edit. Nil fields are left untouched.
// Payload replaces the stored rule JSON wholesale; the caller is
// responsible for having parsed it.
type RuleUpdate struct {
	IsActive *bool
	Severity *types.Severity
	Payload  json.RawMessage
}

const ruleColumns = `id, rule_key, ruleset_id, title, domain, jurisdiction,
	document_type, severity, requires_llm, is_active, updated_at, payload`

// ListRules returns a filtered, paginated page of rules, most recently
// updated first. Identical filters with no intervening mutation return
// identical pages.
func (s *Store) ListRules(ctx context.Context, f RuleFilter) (*RulePage, error) {
	if f.PageSize <= 0 {
		f.PageSize = types.RulesPageSize
	}

	var conds []string
	var args []any

	if f.Search != "" {
		needle := "%" + strings.ToLower(f.Search) + "%"
		conds = append(conds, "(LOWER(rule_key) LIKE ? OR LOWER(title) LIKE ? OR LOWER(payload) LIKE ?)")
		args = append(args, needle, needle, needle)
	}
	if f.Domain != "" {
		conds = append(conds, "domain = ?")
		args = append(args, f.Domain)
	}
	if f.DocumentType != "" {
		conds = append(conds, "document_type = ?")
		args = append(args, f.DocumentType)
	}
	if f.Severity != "" {
		conds = append(conds, "severity = ?")
		args = append(args, f.Severity)
	}
	if f.Active != nil {
		conds = append(conds, "is_active = ?")
		args = append(args, *f.Active)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := s.db.GetContext(ctx, &total, s.db.Rebind("SELECT COUNT(*) FROM rules"+where), args...); err != nil {
		return nil, fmt.Errorf("failed to count rules: %w", err)
	}

	pages := totalPages(total, f.PageSize)
	page := clampPage(f.Page, pages)

	query := fmt.Sprintf(`SELECT %s FROM rules%s
		ORDER BY updated_at DESC, id DESC
		LIMIT ? OFFSET ?`, ruleColumns, where)
	args = append(args, f.PageSize, (page-1)*f.PageSize)

	items := []types.Rule{}
	if err := s.db.SelectContext(ctx, &items, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}

	return &RulePage{Items: items, Total: total, Page: page, TotalPages: pages}, nil
}

// GetRuleByKey fetches one rule by its stable business key.
func (s *Store) GetRuleByKey(ctx context.Context, key string) (*types.Rule, error) {
	var rule types.Rule
	query := fmt.Sprintf("SELECT %s FROM rules WHERE rule_key = ?", ruleColumns)
	err := s.db.GetContext(ctx, &rule, s.db.Rebind(query), key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrRuleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query rule: %w", err)
	}
	return &rule, nil
}

// UpdateRule applies a partial edit and returns the canonical stored
// record. Callers replace their local copy with the returned row
// rather than patching individual fields, so stale copies never drift
// from truth.
func (s *Store) UpdateRule(ctx context.Context, key string, update RuleUpdate) (*types.Rule, error) {
	var sets []string
	var args []any

	if update.IsActive != nil {
		sets = append(sets, "is_active = ?")
		args = append(args, *update.IsActive)
	}
	if update.Severity != nil {
		if _, err := types.ParseSeverity(string(*update.Severity)); err != nil {
			return nil, err
		}
		sets = append(sets, "severity = ?")
		args = append(args, *update.Severity)
	}
	if update.Payload != nil {
		var check map[string]json.RawMessage
		if err := json.Unmarshal(update.Payload, &check); err != nil {
			return nil, fmt.Errorf("invalid rule payload: %w", err)
		}
		sets = append(sets, "payload = ?")
		args = append(args, []byte(update.Payload))
	}
	if len(sets) == 0 {
		return s.GetRuleByKey(ctx, key)
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, s.now(), key)

	query := fmt.Sprintf("UPDATE rules SET %s WHERE rule_key = ?", strings.Join(sets, ", "))
	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update rule: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, types.ErrRuleNotFound
	}

	return s.GetRuleByKey(ctx, key)
}

// BulkSyncRules recomputes every rule's activation from the catalog:
// rules owned by an active ruleset become active, all others inactive.
// Manual per-rule toggles are deliberately overwritten; sync restores
// the derived truth. Returns the number of rows whose flag changed.
func (s *Store) BulkSyncRules(ctx context.Context) (int64, error) {
	query := `UPDATE rules SET is_active = ?, updated_at = ?
		WHERE is_active != ?
		AND ruleset_id IN (SELECT id FROM rulesets WHERE status = ?)`

	now := s.now()
	var changed int64

	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), true, now, true, types.StatusActive)
	if err != nil {
		return 0, fmt.Errorf("failed to activate rules: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		changed += n
	}

	query = `UPDATE rules SET is_active = ?, updated_at = ?
		WHERE is_active != ?
		AND ruleset_id NOT IN (SELECT id FROM rulesets WHERE status = ?)`
	res, err = s.db.ExecContext(ctx, s.db.Rebind(query), false, now, false, types.StatusActive)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate rules: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		changed += n
	}

	return changed, nil
}
