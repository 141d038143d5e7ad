package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/lcgate/rulekeeper/internal/types"
)

// RulesetFilter selects rulesets for listing. Zero values mean "all".
// Rulebook takes precedence over Domain: a specific rulebook matches
// exactly, otherwise a domain matches any of its rulebook option
// values or the domain value itself.
type RulesetFilter struct {
	Status       string
	Jurisdiction string
	Domain       string
	Rulebook     string
	Search       string
	Page         int
	PageSize     int
}

// RulesetPage is one page of a filtered ruleset listing. Page carries
// the effective (clamped) page number.
type RulesetPage struct {
	Items      []types.Ruleset `json:"items"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	TotalPages int             `json:"totalPages"`
}

const rulesetColumns = `id, domain, jurisdiction, rulebook_version, ruleset_version,
	status, rule_count, published_at, created_at, effective_from, effective_to, notes`

// GetRuleset fetches one ruleset by id.
func (s *Store) GetRuleset(ctx context.Context, id types.RulesetID) (*types.Ruleset, error) {
	var rs types.Ruleset
	query := fmt.Sprintf("SELECT %s FROM rulesets WHERE id = ?", rulesetColumns)
	err := s.db.GetContext(ctx, &rs, s.db.Rebind(query), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrRulesetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query ruleset: %w", err)
	}
	return &rs, nil
}

// ListRulesets returns a filtered, paginated page of rulesets ordered
// by publication time (creation time for never-published rows),
// newest first. The requested page is clamped into the valid range;
// an out-of-range page returns the last page rather than an empty one.
func (s *Store) ListRulesets(ctx context.Context, f RulesetFilter) (*RulesetPage, error) {
	if f.PageSize <= 0 {
		f.PageSize = types.RulesetsPageSize
	}

	where, args := buildRulesetWhere(f)

	countQuery := "SELECT COUNT(*) FROM rulesets" + where
	var total int
	if err := s.db.GetContext(ctx, &total, s.db.Rebind(countQuery), args...); err != nil {
		return nil, fmt.Errorf("failed to count rulesets: %w", err)
	}

	pages := totalPages(total, f.PageSize)
	page := clampPage(f.Page, pages)

	query := fmt.Sprintf(`SELECT %s FROM rulesets%s
		ORDER BY COALESCE(published_at, created_at) DESC, id DESC
		LIMIT ? OFFSET ?`, rulesetColumns, where)
	args = append(args, f.PageSize, (page-1)*f.PageSize)

	items := []types.Ruleset{}
	if err := s.db.SelectContext(ctx, &items, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query rulesets: %w", err)
	}

	return &RulesetPage{Items: items, Total: total, Page: page, TotalPages: pages}, nil
}

// buildRulesetWhere assembles the WHERE clause for a ruleset filter.
// Search matches case-insensitive substrings across version fields,
// domain, jurisdiction, and the display labels of known rulebooks.
func buildRulesetWhere(f RulesetFilter) (string, []any) {
	var conds []string
	var args []any

	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}
	if f.Jurisdiction != "" {
		conds = append(conds, "jurisdiction = ?")
		args = append(args, f.Jurisdiction)
	}
	if f.Rulebook != "" {
		conds = append(conds, "domain = ?")
		args = append(args, f.Rulebook)
	} else if f.Domain != "" {
		values := []string{f.Domain}
		if d := types.DomainByValue(f.Domain); d != nil {
			for _, rb := range d.Rulebooks {
				if rb.Value != f.Domain {
					values = append(values, rb.Value)
				}
			}
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")
		conds = append(conds, "domain IN ("+placeholders+")")
		for _, v := range values {
			args = append(args, v)
		}
	}
	if f.Search != "" {
		needle := "%" + strings.ToLower(f.Search) + "%"
		search := []string{
			"LOWER(rulebook_version) LIKE ?",
			"LOWER(ruleset_version) LIKE ?",
			"LOWER(domain) LIKE ?",
			"LOWER(jurisdiction) LIKE ?",
		}
		args = append(args, needle, needle, needle, needle)

		// Display labels live in code, not the database; resolve label
		// matches to their stored domain values up front.
		if matches := labelMatches(f.Search); len(matches) > 0 {
			placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(matches)), ", ")
			search = append(search, "domain IN ("+placeholders+")")
			for _, v := range matches {
				args = append(args, v)
			}
		}
		conds = append(conds, "("+strings.Join(search, " OR ")+")")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// labelMatches returns stored domain values whose rulebook or domain
// display label contains the needle, case-insensitively.
func labelMatches(search string) []string {
	needle := strings.ToLower(search)
	seen := map[string]bool{}
	var values []string
	for _, d := range types.Domains {
		if strings.Contains(strings.ToLower(d.Label), needle) && !seen[d.Value] {
			seen[d.Value] = true
			values = append(values, d.Value)
		}
		for _, rb := range d.Rulebooks {
			if strings.Contains(strings.ToLower(rb.Label), needle) && !seen[rb.Value] {
				seen[rb.Value] = true
				values = append(values, rb.Value)
			}
		}
	}
	return values
}

// Publish activates a draft ruleset. The previously active ruleset for
// the same (domain, jurisdiction) pair, if any, is archived in the
// same transaction, so callers observe exactly one active ruleset per
// pair at all times.
func (s *Store) Publish(ctx context.Context, id types.RulesetID) (*types.Ruleset, error) {
	return s.activate(ctx, id, types.StatusDraft)
}

// Rollback re-activates an archived ruleset. Identical post-condition
// to Publish: whatever was active for the pair becomes archived.
func (s *Store) Rollback(ctx context.Context, id types.RulesetID) (*types.Ruleset, error) {
	return s.activate(ctx, id, types.StatusArchived)
}

// activate performs the archive-previous-then-activate swap. from is
// the required current status of the target.
func (s *Store) activate(ctx context.Context, id types.RulesetID, from types.Status) (*types.Ruleset, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rs, err := getRulesetTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if rs.Status != from {
		return nil, fmt.Errorf("%w: %s ruleset cannot transition to active from here", types.ErrInvalidTransition, rs.Status)
	}

	now := s.now()

	// Archive the currently active ruleset for the pair, if any.
	archive := `UPDATE rulesets SET status = ? WHERE domain = ? AND jurisdiction = ? AND status = ?`
	if _, err := tx.ExecContext(ctx, tx.Rebind(archive),
		types.StatusArchived, rs.Domain, rs.Jurisdiction, types.StatusActive); err != nil {
		return nil, fmt.Errorf("failed to archive previous active ruleset: %w", err)
	}

	promote := `UPDATE rulesets SET status = ?, published_at = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, tx.Rebind(promote), types.StatusActive, now, rs.ID); err != nil {
		if isUniqueViolation(err, "uq_rulesets_single_active", "domain", "jurisdiction") {
			return nil, fmt.Errorf("%w: concurrent activation for %s/%s", types.ErrInvalidTransition, rs.Domain, rs.Jurisdiction)
		}
		return nil, fmt.Errorf("failed to activate ruleset: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit activation: %w", err)
	}

	rs.Status = types.StatusActive
	rs.PublishedAt = &now
	return rs, nil
}

// Archive moves any non-archived ruleset to archived.
func (s *Store) Archive(ctx context.Context, id types.RulesetID) (*types.Ruleset, error) {
	rs, err := s.GetRuleset(ctx, id)
	if err != nil {
		return nil, err
	}
	if rs.Status == types.StatusArchived {
		return nil, fmt.Errorf("%w: ruleset is already archived", types.ErrInvalidTransition)
	}

	query := `UPDATE rulesets SET status = ? WHERE id = ?`
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(query), types.StatusArchived, id); err != nil {
		return nil, fmt.Errorf("failed to archive ruleset: %w", err)
	}
	rs.Status = types.StatusArchived
	return rs, nil
}

// Delete removes a ruleset. Soft delete archives the ruleset and
// deactivates its rules; hard delete permanently removes the ruleset
// and every rule it owns.
func (s *Store) Delete(ctx context.Context, id types.RulesetID, hard bool) (*types.Ruleset, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rs, err := getRulesetTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if hard {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM rules WHERE ruleset_id = ?`), id); err != nil {
			return nil, fmt.Errorf("failed to delete rules: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM rulesets WHERE id = ?`), id); err != nil {
			return nil, fmt.Errorf("failed to delete ruleset: %w", err)
		}
	} else {
		now := s.now()
		deactivate := `UPDATE rules SET is_active = ?, updated_at = ? WHERE ruleset_id = ?`
		if _, err := tx.ExecContext(ctx, tx.Rebind(deactivate), false, now, id); err != nil {
			return nil, fmt.Errorf("failed to deactivate rules: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE rulesets SET status = ? WHERE id = ?`), types.StatusArchived, id); err != nil {
			return nil, fmt.Errorf("failed to archive ruleset: %w", err)
		}
		rs.Status = types.StatusArchived
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit delete: %w", err)
	}
	return rs, nil
}

func getRulesetTx(ctx context.Context, tx *sqlx.Tx, id types.RulesetID) (*types.Ruleset, error) {
	var rs types.Ruleset
	query := fmt.Sprintf("SELECT %s FROM rulesets WHERE id = ?", rulesetColumns)
	err := tx.GetContext(ctx, &rs, tx.Rebind(query), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrRulesetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query ruleset: %w", err)
	}
	return &rs, nil
}
