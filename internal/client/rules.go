package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/lcgate/rulekeeper/internal/types"
)

// RuleFilter selects rules for listing. Active is tri-state: nil
// requests the server default (active rules only); use All to list
// regardless of activation.
type RuleFilter struct {
	Search       string
	Domain       string
	DocumentType string
	Severity     string
	Active       *bool
	All          bool
	Page         int
	PageSize     int
}

// RulePage is one page of a rule listing.
type RulePage struct {
	Items      []types.Rule `json:"items"`
	Total      int          `json:"total"`
	Page       int          `json:"page"`
	TotalPages int          `json:"totalPages"`
}

// ListRules fetches a filtered page of rules.
func (c *Client) ListRules(ctx context.Context, f RuleFilter) (*RulePage, error) {
	q := url.Values{}
	setNonEmpty(q, "search", f.Search)
	setNonEmpty(q, "domain", f.Domain)
	setNonEmpty(q, "documentType", f.DocumentType)
	setNonEmpty(q, "severity", f.Severity)
	if f.All {
		q.Set("isActive", "all")
	} else if f.Active != nil {
		q.Set("isActive", strconv.FormatBool(*f.Active))
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(f.PageSize))
	}

	var page RulePage
	if _, err := c.doJSON(ctx, http.MethodGet, "/v1/rules", q, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// RuleUpdate is a partial rule edit. Nil fields are left untouched.
type RuleUpdate struct {
	IsActive *bool           `json:"isActive,omitempty"`
	Severity *string         `json:"severity,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// UpdateRule applies a partial edit and returns the canonical stored
// record, which callers should use to replace any cached copy.
func (c *Client) UpdateRule(ctx context.Context, ruleID string, update RuleUpdate) (*types.Rule, error) {
	var rule types.Rule
	if _, err := c.doJSON(ctx, http.MethodPatch, "/v1/rules/"+url.PathEscape(ruleID), nil, update, &rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

// BulkSyncRules recomputes rule activation from ruleset status and
// returns the number of rules changed.
func (c *Client) BulkSyncRules(ctx context.Context) (int64, error) {
	var result struct {
		Changed int64 `json:"changed"`
	}
	if _, err := c.doJSON(ctx, http.MethodPost, "/v1/rules/sync", nil, nil, &result); err != nil {
		return 0, err
	}
	return result.Changed, nil
}

func setNonEmpty(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
