package client

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/lcgate/rulekeeper/internal/types"
)

// RulesetFilter selects rulesets for listing.
type RulesetFilter struct {
	Status       string
	Jurisdiction string
	Domain       string
	Rulebook     string
	Search       string
	Page         int
	PageSize     int
}

// RulesetPage is one page of a ruleset listing.
type RulesetPage struct {
	Items      []types.Ruleset `json:"items"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	TotalPages int             `json:"totalPages"`
}

// UploadRequest carries one ruleset document and its metadata.
// Rulebook is the stored domain value; Domain is its parent primary
// domain used for the server-side cross-check.
type UploadRequest struct {
	Filename        string
	Document        []byte
	Domain          string
	Rulebook        string
	Jurisdiction    string
	RulebookVersion string
	RulesetVersion  string
	EffectiveFrom   *time.Time
	EffectiveTo     *time.Time
	Notes           string
}

// UploadResult is the server's response to a successful upload.
type UploadResult struct {
	Ruleset *types.Ruleset       `json:"ruleset"`
	Summary *types.ImportSummary `json:"summary"`
}

// ListRulesets fetches a filtered page of rulesets.
func (c *Client) ListRulesets(ctx context.Context, f RulesetFilter) (*RulesetPage, error) {
	q := url.Values{}
	setNonEmpty(q, "status", f.Status)
	setNonEmpty(q, "jurisdiction", f.Jurisdiction)
	setNonEmpty(q, "domain", f.Domain)
	setNonEmpty(q, "rulebook", f.Rulebook)
	setNonEmpty(q, "search", f.Search)
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(f.PageSize))
	}

	var page RulesetPage
	if _, err := c.doJSON(ctx, http.MethodGet, "/v1/rulesets", q, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetRuleset fetches one ruleset by id.
func (c *Client) GetRuleset(ctx context.Context, id types.RulesetID) (*types.Ruleset, error) {
	var rs types.Ruleset
	if _, err := c.doJSON(ctx, http.MethodGet, "/v1/rulesets/"+url.PathEscape(string(id)), nil, nil, &rs); err != nil {
		return nil, err
	}
	return &rs, nil
}

// UploadRuleset submits a ruleset document as multipart form data.
// Callers should run ValidateUpload first; the server re-validates
// regardless.
func (c *Client) UploadRuleset(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"domain":           req.Domain,
		"rulebook":         req.Rulebook,
		"jurisdiction":     req.Jurisdiction,
		"rulebook_version": req.RulebookVersion,
		"ruleset_version":  req.RulesetVersion,
		"notes":            req.Notes,
	}
	if req.EffectiveFrom != nil {
		fields["effective_from"] = req.EffectiveFrom.Format(time.RFC3339)
	}
	if req.EffectiveTo != nil {
		fields["effective_to"] = req.EffectiveTo.Format(time.RFC3339)
	}
	for name, value := range fields {
		if value == "" {
			continue
		}
		if err := w.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to encode form field %s: %w", name, err)
		}
	}

	part, err := w.CreateFormFile("file", req.Filename)
	if err != nil {
		return nil, fmt.Errorf("failed to encode form file: %w", err)
	}
	if _, err := part.Write(req.Document); err != nil {
		return nil, fmt.Errorf("failed to encode form file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	var result UploadResult
	if _, err := c.do(ctx, http.MethodPost, "/v1/rulesets", nil, &buf, w.FormDataContentType(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PublishRuleset promotes a draft to active, archiving any previously
// active ruleset for the same domain and jurisdiction.
func (c *Client) PublishRuleset(ctx context.Context, id types.RulesetID) (*types.Ruleset, error) {
	return c.postTransition(ctx, id, "publish")
}

// RollbackRuleset re-activates an archived ruleset.
func (c *Client) RollbackRuleset(ctx context.Context, id types.RulesetID) (*types.Ruleset, error) {
	return c.postTransition(ctx, id, "rollback")
}

// ArchiveRuleset archives a non-archived ruleset.
func (c *Client) ArchiveRuleset(ctx context.Context, id types.RulesetID) (*types.Ruleset, error) {
	return c.postTransition(ctx, id, "archive")
}

// DeleteRuleset deletes a ruleset. A soft delete archives it and
// deactivates its rules; hard permanently removes ruleset and rules.
func (c *Client) DeleteRuleset(ctx context.Context, id types.RulesetID, hard bool) error {
	q := url.Values{}
	if hard {
		q.Set("hard", "true")
	}
	_, err := c.doJSON(ctx, http.MethodDelete, "/v1/rulesets/"+url.PathEscape(string(id)), q, nil, nil)
	return err
}

// AuditPage is the audit trail for one ruleset.
type AuditPage struct {
	Items []types.AuditEntry `json:"items"`
	Total int                `json:"total"`
}

// GetRulesetAudit fetches the audit trail for one ruleset, newest
// first.
func (c *Client) GetRulesetAudit(ctx context.Context, id types.RulesetID) (*AuditPage, error) {
	var page AuditPage
	if _, err := c.doJSON(ctx, http.MethodGet, "/v1/rulesets/"+url.PathEscape(string(id))+"/audit", nil, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) postTransition(ctx context.Context, id types.RulesetID, action string) (*types.Ruleset, error) {
	var rs types.Ruleset
	path := "/v1/rulesets/" + url.PathEscape(string(id)) + "/" + action
	if _, err := c.doJSON(ctx, http.MethodPost, path, nil, nil, &rs); err != nil {
		return nil, err
	}
	return &rs, nil
}
