package api

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lcgate/rulekeeper/internal/core/store"
	"github.com/lcgate/rulekeeper/internal/rulesets"
	"github.com/lcgate/rulekeeper/internal/types"
)

// ListRulesets handles GET /v1/rulesets.
func (s *Service) ListRulesets(c *gin.Context) {
	filter := store.RulesetFilter{
		Status:       c.Query("status"),
		Jurisdiction: c.Query("jurisdiction"),
		Domain:       c.Query("domain"),
		Rulebook:     c.Query("rulebook"),
		Search:       c.Query("search"),
		Page:         queryInt(c, "page", 1),
		PageSize:     queryInt(c, "pageSize", types.RulesetsPageSize),
	}

	page, err := s.store.ListRulesets(c.Request.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list rulesets", "error", err)
		respondError(c, err)
		return
	}

	respondOK(c, "", page)
}

// GetRuleset handles GET /v1/rulesets/:id.
func (s *Service) GetRuleset(c *gin.Context) {
	id, err := types.ParseRulesetID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid ruleset id"})
		return
	}

	rs, err := s.store.GetRuleset(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "", rs)
}

// UploadRuleset handles POST /v1/rulesets (multipart).
//
// Form fields: file, domain (primary domain value), rulebook (option
// value, stored as the ruleset's domain), jurisdiction,
// rulebook_version, ruleset_version, effective_from?, effective_to?,
// notes?. The document is re-validated server-side regardless of any
// client-side validation; a document with structural errors is
// rejected before anything is written.
func (s *Service) UploadRuleset(c *gin.Context) {
	domain := c.PostForm("domain")
	rulebook := c.PostForm("rulebook")
	jurisdiction := c.PostForm("jurisdiction")
	rulebookVersion := c.PostForm("rulebook_version")
	rulesetVersion := c.PostForm("ruleset_version")

	if domain == "" || rulebook == "" || rulebookVersion == "" || rulesetVersion == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false,
			"message": "domain, rulebook, rulebook_version and ruleset_version are required"})
		return
	}
	if types.DomainByValue(domain) == nil {
		respondError(c, types.ErrUnknownDomain)
		return
	}
	if !types.RulebookBelongsTo(domain, rulebook) {
		respondError(c, types.ErrRulebookMismatch)
		return
	}
	if err := rulesets.ValidateVersion(rulesetVersion); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	params := store.UploadParams{
		Domain:          rulebook,
		Jurisdiction:    jurisdiction,
		RulebookVersion: rulebookVersion,
		RulesetVersion:  rulesetVersion,
		Notes:           c.PostForm("notes"),
	}
	var err error
	if params.EffectiveFrom, err = formTime(c, "effective_from"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid effective_from timestamp"})
		return
	}
	if params.EffectiveTo, err = formTime(c, "effective_to"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid effective_to timestamp"})
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "file is required"})
		return
	}
	if fh.Size > s.cfg.MaxUploadSize {
		respondError(c, types.ErrUploadTooLarge)
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "failed to read uploaded file"})
		return
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "failed to read uploaded file"})
		return
	}
	if int64(len(raw)) > s.cfg.MaxUploadSize {
		respondError(c, types.ErrUploadTooLarge)
		return
	}

	report := rulesets.ValidateDocument(raw)
	if !report.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "ruleset document failed validation",
			"data":    report,
		})
		return
	}

	elements, err := rulesets.ParseDocument(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	rs, summary, err := s.store.ImportRuleset(c.Request.Context(), params, elements)
	if err != nil {
		if summary != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": err.Error(),
				"data":    gin.H{"summary": summary},
			})
			return
		}
		respondError(c, err)
		return
	}

	s.audit(c, types.ActionUploadRuleset, string(rs.ID), map[string]any{
		"domain":       rs.Domain,
		"jurisdiction": rs.Jurisdiction,
		"rule_count":   rs.RuleCount,
	})
	respondOK(c, "Ruleset uploaded", gin.H{"ruleset": rs, "summary": summary})
}

// PublishRuleset handles POST /v1/rulesets/:id/publish.
func (s *Service) PublishRuleset(c *gin.Context) {
	s.transition(c, types.ActionPublishRuleset, "Ruleset published", s.store.Publish)
}

// RollbackRuleset handles POST /v1/rulesets/:id/rollback.
func (s *Service) RollbackRuleset(c *gin.Context) {
	s.transition(c, types.ActionRollbackRuleset, "Ruleset rolled back", s.store.Rollback)
}

// ArchiveRuleset handles POST /v1/rulesets/:id/archive.
func (s *Service) ArchiveRuleset(c *gin.Context) {
	s.transition(c, types.ActionArchiveRuleset, "Ruleset archived", s.store.Archive)
}

// DeleteRuleset handles DELETE /v1/rulesets/:id. A soft delete
// archives the ruleset and deactivates its rules; ?hard=true removes
// the ruleset and its rules permanently.
func (s *Service) DeleteRuleset(c *gin.Context) {
	id, err := types.ParseRulesetID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid ruleset id"})
		return
	}

	hard := c.Query("hard") == "true"
	rs, err := s.store.Delete(c.Request.Context(), id, hard)
	if err != nil {
		respondError(c, err)
		return
	}

	s.audit(c, types.ActionDeleteRuleset, string(id), map[string]any{
		"domain":       rs.Domain,
		"jurisdiction": rs.Jurisdiction,
		"hard":         hard,
	})
	if hard {
		respondOK(c, "Ruleset deleted", nil)
		return
	}
	respondOK(c, "Ruleset archived and rules deactivated", rs)
}

// GetRulesetAudit handles GET /v1/rulesets/:id/audit.
func (s *Service) GetRulesetAudit(c *gin.Context) {
	id, err := types.ParseRulesetID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid ruleset id"})
		return
	}

	if _, err := s.store.GetRuleset(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	entries, err := s.store.ListAuditByEntity(c.Request.Context(), string(id))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "", gin.H{"items": entries, "total": len(entries)})
}

// transition runs a ruleset lifecycle transition and emits its audit
// entry on success.
func (s *Service) transition(c *gin.Context, action, message string,
	fn func(ctx context.Context, id types.RulesetID) (*types.Ruleset, error)) {
	id, err := types.ParseRulesetID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid ruleset id"})
		return
	}

	rs, err := fn(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	s.audit(c, action, string(id), map[string]any{
		"domain":       rs.Domain,
		"jurisdiction": rs.Jurisdiction,
	})
	respondOK(c, message, rs)
}

func formTime(c *gin.Context, name string) (*time.Time, error) {
	raw := c.PostForm(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		// Date-only form inputs are accepted too.
		t, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, err
		}
	}
	return &t, nil
}
