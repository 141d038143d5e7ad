package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lcgate/rulekeeper/internal/core/auth"
	"github.com/lcgate/rulekeeper/internal/core/store"
	"github.com/lcgate/rulekeeper/internal/types"
)

// ListRules handles GET /v1/rules.
// All filters are applied server-side; the isActive filter is
// tri-state ("true", "false", "all") and defaults to active rules.
func (s *Service) ListRules(c *gin.Context) {
	filter := store.RuleFilter{
		Search:       c.Query("search"),
		Domain:       c.Query("domain"),
		DocumentType: c.Query("documentType"),
		Severity:     c.Query("severity"),
		Page:         queryInt(c, "page", 1),
		PageSize:     queryInt(c, "pageSize", types.RulesPageSize),
	}

	switch c.DefaultQuery("isActive", "true") {
	case "all":
	case "false":
		active := false
		filter.Active = &active
	default:
		active := true
		filter.Active = &active
	}

	page, err := s.store.ListRules(c.Request.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list rules", "error", err)
		respondError(c, err)
		return
	}

	respondOK(c, "", page)
}

type ruleUpdateRequest struct {
	IsActive *bool           `json:"isActive"`
	Severity *string         `json:"severity"`
	Payload  json.RawMessage `json:"payload"`
}

// UpdateRule handles PATCH /v1/rules/:ruleId.
// Accepts a partial edit and returns the canonical stored record.
func (s *Service) UpdateRule(c *gin.Context) {
	ruleID := c.Param("ruleId")

	var req ruleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}
	if req.IsActive == nil && req.Severity == nil && req.Payload == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "no fields to update"})
		return
	}

	update := store.RuleUpdate{
		IsActive: req.IsActive,
		Payload:  req.Payload,
	}
	if req.Severity != nil {
		sev, err := types.ParseSeverity(*req.Severity)
		if err != nil {
			respondError(c, err)
			return
		}
		update.Severity = &sev
	}

	rule, err := s.store.UpdateRule(c.Request.Context(), ruleID, update)
	if err != nil {
		respondError(c, err)
		return
	}

	s.audit(c, types.ActionUpdateRule, ruleID, map[string]any{
		"domain":       rule.Domain,
		"jurisdiction": rule.Jurisdiction,
	})
	respondOK(c, "Rule updated", rule)
}

// SyncRules handles POST /v1/rules/sync.
// Recomputes rule activation from ruleset status: rules in active
// rulesets become active, all others inactive.
func (s *Service) SyncRules(c *gin.Context) {
	changed, err := s.store.BulkSyncRules(c.Request.Context())
	if err != nil {
		s.logger.Error("bulk sync failed", "error", err)
		respondError(c, err)
		return
	}

	s.audit(c, types.ActionBulkSyncRules, "", map[string]any{"changed": changed})
	respondOK(c, fmt.Sprintf("Synced %d rules", changed), gin.H{"changed": changed})
}

// audit appends an audit entry for a completed mutation. Audit
// failures are logged but never fail the request that already
// committed.
func (s *Service) audit(c *gin.Context, action, entityID string, metadata map[string]any) {
	actor := auth.ActorFromContext(c)
	if err := s.store.AppendAudit(c.Request.Context(), action, entityID, metadata, actor); err != nil {
		s.logger.Error("failed to append audit entry", "action", action, "error", err)
	}
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
