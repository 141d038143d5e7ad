package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lcgate/rulekeeper/internal/types"
)

// AppendAudit records one governance action in the append-only trail.
// Metadata may be nil. Audit failures are returned, not swallowed;
// callers decide whether a mutation without its audit entry is
// acceptable (it is not, for this catalog).
func (s *Store) AppendAudit(ctx context.Context, action, entityID string, metadata map[string]any, actor string) error {
	meta := []byte("{}")
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal audit metadata: %w", err)
		}
		meta = raw
	}

	_, err := s.queries.Exec("insert-audit-entry",
		types.NewAuditID(), action, entityID, meta, actor, s.now())
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// ListAuditByEntity returns the audit trail for one entity, newest first.
func (s *Store) ListAuditByEntity(ctx context.Context, entityID string) ([]types.AuditEntry, error) {
	entries := []types.AuditEntry{}
	if err := s.queries.Select("list-audit-by-entity", &entries, entityID); err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	return entries, nil
}

// CountAuditByEntity returns the number of audit entries for one entity.
func (s *Store) CountAuditByEntity(ctx context.Context, entityID string) (int, error) {
	var count int
	if err := s.queries.Get("count-audit-by-entity", &count, entityID); err != nil {
		return 0, fmt.Errorf("failed to count audit entries: %w", err)
	}
	return count, nil
}
