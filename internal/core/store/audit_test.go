package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcgate/rulekeeper/internal/types"
)

func TestAuditTrail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rs := importSample(t, s, "1.0.0")
	entity := string(rs.ID)

	require.NoError(t, s.AppendAudit(ctx, types.ActionUploadRuleset, entity,
		map[string]any{"domain": "icc.ucp600", "jurisdiction": "global", "rule_count": 3}, "alice"))
	require.NoError(t, s.AppendAudit(ctx, types.ActionPublishRuleset, entity,
		map[string]any{"domain": "icc.ucp600", "jurisdiction": "global"}, "bob"))
	require.NoError(t, s.AppendAudit(ctx, types.ActionBulkSyncRules, "", nil, "alice"))

	entries, err := s.ListAuditByEntity(ctx, entity)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// newest first
	assert.Equal(t, types.ActionPublishRuleset, entries[0].Action)
	assert.Equal(t, "bob", entries[0].Actor)
	assert.Equal(t, types.ActionUploadRuleset, entries[1].Action)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(entries[1].Metadata, &meta))
	assert.Equal(t, "icc.ucp600", meta["domain"])
	assert.EqualValues(t, 3, meta["rule_count"])

	count, err := s.CountAuditByEntity(ctx, entity)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	none, err := s.ListAuditByEntity(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, none)
}
