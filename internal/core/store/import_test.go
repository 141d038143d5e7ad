package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcgate/rulekeeper/internal/rulesets"
	"github.com/lcgate/rulekeeper/internal/types"
)

func TestImportRuleset(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rs, summary, err := s.ImportRuleset(ctx, uploadParams("1.0.0"), parseDoc(t, sampleDoc))
	require.NoError(t, err)

	assert.Equal(t, types.StatusDraft, rs.Status)
	assert.Equal(t, "icc.ucp600", rs.Domain)
	assert.Equal(t, "UCP600-2007", rs.RulebookVersion)
	assert.Equal(t, "1.0.0", rs.RulesetVersion)
	assert.Equal(t, 3, rs.RuleCount)
	assert.Nil(t, rs.PublishedAt)

	assert.Equal(t, 3, summary.TotalRules)
	assert.Equal(t, 3, summary.Inserted)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 0, summary.Skipped)
	// third element has no domain, jurisdiction or conditions
	assert.Len(t, summary.Warnings, 3)

	stored, err := s.GetRuleset(ctx, rs.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.RuleCount)
	assert.Equal(t, types.StatusDraft, stored.Status)

	// imported rules are active and carry the normalized severity
	rule, err := s.GetRuleByKey(ctx, "lc.ucp600.art14b")
	require.NoError(t, err)
	assert.True(t, rule.IsActive)
	assert.Equal(t, types.SeverityWarning, rule.Severity)
	assert.Equal(t, rs.ID, rule.RulesetID)
}

func TestImportRuleset_PayloadNormalization(t *testing.T) {
	s := newTestStore(t)

	rs, _, err := s.ImportRuleset(context.Background(), uploadParams("1.0.0"), parseDoc(t,
		`[{"rule_id": "lc.sparse", "severity": "info", "expected_outcome": "noted"}]`))
	require.NoError(t, err)
	require.Equal(t, 1, rs.RuleCount)

	rule, err := s.GetRuleByKey(context.Background(), "lc.sparse")
	require.NoError(t, err)

	var payload map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rule.Payload, &payload))
	assert.JSONEq(t, `"icc.ucp600"`, string(payload["domain"]))
	assert.JSONEq(t, `"global"`, string(payload["jurisdiction"]))
	assert.JSONEq(t, `[]`, string(payload["conditions"]))
	assert.Equal(t, "icc.ucp600", rule.Domain)
	assert.Equal(t, "global", rule.Jurisdiction)
}

func TestImportRuleset_DuplicateDraft(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	importSample(t, s, "1.0.0")

	_, _, err := s.ImportRuleset(ctx, uploadParams("1.0.0"), parseDoc(t, sampleDoc))
	assert.ErrorIs(t, err, types.ErrDuplicateDraft)

	// a different version is a different draft
	_, _, err = s.ImportRuleset(ctx, uploadParams("1.1.0"), parseDoc(t, sampleDoc))
	assert.NoError(t, err)
}

func TestImportRuleset_UpsertByBusinessKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	importSample(t, s, "1.0.0")

	second, summary, err := s.ImportRuleset(ctx, uploadParams("1.1.0"), parseDoc(t, sampleDoc))
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Inserted)
	assert.Equal(t, 3, summary.Updated)

	// existing business keys now belong to the newer draft
	rule, err := s.GetRuleByKey(ctx, "lc.ucp600.art14a")
	require.NoError(t, err)
	assert.Equal(t, second.ID, rule.RulesetID)

	page, err := s.ListRules(ctx, RuleFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
}

func TestImportRuleset_SkipsSchemaViolations(t *testing.T) {
	s := newTestStore(t)

	doc := `[
		{"rule_id": "lc.good", "severity": "fail", "expected_outcome": "rejected"},
		{"severity": "fail", "expected_outcome": "no rule_id"},
		{"rule_id": "lc.bad.severity", "severity": "critical", "expected_outcome": "x"}
	]`
	rs, summary, err := s.ImportRuleset(context.Background(), uploadParams("1.0.0"), parseDoc(t, doc))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, 2, summary.Skipped)
	assert.Len(t, summary.Errors, 2)
	assert.Equal(t, 1, rs.RuleCount)
}

func TestImportRuleset_AllSkippedRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := `[{"severity": "fail"}, {"rule_id": ""}]`
	rs, summary, err := s.ImportRuleset(ctx, uploadParams("1.0.0"), parseDoc(t, doc))
	require.Error(t, err)
	assert.Nil(t, rs)
	require.NotNil(t, summary)
	assert.Equal(t, 2, summary.Skipped)

	// nothing was persisted
	page, err := s.ListRulesets(ctx, RulesetFilter{})
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
	assert.Equal(t, 1, page.TotalPages)
}

func TestImportRuleset_TooManyRules(t *testing.T) {
	s := newTestStore(t)

	elements := make([]rulesets.RawRule, types.MaxRulesPerUpload+1)
	_, _, err := s.ImportRuleset(context.Background(), uploadParams("1.0.0"), elements)
	assert.ErrorIs(t, err, types.ErrTooManyRules)
}
