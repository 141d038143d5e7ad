package client

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/lcgate/rulekeeper/internal/rulesets"
	"github.com/lcgate/rulekeeper/internal/types"
)

// Guard errors, one distinct message per pre-submission check.
var (
	ErrNoFileSelected     = errors.New("please select a ruleset file")
	ErrNotJSONFile        = errors.New("ruleset file must be a .json file")
	ErrNoDomainSelected   = errors.New("please select a domain")
	ErrNoRulebookVersion  = errors.New("rulebook version is required")
	ErrNoRulebookSelected = errors.New("please select a rulebook")
	ErrDraftExists        = errors.New("draft already exists for this domain, rulebook and version")
	ErrFileNotJSON        = errors.New("ruleset file is not valid JSON")
	ErrFileNotArray       = errors.New("ruleset must be a non-empty array of rules")
	ErrValidationPending  = errors.New("ruleset failed validation; re-validate before submitting")
)

// UploadForm accumulates an upload's file and metadata and runs the
// pre-submission guard sequence. The duplicate-draft guard checks a
// pre-fetched snapshot as a convenience only; the server enforces the
// constraint authoritatively.
type UploadForm struct {
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

	report      *rulesets.ValidationReport
	reportStale bool
}

// SetFile attaches the document and auto-detects domain, rulebook
// version and ruleset version from the filename when it matches the
// `{domain}-{rulebook_version}-v{X.Y.Z}.json` convention. A
// non-matching name leaves the fields for manual entry; it is never
// an error. Any previous validation result becomes stale.
func (f *UploadForm) SetFile(name string, document []byte) {
	f.Filename = name
	f.Document = document
	f.reportStale = true

	meta := rulesets.ParseFilename(name)
	if meta == nil {
		return
	}
	f.Rulebook = meta.Domain
	f.Domain = types.DomainOfRulebook(meta.Domain)
	f.RulebookVersion = meta.RulebookVersion
	f.RulesetVersion = meta.RulesetVersion
}

// Validate runs the structural document validation and records the
// result for the guard sequence.
func (f *UploadForm) Validate() *rulesets.ValidationReport {
	f.report = rulesets.ValidateDocument(f.Document)
	f.reportStale = false
	return f.report
}

// CheckGuards runs the pre-submission guards in order and returns the
// first violation. snapshot is the pre-fetched ruleset listing used
// for the duplicate-draft convenience check.
func (f *UploadForm) CheckGuards(snapshot []types.Ruleset) error {
	if len(f.Document) == 0 {
		return ErrNoFileSelected
	}
	if !strings.HasSuffix(strings.ToLower(f.Filename), ".json") {
		return ErrNotJSONFile
	}
	if f.Domain == "" {
		return ErrNoDomainSelected
	}
	if f.RulebookVersion == "" {
		return ErrNoRulebookVersion
	}
	if f.Rulebook == "" {
		return ErrNoRulebookSelected
	}
	for _, rs := range snapshot {
		if rs.Status == types.StatusDraft &&
			rs.Domain == f.Rulebook &&
			rs.RulebookVersion == f.RulebookVersion &&
			rs.RulesetVersion == f.RulesetVersion {
			return ErrDraftExists
		}
	}
	var parsed any
	if err := json.Unmarshal(f.Document, &parsed); err != nil {
		return ErrFileNotJSON
	}
	arr, ok := parsed.([]any)
	if !ok || len(arr) == 0 {
		return ErrFileNotArray
	}
	if f.report != nil && !f.reportStale && !f.report.Valid() {
		return ErrValidationPending
	}
	if !types.RulebookBelongsTo(f.Domain, f.Rulebook) {
		return types.ErrRulebookMismatch
	}
	return nil
}

// Request builds the upload request for a form that passed its
// guards.
func (f *UploadForm) Request() UploadRequest {
	return UploadRequest{
		Filename:        f.Filename,
		Document:        f.Document,
		Domain:          f.Domain,
		Rulebook:        f.Rulebook,
		Jurisdiction:    f.Jurisdiction,
		RulebookVersion: f.RulebookVersion,
		RulesetVersion:  f.RulesetVersion,
		EffectiveFrom:   f.EffectiveFrom,
		EffectiveTo:     f.EffectiveTo,
		Notes:           f.Notes,
	}
}

// Reset clears the form back to defaults after a successful upload.
func (f *UploadForm) Reset() {
	*f = UploadForm{}
}

// FetchSnapshot pre-fetches the ruleset snapshot used by the
// duplicate-draft guard, capped at the snapshot limit.
func FetchSnapshot(ctx context.Context, c *Client) ([]types.Ruleset, error) {
	page, err := c.ListRulesets(ctx, RulesetFilter{PageSize: types.SnapshotLimit})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}
