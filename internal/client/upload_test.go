package client

import (
	"errors"
	"testing"

	"github.com/lcgate/rulekeeper/internal/types"
)

func validForm() *UploadForm {
	f := &UploadForm{Jurisdiction: "global"}
	f.SetFile("icc.ucp600-UCP600-2007-v1.0.0.json",
		[]byte(`[{"rule_id": "lc.1", "severity": "fail", "expected_outcome": "rejected"}]`))
	return f
}

func TestSetFileAutoDetection(t *testing.T) {
	f := validForm()

	if f.Domain != "icc.ucp600" {
		t.Errorf("Domain = %q, want icc.ucp600", f.Domain)
	}
	if f.Rulebook != "icc.ucp600" {
		t.Errorf("Rulebook = %q, want icc.ucp600", f.Rulebook)
	}
	if f.RulebookVersion != "UCP600-2007" {
		t.Errorf("RulebookVersion = %q, want UCP600-2007", f.RulebookVersion)
	}
	if f.RulesetVersion != "1.0.0" {
		t.Errorf("RulesetVersion = %q, want 1.0.0", f.RulesetVersion)
	}
}

func TestSetFileNonMatchingNameIsNotAnError(t *testing.T) {
	var f UploadForm
	f.SetFile("notes.json", []byte(`[]`))

	if f.Domain != "" || f.RulebookVersion != "" || f.RulesetVersion != "" {
		t.Errorf("non-matching name must leave fields for manual entry, got %+v", f)
	}
}

// Guards short-circuit in a fixed order: the first violation is the
// one reported.
func TestCheckGuards_Order(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*UploadForm)
		wantErr error
	}{
		{"no file", func(f *UploadForm) { f.Document = nil }, ErrNoFileSelected},
		{"wrong extension", func(f *UploadForm) { f.Filename = "rules.yaml" }, ErrNotJSONFile},
		{"no domain", func(f *UploadForm) { f.Domain = "" }, ErrNoDomainSelected},
		{"no rulebook version", func(f *UploadForm) { f.RulebookVersion = "" }, ErrNoRulebookVersion},
		{"no rulebook", func(f *UploadForm) { f.Rulebook = "" }, ErrNoRulebookSelected},
		{"not JSON", func(f *UploadForm) { f.Document = []byte(`{broken`) }, ErrFileNotJSON},
		{"not an array", func(f *UploadForm) { f.Document = []byte(`{}`) }, ErrFileNotArray},
		{"empty array", func(f *UploadForm) { f.Document = []byte(`[]`) }, ErrFileNotArray},
		{"mismatched rulebook", func(f *UploadForm) { f.Rulebook = "vat.bd" }, types.ErrRulebookMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.mutate(f)
			err := f.CheckGuards(nil)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CheckGuards() = %v, want %v", err, tt.wantErr)
			}
		})
	}

	// a fully valid form passes
	if err := validForm().CheckGuards(nil); err != nil {
		t.Errorf("CheckGuards() = %v, want nil", err)
	}
}

// Missing-file violations outrank extension violations; the guard
// order is part of the contract.
func TestCheckGuards_FirstViolationWins(t *testing.T) {
	f := validForm()
	f.Document = nil
	f.Filename = "rules.yaml"
	f.Domain = ""

	if err := f.CheckGuards(nil); !errors.Is(err, ErrNoFileSelected) {
		t.Errorf("CheckGuards() = %v, want ErrNoFileSelected first", err)
	}
}

func TestCheckGuards_DuplicateDraftSnapshot(t *testing.T) {
	f := validForm()
	snapshot := []types.Ruleset{
		{Domain: "icc.ucp600", RulebookVersion: "UCP600-2007", RulesetVersion: "1.0.0", Status: types.StatusDraft},
	}

	if err := f.CheckGuards(snapshot); !errors.Is(err, ErrDraftExists) {
		t.Errorf("CheckGuards() = %v, want ErrDraftExists", err)
	}

	// non-draft statuses don't block
	snapshot[0].Status = types.StatusArchived
	if err := f.CheckGuards(snapshot); err != nil {
		t.Errorf("CheckGuards() = %v, want nil for archived duplicate", err)
	}

	// different version doesn't block
	snapshot[0].Status = types.StatusDraft
	snapshot[0].RulesetVersion = "1.0.1"
	if err := f.CheckGuards(snapshot); err != nil {
		t.Errorf("CheckGuards() = %v, want nil for different version", err)
	}
}

func TestCheckGuards_FailedValidationBlocksUntilRevalidated(t *testing.T) {
	f := validForm()
	f.Document = []byte(`[{"severity": "fail"}]`)

	report := f.Validate()
	if report.Valid() {
		t.Fatal("document without rule_id must be invalid")
	}
	if err := f.CheckGuards(nil); !errors.Is(err, ErrValidationPending) {
		t.Errorf("CheckGuards() = %v, want ErrValidationPending", err)
	}

	// replacing the file stales the old report instead of blocking
	f.SetFile("icc.ucp600-UCP600-2007-v1.0.0.json",
		[]byte(`[{"rule_id": "lc.1", "severity": "fail", "expected_outcome": "rejected"}]`))
	if err := f.CheckGuards(nil); err != nil {
		t.Errorf("CheckGuards() = %v, want nil after stale report", err)
	}

	// re-validating the good document clears the block entirely
	if report := f.Validate(); !report.Valid() {
		t.Fatalf("unexpected errors: %v", report.Errors)
	}
	if err := f.CheckGuards(nil); err != nil {
		t.Errorf("CheckGuards() = %v, want nil after revalidation", err)
	}
}

func TestResetClearsEverything(t *testing.T) {
	f := validForm()
	f.Notes = "initial load"
	f.Validate()

	f.Reset()
	if f.Filename != "" || f.Document != nil || f.Domain != "" || f.report != nil {
		t.Errorf("Reset left state behind: %+v", f)
	}
}
