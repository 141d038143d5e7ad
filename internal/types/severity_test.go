package types

import (
	"errors"
	"testing"
)

func TestParseSeverity(t *testing.T) {
	for _, valid := range []string{"info", "warning", "fail", "risk"} {
		sev, err := ParseSeverity(valid)
		if err != nil {
			t.Errorf("ParseSeverity(%q) error = %v", valid, err)
		}
		if string(sev) != valid {
			t.Errorf("ParseSeverity(%q) = %q", valid, sev)
		}
	}

	for _, invalid := range []string{"warn", "critical", "WARNING", ""} {
		if _, err := ParseSeverity(invalid); !errors.Is(err, ErrUnknownSeverity) {
			t.Errorf("ParseSeverity(%q) error = %v, want ErrUnknownSeverity", invalid, err)
		}
	}
}

func TestNormalizeImportSeverity(t *testing.T) {
	tests := []struct {
		in      string
		want    Severity
		wantErr bool
	}{
		{"fail", SeverityFail, false},
		{"warn", SeverityWarning, false},
		{"info", SeverityInfo, false},
		// canonical and governance-only literals are not import literals
		{"warning", "", true},
		{"risk", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := NormalizeImportSeverity(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownSeverity) {
				t.Errorf("NormalizeImportSeverity(%q) error = %v, want ErrUnknownSeverity", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizeImportSeverity(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeImportSeverity(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"draft", "scheduled", "active", "archived"} {
		status, err := ParseStatus(valid)
		if err != nil {
			t.Errorf("ParseStatus(%q) error = %v", valid, err)
		}
		if string(status) != valid {
			t.Errorf("ParseStatus(%q) = %q", valid, status)
		}
	}

	if _, err := ParseStatus("published"); !errors.Is(err, ErrUnknownStatus) {
		t.Errorf("ParseStatus(published) error = %v, want ErrUnknownStatus", err)
	}
}
