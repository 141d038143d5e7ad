package rulesets

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestParseFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     *FilenameMeta
	}{
		{
			name:     "multi-segment rulebook version",
			filename: "icc.ucp600-UCP600-2007-v1.0.0.json",
			want: &FilenameMeta{
				Domain:          "icc.ucp600",
				RulebookVersion: "UCP600-2007",
				RulesetVersion:  "1.0.0",
			},
		},
		{
			name:     "single-segment rulebook version",
			filename: "sanctions.ofac-SDN2024-v2.1.3.json",
			want: &FilenameMeta{
				Domain:          "sanctions.ofac",
				RulebookVersion: "SDN2024",
				RulesetVersion:  "2.1.3",
			},
		},
		{
			name:     "no version suffix",
			filename: "icc.ucp600-UCP600-2007.json",
			want:     nil,
		},
		{
			name:     "version not last segment",
			filename: "icc.ucp600-v1.0.0-UCP600.json",
			want:     nil,
		},
		{
			name:     "partial semver",
			filename: "icc.ucp600-UCP600-v1.0.json",
			want:     nil,
		},
		{
			name:     "too few segments",
			filename: "icc.ucp600-v1.0.0.json",
			want:     nil,
		},
		{
			name:     "not a json file",
			filename: "icc.ucp600-UCP600-v1.0.0.txt",
			want:     nil,
		},
		{
			name:     "empty string",
			filename: "",
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseFilename(tt.filename)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("ParseFilename(%q) = %+v, want nil", tt.filename, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("ParseFilename(%q) = nil, want %+v", tt.filename, tt.want)
			}
			if *got != *tt.want {
				t.Errorf("ParseFilename(%q) = %+v, want %+v", tt.filename, got, tt.want)
			}
		})
	}
}

// Property-based test: well-formed names always round-trip
func TestParseFilename_PropertyRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	segment := gen.RegexMatch(`[a-z][a-z0-9.]{0,8}`)

	properties.Property("constructed names parse back to their parts", prop.ForAll(
		func(domain, rulebook string, major, minor, patch uint8) bool {
			version := fmt.Sprintf("%d.%d.%d", major, minor, patch)
			name := fmt.Sprintf("%s-%s-v%s.json", domain, rulebook, version)

			meta := ParseFilename(name)
			if meta == nil {
				return false
			}
			return meta.Domain == domain &&
				meta.RulebookVersion == rulebook &&
				meta.RulesetVersion == version
		},
		segment, segment, gen.UInt8(), gen.UInt8(), gen.UInt8(),
	))

	properties.Property("parsing never panics on arbitrary input", prop.ForAll(
		func(name string) bool {
			defer func() { recover() }()
			ParseFilename(name)
			return true
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
