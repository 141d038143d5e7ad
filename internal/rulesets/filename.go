// Package rulesets implements ruleset document handling: filename
// metadata auto-detection, structural validation of uploaded rule
// documents, and semantic-version checks.
package rulesets

import (
	"path"
	"regexp"
	"strings"
)

// FilenameMeta holds metadata auto-detected from an upload filename.
type FilenameMeta struct {
	Domain          string
	RulebookVersion string
	RulesetVersion  string
}

// versionSuffix matches the trailing version segment, e.g. "v1.0.0".
var versionSuffix = regexp.MustCompile(`^v(\d+\.\d+\.\d+)$`)

// ParseFilename detects upload metadata from filenames of the form
// {domain}-{rulebook_version}-v{X.Y.Z}.json. The first hyphen-separated
// segment is the domain, the last must be the version, and everything
// between (re-joined with hyphens, since rulebook names like
// "UCP600-2007" contain them) is the rulebook version.
//
// Returns nil when the pattern does not match. Detection failure is
// non-fatal: callers fall back to manual entry.
func ParseFilename(name string) *FilenameMeta {
	base := path.Base(name)
	if !strings.HasSuffix(base, ".json") {
		return nil
	}
	base = strings.TrimSuffix(base, ".json")

	parts := strings.Split(base, "-")
	if len(parts) < 3 {
		return nil
	}

	m := versionSuffix.FindStringSubmatch(parts[len(parts)-1])
	if m == nil {
		return nil
	}

	domain := parts[0]
	rulebook := strings.Join(parts[1:len(parts)-1], "-")
	if domain == "" || rulebook == "" {
		return nil
	}

	return &FilenameMeta{
		Domain:          domain,
		RulebookVersion: rulebook,
		RulesetVersion:  m[1],
	}
}
