package rulesets

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// ValidateVersion checks a ruleset version is a strict X.Y.Z semantic
// version. Loose forms ("1.0", "v1.0.0") are rejected; the catalog
// stores exactly what the filename convention carries.
func ValidateVersion(v string) error {
	if _, err := semver.StrictNewVersion(v); err != nil {
		return fmt.Errorf("invalid ruleset version %q: %w", v, err)
	}
	return nil
}

// CompareVersions orders two valid ruleset versions: -1 when a < b,
// 0 when equal, +1 when a > b. Invalid versions compare as equal;
// callers validate before storing.
func CompareVersions(a, b string) int {
	va, errA := semver.StrictNewVersion(a)
	vb, errB := semver.StrictNewVersion(b)
	if errA != nil || errB != nil {
		return 0
	}
	return va.Compare(vb)
}
