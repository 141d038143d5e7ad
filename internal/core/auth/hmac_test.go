package auth

import (
	"strings"
	"testing"
)

func TestParseAPIKey(t *testing.T) {
	validSecretID := strings.Repeat("0123456789abcdef", 2)
	validRandom := strings.Repeat("0123456789abcdef", 4)

	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"valid key", FormatAPIKey(validSecretID, validRandom), false},
		{"wrong prefix", "tk-v1-" + validSecretID + "-" + validRandom, true},
		{"wrong version", "rk-v2-" + validSecretID + "-" + validRandom, true},
		{"short secret_id", "rk-v1-abc-" + validRandom, true},
		{"short random_data", "rk-v1-" + validSecretID + "-abc", true},
		{"uppercase hex rejected", "rk-v1-" + strings.ToUpper(validSecretID) + "-" + validRandom, true},
		{"empty", "", true},
		{"garbage", "not-a-key", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			secretID, randomData, err := ParseAPIKey(tt.key)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAPIKey(%q) error = nil, want error", tt.key)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAPIKey(%q) error = %v, want nil", tt.key, err)
			}
			if secretID != validSecretID {
				t.Errorf("secretID = %q, want %q", secretID, validSecretID)
			}
			if randomData != validRandom {
				t.Errorf("randomData = %q, want %q", randomData, validRandom)
			}
		})
	}
}

func TestComputeHMAC(t *testing.T) {
	secret := []byte(strings.Repeat("s", 32))
	key := FormatAPIKey(strings.Repeat("ab", 16), strings.Repeat("cd", 32))

	h1 := ComputeHMAC(secret, key)
	h2 := ComputeHMAC(secret, key)
	if !VerifyHMAC(h1, h2) {
		t.Error("identical inputs must produce identical HMACs")
	}

	h3 := ComputeHMAC([]byte(strings.Repeat("x", 32)), key)
	if VerifyHMAC(h1, h3) {
		t.Error("different secrets must produce different HMACs")
	}
}
