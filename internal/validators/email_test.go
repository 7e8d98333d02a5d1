package validators

import "testing"

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Nurse.Ward3@Hospital.ORG "); got != "nurse.ward3@hospital.org" {
		t.Errorf("NormalizeEmail() = %q", got)
	}
}

func TestIsEmailSyntaxValid(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"doctor@hospital.org", true},
		{"a.b+c@ward.hospital.vn", true},
		{"doctor@localhost", false},
		{"no-at-sign", false},
		{"Doctor <doctor@hospital.org>", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := IsEmailSyntaxValid(tt.email); got != tt.want {
				t.Errorf("IsEmailSyntaxValid(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}
