package domain

import "testing"

func TestIsBookableCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"P-1", true},
		{"P-2", true},
		{"P-3", false},
		{"P-8", false},
		{"A1", true},
		{"B-02", true},
		{"P-12", false},
		{"P-21", false},
		{"", false},
		{"north-wing", false},
	}

	for _, tt := range tests {
		if got := IsBookableCode(tt.code); got != tt.want {
			t.Errorf("IsBookableCode(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
