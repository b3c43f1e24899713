package domain

import "testing"

func TestIsCompletedStatus(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{"completed", true},
		{"success", true},
		{"paid", true},
		{"COMPLETED", true},
		{"Paid", true},
		{"pending", false},
		{"failed", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsCompletedStatus(tt.status); got != tt.want {
			t.Errorf("IsCompletedStatus(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}
