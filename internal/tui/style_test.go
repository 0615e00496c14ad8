package tui

import "testing"

func TestThemeColor(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"black", "0"},
		{"cyan", "6"},
		{"White", "7"},
		{" magenta ", "5"},
		{"#89ddff", "#89ddff"}, // hex passes through
		{"240", "240"},         // raw palette index passes through
	}
	for _, tt := range tests {
		if got := string(themeColor(tt.in)); got != tt.want {
			t.Errorf("themeColor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
