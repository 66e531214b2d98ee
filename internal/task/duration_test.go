package task

import "testing"

func TestParseMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"2h", 120},
		{"30m", 30},
		{"1.5h", 90},
		{"2h 30m", 150},
		{"2H 15M", 135},
		{"about 1h of work", 60},
		{"none", 0},
	}

	for _, tt := range tests {
		if got := ParseMinutes(tt.in); got != tt.want {
			t.Errorf("ParseMinutes(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0h"},
		{45, "45m"},
		{60, "1h"},
		{150, "2h 30m"},
	}

	for _, tt := range tests {
		if got := FormatMinutes(tt.in); got != tt.want {
			t.Errorf("FormatMinutes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
