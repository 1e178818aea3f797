package util

import "testing"

func TestParseSize(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"10MB", 10 << 20},
		{"512KB", 512 << 10},
		{"2GB", 2 << 30},
		{"1024", 1024},
		{"  10MB  ", 10 << 20},
		{"64kb", 64 << 10},
		{"", 7},
		{"lots", 7},
		{"-1MB", 7},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			if got := ParseSize(tc.input, 7); got != tc.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tc.input, got, tc.want)
			}
		})
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		input  string
		prefix int
		want   string
	}{
		{"ASIAXAMPLEKEY123", 4, "ASIA***"},
		{"eyJhbGciOiJSUzI1NiJ9.payload.sig", 10, "eyJhbGciOi***"},
		{"short", 10, "***"},
		{"", 5, "***"},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			if got := MaskSecret(tc.input, tc.prefix); got != tc.want {
				t.Errorf("MaskSecret(%q, %d) = %q, want %q", tc.input, tc.prefix, got, tc.want)
			}
		})
	}
}
