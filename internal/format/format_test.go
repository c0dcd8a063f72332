package format

import "testing"

func TestFileSize(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "unlimited"},
		{512, "512"},
		{2048, "2.00 kb"},
		{5 * 1024 * 1024, "5.00 mb"},
		{1536, "1.50 kb"},
	}
	for _, tt := range tests {
		if got := FileSize(tt.bytes); got != tt.expected {
			t.Errorf("FileSize(%d) = %q, want %q", tt.bytes, got, tt.expected)
		}
	}
}

func TestParseFileSize(t *testing.T) {
	tests := []struct {
		in       string
		expected int64
		wantErr  bool
	}{
		{"unlimited", 0, false},
		{"", 0, false},
		{"512", 512, false},
		{"2 kb", 2048, false},
		{"5mb", 5 * 1024 * 1024, false},
		{"1.5 kb", 1536, false},
		{"garbage", 0, true},
		{"-1", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseFileSize(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFileSize(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFileSize(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseFileSize(%q) = %d, want %d", tt.in, got, tt.expected)
		}
	}
}

func TestParseFileSizeRoundTrip(t *testing.T) {
	for _, bytes := range []int64{0, 512, 2048, 10 * 1024 * 1024} {
		parsed, err := ParseFileSize(FileSize(bytes))
		if err != nil {
			t.Fatalf("round trip of %d failed: %v", bytes, err)
		}
		if parsed != bytes {
			t.Errorf("round trip of %d gave %d", bytes, parsed)
		}
	}
}

func TestDateTimePassthrough(t *testing.T) {
	if got := DateTime("not a time"); got != "not a time" {
		t.Errorf("unparseable timestamp should pass through, got %q", got)
	}
	if got := DateTime(""); got != "" {
		t.Errorf("empty timestamp should stay empty, got %q", got)
	}
}
