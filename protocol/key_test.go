package protocol

import (
	"errors"
	"strings"
	"testing"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		valid bool
	}{
		{"valid key", "foo", true},
		{"valid key with numbers", "foo123", true},
		{"valid key with underscores", "foo_bar", true},
		{"valid key with dashes", "foo-bar", true},
		{"exactly 250 chars", strings.Repeat("a", 250), true},
		{"unicode key", "foo-ключ", true},
		{"empty key", "", false},
		{"key too long", strings.Repeat("a", 251), false},
		{"key with space", "foo bar", false},
		{"key with tab", "foo\tbar", false},
		{"key with newline", "foo\nbar", false},
		{"key with carriage return", "foo\rbar", false},
		{"key with null", "foo\x00bar", false},
		{"key with DEL", "foo\x7fbar", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := ParseKey(tt.key)
			if tt.valid {
				if err != nil {
					t.Fatalf("ParseKey(%q) = %v, want success", tt.key, err)
				}
				if key.String() != tt.key {
					t.Errorf("ParseKey(%q).String() = %q, round-trip broken", tt.key, key.String())
				}
				return
			}

			if err == nil {
				t.Fatalf("ParseKey(%q) succeeded, want error", tt.key)
			}

			var invalidKey *InvalidKeyError
			if !errors.As(err, &invalidKey) {
				t.Errorf("ParseKey(%q) error is %T, want *InvalidKeyError", tt.key, err)
			}
		})
	}
}

func TestParseKeyErrorMessages(t *testing.T) {
	tests := []struct {
		key     string
		message string
	}{
		{"", "key is empty"},
		{strings.Repeat("a", 251), "key exceeds maximum length of 250 bytes"},
		{"foo bar", "key contains whitespace or control characters"},
	}

	for _, tt := range tests {
		_, err := ParseKey(tt.key)
		if err == nil || err.Error() != tt.message {
			t.Errorf("ParseKey(%q) error = %v, want %q", tt.key, err, tt.message)
		}
	}
}

func BenchmarkParseKey(b *testing.B) {
	tests := []struct {
		name string
		key  string
	}{
		{"Short", "foo"},
		{"Medium", "medium_length_key_with_underscores_and_numbers_123"},
		{"MaxLength", strings.Repeat("a", 250)},
		{"Invalid", "key with spaces"},
	}

	for _, tt := range tests {
		b.Run(tt.name, func(b *testing.B) {
			for b.Loop() {
				ParseKey(tt.key)
			}
		})
	}
}

func FuzzParseKey(f *testing.F) {
	f.Add("foo")
	f.Add("bar_baz")
	f.Add("test-key-123")
	f.Add("")
	f.Add(strings.Repeat("a", 250))
	f.Add(strings.Repeat("a", 251))
	f.Add("key with space")
	f.Add("key\twith\ttab")
	f.Add("key\x00with\x00null")

	f.Fuzz(func(t *testing.T, raw string) {
		key, err := ParseKey(raw)
		if err != nil {
			return
		}

		if key.String() != raw {
			t.Errorf("round-trip broken for %q", raw)
		}
		if len(raw) == 0 || len(raw) > 250 {
			t.Errorf("key with invalid length accepted: %q", raw)
		}
		for _, b := range []byte(raw) {
			if b <= 32 || b == 127 {
				t.Errorf("key with delimiter byte accepted: %q", raw)
				break
			}
		}
	})
}
