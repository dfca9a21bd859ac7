package textutil

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain text untouched", "Heavy rain in Mumbai", "Heavy rain in Mumbai"},
		{"strips urls", "flooding here https://example.com/a?b=c see photos", "flooding here see photos"},
		{"strips html tags", "<b>fire</b> spreading <br/>fast", "fire spreading fast"},
		{"strips emoji", "earthquake 😱😱 felt here", "earthquake felt here"},
		{"collapses whitespace", "  too\t many\n spaces  ", "too many spaces"},
		{"keeps devanagari", "मुंबई में बाढ़", "मुंबई में बाढ़"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestHash_StableAndTrimmed(t *testing.T) {
	a := Hash("flood in mumbai")
	b := Hash("  flood in mumbai  ")
	if a != b {
		t.Errorf("hash should ignore surrounding whitespace: %s != %s", a, b)
	}
	if a == Hash("flood in chennai") {
		t.Error("different texts should hash differently")
	}
}

func TestTruncate_DoesNotSplitRunes(t *testing.T) {
	text := "बाढ़" // multibyte
	got := Truncate(text, 4)
	for i := 0; i < len(got); {
		r := []rune(got[i:])
		if len(r) == 0 || r[0] == '�' {
			t.Fatalf("truncation produced invalid UTF-8: %q", got)
		}
		i += len(string(r[0]))
	}

	if Truncate("abc", 10) != "abc" {
		t.Error("short text should pass through unchanged")
	}
}
