package validation

import (
	"strings"
	"testing"
)

func TestSanitizeContentStripsAngleBrackets(t *testing.T) {
	got := SanitizeContent(`Today I <script>alert("x")</script> reflected`)
	want := `Today I scriptalert("x")/script reflected`
	if got != want {
		t.Errorf("SanitizeContent() = %q, want %q", got, want)
	}
}

func TestSanitizeContentTrimsWhitespace(t *testing.T) {
	got := SanitizeContent("  \n hello \t ")
	if got != "hello" {
		t.Errorf("SanitizeContent() = %q, want %q", got, "hello")
	}
}

func TestSanitizeContentTruncatesLongInput(t *testing.T) {
	long := strings.Repeat("é", MaxContentLength+50)
	got := SanitizeContent(long)
	if n := len([]rune(got)); n != MaxContentLength {
		t.Errorf("sanitized length = %d runes, want %d", n, MaxContentLength)
	}
}

func TestSanitizeContentEmpty(t *testing.T) {
	if got := SanitizeContent("   "); got != "" {
		t.Errorf("SanitizeContent() = %q, want empty", got)
	}
}
