package textutil

import "testing"

// TestQuoteEscapes ensures the escape table produces visible
// backslash escapes, not control characters.
func TestQuoteEscapes(t *testing.T) {
	got := Quote("a\nb\"c\\d")
	want := `"a\nb\"c\\d"`
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

// TestQuoteTabAndNul ensures tab and NUL bytes escape to \t and \0.
func TestQuoteTabAndNul(t *testing.T) {
	got := Quote("x\ty\x00z")
	want := `"x\ty\0z"`
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

// TestQuotePassesNonASCII ensures non-ASCII bytes are emitted as-is.
func TestQuotePassesNonASCII(t *testing.T) {
	got := Quote("héllo 世界")
	want := `"héllo 世界"`
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

// TestQuoteEmpty ensures the empty string renders as bare quotes.
func TestQuoteEmpty(t *testing.T) {
	if got := Quote(""); got != `""` {
		t.Fatalf(`expected "", got %s`, got)
	}
}

// TestTruncate ensures long strings are shortened with an ellipsis.
func TestTruncate(t *testing.T) {
	if got := Truncate("abcdef", 3); got != "abc..." {
		t.Fatalf("expected abc..., got %s", got)
	}
	if got := Truncate("ab", 3); got != "ab" {
		t.Fatalf("expected ab, got %s", got)
	}
}

// TestLocale covers base-name and LC_MESSAGES layouts.
func TestLocale(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"locales/de.mo", "de"},
		{"locales/pt_BR.mo", "pt_BR"},
		{"usr/share/locale/fr/LC_MESSAGES/wesnoth.mo", "fr"},
		{"build/messages.mo", ""},
		{"x/UPPER_xx.mo", ""},
	}
	for _, c := range cases {
		if got := Locale(c.path); got != c.want {
			t.Fatalf("Locale(%q): expected %q, got %q", c.path, c.want, got)
		}
	}
}
