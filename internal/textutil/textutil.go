package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
)

// Quote renders a string as a double-quoted literal for catalog dumps.
// Newline, tab, NUL, double quote and backslash become two-character
// escapes; every other byte passes through unchanged, including
// non-ASCII bytes.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case 0:
			b.WriteString(`\0`)
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Hash computes a SHA-256 hex hash of a string for deduplication.
func Hash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// Truncate shortens a string to maxLen, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// Locale guesses the locale of a .mo file from its path: the file's
// base name without extension (de.mo, pt_BR.mo), or for the gettext
// directory layout .../<locale>/LC_MESSAGES/<domain>.mo, the locale
// directory name. Returns "" when no candidate looks like a locale.
func Locale(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if isLocaleName(base) {
		return base
	}

	dir := filepath.Dir(path)
	if filepath.Base(dir) == "LC_MESSAGES" {
		parent := filepath.Base(filepath.Dir(dir))
		if isLocaleName(parent) {
			return parent
		}
	}
	return ""
}

// isLocaleName reports whether s looks like "ll" or "ll_CC".
func isLocaleName(s string) bool {
	parts := strings.SplitN(s, "_", 2)
	if len(parts[0]) < 2 || len(parts[0]) > 3 {
		return false
	}
	for _, r := range parts[0] {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	if len(parts) == 2 {
		if len(parts[1]) != 2 {
			return false
		}
		for _, r := range parts[1] {
			if r < 'A' || r > 'Z' {
				return false
			}
		}
	}
	return true
}
