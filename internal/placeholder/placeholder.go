// Package placeholder extracts interpolation variables from catalog
// strings and compares msgid against msgstr, the check msgfmt -c
// performs on format strings.
package placeholder

import (
	"regexp"
	"sort"
)

// Mismatch describes one catalog entry whose translation does not
// carry the same placeholders as its source string.
type Mismatch struct {
	Msgid   string
	Msgstr  string
	Missing []string // placeholders in msgid but not msgstr
	Extra   []string // placeholders in msgstr but not msgid
}

// patterns to detect interpolation variables in catalog strings.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`\$\{[a-zA-Z_][a-zA-Z0-9_]*\}`),         // ${value}
	regexp.MustCompile(`\{[0-9]+\}`),                           // {0}, {1}
	regexp.MustCompile(`%[-+0-9]*\.?[0-9]*[dsfieEgGxXoubcpq]`), // %d, %s, %f, %2d, etc.
	regexp.MustCompile(`%%`),                                   // escaped percent literal
}

// Extract returns every placeholder occurring in text, sorted.
// Repeated placeholders appear once per occurrence so the comparison
// is over multisets.
func Extract(text string) []string {
	var found []string
	for _, p := range patterns {
		found = append(found, p.FindAllString(text, -1)...)
	}
	sort.Strings(found)
	return found
}

// Check compares the placeholders of a msgid/msgstr pair. It returns
// a Mismatch and true when they disagree. Untranslated entries
// (empty msgstr) are never reported.
func Check(msgid, msgstr string) (Mismatch, bool) {
	if msgstr == "" {
		return Mismatch{}, false
	}

	source := Extract(msgid)
	target := Extract(msgstr)

	missing := diff(source, target)
	extra := diff(target, source)
	if len(missing) == 0 && len(extra) == 0 {
		return Mismatch{}, false
	}

	return Mismatch{
		Msgid:   msgid,
		Msgstr:  msgstr,
		Missing: missing,
		Extra:   extra,
	}, true
}

// CheckCatalog runs Check over every entry and returns the mismatches
// sorted by msgid.
func CheckCatalog(catalog map[string]string) []Mismatch {
	var mismatches []Mismatch
	for msgid, msgstr := range catalog {
		if m, bad := Check(msgid, msgstr); bad {
			mismatches = append(mismatches, m)
		}
	}
	sort.Slice(mismatches, func(i, j int) bool {
		return mismatches[i].Msgid < mismatches[j].Msgid
	})
	return mismatches
}

// diff returns the elements of a not matched one-for-one in b.
func diff(a, b []string) []string {
	counts := make(map[string]int, len(b))
	for _, s := range b {
		counts[s]++
	}

	var out []string
	for _, s := range a {
		if counts[s] > 0 {
			counts[s]--
			continue
		}
		out = append(out, s)
	}
	return out
}
