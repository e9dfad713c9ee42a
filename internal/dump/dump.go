// Package dump renders a decoded catalog as quoted-string lines.
package dump

import (
	"fmt"
	"io"
	"sort"

	"mocat/internal/mo"
	"mocat/internal/textutil"
)

// Modes accepted on the command line.
const (
	ModeKeys  = "keys"
	ModePairs = "pairs"
)

// Render writes the entry count, then one line per entry in sorted
// msgid order, then a blank line. Keys mode prints quoted msgids;
// pairs mode prints quoted msgid -> msgstr. An unknown mode still
// prints the count and blank line but no entries, and Render reports
// it by returning false.
func Render(w io.Writer, catalog mo.Catalog, mode string) bool {
	fmt.Fprintf(w, "Read %d entries:\n", len(catalog))

	known := true
	switch mode {
	case ModeKeys:
		for _, msgid := range sortedKeys(catalog) {
			fmt.Fprintf(w, "  %s\n", textutil.Quote(msgid))
		}
	case ModePairs:
		for _, msgid := range sortedKeys(catalog) {
			fmt.Fprintf(w, "  %s -> %s\n", textutil.Quote(msgid), textutil.Quote(catalog[msgid]))
		}
	default:
		known = false
	}

	fmt.Fprintln(w)
	return known
}

func sortedKeys(catalog mo.Catalog) []string {
	keys := make([]string, 0, len(catalog))
	for k := range catalog {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
