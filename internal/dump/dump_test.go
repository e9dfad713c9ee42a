package dump

import (
	"bytes"
	"testing"

	"mocat/internal/mo"
)

// TestRenderKeys ensures keys mode prints the count, sorted quoted
// msgids and a trailing blank line.
func TestRenderKeys(t *testing.T) {
	catalog := mo.Catalog{"hello": "world", "a": "b"}

	var buf bytes.Buffer
	if !Render(&buf, catalog, ModeKeys) {
		t.Fatal("expected keys to be a known mode")
	}

	want := "Read 2 entries:\n  \"a\"\n  \"hello\"\n\n"
	if buf.String() != want {
		t.Fatalf("expected %q, got %q", want, buf.String())
	}
}

// TestRenderPairs ensures pairs mode prints msgid -> msgstr lines
// with escaping applied to both sides.
func TestRenderPairs(t *testing.T) {
	catalog := mo.Catalog{"line\none": "tab\ttwo"}

	var buf bytes.Buffer
	if !Render(&buf, catalog, ModePairs) {
		t.Fatal("expected pairs to be a known mode")
	}

	want := "Read 1 entries:\n  \"line\\none\" -> \"tab\\ttwo\"\n\n"
	if buf.String() != want {
		t.Fatalf("expected %q, got %q", want, buf.String())
	}
}

// TestRenderEmptyCatalog ensures a failed or empty decode still
// reports zero entries and the trailing blank line.
func TestRenderEmptyCatalog(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, nil, ModeKeys)

	want := "Read 0 entries:\n\n"
	if buf.String() != want {
		t.Fatalf("expected %q, got %q", want, buf.String())
	}
}

// TestRenderUnknownMode ensures the count header and blank line are
// still written before the unknown mode is reported.
func TestRenderUnknownMode(t *testing.T) {
	catalog := mo.Catalog{"a": "b"}

	var buf bytes.Buffer
	if Render(&buf, catalog, "values") {
		t.Fatal("expected unknown mode to be reported")
	}

	want := "Read 1 entries:\n\n"
	if buf.String() != want {
		t.Fatalf("expected %q, got %q", want, buf.String())
	}
}
