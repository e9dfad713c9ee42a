package mo

import (
	"encoding/binary"
	"errors"
	"testing"
)

// buildMO constructs a well-formed .mo image for the given pairs,
// laying out the header, both tables and the string data in order.
func buildMO(pairs [][2]string) []byte {
	count := len(pairs)
	origOff := HeaderSize
	transOff := origOff + entrySize*count
	dataOff := transOff + entrySize*count

	var strData []byte
	type entry struct{ length, offset uint32 }
	origEntries := make([]entry, count)
	transEntries := make([]entry, count)

	for i, p := range pairs {
		origEntries[i] = entry{uint32(len(p[0])), uint32(dataOff + len(strData))}
		strData = append(strData, p[0]...)
		transEntries[i] = entry{uint32(len(p[1])), uint32(dataOff + len(strData))}
		strData = append(strData, p[1]...)
	}

	buf := make([]byte, dataOff, dataOff+len(strData))
	binary.LittleEndian.PutUint32(buf[0:4], Magic)
	binary.LittleEndian.PutUint32(buf[4:8], 0)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(count))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(origOff))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(transOff))

	for i := 0; i < count; i++ {
		o := origOff + entrySize*i
		binary.LittleEndian.PutUint32(buf[o:o+4], origEntries[i].length)
		binary.LittleEndian.PutUint32(buf[o+4:o+8], origEntries[i].offset)
		t := transOff + entrySize*i
		binary.LittleEndian.PutUint32(buf[t:t+4], transEntries[i].length)
		binary.LittleEndian.PutUint32(buf[t+4:t+8], transEntries[i].offset)
	}

	return append(buf, strData...)
}

// TestDecodeRoundTrip ensures a synthetic two-entry catalog decodes to
// exactly its source pairs.
func TestDecodeRoundTrip(t *testing.T) {
	buf := buildMO([][2]string{{"a", "b"}, {"hello", "world"}})

	catalog, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if len(catalog) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(catalog))
	}
	if catalog["a"] != "b" {
		t.Fatalf("expected a -> b, got %q", catalog["a"])
	}
	if catalog["hello"] != "world" {
		t.Fatalf("expected hello -> world, got %q", catalog["hello"])
	}
}

// TestDecodeEmptyCatalog ensures count == 0 is valid and yields an
// empty catalog, not an error.
func TestDecodeEmptyCatalog(t *testing.T) {
	buf := buildMO(nil)

	catalog, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if len(catalog) != 0 {
		t.Fatalf("expected empty catalog, got %d entries", len(catalog))
	}
}

// TestDecodeZeroLengthStrings ensures length == 0 entries decode to
// empty strings, including offsets at end-of-buffer.
func TestDecodeZeroLengthStrings(t *testing.T) {
	buf := buildMO([][2]string{{"", ""}, {"key", ""}})

	catalog, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if v, ok := catalog[""]; !ok || v != "" {
		t.Fatalf("expected empty msgid mapped to empty msgstr, got %q (present=%v)", v, ok)
	}
	if v := catalog["key"]; v != "" {
		t.Fatalf("expected empty translation for key, got %q", v)
	}
}

// TestDecodeTooSmall ensures every buffer shorter than the header
// fails with TooSmallError carrying the sizes.
func TestDecodeTooSmall(t *testing.T) {
	for size := 0; size < HeaderSize; size++ {
		_, err := Decode(make([]byte, size))
		var tooSmall *TooSmallError
		if !errors.As(err, &tooSmall) {
			t.Fatalf("size %d: expected TooSmallError, got %v", size, err)
		}
		if tooSmall.Size != size || tooSmall.Min != HeaderSize {
			t.Fatalf("size %d: wrong error fields: %+v", size, tooSmall)
		}
	}
}

// TestDecodeBadMagic ensures corrupting any magic byte fails with
// BadMagicError.
func TestDecodeBadMagic(t *testing.T) {
	for i := 0; i < 4; i++ {
		buf := buildMO(nil)
		buf[i] ^= 0xFF

		_, err := Decode(buf)
		var badMagic *BadMagicError
		if !errors.As(err, &badMagic) {
			t.Fatalf("byte %d: expected BadMagicError, got %v", i, err)
		}
	}
}

// TestDecodeBadVersion ensures revisions other than 0 and 1 are
// rejected and the observed value is carried in the error.
func TestDecodeBadVersion(t *testing.T) {
	for _, version := range []uint32{2, 3, 0x10000, 0xFFFFFFFF} {
		buf := buildMO(nil)
		binary.LittleEndian.PutUint32(buf[4:8], version)

		_, err := Decode(buf)
		var badVersion *BadVersionError
		if !errors.As(err, &badVersion) {
			t.Fatalf("version %d: expected BadVersionError, got %v", version, err)
		}
		if badVersion.Version != version {
			t.Fatalf("expected version %d in error, got %d", version, badVersion.Version)
		}
	}
}

// TestDecodeAcceptsVersionOne ensures revision 1 decodes like
// revision 0.
func TestDecodeAcceptsVersionOne(t *testing.T) {
	buf := buildMO([][2]string{{"a", "b"}})
	binary.LittleEndian.PutUint32(buf[4:8], 1)

	catalog, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if catalog["a"] != "b" {
		t.Fatalf("expected a -> b, got %q", catalog["a"])
	}
}

// TestDecodeTableOutOfBounds ensures a table that extends past the
// buffer is rejected before any entry is read.
func TestDecodeTableOutOfBounds(t *testing.T) {
	buf := buildMO([][2]string{{"a", "b"}})
	binary.LittleEndian.PutUint32(buf[12:16], uint32(len(buf)-4))

	_, err := Decode(buf)
	var tableErr *TableBoundsError
	if !errors.As(err, &tableErr) {
		t.Fatalf("expected TableBoundsError, got %v", err)
	}
}

// TestDecodeHugeCountOverflow ensures a count whose table size would
// wrap 32-bit arithmetic is still rejected as out of bounds.
func TestDecodeHugeCountOverflow(t *testing.T) {
	buf := buildMO(nil)
	// 0x20000000 entries * 8 bytes wraps to 0 in uint32 arithmetic.
	binary.LittleEndian.PutUint32(buf[8:12], 0x20000000)

	_, err := Decode(buf)
	var tableErr *TableBoundsError
	if !errors.As(err, &tableErr) {
		t.Fatalf("expected TableBoundsError, got %v", err)
	}
}

// TestDecodeEntryOutOfBounds ensures a single entry pointing one byte
// past the end fails the whole decode even when earlier entries are
// valid.
func TestDecodeEntryOutOfBounds(t *testing.T) {
	buf := buildMO([][2]string{{"good", "ok"}, {"bad", "oops"}})

	// Stretch the second translated entry ("oops", the final bytes of
	// the buffer) one byte past the end.
	t2 := HeaderSize + entrySize*2 + entrySize*1
	length := binary.LittleEndian.Uint32(buf[t2 : t2+4])
	binary.LittleEndian.PutUint32(buf[t2:t2+4], length+1)

	_, err := Decode(buf)
	var entryErr *EntryBoundsError
	if !errors.As(err, &entryErr) {
		t.Fatalf("expected EntryBoundsError, got %v", err)
	}
	if entryErr.Index != 1 {
		t.Fatalf("expected failing index 1, got %d", entryErr.Index)
	}
}

// TestDecodeDuplicateMsgidFirstWins ensures the first table entry for
// a duplicated msgid is the one kept.
func TestDecodeDuplicateMsgidFirstWins(t *testing.T) {
	buf := buildMO([][2]string{{"dup", "first"}, {"dup", "second"}})

	catalog, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if len(catalog) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(catalog))
	}
	if catalog["dup"] != "first" {
		t.Fatalf("expected first entry to win, got %q", catalog["dup"])
	}
}
