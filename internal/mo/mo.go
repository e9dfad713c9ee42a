// Package mo decodes GNU gettext compiled translation catalogs (the
// ".mo" binary format) into msgid → msgstr mappings.
//
// The format is documented at
// https://www.gnu.org/software/gettext/manual/html_node/MO-Files.html:
// a 20-byte little-endian header followed by two parallel tables of
// (length, offset) pairs locating the original and translated strings
// in the file. Only format revisions 0 and 1 exist.
package mo

import (
	"encoding/binary"
	"fmt"
)

// Magic is the little-endian magic number of a .mo file.
const Magic = 0x950412DE

// HeaderSize is the size of the fixed header: magic, revision, string
// count, original-table offset and translated-table offset, each a
// 32-bit word.
const HeaderSize = 20

// entrySize is the size of one (length, offset) table entry.
const entrySize = 8

// Catalog maps original strings (msgids) to their translations.
type Catalog map[string]string

// header is the fixed-size record at the start of every .mo file.
type header struct {
	magic    uint32
	version  uint32
	count    uint32
	origOff  uint32
	transOff uint32
}

// TooSmallError reports a buffer shorter than the fixed header.
type TooSmallError struct {
	Size int
	Min  int
}

func (e *TooSmallError) Error() string {
	return fmt.Sprintf("mo: content too small: %d bytes found, expected at least %d", e.Size, e.Min)
}

// BadMagicError reports a magic number mismatch.
type BadMagicError struct {
	Magic uint32
}

func (e *BadMagicError) Error() string {
	return fmt.Sprintf("mo: magic number mismatch: 0x%08X", e.Magic)
}

// BadVersionError reports an unknown format revision.
type BadVersionError struct {
	Version uint32
}

func (e *BadVersionError) Error() string {
	return fmt.Sprintf("mo: unsupported format revision %d (want 0 or 1)", e.Version)
}

// TableBoundsError reports a string table that extends past the end
// of the buffer.
type TableBoundsError struct {
	Offset uint32
	Count  uint32
	Size   int
}

func (e *TableBoundsError) Error() string {
	return fmt.Sprintf("mo: string table at offset %d with %d entries exceeds file size %d", e.Offset, e.Count, e.Size)
}

// EntryBoundsError reports a string whose (length, offset) pair points
// past the end of the buffer.
type EntryBoundsError struct {
	Index  int
	Offset uint32
	Length uint32
	Size   int
}

func (e *EntryBoundsError) Error() string {
	return fmt.Sprintf("mo: entry %d at offset %d with length %d exceeds file size %d", e.Index, e.Offset, e.Length, e.Size)
}

// Decode parses a complete .mo file image into a Catalog.
//
// Validation is strict and all-or-nothing: the first failed check
// aborts decoding with a typed error and no partial catalog. On
// duplicate msgids the first table entry wins, matching gettext's
// observable behavior on malformed input. The returned catalog owns
// copies of the strings, so the input buffer may be reused after
// Decode returns.
func Decode(data []byte) (Catalog, error) {
	if len(data) < HeaderSize {
		return nil, &TooSmallError{Size: len(data), Min: HeaderSize}
	}

	h := header{
		magic:    binary.LittleEndian.Uint32(data[0:4]),
		version:  binary.LittleEndian.Uint32(data[4:8]),
		count:    binary.LittleEndian.Uint32(data[8:12]),
		origOff:  binary.LittleEndian.Uint32(data[12:16]),
		transOff: binary.LittleEndian.Uint32(data[16:20]),
	}

	if h.magic != Magic {
		return nil, &BadMagicError{Magic: h.magic}
	}
	if h.version != 0 && h.version != 1 {
		return nil, &BadVersionError{Version: h.version}
	}

	// Bounds arithmetic is done in uint64 so a huge count or offset
	// cannot wrap around 32 bits and falsely pass.
	size := uint64(len(data))
	if uint64(h.origOff)+entrySize*uint64(h.count) > size {
		return nil, &TableBoundsError{Offset: h.origOff, Count: h.count, Size: len(data)}
	}
	if uint64(h.transOff)+entrySize*uint64(h.count) > size {
		return nil, &TableBoundsError{Offset: h.transOff, Count: h.count, Size: len(data)}
	}

	catalog := make(Catalog, h.count)

	for i := uint32(0); i < h.count; i++ {
		msgid, err := readString(data, h.origOff+entrySize*i, int(i))
		if err != nil {
			return nil, err
		}
		msgstr, err := readString(data, h.transOff+entrySize*i, int(i))
		if err != nil {
			return nil, err
		}

		// First entry wins on duplicate msgids.
		if _, exists := catalog[msgid]; !exists {
			catalog[msgid] = msgstr
		}
	}

	return catalog, nil
}

// readString resolves one (length, offset) table entry and copies the
// string it locates out of data.
func readString(data []byte, entryOff uint32, index int) (string, error) {
	length := binary.LittleEndian.Uint32(data[entryOff : entryOff+4])
	offset := binary.LittleEndian.Uint32(data[entryOff+4 : entryOff+8])

	if uint64(offset)+uint64(length) > uint64(len(data)) {
		return "", &EntryBoundsError{Index: index, Offset: offset, Length: length, Size: len(data)}
	}

	// string() copies; the catalog never aliases the input buffer.
	return string(data[offset : offset+length]), nil
}
