// Package charset resolves the character set(s) declared in MSH-18 of an
// HL7 v2.x message and selects a concrete byte-to-UTF8 decoder, falling
// back to auto-detection (BOM sniffing, UTF-8 validity probing, then
// windows-1252/Latin-1) when no declaration is present or understood.
package charset

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/healthbridge/hl7v2/hl7"
)

// Name identifies a character set by its canonical registry key. Table
// 0211 identifiers (e.g. "8859/1", "UNICODE UTF-8") and common aliases
// both resolve to one of these.
type Name string

const (
	UTF8        Name = "UTF-8"
	ASCII       Name = "ASCII"
	ISO8859_1   Name = "8859/1"
	ISO8859_2   Name = "8859/2"
	ISO8859_9   Name = "8859/9"
	Windows1252 Name = "WINDOWS-1252"
	UTF16       Name = "UNICODE UTF-16"
	UTF16LE     Name = "UTF-16LE"
	UTF16BE     Name = "UTF-16BE"
	Unknown     Name = ""
)

// ErrUnsupportedCharset indicates MSH-18 named a character set this
// registry has no decoder for.
var ErrUnsupportedCharset = errors.New("unsupported character set")

var aliases = map[string]Name{
	"UNICODE UTF-8": UTF8,
	"UTF-8":         UTF8,
	"UTF8":          UTF8,
	"ASCII":         ASCII,
	"ISO IR6":       ASCII,
	"ISO IR 6":      ASCII,
	"8859/1":        ISO8859_1,
	"ISO IR100":     ISO8859_1,
	"ISO IR 100":    ISO8859_1,
	"8859/2":        ISO8859_2,
	"ISO IR101":     ISO8859_2,
	"ISO IR 101":    ISO8859_2,
	"8859/9":        ISO8859_9,
	"ISO IR148":     ISO8859_9,
	"ISO IR 148":    ISO8859_9,
	"WINDOWS-1252":   Windows1252,
	"CP1252":         Windows1252,
	"UNICODE UTF-16": UTF16,
	"UTF-16":         UTF16,
	"UTF-16LE":       UTF16LE,
	"UTF-16BE":       UTF16BE,
}

// Resolve maps a raw MSH-18 repetition value to a registry Name. An
// unrecognized value yields ErrUnsupportedCharset.
func Resolve(declared string) (Name, error) {
	if n, ok := aliases[normalizeKey(declared)]; ok {
		return n, nil
	}
	return Unknown, fmt.Errorf("%w: %q", ErrUnsupportedCharset, declared)
}

func normalizeKey(s string) string {
	return s
}

// ParseMSH18 splits the raw MSH-18 field value on the repetition
// delimiter into its declared character set names, resolving each via
// Resolve. Names that fail to resolve are omitted from the returned
// slice but recorded in the returned unresolved slice.
func ParseMSH18(raw string, delims *hl7.Delimiters) (resolved []Name, unresolved []string) {
	if raw == "" {
		return nil, nil
	}
	parts := splitRune(raw, delims.Repetition)
	for _, p := range parts {
		if p == "" {
			continue
		}
		n, err := Resolve(p)
		if err != nil {
			unresolved = append(unresolved, p)
			continue
		}
		resolved = append(resolved, n)
	}
	return resolved, unresolved
}

func splitRune(s string, sep rune) []string {
	var out []string
	start := 0
	runes := []rune(s)
	for i, r := range runes {
		if r == sep {
			out = append(out, string(runes[start:i]))
			start = i + 1
		}
	}
	out = append(out, string(runes[start:]))
	return out
}

// Decoder converts raw message bytes into UTF-8 text under one resolved
// character set.
func Decoder(n Name) (*encoding.Decoder, error) {
	switch n {
	case UTF8, ASCII, Unknown:
		return nil, nil // already UTF-8-compatible, no transformation needed
	case ISO8859_1:
		return charmap.ISO8859_1.NewDecoder(), nil
	case ISO8859_2:
		return charmap.ISO8859_2.NewDecoder(), nil
	case ISO8859_9:
		return charmap.ISO8859_9.NewDecoder(), nil
	case Windows1252:
		return charmap.Windows1252.NewDecoder(), nil
	case UTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder(), nil
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder(), nil
	case UTF16:
		return unicode.BOMOverride(unicode.UTF8.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCharset, n)
	}
}

// Decode transforms raw into UTF-8 using the decoder for n. A nil
// decoder (UTF8/ASCII/Unknown) returns raw unchanged.
func Decode(raw []byte, n Name) ([]byte, error) {
	dec, err := Decoder(n)
	if err != nil {
		return nil, err
	}
	if dec == nil {
		return raw, nil
	}
	out, err := dec.Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding as %s: %w", n, err)
	}
	return out, nil
}

// Detection reports the outcome of auto-detecting the character set of
// a byte stream with no trusted MSH-18 declaration.
type Detection struct {
	Name        Name
	BOMStripped bool
	Bytes       []byte // input with any detected BOM removed
}

// Detect probes data for a byte-order mark, then valid UTF-8, then the
// windows-1252 printable high range, falling back to Latin-1 (ISO
// 8859-1) as the universal last resort (every byte sequence is valid
// Latin-1).
func Detect(data []byte) Detection {
	if bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		return Detection{Name: UTF8, BOMStripped: true, Bytes: data[3:]}
	}
	if bytes.HasPrefix(data, []byte{0xFF, 0xFE}) {
		return Detection{Name: UTF16LE, BOMStripped: true, Bytes: data[2:]}
	}
	if bytes.HasPrefix(data, []byte{0xFE, 0xFF}) {
		return Detection{Name: UTF16BE, BOMStripped: true, Bytes: data[2:]}
	}
	if utf8.Valid(data) {
		return Detection{Name: UTF8, Bytes: data}
	}
	if looksWindows1252(data) {
		return Detection{Name: Windows1252, Bytes: data}
	}
	return Detection{Name: ISO8859_1, Bytes: data}
}

// looksWindows1252 reports whether data contains bytes in the 0x80-0x9F
// range that are assigned printable characters under windows-1252 (and
// are undefined control codes under plain Latin-1), a common signal
// that a stream was mislabeled as Latin-1 when it is actually CP1252.
func looksWindows1252(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 && b <= 0x9F {
			switch b {
			case 0x81, 0x8D, 0x8F, 0x90, 0x9D:
				continue // these remain undefined in windows-1252 too
			default:
				return true
			}
		}
	}
	return false
}

// ValidateEncoding compares a declared set of MSH-18 names against the
// raw bytes and reports a diagnostic message when detection disagrees,
// or when more than one character set was declared (only the first is
// ever honored by the decoder).
func ValidateEncoding(raw []byte, declared []Name) (warning string, ok bool) {
	if len(declared) == 0 {
		return "", true
	}
	if len(declared) > 1 {
		return fmt.Sprintf("MSH-18 declares %d character sets; only %q is used", len(declared), declared[0]), false
	}
	detected := Detect(raw)
	if detected.Name != declared[0] {
		return fmt.Sprintf("declared character set %q does not match detected encoding %q", declared[0], detected.Name), false
	}
	return "", true
}
