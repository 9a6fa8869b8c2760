// Package escape implements the HL7 v2.x in-band escape sequence codec.
//
// HL7 encodes delimiter characters that appear inside field data using
// escape sequences bracketed by the escape character on both sides:
//
//	\F\   field separator
//	\S\   component separator
//	\T\   subcomponent separator
//	\R\   repetition separator
//	\E\   escape character
//	\Xhh...\  one or more hex-encoded bytes
//	\.br\ line break
//	\.sp\ space
//
// A Codec is a value: it carries the delimiters it was configured with,
// so messages with divergent delimiters can be decoded and encoded
// concurrently without any shared global state.
package escape

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/healthbridge/hl7v2/hl7"
)

// Codec encodes and decodes HL7 escape sequences for one Delimiters
// configuration.
type Codec struct {
	delims *hl7.Delimiters
}

// New creates a Codec bound to delims. If delims is nil, the standard
// HL7 delimiters are used.
func New(delims *hl7.Delimiters) *Codec {
	if delims == nil {
		delims = hl7.DefaultDelimiters()
	}
	return &Codec{delims: delims}
}

// Delimiters returns the delimiter configuration this codec was built with.
func (c *Codec) Delimiters() *hl7.Delimiters {
	return c.delims
}

// Encode converts decoded user text into its raw, on-wire form. Encode is
// total: every delimiter character, the escape character, and newlines
// are replaced with their escape form; every other character passes
// through unchanged.
func (c *Codec) Encode(decoded string) string {
	if decoded == "" {
		return decoded
	}

	esc := c.delims.Escape
	needsEscape := false
	for _, r := range decoded {
		if c.delims.Contains(r) || r == esc || r == '\n' {
			needsEscape = true
			break
		}
	}
	if !needsEscape {
		return decoded
	}

	var sb strings.Builder
	sb.Grow(len(decoded) + 8)
	for _, r := range decoded {
		switch {
		case r == esc:
			writeEscape(&sb, esc, "E")
		case r == c.delims.Field:
			writeEscape(&sb, esc, "F")
		case r == c.delims.Component:
			writeEscape(&sb, esc, "S")
		case r == c.delims.SubComponent:
			writeEscape(&sb, esc, "T")
		case r == c.delims.Repetition:
			writeEscape(&sb, esc, "R")
		case r == '\n':
			writeEscape(&sb, esc, ".br")
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func writeEscape(sb *strings.Builder, esc rune, body string) {
	sb.WriteRune(esc)
	sb.WriteString(body)
	sb.WriteRune(esc)
}

// EncodeHex renders value as an explicit \Xhh...\ hex escape, for
// producers that want to force byte-literal transmission of a value
// rather than rely on the delimiter-substitution form.
func (c *Codec) EncodeHex(value string) string {
	if value == "" {
		return value
	}
	var sb strings.Builder
	sb.WriteRune(c.delims.Escape)
	sb.WriteByte('X')
	sb.WriteString(strings.ToUpper(hex.EncodeToString([]byte(value))))
	sb.WriteRune(c.delims.Escape)
	return sb.String()
}

// Decode converts raw on-wire text into decoded user text. Decode fails
// with ErrUnclosedEscape if the escape character opens a sequence with
// no matching close before end of input, and with ErrUnknownEscape for
// any unrecognized token between escape characters.
func (c *Codec) Decode(raw string) (string, error) {
	if raw == "" {
		return raw, nil
	}

	esc := c.delims.Escape
	if !strings.ContainsRune(raw, esc) {
		return raw, nil
	}

	runes := []rune(raw)
	var sb strings.Builder
	sb.Grow(len(runes))

	i := 0
	for i < len(runes) {
		if runes[i] != esc {
			sb.WriteRune(runes[i])
			i++
			continue
		}

		closeIdx := -1
		for j := i + 1; j < len(runes); j++ {
			if runes[j] == esc {
				closeIdx = j
				break
			}
		}
		if closeIdx == -1 {
			return "", fmt.Errorf("%w: at position %d", hl7.ErrUnclosedEscape, i)
		}

		content := string(runes[i+1 : closeIdx])
		decoded, err := c.decodeToken(content)
		if err != nil {
			return "", err
		}
		sb.WriteString(decoded)
		i = closeIdx + 1
	}

	return sb.String(), nil
}

// decodeToken decodes the content between a matched pair of escape
// characters (not including the escape characters themselves).
func (c *Codec) decodeToken(content string) (string, error) {
	if len(content) == 1 {
		switch content[0] {
		case 'F':
			return string(c.delims.Field), nil
		case 'S':
			return string(c.delims.Component), nil
		case 'T':
			return string(c.delims.SubComponent), nil
		case 'R':
			return string(c.delims.Repetition), nil
		case 'E':
			return string(c.delims.Escape), nil
		}
	}

	switch content {
	case ".br":
		return "\n", nil
	case ".sp":
		return " ", nil
	}

	if len(content) >= 2 && (content[0] == 'X' || content[0] == 'x') {
		hexStr := content[1:]
		if len(hexStr)%2 != 0 {
			return "", fmt.Errorf("%w: odd-length hex sequence \\%s\\", hl7.ErrUnknownEscape, content)
		}
		decoded, err := hex.DecodeString(hexStr)
		if err != nil {
			return "", fmt.Errorf("%w: invalid hex sequence \\%s\\", hl7.ErrUnknownEscape, content)
		}
		return string(decoded), nil
	}

	return "", fmt.Errorf("%w: \\%s\\", hl7.ErrUnknownEscape, content)
}
