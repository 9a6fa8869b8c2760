// Package parse provides HL7 v2.x message parsing functionality.
package parse

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"
	"unicode"

	"github.com/healthbridge/hl7v2/charset"
	"github.com/healthbridge/hl7v2/hl7"
)

// MLLP (Minimal Lower Layer Protocol) framing bytes.
const (
	mllpStartByte = 0x0B // Vertical Tab (VT)
	mllpEndByte1  = 0x1C // File Separator (FS)
	mllpEndByte2  = 0x0D // Carriage Return (CR)
)

// Parser-specific errors.
var (
	// ErrTooManySegments is returned when the message exceeds maxSegments.
	ErrTooManySegments = errors.New("message exceeds maximum segment count")
	// ErrFieldTooLong is returned when a field exceeds maxFieldLength.
	ErrFieldTooLong = errors.New("field exceeds maximum length")
	// ErrContextCanceled is returned when the parsing context is canceled.
	ErrContextCanceled = errors.New("parsing canceled")
	// ErrEmptySegment names an empty segment line. Blank lines are discarded
	// when the input is split into segments, so Parse does not return it.
	ErrEmptySegment = errors.New("empty segment not allowed")
)

// Diagnostics summarizes everything observed while producing a
// ParseResult that did not abort the parse outright.
type Diagnostics struct {
	Warnings        []hl7.Diagnostic
	Errors          []hl7.Diagnostic
	SegmentsParsed  int
	SegmentsSkipped int
	ParseTime       time.Duration
}

// Successful reports whether the parse produced a usable tree. A parse
// with warnings but no fatal errors is still successful.
func (d Diagnostics) Successful() bool {
	return len(d.Errors) == 0
}

// ParseResult is the outcome of Parse/ParseContext: the parsed tree
// (nil only if the parse could not produce one at all) plus the
// Diagnostics accumulated along the way.
type ParseResult struct {
	Tree        hl7.Message
	Diagnostics Diagnostics
}

// Parser defines the interface for HL7 message parsing.
type Parser interface {
	// Parse parses raw HL7 message data into a ParseResult. The input
	// data may include MLLP framing which will be stripped.
	Parse(data []byte) (*ParseResult, error)

	// ParseContext parses raw HL7 message data with context support.
	// Allows for cancellation during parsing of large messages.
	ParseContext(ctx context.Context, data []byte) (*ParseResult, error)
}

// parser is the concrete implementation of Parser.
type parser struct {
	config parserConfig
}

// New creates a new Parser with the given options.
func New(opts ...ParserOption) Parser {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &parser{config: cfg}
}

// Parse parses raw HL7 message data into a ParseResult.
func (p *parser) Parse(data []byte) (*ParseResult, error) {
	return p.ParseContext(context.Background(), data)
}

// ParseContext parses raw HL7 message data with context support.
func (p *parser) ParseContext(ctx context.Context, data []byte) (*ParseResult, error) {
	start := time.Now()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrContextCanceled, ctx.Err())
	default:
	}

	data = stripMLLP(data)

	if len(data) > p.config.maxMessageSize {
		return nil, fmt.Errorf("%w: %d bytes, max %d", hl7.ErrTooLarge, len(data), p.config.maxMessageSize)
	}

	decoded, diag := p.decode(data)

	if len(bytes.TrimSpace(decoded)) == 0 {
		return nil, hl7.ErrEmptyMessage
	}

	lines := p.splitSegments(decoded)
	if len(lines) == 0 {
		return nil, hl7.ErrMissingMSH
	}
	firstLine := bytes.TrimSpace(lines[0])
	if !bytes.HasPrefix(firstLine, []byte("MSH")) {
		diag.Errors = append(diag.Errors, hl7.Diagnostic{
			Severity: hl7.SeverityError,
			Message:  "first segment is not MSH",
			Code:     hl7.CodeMissingHeader,
		})
		return &ParseResult{Diagnostics: diag}, hl7.ErrMissingMSH
	}

	var delims *hl7.Delimiters
	var err error
	if p.config.customDelimiters != nil {
		delims = p.config.customDelimiters
	} else if p.config.autoDetectDelimiters {
		delims, err = hl7.Detect(firstLine)
		if err != nil {
			return nil, err
		}
	} else {
		delims = hl7.DefaultDelimiters()
	}
	if err := delims.Validate(); err != nil {
		return nil, err
	}

	if len(lines) > p.config.maxSegments {
		return nil, fmt.Errorf("%w: got %d, max %d", ErrTooManySegments, len(lines), p.config.maxSegments)
	}

	msg := hl7.NewMessageWithDelimiters(delims)

	for i, line := range lines {
		if i%100 == 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrContextCanceled, ctx.Err())
			default:
			}
		}

		trimmed := bytes.TrimSpace(line)
		if len(trimmed) == 0 {
			if p.config.allowEmptySegments {
				continue
			}
			if p.config.errorRecovery == RecoveryStrict && p.config.strictMode {
				return nil, &hl7.ParseError{Message: ErrEmptySegment.Error(), Line: i + 1}
			}
			continue
		}

		segID := segmentID(trimmed)
		if err := validateSegmentID(segID); err != nil {
			if !p.recover(&diag, i, err) {
				return nil, &hl7.ParseError{Message: err.Error(), Line: i + 1, Cause: err}
			}
			diag.SegmentsSkipped++
			continue
		}

		if err := p.checkFieldLengths(trimmed, delims); err != nil {
			if !p.recover(&diag, i, err) {
				return nil, &hl7.ParseError{Message: err.Error(), Line: i + 1, Cause: err}
			}
			diag.SegmentsSkipped++
			continue
		}

		seg, err := hl7.ParseSegment([]rune(string(trimmed)), delims)
		if err != nil && p.config.errorRecovery == RecoveryBestEffort {
			if repaired, ok := repairTruncatedSegment(trimmed, delims); ok {
				diag.Warnings = append(diag.Warnings, hl7.Diagnostic{
					Severity: hl7.SeverityWarning,
					Message:  fmt.Sprintf("segment %d truncated before any field separator; repaired as empty segment: %v", i+1, err),
					Location: fmt.Sprintf("line %d", i+1),
					Code:     hl7.CodeSkippedSegment,
				})
				seg, err = repaired, nil
			}
		}
		if err != nil {
			if !p.recover(&diag, i, err) {
				return nil, &hl7.ParseError{Message: "failed to parse segment", Line: i + 1, Cause: err}
			}
			diag.SegmentsSkipped++
			continue
		}

		if segID != "MSH" && segID[0] == 'Z' && !p.config.allowCustomSegments {
			diag.Warnings = append(diag.Warnings, hl7.Diagnostic{
				Severity: hl7.SeverityWarning,
				Message:  fmt.Sprintf("custom segment %s rejected by configuration", segID),
				Location: fmt.Sprintf("%s[%d]", segID, i),
				Code:     hl7.CodeCustomSegmentBlocked,
			})
			diag.SegmentsSkipped++
			continue
		}
		if segID != "MSH" && !knownSegment(segID) {
			diag.Warnings = append(diag.Warnings, hl7.Diagnostic{
				Severity: hl7.SeverityWarning,
				Message:  fmt.Sprintf("unrecognized segment id %s", segID),
				Location: fmt.Sprintf("%s[%d]", segID, i),
				Code:     hl7.CodeUnknownSegment,
			})
		}

		if err := msg.AddSegment(seg); err != nil {
			if !p.recover(&diag, i, err) {
				return nil, &hl7.ParseError{Message: "failed to add segment", Line: i + 1, Cause: err}
			}
			diag.SegmentsSkipped++
			continue
		}
		diag.SegmentsParsed++
	}

	allSegs := msg.AllSegments()
	if len(allSegs) == 0 || allSegs[0].Name() != "MSH" {
		return nil, hl7.ErrMissingMSH
	}

	if p.config.strictMode {
		p.checkRequiredHeaderFields(msg, &diag)
	}

	if p.config.respectMSH18 || p.config.validateEncoding {
		p.consultMSH18(msg, decoded, &diag)
	}

	diag.ParseTime = time.Since(start)
	return &ParseResult{Tree: msg, Diagnostics: diag}, nil
}

// recover reports whether processing should continue past a malformed
// segment given the configured error-recovery policy, recording a
// diagnostic when it does.
func (p *parser) recover(diag *Diagnostics, line int, cause error) bool {
	if p.config.errorRecovery == RecoveryStrict {
		return false
	}
	diag.Warnings = append(diag.Warnings, hl7.Diagnostic{
		Severity: hl7.SeverityWarning,
		Message:  cause.Error(),
		Location: fmt.Sprintf("line %d", line+1),
		Code:     hl7.CodeSkippedSegment,
	})
	return true
}

// repairTruncatedSegment retries a segment line that failed to parse
// only because it ended before a single field separator (e.g. a bare
// "MSH" with nothing following it), appending one field separator and
// parsing again. Used by RecoveryBestEffort to tolerate a segment
// missing trailing fields instead of dropping it outright.
func repairTruncatedSegment(trimmed []byte, delims *hl7.Delimiters) (hl7.Segment, bool) {
	padded := append(append([]byte{}, trimmed...), byte(delims.Field))
	seg, err := hl7.ParseSegment([]rune(string(padded)), delims)
	if err != nil {
		return nil, false
	}
	return seg, true
}

// decode applies the configured (or auto-detected) character-set
// interpretation to raw bytes, returning text ready for segment
// splitting.
func (p *parser) decode(data []byte) ([]byte, Diagnostics) {
	var diag Diagnostics

	if p.config.encoding != EncodingAuto {
		name := charsetEncodingName(p.config.encoding)
		out, err := charset.Decode(data, name)
		if err != nil {
			diag.Warnings = append(diag.Warnings, hl7.Diagnostic{
				Severity: hl7.SeverityWarning,
				Message:  err.Error(),
				Code:     hl7.CodeEncodingMismatch,
			})
			return data, diag
		}
		return out, diag
	}

	det := charset.Detect(data)
	out, err := charset.Decode(det.Bytes, det.Name)
	if err != nil {
		return det.Bytes, diag
	}
	return out, diag
}

// consultMSH18 reads MSH-18 (if present) and, depending on
// respect_msh18/validate_encoding, records an encoding diagnostic.
func (p *parser) consultMSH18(msg hl7.Message, raw []byte, diag *Diagnostics) {
	raw18, err := msg.Get("MSH.18")
	if err != nil || raw18 == "" {
		return
	}
	resolved, unresolved := charset.ParseMSH18(raw18, msg.Delimiters())
	for _, u := range unresolved {
		diag.Warnings = append(diag.Warnings, hl7.Diagnostic{
			Severity: hl7.SeverityWarning,
			Message:  fmt.Sprintf("MSH-18 declares unrecognized character set %q", u),
			Location: "MSH-18",
			Code:     hl7.CodeEncodingMismatch,
		})
	}
	if !p.config.validateEncoding || len(resolved) == 0 {
		return
	}
	if warning, ok := charset.ValidateEncoding(raw, resolved); !ok {
		diag.Warnings = append(diag.Warnings, hl7.Diagnostic{
			Severity: hl7.SeverityWarning,
			Message:  warning,
			Location: "MSH-18",
			Code:     hl7.CodeEncodingMismatch,
		})
	}
}

// checkRequiredHeaderFields warns when a small set of commonly-required
// MSH fields (message type, control id) are blank.
func (p *parser) checkRequiredHeaderFields(msg hl7.Message, diag *Diagnostics) {
	required := map[string]string{
		"MSH.9":  "message type",
		"MSH.10": "message control id",
	}
	for loc, desc := range required {
		v, err := msg.Get(loc)
		if err != nil || v == "" {
			diag.Warnings = append(diag.Warnings, hl7.Diagnostic{
				Severity: hl7.SeverityWarning,
				Message:  fmt.Sprintf("required header field %s (%s) is empty", loc, desc),
				Location: loc,
				Code:     hl7.CodeEmptyRequiredField,
			})
		}
	}
}

// stripMLLP removes MLLP framing from the data if present.
// MLLP format: <VT>message<FS><CR> where VT=0x0B, FS=0x1C, CR=0x0D
func stripMLLP(data []byte) []byte {
	if len(data) == 0 {
		return data
	}

	if data[0] == mllpStartByte {
		data = data[1:]
	}

	if len(data) >= 2 {
		if data[len(data)-2] == mllpEndByte1 && data[len(data)-1] == mllpEndByte2 {
			data = data[:len(data)-2]
		} else if data[len(data)-1] == mllpEndByte1 {
			data = data[:len(data)-1]
		}
	}

	return data
}

// splitSegments splits decoded text into individual segment byte
// slices, honoring the configured Terminator. Empty lines are
// discarded.
func (p *parser) splitSegments(data []byte) [][]byte {
	var raw [][]byte
	switch p.config.segmentTerminator {
	case TerminatorLF:
		raw = bytes.Split(data, []byte{'\n'})
	case TerminatorCRLF:
		raw = bytes.Split(data, []byte{'\r', '\n'})
	case TerminatorAny:
		normalized := bytes.ReplaceAll(data, []byte{'\r', '\n'}, []byte{'\r'})
		normalized = bytes.ReplaceAll(normalized, []byte{'\n'}, []byte{'\r'})
		raw = bytes.Split(normalized, []byte{'\r'})
	default: // TerminatorCR
		raw = bytes.Split(data, []byte{'\r'})
	}

	segments := make([][]byte, 0, len(raw))
	for _, line := range raw {
		trimmed := bytes.TrimSpace(line)
		if len(trimmed) == 0 {
			continue
		}
		segments = append(segments, line)
	}
	return segments
}

// checkFieldLengths validates that no field exceeds the maximum length
// (counted in codepoints, not bytes).
func (p *parser) checkFieldLengths(segmentData []byte, delims *hl7.Delimiters) error {
	runes := []rune(string(segmentData))
	start := 0
	fieldNum := 0

	for i := 0; i <= len(runes); i++ {
		if i == len(runes) || runes[i] == delims.Field {
			fieldLen := i - start
			if fieldLen > p.config.maxFieldLength {
				return fmt.Errorf("%w: field %d is %d codepoints, max %d",
					ErrFieldTooLong, fieldNum, fieldLen, p.config.maxFieldLength)
			}
			start = i + 1
			fieldNum++
		}
	}

	return nil
}

// segmentID extracts the leading segment identifier from a trimmed
// segment line.
func segmentID(line []byte) string {
	for i, b := range line {
		if b < 'A' || b > 'Z' {
			if b >= '0' && b <= '9' && i > 0 {
				continue
			}
			return string(line[:i])
		}
	}
	return string(line)
}

// validateSegmentID enforces the 2-3 character, uppercase-alphanumeric,
// first-character-alphabetic segment id rule.
func validateSegmentID(id string) error {
	if len(id) < 2 || len(id) > 3 {
		return fmt.Errorf("%w: %q has length %d, want 2-3", hl7.ErrInvalidSegmentID, id, len(id))
	}
	r := []rune(id)
	if !unicode.IsUpper(r[0]) || !unicode.IsLetter(r[0]) {
		return fmt.Errorf("%w: %q must start with an uppercase letter", hl7.ErrInvalidSegmentID, id)
	}
	for _, c := range r[1:] {
		if !unicode.IsUpper(c) && !unicode.IsDigit(c) {
			return fmt.Errorf("%w: %q must be uppercase alphanumeric", hl7.ErrInvalidSegmentID, id)
		}
	}
	return nil
}

// knownSegment reports whether id is one of the common HL7 v2.x
// segment identifiers this library recognizes for warning purposes.
// Unrecognized, non-Z ids are still parsed generically; this only
// drives the "unknown segment" diagnostic.
func knownSegment(id string) bool {
	_, ok := commonSegments[id]
	return ok
}

var commonSegments = map[string]bool{
	"MSH": true, "EVN": true, "PID": true, "PD1": true, "NK1": true,
	"PV1": true, "PV2": true, "OBX": true, "OBR": true, "ORC": true,
	"NTE": true, "DG1": true, "AL1": true, "MSA": true, "ERR": true,
	"QRD": true, "QRF": true, "RXA": true, "RXR": true, "IN1": true,
	"IN2": true, "GT1": true, "ACC": true, "UB1": true, "UB2": true,
	"BHS": true, "BTS": true, "FHS": true, "FTS": true,
}
