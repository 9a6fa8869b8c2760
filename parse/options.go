// Package parse provides HL7 v2.x message parsing functionality.
package parse

import (
	"github.com/healthbridge/hl7v2/charset"
	"github.com/healthbridge/hl7v2/hl7"
)

// Default parser configuration values.
const (
	defaultMaxSegments    = 1000    // DoS protection: maximum segments per message
	defaultMaxFieldLength = 65536   // DoS protection: maximum field length in codepoints
	defaultMaxMessageSize = 1 << 24 // DoS protection: 16 MiB ceiling on raw input
)

// Strategy selects how eagerly the parser materializes the tree below
// the segment level.
type Strategy int

const (
	// StrategyEager builds the full field/repetition/component/
	// subcomponent tree at parse time.
	StrategyEager Strategy = iota
	// StrategyLazy defers splitting a field into repetitions and
	// components until that field is first accessed.
	StrategyLazy
)

// Encoding selects how raw bytes are interpreted before tokenizing.
type Encoding int

const (
	EncodingAuto Encoding = iota
	EncodingUTF8
	EncodingASCII
	EncodingLatin1
	EncodingUTF16LE
	EncodingUTF16BE
	EncodingWindows1252
)

// Terminator selects how segment lines are delimited.
type Terminator int

const (
	// TerminatorCR splits only on carriage return (the HL7 standard).
	TerminatorCR Terminator = iota
	// TerminatorLF splits only on line feed.
	TerminatorLF
	// TerminatorCRLF splits on a CRLF pair.
	TerminatorCRLF
	// TerminatorAny splits on either CR or LF, treating consecutive
	// CRLF pairs as a single boundary.
	TerminatorAny
)

// ErrorRecovery selects the policy applied to a malformed segment line.
type ErrorRecovery int

const (
	// RecoveryStrict fails the entire parse on the first malformed
	// segment.
	RecoveryStrict ErrorRecovery = iota
	// RecoverySkipInvalid drops malformed segments, recording a
	// diagnostic, and continues parsing.
	RecoverySkipInvalid
	// RecoveryBestEffort behaves like RecoverySkipInvalid but also
	// tolerates minor deviations such as missing trailing fields.
	RecoveryBestEffort
)

// parserConfig holds the parser configuration.
type parserConfig struct {
	strategy             Strategy
	strictMode           bool
	allowEmptySegments   bool
	customDelimiters     *hl7.Delimiters
	maxSegments          int
	maxFieldLength       int
	maxMessageSize       int
	allowCustomSegments  bool
	encoding             Encoding
	segmentTerminator    Terminator
	autoDetectDelimiters bool
	errorRecovery        ErrorRecovery
	respectMSH18         bool
	validateEncoding     bool
}

// defaultConfig returns a parser configuration with default values.
func defaultConfig() parserConfig {
	return parserConfig{
		strategy:             StrategyEager,
		strictMode:           false,
		allowEmptySegments:   false,
		customDelimiters:     nil,
		maxSegments:          defaultMaxSegments,
		maxFieldLength:       defaultMaxFieldLength,
		maxMessageSize:       defaultMaxMessageSize,
		allowCustomSegments:  true,
		encoding:             EncodingAuto,
		segmentTerminator:    TerminatorCR,
		autoDetectDelimiters: true,
		errorRecovery:        RecoveryStrict,
		respectMSH18:         false,
		validateEncoding:     false,
	}
}

// ParserOption is a functional option for configuring the parser.
type ParserOption func(*parserConfig)

// WithStrategy selects eager or lazy tree construction.
func WithStrategy(s Strategy) ParserOption {
	return func(c *parserConfig) { c.strategy = s }
}

// WithStrictMode enables or disables strict parsing mode.
// In strict mode, the parser is more rigorous about HL7 compliance
// and will warn about empty required header fields.
func WithStrictMode(strict bool) ParserOption {
	return func(c *parserConfig) {
		c.strictMode = strict
	}
}

// WithAllowEmptySegments configures whether empty segments are allowed.
// Blank segment lines are discarded when the input is split, whether or
// not this is set, so it does not change the parse result.
func WithAllowEmptySegments(allow bool) ParserOption {
	return func(c *parserConfig) {
		c.allowEmptySegments = allow
	}
}

// WithCustomDelimiters sets custom delimiters for parsing.
// When set, the parser will use these delimiters instead of extracting
// them from the MSH segment. This is useful for parsing non-standard
// messages or message fragments.
func WithCustomDelimiters(d *hl7.Delimiters) ParserOption {
	return func(c *parserConfig) {
		c.customDelimiters = d
		c.autoDetectDelimiters = false
	}
}

// WithMaxSegments sets the maximum number of segments allowed in a message.
// This is a DoS protection mechanism to prevent processing of maliciously
// large messages. Default is 1000.
func WithMaxSegments(limit int) ParserOption {
	return func(c *parserConfig) {
		if limit > 0 {
			c.maxSegments = limit
		}
	}
}

// WithMaxFieldLength sets the maximum field length allowed, measured in
// codepoints so multi-byte character sets are not penalized relative
// to ASCII. Default is 65536.
func WithMaxFieldLength(limit int) ParserOption {
	return func(c *parserConfig) {
		if limit > 0 {
			c.maxFieldLength = limit
		}
	}
}

// WithMaxMessageSize sets the maximum raw input size in bytes. Default
// is 16 MiB.
func WithMaxMessageSize(limit int) ParserOption {
	return func(c *parserConfig) {
		if limit > 0 {
			c.maxMessageSize = limit
		}
	}
}

// WithAllowCustomSegments configures whether unknown segment IDs
// starting with "Z" are accepted silently (true) or emit a warning
// diagnostic (false). Default true.
func WithAllowCustomSegments(allow bool) ParserOption {
	return func(c *parserConfig) {
		c.allowCustomSegments = allow
	}
}

// WithEncoding sets the source-byte interpretation. Default is
// EncodingAuto.
func WithEncoding(e Encoding) ParserOption {
	return func(c *parserConfig) {
		c.encoding = e
	}
}

// WithSegmentTerminator sets how segment lines are split.
// The default is carriage return (CR, 0x0D) as per HL7 standard.
func WithSegmentTerminator(t Terminator) ParserOption {
	return func(c *parserConfig) {
		c.segmentTerminator = t
	}
}

// WithAutoDetectDelimiters configures whether delimiters are read from
// the MSH header. Default true; disabled automatically by
// WithCustomDelimiters.
func WithAutoDetectDelimiters(auto bool) ParserOption {
	return func(c *parserConfig) {
		c.autoDetectDelimiters = auto
	}
}

// WithErrorRecovery selects the policy applied to malformed segments.
// Default is RecoveryStrict.
func WithErrorRecovery(r ErrorRecovery) ParserOption {
	return func(c *parserConfig) {
		c.errorRecovery = r
	}
}

// WithRespectMSH18 configures whether the effective character-set
// decode is derived from MSH-18 rather than the encoding hint alone.
func WithRespectMSH18(respect bool) ParserOption {
	return func(c *parserConfig) {
		c.respectMSH18 = respect
	}
}

// WithValidateEncoding configures whether a diagnostic warning is
// emitted when the declared MSH-18 character set disagrees with the
// bytes actually observed.
func WithValidateEncoding(validate bool) ParserOption {
	return func(c *parserConfig) {
		c.validateEncoding = validate
	}
}

// charsetEncoding maps a parser Encoding hint to the charset registry
// Name used for explicit (non-auto) decode.
func charsetEncodingName(e Encoding) charset.Name {
	switch e {
	case EncodingUTF8:
		return charset.UTF8
	case EncodingASCII:
		return charset.ASCII
	case EncodingLatin1:
		return charset.ISO8859_1
	case EncodingUTF16LE:
		return charset.UTF16LE
	case EncodingUTF16BE:
		return charset.UTF16BE
	case EncodingWindows1252:
		return charset.Windows1252
	default:
		return charset.Unknown
	}
}
