package hl7

import "errors"

// Sentinel error kinds shared across the codec, transport, and
// conformance packages. Each package wraps one of these with
// location-specific context via fmt.Errorf("%w: ...", ...).
var (
	// ErrMalformedMessage indicates structural corruption detected while
	// parsing in strict mode (a segment or field could not be tokenized).
	ErrMalformedMessage = errors.New("malformed message")
	// ErrInvalidEncodingCharacters indicates the five encoding characters
	// are not pairwise distinct single-codepoint printable characters.
	ErrInvalidEncodingCharacters = errors.New("invalid encoding characters")
	// ErrInvalidSegmentID indicates a segment identifier failed the
	// 2-3 character uppercase-alphanumeric-starting-with-a-letter rule.
	ErrInvalidSegmentID = errors.New("invalid segment id")
	// ErrTooLarge indicates the input exceeded a configured size limit.
	ErrTooLarge = errors.New("input exceeds configured maximum size")
	// ErrEncodingMismatch indicates the declared character set disagrees
	// with the bytes actually observed.
	ErrEncodingMismatch = errors.New("declared character set does not match observed encoding")
	// ErrWrongMessageType indicates a typed facade was constructed from a
	// message whose MSH-9 does not match the expected message code.
	ErrWrongMessageType = errors.New("message type does not match facade")
	// ErrValidationFailure is the aggregate error a caller may surface when
	// treating a non-empty conformance issue list as fatal.
	ErrValidationFailure = errors.New("conformance validation failed")
	// ErrBuildError is the base sentinel for builder finalization failures.
	ErrBuildError = errors.New("build error")
	// ErrAfterFinish indicates feed was called on a streaming parser or
	// deframer after finish/close.
	ErrAfterFinish = errors.New("feed after finish")
	// ErrInvalidFrame indicates malformed MLLP framing bytes.
	ErrInvalidFrame = errors.New("invalid mllp frame")
	// ErrInvalidHeader indicates the input does not begin with "MSH" or is
	// shorter than eight characters in total.
	ErrInvalidHeader = errors.New("invalid message header")
	// ErrUnclosedEscape indicates an escape character opened a sequence
	// with no matching close before end of input.
	ErrUnclosedEscape = errors.New("unclosed escape sequence")
	// ErrUnknownEscape indicates an unrecognized token between escape
	// characters.
	ErrUnknownEscape = errors.New("unknown escape sequence")
	// ErrInvalidEnvelope indicates a batch/file envelope is missing its
	// required header or trailer segment.
	ErrInvalidEnvelope = errors.New("invalid batch/file envelope")
)
