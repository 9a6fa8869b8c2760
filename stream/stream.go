// Package stream provides an incremental HL7 v2.x segment parser fed
// arbitrary byte chunks, for callers reading from a socket or other
// streaming source where full messages don't arrive atomically.
package stream

import (
	"bytes"
	"fmt"

	"github.com/healthbridge/hl7v2/hl7"
	"github.com/healthbridge/hl7v2/parse"
)

// Parser is an incremental, single-threaded segment parser. A Parser
// is not safe for concurrent Feed/Next calls on the same instance;
// callers must serialize them.
type Parser struct {
	delims            *hl7.Delimiters
	customDelimiters  bool
	terminator        parse.Terminator
	maxBufferedBytes  int
	errorRecovery     parse.ErrorRecovery
	allowEmptySegment bool

	buf      []byte
	queue    []hl7.Segment
	warnings []hl7.Diagnostic
	finished bool
}

// Option configures a Parser.
type Option func(*Parser)

// WithDelimiters fixes the delimiters used to parse every segment,
// instead of detecting them from the first MSH line fed in.
func WithDelimiters(d *hl7.Delimiters) Option {
	return func(p *Parser) {
		p.delims = d
		p.customDelimiters = true
	}
}

// WithTerminator selects how buffered bytes are split into segment
// lines. Default is parse.TerminatorCR.
func WithTerminator(t parse.Terminator) Option {
	return func(p *Parser) { p.terminator = t }
}

// WithMaxBufferedBytes bounds the total unconsumed buffered bytes the
// Parser will hold before Feed returns hl7.ErrTooLarge. Default 16 MiB.
func WithMaxBufferedBytes(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxBufferedBytes = n
		}
	}
}

// WithErrorRecovery selects the policy applied to a malformed segment
// line completed by Feed. Default parse.RecoveryStrict.
func WithErrorRecovery(r parse.ErrorRecovery) Option {
	return func(p *Parser) { p.errorRecovery = r }
}

const defaultMaxBufferedBytes = 1 << 24

// New creates a streaming Parser.
func New(opts ...Option) *Parser {
	p := &Parser{
		terminator:       parse.TerminatorCR,
		maxBufferedBytes: defaultMaxBufferedBytes,
		errorRecovery:    parse.RecoveryStrict,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Feed appends chunk to the internal buffer and parses out any
// complete segment lines, enqueuing each as a Segment retrievable via
// Next. Feed after Finish returns hl7.ErrAfterFinish.
func (p *Parser) Feed(chunk []byte) error {
	if p.finished {
		return hl7.ErrAfterFinish
	}
	if len(p.buf)+len(chunk) > p.maxBufferedBytes {
		return fmt.Errorf("%w: %d buffered bytes, max %d", hl7.ErrTooLarge, len(p.buf)+len(chunk), p.maxBufferedBytes)
	}
	p.buf = append(p.buf, chunk...)
	return p.drain(false)
}

// Next dequeues the next fully-parsed Segment, if any is available.
func (p *Parser) Next() (hl7.Segment, bool) {
	if len(p.queue) == 0 {
		return nil, false
	}
	seg := p.queue[0]
	p.queue = p.queue[1:]
	return seg, true
}

// Warnings returns the diagnostics accumulated by non-strict error
// recovery since the last Reset.
func (p *Parser) Warnings() []hl7.Diagnostic {
	return p.warnings
}

// Finish flushes any buffered partial line as a final segment (if
// non-empty) and marks the Parser closed to further Feed calls.
// Finish is idempotent.
func (p *Parser) Finish() error {
	if p.finished {
		return nil
	}
	if err := p.drain(true); err != nil {
		p.finished = true
		return err
	}
	p.finished = true
	return nil
}

// Reset discards all buffered and queued state, returning the Parser
// to its initial state.
func (p *Parser) Reset() {
	p.buf = nil
	p.queue = nil
	p.warnings = nil
	p.finished = false
}

// IsFinished reports whether Finish has been called.
func (p *Parser) IsFinished() bool {
	return p.finished
}

func (p *Parser) terminatorBytes() [][]byte {
	switch p.terminator {
	case parse.TerminatorLF:
		return [][]byte{{'\n'}}
	case parse.TerminatorCRLF:
		return [][]byte{{'\r', '\n'}}
	case parse.TerminatorAny:
		return [][]byte{{'\r', '\n'}, {'\r'}, {'\n'}}
	default:
		return [][]byte{{'\r'}}
	}
}

// drain extracts complete lines from the buffer and parses each into a
// segment. If flush is true, any remaining partial line is also
// parsed as a final segment.
func (p *Parser) drain(flush bool) error {
	for {
		idx, termLen := p.indexTerminator(p.buf)
		if idx < 0 {
			break
		}
		line := p.buf[:idx]
		p.buf = p.buf[idx+termLen:]
		if err := p.parseLine(line); err != nil {
			return err
		}
	}

	if flush && len(bytes.TrimSpace(p.buf)) > 0 {
		line := p.buf
		p.buf = nil
		if err := p.parseLine(line); err != nil {
			return err
		}
	}

	return nil
}

func (p *Parser) indexTerminator(buf []byte) (idx, length int) {
	best := -1
	bestLen := 0
	for _, term := range p.terminatorBytes() {
		if i := bytes.Index(buf, term); i >= 0 && (best < 0 || i < best) {
			best = i
			bestLen = len(term)
		}
	}
	return best, bestLen
}

func (p *Parser) parseLine(line []byte) error {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return nil
	}

	if p.delims == nil {
		if !bytes.HasPrefix(trimmed, []byte("MSH")) {
			return p.recoverable(fmt.Errorf("%w: first segment is not MSH", hl7.ErrInvalidHeader))
		}
		d, err := hl7.Detect(trimmed)
		if err != nil {
			return p.recoverable(err)
		}
		if err := d.Validate(); err != nil {
			return p.recoverable(err)
		}
		p.delims = d
	}

	seg, err := hl7.ParseSegment([]rune(string(trimmed)), p.delims)
	if err != nil && p.errorRecovery == parse.RecoveryBestEffort {
		if repaired, ok := repairTruncatedSegment(trimmed, p.delims); ok {
			p.warnings = append(p.warnings, hl7.Diagnostic{
				Severity: hl7.SeverityWarning,
				Message:  fmt.Sprintf("segment truncated before any field separator; repaired as empty segment: %v", err),
				Code:     hl7.CodeSkippedSegment,
			})
			seg, err = repaired, nil
		}
	}
	if err != nil {
		return p.recoverable(err)
	}
	p.queue = append(p.queue, seg)
	return nil
}

// repairTruncatedSegment retries a segment line that failed to parse
// only because it ended before a single field separator, appending
// one field separator and parsing again. Mirrors parse.Parser's
// RecoveryBestEffort handling for the same truncation case.
func repairTruncatedSegment(trimmed []byte, delims *hl7.Delimiters) (hl7.Segment, bool) {
	padded := append(append([]byte{}, trimmed...), byte(delims.Field))
	seg, err := hl7.ParseSegment([]rune(string(padded)), delims)
	if err != nil {
		return nil, false
	}
	return seg, true
}

// recoverable either records a warning and continues (non-strict
// modes) or returns the error to the caller (strict mode).
func (p *Parser) recoverable(err error) error {
	if p.errorRecovery == parse.RecoveryStrict {
		return err
	}
	p.warnings = append(p.warnings, hl7.Diagnostic{
		Severity: hl7.SeverityWarning,
		Message:  err.Error(),
		Code:     hl7.CodeSkippedSegment,
	})
	return nil
}
