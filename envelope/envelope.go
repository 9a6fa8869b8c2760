// Package envelope parses HL7 v2.x batch and file groupings: a batch is
// BHS <messages...> BTS, and a file is FHS <batches-or-messages...> FTS.
// Batch and file header/trailer segments are recognized structurally;
// the inner message content is parsed with the same parse.Parser used
// for standalone messages.
package envelope

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/healthbridge/hl7v2/hl7"
	"github.com/healthbridge/hl7v2/parse"
)

// ErrInvalidEnvelope is the sentinel wrapped by InvalidEnvelopeError.
var ErrInvalidEnvelope = errors.New("invalid envelope")

// InvalidEnvelopeError reports a batch or file envelope missing a
// required header or trailer segment.
type InvalidEnvelopeError struct {
	Reason string
}

func (e *InvalidEnvelopeError) Error() string {
	return fmt.Sprintf("invalid envelope: %s", e.Reason)
}

func (e *InvalidEnvelopeError) Unwrap() error { return ErrInvalidEnvelope }

// Batch is a BHS/BTS-delimited group of messages.
type Batch struct {
	Header   hl7.Segment
	Messages []hl7.Message
	Trailer  hl7.Segment
}

// File is an FHS/FTS-delimited group of batches (or bare messages,
// represented as a Batch with a nil Header and Trailer).
type File struct {
	Header  hl7.Segment
	Batches []Batch
	Trailer hl7.Segment
}

// Option configures the parser used for inner message content.
type Option func(*options)

type options struct {
	parserOpts []parse.ParserOption
}

// WithParserOptions forwards options to the parse.Parser used to parse
// each message inside the envelope.
func WithParserOptions(opts ...parse.ParserOption) Option {
	return func(o *options) { o.parserOpts = append(o.parserOpts, opts...) }
}

func buildOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// line is one segment line plus its 3-letter segment ID.
type line struct {
	id  string
	raw []byte
}

func splitLines(data []byte) []line {
	parts := bytes.Split(data, []byte{hl7.SegmentTerminator})
	lines := make([]line, 0, len(parts))
	for _, p := range parts {
		p = bytes.TrimRight(p, "\n")
		if len(p) == 0 {
			continue
		}
		id := string(p)
		if len(id) > 3 {
			id = id[:3]
		}
		lines = append(lines, line{id: id, raw: p})
	}
	return lines
}

// parseHeaderLine parses a single BHS/BTS/FHS/FTS line as a segment
// using the default delimiters; delimiters declared in the line itself
// are not detected.
func parseHeaderLine(l line) (hl7.Segment, error) {
	delims := hl7.DefaultDelimiters()
	return hl7.ParseSegment([]rune(string(l.raw)), delims)
}

// collectMessages parses each run of lines starting with "MSH" up to
// (but excluding) the next "MSH" line as one message.
func collectMessages(lines []line, o *options) ([]hl7.Message, error) {
	var messages []hl7.Message
	var cur [][]byte

	flush := func() error {
		if len(cur) == 0 {
			return nil
		}
		raw := bytes.Join(cur, []byte{hl7.SegmentTerminator})
		p := parse.New(o.parserOpts...)
		result, err := p.Parse(raw)
		if err != nil {
			return err
		}
		messages = append(messages, result.Tree)
		cur = nil
		return nil
	}

	for _, l := range lines {
		if l.id == "MSH" {
			if err := flush(); err != nil {
				return nil, err
			}
		}
		cur = append(cur, l.raw)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return messages, nil
}

// ParseBatch parses a BHS <messages...> BTS grouping. Missing BHS or
// BTS produces an InvalidEnvelopeError.
func ParseBatch(data []byte, opts ...Option) (*Batch, error) {
	o := buildOptions(opts)
	lines := splitLines(data)
	if len(lines) == 0 || lines[0].id != "BHS" {
		return nil, &InvalidEnvelopeError{Reason: "missing BHS"}
	}
	last := len(lines) - 1
	if lines[last].id != "BTS" {
		return nil, &InvalidEnvelopeError{Reason: "missing BTS"}
	}

	header, err := parseHeaderLine(lines[0])
	if err != nil {
		return nil, fmt.Errorf("envelope: parsing BHS: %w", err)
	}
	trailer, err := parseHeaderLine(lines[last])
	if err != nil {
		return nil, fmt.Errorf("envelope: parsing BTS: %w", err)
	}

	messages, err := collectMessages(lines[1:last], o)
	if err != nil {
		return nil, err
	}

	return &Batch{Header: header, Messages: messages, Trailer: trailer}, nil
}

// ParseFile parses an FHS <batches-or-messages...> FTS grouping.
// Missing FHS or FTS produces an InvalidEnvelopeError. Content between
// FHS and FTS may be one or more nested BHS/BTS batches, or bare
// messages with no batch wrapper (returned as a Batch with a nil
// Header and Trailer).
func ParseFile(data []byte, opts ...Option) (*File, error) {
	o := buildOptions(opts)
	lines := splitLines(data)
	if len(lines) == 0 || lines[0].id != "FHS" {
		return nil, &InvalidEnvelopeError{Reason: "missing FHS"}
	}
	last := len(lines) - 1
	if lines[last].id != "FTS" {
		return nil, &InvalidEnvelopeError{Reason: "missing FTS"}
	}

	header, err := parseHeaderLine(lines[0])
	if err != nil {
		return nil, fmt.Errorf("envelope: parsing FHS: %w", err)
	}
	trailer, err := parseHeaderLine(lines[last])
	if err != nil {
		return nil, fmt.Errorf("envelope: parsing FTS: %w", err)
	}

	inner := lines[1:last]
	batches, err := collectBatches(inner, o)
	if err != nil {
		return nil, err
	}

	return &File{Header: header, Batches: batches, Trailer: trailer}, nil
}

// collectBatches groups inner file content into Batches, treating any
// BHS/BTS run as a nested batch and any surrounding MSH-led runs as
// bare-message batches.
func collectBatches(lines []line, o *options) ([]Batch, error) {
	var batches []Batch
	var bare []line

	flushBare := func() error {
		if len(bare) == 0 {
			return nil
		}
		messages, err := collectMessages(bare, o)
		if err != nil {
			return err
		}
		if len(messages) > 0 {
			batches = append(batches, Batch{Messages: messages})
		}
		bare = nil
		return nil
	}

	i := 0
	for i < len(lines) {
		if lines[i].id == "BHS" {
			if err := flushBare(); err != nil {
				return nil, err
			}
			end := i + 1
			for end < len(lines) && lines[end].id != "BTS" {
				end++
			}
			if end >= len(lines) {
				return nil, &InvalidEnvelopeError{Reason: "missing BTS"}
			}
			header, err := parseHeaderLine(lines[i])
			if err != nil {
				return nil, fmt.Errorf("envelope: parsing BHS: %w", err)
			}
			trailer, err := parseHeaderLine(lines[end])
			if err != nil {
				return nil, fmt.Errorf("envelope: parsing BTS: %w", err)
			}
			messages, err := collectMessages(lines[i+1:end], o)
			if err != nil {
				return nil, err
			}
			batches = append(batches, Batch{Header: header, Messages: messages, Trailer: trailer})
			i = end + 1
			continue
		}
		bare = append(bare, lines[i])
		i++
	}
	if err := flushBare(); err != nil {
		return nil, err
	}
	return batches, nil
}
