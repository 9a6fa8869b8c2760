// Package builder provides a fluent, copy-on-finalize construction API
// for hl7.Message trees: set MSH fields by name, add further segments
// by positional field number with helpers for components,
// subcomponents, and repetitions, then call Build to produce a
// validated, independent tree.
package builder

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/healthbridge/hl7v2/hl7"
)

// Option configures a MessageBuilder at construction time.
type Option func(*MessageBuilder)

// WithDelimiters sets the delimiters used for every segment the
// builder produces. Defaults to hl7.DefaultDelimiters().
func WithDelimiters(d *hl7.Delimiters) Option {
	return func(b *MessageBuilder) { b.delims = d }
}

// MessageBuilder fluently assembles an hl7.Message. Its methods mutate
// and return the same builder for chaining. Build is copy-on-finalize:
// it snapshots the builder's current state into an independent tree,
// so one prefix builder (e.g. MSH plus a shared PID) can be extended
// differently and built multiple times without the finalized messages
// interfering with each other or with further builder mutations.
type MessageBuilder struct {
	delims   *hl7.Delimiters
	msh      hl7.Segment
	segments []hl7.Segment
}

// New creates a MessageBuilder. No MSH segment exists until one of the
// MSH field setters (or Field applied to MSH-N) is called.
func New(opts ...Option) *MessageBuilder {
	b := &MessageBuilder{delims: hl7.DefaultDelimiters()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Clone returns an independent copy of the builder's current state,
// letting a caller branch a shared prefix into multiple divergent
// continuations.
func (b *MessageBuilder) Clone() *MessageBuilder {
	nb := &MessageBuilder{delims: b.delims}
	if b.msh != nil {
		nb.msh = cloneSegment(b.msh, b.delims)
	}
	if len(b.segments) > 0 {
		nb.segments = make([]hl7.Segment, len(b.segments))
		for i, s := range b.segments {
			nb.segments[i] = cloneSegment(s, b.delims)
		}
	}
	return nb
}

func (b *MessageBuilder) ensureMSH() hl7.Segment {
	if b.msh != nil {
		return b.msh
	}
	msh := hl7.NewSegment("MSH")
	_ = msh.SetField(1, hl7.NewField(1, string(b.delims.Field)))
	encoding := string([]rune{b.delims.Component, b.delims.Repetition, b.delims.Escape, b.delims.SubComponent})
	_ = msh.SetField(2, hl7.NewField(2, encoding))
	b.msh = msh
	return msh
}

func (b *MessageBuilder) setMSH(seq int, value string) {
	_ = b.ensureMSH().Set(fmt.Sprintf(".%d", seq), value)
}

// SendingApplication sets MSH-3.
func (b *MessageBuilder) SendingApplication(v string) *MessageBuilder {
	b.setMSH(3, v)
	return b
}

// SendingFacility sets MSH-4.
func (b *MessageBuilder) SendingFacility(v string) *MessageBuilder {
	b.setMSH(4, v)
	return b
}

// ReceivingApplication sets MSH-5.
func (b *MessageBuilder) ReceivingApplication(v string) *MessageBuilder {
	b.setMSH(5, v)
	return b
}

// ReceivingFacility sets MSH-6.
func (b *MessageBuilder) ReceivingFacility(v string) *MessageBuilder {
	b.setMSH(6, v)
	return b
}

// DateTime sets MSH-7, the message date/time.
func (b *MessageBuilder) DateTime(v string) *MessageBuilder {
	b.setMSH(7, v)
	return b
}

// MessageType sets MSH-9: message type, trigger event, and an optional
// message structure (e.g. MessageType("ADT", "A01") or
// MessageType("ADT", "A01", "ADT_A01")).
func (b *MessageBuilder) MessageType(msgType, triggerEvent string, structure ...string) *MessageBuilder {
	val := msgType + "^" + triggerEvent
	if len(structure) > 0 && structure[0] != "" {
		val += "^" + structure[0]
	}
	b.setMSH(9, val)
	return b
}

// ControlID sets MSH-10. If never called, Build assigns a
// uuid.NewString() value so every built message still gets a unique
// control ID.
func (b *MessageBuilder) ControlID(v string) *MessageBuilder {
	b.setMSH(10, v)
	return b
}

// ProcessingID sets MSH-11.
func (b *MessageBuilder) ProcessingID(v string) *MessageBuilder {
	b.setMSH(11, v)
	return b
}

// Version sets MSH-12.
func (b *MessageBuilder) Version(v string) *MessageBuilder {
	b.setMSH(12, v)
	return b
}

// Field sets an arbitrary positional MSH field by its user-visible
// field number (3 and above; 1 and 2 are derived from the delimiters).
func (b *MessageBuilder) Field(seq int, v string) *MessageBuilder {
	b.setMSH(seq, v)
	return b
}

// Segment starts a new, non-MSH segment named name and returns a
// SegmentBuilder for setting its fields. The segment is appended to
// the message immediately; further mutation through the returned
// SegmentBuilder continues to apply to it in place.
func (b *MessageBuilder) Segment(name string) *SegmentBuilder {
	seg := hl7.NewSegment(name)
	b.segments = append(b.segments, seg)
	return &SegmentBuilder{seg: seg}
}

func cloneSegment(seg hl7.Segment, delims *hl7.Delimiters) hl7.Segment {
	raw := seg.Bytes(delims)
	cloned, err := hl7.ParseSegment([]rune(string(raw)), delims)
	if err != nil {
		return hl7.NewSegment(seg.Name())
	}
	return cloned
}

// Build validates and produces an independent hl7.Message snapshot of
// the builder's current state. It fails with ErrEmptyMessage if no MSH
// and no other segments were ever added, or ErrNoMSH if segments exist
// but no MSH fields were ever set.
func (b *MessageBuilder) Build() (hl7.Message, error) {
	if b.msh == nil {
		if len(b.segments) == 0 {
			return nil, ErrEmptyMessage
		}
		return nil, ErrNoMSH
	}

	mshCopy := cloneSegment(b.msh, b.delims)
	if v, err := mshCopy.Get(".10"); err == nil && v == "" {
		_ = mshCopy.Set(".10", uuid.NewString())
	}

	segs := make([]hl7.Segment, 0, len(b.segments)+1)
	segs = append(segs, mshCopy)
	for _, s := range b.segments {
		segs = append(segs, cloneSegment(s, b.delims))
	}

	delims := *b.delims
	return hl7.NewMessage(segs, &delims), nil
}
