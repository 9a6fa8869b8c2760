package builder

import (
	"fmt"

	"github.com/healthbridge/hl7v2/hl7"
)

// SegmentBuilder fluently sets fields on one segment added via
// MessageBuilder.Segment. Its methods mutate and return the same
// SegmentBuilder for chaining.
type SegmentBuilder struct {
	seg hl7.Segment
}

func (sb *SegmentBuilder) ensureField(seq int) hl7.Field {
	if f, ok := sb.seg.Field(seq); ok {
		return f
	}
	_ = sb.seg.SetField(seq, hl7.NewField(seq, ""))
	f, _ := sb.seg.Field(seq)
	return f
}

// Field sets the full value of field seq (1-based).
func (sb *SegmentBuilder) Field(seq int, value string) *SegmentBuilder {
	sb.ensureField(seq).Set("", value)
	return sb
}

// Component sets component comp (1-based) of field seq's first
// repetition.
func (sb *SegmentBuilder) Component(seq, comp int, value string) *SegmentBuilder {
	sb.ensureField(seq).Set(fmt.Sprintf(".%d", comp), value)
	return sb
}

// SubComponent sets subcomponent sub (1-based) of component comp of
// field seq's first repetition.
func (sb *SegmentBuilder) SubComponent(seq, comp, sub int, value string) *SegmentBuilder {
	sb.ensureField(seq).Set(fmt.Sprintf(".%d.%d", comp, sub), value)
	return sb
}

// Repetition sets the full value of repetition rep (0-based) of field
// seq.
func (sb *SegmentBuilder) Repetition(seq, rep int, value string) *SegmentBuilder {
	sb.ensureField(seq).Set(fmt.Sprintf("[%d]", rep), value)
	return sb
}

// RepetitionComponent sets component comp (1-based) of repetition rep
// (0-based) of field seq.
func (sb *SegmentBuilder) RepetitionComponent(seq, rep, comp int, value string) *SegmentBuilder {
	sb.ensureField(seq).Set(fmt.Sprintf("[%d].%d", rep, comp), value)
	return sb
}

// Segment returns the segment built so far. Callers typically don't
// need this directly; it's exposed for advanced cases that need
// direct hl7.Segment access mid-build.
func (sb *SegmentBuilder) Segment() hl7.Segment {
	return sb.seg
}
