package facade

import "github.com/healthbridge/hl7v2/hl7"

// ORU is a read-only view over an observation result message.
type ORU struct {
	msg hl7.Message
}

// NewORU wraps msg as an ORU facade. Returns a WrongMessageTypeError if
// MSH-9's first component is not "ORU".
func NewORU(msg hl7.Message) (*ORU, error) {
	if err := requireType(msg, "ORU"); err != nil {
		return nil, err
	}
	return &ORU{msg: msg}, nil
}

// Raw returns the underlying message.
func (o *ORU) Raw() hl7.Message { return o.msg }

// TriggerEvent returns the event code from MSH-9 (e.g. "R01").
func (o *ORU) TriggerEvent() string { return triggerEvent(o.msg) }

// ControlID returns MSH-10.
func (o *ORU) ControlID() string { return o.msg.ControlID() }

// PID returns the patient identification segment.
func (o *ORU) PID() (hl7.Segment, bool) { return o.msg.Segment("PID") }

// OBR returns the first observation request segment.
func (o *ORU) OBR() (hl7.Segment, bool) { return o.msg.Segment("OBR") }

// OBX returns all observation/result segments, in order.
func (o *ORU) OBX() []hl7.Segment { return o.msg.Segments("OBX") }

// ValidateDetailed reports the minimum structural requirements for an
// ORU message: OBR must be present and at least one OBX must be present.
// The position of the OBX segments relative to OBR is not checked.
func (o *ORU) ValidateDetailed() DetailedResult {
	var failures []Failure
	failures = requireSegment(o.msg, "OBR", failures)
	if len(o.msg.Segments("OBX")) == 0 {
		failures = append(failures, Failure{
			Location: "OBX",
			Message:  "at least one OBX segment is required",
		})
	}
	return DetailedResult{Failures: failures}
}
