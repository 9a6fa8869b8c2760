package facade

import "github.com/healthbridge/hl7v2/hl7"

// ADT is a read-only view over an admit/discharge/transfer message.
type ADT struct {
	msg hl7.Message
}

// NewADT wraps msg as an ADT facade. Returns a WrongMessageTypeError if
// MSH-9's first component is not "ADT".
func NewADT(msg hl7.Message) (*ADT, error) {
	if err := requireType(msg, "ADT"); err != nil {
		return nil, err
	}
	return &ADT{msg: msg}, nil
}

// Raw returns the underlying message.
func (a *ADT) Raw() hl7.Message { return a.msg }

// TriggerEvent returns the event code from MSH-9 (e.g. "A01").
func (a *ADT) TriggerEvent() string { return triggerEvent(a.msg) }

// ControlID returns MSH-10.
func (a *ADT) ControlID() string { return a.msg.ControlID() }

// MSH returns the message header segment.
func (a *ADT) MSH() (hl7.Segment, bool) { return a.msg.Segment("MSH") }

// EVN returns the event type segment.
func (a *ADT) EVN() (hl7.Segment, bool) { return a.msg.Segment("EVN") }

// PID returns the patient identification segment.
func (a *ADT) PID() (hl7.Segment, bool) { return a.msg.Segment("PID") }

// PV1 returns the patient visit segment, if present.
func (a *ADT) PV1() (hl7.Segment, bool) { return a.msg.Segment("PV1") }

// ValidateDetailed reports the minimum structural requirements for an
// ADT message: EVN and PID must both be present.
func (a *ADT) ValidateDetailed() DetailedResult {
	var failures []Failure
	failures = requireSegment(a.msg, "EVN", failures)
	failures = requireSegment(a.msg, "PID", failures)
	return DetailedResult{Failures: failures}
}
