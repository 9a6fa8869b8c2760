package facade

import "github.com/healthbridge/hl7v2/hl7"

// ACK is a read-only view over a general acknowledgment message. It
// complements the ack package's Builder, which constructs ACK messages
// rather than inspecting them.
type ACK struct {
	msg hl7.Message
}

// NewACK wraps msg as an ACK facade. Returns a WrongMessageTypeError if
// MSH-9's first component is not "ACK".
func NewACK(msg hl7.Message) (*ACK, error) {
	if err := requireType(msg, "ACK"); err != nil {
		return nil, err
	}
	return &ACK{msg: msg}, nil
}

// Raw returns the underlying message.
func (a *ACK) Raw() hl7.Message { return a.msg }

// ControlID returns MSH-10.
func (a *ACK) ControlID() string { return a.msg.ControlID() }

// MSA returns the message acknowledgment segment.
func (a *ACK) MSA() (hl7.Segment, bool) { return a.msg.Segment("MSA") }

// AckCode returns MSA-1 (e.g. "AA", "AE", "AR"), or "" if absent.
func (a *ACK) AckCode() string {
	v, err := a.msg.Get("MSA.1")
	if err != nil {
		return ""
	}
	return v
}

// AckedControlID returns MSA-2, the control ID of the message being
// acknowledged.
func (a *ACK) AckedControlID() string {
	v, err := a.msg.Get("MSA.2")
	if err != nil {
		return ""
	}
	return v
}

// Accepted reports whether AckCode is "AA" (application accept).
func (a *ACK) Accepted() bool { return a.AckCode() == "AA" }

// ValidateDetailed reports the minimum structural requirements for an
// ACK message: MSA must be present.
func (a *ACK) ValidateDetailed() DetailedResult {
	var failures []Failure
	failures = requireSegment(a.msg, "MSA", failures)
	return DetailedResult{Failures: failures}
}
