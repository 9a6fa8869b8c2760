package facade

import "github.com/healthbridge/hl7v2/hl7"

// ORM is a read-only view over a general order message.
type ORM struct {
	msg hl7.Message
}

// NewORM wraps msg as an ORM facade. Returns a WrongMessageTypeError if
// MSH-9's first component is not "ORM".
func NewORM(msg hl7.Message) (*ORM, error) {
	if err := requireType(msg, "ORM"); err != nil {
		return nil, err
	}
	return &ORM{msg: msg}, nil
}

// Raw returns the underlying message.
func (o *ORM) Raw() hl7.Message { return o.msg }

// TriggerEvent returns the event code from MSH-9 (e.g. "O01").
func (o *ORM) TriggerEvent() string { return triggerEvent(o.msg) }

// ControlID returns MSH-10.
func (o *ORM) ControlID() string { return o.msg.ControlID() }

// PID returns the patient identification segment, if present.
func (o *ORM) PID() (hl7.Segment, bool) { return o.msg.Segment("PID") }

// ORC returns all common order segments, in order.
func (o *ORM) ORC() []hl7.Segment { return o.msg.Segments("ORC") }

// OBR returns all observation request segments, in order.
func (o *ORM) OBR() []hl7.Segment { return o.msg.Segments("OBR") }

// ValidateDetailed reports the minimum structural requirements for an
// ORM message: at least one ORC must be present.
func (o *ORM) ValidateDetailed() DetailedResult {
	var failures []Failure
	if len(o.msg.Segments("ORC")) == 0 {
		failures = append(failures, Failure{
			Location: "ORC",
			Message:  "at least one ORC segment is required",
		})
	}
	return DetailedResult{Failures: failures}
}
