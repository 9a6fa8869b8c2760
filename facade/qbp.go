package facade

import "github.com/healthbridge/hl7v2/hl7"

// QBP is a read-only view over a query-by-parameter message using the
// newer parameterized query (QPD/RCP) grammar.
type QBP struct {
	msg hl7.Message
}

// NewQBP wraps msg as a QBP facade. Returns a WrongMessageTypeError if
// MSH-9's first component is not "QBP".
func NewQBP(msg hl7.Message) (*QBP, error) {
	if err := requireType(msg, "QBP"); err != nil {
		return nil, err
	}
	return &QBP{msg: msg}, nil
}

// Raw returns the underlying message.
func (q *QBP) Raw() hl7.Message { return q.msg }

// TriggerEvent returns the query profile code from MSH-9 (e.g. "Q11").
func (q *QBP) TriggerEvent() string { return triggerEvent(q.msg) }

// ControlID returns MSH-10.
func (q *QBP) ControlID() string { return q.msg.ControlID() }

// QPD returns the query parameter definition segment.
func (q *QBP) QPD() (hl7.Segment, bool) { return q.msg.Segment("QPD") }

// RCP returns the response control parameter segment, if present.
func (q *QBP) RCP() (hl7.Segment, bool) { return q.msg.Segment("RCP") }

// QueryTag returns QPD-2, the caller-assigned tag correlating this
// query with its response.
func (q *QBP) QueryTag() string {
	v, err := q.msg.Get("QPD.2")
	if err != nil {
		return ""
	}
	return v
}

// ValidateDetailed reports the minimum structural requirements for a
// QBP message: QPD must be present.
func (q *QBP) ValidateDetailed() DetailedResult {
	var failures []Failure
	failures = requireSegment(q.msg, "QPD", failures)
	return DetailedResult{Failures: failures}
}
