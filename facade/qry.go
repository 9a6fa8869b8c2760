package facade

import "github.com/healthbridge/hl7v2/hl7"

// QRY is a read-only view over a query-by-parameter message using the
// original query (QRD/QRF) grammar.
type QRY struct {
	msg hl7.Message
}

// NewQRY wraps msg as a QRY facade. Returns a WrongMessageTypeError if
// MSH-9's first component is not "QRY".
func NewQRY(msg hl7.Message) (*QRY, error) {
	if err := requireType(msg, "QRY"); err != nil {
		return nil, err
	}
	return &QRY{msg: msg}, nil
}

// Raw returns the underlying message.
func (q *QRY) Raw() hl7.Message { return q.msg }

// ControlID returns MSH-10.
func (q *QRY) ControlID() string { return q.msg.ControlID() }

// QRD returns the query definition segment.
func (q *QRY) QRD() (hl7.Segment, bool) { return q.msg.Segment("QRD") }

// QRF returns the query filter segment, if present.
func (q *QRY) QRF() (hl7.Segment, bool) { return q.msg.Segment("QRF") }

// ValidateDetailed reports the minimum structural requirements for a
// QRY message: QRD must be present.
func (q *QRY) ValidateDetailed() DetailedResult {
	var failures []Failure
	failures = requireSegment(q.msg, "QRD", failures)
	return DetailedResult{Failures: failures}
}
