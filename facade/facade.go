// Package facade provides thin, read-only typed views over an hl7.Message
// for common message families (ADT, ORU, ORM, ACK, QRY, QBP). Each facade
// exposes accessors for the segments its message type requires and a
// ValidateDetailed method reporting missing structural requirements.
// Facades never mutate the message they wrap.
package facade

import (
	"fmt"
	"strings"

	"github.com/healthbridge/hl7v2/hl7"
)

// WrongMessageTypeError is returned when constructing a facade from a
// message whose MSH-9 first component does not match the facade's
// expected message type code.
type WrongMessageTypeError struct {
	Expected string
	Actual   string
}

func (e *WrongMessageTypeError) Error() string {
	return fmt.Sprintf("wrong message type: expected %s, got %s", e.Expected, e.Actual)
}

// Failure describes one structural requirement a facade's underlying
// message did not satisfy.
type Failure struct {
	Location string
	Message  string
}

// DetailedResult is the outcome of a facade's ValidateDetailed call.
type DetailedResult struct {
	Failures []Failure
}

// IsValid reports whether no failures were found.
func (r DetailedResult) IsValid() bool {
	return len(r.Failures) == 0
}

func messageTypeCode(msg hl7.Message) string {
	t := msg.Type()
	if idx := strings.IndexByte(t, '^'); idx >= 0 {
		return t[:idx]
	}
	return t
}

// triggerEvent returns the second component of MSH-9 (e.g. "A01" from
// "ADT^A01"), or "" if absent.
func triggerEvent(msg hl7.Message) string {
	t := msg.Type()
	idx := strings.IndexByte(t, '^')
	if idx < 0 || idx+1 >= len(t) {
		return ""
	}
	rest := t[idx+1:]
	if end := strings.IndexByte(rest, '^'); end >= 0 {
		rest = rest[:end]
	}
	return rest
}

func requireType(msg hl7.Message, expected string) error {
	if msg == nil {
		return fmt.Errorf("facade: %w", hl7.ErrEmptyMessage)
	}
	if got := messageTypeCode(msg); got != expected {
		return &WrongMessageTypeError{Expected: expected, Actual: got}
	}
	return nil
}

func requireSegment(msg hl7.Message, name string, failures []Failure) []Failure {
	if _, ok := msg.Segment(name); !ok {
		failures = append(failures, Failure{
			Location: name,
			Message:  fmt.Sprintf("required segment %s is missing", name),
		})
	}
	return failures
}
