package builder

import "github.com/healthbridge/hl7v2/hl7"

// NoMSHError is returned by Build when the builder has accumulated
// non-MSH segments but no MSH fields were ever set.
type NoMSHError struct{}

func (e *NoMSHError) Error() string { return "builder: no MSH segment set" }

func (e *NoMSHError) Unwrap() error { return hl7.ErrMissingMSH }

// EmptyMessageError is returned by Build when the builder has no MSH
// and no other segments at all.
type EmptyMessageError struct{}

func (e *EmptyMessageError) Error() string { return "builder: no segments added" }

func (e *EmptyMessageError) Unwrap() error { return hl7.ErrEmptyMessage }

// ErrNoMSH and ErrEmptyMessage are the sentinels Build's errors wrap,
// reusing the same empty-message/missing-MSH vocabulary the parser
// uses (hl7.ErrEmptyMessage, hl7.ErrMissingMSH).
var (
	ErrNoMSH        = &NoMSHError{}
	ErrEmptyMessage = &EmptyMessageError{}
)
