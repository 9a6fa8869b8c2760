package validate

import (
	"fmt"

	"github.com/healthbridge/hl7v2/hl7"
)

// codeForRule maps a ValidationError's Rule name to the diagnostic code
// that best describes the kind of violation, so callers can switch on
// Issue.Code instead of re-parsing the message string.
func codeForRule(rule string) string {
	switch rule {
	case "datatype":
		return hl7.CodeDataTypeMismatch
	case "pattern":
		return hl7.CodePatternMismatch
	case "length":
		return hl7.CodeLengthViolation
	case "oneOf":
		return hl7.CodeValueNotAllowed
	case "value":
		return hl7.CodeInvalidValue
	case "custom":
		return hl7.CodeCustomRuleFailed
	case "required":
		return hl7.CodeEmptyRequiredField
	default:
		return hl7.CodeEmptyRequiredField
	}
}

// Cardinality bounds how many times a segment may repeat within a
// message. Max of 0 means unbounded.
type Cardinality struct {
	Min int
	Max int
}

// SatisfiedBy reports whether count segment occurrences satisfy this
// cardinality.
func (c Cardinality) SatisfiedBy(count int) bool {
	if count < c.Min {
		return false
	}
	if c.Max > 0 && count > c.Max {
		return false
	}
	return true
}

// Display renders the cardinality the way HL7 conformance profiles
// conventionally print it, e.g. "[1..1]" or "[0..*]".
func (c Cardinality) Display() string {
	if c.Max <= 0 {
		return fmt.Sprintf("[%d..*]", c.Min)
	}
	return fmt.Sprintf("[%d..%d]", c.Min, c.Max)
}

// Optional is the conventional [0..*] cardinality.
func Optional() Cardinality { return Cardinality{Min: 0, Max: 0} }

// RequiredOnce is the conventional [1..1] cardinality.
func RequiredOnce() Cardinality { return Cardinality{Min: 1, Max: 1} }

// RequiredAtLeastOnce is the conventional [1..*] cardinality.
func RequiredAtLeastOnce() Cardinality { return Cardinality{Min: 1, Max: 0} }

// SegmentRequirement describes how many times a segment is expected to
// appear in a conforming message, plus field-level rules. The rules are
// evaluated once against the whole message, not once per occurrence; a
// location without a segment index reads the first occurrence.
type SegmentRequirement struct {
	SegmentID   string
	Cardinality Cardinality
	Rules       RuleSet
}

// Segment builds a SegmentRequirement for id with the given
// cardinality and field rules.
func Segment(id string, card Cardinality, rules ...Rule) SegmentRequirement {
	return SegmentRequirement{SegmentID: id, Cardinality: card, Rules: NewRuleSet(rules...)}
}

// Profile describes the structural and field-level conformance
// requirements for a class of message (e.g. "ADT^A01 at site X").
type Profile struct {
	Name         string
	MessageType  string // e.g. "ADT^A01"; empty means any type
	Segments     []SegmentRequirement
	MessageRules RuleSet // rules evaluated against the whole message regardless of segment
}

// Issue is a structured conformance finding. It shares its shape with
// hl7.Diagnostic so engine output composes with parser diagnostics.
type Issue = hl7.Diagnostic

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithStopOnFirstError halts evaluation as soon as the first
// SeverityError issue is produced.
func WithStopOnFirstError(stop bool) EngineOption {
	return func(e *Engine) { e.stopOnFirstError = stop }
}

// WithMaxIssues caps the number of issues collected; 0 means unbounded.
func WithMaxIssues(n int) EngineOption {
	return func(e *Engine) { e.maxIssues = n }
}

// WithEngineStrictMode promotes missing-segment and cardinality
// violations that would otherwise be warnings into errors.
func WithEngineStrictMode(strict bool) EngineOption {
	return func(e *Engine) { e.strictMode = strict }
}

// Engine evaluates a Profile (or a bare RuleSet) against a message and
// produces a list of Issues, honoring stop-on-first-error, a cap on the
// total number of issues, and a strict mode that escalates structural
// warnings to errors.
type Engine struct {
	stopOnFirstError bool
	maxIssues        int
	strictMode       bool
}

// NewEngine creates a conformance Engine with the given options.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Validate evaluates profile against msg and returns the accumulated
// Issues. An empty return means the message fully conforms.
func (e *Engine) Validate(msg hl7.Message, profile Profile) []Issue {
	var issues []Issue

	if msg == nil {
		return []Issue{{Severity: hl7.SeverityError, Message: "message is nil", Code: hl7.CodeMissingHeader}}
	}

	if profile.MessageType != "" && msg.Type() != profile.MessageType {
		issues = e.collect(issues, Issue{
			Severity: hl7.SeverityError,
			Message:  fmt.Sprintf("message type %q does not match profile %q", msg.Type(), profile.MessageType),
			Location: "MSH.9",
			Code:     hl7.CodeMsgTypeMismatch,
		})
		if e.stopOnFirstError {
			return issues
		}
	}

	for _, req := range profile.Segments {
		count := len(msg.Segments(req.SegmentID))
		if !req.Cardinality.SatisfiedBy(count) {
			sev := hl7.SeverityWarning
			if e.strictMode || req.Cardinality.Min > count {
				sev = hl7.SeverityError
			}
			issues = e.collect(issues, Issue{
				Severity: sev,
				Message: fmt.Sprintf("segment %s occurs %d time(s), want %s",
					req.SegmentID, count, req.Cardinality.Display()),
				Location: req.SegmentID,
				Code:     hl7.CodeSegmentCardinality,
			})
			if e.full(issues) || (sev == hl7.SeverityError && e.stopOnFirstError) {
				return issues
			}
		}

		if req.Rules == nil {
			continue
		}
		for _, rule := range req.Rules.Rules() {
			for _, verr := range rule.Validate(msg) {
				issues = e.collect(issues, Issue{
					Severity: hl7.SeverityError,
					Message:  verr.Error(),
					Location: verr.Location,
					Code:     codeForRule(verr.Rule),
				})
				if e.full(issues) || e.stopOnFirstError {
					return issues
				}
			}
		}
	}

	if profile.MessageRules != nil {
		for _, rule := range profile.MessageRules.Rules() {
			for _, verr := range rule.Validate(msg) {
				issues = e.collect(issues, Issue{
					Severity: hl7.SeverityError,
					Message:  verr.Error(),
					Location: verr.Location,
					Code:     codeForRule(verr.Rule),
				})
				if e.full(issues) || e.stopOnFirstError {
					return issues
				}
			}
		}
	}

	return issues
}

// ValidateRules evaluates a bare RuleSet against msg, without any
// segment-cardinality or message-type checking. Useful for ad hoc
// validation that doesn't warrant building a full Profile.
func (e *Engine) ValidateRules(msg hl7.Message, rules RuleSet) []Issue {
	var issues []Issue
	if msg == nil || rules == nil {
		return issues
	}
	for _, rule := range rules.Rules() {
		for _, verr := range rule.Validate(msg) {
			issues = e.collect(issues, Issue{
				Severity: hl7.SeverityError,
				Message:  verr.Error(),
				Location: verr.Location,
				Code:     codeForRule(verr.Rule),
			})
			if e.full(issues) {
				return issues
			}
		}
	}
	return issues
}

func (e *Engine) collect(issues []Issue, issue Issue) []Issue {
	return append(issues, issue)
}

func (e *Engine) full(issues []Issue) bool {
	return e.maxIssues > 0 && len(issues) >= e.maxIssues
}
