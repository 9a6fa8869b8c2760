package validate

import (
	"testing"

	"github.com/healthbridge/hl7v2/hl7"
)

func TestCardinalitySatisfiedBy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		card  Cardinality
		count int
		want  bool
	}{
		{"required once satisfied", RequiredOnce(), 1, true},
		{"required once missing", RequiredOnce(), 0, false},
		{"required once too many", RequiredOnce(), 2, false},
		{"optional absent", Optional(), 0, true},
		{"optional present", Optional(), 5, true},
		{"at least once satisfied", RequiredAtLeastOnce(), 3, true},
		{"at least once missing", RequiredAtLeastOnce(), 0, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.card.SatisfiedBy(tt.count); got != tt.want {
				t.Errorf("SatisfiedBy(%d) = %v, want %v", tt.count, got, tt.want)
			}
		})
	}
}

func TestCardinalityDisplay(t *testing.T) {
	t.Parallel()

	if got := RequiredOnce().Display(); got != "[1..1]" {
		t.Errorf("Display() = %q, want [1..1]", got)
	}
	if got := RequiredAtLeastOnce().Display(); got != "[1..*]" {
		t.Errorf("Display() = %q, want [1..*]", got)
	}
}

func newProfileTestMessage() *mockMessage {
	m := newMockMessage()
	m.setField("MSH.9", "ADT^A01")
	m.setField("MSH.10", "MSG001")
	m.segments["MSH"] = newMockSegment("MSH")
	return m
}

func TestEngineValidateMessageTypeMismatch(t *testing.T) {
	t.Parallel()

	msg := newProfileTestMessage()
	profile := Profile{Name: "ADT^A01 mismatch", MessageType: "ORU^R01"}

	engine := NewEngine()
	issues := engine.Validate(msg, profile)
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d: %v", len(issues), issues)
	}
	if issues[0].Code != hl7.CodeMsgTypeMismatch {
		t.Errorf("expected code %s, got %s", hl7.CodeMsgTypeMismatch, issues[0].Code)
	}
}

func TestEngineValidateSegmentCardinality(t *testing.T) {
	t.Parallel()

	msg := newProfileTestMessage()
	profile := Profile{
		Name: "requires PID",
		Segments: []SegmentRequirement{
			Segment("PID", RequiredOnce()),
		},
	}

	engine := NewEngine()
	issues := engine.Validate(msg, profile)
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d: %v", len(issues), issues)
	}
	if issues[0].Code != hl7.CodeSegmentCardinality {
		t.Errorf("expected code %s, got %s", hl7.CodeSegmentCardinality, issues[0].Code)
	}
	if issues[0].Severity != hl7.SeverityError {
		t.Errorf("missing required segment should be SeverityError, got %v", issues[0].Severity)
	}
}

func TestEngineValidateSegmentRulesApply(t *testing.T) {
	t.Parallel()

	msg := newProfileTestMessage()
	profile := Profile{
		Name: "MSH field rules",
		Segments: []SegmentRequirement{
			Segment("MSH", RequiredOnce(),
				At("MSH.9").Required().Build(),
				At("MSH.11").Required().Build(), // absent -> should produce an issue
			),
		},
	}

	engine := NewEngine()
	issues := engine.Validate(msg, profile)
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue for missing MSH.11, got %d: %v", len(issues), issues)
	}
	if issues[0].Location != "MSH.11" {
		t.Errorf("expected issue at MSH.11, got %s", issues[0].Location)
	}
}

func TestEngineStopOnFirstError(t *testing.T) {
	t.Parallel()

	msg := newProfileTestMessage()
	profile := Profile{
		MessageType: "ORU^R01", // mismatch, 1 issue
		Segments: []SegmentRequirement{
			Segment("PID", RequiredOnce()), // would also mismatch
		},
	}

	engine := NewEngine(WithStopOnFirstError(true))
	issues := engine.Validate(msg, profile)
	if len(issues) != 1 {
		t.Fatalf("expected evaluation to stop after first error, got %d issues: %v", len(issues), issues)
	}
}

func TestEngineMaxIssues(t *testing.T) {
	t.Parallel()

	msg := newProfileTestMessage()
	profile := Profile{
		Segments: []SegmentRequirement{
			Segment("PID", RequiredOnce()),
			Segment("PV1", RequiredOnce()),
			Segment("OBR", RequiredOnce()),
		},
	}

	engine := NewEngine(WithMaxIssues(2))
	issues := engine.Validate(msg, profile)
	if len(issues) != 2 {
		t.Fatalf("expected issues capped at 2, got %d", len(issues))
	}
}

func TestEngineValidateRules(t *testing.T) {
	t.Parallel()

	msg := newProfileTestMessage()
	rules := NewRuleSet(
		At("MSH.9").Required().Build(),
		At("MSH.99").Required().Build(),
	)

	engine := NewEngine()
	issues := engine.ValidateRules(msg, rules)
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d: %v", len(issues), issues)
	}
}

func TestEngineNilMessage(t *testing.T) {
	t.Parallel()

	engine := NewEngine()
	issues := engine.Validate(nil, Profile{})
	if len(issues) != 1 || issues[0].Severity != hl7.SeverityError {
		t.Fatalf("expected a single error issue for nil message, got %v", issues)
	}
}
