// Package validate provides a conformance engine for HL7 v2.x messages.
//
// Field-level rules are built with the fluent At(location) builder and
// composed into a RuleSet or run directly through a Validator; a Profile
// adds segment-level structure (cardinality, message type) on top and
// is evaluated by an Engine, which produces a flat list of Issues.
//
// # Field-Level Rules
//
//	v := validate.New(
//	    validate.At("MSH.9").Required().Build(),
//	    validate.At("MSH.10").Required().Build(),
//	    validate.At("PID.8").OneOf("M", "F", "O", "U").Build(),
//	    validate.At("PID.7").DataType(validate.TypeDate).Build(),
//	)
//
//	result := v.Validate(msg)
//	if !result.Valid() {
//	    for _, err := range result.Errors() {
//	        log.Printf("validation error: %v", err)
//	    }
//	}
//
// Rules chain on a single builder to combine checks for one field:
//
//	patientID := validate.At("PID.3.1").
//	    Required().
//	    Length(1, 20).
//	    Pattern(`^[A-Z0-9]+$`).
//	    Build()
//
// # Profiles and the Conformance Engine
//
// A Profile describes segment cardinality and per-segment field rules
// for a class of message, and is evaluated by an Engine:
//
//	adtA01 := validate.Profile{
//	    Name:        "ADT^A01",
//	    MessageType: "ADT^A01",
//	    Segments: []validate.SegmentRequirement{
//	        validate.Segment("MSH", validate.RequiredOnce(),
//	            validate.At("MSH.9").Required().Build(),
//	            validate.At("MSH.10").Required().Build(),
//	        ),
//	        validate.Segment("PID", validate.RequiredOnce(),
//	            validate.At("PID.3").Required().Build(),
//	            validate.At("PID.5").Required().Build(),
//	        ),
//	        validate.Segment("OBX", validate.Optional()),
//	    },
//	}
//
//	engine := validate.NewEngine(
//	    validate.WithStopOnFirstError(false),
//	    validate.WithMaxIssues(50),
//	)
//	issues := engine.Validate(msg, adtA01)
//	for _, issue := range issues {
//	    fmt.Println(issue.String())
//	}
//
// # Creating Custom Rules
//
// Implement the Rule interface for validation logic beyond the built-in
// required/value/pattern/length/oneOf/dataType set:
//
//	type Rule interface {
//	    Validate(msg hl7.Message) []ValidationError
//	    Location() string
//	    Description() string
//	}
package validate
