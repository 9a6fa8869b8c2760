package validate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/healthbridge/hl7v2/hl7"
)

// DataType names a syntactic HL7 v2.x primitive data type that a field
// value can be checked against independent of any table lookup.
type DataType int

const (
	// TypeString accepts any value (ST, TX, FT, ...).
	TypeString DataType = iota
	// TypeNumeric requires a decimal number (NM): an optional leading sign,
	// digits, and at most one decimal point.
	TypeNumeric
	// TypeDate requires an 8-digit YYYYMMDD date (DT).
	TypeDate
	// TypeTime requires an HHMM[SS[.SSSS]] time (TM).
	TypeTime
	// TypeTimestamp requires a DTM value: YYYYMMDD optionally followed
	// by HHMM[SS[.SSSS]] and a timezone offset.
	TypeTimestamp
	// TypeSequenceID requires a non-negative integer (SI).
	TypeSequenceID
	// TypeCodedValue requires a non-empty coded value (CE/CWE/ID) whose
	// first component is present; table membership is validated
	// separately via ValueSet rules since it requires an external list.
	TypeCodedValue
)

// String returns the HL7 data type mnemonic.
func (d DataType) String() string {
	switch d {
	case TypeNumeric:
		return "NM"
	case TypeDate:
		return "DT"
	case TypeTime:
		return "TM"
	case TypeTimestamp:
		return "DTM"
	case TypeSequenceID:
		return "SI"
	case TypeCodedValue:
		return "CE"
	default:
		return "ST"
	}
}

// dataTypeRule validates that a field's raw value is syntactically
// well-formed for the declared DataType.
type dataTypeRule struct {
	location    string
	dataType    DataType
	description string
}

// Validate checks the field value against the declared data type's syntax.
func (r *dataTypeRule) Validate(msg hl7.Message) []ValidationError {
	if msg == nil {
		return []ValidationError{{Location: r.location, Rule: "datatype", Message: "message is nil"}}
	}

	value, err := msg.Get(r.location)
	if err != nil || value == "" {
		// Presence is the concern of a Required rule, not DataType.
		return nil
	}

	if err := checkDataType(value, r.dataType); err != nil {
		return []ValidationError{{
			Location: r.location,
			Rule:     "datatype",
			Message:  err.Error(),
			Expected: r.dataType.String(),
			Actual:   value,
		}}
	}
	return nil
}

// Location returns the HL7 path this rule applies to.
func (r *dataTypeRule) Location() string { return r.location }

// Description returns a human-readable description of this rule.
func (r *dataTypeRule) Description() string {
	if r.description != "" {
		return r.description
	}
	return fmt.Sprintf("%s must be a valid %s", r.location, r.dataType)
}

// checkDataType applies the syntactic rule for dt to value.
func checkDataType(value string, dt DataType) error {
	switch dt {
	case TypeNumeric:
		num := value
		if num != "" && (num[0] == '+' || num[0] == '-') {
			num = num[1:]
		}
		intPart, fracPart, _ := strings.Cut(num, ".")
		if (intPart == "" && fracPart == "") ||
			(intPart != "" && !isDigits(intPart)) ||
			(fracPart != "" && !isDigits(fracPart)) {
			return fmt.Errorf("%q is not a valid numeric (NM) value", value)
		}
	case TypeDate:
		if !isDigits(value) || len(value) != 8 {
			return fmt.Errorf("%q is not a valid date (DT) value, want YYYYMMDD", value)
		}
	case TypeTime:
		if !isValidTime(value) {
			return fmt.Errorf("%q is not a valid time (TM) value, want HHMM[SS[.SSSS]]", value)
		}
	case TypeTimestamp:
		if !isValidTimestamp(value) {
			return fmt.Errorf("%q is not a valid timestamp (DTM) value", value)
		}
	case TypeSequenceID:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%q is not a valid sequence id (SI), want a non-negative integer", value)
		}
	case TypeCodedValue:
		first := strings.SplitN(value, "^", 2)[0]
		if strings.TrimSpace(first) == "" {
			return fmt.Errorf("coded value is missing its identifier component")
		}
	case TypeString:
		// Any non-empty value is syntactically valid.
	}
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// isValidTime checks HHMM, HHMMSS, or HHMMSS.SSSS, optionally followed
// by a +/-ZZZZ timezone offset.
func isValidTime(s string) bool {
	s = stripTimezone(s)
	dot := strings.IndexByte(s, '.')
	whole := s
	if dot >= 0 {
		whole = s[:dot]
		frac := s[dot+1:]
		if !isDigits(frac) {
			return false
		}
	}
	switch len(whole) {
	case 4, 6:
		return isDigits(whole)
	default:
		return false
	}
}

// isValidTimestamp checks an 8-digit date optionally followed by a time
// component, per the DTM grammar.
func isValidTimestamp(s string) bool {
	s = stripTimezone(s)
	if len(s) < 8 || !isDigits(s[:8]) {
		return false
	}
	if len(s) == 8 {
		return true
	}
	return isValidTime(s[8:])
}

// stripTimezone removes a trailing +ZZZZ or -ZZZZ offset, if present.
func stripTimezone(s string) string {
	if len(s) < 5 {
		return s
	}
	sign := s[len(s)-5]
	if sign == '+' || sign == '-' {
		if isDigits(s[len(s)-4:]) {
			return s[:len(s)-5]
		}
	}
	return s
}
