package validate

import "testing"

func TestCheckDataType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		dt      DataType
		wantErr bool
	}{
		{"numeric ok", "123.45", TypeNumeric, false},
		{"numeric bad", "12a.45", TypeNumeric, true},
		{"date ok", "20260731", TypeDate, false},
		{"date too short", "202607", TypeDate, true},
		{"date non-digit", "2026073X", TypeDate, true},
		{"time HHMM", "1200", TypeTime, false},
		{"time HHMMSS", "120015", TypeTime, false},
		{"time with fraction", "120015.1234", TypeTime, false},
		{"time with offset", "1200-0500", TypeTime, false},
		{"time bad length", "12", TypeTime, true},
		{"timestamp date only", "20260731", TypeTimestamp, false},
		{"timestamp full", "20260731120015.1234+0000", TypeTimestamp, false},
		{"timestamp bad date", "2026073", TypeTimestamp, true},
		{"sequence id ok", "42", TypeSequenceID, false},
		{"sequence id negative", "-1", TypeSequenceID, true},
		{"sequence id non-numeric", "abc", TypeSequenceID, true},
		{"coded value ok", "M^Male^HL70001", TypeCodedValue, false},
		{"coded value empty identifier", "^Male", TypeCodedValue, true},
		{"string always ok", "anything goes", TypeString, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := checkDataType(tt.value, tt.dt)
			if (err != nil) != tt.wantErr {
				t.Errorf("checkDataType(%q, %v) error = %v, wantErr %v", tt.value, tt.dt, err, tt.wantErr)
			}
		})
	}
}

func TestDataTypeRuleBuilder(t *testing.T) {
	t.Parallel()

	msg := newMockMessage()
	msg.setField("MSH.7", "20260731120000-0500")
	msg.setField("PID.3", "123")

	rule := At("MSH.7").DataType(TypeTimestamp).Build()
	if errs := rule.Validate(msg); len(errs) != 0 {
		t.Errorf("expected valid timestamp, got errors: %v", errs)
	}

	numRule := At("PID.3").DataType(TypeNumeric).Build()
	if errs := numRule.Validate(msg); len(errs) != 0 {
		t.Errorf("PID.3 %q is numeric, expected no errors, got %v", "123", errs)
	}

	badRule := At("MSH.7").DataType(TypeNumeric).Build()
	if errs := badRule.Validate(msg); len(errs) == 0 {
		t.Error("expected error validating a timestamp as numeric")
	}
}
