package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText_Levels(t *testing.T) {
	input := "Applicant ABCDE1234F mailed asha@example.com"

	assert.Equal(t, input, NewSanitizer(PIILevelFull, "salt").Text(input))
	assert.Equal(t, "[REDACTED]", NewSanitizer(PIILevelNone, "salt").Text(input))
	assert.Equal(t, "", NewSanitizer(PIILevelNone, "salt").Text(""))

	hashed := NewSanitizer(PIILevelHashed, "salt").Text(input)
	assert.NotContains(t, hashed, "ABCDE1234F")
	assert.NotContains(t, hashed, "asha@example.com")
	assert.Contains(t, hashed, "[PAN:")
	assert.Contains(t, hashed, "[EMAIL:")
	assert.Contains(t, hashed, "Applicant")
}

func TestText_HashedRedactsNumbers(t *testing.T) {
	s := NewSanitizer(PIILevelHashed, "salt")

	tests := []struct {
		name    string
		input   string
		removed string
		marker  string
	}{
		{"aadhaar", "Aadhaar 1234 5678 9012 on file", "1234 5678 9012", "[AADHAAR:REDACTED]"},
		{"mobile", "Call 9876543210 today", "9876543210", "[PHONE:"},
		{"account", "A/c 001234567890123 credited", "001234567890123", "[ACCOUNT:REDACTED]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := s.Text(tt.input)
			assert.NotContains(t, out, tt.removed)
			assert.Contains(t, out, tt.marker)
		})
	}
}

func TestID(t *testing.T) {
	hashed := NewSanitizer(PIILevelHashed, "salt")
	assert.Len(t, hashed.ID("ABCDE1234F"), 8)
	assert.Equal(t, hashed.ID("ABCDE1234F"), hashed.ID("ABCDE1234F"))
	assert.NotEqual(t, hashed.ID("ABCDE1234F"), NewSanitizer(PIILevelHashed, "other").ID("ABCDE1234F"))
	assert.Equal(t, "", hashed.ID(""))

	assert.Equal(t, "ABCDE1234F", NewSanitizer(PIILevelFull, "salt").ID("ABCDE1234F"))
	assert.Equal(t, "[REDACTED]", NewSanitizer(PIILevelNone, "salt").ID("ABCDE1234F"))
}

func TestPreviewTruncates(t *testing.T) {
	s := NewSanitizer(PIILevelFull, "")
	assert.Equal(t, "₹₹₹…", s.Preview("₹₹₹₹₹", 3))
	assert.Equal(t, "short", s.Preview("short", 10))
}
