package telemetry

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
)

// PIILevel defines how much applicant data may reach logs and traces.
type PIILevel string

const (
	// PIILevelNone redacts all applicant content
	PIILevelNone PIILevel = "none"
	// PIILevelHashed replaces identifiers with salted hashes
	PIILevelHashed PIILevel = "hashed"
	// PIILevelFull performs no sanitization
	PIILevelFull PIILevel = "full"
)

// Sanitizer masks applicant identifiers before they are logged.
type Sanitizer struct {
	level PIILevel
	salt  string

	panPattern     *regexp.Regexp
	aadhaarPattern *regexp.Regexp
	emailPattern   *regexp.Regexp
	phonePattern   *regexp.Regexp
	accountPattern *regexp.Regexp
}

// NewSanitizer creates a sanitizer. salt keeps hashes stable per deployment.
func NewSanitizer(level PIILevel, salt string) *Sanitizer {
	return &Sanitizer{
		level:          level,
		salt:           salt,
		panPattern:     regexp.MustCompile(`\b[A-Z]{5}[0-9]{4}[A-Z]\b`),
		aadhaarPattern: regexp.MustCompile(`\b\d{4}\s?\d{4}\s?\d{4}\b`),
		emailPattern:   regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
		phonePattern:   regexp.MustCompile(`(?:\+91[-\s]?)?\b[6-9]\d{9}\b`),
		accountPattern: regexp.MustCompile(`\b\d{9,18}\b`),
	}
}

// Text sanitizes free text such as prompt previews.
func (s *Sanitizer) Text(input string) string {
	switch s.level {
	case PIILevelFull:
		return input
	case PIILevelNone:
		if input == "" {
			return ""
		}
		return "[REDACTED]"
	default:
		return s.hashPII(input)
	}
}

// ID sanitizes a single identifier such as a PAN or user id.
func (s *Sanitizer) ID(id string) string {
	if id == "" {
		return ""
	}
	switch s.level {
	case PIILevelFull:
		return id
	case PIILevelNone:
		return "[REDACTED]"
	default:
		return s.hash(id)
	}
}

// Preview sanitizes input and truncates it to max runes.
func (s *Sanitizer) Preview(input string, max int) string {
	out := []rune(s.Text(input))
	if max > 0 && len(out) > max {
		return string(out[:max]) + "…"
	}
	return string(out)
}

func (s *Sanitizer) hashPII(input string) string {
	result := s.panPattern.ReplaceAllStringFunc(input, func(match string) string {
		return "[PAN:" + s.hash(match) + "]"
	})
	result = s.emailPattern.ReplaceAllStringFunc(result, func(match string) string {
		return "[EMAIL:" + s.hash(match) + "]"
	})
	result = s.aadhaarPattern.ReplaceAllString(result, "[AADHAAR:REDACTED]")
	result = s.phonePattern.ReplaceAllStringFunc(result, func(match string) string {
		return "[PHONE:" + s.hash(match) + "]"
	})
	result = s.accountPattern.ReplaceAllString(result, "[ACCOUNT:REDACTED]")
	return result
}

// hash returns the first 8 hex chars of a salted SHA-256.
func (s *Sanitizer) hash(data string) string {
	sum := sha256.Sum256([]byte(data + s.salt))
	return hex.EncodeToString(sum[:])[:8]
}
