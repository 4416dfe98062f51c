package bureau

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound is returned when a bureau holds no record for the applicant.
var ErrNotFound = errors.New("bureau record not found")

// Record is opaque bureau data. It is only ever rendered into the scoring prompt.
type Record map[string]any

// Render formats the record as indented JSON. A nil record renders as "{}".
func (r Record) Render() string {
	if r == nil {
		return "{}"
	}
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(out)
}

// Provider looks up bureau data by applicant identifier.
type Provider interface {
	Lookup(ctx context.Context, applicantID string) (Record, error)
}
