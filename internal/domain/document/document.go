package document

import (
	"context"
	"strings"

	apperrors "github.com/creditx/creditx-server/internal/domain/errors"
)

// Kind names the uploaded document.
type Kind string

const (
	KindBankStatement Kind = "bank_statement"
	KindAIS           Kind = "ais"
	KindStatement     Kind = "statement_file"
	KindSupporting    Kind = "additional_file"
	KindWebPage       Kind = "web_page"
)

// Extractor turns an uploaded file into plain text.
// It returns "" when nothing can be extracted and an error only when the
// extraction itself could not run (cancelled context, unreadable input).
type Extractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// Validate classifies extraction output shorter than minChars non-blank runes as a failure.
func Validate(kind Kind, text string, minChars int) error {
	if len([]rune(strings.TrimSpace(text))) < minChars {
		return apperrors.New(apperrors.KindExtractionFailed, "no usable text extracted from "+string(kind)).
			WithStage(string(kind))
	}
	return nil
}
