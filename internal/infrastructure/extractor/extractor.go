package extractor

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"

	"github.com/creditx/creditx-server/internal/domain/document"
)

var pdfMagic = []byte("%PDF-")

// TextExtractor pulls text out of PDF uploads and passes plain text uploads through.
type TextExtractor struct {
	log zerolog.Logger
}

// New creates a TextExtractor.
func New(log zerolog.Logger) *TextExtractor {
	return &TextExtractor{log: log.With().Str("component", "extractor").Logger()}
}

// Extract returns the document text, or "" when the upload holds no readable text.
func (e *TextExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", nil
	}

	if bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), pdfMagic) {
		text, err := e.extractPDF(ctx, data)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			e.log.Warn().Err(err).Int("bytes", len(data)).Msg("pdf text extraction failed")
			return "", nil
		}
		return text, nil
	}

	if utf8.Valid(data) && !bytes.ContainsRune(data, 0) {
		return string(data), nil
	}
	return "", nil
}

// extractPDF joins the text of every page that yields any, one page per line block.
func (e *TextExtractor) extractPDF(ctx context.Context, data []byte) (text string, err error) {
	// the pdf reader panics on some malformed object graphs
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			e.log.Debug().Err(err).Int("page", i).Msg("skipping unreadable pdf page")
			continue
		}
		if strings.TrimSpace(content) != "" {
			pages = append(pages, content)
		}
	}
	return strings.Join(pages, "\n"), nil
}

var _ document.Extractor = (*TextExtractor)(nil)
