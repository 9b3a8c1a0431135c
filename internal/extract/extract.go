package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"jobmatch-backend/internal/shared/telemetry"
)

var (
	// ErrFormat reports input that does not parse as a document with at least one page.
	ErrFormat = errors.New("corrupted or unreadable document")
	// ErrEmptyContent reports a structurally valid document with no extractable text.
	ErrEmptyContent = errors.New("no extractable text in document")
)

// PDF extracts text from PDF documents using github.com/ledongthuc/pdf.
type PDF struct{}

// Extract reads r once and returns the text of every page in order, pages
// separated by a newline, trimmed of surrounding whitespace.
func (PDF) Extract(ctx context.Context, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return FromBytes(ctx, data)
}

// FromBytes extracts text from an in-memory PDF.
func FromBytes(ctx context.Context, data []byte) (text string, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("%w: %v", ErrFormat, rec)
		}
	}()

	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty payload", ErrFormat)
	}
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFormat, err)
	}
	pages := reader.NumPage()
	if pages == 0 {
		return "", fmt.Errorf("%w: document has no pages", ErrFormat)
	}

	var buf strings.Builder
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		pageText, err := plainText(reader.Page(i))
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", ErrFormat, i, err)
		}
		telemetry.Debug("extract.page", map[string]any{
			"page":  i,
			"chars": len(pageText),
		})
		buf.WriteString(pageText)
		buf.WriteString("\n")
	}

	text = strings.TrimSpace(buf.String())
	if text == "" {
		return "", ErrEmptyContent
	}
	telemetry.Info("extract.complete", map[string]any{
		"pages": pages,
		"chars": len(text),
	})
	return text, nil
}

func plainText(p pdf.Page) (string, error) {
	if p.V.IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}
