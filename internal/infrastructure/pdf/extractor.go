// Package pdf extracts plain text from uploaded quote PDFs.
package pdf

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/sai-aps/quotematch/internal/domain"
)

// Extractor pulls page text out of PDF files via MuPDF
type Extractor struct{}

// NewExtractor creates a PDF text extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractText returns the concatenated text of every page. A document with no
// extractable text (scans without OCR) is an error.
func (e *Extractor) ExtractText(ctx context.Context, path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrPDFExtraction, err)
	}
	defer doc.Close()

	var b strings.Builder
	for page := 0; page < doc.NumPage(); page++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text, err := doc.Text(page)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", domain.ErrPDFExtraction, page+1, err)
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	result := strings.TrimSpace(b.String())
	if result == "" {
		return "", fmt.Errorf("%w: document contains no extractable text", domain.ErrPDFExtraction)
	}

	log.Printf("[PDF] Extracted %d chars from %d pages", len(result), doc.NumPage())
	return result, nil
}
