package extract

import (
	"context"
	"time"
)

// TextExtractor turns one uploaded document's bytes into text.
// The pipeline treats it as opaque: it only distinguishes text, empty
// text, and an error.
type TextExtractor interface {
	Extract(ctx context.Context, filename string, content []byte) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text     string
	Pages    int
	Method   string // "pdf-text" | "pdf-ocr" | "pdf-mixed"
	Duration time.Duration
	Warnings []string
}
