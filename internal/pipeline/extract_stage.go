package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/superclaims/claims-processor/constants"
	"github.com/superclaims/claims-processor/internal/extract"
)

// ExtractStage turns each uploaded file into raw text. Files that yield
// nothing, or whose extraction fails, are recorded in the error log and
// dropped; they never reach later stages. One file's failure never aborts
// its siblings.
type ExtractStage struct {
	Extractor extract.TextExtractor
	Logger    *slog.Logger
}

func NewExtractStage(tx extract.TextExtractor, logger *slog.Logger) *ExtractStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractStage{Extractor: tx, Logger: logger}
}

func (s *ExtractStage) Run(ctx context.Context, st State) State {
	rawTexts := make([]ExtractedText, 0, len(st.Files))
	errs := st.Errors

	for _, f := range st.Files {
		res, err := s.Extractor.Extract(ctx, f.Filename, f.Content)
		if err != nil {
			msg := fmt.Sprintf("Failed to extract text from %s: %v", f.Filename, err)
			errs = append(errs, msg)
			s.Logger.Error("pipeline.extract.failed", "filename", f.Filename, "error", err)
			continue
		}
		if res.Text == "" {
			msg := fmt.Sprintf("No text extracted from %s", f.Filename)
			errs = append(errs, msg)
			s.Logger.Warn("pipeline.extract.empty", "filename", f.Filename)
			continue
		}
		rawTexts = append(rawTexts, ExtractedText{
			Filename: f.Filename,
			Text:     res.Text,
			DocType:  constants.Unknown, // classified in the next stage
		})
		s.Logger.Info("pipeline.extract.ok",
			"filename", f.Filename, "chars", len(res.Text),
			"pages", res.Pages, "method", res.Method)
	}

	st.RawTexts = rawTexts
	st.Errors = errs
	return st
}
