package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/superclaims/claims-processor/constants"
	"github.com/superclaims/claims-processor/internal/llm"
)

// ClassifyStage assigns each extracted text a document type. Documents are
// classified concurrently (bounded fan-out) since they carry no data
// dependency on one another; the stage returns only once every document's
// outcome has resolved. A failed classification defaults the document to
// "other" and never removes it from the raw-text set.
type ClassifyStage struct {
	Gen      llm.Generator
	Logger   *slog.Logger
	FanLimit int
}

func NewClassifyStage(gen llm.Generator, logger *slog.Logger) *ClassifyStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClassifyStage{Gen: gen, Logger: logger, FanLimit: 4}
}

func (s *ClassifyStage) Run(ctx context.Context, st State) State {
	out := make([]ExtractedText, len(st.RawTexts))
	errSlots := make([]string, len(st.RawTexts))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(s.FanLimit)

	for i, doc := range st.RawTexts {
		i, doc := i, doc
		eg.Go(func() error {
			out[i], errSlots[i] = s.classifyOne(gctx, doc)
			return nil
		})
	}
	_ = eg.Wait() // workers never return errors; failures land in errSlots

	errs := st.Errors
	for _, e := range errSlots {
		if e != "" {
			errs = append(errs, e)
		}
	}

	st.RawTexts = out
	st.Errors = errs
	return st
}

func (s *ClassifyStage) classifyOne(ctx context.Context, doc ExtractedText) (ExtractedText, string) {
	fallback := func(err error) (ExtractedText, string) {
		doc.DocType = constants.Other
		doc.Confidence = 0.0
		return doc, fmt.Sprintf("Failed to classify %s: %v", doc.Filename, err)
	}

	decoded, raw, err := s.Gen.GenerateJSON(ctx, classifyPrompt(doc.Filename, doc.Text))
	if err != nil {
		s.Logger.Error("pipeline.classify.failed", "filename", doc.Filename, "error", err)
		return fallback(err)
	}
	if err := llm.ValidateAgainstSchema(llm.BuildClassificationSchema(), decoded); err != nil {
		s.Logger.Error("pipeline.classify.bad_reply",
			"filename", doc.Filename, "error", err, "raw", raw)
		return fallback(err)
	}

	label, _ := decoded["document_type"].(string)
	docType, ok := constants.Canonicalize(label)
	if !ok {
		s.Logger.Warn("pipeline.classify.unknown_label", "filename", doc.Filename, "label", label)
	}
	doc.DocType = docType
	if c, ok := decoded["confidence"].(float64); ok {
		doc.Confidence = c
	}
	if r, ok := decoded["reasoning"].(string); ok {
		doc.Reasoning = r
	}

	s.Logger.Info("pipeline.classify.ok",
		"filename", doc.Filename, "doc_type", string(doc.DocType), "confidence", doc.Confidence)
	return doc, ""
}
