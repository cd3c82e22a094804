package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/superclaims/claims-processor/constants"
	"github.com/superclaims/claims-processor/internal/llm"
)

// DocTypeSpec is what distinguishes one type-specific extraction stage
// from another: the filter label, the prompt, and the response schema.
type DocTypeSpec struct {
	Type   constants.DocType
	Label  string // human-readable, used in error messages
	Prompt func(text string) string
	Schema func() map[string]any
}

var (
	billSpec = DocTypeSpec{
		Type:   constants.Bill,
		Label:  "bill",
		Prompt: billPrompt,
		Schema: llm.BuildBillSchema,
	}
	dischargeSpec = DocTypeSpec{
		Type:   constants.DischargeSummary,
		Label:  "discharge summary",
		Prompt: dischargePrompt,
		Schema: llm.BuildDischargeSchema,
	}
	idCardSpec = DocTypeSpec{
		Type:   constants.IDCard,
		Label:  "ID card",
		Prompt: idCardPrompt,
		Schema: llm.BuildIDCardSchema,
	}
)

// DocTypeStage extracts structured fields from every raw text classified
// as its target type. Matching zero documents is a no-op, not an error;
// one document's failure is logged and does not block the rest.
type DocTypeStage struct {
	Spec     DocTypeSpec
	Gen      llm.Generator
	Logger   *slog.Logger
	FanLimit int
}

func NewDocTypeStage(spec DocTypeSpec, gen llm.Generator, logger *slog.Logger) *DocTypeStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocTypeStage{Spec: spec, Gen: gen, Logger: logger, FanLimit: 4}
}

// Run returns the stage's structured documents and error messages instead
// of a whole state so the orchestrator can run the three type stages
// behind one barrier and merge their output in fixed order.
func (s *DocTypeStage) Run(ctx context.Context, rawTexts []ExtractedText) ([]StructuredDocument, []string) {
	var matches []ExtractedText
	for _, doc := range rawTexts {
		if doc.DocType == s.Spec.Type {
			matches = append(matches, doc)
		}
	}
	if len(matches) == 0 {
		return nil, nil
	}

	docSlots := make([]*StructuredDocument, len(matches))
	errSlots := make([]string, len(matches))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(s.FanLimit)

	for i, doc := range matches {
		i, doc := i, doc
		eg.Go(func() error {
			docSlots[i], errSlots[i] = s.extractOne(gctx, doc)
			return nil
		})
	}
	_ = eg.Wait()

	var docs []StructuredDocument
	var errs []string
	for i := range matches {
		if docSlots[i] != nil {
			docs = append(docs, *docSlots[i])
		}
		if errSlots[i] != "" {
			errs = append(errs, errSlots[i])
		}
	}

	s.Logger.Info("pipeline.doctype.done",
		"doc_type", string(s.Spec.Type), "matched", len(matches),
		"extracted", len(docs), "failed", len(errs))
	return docs, errs
}

func (s *DocTypeStage) extractOne(ctx context.Context, doc ExtractedText) (*StructuredDocument, string) {
	decoded, raw, err := s.Gen.GenerateJSON(ctx, s.Spec.Prompt(doc.Text))
	if err != nil {
		s.Logger.Error("pipeline.doctype.failed",
			"doc_type", string(s.Spec.Type), "filename", doc.Filename, "error", err)
		return nil, fmt.Sprintf("Failed to process %s %s: %v", s.Spec.Label, doc.Filename, err)
	}
	if err := llm.ValidateAgainstSchema(s.Spec.Schema(), decoded); err != nil {
		s.Logger.Error("pipeline.doctype.bad_reply",
			"doc_type", string(s.Spec.Type), "filename", doc.Filename, "error", err, "raw", raw)
		return nil, fmt.Sprintf("Failed to process %s %s: %v", s.Spec.Label, doc.Filename, err)
	}
	if len(decoded) == 0 {
		s.Logger.Error("pipeline.doctype.empty_reply",
			"doc_type", string(s.Spec.Type), "filename", doc.Filename, "raw", raw)
		return nil, fmt.Sprintf("Failed to process %s %s: empty structured reply", s.Spec.Label, doc.Filename)
	}

	s.Logger.Info("pipeline.doctype.ok",
		"doc_type", string(s.Spec.Type), "filename", doc.Filename, "fields", len(decoded))
	return &StructuredDocument{
		Type:       s.Spec.Type,
		SourceFile: doc.Filename,
		Fields:     decoded,
	}, ""
}
