package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/superclaims/claims-processor/constants"
	"github.com/superclaims/claims-processor/internal/llm"
)

// ValidateStage is the terminal stage: it submits the accumulated
// structured documents in one validation prompt and produces the
// validation report plus the claim decision. The stage is fail-closed —
// any uncertainty about the service's reply defaults to rejection, never
// approval.
type ValidateStage struct {
	Gen    llm.Generator
	Logger *slog.Logger
}

func NewValidateStage(gen llm.Generator, logger *slog.Logger) *ValidateStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ValidateStage{Gen: gen, Logger: logger}
}

func (s *ValidateStage) Run(ctx context.Context, st State) State {
	validation, decision := s.decide(ctx, st.Documents)

	// Missing essential types are also computed locally; a model reply
	// claiming completeness cannot hide an absent document type.
	validation.MissingDocuments = mergeMissing(validation.MissingDocuments, st.Documents)

	// Surface every prior-stage error alongside content-level findings.
	for _, e := range st.Errors {
		validation.Discrepancies = append(validation.Discrepancies, "Processing error: "+e)
	}

	s.Logger.Info("pipeline.validate.decision",
		"status", string(decision.Status), "reason", decision.Reason,
		"missing", len(validation.MissingDocuments), "discrepancies", len(validation.Discrepancies))

	st.Validation = validation
	st.Decision = decision
	return st
}

func (s *ValidateStage) decide(ctx context.Context, documents []StructuredDocument) (ValidationResult, ClaimDecision) {
	docsJSON, err := json.MarshalIndent(documents, "", "  ")
	if err != nil {
		return s.failClosed(fmt.Sprintf("serialize documents: %v", err))
	}

	decoded, raw, err := s.Gen.GenerateJSON(ctx, validatePrompt(string(docsJSON)))
	if err != nil {
		s.Logger.Error("pipeline.validate.failed", "error", err)
		return s.failClosed(err.Error())
	}
	if err := llm.ValidateAgainstSchema(llm.BuildValidationSchema(), decoded); err != nil {
		s.Logger.Error("pipeline.validate.bad_reply", "error", err, "raw", raw)
		return s.failClosed(err.Error())
	}

	validation := ValidationResult{
		MissingDocuments: toStringSlice(decoded["missing_documents"]),
		Discrepancies:    toStringSlice(decoded["discrepancies"]),
	}

	decision := ClaimDecision{
		Status: constants.DecisionRejected,
		Reason: "Validation failed - unable to process claim",
	}
	if cd, ok := decoded["claim_decision"].(map[string]any); ok {
		if v, ok := cd["status"].(string); ok {
			decision.Status = constants.DecisionStatus(v)
		}
		if v, ok := cd["reason"].(string); ok {
			decision.Reason = v
		}
		if v, ok := cd["confidence_score"].(float64); ok {
			decision.ConfidenceScore = v
		}
	}
	return validation, decision
}

func (s *ValidateStage) failClosed(cause string) (ValidationResult, ClaimDecision) {
	return ValidationResult{
			MissingDocuments: []string{},
			Discrepancies:    []string{fmt.Sprintf("Validation failed: %s", cause)},
		}, ClaimDecision{
			Status:          constants.DecisionRejected,
			Reason:          fmt.Sprintf("System error during validation: %s", cause),
			ConfidenceScore: 0.0,
		}
}

// mergeMissing unions the model's missing-document list with the locally
// computed gap against the essential set, keeping a stable order.
func mergeMissing(fromModel []string, documents []StructuredDocument) []string {
	present := make(map[constants.DocType]bool, len(documents))
	for _, d := range documents {
		present[d.Type] = true
	}
	seen := make(map[string]bool)
	merged := []string{}
	for _, dt := range constants.EssentialDocTypes {
		if !present[dt] && !seen[string(dt)] {
			merged = append(merged, string(dt))
			seen[string(dt)] = true
		}
	}
	for _, m := range fromModel {
		if dt, ok := constants.Canonicalize(m); ok && !present[dt] && !seen[string(dt)] {
			merged = append(merged, string(dt))
			seen[string(dt)] = true
		}
	}
	return merged
}

func toStringSlice(v any) []string {
	out := []string{}
	items, ok := v.([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
