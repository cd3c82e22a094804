package pipeline

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/superclaims/claims-processor/internal/extract"
	"github.com/superclaims/claims-processor/internal/llm"
)

// Pipeline runs one claim through the fixed stage order:
// extraction → classification → type-specific extraction → validation.
// Each run owns its own State; nothing is shared across invocations.
type Pipeline struct {
	Logger   *slog.Logger
	Extract  *ExtractStage
	Classify *ClassifyStage
	Bill     *DocTypeStage
	Disch    *DocTypeStage
	IDCard   *DocTypeStage
	Validate *ValidateStage
}

func New(gen llm.Generator, tx extract.TextExtractor, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		Logger:   logger,
		Extract:  NewExtractStage(tx, logger),
		Classify: NewClassifyStage(gen, logger),
		Bill:     NewDocTypeStage(billSpec, gen, logger),
		Disch:    NewDocTypeStage(dischargeSpec, gen, logger),
		IDCard:   NewDocTypeStage(idCardSpec, gen, logger),
		Validate: NewValidateStage(gen, logger),
	}
}

// Run processes one claim end to end and always produces a decision: every
// per-document failure is absorbed into the error log, and a validation
// failure fails closed to rejection.
func (p *Pipeline) Run(ctx context.Context, files []InputDocument) Result {
	p.Logger.Info("pipeline.start", "files", len(files))

	st := newState(files)
	st = p.Extract.Run(ctx, st)
	st = p.Classify.Run(ctx, st)
	st = p.runDocTypeStages(ctx, st)
	st = p.Validate.Run(ctx, st)

	p.Logger.Info("pipeline.done",
		"documents", len(st.Documents), "errors", len(st.Errors),
		"status", string(st.Decision.Status))

	if st.Documents == nil {
		st.Documents = []StructuredDocument{}
	}
	return Result{
		Documents:     st.Documents,
		Validation:    st.Validation,
		ClaimDecision: st.Decision,
	}
}

// runDocTypeStages fans the three type-specific stages out and joins them
// behind a barrier; they share no state besides the append-only documents
// collection, which is merged here in fixed stage order.
func (p *Pipeline) runDocTypeStages(ctx context.Context, st State) State {
	stages := []*DocTypeStage{p.Bill, p.Disch, p.IDCard}
	docsByStage := make([][]StructuredDocument, len(stages))
	errsByStage := make([][]string, len(stages))

	eg, gctx := errgroup.WithContext(ctx)
	for i, stage := range stages {
		i, stage := i, stage
		eg.Go(func() error {
			docsByStage[i], errsByStage[i] = stage.Run(gctx, st.RawTexts)
			return nil
		})
	}
	_ = eg.Wait()

	for i := range stages {
		st.Documents = append(st.Documents, docsByStage[i]...)
		st.Errors = append(st.Errors, errsByStage[i]...)
	}
	return st
}
