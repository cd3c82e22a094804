package pipeline

import (
	"encoding/json"

	"github.com/superclaims/claims-processor/constants"
)

// InputDocument is one uploaded file. Immutable for the run.
type InputDocument struct {
	Filename string
	Content  []byte
}

// ExtractedText is the per-file output of the extraction stage; the
// classification stage fills in the type fields.
type ExtractedText struct {
	Filename   string
	Text       string
	DocType    constants.DocType
	Confidence float64
	Reasoning  string
}

// StructuredDocument is the tagged output of a type-specific extraction
// stage: the model's field set plus the type tag and source file. Never
// mutated after creation.
type StructuredDocument struct {
	Type       constants.DocType
	SourceFile string
	Fields     map[string]any
}

// MarshalJSON flattens Fields to top level alongside the tag, matching the
// shape callers receive: {"type": ..., "source_file": ..., <fields>...}.
func (d StructuredDocument) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Fields)+2)
	for k, v := range d.Fields {
		out[k] = v
	}
	out["type"] = string(d.Type)
	out["source_file"] = d.SourceFile
	return json.Marshal(out)
}

// ValidationResult is the validator's cross-document findings.
type ValidationResult struct {
	MissingDocuments []string `json:"missing_documents"`
	Discrepancies    []string `json:"discrepancies"`
}

// ClaimDecision is the terminal artifact; Status stays the pending
// sentinel until the validation stage runs.
type ClaimDecision struct {
	Status          constants.DecisionStatus `json:"status"`
	Reason          string                   `json:"reason"`
	ConfidenceScore float64                  `json:"confidence_score"`
}

// State is the record threaded through the stages. Each stage receives it
// by value and returns an updated copy; documents and errors only grow,
// and raw texts are fixed in length once extraction completes.
type State struct {
	Files      []InputDocument
	RawTexts   []ExtractedText
	Documents  []StructuredDocument
	Validation ValidationResult
	Decision   ClaimDecision
	Errors     []string
}

func newState(files []InputDocument) State {
	return State{
		Files: files,
		Validation: ValidationResult{
			MissingDocuments: []string{},
			Discrepancies:    []string{},
		},
		Decision: ClaimDecision{Status: constants.DecisionPending},
	}
}

// Result is the caller-facing slice of the final state.
type Result struct {
	Documents     []StructuredDocument `json:"documents"`
	Validation    ValidationResult     `json:"validation"`
	ClaimDecision ClaimDecision        `json:"claim_decision"`
}
