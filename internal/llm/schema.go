package llm

import (
	"github.com/superclaims/claims-processor/constants"
)

// Response schemas (JSON-Schema draft 2020-12 subset, as generic maps).
// Each prompt has an explicit expected shape that is validated right after
// parsing instead of being poked at ad hoc downstream. Extraction fields
// are nullable on purpose: the prompts instruct the model to use null for
// anything it cannot find.

// BuildClassificationSchema constrains the classifier reply to the closed
// label set with a confidence in [0,1].
func BuildClassificationSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": true,
		"properties": map[string]any{
			"document_type": map[string]any{
				"type": "string",
				"enum": constants.AsStringSlice(),
			},
			"confidence": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
			"reasoning":  map[string]any{"type": "string"},
		},
		"required": []string{"document_type"},
	}
}

// BuildBillSchema describes the structured fields of a medical bill.
func BuildBillSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": true,
		"properties": map[string]any{
			"hospital_name":   nullableProp("string"),
			"total_amount":    nullableProp("number"),
			"date_of_service": nullableProp("string"),
			"bill_number":     nullableProp("string"),
			"items":           map[string]any{"type": "array"},
		},
	}
}

// BuildDischargeSchema describes the structured fields of a discharge summary.
func BuildDischargeSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": true,
		"properties": map[string]any{
			"patient_name":   nullableProp("string"),
			"diagnosis":      nullableProp("string"),
			"admission_date": nullableProp("string"),
			"discharge_date": nullableProp("string"),
			"treatment":      nullableProp("string"),
			"doctor_name":    nullableProp("string"),
		},
	}
}

// BuildIDCardSchema describes the structured fields of an insurance ID card.
func BuildIDCardSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": true,
		"properties": map[string]any{
			"policy_number":     nullableProp("string"),
			"insured_name":      nullableProp("string"),
			"validity":          nullableProp("string"),
			"insurance_company": nullableProp("string"),
		},
	}
}

// BuildValidationSchema describes the validator reply: missing-document
// labels, discrepancy findings, and the nested decision object.
func BuildValidationSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": true,
		"properties": map[string]any{
			"missing_documents": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"discrepancies": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"claim_decision": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"status": map[string]any{
						"type": "string",
						"enum": []string{string(constants.DecisionApproved), string(constants.DecisionRejected)},
					},
					"reason":           map[string]any{"type": "string"},
					"confidence_score": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
				},
				"required": []string{"status", "reason"},
			},
		},
		"required": []string{"claim_decision"},
	}
}

func nullableProp(t string) map[string]any {
	return map[string]any{"type": []string{t, "null"}}
}
