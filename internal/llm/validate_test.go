package llm

import (
	"testing"
)

func TestClassificationSchemaAcceptsValidReply(t *testing.T) {
	reply := map[string]any{
		"document_type": "bill",
		"confidence":    0.92,
		"reasoning":     "contains itemized hospital charges",
	}
	if err := ValidateAgainstSchema(BuildClassificationSchema(), reply); err != nil {
		t.Fatalf("expected valid reply, got: %v", err)
	}
}

func TestClassificationSchemaRejectsUnknownLabel(t *testing.T) {
	reply := map[string]any{
		"document_type": "tax_return",
		"confidence":    0.5,
	}
	if err := ValidateAgainstSchema(BuildClassificationSchema(), reply); err == nil {
		t.Fatal("expected schema violation for unknown label")
	}
}

func TestClassificationSchemaRejectsConfidenceOutOfRange(t *testing.T) {
	reply := map[string]any{
		"document_type": "bill",
		"confidence":    1.5,
	}
	if err := ValidateAgainstSchema(BuildClassificationSchema(), reply); err == nil {
		t.Fatal("expected schema violation for confidence > 1")
	}
}

func TestBillSchemaAllowsNullFields(t *testing.T) {
	reply := map[string]any{
		"hospital_name":   "City Hospital",
		"total_amount":    12500.0,
		"date_of_service": nil,
		"bill_number":     nil,
		"items":           []any{},
	}
	if err := ValidateAgainstSchema(BuildBillSchema(), reply); err != nil {
		t.Fatalf("expected nullable fields to validate, got: %v", err)
	}
}

func TestValidationSchemaRequiresDecision(t *testing.T) {
	reply := map[string]any{
		"missing_documents": []any{"id_card"},
		"discrepancies":     []any{},
	}
	if err := ValidateAgainstSchema(BuildValidationSchema(), reply); err == nil {
		t.Fatal("expected schema violation for missing claim_decision")
	}
}

func TestValidationSchemaRejectsPendingStatus(t *testing.T) {
	reply := map[string]any{
		"claim_decision": map[string]any{
			"status": "pending",
			"reason": "still thinking",
		},
	}
	if err := ValidateAgainstSchema(BuildValidationSchema(), reply); err == nil {
		t.Fatal("expected schema violation for pending status")
	}
}
