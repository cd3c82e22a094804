package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/superclaims/claims-processor/constants"
	"github.com/superclaims/claims-processor/internal/pipeline"
)

func sampleResult() pipeline.Result {
	return pipeline.Result{
		Documents: []pipeline.StructuredDocument{
			{
				Type:       constants.Bill,
				SourceFile: "bill.pdf",
				Fields:     map[string]any{"hospital_name": "City Hospital", "total_amount": 12500.0},
			},
			{
				Type:       constants.DischargeSummary,
				SourceFile: "discharge.pdf",
				Fields:     map[string]any{"patient_name": "Jane Doe"},
			},
		},
		Validation: pipeline.ValidationResult{
			MissingDocuments: []string{"id_card"},
			Discrepancies:    []string{"Processing error: No text extracted from idcard.pdf"},
		},
		ClaimDecision: pipeline.ClaimDecision{
			Status:          constants.DecisionRejected,
			Reason:          "essential documents missing",
			ConfidenceScore: 0.8,
		},
	}
}

func TestClaimReportXLSX(t *testing.T) {
	report, err := NewService(nil).ClaimReportXLSX(sampleResult())
	if err != nil {
		t.Fatalf("build report: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(report))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	for _, sheet := range []string{"Documents", "Validation", "Decision"} {
		if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
			t.Fatalf("missing sheet %s", sheet)
		}
	}

	rows, err := f.GetRows("Documents")
	if err != nil {
		t.Fatalf("read Documents: %v", err)
	}
	// header plus one row per structured document
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows on Documents, got %d", len(rows))
	}
	if rows[1][0] != "bill" || rows[1][1] != "bill.pdf" {
		t.Fatalf("unexpected first document row: %v", rows[1])
	}
	if rows[2][0] != "discharge_summary" {
		t.Fatalf("unexpected second document row: %v", rows[2])
	}

	vrows, err := f.GetRows("Validation")
	if err != nil {
		t.Fatalf("read Validation: %v", err)
	}
	if len(vrows) != 3 {
		t.Fatalf("expected header + 2 findings, got %d rows", len(vrows))
	}
	if vrows[1][0] != "missing_document" || vrows[1][1] != "id_card" {
		t.Fatalf("unexpected finding row: %v", vrows[1])
	}

	drows, err := f.GetRows("Decision")
	if err != nil {
		t.Fatalf("read Decision: %v", err)
	}
	if drows[0][1] != "rejected" {
		t.Fatalf("expected rejected status, got %v", drows[0])
	}
}

func TestFlattenFieldsStableOrder(t *testing.T) {
	got := flattenFields(map[string]any{
		"total_amount":  12500.0,
		"hospital_name": "City Hospital",
		"bill_number":   nil,
	})
	want := "bill_number: -\nhospital_name: City Hospital\ntotal_amount: 12500"
	if got != want {
		t.Fatalf("unexpected flatten output:\n%q\nwant:\n%q", got, want)
	}
}
