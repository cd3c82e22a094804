package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/superclaims/claims-processor/internal/pipeline"
)

// Service renders a processed claim as an XLSX workbook for offline review.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ClaimReportXLSX returns a workbook with one sheet per concern:
// structured documents, validation findings, and the decision.
func (s *Service) ClaimReportXLSX(result pipeline.Result) ([]byte, error) {
	start := time.Now()
	f := excelize.NewFile()

	if err := s.writeDocumentsSheet(f, result.Documents); err != nil {
		return nil, err
	}
	if err := s.writeValidationSheet(f, result.Validation); err != nil {
		return nil, err
	}
	if err := s.writeDecisionSheet(f, result.ClaimDecision); err != nil {
		return nil, err
	}

	// drop the default sheet excelize creates
	_ = f.DeleteSheet("Sheet1")
	if idx, _ := f.GetSheetIndex("Documents"); idx >= 0 {
		f.SetActiveSheet(idx)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.claim_report.ok",
		"documents", len(result.Documents),
		"discrepancies", len(result.Validation.Discrepancies),
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}

func (s *Service) writeDocumentsSheet(f *excelize.File, docs []pipeline.StructuredDocument) error {
	const sheet = "Documents"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []string{"Type", "Source File", "Extracted Fields"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, d := range docs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, string(d.Type))
		write(2, d.SourceFile)
		write(3, flattenFields(d.Fields))
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 20)
	_ = f.SetColWidth(sheet, "B", "B", 36)
	_ = f.SetColWidth(sheet, "C", "C", 90)
	return nil
}

func (s *Service) writeValidationSheet(f *excelize.File, v pipeline.ValidationResult) error {
	const sheet = "Validation"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []string{"Kind", "Detail"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	write := func(kind, detail string) {
		cellA, _ := excelize.CoordinatesToCellName(1, row)
		cellB, _ := excelize.CoordinatesToCellName(2, row)
		_ = f.SetCellValue(sheet, cellA, kind)
		_ = f.SetCellValue(sheet, cellB, detail)
		row++
	}
	for _, m := range v.MissingDocuments {
		write("missing_document", m)
	}
	for _, d := range v.Discrepancies {
		write("discrepancy", d)
	}

	_ = f.SetColWidth(sheet, "A", "A", 20)
	_ = f.SetColWidth(sheet, "B", "B", 100)
	return nil
}

func (s *Service) writeDecisionSheet(f *excelize.File, d pipeline.ClaimDecision) error {
	const sheet = "Decision"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][2]any{
		{"Status", string(d.Status)},
		{"Reason", d.Reason},
		{"Confidence Score", d.ConfidenceScore},
	}
	for i, r := range rows {
		cellA, _ := excelize.CoordinatesToCellName(1, i+1)
		cellB, _ := excelize.CoordinatesToCellName(2, i+1)
		_ = f.SetCellValue(sheet, cellA, r[0])
		_ = f.SetCellValue(sheet, cellB, r[1])
	}

	_ = f.SetColWidth(sheet, "A", "A", 20)
	_ = f.SetColWidth(sheet, "B", "B", 100)
	return nil
}

// flattenFields renders the field map as "key: value" lines in stable
// order; nested values fall back to compact JSON.
func flattenFields(fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(k)
		b.WriteString(": ")
		switch v := fields[k].(type) {
		case string:
			b.WriteString(v)
		case nil:
			b.WriteString("-")
		default:
			if enc, err := json.Marshal(v); err == nil {
				b.Write(enc)
			} else {
				fmt.Fprintf(&b, "%v", v)
			}
		}
	}
	return b.String()
}
