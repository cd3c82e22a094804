package constants

import (
	"strings"
)

// DocType is the closed label set a claim document can be classified into.
type DocType string

const (
	Bill             DocType = "bill"
	DischargeSummary DocType = "discharge_summary"
	IDCard           DocType = "id_card"
	Prescription     DocType = "prescription"
	LabReport        DocType = "lab_report"
	Other            DocType = "other"

	// Unknown is the pre-classification sentinel; it is never a valid
	// classifier output.
	Unknown DocType = "unknown"
)

var allDocTypes = []DocType{
	Bill,
	DischargeSummary,
	IDCard,
	Prescription,
	LabReport,
	Other,
}

// EssentialDocTypes are the document types a complete claim must contain.
var EssentialDocTypes = []DocType{Bill, DischargeSummary, IDCard}

func AsStringSlice() []string {
	result := make([]string, len(allDocTypes))
	for i, dt := range allDocTypes {
		result[i] = string(dt)
	}
	return result
}

// Canonicalize maps a model-produced label onto the closed set.
// Unrecognized labels fall back to Other.
func Canonicalize(input string) (DocType, bool) {
	if input == "" {
		return Other, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")

	// synonyms map
	synonyms := map[string]DocType{
		"invoice":         Bill,
		"medical_bill":    Bill,
		"receipt":         Bill,
		"discharge":       DischargeSummary,
		"medical_report":  DischargeSummary,
		"insurance_card":  IDCard,
		"policy_document": IDCard,
		"rx":              Prescription,
		"lab_result":      LabReport,
		"test_report":     LabReport,
	}

	if dt, ok := synonyms[normalized]; ok {
		return dt, true
	}

	for _, dt := range allDocTypes {
		if normalized == string(dt) {
			return dt, true
		}
	}

	return Other, false
}
