package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/superclaims/claims-processor/internal/extract"
	"github.com/superclaims/claims-processor/internal/pipeline"
)

type stubExtractor struct{}

func (stubExtractor) Extract(_ context.Context, _ string, _ []byte) (extract.TextExtractionResult, error) {
	return extract.TextExtractionResult{Text: "hospital invoice", Pages: 1, Method: "pdf-text"}, nil
}

type stubGenerator struct{}

func (stubGenerator) GenerateText(context.Context, string) (string, error) {
	return "", errors.New("not used")
}

func (stubGenerator) GenerateJSON(_ context.Context, prompt string) (map[string]any, string, error) {
	switch {
	case strings.Contains(prompt, "classification expert"):
		return map[string]any{"document_type": "bill", "confidence": 0.9}, "", nil
	case strings.Contains(prompt, "billing data extraction expert"):
		return map[string]any{"hospital_name": "City Hospital", "total_amount": 100.0}, "", nil
	case strings.Contains(prompt, "claim validation expert"):
		return map[string]any{
			"missing_documents": []any{"discharge_summary", "id_card"},
			"discrepancies":     []any{},
			"claim_decision": map[string]any{
				"status":           "rejected",
				"reason":           "incomplete claim",
				"confidence_score": 0.9,
			},
		}, "", nil
	}
	return map[string]any{}, "", nil
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New()
	pipe := pipeline.New(stubGenerator{}, stubExtractor{}, nil)
	NewClaimsService(pipe, nil).Register(app)
	return app
}

func multipartUpload(t *testing.T, filenames ...string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, name := range filenames {
		part, err := w.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte("%PDF-1.4 fake content")); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, w.FormDataContentType()
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("decode body %q: %v", b, err)
	}
	return out
}

func TestRootReportsService(t *testing.T) {
	app := newTestApp(t)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["service"] != "Superclaims Backend" {
		t.Fatalf("unexpected service name: %v", body["service"])
	}
	if body["status"] != "healthy" {
		t.Fatalf("unexpected status: %v", body["status"])
	}
}

func TestHealthReportsComponents(t *testing.T) {
	app := newTestApp(t)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	components, ok := body["components"].(map[string]any)
	if !ok {
		t.Fatalf("expected components map, got %v", body["components"])
	}
	for _, key := range []string{"api", "pipeline", "llm"} {
		if components[key] == "" || components[key] == nil {
			t.Fatalf("missing component %s in %v", key, components)
		}
	}
}

func TestProcessClaimRejectsEmptyUpload(t *testing.T) {
	app := newTestApp(t)
	body, contentType := multipartUpload(t) // no files
	req := httptest.NewRequest(http.MethodPost, "/process-claim", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if got := decodeBody(t, resp)["detail"]; got != "No files uploaded" {
		t.Fatalf("unexpected detail: %v", got)
	}
}

func TestProcessClaimRejectsNonPDF(t *testing.T) {
	app := newTestApp(t)
	body, contentType := multipartUpload(t, "bill.pdf", "notes.txt")
	req := httptest.NewRequest(http.MethodPost, "/process-claim", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	detail, _ := decodeBody(t, resp)["detail"].(string)
	if !strings.Contains(detail, "notes.txt") || !strings.Contains(detail, "Only PDF files are supported") {
		t.Fatalf("unexpected detail: %q", detail)
	}
}

func TestProcessClaimReturnsDecision(t *testing.T) {
	app := newTestApp(t)
	body, contentType := multipartUpload(t, "bill.pdf")
	req := httptest.NewRequest(http.MethodPost, "/process-claim", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	payload := decodeBody(t, resp)

	docs, ok := payload["documents"].([]any)
	if !ok || len(docs) != 1 {
		t.Fatalf("expected one document, got %v", payload["documents"])
	}
	doc, _ := docs[0].(map[string]any)
	if doc["type"] != "bill" || doc["source_file"] != "bill.pdf" {
		t.Fatalf("unexpected document: %v", doc)
	}
	if doc["hospital_name"] != "City Hospital" {
		t.Fatalf("expected flattened fields, got %v", doc)
	}

	decision, _ := payload["claim_decision"].(map[string]any)
	if decision["status"] != "rejected" {
		t.Fatalf("expected rejected decision, got %v", decision)
	}

	validation, _ := payload["validation"].(map[string]any)
	missing, _ := validation["missing_documents"].([]any)
	if len(missing) != 2 {
		t.Fatalf("expected 2 missing types, got %v", missing)
	}
}
