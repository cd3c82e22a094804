package ocr

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
)

// fakeRunner scripts the three external tools. pdftotext output is fixed;
// pdftoppm writes the png file the extractor globs for; tesseract returns
// a per-page string.
type fakeRunner struct {
	pdftotextOut string
	pdftotextErr error
	ocrByPage    map[string]string // raster prefix suffix ("page-2") → text
	tesseractErr error
	calls        []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, name)
	switch name {
	case "pdftotext":
		if f.pdftotextErr != nil {
			return nil, []byte("pdftotext stderr"), f.pdftotextErr
		}
		return []byte(f.pdftotextOut), nil, nil
	case "pdftoppm":
		prefix := args[len(args)-1]
		if err := os.WriteFile(prefix+"-1.png", []byte("png"), 0o600); err != nil {
			return nil, nil, err
		}
		return nil, nil, nil
	case "tesseract":
		if f.tesseractErr != nil {
			return nil, []byte("tesseract stderr"), f.tesseractErr
		}
		img := args[0]
		for suffix, text := range f.ocrByPage {
			if strings.Contains(img, suffix) {
				return []byte(text), nil, nil
			}
		}
		return []byte(""), nil, nil
	}
	return nil, nil, errors.New("unexpected command: " + name)
}

func newFakeExtractor(cfg Config, runner Runner) *Extractor {
	e := NewExtractor(cfg, nil)
	e.runner = runner
	return e
}

func TestExtractEmbeddedTextOnly(t *testing.T) {
	runner := &fakeRunner{pdftotextOut: "first page\ftotal: 500\f"}
	e := newFakeExtractor(Config{}, runner)

	res, err := e.ExtractBytes(context.Background(), "bill.pdf", []byte("%PDF"))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if res.Method != "pdf-text" {
		t.Fatalf("expected pdf-text, got %s", res.Method)
	}
	if res.Pages != 2 {
		t.Fatalf("expected 2 pages, got %d", res.Pages)
	}
	want := "--- Page 1 ---\nfirst page\n\n--- Page 2 ---\ntotal: 500"
	if res.Text != want {
		t.Fatalf("unexpected text:\n%q\nwant:\n%q", res.Text, want)
	}
	for _, c := range runner.calls {
		if c != "pdftotext" {
			t.Fatalf("no OCR expected for embedded text, but %s ran", c)
		}
	}
}

func TestExtractMixedFallsBackToOCR(t *testing.T) {
	// Page 2 has no embedded text, so it must be rasterized and OCRed.
	runner := &fakeRunner{
		pdftotextOut: "embedded page one\f   \f",
		ocrByPage:    map[string]string{"page-2": "scanned page two"},
	}
	e := newFakeExtractor(Config{}, runner)

	res, err := e.ExtractBytes(context.Background(), "scan.pdf", []byte("%PDF"))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if res.Method != "pdf-mixed" {
		t.Fatalf("expected pdf-mixed, got %s", res.Method)
	}
	want := "--- Page 1 ---\nembedded page one\n\n--- Page 2 ---\nscanned page two"
	if res.Text != want {
		t.Fatalf("unexpected text:\n%q\nwant:\n%q", res.Text, want)
	}
}

func TestExtractScannedOnlyUsesOCRMethod(t *testing.T) {
	runner := &fakeRunner{
		pdftotextOut: " \f",
		ocrByPage:    map[string]string{"page-1": "fully scanned"},
	}
	e := newFakeExtractor(Config{}, runner)

	res, err := e.ExtractBytes(context.Background(), "scan.pdf", []byte("%PDF"))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if res.Method != "pdf-ocr" {
		t.Fatalf("expected pdf-ocr, got %s", res.Method)
	}
	if !strings.Contains(res.Text, "fully scanned") {
		t.Fatalf("expected OCR text, got %q", res.Text)
	}
}

func TestExtractOCRFailureSkipsPage(t *testing.T) {
	runner := &fakeRunner{
		pdftotextOut: "good page\f \f",
		tesseractErr: errors.New("tesseract crashed"),
	}
	e := newFakeExtractor(Config{}, runner)

	res, err := e.ExtractBytes(context.Background(), "partial.pdf", []byte("%PDF"))
	if err != nil {
		t.Fatalf("one bad page must not fail the document: %v", err)
	}
	if !strings.Contains(res.Text, "good page") {
		t.Fatalf("expected surviving page text, got %q", res.Text)
	}
	if strings.Contains(res.Text, "--- Page 2 ---") {
		t.Fatalf("failed page must be dropped, got %q", res.Text)
	}
	if len(res.Warnings) == 0 {
		t.Fatal("expected a warning for the failed page")
	}
}

func TestExtractPdftotextFailureIsFatal(t *testing.T) {
	runner := &fakeRunner{pdftotextErr: errors.New("not a pdf")}
	e := newFakeExtractor(Config{}, runner)

	if _, err := e.ExtractBytes(context.Background(), "garbage.pdf", []byte("junk")); err == nil {
		t.Fatal("expected error when the document cannot be parsed at all")
	}
}

func TestExtractRespectsMaxPages(t *testing.T) {
	runner := &fakeRunner{pdftotextOut: "p1\fp2\fp3\fp4\f"}
	e := newFakeExtractor(Config{MaxPages: 2}, runner)

	res, err := e.ExtractBytes(context.Background(), "long.pdf", []byte("%PDF"))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if res.Pages != 2 {
		t.Fatalf("expected page cap of 2, got %d", res.Pages)
	}
	if strings.Contains(res.Text, "p3") || strings.Contains(res.Text, "p4") {
		t.Fatalf("pages beyond the cap must be dropped, got %q", res.Text)
	}
}
