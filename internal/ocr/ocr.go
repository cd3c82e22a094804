package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for scanned pages, default 300
	MaxPages      int    // 0 = no limit
}

type ExtractionResult struct {
	Text     string
	Pages    int
	Method   string // "pdf-text" | "pdf-ocr" | "pdf-mixed"
	Duration time.Duration
	Warnings []string
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

// ExtractBytes writes the uploaded document to a scratch file and extracts
// its text page by page: embedded text where present, raster+OCR for pages
// without any. An empty result is not an error; the caller decides what an
// empty document means.
func (e *Extractor) ExtractBytes(ctx context.Context, filename string, content []byte) (ExtractionResult, error) {
	start := time.Now()
	e.logger.Debug("starting text extraction", "filename", filename, "bytes", len(content))

	tmpDir, err := os.MkdirTemp("", "claims-ocr-*")
	if err != nil {
		return ExtractionResult{}, err
	}
	defer func(path string) {
		if err := os.RemoveAll(path); err != nil {
			e.logger.Warn("failed to remove temp dir", "path", path, "error", err)
		}
	}(tmpDir)

	path := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return ExtractionResult{}, fmt.Errorf("write scratch file: %w", err)
	}

	res, err := e.extractPDF(ctx, path, tmpDir)
	res.Duration = time.Since(start)
	return res, err
}
