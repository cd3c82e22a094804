package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"github.com/superclaims/claims-processor/constants"
	"github.com/superclaims/claims-processor/internal/common"
	"github.com/superclaims/claims-processor/internal/export"
	"github.com/superclaims/claims-processor/internal/extract"
	"github.com/superclaims/claims-processor/internal/llm/gemini"
	"github.com/superclaims/claims-processor/internal/ocr"
	"github.com/superclaims/claims-processor/internal/pipeline"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir = flag.String("dir", "", "directory of claim PDFs to process as one claim (required)")
		out = flag.String("out", "", "output XLSX report path (defaults to parent directory)")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		parentDir := filepath.Dir(strings.TrimRight(*dir, string(os.PathSeparator)))
		*out = filepath.Join(parentDir, "claim-report.xlsx")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	_ = godotenv.Load()
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	files, err := collectPDFs(*dir)
	if err != nil {
		logger.Error("failed to read claim directory", "dir", *dir, "error", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		logger.Error("no PDF files found", "dir", *dir)
		os.Exit(1)
	}
	logger.Info("collected claim files", "dir", *dir, "count", len(files))

	client, err := gemini.NewClient(gemini.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Models:  cfg.LLM.Models,
		Timeout: cfg.LLM.Timeout,
	}, logger)
	if err != nil {
		logger.Error("failed to construct gemini client", "error", err)
		os.Exit(1)
	}

	extractor := ocr.NewExtractor(ocr.Config{
		Pdftotext:     cfg.OCR.Pdftotext,
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
	}, logger)

	pipe := pipeline.New(client, extract.NewOCRAdapter(extractor, logger), logger)
	result := pipe.Run(context.Background(), files)

	logger.Info("claim processed",
		"status", string(result.ClaimDecision.Status),
		"reason", result.ClaimDecision.Reason,
		"documents", len(result.Documents),
		"missing", result.Validation.MissingDocuments)

	report, err := export.NewService(logger).ClaimReportXLSX(result)
	if err != nil {
		logger.Error("failed to build report", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, report, 0o644); err != nil {
		logger.Error("failed to write report", "path", *out, "error", err)
		os.Exit(1)
	}
	logger.Info("report written", "path", *out)
}

func collectPDFs(dir string) ([]pipeline.InputDocument, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !constants.IsAllowedFilename(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	files := make([]pipeline.InputDocument, 0, len(names))
	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		files = append(files, pipeline.InputDocument{Filename: name, Content: content})
	}
	return files, nil
}
