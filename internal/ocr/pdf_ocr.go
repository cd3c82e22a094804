package ocr

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// extractPDF pulls embedded text per page with pdftotext, then OCRs the
// pages that came back empty. Page texts are joined with "--- Page N ---"
// headers so downstream prompts keep page boundaries visible.
func (e *Extractor) extractPDF(ctx context.Context, path, tmpDir string) (ExtractionResult, error) {
	pageTexts, warns, err := e.pdfToText(ctx, path)
	if err != nil {
		return ExtractionResult{Warnings: warns}, err
	}
	if e.cfg.MaxPages > 0 && len(pageTexts) > e.cfg.MaxPages {
		pageTexts = pageTexts[:e.cfg.MaxPages]
	}

	embedded, ocred := 0, 0
	var parts []string
	for i, txt := range pageTexts {
		txt = strings.TrimSpace(txt)
		if txt == "" {
			ocrTxt, w, ocrErr := e.ocrPage(ctx, path, tmpDir, i+1)
			warns = append(warns, w...)
			if ocrErr != nil {
				warns = append(warns, fmt.Sprintf("ocr page %d: %v", i+1, ocrErr))
				continue
			}
			txt = strings.TrimSpace(ocrTxt)
			if txt == "" {
				continue
			}
			ocred++
		} else {
			embedded++
		}
		parts = append(parts, fmt.Sprintf("--- Page %d ---\n%s", i+1, txt))
	}

	method := "pdf-text"
	switch {
	case embedded == 0 && ocred > 0:
		method = "pdf-ocr"
	case embedded > 0 && ocred > 0:
		method = "pdf-mixed"
	}

	return ExtractionResult{
		Text:     strings.Join(parts, "\n\n"),
		Pages:    len(pageTexts),
		Method:   method,
		Warnings: warns,
	}, nil
}

// pdfToText returns one entry per page; pdftotext separates pages with \f.
func (e *Extractor) pdfToText(ctx context.Context, path string) ([]string, []string, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return nil, []string{string(errb)}, fmt.Errorf("pdftotext: %w", err)
	}
	pages := strings.Split(string(out), "\f")
	// pdftotext appends a trailing form feed; drop the empty tail
	if n := len(pages); n > 1 && strings.TrimSpace(pages[n-1]) == "" {
		pages = pages[:n-1]
	}
	return pages, nil, nil
}

// ocrPage rasterizes a single page and runs tesseract on the result.
func (e *Extractor) ocrPage(ctx context.Context, path, tmpDir string, page int) (string, []string, error) {
	prefix := filepath.Join(tmpDir, fmt.Sprintf("page-%d", page))
	// pdftoppm -r <dpi> -f N -l N -png <in.pdf> <prefix>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm,
		"-r", fmt.Sprintf("%d", e.cfg.DPI),
		"-f", fmt.Sprintf("%d", page),
		"-l", fmt.Sprintf("%d", page),
		"-png", path, prefix)
	if err != nil {
		return "", []string{string(errb)}, fmt.Errorf("pdftoppm: %w", err)
	}

	matches, _ := filepath.Glob(prefix + "*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return "", nil, fmt.Errorf("pdftoppm produced no image for page %d", page)
	}

	// tesseract <img> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, matches[0], "stdout", "-l", e.cfg.TesseractLang)
	if err != nil {
		return "", []string{string(errb)}, fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil, nil
}
