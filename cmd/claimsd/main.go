package main

import (
	"log/slog"
	"os"
	"os/signal"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"github.com/superclaims/claims-processor/internal/common"
	"github.com/superclaims/claims-processor/internal/extract"
	"github.com/superclaims/claims-processor/internal/llm/gemini"
	"github.com/superclaims/claims-processor/internal/ocr"
	"github.com/superclaims/claims-processor/internal/pipeline"
	"github.com/superclaims/claims-processor/internal/server"
)

func main() {
	// Logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Env (.env is optional; real env vars win)
	_ = godotenv.Load()
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Reasoning-service client
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
	logger.Info("gemini client initialized", "candidates", cfg.LLM.Models)

	// Text extraction
	extractor := ocr.NewExtractor(ocr.Config{
		Pdftotext:     cfg.OCR.Pdftotext,
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
	}, logger)

	// Pipeline + HTTP surface
	pipe := pipeline.New(client, extract.NewOCRAdapter(extractor, logger), logger)
	svc := server.NewClaimsService(pipe, logger)

	app := fiber.New(fiber.Config{
		BodyLimit: cfg.Server.MaxBodySize,
		AppName:   "Superclaims Backend",
	})
	svc.Register(app)

	go func() {
		logger.Info("http serving", "addr", cfg.Server.Addr)
		if err := app.Listen(cfg.Server.Addr); err != nil {
			logger.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	logger.Info("shutting down...")
	if err := app.Shutdown(); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("stopped")
}
