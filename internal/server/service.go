package server

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/superclaims/claims-processor/constants"
	"github.com/superclaims/claims-processor/internal/pipeline"
)

const serviceVersion = "1.0.0"

// ClaimsService is the HTTP surface over the processing pipeline.
type ClaimsService struct {
	pipeline *pipeline.Pipeline
	logger   *slog.Logger
}

func NewClaimsService(p *pipeline.Pipeline, logger *slog.Logger) *ClaimsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClaimsService{pipeline: p, logger: logger}
}

// Register mounts the routes on the app.
func (s *ClaimsService) Register(app *fiber.App) {
	app.Get("/", s.Root)
	app.Get("/health", s.Health)
	app.Post("/process-claim", s.ProcessClaim)
}

func (s *ClaimsService) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "Superclaims Backend",
		"status":  "healthy",
		"version": serviceVersion,
	})
}

func (s *ClaimsService) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": "claim-processor",
		"components": fiber.Map{
			"api":      "operational",
			"pipeline": "ready",
			"llm":      "connected",
		},
	})
}

// ProcessClaim accepts a multipart batch of PDF files, runs the pipeline,
// and returns {documents, validation, claim_decision}. Upload validation
// failures are client errors; the pipeline itself always yields a decision.
func (s *ClaimsService) ProcessClaim(c *fiber.Ctx) error {
	reqID := uuid.New().String()

	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "No files uploaded"})
	}
	uploads := form.File["files"]
	if len(uploads) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "No files uploaded"})
	}

	for _, fh := range uploads {
		if !constants.IsAllowedFilename(fh.Filename) {
			s.logger.Warn("server.upload.rejected", "req_id", reqID, "filename", fh.Filename)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"detail": fmt.Sprintf("Invalid file type: %s. Only PDF files are supported", fh.Filename),
			})
		}
	}

	s.logger.Info("server.claim.received", "req_id", reqID, "files", len(uploads))

	files := make([]pipeline.InputDocument, 0, len(uploads))
	for _, fh := range uploads {
		content, err := readUpload(fh)
		if err != nil {
			s.logger.Error("server.upload.read_failed", "req_id", reqID, "filename", fh.Filename, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"detail": fmt.Sprintf("Internal server error: reading %s: %v", fh.Filename, err),
			})
		}
		files = append(files, pipeline.InputDocument{Filename: fh.Filename, Content: content})
	}

	result := s.pipeline.Run(c.UserContext(), files)

	s.logger.Info("server.claim.processed",
		"req_id", reqID, "status", string(result.ClaimDecision.Status),
		"documents", len(result.Documents))
	return c.JSON(result)
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
