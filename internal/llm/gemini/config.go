package gemini

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/superclaims/claims-processor/internal/common"
)

// Config for the Gemini client.
type Config struct {
	APIKey  string        // if empty, falls back to env GEMINI_API_KEY
	BaseURL string        // default https://generativelanguage.googleapis.com/v1beta
	Models  []string      // ordered candidate list, tried first to last
	Timeout time.Duration // per-candidate attempt timeout
}

type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger
}

// NewClient constructs the client. The API key is required: without a
// credential there is nothing to call, so construction fails.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, common.NewAppError("LLM_CONFIG", "gemini api key is required", common.ErrInvalidInput)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if len(cfg.Models) == 0 {
		cfg.Models = common.DefaultGeminiModels
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{},
		log:  logger,
	}, nil
}

// SetHTTPClient swaps the underlying HTTP client. Tests use it to stub the
// transport.
func (c *Client) SetHTTPClient(h *http.Client) {
	if h != nil {
		c.http = h
	}
}
