package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/superclaims/claims-processor/internal/llm"
)

const jsonOnlyDirective = "\n\nIMPORTANT: Respond ONLY with valid JSON, no additional text."

// generateContent request/response shapes for the REST API. Only the parts
// we read are modeled.
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateText runs the prompt through the candidate fallback chain and
// returns the first non-empty reply.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	text, model, err := c.generateWithFallback(ctx, prompt)
	if err != nil {
		return "", err
	}
	c.log.Info("llm.generate.ok", "model", model, "reply_bytes", len(text))
	return text, nil
}

// GenerateJSON appends the JSON-only directive, strips markdown fences from
// the reply, and decodes it leniently: a reply that is not valid JSON
// yields an empty map, not an error. The cleaned text is returned alongside
// the map so callers can log what the model actually said.
func (c *Client) GenerateJSON(ctx context.Context, prompt string) (map[string]any, string, error) {
	raw, model, err := c.generateWithFallback(ctx, prompt+jsonOnlyDirective)
	if err != nil {
		return nil, "", err
	}
	cleaned := llm.StripCodeFences(raw)
	decoded := llm.DecodeLenient(cleaned, c.log)
	c.log.Info("llm.generate_json.ok", "model", model, "keys", len(decoded))
	return decoded, cleaned, nil
}

// generateWithFallback tries candidates strictly in order, one attempt
// each. A candidate that errors, times out, or returns an empty reply is
// logged and skipped. Returns llm.ExhaustedError once every candidate has
// failed.
func (c *Client) generateWithFallback(ctx context.Context, prompt string) (string, string, error) {
	rid := uuid.New().String()
	start := time.Now()
	var lastErr error

	for _, model := range c.cfg.Models {
		text, err := c.generateOnce(ctx, model, prompt)
		if err != nil {
			lastErr = err
			c.log.Warn("llm.generate.candidate_failed",
				"req_id", rid, "model", model, "error", err)
			continue
		}
		c.log.Debug("llm.generate.candidate_ok",
			"req_id", rid, "model", model,
			"elapsed_ms", time.Since(start).Milliseconds())
		return text, model, nil
	}

	c.log.Error("llm.generate.exhausted",
		"req_id", rid, "candidates", len(c.cfg.Models), "last_error", lastErr,
		"elapsed_ms", time.Since(start).Milliseconds())
	return "", "", &llm.ExhaustedError{Candidates: len(c.cfg.Models), LastErr: lastErr}
}

func (c *Client) generateOnce(ctx context.Context, model, prompt string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	body := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	b, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/models/" + model + ":generateContent"
	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.log.Warn("gemini response body close error", "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("gemini status %d: %s", resp.StatusCode, truncate(string(raw), 512))
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if len(gr.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in gemini response")
	}
	var sb strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("empty response text")
	}
	return text, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
