package llm

import (
	"encoding/json"
	"log/slog"
	"strings"
)

// StripCodeFences removes leading/trailing markdown code-fence markers
// (``` optionally followed by a language tag) from a model reply.
// Already-clean text passes through unchanged, so stripping is idempotent.
func StripCodeFences(s string) string {
	cleaned := strings.TrimSpace(s)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		// drop an optional language tag on the fence line
		if i := strings.IndexByte(cleaned, '\n'); i >= 0 {
			first := strings.TrimSpace(cleaned[:i])
			if first != "" && !strings.ContainsAny(first, "{}[]\"") {
				cleaned = cleaned[i+1:]
			}
		}
	}
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

// DecodeLenient decodes a cleaned model reply into a generic map.
// Unparseable text degrades to an empty map rather than an error; the
// offending raw text is logged for diagnosis.
func DecodeLenient(cleaned string, logger *slog.Logger) map[string]any {
	if logger == nil {
		logger = slog.Default()
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(cleaned), &m); err != nil {
		logger.Error("llm.decode.parse_error", "error", err, "raw", truncate(cleaned, 2<<10))
		return map[string]any{}
	}
	if m == nil {
		return map[string]any{}
	}
	return m
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
