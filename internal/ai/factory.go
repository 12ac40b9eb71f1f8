package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fdg312/meal-lens/internal/config"
)

// NewProvider builds the provider selected by cfg.AIMode.
func NewProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.AIMode))
	if mode == "" {
		mode = config.AIModeGemini
	}

	switch mode {
	case config.AIModeGemini:
		return NewGeminiProvider(cfg), nil
	case config.AIModeOpenAI:
		return NewOpenAIProvider(cfg), nil
	case config.AIModeBedrock:
		return NewBedrockProvider(ctx, cfg)
	case config.AIModeMock:
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported ai mode: %s", mode)
	}
}

// newHTTPClient applies AI_TIMEOUT_SECONDS when set. Zero keeps the client
// without an explicit timeout.
func newHTTPClient(cfg *config.Config) *http.Client {
	client := &http.Client{}
	if cfg.AITimeoutSeconds > 0 {
		client.Timeout = time.Duration(cfg.AITimeoutSeconds) * time.Second
	}
	return client
}

// apiErrorMessage extracts {"error":{"message":...}} from a provider error
// body, falling back to the truncated raw body.
func apiErrorMessage(body []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}

	raw := strings.TrimSpace(string(body))
	if len(raw) > 300 {
		raw = raw[:300] + "..."
	}
	return raw
}
