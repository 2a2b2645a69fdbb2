package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

func TestAnthropicProvider_ReturnsFirstTextBlock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":   "msg_test",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": "Ringkasan singkat."},
			},
			"model":       "claude-haiku-4-5-20251001",
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 10, "output_tokens": 5},
		})
	}))
	t.Cleanup(server.Close)

	client := anthropic.NewClient(option.WithAPIKey("test-key"), option.WithBaseURL(server.URL))
	p := &AnthropicProvider{client: &client, model: "claude-haiku-4-5-20251001"}

	text, err := p.Generate(context.Background(), Request{Prompt: "Sederhanakan.", Temperature: 0.2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Ringkasan singkat." {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestResolveModel(t *testing.T) {
	if got := resolveModel("claude-haiku", anthropicModels); got != "claude-haiku-4-5-20251001" {
		t.Fatalf("friendly name not resolved: %s", got)
	}
	if got := resolveModel("custom-model", anthropicModels); got != "custom-model" {
		t.Fatalf("direct id should pass through: %s", got)
	}
}
