package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAnthropicReasoner_Complete_Success(t *testing.T) {
	// Mock server
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify request
		if r.URL.Path != "/v1/messages" {
			t.Errorf("Expected path /v1/messages, got %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("Expected x-api-key header test-key, got %s", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != "2023-06-01" {
			t.Errorf("Expected anthropic-version header 2023-06-01, got %s", r.Header.Get("anthropic-version"))
		}

		var apiReq anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&apiReq); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if apiReq.System != "test system" {
			t.Errorf("Expected system prompt to pass through, got %q", apiReq.System)
		}

		resp := anthropicResponse{
			ID:   "msg_123",
			Type: "message",
			Role: "assistant",
			Content: []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			}{
				{Type: "text", Text: "  analysis text  "},
			},
			Model: "claude-3-5-sonnet-20241022",
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	config := Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "claude-3-5-sonnet-20241022",
		Timeout: 5,
	}
	reasoner, err := NewAnthropicReasoner(config)
	if err != nil {
		t.Fatalf("Failed to create reasoner: %v", err)
	}

	got, err := reasoner.Complete(context.Background(), CompleteRequest{
		System: "test system",
		Prompt: "analyze this",
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "analysis text" {
		t.Errorf("Expected trimmed response, got %q", got)
	}
}

func TestAnthropicReasoner_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"type": "error",
			"error": map[string]string{
				"type":    "rate_limit_error",
				"message": "usage limit reached",
			},
		})
	}))
	defer server.Close()

	reasoner, err := NewAnthropicReasoner(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create reasoner: %v", err)
	}

	_, err = reasoner.Complete(context.Background(), CompleteRequest{Prompt: "x"})
	if err == nil {
		t.Fatal("Expected error from API failure")
	}
	if !strings.Contains(err.Error(), "rate_limit_error") {
		t.Errorf("Expected API error type in message, got %v", err)
	}
}

func TestNewAnthropicReasoner_RequiresKey(t *testing.T) {
	if _, err := NewAnthropicReasoner(Config{}); err == nil {
		t.Error("Expected error when API key is missing")
	}
}
