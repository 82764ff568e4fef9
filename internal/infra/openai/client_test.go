package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if req.Model != "test-model" {
			t.Errorf("Expected model test-model, got %s", req.Model)
		}
		if len(req.Messages) != 1 || req.Messages[0].Content != "cheer me up" {
			t.Errorf("Unexpected messages %+v", req.Messages)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"You can do it!"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	c := NewClient("key", server.URL, "test-model")
	text, err := c.Complete(context.Background(), "cheer me up")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if text != "You can do it!" {
		t.Errorf("Unexpected text %q", text)
	}
}

func TestComplete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[]}`))
	}))
	defer server.Close()

	c := NewClient("key", server.URL, "")
	if _, err := c.Complete(context.Background(), "hi"); err == nil {
		t.Error("Expected error for empty choices")
	}
}

func TestComplete_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer server.Close()

	c := NewClient("key", server.URL, "")
	if _, err := c.Complete(context.Background(), "hi"); err == nil {
		t.Error("Expected error for 500")
	}
	if c.Model() != defaultModel {
		t.Errorf("Expected default model, got %s", c.Model())
	}
}
