package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/peroute/concierge/internal/domain"
)

// chatResponse mirrors the OpenAI-compatible chat completions response.
type chatResponse struct {
	Object  string `json:"object"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func chatServer(t *testing.T, content string, capture *[][2]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		if capture != nil {
			var req struct {
				Messages []struct {
					Role    string `json:"role"`
					Content string `json:"content"`
				} `json:"messages"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode request: %v", err)
			}
			for _, m := range req.Messages {
				*capture = append(*capture, [2]string{m.Role, m.Content})
			}
		}

		resp := chatResponse{Object: "chat.completion", Model: "test-model"}
		resp.Choices = append(resp.Choices, struct {
			Index   int `json:"index"`
			Message struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		}{})
		resp.Choices[0].Message.Role = "assistant"
		resp.Choices[0].Message.Content = content
		resp.Choices[0].FinishReason = "stop"

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestGenerator_Generate(t *testing.T) {
	var messages [][2]string
	server := chatServer(t, "Here are some resources.", &messages)
	defer server.Close()

	gen := NewGenerator(&GeneratorConfig{APIKey: "test-key", BaseURL: server.URL, Model: "test-model"})

	got, err := gen.Generate(context.Background(), "You are a concierge.", "library hours", "1. Library")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got != "Here are some resources." {
		t.Errorf("unexpected completion: %q", got)
	}

	if len(messages) != 2 {
		t.Fatalf("expected system + user message, got %d messages", len(messages))
	}
	if messages[0][0] != "system" || messages[0][1] != "You are a concierge." {
		t.Errorf("unexpected system message: %v", messages[0])
	}
	if messages[1][0] != "user" || messages[1][1] != "library hours\n\n1. Library" {
		t.Errorf("unexpected user message: %v", messages[1])
	}
}

func TestGenerator_EmptyCompletion(t *testing.T) {
	server := chatServer(t, "", nil)
	defer server.Close()

	gen := NewGenerator(&GeneratorConfig{APIKey: "test-key", BaseURL: server.URL, Model: "test-model"})

	_, err := gen.Generate(context.Background(), "system", "user")
	if !errors.Is(err, domain.ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
}

func TestGenerator_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "model overloaded",
				"type":    "server_error",
			},
		})
	}))
	defer server.Close()

	gen := NewGenerator(&GeneratorConfig{APIKey: "test-key", BaseURL: server.URL, Model: "test-model"})

	_, err := gen.Generate(context.Background(), "system", "user")
	if !errors.Is(err, domain.ErrGenerativeUnavailable) {
		t.Fatalf("expected ErrGenerativeUnavailable, got %v", err)
	}
}

func TestGenerator_NoSegments(t *testing.T) {
	gen := NewGenerator(&GeneratorConfig{APIKey: "test-key", Model: "test-model"})

	_, err := gen.Generate(context.Background())
	if !errors.Is(err, domain.ErrGenerativeUnavailable) {
		t.Fatalf("expected ErrGenerativeUnavailable, got %v", err)
	}
}
