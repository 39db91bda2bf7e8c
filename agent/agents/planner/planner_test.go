package planner

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	contractx "github.com/tanpawarit/tool-enhanced-reasoning/agent/contract"
	llmx "github.com/tanpawarit/tool-enhanced-reasoning/agent/llm"
)

type capturedRequest struct {
	Model               string         `json:"model"`
	Temperature         float64        `json:"temperature"`
	MaxCompletionTokens int64          `json:"max_completion_tokens"`
	Reasoning           map[string]any `json:"reasoning"`
	Messages            []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func completionBody(content string) string {
	body, _ := json.Marshal(map[string]any{
		"id":      "cmpl-1",
		"object":  "chat.completion",
		"created": 0,
		"model":   "test-model",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	})
	return string(body)
}

func newTestCompleter(t *testing.T, model string, handler http.HandlerFunc) *Completer {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := New(llmx.Config{
		BaseURL:            server.URL + "/v1",
		APIKey:             "test-key",
		Model:              model,
		MaxCompletionToken: 512,
		Temperature:        0.2,
		Timeout:            5 * time.Second,
		SiteName:           "tool-enhanced-reasoning",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestCompleteSendsPromptAsUserMessage(t *testing.T) {
	t.Parallel()

	var got capturedRequest
	var headers http.Header
	c := newTestCompleter(t, "test-model", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		headers = r.Header.Clone()
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody("  {\"operations\": []}  ")))
	})

	text, err := c.Complete(context.Background(), "User Query: 2+2\n\nResponse:")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if text != `{"operations": []}` {
		t.Fatalf("unexpected text: %q", text)
	}

	if got.Model != "test-model" || got.MaxCompletionTokens != 512 {
		t.Fatalf("unexpected request: %#v", got)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" || got.Messages[0].Content != "User Query: 2+2\n\nResponse:" {
		t.Fatalf("unexpected messages: %#v", got.Messages)
	}
	if got.Reasoning != nil {
		t.Fatalf("reasoning must only be set for blacklisted models: %#v", got.Reasoning)
	}
	if headers.Get("Authorization") != "Bearer test-key" || headers.Get("X-Title") != "tool-enhanced-reasoning" {
		t.Fatalf("unexpected headers: %v", headers)
	}
}

func TestCompleteDisablesReasoningForBlacklistedModels(t *testing.T) {
	t.Parallel()

	var got capturedRequest
	c := newTestCompleter(t, "x-ai/grok-4.1-fast", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody("{}")))
	})

	if _, err := c.Complete(context.Background(), "prompt"); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got.Reasoning["exclude"] != true {
		t.Fatalf("expected reasoning to be excluded, got %#v", got.Reasoning)
	}
}

func TestCompleteDoesNotRetry(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestCompleter(t, "test-model", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded"}}`))
	})

	_, err := c.Complete(context.Background(), "prompt")
	if !errors.Is(err, contractx.ErrPlannerCall) {
		t.Fatalf("expected ErrPlannerCall, got %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected a single attempt, got %d", n)
	}
}

func TestCompleteRejectsEmptyCompletion(t *testing.T) {
	t.Parallel()

	c := newTestCompleter(t, "test-model", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody("   ")))
	})

	_, err := c.Complete(context.Background(), "prompt")
	if !errors.Is(err, contractx.ErrPlannerCall) || !errors.Is(err, errEmptyCompletion) {
		t.Fatalf("expected empty completion error, got %v", err)
	}
}

func TestNewValidatesConfig(t *testing.T) {
	t.Parallel()

	_, err := New(llmx.Config{Model: "m"})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
