package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	kgerrors "github.com/easyops/kgpath/pkg/core/errors"
	"github.com/easyops/kgpath/pkg/core/llm"
)

func chatServer(t *testing.T, failures int32, status int) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n <= failures {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"busy","type":"server_error"}}`))
			return
		}

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		last := body.Messages[len(body.Messages)-1].Content

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":    "chatcmpl-1",
			"model": body.Model,
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": "echo: " + last},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 7, "completion_tokens": 3, "total_tokens": 10},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestNewOpenAI_EmptyAPIKey(t *testing.T) {
	_, err := llm.NewOpenAI()
	if !errors.Is(err, kgerrors.ErrInvalidAPIKey) {
		t.Fatalf("expected ErrInvalidAPIKey, got %v", err)
	}
}

func TestNewOpenAI_Defaults(t *testing.T) {
	client, err := llm.NewOpenAI(llm.WithAPIKey("test-api-key"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if client.Name() != "openai" {
		t.Fatalf("expected name 'openai', got %s", client.Name())
	}
	if client.Model() != "gpt-4o-mini" {
		t.Fatalf("expected default model 'gpt-4o-mini', got %s", client.Model())
	}
}

func TestOpenAIResponder_Respond(t *testing.T) {
	srv, calls := chatServer(t, 0, 0)

	client, err := llm.NewOpenAI(
		llm.WithAPIKey("test-api-key"),
		llm.WithBaseURL(srv.URL+"/v1"),
		llm.WithModel("test-model"),
	)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	resp, err := client.Respond(context.Background(), llm.Request{
		System: "continue the dialogue",
		Prompt: "knowledge: [HEAD]A[TAIL]",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Content != "echo: knowledge: [HEAD]A[TAIL]" {
		t.Fatalf("unexpected content %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 10 || resp.FinishReason != "stop" {
		t.Fatalf("unexpected response metadata %+v", resp)
	}
	if *calls != 1 {
		t.Fatalf("expected 1 call, got %d", *calls)
	}
}

func TestOpenAIResponder_RetriesUnavailable(t *testing.T) {
	srv, calls := chatServer(t, 2, http.StatusServiceUnavailable)

	var retries []int
	client, _ := llm.NewOpenAI(
		llm.WithAPIKey("test-api-key"),
		llm.WithBaseURL(srv.URL+"/v1"),
		llm.WithRetry(3, time.Millisecond),
		llm.WithOnRetry(func(attempt int, err error) { retries = append(retries, attempt) }),
	)

	resp, err := client.Respond(context.Background(), llm.Request{Prompt: "hi"})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if resp.Content != "echo: hi" {
		t.Fatalf("unexpected content %q", resp.Content)
	}
	if *calls != 3 {
		t.Fatalf("expected 3 calls, got %d", *calls)
	}
	if len(retries) != 2 || retries[0] != 1 || retries[1] != 2 {
		t.Fatalf("unexpected retry callbacks %v", retries)
	}
}

func TestOpenAIResponder_UnauthorizedNotRetried(t *testing.T) {
	srv, calls := chatServer(t, 10, http.StatusUnauthorized)

	client, _ := llm.NewOpenAI(
		llm.WithAPIKey("bad-key"),
		llm.WithBaseURL(srv.URL+"/v1"),
		llm.WithRetry(3, time.Millisecond),
	)

	_, err := client.Respond(context.Background(), llm.Request{Prompt: "hi"})
	if !errors.Is(err, kgerrors.ErrInvalidAPIKey) {
		t.Fatalf("expected ErrInvalidAPIKey, got %v", err)
	}
	if *calls != 1 {
		t.Fatalf("expected a single call, got %d", *calls)
	}
}

func TestStaticResponder(t *testing.T) {
	r := llm.NewStaticResponder([]string{"first\n", "second"})
	ctx := context.Background()

	for _, want := range []string{"first", "second", ""} {
		resp, err := r.Respond(ctx, llm.Request{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.Content != want {
			t.Fatalf("expected %q, got %q", want, resp.Content)
		}
	}
}
