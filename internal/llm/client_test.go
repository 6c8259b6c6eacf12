package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func strPtr(s string) *string { return &s }

func TestNewClientValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(Config{}, zaptest.NewLogger(t)); err == nil {
		t.Fatalf("expected validation error, got nil")
	}
	if _, err := NewProvider(Config{BaseURL: "http://x", APIKey: "k", Backend: "carrier-pigeon"}, zaptest.NewLogger(t)); err == nil {
		t.Fatalf("expected unknown backend error, got nil")
	}
}

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := (&Config{BaseURL: "https://api.openai.com//", MaxRetries: -3}).WithDefaults()
	if cfg.BaseURL != "https://api.openai.com" {
		t.Fatalf("expected trailing slashes trimmed, got %q", cfg.BaseURL)
	}
	if cfg.Backend != BackendHTTP {
		t.Fatalf("expected http backend by default, got %q", cfg.Backend)
	}
	if cfg.MaxRetries != 0 {
		t.Fatalf("expected no retries by default, got %d", cfg.MaxRetries)
	}
	if cfg.UpstreamTimeout != 60*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.UpstreamTimeout)
	}
}

func TestCreateResponseSuccess(t *testing.T) {
	t.Parallel()

	var gotReq map[string]any
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/responses" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}

		gotAuth = r.Header.Get("Authorization")
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		if err := json.Unmarshal(body, &gotReq); err != nil {
			t.Errorf("unmarshal request: %v", err)
		}

		resp := providerResponse{
			ID:        "resp_1",
			Object:    "response",
			CreatedAt: 1_700_000_000,
			Model:     "gpt-5-mini",
			Status:    "completed",
			Output: []providerOutputItem{
				{ID: "rs_1", Type: "reasoning"},
				{
					ID:   "msg_1",
					Type: OutputTypeMessage,
					Role: "assistant",
					Content: []providerContentBlock{
						{Type: "output_text", Text: strPtr(`{"english":"a cat"}`)},
					},
				},
			},
			Usage: &providerUsage{InputTokens: 12, OutputTokens: 7, TotalTokens: 19},
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL, APIKey: "test-key"}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer closeClient(client)

	resp, err := client.CreateResponse(context.Background(), &ResponseRequest{
		Model:           "gpt-5-mini",
		ReasoningEffort: EffortLow,
		Instructions:    "be brief",
		Input:           "User idea: a cat",
		MaxOutputTokens: 800,
		JSONObject:      true,
	})
	if err != nil {
		t.Fatalf("CreateResponse: %v", err)
	}

	if gotAuth != "Bearer test-key" {
		t.Fatalf("unexpected Authorization header: %s", gotAuth)
	}
	if gotReq["model"] != "gpt-5-mini" || gotReq["input"] != "User idea: a cat" || gotReq["instructions"] != "be brief" {
		t.Fatalf("unexpected request body: %#v", gotReq)
	}
	if gotReq["max_output_tokens"] != float64(800) {
		t.Fatalf("unexpected max_output_tokens: %#v", gotReq["max_output_tokens"])
	}
	if reasoning, _ := gotReq["reasoning"].(map[string]any); reasoning["effort"] != "low" {
		t.Fatalf("unexpected reasoning: %#v", gotReq["reasoning"])
	}
	text, _ := gotReq["text"].(map[string]any)
	if format, _ := text["format"].(map[string]any); format["type"] != "json_object" {
		t.Fatalf("unexpected text format: %#v", gotReq["text"])
	}

	if resp.FlatText != nil {
		t.Fatalf("raw API has no output_text, expected nil FlatText, got %q", *resp.FlatText)
	}
	if len(resp.Output) != 2 || resp.Output[1].Type != OutputTypeMessage {
		t.Fatalf("unexpected output: %#v", resp.Output)
	}
	if got := ExtractText(resp); got != `{"english":"a cat"}` {
		t.Fatalf("unexpected extracted text: %q", got)
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 19 {
		t.Fatalf("usage not mapped correctly: %#v", resp.Usage)
	}
}

func TestCreateResponseOutputText(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"r","model":"m","status":"completed","output":[],"output_text":"{\"english\":\"x\"}"}`)
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL, APIKey: "k"}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer closeClient(client)

	resp, err := client.CreateResponse(context.Background(), &ResponseRequest{Model: "m", Input: "i"})
	if err != nil {
		t.Fatalf("CreateResponse: %v", err)
	}
	if resp.FlatText == nil || *resp.FlatText != `{"english":"x"}` {
		t.Fatalf("expected output_text to map to FlatText, got %#v", resp.FlatText)
	}
}

func TestCreateResponseValidationError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("server should not be called for invalid request")
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL, APIKey: "key"}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer closeClient(client)

	_, err = client.CreateResponse(context.Background(), &ResponseRequest{})
	if err == nil || !strings.Contains(err.Error(), "invalid request") {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = client.CreateResponse(context.Background(), &ResponseRequest{Model: "m", Input: "i", ReasoningEffort: "extreme"})
	if err == nil || !strings.Contains(err.Error(), "reasoning effort") {
		t.Fatalf("expected effort validation error, got %v", err)
	}
}

func TestCreateResponseProviderError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"message":"Unsupported parameter","type":"invalid_request_error","code":null}}`)
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL, APIKey: "key"}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer closeClient(client)

	_, err = client.CreateResponse(context.Background(), &ResponseRequest{Model: "m", Input: "i"})
	if err == nil || !strings.Contains(err.Error(), "Unsupported parameter") || !strings.Contains(err.Error(), "400") {
		t.Fatalf("expected structured provider error, got %v", err)
	}
}

func TestCreateResponseNoRetryByDefault(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, "overloaded")
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL, APIKey: "key"}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer closeClient(client)

	_, err = client.CreateResponse(context.Background(), &ResponseRequest{Model: "m", Input: "i"})
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Fatalf("expected 503 error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected exactly one upstream call, got %d", calls.Load())
	}
}

func TestCreateResponseRetries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"r","model":"m","output":[{"type":"message","content":[{"type":"output_text","text":"{}"}]}]}`)
	}))
	defer srv.Close()

	client, err := NewClient(Config{
		BaseURL:     srv.URL,
		APIKey:      "key",
		MaxRetries:  2,
		BaseBackoff: time.Millisecond,
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer closeClient(client)

	resp, err := client.CreateResponse(context.Background(), &ResponseRequest{Model: "m", Input: "i"})
	if err != nil {
		t.Fatalf("CreateResponse: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 upstream calls, got %d", calls.Load())
	}
	if ExtractText(resp) != "{}" {
		t.Fatalf("unexpected text: %q", ExtractText(resp))
	}
}

func TestCreateResponseContextCancelled(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	// runs before srv.Close so a parked handler cannot block shutdown
	defer close(release)

	client, err := NewClient(Config{BaseURL: srv.URL, APIKey: "key"}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer closeClient(client)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = client.CreateResponse(ctx, &ResponseRequest{Model: "m", Input: "i"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
}

func closeClient(c Provider) {
	if closer, ok := c.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}
