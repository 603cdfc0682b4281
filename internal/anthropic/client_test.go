package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/calmmom/calmmom/internal/domain"
)

func TestCompleteSendsCredentialsAndPayload(t *testing.T) {
	var gotPath, gotKey, gotVersion string
	var gotBody map[string]interface{}

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode upstream body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{"content":[{"type":"text","text":"hello"}]}`)); err != nil {
			t.Errorf("write upstream response: %v", err)
		}
	}))
	defer upstream.Close()

	c := New(upstream.URL, "secret-key", "claude-sonnet-4-20250514", 1000)
	content, err := c.Complete(context.Background(), "be gentle", []Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if gotPath != "/v1/messages" {
		t.Errorf("Expected path /v1/messages, got %s", gotPath)
	}
	if gotKey != "secret-key" {
		t.Errorf("Expected x-api-key header, got %q", gotKey)
	}
	if gotVersion != apiVersion {
		t.Errorf("Expected anthropic-version %s, got %q", apiVersion, gotVersion)
	}
	if gotBody["model"] != "claude-sonnet-4-20250514" {
		t.Errorf("Expected fixed model identifier, got %v", gotBody["model"])
	}
	if gotBody["max_tokens"] != float64(1000) {
		t.Errorf("Expected token cap 1000, got %v", gotBody["max_tokens"])
	}
	if gotBody["system"] != "be gentle" {
		t.Errorf("Expected system instruction, got %v", gotBody["system"])
	}

	var blocks []ContentBlock
	if err := json.Unmarshal(content, &blocks); err != nil {
		t.Fatalf("content is not a block array: %v", err)
	}
	if len(blocks) != 1 || blocks[0].Text != "hello" {
		t.Errorf("Unexpected content: %v", blocks)
	}
}

func TestCompleteUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		if _, err := w.Write([]byte(`{"error":{"type":"rate_limit_error"}}`)); err != nil {
			t.Errorf("write upstream response: %v", err)
		}
	}))
	defer upstream.Close()

	c := New(upstream.URL, "k", "m", 10)
	_, err := c.Complete(context.Background(), "s", []Message{{Role: "user", Content: "hi"}})

	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("Expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", apiErr.StatusCode)
	}
	if string(apiErr.Body) != `{"error":{"type":"rate_limit_error"}}` {
		t.Errorf("Expected upstream body preserved, got %s", apiErr.Body)
	}
}

func TestReplyExtractsFirstTextBlock(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{"content":[{"type":"text","text":"you are doing fine"}]}`)); err != nil {
			t.Errorf("write upstream response: %v", err)
		}
	}))
	defer upstream.Close()

	c := New(upstream.URL, "k", "m", 10)
	reply, err := c.Reply(context.Background(), "s", []domain.ChatTurn{
		{Role: domain.RoleUser, Text: "rough day"},
	})
	if err != nil {
		t.Fatalf("Reply failed: %v", err)
	}
	if reply != "you are doing fine" {
		t.Errorf("Unexpected reply: %q", reply)
	}
}

func TestReplyTransportFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	upstream.Close() // connection refused

	c := New(upstream.URL, "k", "m", 10)
	if _, err := c.Reply(context.Background(), "s", []domain.ChatTurn{{Role: domain.RoleUser, Text: "hi"}}); err == nil {
		t.Fatal("Expected transport error")
	}
}
