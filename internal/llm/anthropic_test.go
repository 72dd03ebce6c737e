package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestCreateMessageText(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Error("missing api key header")
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Error("missing anthropic-version header")
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if _, ok := body["tools"]; !ok {
			t.Error("tools not advertised")
		}
		if tc, ok := body["tool_choice"].(map[string]any); !ok || tc["type"] != "auto" {
			t.Error("tool_choice auto not set")
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":          "msg_1",
			"stop_reason": "end_turn",
			"content": []map[string]any{
				{"type": "text", "text": "hello "},
				{"type": "text", "text": "world"},
			},
		})
	})

	resp, err := client.CreateMessage(context.Background(), Request{
		System:   "system prompt",
		Messages: []Message{UserText("hi")},
		Tools:    []ToolSpec{{Name: "noop", InputSchema: map[string]any{"type": "object"}}},
	})
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if resp.Text() != "hello world" {
		t.Errorf("Text() = %q, want %q", resp.Text(), "hello world")
	}
	if len(resp.ToolUses()) != 0 {
		t.Errorf("unexpected tool uses: %v", resp.ToolUses())
	}
}

func TestCreateMessageToolUse(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":          "msg_2",
			"stop_reason": "tool_use",
			"content": []map[string]any{
				{"type": "text", "text": "let me check"},
				{"type": "tool_use", "id": "tu_1", "name": "lookup_known_product", "input": map[string]any{"query": "segway"}},
			},
		})
	})

	resp, err := client.CreateMessage(context.Background(), Request{Messages: []Message{UserText("hi")}})
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if resp.StopReason != StopReasonToolUse {
		t.Errorf("StopReason = %q, want tool_use", resp.StopReason)
	}

	uses := resp.ToolUses()
	if len(uses) != 1 {
		t.Fatalf("len(ToolUses) = %d, want 1", len(uses))
	}
	if uses[0].Name != "lookup_known_product" {
		t.Errorf("tool name = %q", uses[0].Name)
	}

	var input struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(uses[0].Input, &input); err != nil {
		t.Fatalf("unmarshal tool input: %v", err)
	}
	if input.Query != "segway" {
		t.Errorf("query = %q, want segway", input.Query)
	}
}

func TestCreateMessageRateLimited(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"type":"rate_limit_error"}}`, http.StatusTooManyRequests)
	})

	_, err := client.CreateMessage(context.Background(), Request{Messages: []Message{UserText("hi")}})
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
}

func TestCreateMessageServiceError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.CreateMessage(context.Background(), Request{Messages: []Message{UserText("hi")}})
	if !errors.Is(err, ErrService) {
		t.Errorf("expected ErrService, got %v", err)
	}
}

func TestCreateMessageTimeout(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.CreateMessage(ctx, Request{Messages: []Message{UserText("hi")}})
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
}

func TestCreateMessageConnectionError(t *testing.T) {
	client, err := NewClient(Config{APIKey: "k", BaseURL: "http://127.0.0.1:1", Timeout: 500 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = client.CreateMessage(context.Background(), Request{Messages: []Message{UserText("hi")}})
	if !errors.Is(err, ErrConnection) {
		t.Errorf("expected ErrConnection, got %v", err)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Error("expected error for missing API key")
	}
}
