package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testClient(t *testing.T, handler http.HandlerFunc) (*OllamaClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOllamaClient(srv.URL, "llama3.2", 5*time.Second), srv
}

func TestChat(t *testing.T) {
	var gotReq ollamaChatReq
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprint(w, `{"message":{"role":"assistant","content":"four"}}`)
	})

	res := client.Chat(context.Background(), []Message{{Role: "user", Content: "2+2?"}}, 0.3)
	if res.Text != "four" {
		t.Fatalf("unexpected text: %q", res.Text)
	}
	if res.Model != "llama3.2" {
		t.Fatalf("unexpected model: %q", res.Model)
	}
	if gotReq.Stream {
		t.Fatalf("blocking call requested streaming")
	}
	if gotReq.Options.Temperature != 0.3 {
		t.Fatalf("temperature not forwarded: %v", gotReq.Options.Temperature)
	}
}

func TestChatLegacyResponseField(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response":"from the old field"}`)
	})
	res := client.Chat(context.Background(), nil, 0.7)
	if res.Text != "from the old field" {
		t.Fatalf("legacy field not used: %q", res.Text)
	}
}

func TestChatFallbackOnUnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from here on
	client := NewOllamaClient(srv.URL, "llama3.2", time.Second)

	res := client.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, 0.7)
	if res.Model != "error" {
		t.Fatalf("expected sentinel model, got %q", res.Model)
	}
	if !strings.Contains(res.Text, "unable") {
		t.Fatalf("apology missing: %q", res.Text)
	}
}

func TestChatFallbackOnBackendError(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	res := client.Chat(context.Background(), nil, 0.7)
	if res.Model != "error" || !strings.Contains(res.Text, "unable") {
		t.Fatalf("expected apology sentinel, got %+v", res)
	}
}

func TestStreamChat(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		lines := []string{
			`{"message":{"content":"Hel"},"done":false}`,
			`not json at all`, // skipped, not fatal
			`{"message":{"content":"lo"},"done":false}`,
			`{"message":{"content":""},"done":true}`,
			`{"message":{"content":"after done"},"done":false}`,
		}
		for _, l := range lines {
			fmt.Fprintln(w, l)
		}
	})

	var got []string
	for f := range client.StreamChat(context.Background(), []Message{{Role: "user", Content: "hi"}}, 0.7) {
		got = append(got, f)
	}
	if strings.Join(got, "") != "Hello" {
		t.Fatalf("unexpected fragments: %q", got)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(got))
	}
}

func TestStreamChatFallbackYieldsSingleFragment(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := NewOllamaClient(srv.URL, "llama3.2", time.Second)

	var got []string
	for f := range client.StreamChat(context.Background(), nil, 0.7) {
		got = append(got, f)
	}
	if len(got) != 1 {
		t.Fatalf("expected exactly one apology fragment, got %d", len(got))
	}
	if !strings.Contains(got[0], "unable") {
		t.Fatalf("apology missing: %q", got[0])
	}
}

func TestStreamChatStopsOnInStreamError(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"message":{"content":"partial"},"done":false}`)
		fmt.Fprintln(w, `{"error":"model crashed"}`)
		fmt.Fprintln(w, `{"message":{"content":"never seen"},"done":false}`)
	})

	var got []string
	for f := range client.StreamChat(context.Background(), nil, 0.7) {
		got = append(got, f)
	}
	if len(got) != 2 {
		t.Fatalf("expected content then apology, got %q", got)
	}
	if got[0] != "partial" {
		t.Fatalf("unexpected first fragment: %q", got[0])
	}
	if !strings.Contains(got[1], "unable") || !strings.Contains(got[1], "model crashed") {
		t.Fatalf("apology missing the backend error: %q", got[1])
	}
}

func TestStreamChatEndsOnConnectionClose(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"message":{"content":"partial"},"done":false}`)
		// no done marker; the handler returning closes the connection
	})

	var got []string
	for f := range client.StreamChat(context.Background(), nil, 0.7) {
		got = append(got, f)
	}
	if len(got) != 1 || got[0] != "partial" {
		t.Fatalf("unexpected fragments: %q", got)
	}
}
