package whatsapp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(srv *httptest.Server) *Client {
	c := NewClient("test-token", "12345", "v18.0")
	c.baseURL = srv.URL
	c.httpClient = srv.Client()

	return c
}

func TestClient_SendText(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")

		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &gotBody); err != nil {
			t.Errorf("bad request body: %v", err)
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient(srv)
	if err := client.SendText(context.Background(), "919999", "Hello!"); err != nil {
		t.Fatal(err)
	}

	if gotPath != "/12345/messages" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("auth = %q", gotAuth)
	}
	if gotBody["messaging_product"] != "whatsapp" || gotBody["to"] != "919999" {
		t.Errorf("body = %v", gotBody)
	}
	text, _ := gotBody["text"].(map[string]any)
	if text["body"] != "Hello!" {
		t.Errorf("text = %v", text)
	}
}

func TestClient_SendText_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "bad token"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := newTestClient(srv)
	if err := client.SendText(context.Background(), "919999", "Hello!"); err == nil {
		t.Fatal("expected error on non-2xx status")
	}
}

func TestClient_MediaURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/media-id-1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"url": "https://lookaside.example/v/abc"})
	}))
	defer srv.Close()

	client := newTestClient(srv)
	url, err := client.MediaURL(context.Background(), "media-id-1")
	if err != nil {
		t.Fatal(err)
	}
	if url != "https://lookaside.example/v/abc" {
		t.Errorf("url = %q", url)
	}
}

func TestClient_DownloadMedia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Error("download must carry the bearer token")
		}
		w.Write([]byte("opus-bytes"))
	}))
	defer srv.Close()

	client := newTestClient(srv)
	data, err := client.DownloadMedia(context.Background(), srv.URL+"/v/abc")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "opus-bytes" {
		t.Errorf("data = %q", data)
	}
}

func TestWebhookPayload_FirstMessage(t *testing.T) {
	raw := `{
		"entry": [{
			"changes": [{
				"value": {
					"messages": [{"from": "919999", "type": "text", "text": {"body": "Hi"}}]
				}
			}]
		}]
	}`

	var payload WebhookPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatal(err)
	}

	msg, ok := payload.FirstMessage()
	if !ok {
		t.Fatal("expected a message")
	}
	if msg.From != "919999" || msg.Type != MessageTypeText || msg.Text.Body != "Hi" {
		t.Errorf("msg = %+v", msg)
	}
}

func TestWebhookPayload_StatusCallbackHasNoMessage(t *testing.T) {
	raw := `{"entry": [{"changes": [{"value": {}}]}]}`

	var payload WebhookPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatal(err)
	}

	if _, ok := payload.FirstMessage(); ok {
		t.Error("status callbacks carry no user message")
	}
}
