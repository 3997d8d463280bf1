package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestRestyClientSendsQueryAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if got := r.URL.Query().Get("category"); got != "sports" {
			t.Errorf("expected category=sports, got %q", got)
		}
		if got := r.URL.Query().Get("fixed"); got != "1" {
			t.Errorf("expected pre-existing query to survive, got %q", got)
		}
		if got := r.Header.Get("X-Test"); got != "yes" {
			t.Errorf("missing header, got %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != defaultUserAgent {
			t.Errorf("unexpected user agent %q", got)
		}
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"ok":false}`))
	}))
	defer srv.Close()

	client := NewRestyClient(2 * time.Second)
	resp, err := client.Get(context.Background(), srv.URL+"/search?fixed=1",
		url.Values{"category": {"sports"}}, map[string]string{"X-Test": "yes"})
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if resp.StatusCode() != http.StatusTeapot {
		t.Fatalf("expected status passthrough, got %d", resp.StatusCode())
	}
	if string(resp.Body()) != `{"ok":false}` {
		t.Fatalf("unexpected body %q", resp.Body())
	}
}

func TestRestyClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := srv.URL
	srv.Close()

	client := NewRestyClient(time.Second)
	if _, err := client.Get(context.Background(), addr, nil, nil); err == nil {
		t.Fatal("expected error for closed server")
	}
}
