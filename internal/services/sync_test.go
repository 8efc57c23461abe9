package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/rotor/internal/shared"
)

func testService(url string) *SyncService {
	return NewSyncService(
		shared.SyncConfig{ProxyURL: url, RateLimit: 100},
		nil,
		shared.NewLogger(io.Discard),
	)
}

func TestSyncPush(t *testing.T) {
	t.Run("Accepted", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			if r.URL.Path != "/playlists" {
				t.Errorf("expected /playlists, got %s", r.URL.Path)
			}
			if ct := r.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected JSON content type, got %s", ct)
			}

			var payload map[string]any
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Errorf("payload does not parse: %v", err)
			}

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(PushReceipt{RemoteID: "r-42", Accepted: 12})
		}))
		defer server.Close()

		receipt, err := testService(server.URL).Push(context.Background(), []byte(`{"name":"evening"}`))
		if err != nil {
			t.Fatalf("push failed: %v", err)
		}
		if receipt.RemoteID != "r-42" || receipt.Accepted != 12 {
			t.Errorf("unexpected receipt: %+v", receipt)
		}
	})

	t.Run("Rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "duplicate playlist", http.StatusConflict)
		}))
		defer server.Close()

		_, err := testService(server.URL).Push(context.Background(), []byte(`{}`))
		if !errors.Is(err, shared.ErrSyncRejected) {
			t.Errorf("expected ErrSyncRejected, got %v", err)
		}
	})

	t.Run("NoProxyConfigured", func(t *testing.T) {
		_, err := testService("").Push(context.Background(), []byte(`{}`))
		if !errors.Is(err, shared.ErrSyncUnavailable) {
			t.Errorf("expected ErrSyncUnavailable, got %v", err)
		}
	})

	t.Run("ProxyUnreachable", func(t *testing.T) {
		_, err := testService("http://127.0.0.1:1").Push(context.Background(), []byte(`{}`))
		if !errors.Is(err, shared.ErrSyncUnavailable) {
			t.Errorf("expected ErrSyncUnavailable, got %v", err)
		}
	})

	t.Run("EmptySuccessBody", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		receipt, err := testService(server.URL).Push(context.Background(), []byte(`{}`))
		if err != nil {
			t.Fatalf("push failed: %v", err)
		}
		if receipt.RemoteID != "" {
			t.Errorf("expected empty receipt, got %+v", receipt)
		}
	})

	t.Run("CancelledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := testService("http://example.com").Push(ctx, []byte(`{}`)); err == nil {
			t.Error("expected error from cancelled context")
		}
	})
}

func TestSyncPing(t *testing.T) {
	t.Run("Healthy", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/health" {
				t.Errorf("expected /health, got %s", r.URL.Path)
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		if err := testService(server.URL).Ping(context.Background()); err != nil {
			t.Errorf("ping failed: %v", err)
		}
	})

	t.Run("Unhealthy", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		if err := testService(server.URL).Ping(context.Background()); !errors.Is(err, shared.ErrSyncUnavailable) {
			t.Errorf("expected ErrSyncUnavailable, got %v", err)
		}
	})
}

func TestRateLimitDefaults(t *testing.T) {
	svc := NewSyncService(shared.SyncConfig{ProxyURL: "http://example.com"}, nil, shared.NewLogger(io.Discard))
	if svc.limiter.Limit() != 1 {
		t.Errorf("expected default limit 1, got %v", svc.limiter.Limit())
	}
}
