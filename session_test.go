package limber

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSessionLazyStart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(WithBaseURL(server.URL))

	if client.IsRunning() {
		t.Fatal("client must not be running before first use")
	}

	resp := client.Get(context.Background(), "/", nil)
	if resp.IsError() {
		t.Fatalf("unexpected error: %s", resp.Err)
	}
	if !client.IsRunning() {
		t.Error("first request must lazily start the session")
	}
}

func TestSessionStartIdempotent(t *testing.T) {
	client := New()

	client.Start()
	first := client.session
	client.Start()

	if client.session != first {
		t.Error("Start on a running client must be a no-op")
	}
	client.Stop()
}

func TestSessionStopIdempotent(t *testing.T) {
	client := New()

	client.Start()
	client.Stop()
	if client.IsRunning() {
		t.Fatal("client should be stopped")
	}

	// Second stop is a no-op and leaves the same stopped state.
	client.Stop()
	if client.IsRunning() {
		t.Error("double Stop must leave the client stopped")
	}
}

func TestSessionRestartsAfterStop(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(WithBaseURL(server.URL))

	client.Start()
	client.Stop()

	resp := client.Get(context.Background(), "/", nil)
	if resp.IsError() {
		t.Fatalf("request after stop failed: %s", resp.Err)
	}
	if !client.IsRunning() {
		t.Error("a stopped client must transparently restart on the next call")
	}
}

func TestWithSessionBrackets(t *testing.T) {
	client := New()

	err := client.WithSession(func(c *Client) error {
		if !c.IsRunning() {
			t.Error("session must be running inside the bracket")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithSession returned %v", err)
	}
	if client.IsRunning() {
		t.Error("session must be stopped after the bracket")
	}
}

func TestWithSessionStopsOnError(t *testing.T) {
	client := New()
	boom := errors.New("boom")

	err := client.WithSession(func(c *Client) error {
		return boom
	})

	if !errors.Is(err, boom) {
		t.Errorf("WithSession returned %v, want the callback error", err)
	}
	if client.IsRunning() {
		t.Error("session must be stopped even when the bracket body fails")
	}
}

func TestWithSessionStopsOnPanic(t *testing.T) {
	client := New()

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected panic to propagate")
			}
		}()
		_ = client.WithSession(func(c *Client) error {
			panic("boom")
		})
	}()

	if client.IsRunning() {
		t.Error("session must be stopped even when the bracket body panics")
	}
}
