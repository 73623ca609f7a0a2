package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/aegisops/secgraph/pkg/logging"
)

func TestGracefulServer_StartAndShutdown(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	gs := NewGracefulServer("127.0.0.1:0", handler, logging.NewNopLogger())

	done := make(chan error, 1)
	go func() {
		done <- gs.Start()
	}()

	// Give the listener time to bind
	time.Sleep(100 * time.Millisecond)

	if err := gs.Shutdown(time.Second); err != nil {
		t.Errorf("Shutdown error: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Server did not stop after Shutdown")
	}
}

func TestGracefulServer_ShutdownIdempotent(t *testing.T) {
	gs := NewGracefulServer("127.0.0.1:0", http.NewServeMux(), logging.NewNopLogger())

	go func() { _ = gs.Start() }()
	time.Sleep(50 * time.Millisecond)

	if err := gs.Shutdown(time.Second); err != nil {
		t.Errorf("First shutdown failed: %v", err)
	}
	// Second call must be a no-op, not a double close
	if err := gs.Shutdown(time.Second); err != nil {
		t.Errorf("Second shutdown failed: %v", err)
	}
}

func TestGracefulServer_BindFailure(t *testing.T) {
	gs := NewGracefulServer("256.256.256.256:99999", http.NewServeMux(), logging.NewNopLogger())

	if err := gs.Start(); err == nil {
		t.Error("Expected listen error for invalid address")
	}
}
