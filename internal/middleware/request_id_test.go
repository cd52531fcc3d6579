package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestIDGenerated(t *testing.T) {
	var seen string
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(requestIDHeader)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if seen == "" {
		t.Fatal("expected a generated request id on the request")
	}
	if len(seen) != 24 {
		t.Fatalf("expected 24 hex characters, got %q", seen)
	}
	if got := rec.Header().Get(requestIDHeader); got != seen {
		t.Fatalf("response header %q does not match request id %q", got, seen)
	}
}

func TestRequestIDPreserved(t *testing.T) {
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "gateway-abc123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get(requestIDHeader); got != "gateway-abc123" {
		t.Fatalf("expected supplied id to be kept, got %q", got)
	}
}
