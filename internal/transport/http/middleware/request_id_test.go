package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	appCtx "github.com/streamview/auth-service/internal/pkg/context"
)

func TestRequestID_GeneratesWhenAbsent(t *testing.T) {
	t.Parallel()

	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = appCtx.GetRequestID(r.Context())
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if seen == "" {
		t.Fatalf("expected generated request id in context")
	}
	if rr.Header().Get(HeaderXRequestID) != seen {
		t.Fatalf("expected header to match context id")
	}
}

func TestRequestID_PropagatesIncoming(t *testing.T) {
	t.Parallel()

	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = appCtx.GetRequestID(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(HeaderXRequestID, "req-123")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if seen != "req-123" {
		t.Fatalf("expected propagated id, got %q", seen)
	}
	if rr.Header().Get(HeaderXRequestID) != "req-123" {
		t.Fatalf("expected echoed header")
	}
}
