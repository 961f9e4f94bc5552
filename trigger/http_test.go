package trigger

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTTPHandler_ServesDeliveries(t *testing.T) {
	trigger, sink, _ := newTestTrigger(t, Config{Events: []string{"user.create"}, SignatureSecret: "s3cret"})
	server := httptest.NewServer(NewHTTPHandler(trigger))
	defer server.Close()

	req, err := http.NewRequest(http.MethodPost, server.URL, strings.NewReader(userCreateBody))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("X-FusionAuth-Signature", Sign("s3cret", []byte(userCreateBody)))
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected one emitted record")
	}
}

func TestHTTPHandler_RejectsNonPost(t *testing.T) {
	trigger, _, _ := newTestTrigger(t, Config{IncludeAllEvents: true})
	rec := httptest.NewRecorder()
	NewHTTPHandler(trigger).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/webhook", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	if rec.Header().Get("Allow") != http.MethodPost {
		t.Fatalf("expected Allow header")
	}
}

func TestHTTPHandler_LimitsBodySize(t *testing.T) {
	trigger, _, _ := newTestTrigger(t, Config{IncludeAllEvents: true})
	handler := NewHTTPHandler(trigger)
	handler.MaxBodyBytes = 16
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(userCreateBody)))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
}

func TestHTTPHandler_WritesRejectionMessage(t *testing.T) {
	trigger, _, _ := newTestTrigger(t, Config{IncludeAllEvents: true})
	rec := httptest.NewRecorder()
	NewHTTPHandler(trigger).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{}`)))
	if rec.Code != http.StatusBadRequest || rec.Body.String() != MessageMissingEventType {
		t.Fatalf("expected 400 missing event type, got %d %q", rec.Code, rec.Body.String())
	}
}
