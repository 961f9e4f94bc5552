package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-fusionauth/core"
)

type capturedRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Header http.Header
	Body   map[string]any
	Raw    string
}

type fakeFusionAuth struct {
	mu       sync.Mutex
	requests []capturedRequest
	handler  func(w http.ResponseWriter, req capturedRequest)
}

func newFakeFusionAuth(t *testing.T, handler func(w http.ResponseWriter, req capturedRequest)) (*fakeFusionAuth, *httptest.Server) {
	t.Helper()
	fake := &fakeFusionAuth{handler: handler}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		captured := capturedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  map[string]string{},
			Header: r.Header.Clone(),
			Raw:    string(raw),
		}
		for key := range r.URL.Query() {
			captured.Query[key] = r.URL.Query().Get(key)
		}
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &captured.Body)
		}
		fake.mu.Lock()
		fake.requests = append(fake.requests, captured)
		fake.mu.Unlock()
		fake.handler(w, captured)
	}))
	t.Cleanup(server.Close)
	return fake, server
}

func (f *fakeFusionAuth) snapshot() []capturedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]capturedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func newTestClient(t *testing.T, server *httptest.Server, tenant string) *Client {
	t.Helper()
	client, err := NewClient(core.Credentials{
		InstanceURL: server.URL + "/",
		APIKey:      "api-key",
		TenantID:    tenant,
	}, WithHTTPDoer(server.Client()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestClientRequest_SendsAuthTenantAndBody(t *testing.T) {
	fake, server := newFakeFusionAuth(t, func(w http.ResponseWriter, _ capturedRequest) {
		writeJSON(w, http.StatusOK, map[string]any{"user": map[string]any{"id": "u1"}})
	})
	client := newTestClient(t, server, "default-tenant")

	out, err := client.Request(context.Background(), http.MethodPost, "/user", map[string]any{
		"user": map[string]any{"email": "jane@example.com"},
	}, nil, "")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if user, _ := out["user"].(map[string]any); user["id"] != "u1" {
		t.Fatalf("unexpected response %#v", out)
	}

	req := fake.snapshot()[0]
	if req.Path != "/api/user" {
		t.Fatalf("expected /api prefix, got %q", req.Path)
	}
	if req.Header.Get("Authorization") != "api-key" {
		t.Fatalf("expected raw api key authorization header, got %q", req.Header.Get("Authorization"))
	}
	if req.Header.Get("Content-Type") != "application/json" {
		t.Fatalf("expected json content type, got %q", req.Header.Get("Content-Type"))
	}
	if req.Header.Get("X-FusionAuth-TenantId") != "default-tenant" {
		t.Fatalf("expected default tenant header, got %q", req.Header.Get("X-FusionAuth-TenantId"))
	}
	if user, _ := req.Body["user"].(map[string]any); user["email"] != "jane@example.com" {
		t.Fatalf("unexpected body %#v", req.Body)
	}
}

func TestClientRequest_TenantOverrideAndOmission(t *testing.T) {
	fake, server := newFakeFusionAuth(t, func(w http.ResponseWriter, _ capturedRequest) {
		writeJSON(w, http.StatusOK, map[string]any{})
	})

	withDefault := newTestClient(t, server, "default-tenant")
	if _, err := withDefault.Request(context.Background(), http.MethodGet, "/tenant", nil, nil, "call-tenant"); err != nil {
		t.Fatalf("request: %v", err)
	}
	withoutTenant := newTestClient(t, server, "")
	if _, err := withoutTenant.Request(context.Background(), http.MethodGet, "/tenant", nil, nil, ""); err != nil {
		t.Fatalf("request: %v", err)
	}

	requests := fake.snapshot()
	if got := requests[0].Header.Get("X-FusionAuth-TenantId"); got != "call-tenant" {
		t.Fatalf("expected per-call tenant, got %q", got)
	}
	if _, ok := requests[1].Header["X-Fusionauth-Tenantid"]; ok {
		t.Fatalf("expected tenant header to be omitted")
	}
}

func TestClientRequest_BodyAndQueryRules(t *testing.T) {
	fake, server := newFakeFusionAuth(t, func(w http.ResponseWriter, _ capturedRequest) {
		w.WriteHeader(http.StatusOK)
	})
	client := newTestClient(t, server, "")
	ctx := context.Background()

	out, err := client.Request(ctx, http.MethodGet, "/user", map[string]any{"ignored": true}, map[string]any{"email": "a@b.c"}, "")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty object for empty body, got %#v", out)
	}
	if _, err := client.Request(ctx, http.MethodDelete, "/user/bulk", map[string]any{"userIds": []string{"a"}}, nil, ""); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := client.Request(ctx, http.MethodPut, "/user/verify-email/u1", map[string]any{}, map[string]any{}, ""); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := client.Request(ctx, http.MethodDelete, "/user/u1", nil, map[string]any{"hardDelete": false, "limit": 5}, ""); err != nil {
		t.Fatalf("delete: %v", err)
	}

	requests := fake.snapshot()
	if requests[0].Raw != "" {
		t.Fatalf("expected no body on GET, got %q", requests[0].Raw)
	}
	if requests[0].Query["email"] != "a@b.c" {
		t.Fatalf("expected email query, got %#v", requests[0].Query)
	}
	if ids, _ := requests[1].Body["userIds"].([]any); len(ids) != 1 {
		t.Fatalf("expected DELETE body to be sent, got %q", requests[1].Raw)
	}
	if requests[2].Raw != "" || len(requests[2].Query) != 0 {
		t.Fatalf("expected empty body and query to be omitted, got body=%q query=%#v", requests[2].Raw, requests[2].Query)
	}
	if requests[3].Query["hardDelete"] != "false" || requests[3].Query["limit"] != "5" {
		t.Fatalf("unexpected encoded query %#v", requests[3].Query)
	}
}

func TestClientRequest_FlattensAPIErrors(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     any
		message  string
		category goerrors.Category
	}{
		{
			name:   "general errors",
			status: http.StatusBadRequest,
			body: map[string]any{"generalErrors": []any{
				map[string]any{"code": "x", "message": "first"},
				map[string]any{"code": "y", "message": "second"},
			}},
			message:  "first, second",
			category: goerrors.CategoryBadInput,
		},
		{
			name:   "field errors",
			status: http.StatusBadRequest,
			body: map[string]any{"fieldErrors": map[string]any{
				"user.email": []any{map[string]any{"message": "required"}},
			}},
			message:  "user.email: required",
			category: goerrors.CategoryBadInput,
		},
		{
			name:     "not found without body",
			status:   http.StatusNotFound,
			body:     nil,
			message:  "Request failed with status code 404",
			category: goerrors.CategoryNotFound,
		},
		{
			name:     "unknown json body",
			status:   http.StatusInternalServerError,
			body:     map[string]any{"other": true},
			message:  "Unknown error occurred",
			category: goerrors.CategoryExternal,
		},
		{
			name:     "unauthorized",
			status:   http.StatusUnauthorized,
			body:     map[string]any{"message": "bad key"},
			message:  "bad key",
			category: goerrors.CategoryAuth,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, server := newFakeFusionAuth(t, func(w http.ResponseWriter, _ capturedRequest) {
				if tc.body == nil {
					w.WriteHeader(tc.status)
					return
				}
				writeJSON(w, tc.status, tc.body)
			})
			client := newTestClient(t, server, "")
			_, err := client.Request(context.Background(), http.MethodPost, "/user", map[string]any{"a": 1}, nil, "")
			if err == nil {
				t.Fatalf("expected error")
			}
			var rich *goerrors.Error
			if !goerrors.As(err, &rich) {
				t.Fatalf("expected go-errors envelope, got %T", err)
			}
			if rich.Message != tc.message {
				t.Fatalf("expected message %q, got %q", tc.message, rich.Message)
			}
			if rich.Category != tc.category {
				t.Fatalf("expected category %q, got %q", tc.category, rich.Category)
			}
			if rich.Metadata["status_code"] != tc.status {
				t.Fatalf("expected status metadata %d, got %#v", tc.status, rich.Metadata["status_code"])
			}
		})
	}
}

func TestClientRequest_RateLimitedCarriesRetryAfter(t *testing.T) {
	_, server := newFakeFusionAuth(t, func(w http.ResponseWriter, _ capturedRequest) {
		w.Header().Set("Retry-After", "2")
		writeJSON(w, http.StatusTooManyRequests, map[string]any{"message": "slow down"})
	})
	client := newTestClient(t, server, "")
	_, err := client.Request(context.Background(), http.MethodGet, "/user/u1", nil, nil, "")
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %v", err)
	}
	if rich.TextCode != core.ErrorRateLimited {
		t.Fatalf("expected rate limited text code, got %q", rich.TextCode)
	}
	if rich.Metadata["retry_after_ms"] != int64(2000) {
		t.Fatalf("expected retry metadata, got %#v", rich.Metadata)
	}
}

func TestClientRequestAllItems_Paginates(t *testing.T) {
	const total = 250
	fake, server := newFakeFusionAuth(t, func(w http.ResponseWriter, req capturedRequest) {
		start, _ := strconv.Atoi(req.Query["startRow"])
		size, _ := strconv.Atoi(req.Query["numberOfResults"])
		users := []any{}
		for i := start; i < total && i < start+size; i++ {
			users = append(users, map[string]any{"id": strconv.Itoa(i)})
		}
		writeJSON(w, http.StatusOK, map[string]any{"users": users, "total": total})
	})
	client := newTestClient(t, server, "")

	items, err := client.RequestAllItems(context.Background(), http.MethodPost, "/user/search", "users",
		map[string]any{"search": map[string]any{"queryString": "*"}}, map[string]any{"extra": "x"}, "")
	if err != nil {
		t.Fatalf("request all: %v", err)
	}
	if len(items) != total {
		t.Fatalf("expected %d items, got %d", total, len(items))
	}
	if items[0]["id"] != "0" || items[total-1]["id"] != "249" {
		t.Fatalf("unexpected ordering first=%v last=%v", items[0]["id"], items[total-1]["id"])
	}

	requests := fake.snapshot()
	if len(requests) != 3 {
		t.Fatalf("expected three pages, got %d", len(requests))
	}
	for index, req := range requests {
		if req.Query["startRow"] != strconv.Itoa(index*PageSize) {
			t.Fatalf("page %d: unexpected startRow %q", index, req.Query["startRow"])
		}
		if req.Query["numberOfResults"] != "100" || req.Query["extra"] != "x" {
			t.Fatalf("page %d: unexpected query %#v", index, req.Query)
		}
		if search, _ := req.Body["search"].(map[string]any); search["queryString"] != "*" {
			t.Fatalf("page %d: expected search body, got %q", index, req.Raw)
		}
	}
}

func TestClientRequestAllItems_StopsWhenServerIgnoresStartRow(t *testing.T) {
	fake, server := newFakeFusionAuth(t, func(w http.ResponseWriter, _ capturedRequest) {
		users := make([]any, 0, PageSize)
		for i := 0; i < PageSize; i++ {
			users = append(users, map[string]any{"id": strconv.Itoa(i)})
		}
		writeJSON(w, http.StatusOK, map[string]any{"users": users})
	})
	client := newTestClient(t, server, "")

	items, err := client.RequestAllItems(context.Background(), http.MethodGet, "/user/search", "users", nil, nil, "")
	if err != nil {
		t.Fatalf("request all: %v", err)
	}
	if len(items) != PageSize {
		t.Fatalf("expected one page of items, got %d", len(items))
	}
	if got := len(fake.snapshot()); got != 2 {
		t.Fatalf("expected the repeated page to stop after 2 requests, got %d", got)
	}
}

func TestClientRequest_RejectsOversizedBody(t *testing.T) {
	_, server := newFakeFusionAuth(t, func(w http.ResponseWriter, _ capturedRequest) {
		writeJSON(w, http.StatusOK, map[string]any{"user": map[string]any{"bio": strings.Repeat("x", 512)}})
	})
	client, err := NewClient(core.Credentials{InstanceURL: server.URL, APIKey: "api-key"},
		WithHTTPDoer(server.Client()), WithMaxResponseBodyBytes(128))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.Request(context.Background(), http.MethodGet, "/user/u1", nil, nil, "")
	if err == nil || !strings.Contains(err.Error(), "exceeds limit of 128 bytes") {
		t.Fatalf("expected body limit error, got %v", err)
	}

	small, err := NewClient(core.Credentials{InstanceURL: server.URL, APIKey: "api-key"},
		WithHTTPDoer(server.Client()), WithMaxResponseBodyBytes(4096))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := small.Request(context.Background(), http.MethodGet, "/user/u1", nil, nil, ""); err != nil {
		t.Fatalf("expected body under the limit to pass, got %v", err)
	}
}

func TestClientRequestAllItems_MissingPropertyStops(t *testing.T) {
	fake, server := newFakeFusionAuth(t, func(w http.ResponseWriter, _ capturedRequest) {
		writeJSON(w, http.StatusOK, map[string]any{"total": 0})
	})
	client := newTestClient(t, server, "")
	items, err := client.RequestAllItems(context.Background(), http.MethodPost, "/system/audit-log/search", "auditLogs", nil, nil, "")
	if err != nil {
		t.Fatalf("request all: %v", err)
	}
	if len(items) != 0 || len(fake.snapshot()) != 1 {
		t.Fatalf("expected a single empty page, got %d items over %d requests", len(items), len(fake.snapshot()))
	}
}

func TestClientTestCredentials(t *testing.T) {
	fake, server := newFakeFusionAuth(t, func(w http.ResponseWriter, req capturedRequest) {
		if req.Header.Get("Authorization") != "api-key" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})
	client := newTestClient(t, server, "")
	if err := client.TestCredentials(context.Background()); err != nil {
		t.Fatalf("test credentials: %v", err)
	}
	if path := fake.snapshot()[0].Path; path != "/api/status" {
		t.Fatalf("expected /api/status, got %q", path)
	}
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	if _, err := NewClient(core.Credentials{InstanceURL: "https://auth.example.com"}); err == nil {
		t.Fatalf("expected api key requirement")
	}
}
