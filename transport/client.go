package transport

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-fusionauth/core"
	"github.com/goliatone/go-fusionauth/ratelimit"
)

const (
	// PageSize is the numberOfResults sent with every paginated request.
	PageSize = 100
	// MaxPages bounds RequestAllItems when the server keeps returning full pages.
	MaxPages = 10000

	apiPrefix    = "/api"
	statusPath   = "/status"
	tenantHeader = "X-FusionAuth-TenantId"
)

// API is the request surface the operation executor depends on.
type API interface {
	Request(ctx context.Context, method, endpoint string, body, query map[string]any, tenantID string) (map[string]any, error)
	RequestAllItems(ctx context.Context, method, endpoint, propertyName string, body, query map[string]any, tenantID string) ([]map[string]any, error)
}

type Client struct {
	credentials core.Credentials
	adapter     core.TransportAdapter
	limiter     *ratelimit.Limiter
	observer    *core.Observer
	timeout     time.Duration
	maxBody     int64
	userAgent   string
	now         func() time.Time
}

type ClientOption func(*Client)

func WithAdapter(adapter core.TransportAdapter) ClientOption {
	return func(c *Client) {
		if adapter != nil {
			c.adapter = adapter
		}
	}
}

func WithHTTPDoer(doer HTTPDoer) ClientOption {
	return func(c *Client) {
		if doer != nil {
			c.adapter = NewRESTAdapter(doer)
		}
	}
}

func WithLimiter(limiter *ratelimit.Limiter) ClientOption {
	return func(c *Client) {
		c.limiter = limiter
	}
}

func WithObserver(observer *core.Observer) ClientOption {
	return func(c *Client) {
		if observer != nil {
			c.observer = observer
		}
	}
}

func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithMaxResponseBodyBytes caps every response body; larger bodies fail the
// call. Zero keeps the adapter limit.
func WithMaxResponseBodyBytes(limit int64) ClientOption {
	return func(c *Client) {
		c.maxBody = max(limit, 0)
	}
}

func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.userAgent = strings.TrimSpace(userAgent)
	}
}

func NewClient(credentials core.Credentials, opts ...ClientOption) (*Client, error) {
	if err := credentials.Validate(); err != nil {
		return nil, core.MapError(err)
	}
	client := &Client{
		credentials: credentials,
		adapter:     NewRESTAdapter(nil),
		observer:    core.NewObserver(nil, nil, ""),
		timeout:     core.DefaultHTTPTimeout,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

func (c *Client) Credentials() core.Credentials {
	return c.credentials
}

// Request performs one authenticated call. The endpoint is relative to the
// API root, e.g. "/user/{id}". Empty 2xx bodies decode to an empty object.
func (c *Client) Request(
	ctx context.Context,
	method string,
	endpoint string,
	body map[string]any,
	query map[string]any,
	tenantID string,
) (map[string]any, error) {
	if c == nil {
		return nil, transportError("transport: client is nil", goerrors.CategoryInternal, http.StatusInternalServerError, nil)
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}

	req := core.TransportRequest{
		Method:  method,
		URL:     c.credentials.BaseURL() + apiPrefix + endpoint,
		Headers: c.headers(tenantID),
		Timeout: c.timeout,

		MaxResponseBodyBytes: c.maxBody,
	}
	if len(query) > 0 {
		req.Query = encodeQuery(query)
	}
	if len(body) > 0 && method != http.MethodGet {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, transportWrapError(err, goerrors.CategoryBadInput, "transport: encode request body", http.StatusBadRequest,
				map[string]any{"method": method, "endpoint": endpoint})
		}
		req.Body = payload
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	startedAt := time.Now()
	res, err := c.adapter.Do(ctx, req)
	if err != nil {
		c.logExchange(ctx, method, endpoint, 0, startedAt, err)
		return nil, err
	}
	decoded, err := c.decode(method, endpoint, res)
	c.logExchange(ctx, method, endpoint, res.StatusCode, startedAt, err)
	return decoded, err
}

// RequestAllItems walks startRow/numberOfResults pages and collects
// response[propertyName] until a page comes back short.
func (c *Client) RequestAllItems(
	ctx context.Context,
	method string,
	endpoint string,
	propertyName string,
	body map[string]any,
	query map[string]any,
	tenantID string,
) ([]map[string]any, error) {
	results := []map[string]any{}
	startRow := 0
	var previous []byte
	for page := 0; ; page++ {
		if page >= MaxPages {
			c.observer.Log(ctx, "warn", "fusionauth pagination stopped at page limit", map[string]any{
				"endpoint": endpoint, "pages": page, "items": len(results),
			})
			return results, nil
		}
		if ctx != nil {
			if err := ctx.Err(); err != nil {
				return nil, transportWrapError(err, goerrors.CategoryOperation, "transport: pagination cancelled", http.StatusRequestTimeout,
					map[string]any{"endpoint": endpoint, "start_row": startRow})
			}
		}
		pageQuery := make(map[string]any, len(query)+2)
		for key, value := range query {
			pageQuery[key] = value
		}
		pageQuery["startRow"] = startRow
		pageQuery["numberOfResults"] = PageSize

		response, err := c.Request(ctx, method, endpoint, body, pageQuery, tenantID)
		if err != nil {
			return nil, err
		}
		items := ObjectList(response[propertyName])
		// A server that ignores startRow answers every page the same.
		current, _ := json.Marshal(items)
		if previous != nil && len(items) > 0 && bytes.Equal(current, previous) {
			c.observer.Log(ctx, "warn", "fusionauth pagination repeated a page", map[string]any{
				"endpoint": endpoint, "start_row": startRow,
			})
			return results, nil
		}
		previous = current
		results = append(results, items...)
		if len(items) < PageSize {
			return results, nil
		}
		startRow += PageSize
	}
}

// TestCredentials checks the instance URL and API key against /api/status.
func (c *Client) TestCredentials(ctx context.Context) error {
	_, err := c.Request(ctx, http.MethodGet, statusPath, nil, nil, "")
	return err
}

func (c *Client) headers(tenantID string) map[string]string {
	headers := map[string]string{
		"Authorization": c.credentials.APIKey,
		"Content-Type":  "application/json",
		"Accept":        "application/json",
	}
	if tenant := c.credentials.ResolveTenant(tenantID); tenant != "" {
		headers[tenantHeader] = tenant
	}
	if c.userAgent != "" {
		headers["User-Agent"] = c.userAgent
	}
	return headers
}

func (c *Client) decode(method, endpoint string, res core.TransportResponse) (map[string]any, error) {
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		if len(strings.TrimSpace(string(res.Body))) == 0 {
			return map[string]any{}, nil
		}
		var out map[string]any
		if err := json.Unmarshal(res.Body, &out); err != nil {
			contentType := headerValue(res.Headers, "content-type")
			if contentType != "" && !strings.Contains(strings.ToLower(contentType), "json") {
				// audit log export answers with a zip archive
				return map[string]any{
					"contentType": contentType,
					"data":        base64.StdEncoding.EncodeToString(res.Body),
				}, nil
			}
			return nil, transportWrapError(err, goerrors.CategoryExternal, "transport: decode response body", http.StatusBadGateway,
				map[string]any{"method": method, "endpoint": endpoint, "status_code": res.StatusCode})
		}
		if out == nil {
			out = map[string]any{}
		}
		return out, nil
	}
	return nil, c.apiError(method, endpoint, res)
}

func (c *Client) apiError(method, endpoint string, res core.TransportResponse) error {
	var body map[string]any
	if err := json.Unmarshal(res.Body, &body); err != nil || body == nil {
		body = map[string]any{
			"message": fmt.Sprintf("Request failed with status code %d", res.StatusCode),
		}
	}
	category := core.CategoryForStatus(res.StatusCode)
	code := res.StatusCode
	if category == goerrors.CategoryExternal {
		code = core.HTTPStatusForCategory(category)
	}
	metadata := map[string]any{
		"method":      method,
		"endpoint":    endpoint,
		"status_code": res.StatusCode,
	}
	if category == goerrors.CategoryRateLimit {
		if retryAfter, ok := ratelimit.ParseRetryAfter(headerValue(res.Headers, "retry-after"), c.now()); ok {
			metadata["retry_after_ms"] = retryAfter.Milliseconds()
		}
	}
	if general, ok := body["generalErrors"]; ok {
		metadata["general_errors"] = general
	}
	if fields, ok := body["fieldErrors"]; ok {
		metadata["field_errors"] = fields
	}
	return transportError(core.ParseErrorMessage(body), category, code, metadata)
}

func (c *Client) logExchange(ctx context.Context, method, endpoint string, status int, startedAt time.Time, err error) {
	fields := map[string]any{
		"method":      method,
		"endpoint":    endpoint,
		"duration_ms": time.Since(startedAt).Milliseconds(),
	}
	if status > 0 {
		fields["status_code"] = status
	}
	if err != nil {
		fields["error"] = core.ErrorMessage(err)
		c.observer.Log(ctx, "warn", "fusionauth request failed", fields)
		return
	}
	c.observer.Log(ctx, "debug", "fusionauth request", fields)
}

// ObjectList converts a decoded JSON array into object items, skipping
// anything that is not an object.
func ObjectList(value any) []map[string]any {
	switch typed := value.(type) {
	case []map[string]any:
		return typed
	case []any:
		out := make([]map[string]any, 0, len(typed))
		for _, item := range typed {
			if obj, ok := item.(map[string]any); ok {
				out = append(out, obj)
			}
		}
		return out
	default:
		return []map[string]any{}
	}
}

func encodeQuery(query map[string]any) map[string]string {
	keys := make([]string, 0, len(query))
	for key := range query {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make(map[string]string, len(query))
	for _, key := range keys {
		value, ok := queryValue(query[key])
		if ok {
			out[key] = value
		}
	}
	return out
}

func queryValue(value any) (string, bool) {
	switch typed := value.(type) {
	case nil:
		return "", false
	case string:
		return typed, true
	case bool:
		return strconv.FormatBool(typed), true
	case int:
		return strconv.Itoa(typed), true
	case int64:
		return strconv.FormatInt(typed, 10), true
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64), true
	case []string:
		return strings.Join(typed, ","), true
	default:
		return fmt.Sprint(typed), true
	}
}

func headerValue(headers map[string]string, key string) string {
	for existing, value := range headers {
		if strings.EqualFold(strings.TrimSpace(existing), key) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

var _ API = (*Client)(nil)
