package operations

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-fusionauth/core"
	"github.com/goliatone/go-fusionauth/transport"
)

type ExecuteRequest struct {
	Resource       string
	Operation      string
	Items          []Params
	ContinueOnFail bool
	// TenantID scopes every item unless the item carries its own tenantId.
	TenantID string
	// Simplify unwraps single entities from their resource key, so a user
	// get yields the user rather than {"user": {...}}.
	Simplify bool
}

type ExecuteResult struct {
	Resource  string        `json:"resource"`
	Operation string        `json:"operation"`
	Records   []core.Record `json:"records"`
	Failed    int           `json:"failed"`
}

type Executor struct {
	api       transport.API
	observer  *core.Observer
	resources map[string]map[string]Operation
}

type ExecutorOption func(*Executor)

func WithObserver(observer *core.Observer) ExecutorOption {
	return func(e *Executor) {
		if observer != nil {
			e.observer = observer
		}
	}
}

func NewExecutor(api transport.API, opts ...ExecutorOption) (*Executor, error) {
	if api == nil {
		return nil, core.NewError("operations: api client is required", goerrors.CategoryInternal, core.ErrorInternal)
	}
	executor := &Executor{
		api:       api,
		observer:  core.NewObserver(nil, nil, ""),
		resources: index(Catalog()),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(executor)
		}
	}
	return executor, nil
}

// Execute runs one operation for every item in order. Each item's output is
// flattened into records paired with the item index.
func (e *Executor) Execute(ctx context.Context, req ExecuteRequest) (ExecuteResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	resource := strings.TrimSpace(req.Resource)
	operation := strings.TrimSpace(req.Operation)
	result := ExecuteResult{
		Resource:  resource,
		Operation: operation,
		Records:   []core.Record{},
	}

	op, ok := e.lookup(resource, operation)
	if !ok {
		return result, core.NewUnsupportedOperationError(resource, operation)
	}

	items := req.Items
	if len(items) == 0 {
		items = []Params{{}}
	}

	for i, item := range items {
		startedAt := time.Now()
		output, err := e.run(ctx, resource, op, item, req.TenantID)
		e.observer.ObserveOperation(ctx, startedAt, resource+"."+operation, err, map[string]any{
			"resource":   resource,
			"operation":  operation,
			"item_index": i,
		})
		if err != nil {
			if !req.ContinueOnFail {
				return result, err
			}
			result.Failed++
			result.Records = append(result.Records, core.Record{
				JSON:       map[string]any{"error": core.ErrorMessage(err)},
				PairedItem: i,
			})
			continue
		}
		if typed, ok := output.(map[string]any); ok && req.Simplify {
			output = core.SimplifyResponse(typed, resource)
		}
		result.Records = append(result.Records, toRecords(output, i)...)
	}
	return result, nil
}

func (e *Executor) lookup(resource, operation string) (Operation, bool) {
	if e == nil {
		return Operation{}, false
	}
	ops, ok := e.resources[resource]
	if !ok {
		return Operation{}, false
	}
	op, ok := ops[operation]
	return op, ok && op.run != nil
}

func (e *Executor) run(ctx context.Context, resource string, op Operation, item Params, tenantID string) (any, error) {
	if item == nil {
		item = Params{}
	}
	for _, name := range op.Required {
		if !item.Truthy(name) {
			return nil, core.NewBadInputError(fmt.Sprintf("parameter %q is required", name))
		}
	}
	for _, name := range collectionParams {
		if _, err := item.Object(name); err != nil {
			return nil, err
		}
	}
	// tenantId on the tenant resource names the entity, not the scope.
	if resource != ResourceTenant {
		if override := item.String("tenantId"); override != "" {
			tenantID = override
		} else if override := item.Map("options").String("tenantId"); override != "" {
			tenantID = override
		}
	}
	return op.run(ctx, call{api: e.api, params: item, tenant: tenantID})
}

// collectionParams hold nested fields that may arrive as JSON strings.
var collectionParams = []string{"additionalFields", "updateFields", "filters", "exportOptions", "options"}

func toRecords(output any, index int) []core.Record {
	switch typed := output.(type) {
	case nil:
		return []core.Record{{JSON: map[string]any{}, PairedItem: index}}
	case map[string]any:
		return []core.Record{{JSON: typed, PairedItem: index}}
	case []map[string]any:
		out := make([]core.Record, 0, len(typed))
		for _, item := range typed {
			out = append(out, core.Record{JSON: item, PairedItem: index})
		}
		return out
	default:
		return []core.Record{{JSON: map[string]any{"value": typed}, PairedItem: index}}
	}
}

// call carries one item through an operation handler.
type call struct {
	api    transport.API
	params Params
	tenant string
}

func (c call) request(ctx context.Context, method, endpoint string, body, query map[string]any) (map[string]any, error) {
	return c.api.Request(ctx, method, endpoint, body, query, c.tenant)
}

func (c call) all(ctx context.Context, method, endpoint, property string, body, query map[string]any) ([]map[string]any, error) {
	return c.api.RequestAllItems(ctx, method, endpoint, property, body, query, c.tenant)
}

func (c call) get(ctx context.Context, endpoint string) (any, error) {
	return c.request(ctx, http.MethodGet, endpoint, nil, nil)
}

func (c call) del(ctx context.Context, endpoint string) (any, error) {
	return c.request(ctx, http.MethodDelete, endpoint, nil, nil)
}

// list fetches a non-paginated collection and trims it to limit unless
// returnAll is set.
func (c call) list(ctx context.Context, endpoint, property string, query map[string]any) (any, error) {
	res, err := c.request(ctx, http.MethodGet, endpoint, nil, query)
	if err != nil {
		return nil, err
	}
	return c.limit(transport.ObjectList(res[property])), nil
}

func (c call) limit(items []map[string]any) []map[string]any {
	if c.params.Bool("returnAll") {
		return items
	}
	limit := c.params.Int("limit", DefaultLimit)
	if limit < 0 {
		limit = 0
	}
	if limit < len(items) {
		return items[:limit]
	}
	return items
}

// property returns res[key] as a list of objects.
func property(res map[string]any, key string) []map[string]any {
	return transport.ObjectList(res[key])
}

// createAt posts to base, or base/{id} when the item supplies an explicit id
// in additionalFields.
func createAt(base string, fields Params, idKey string) string {
	if id := fields.String(idKey); id != "" {
		return path(base+"/%s", id)
	}
	return base
}

// path formats an endpoint with escaped path segments.
func path(format string, segments ...string) string {
	args := make([]any, len(segments))
	for i, segment := range segments {
		args[i] = url.PathEscape(segment)
	}
	return fmt.Sprintf(format, args...)
}
