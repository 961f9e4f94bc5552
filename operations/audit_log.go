package operations

import (
	"context"
	"net/http"

	"github.com/goliatone/go-fusionauth/core"
)

// exportZoneID is the zone FusionAuth renders export timestamps in.
const exportZoneID = "UTC"

func auditLogOperations() []Operation {
	return []Operation{
		{Name: "get", Method: http.MethodGet, Path: "/system/audit-log/{auditLogId}", Required: []string{"auditLogId"}, run: getAuditLog},
		{Name: "search", Method: http.MethodPost, Path: "/system/audit-log/search", run: searchAuditLogs},
		{Name: "export", Method: http.MethodPost, Path: "/system/audit-log/export", Description: "returns the zip archive base64 encoded in data", run: exportAuditLogs},
	}
}

// auditCriteria copies the shared search/export filters. start and end are
// converted to epoch milliseconds.
func auditCriteria(fields Params, extra ...string) (map[string]any, error) {
	criteria := map[string]any{}
	for _, key := range []string{"start", "end"} {
		if !fields.Truthy(key) {
			continue
		}
		ms, ok, err := core.ToEpochMillis(fields[key])
		if err != nil {
			return nil, err
		}
		if ok {
			criteria[key] = ms
		}
	}
	copyTruthy(criteria, fields, append([]string{"user", "message", "reason"}, extra...)...)
	return criteria, nil
}

func getAuditLog(ctx context.Context, c call) (any, error) {
	return c.get(ctx, path("/system/audit-log/%s", c.params.String("auditLogId")))
}

func searchAuditLogs(ctx context.Context, c call) (any, error) {
	search, err := auditCriteria(c.params.Map("filters"), "orderBy", "sortOrder")
	if err != nil {
		return nil, err
	}
	body := map[string]any{"search": search}
	if c.params.Bool("returnAll") {
		return c.all(ctx, http.MethodPost, "/system/audit-log/search", "auditLogs", body, nil)
	}
	search["numberOfResults"] = c.params.Int("limit", DefaultLimit)
	res, err := c.request(ctx, http.MethodPost, "/system/audit-log/search", body, nil)
	if err != nil {
		return nil, err
	}
	return property(res, "auditLogs"), nil
}

func exportAuditLogs(ctx context.Context, c call) (any, error) {
	criteria, err := auditCriteria(c.params.Map("exportOptions"))
	if err != nil {
		return nil, err
	}
	return c.request(ctx, http.MethodPost, "/system/audit-log/export", map[string]any{
		"criteria": criteria,
		"zoneId":   exportZoneID,
	}, nil)
}
