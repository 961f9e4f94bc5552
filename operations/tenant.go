package operations

import (
	"context"
	"net/http"

	"github.com/goliatone/go-fusionauth/core"
)

var tenantConfigFields = []string{
	"emailConfiguration",
	"jwtConfiguration",
	"passwordValidationRules",
	"multiFactorConfiguration",
	"data",
}

func tenantOperations() []Operation {
	return []Operation{
		{Name: "create", Method: http.MethodPost, Path: "/tenant[/{tenantId}]", Required: []string{"name"}, run: createTenant},
		{Name: "get", Method: http.MethodGet, Path: "/tenant/{tenantId}", Required: []string{"tenantId"}, run: getTenant},
		{Name: "getAll", Method: http.MethodGet, Path: "/tenant", run: listTenants},
		{Name: "update", Method: http.MethodPut, Path: "/tenant/{tenantId}", Required: []string{"tenantId"}, run: updateTenant},
		{Name: "patch", Method: http.MethodPatch, Path: "/tenant/{tenantId}", Required: []string{"tenantId", "patchData"}, run: patchTenant},
		{Name: "delete", Method: http.MethodDelete, Path: "/tenant/{tenantId}", Required: []string{"tenantId"}, run: deleteTenant},
	}
}

func tenantFromFields(tenant map[string]any, fields Params) (map[string]any, error) {
	copyTruthy(tenant, fields, "issuer")
	if err := copyJSON(tenant, fields, tenantConfigFields...); err != nil {
		return nil, err
	}
	return tenant, nil
}

func createTenant(ctx context.Context, c call) (any, error) {
	fields := c.params.Map("additionalFields")
	tenant, err := tenantFromFields(map[string]any{"name": c.params.String("name")}, fields)
	if err != nil {
		return nil, err
	}
	return c.request(ctx, http.MethodPost, createAt("/tenant", fields, "tenantId"), map[string]any{"tenant": tenant}, nil)
}

func getTenant(ctx context.Context, c call) (any, error) {
	return c.get(ctx, path("/tenant/%s", c.params.String("tenantId")))
}

func listTenants(ctx context.Context, c call) (any, error) {
	return c.list(ctx, "/tenant", "tenants", nil)
}

func updateTenant(ctx context.Context, c call) (any, error) {
	fields := c.params.Map("updateFields")
	tenant := map[string]any{}
	copyTruthy(tenant, fields, "name")
	tenant, err := tenantFromFields(tenant, fields)
	if err != nil {
		return nil, err
	}
	return c.request(ctx, http.MethodPut, path("/tenant/%s", c.params.String("tenantId")), map[string]any{"tenant": tenant}, nil)
}

func patchTenant(ctx context.Context, c call) (any, error) {
	body, err := core.ParseJSONParameter(c.params["patchData"])
	if err != nil {
		return nil, err
	}
	return c.request(ctx, http.MethodPatch, path("/tenant/%s", c.params.String("tenantId")), body, nil)
}

func deleteTenant(ctx context.Context, c call) (any, error) {
	return c.del(ctx, path("/tenant/%s", c.params.String("tenantId")))
}
