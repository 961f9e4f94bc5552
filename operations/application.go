package operations

import (
	"context"
	"net/http"

	"github.com/goliatone/go-fusionauth/core"
)

var applicationConfigFields = []string{
	"data",
	"oauthConfiguration",
	"jwtConfiguration",
	"loginConfiguration",
	"registrationConfiguration",
	"emailConfiguration",
	"multiFactorConfiguration",
}

func applicationOperations() []Operation {
	return []Operation{
		{Name: "create", Method: http.MethodPost, Path: "/application[/{applicationId}]", Required: []string{"name"}, run: createApplication},
		{Name: "get", Method: http.MethodGet, Path: "/application/{applicationId}", Required: []string{"applicationId"}, run: getApplication},
		{Name: "getAll", Method: http.MethodGet, Path: "/application", run: listApplications},
		{Name: "update", Method: http.MethodPut, Path: "/application/{applicationId}", Required: []string{"applicationId"}, run: updateApplication},
		{Name: "patch", Method: http.MethodPatch, Path: "/application/{applicationId}", Required: []string{"applicationId", "patchData"}, run: patchApplication},
		{Name: "delete", Method: http.MethodDelete, Path: "/application/{applicationId}", Required: []string{"applicationId"}, run: deleteApplication},
		{Name: "getOAuthConfiguration", Method: http.MethodGet, Path: "/application/{applicationId}", Required: []string{"applicationId"}, Description: "returns application.oauthConfiguration", run: getOAuthConfiguration},
		{Name: "getRoles", Method: http.MethodGet, Path: "/application/{applicationId}", Required: []string{"applicationId"}, Description: "returns application.roles", run: getApplicationRoles},
		{Name: "createRole", Method: http.MethodPost, Path: "/application/{applicationId}/role", Required: []string{"applicationId", "roleName"}, run: createApplicationRole},
		{Name: "updateRole", Method: http.MethodPut, Path: "/application/{applicationId}/role/{roleId}", Required: []string{"applicationId", "roleId"}, run: updateApplicationRole},
		{Name: "deleteRole", Method: http.MethodDelete, Path: "/application/{applicationId}/role/{roleId}", Required: []string{"applicationId", "roleId"}, run: deleteApplicationRole},
	}
}

func createApplication(ctx context.Context, c call) (any, error) {
	fields := c.params.Map("additionalFields")
	application := map[string]any{"name": c.params.String("name")}
	copyTruthy(application, fields, "tenantId")
	copyDefined(application, fields, "active")
	if err := copyJSON(application, fields, applicationConfigFields...); err != nil {
		return nil, err
	}
	return c.request(ctx, http.MethodPost, createAt("/application", fields, "applicationId"),
		map[string]any{"application": application}, nil)
}

func getApplication(ctx context.Context, c call) (any, error) {
	return c.get(ctx, path("/application/%s", c.params.String("applicationId")))
}

func listApplications(ctx context.Context, c call) (any, error) {
	return c.list(ctx, "/application", "applications", nil)
}

func updateApplication(ctx context.Context, c call) (any, error) {
	fields := c.params.Map("updateFields")
	application := map[string]any{}
	copyTruthy(application, fields, "name")
	copyDefined(application, fields, "active")
	if err := copyJSON(application, fields, applicationConfigFields...); err != nil {
		return nil, err
	}
	return c.request(ctx, http.MethodPut, path("/application/%s", c.params.String("applicationId")),
		map[string]any{"application": application}, nil)
}

func patchApplication(ctx context.Context, c call) (any, error) {
	body, err := core.ParseJSONParameter(c.params["patchData"])
	if err != nil {
		return nil, err
	}
	return c.request(ctx, http.MethodPatch, path("/application/%s", c.params.String("applicationId")), body, nil)
}

func deleteApplication(ctx context.Context, c call) (any, error) {
	return c.request(ctx, http.MethodDelete, path("/application/%s", c.params.String("applicationId")), nil,
		map[string]any{"hardDelete": c.params.Bool("hardDelete")})
}

func fetchApplication(ctx context.Context, c call) (map[string]any, error) {
	res, err := c.request(ctx, http.MethodGet, path("/application/%s", c.params.String("applicationId")), nil, nil)
	if err != nil {
		return nil, err
	}
	application, _ := res["application"].(map[string]any)
	return application, nil
}

func getOAuthConfiguration(ctx context.Context, c call) (any, error) {
	application, err := fetchApplication(ctx, c)
	if err != nil {
		return nil, err
	}
	return map[string]any{"oauthConfiguration": application["oauthConfiguration"]}, nil
}

func getApplicationRoles(ctx context.Context, c call) (any, error) {
	application, err := fetchApplication(ctx, c)
	if err != nil {
		return nil, err
	}
	return property(application, "roles"), nil
}

func roleFlags(role map[string]any, fields Params) {
	copyTruthy(role, fields, "description")
	copyDefined(role, fields, "isDefault", "isSuperRole")
}

func createApplicationRole(ctx context.Context, c call) (any, error) {
	role := map[string]any{"name": c.params.String("roleName")}
	roleFlags(role, c.params.Map("additionalFields"))
	return c.request(ctx, http.MethodPost, path("/application/%s/role", c.params.String("applicationId")),
		map[string]any{"role": role}, nil)
}

func updateApplicationRole(ctx context.Context, c call) (any, error) {
	fields := c.params.Map("updateFields")
	role := map[string]any{}
	copyTruthy(role, fields, "name")
	roleFlags(role, fields)
	endpoint := path("/application/%s/role/%s", c.params.String("applicationId"), c.params.String("roleId"))
	return c.request(ctx, http.MethodPut, endpoint, map[string]any{"role": role}, nil)
}

func deleteApplicationRole(ctx context.Context, c call) (any, error) {
	return c.del(ctx, path("/application/%s/role/%s", c.params.String("applicationId"), c.params.String("roleId")))
}
