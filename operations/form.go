package operations

import (
	"context"
	"net/http"
)

func formOperations() []Operation {
	return []Operation{
		{Name: "create", Method: http.MethodPost, Path: "/form[/{formId}]", Required: []string{"name", "type"}, run: createForm},
		{Name: "get", Method: http.MethodGet, Path: "/form/{formId}", Required: []string{"formId"}, run: getForm},
		{Name: "getAll", Method: http.MethodGet, Path: "/form", run: listForms},
		{Name: "update", Method: http.MethodPut, Path: "/form/{formId}", Required: []string{"formId"}, run: updateForm},
		{Name: "delete", Method: http.MethodDelete, Path: "/form/{formId}", Required: []string{"formId"}, run: deleteForm},
	}
}

func createForm(ctx context.Context, c call) (any, error) {
	fields := c.params.Map("additionalFields")
	form := map[string]any{
		"name": c.params.String("name"),
		"type": c.params.String("type"),
	}
	if err := copyJSON(form, fields, "steps", "data"); err != nil {
		return nil, err
	}
	return c.request(ctx, http.MethodPost, createAt("/form", fields, "formId"), map[string]any{"form": form}, nil)
}

func getForm(ctx context.Context, c call) (any, error) {
	return c.get(ctx, path("/form/%s", c.params.String("formId")))
}

func listForms(ctx context.Context, c call) (any, error) {
	return c.list(ctx, "/form", "forms", nil)
}

func updateForm(ctx context.Context, c call) (any, error) {
	fields := c.params.Map("updateFields")
	form := map[string]any{}
	copyTruthy(form, fields, "name")
	if err := copyJSON(form, fields, "steps", "data"); err != nil {
		return nil, err
	}
	return c.request(ctx, http.MethodPut, path("/form/%s", c.params.String("formId")), map[string]any{"form": form}, nil)
}

func deleteForm(ctx context.Context, c call) (any, error) {
	return c.del(ctx, path("/form/%s", c.params.String("formId")))
}
