package operations

import (
	"context"
	"net/http"
)

func formFieldOperations() []Operation {
	return []Operation{
		{Name: "create", Method: http.MethodPost, Path: "/form/field[/{fieldId}]", Required: []string{"name", "key", "control"}, run: createFormField},
		{Name: "get", Method: http.MethodGet, Path: "/form/field/{fieldId}", Required: []string{"fieldId"}, run: getFormField},
		{Name: "getAll", Method: http.MethodGet, Path: "/form/field", run: listFormFields},
		{Name: "update", Method: http.MethodPut, Path: "/form/field/{fieldId}", Required: []string{"fieldId"}, run: updateFormField},
		{Name: "delete", Method: http.MethodDelete, Path: "/form/field/{fieldId}", Required: []string{"fieldId"}, run: deleteFormField},
	}
}

func formFieldFromFields(field map[string]any, fields Params) (map[string]any, error) {
	copyTruthy(field, fields, "type", "description")
	copyDefined(field, fields, "required")
	copyList(field, fields, "options")
	if err := copyJSON(field, fields, "validator", "data"); err != nil {
		return nil, err
	}
	return field, nil
}

func createFormField(ctx context.Context, c call) (any, error) {
	fields := c.params.Map("additionalFields")
	field, err := formFieldFromFields(map[string]any{
		"name":    c.params.String("name"),
		"key":     c.params.String("key"),
		"control": c.params.String("control"),
	}, fields)
	if err != nil {
		return nil, err
	}
	return c.request(ctx, http.MethodPost, createAt("/form/field", fields, "fieldId"), map[string]any{"field": field}, nil)
}

func getFormField(ctx context.Context, c call) (any, error) {
	return c.get(ctx, path("/form/field/%s", c.params.String("fieldId")))
}

func listFormFields(ctx context.Context, c call) (any, error) {
	return c.list(ctx, "/form/field", "fields", nil)
}

func updateFormField(ctx context.Context, c call) (any, error) {
	fields := c.params.Map("updateFields")
	field := map[string]any{}
	copyTruthy(field, fields, "name", "key", "control")
	field, err := formFieldFromFields(field, fields)
	if err != nil {
		return nil, err
	}
	return c.request(ctx, http.MethodPut, path("/form/field/%s", c.params.String("fieldId")), map[string]any{"field": field}, nil)
}

func deleteFormField(ctx context.Context, c call) (any, error) {
	return c.del(ctx, path("/form/field/%s", c.params.String("fieldId")))
}
