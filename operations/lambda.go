package operations

import (
	"context"
	"net/http"
)

func lambdaOperations() []Operation {
	return []Operation{
		{Name: "create", Method: http.MethodPost, Path: "/lambda[/{lambdaId}]", Required: []string{"name", "type", "body"}, run: createLambda},
		{Name: "get", Method: http.MethodGet, Path: "/lambda/{lambdaId}", Required: []string{"lambdaId"}, run: getLambda},
		{Name: "getAll", Method: http.MethodGet, Path: "/lambda[?type=]", run: listLambdas},
		{Name: "update", Method: http.MethodPut, Path: "/lambda/{lambdaId}", Required: []string{"lambdaId"}, run: updateLambda},
		{Name: "delete", Method: http.MethodDelete, Path: "/lambda/{lambdaId}", Required: []string{"lambdaId"}, run: deleteLambda},
	}
}

func createLambda(ctx context.Context, c call) (any, error) {
	fields := c.params.Map("additionalFields")
	lambda := map[string]any{
		"name": c.params.String("name"),
		"type": c.params.String("type"),
		// body is source code; keep it verbatim.
		"body": c.params["body"],
	}
	copyDefined(lambda, fields, "debug")
	copyTruthy(lambda, fields, "engineType")
	return c.request(ctx, http.MethodPost, createAt("/lambda", fields, "lambdaId"), map[string]any{"lambda": lambda}, nil)
}

func getLambda(ctx context.Context, c call) (any, error) {
	return c.get(ctx, path("/lambda/%s", c.params.String("lambdaId")))
}

func listLambdas(ctx context.Context, c call) (any, error) {
	query := map[string]any{}
	copyTruthy(query, c.params.Map("filters"), "type")
	return c.list(ctx, "/lambda", "lambdas", query)
}

func updateLambda(ctx context.Context, c call) (any, error) {
	fields := c.params.Map("updateFields")
	lambda := map[string]any{}
	copyTruthy(lambda, fields, "name", "body", "engineType")
	copyDefined(lambda, fields, "debug")
	return c.request(ctx, http.MethodPut, path("/lambda/%s", c.params.String("lambdaId")), map[string]any{"lambda": lambda}, nil)
}

func deleteLambda(ctx context.Context, c call) (any, error) {
	return c.del(ctx, path("/lambda/%s", c.params.String("lambdaId")))
}
