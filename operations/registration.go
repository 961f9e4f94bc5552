package operations

import (
	"context"
	"net/http"

	"github.com/goliatone/go-fusionauth/core"
)

func registrationOperations() []Operation {
	return []Operation{
		{Name: "create", Method: http.MethodPost, Path: "/user/registration/{userId}", Required: []string{"userId", "applicationId"}, run: createRegistration},
		{Name: "get", Method: http.MethodGet, Path: "/user/registration/{userId}/{applicationId}", Required: []string{"userId", "applicationId"}, run: getRegistration},
		{Name: "update", Method: http.MethodPut, Path: "/user/registration/{userId}/{applicationId}", Required: []string{"userId", "applicationId"}, run: updateRegistration},
		{Name: "patch", Method: http.MethodPatch, Path: "/user/registration/{userId}/{applicationId}", Required: []string{"userId", "applicationId", "patchData"}, run: patchRegistration},
		{Name: "delete", Method: http.MethodDelete, Path: "/user/registration/{userId}/{applicationId}", Required: []string{"userId", "applicationId"}, run: deleteRegistration},
		{Name: "verify", Method: http.MethodPost, Path: "/user/verify-registration/{verificationId}", Required: []string{"verificationId"}, run: verifyRegistration},
	}
}

func registrationFromFields(applicationID string, fields Params) (map[string]any, error) {
	registration := map[string]any{"applicationId": applicationID}
	copyList(registration, fields, "roles", "preferredLanguages")
	copyTruthy(registration, fields, "username", "timezone")
	copyDefined(registration, fields, "verified")
	if err := copyJSON(registration, fields, "data"); err != nil {
		return nil, err
	}
	return registration, nil
}

func registrationPath(c call) string {
	return path("/user/registration/%s/%s", c.params.String("userId"), c.params.String("applicationId"))
}

func createRegistration(ctx context.Context, c call) (any, error) {
	registration, err := registrationFromFields(c.params.String("applicationId"), c.params.Map("additionalFields"))
	if err != nil {
		return nil, err
	}
	return c.request(ctx, http.MethodPost, path("/user/registration/%s", c.params.String("userId")),
		map[string]any{"registration": registration}, nil)
}

func getRegistration(ctx context.Context, c call) (any, error) {
	return c.get(ctx, registrationPath(c))
}

func updateRegistration(ctx context.Context, c call) (any, error) {
	registration, err := registrationFromFields(c.params.String("applicationId"), c.params.Map("updateFields"))
	if err != nil {
		return nil, err
	}
	return c.request(ctx, http.MethodPut, registrationPath(c), map[string]any{"registration": registration}, nil)
}

func patchRegistration(ctx context.Context, c call) (any, error) {
	body, err := core.ParseJSONParameter(c.params["patchData"])
	if err != nil {
		return nil, err
	}
	return c.request(ctx, http.MethodPatch, registrationPath(c), body, nil)
}

func deleteRegistration(ctx context.Context, c call) (any, error) {
	return c.del(ctx, registrationPath(c))
}

func verifyRegistration(ctx context.Context, c call) (any, error) {
	return c.request(ctx, http.MethodPost, path("/user/verify-registration/%s", c.params.String("verificationId")), nil, nil)
}
