package operations

import (
	"context"
	"net/http"
)

func consentOperations() []Operation {
	return []Operation{
		{Name: "create", Method: http.MethodPost, Path: "/consent[/{consentId}]", Required: []string{"name"}, run: createConsent},
		{Name: "get", Method: http.MethodGet, Path: "/consent/{consentId}", Required: []string{"consentId"}, run: getConsent},
		{Name: "getAll", Method: http.MethodGet, Path: "/consent", run: listConsents},
		{Name: "update", Method: http.MethodPut, Path: "/consent/{consentId}", Required: []string{"consentId"}, run: updateConsent},
		{Name: "delete", Method: http.MethodDelete, Path: "/consent/{consentId}", Required: []string{"consentId"}, run: deleteConsent},
		{Name: "getUserConsents", Method: http.MethodGet, Path: "/user/consent/{userId}", Required: []string{"userId"}, Description: "returns userConsents", run: getUserConsents},
		{Name: "grantUserConsent", Method: http.MethodPost, Path: "/user/consent/{userId}", Required: []string{"userId", "consentId"}, run: grantUserConsent},
		{Name: "revokeUserConsent", Method: http.MethodDelete, Path: "/user/consent/{userConsentId}", Required: []string{"userConsentId"}, run: revokeUserConsent},
	}
}

func consentFromFields(consent map[string]any, fields Params) (map[string]any, error) {
	copyTruthy(consent, fields, "consentEmailTemplateId")
	copyDefined(consent, fields, "defaultMinimumAgeForSelfConsent", "multipleValuesAllowed")
	copyList(consent, fields, "values")
	if err := copyJSON(consent, fields, "countryMinimumAgeForSelfConsent", "emailPlus", "data"); err != nil {
		return nil, err
	}
	return consent, nil
}

func createConsent(ctx context.Context, c call) (any, error) {
	fields := c.params.Map("additionalFields")
	consent, err := consentFromFields(map[string]any{"name": c.params.String("name")}, fields)
	if err != nil {
		return nil, err
	}
	return c.request(ctx, http.MethodPost, createAt("/consent", fields, "consentId"), map[string]any{"consent": consent}, nil)
}

func getConsent(ctx context.Context, c call) (any, error) {
	return c.get(ctx, path("/consent/%s", c.params.String("consentId")))
}

func listConsents(ctx context.Context, c call) (any, error) {
	return c.list(ctx, "/consent", "consents", nil)
}

func updateConsent(ctx context.Context, c call) (any, error) {
	fields := c.params.Map("updateFields")
	consent := map[string]any{}
	copyTruthy(consent, fields, "name")
	consent, err := consentFromFields(consent, fields)
	if err != nil {
		return nil, err
	}
	return c.request(ctx, http.MethodPut, path("/consent/%s", c.params.String("consentId")), map[string]any{"consent": consent}, nil)
}

func deleteConsent(ctx context.Context, c call) (any, error) {
	return c.del(ctx, path("/consent/%s", c.params.String("consentId")))
}

func getUserConsents(ctx context.Context, c call) (any, error) {
	res, err := c.request(ctx, http.MethodGet, path("/user/consent/%s", c.params.String("userId")), nil, nil)
	if err != nil {
		return nil, err
	}
	return property(res, "userConsents"), nil
}

func grantUserConsent(ctx context.Context, c call) (any, error) {
	userID := c.params.String("userId")
	fields := c.params.Map("additionalFields")
	userConsent := map[string]any{
		"consentId": c.params.String("consentId"),
		"userId":    userID,
	}
	copyList(userConsent, fields, "values")
	copyTruthy(userConsent, fields, "giverUserId")
	if err := copyJSON(userConsent, fields, "data"); err != nil {
		return nil, err
	}
	return c.request(ctx, http.MethodPost, path("/user/consent/%s", userID), map[string]any{"userConsent": userConsent}, nil)
}

func revokeUserConsent(ctx context.Context, c call) (any, error) {
	return c.del(ctx, path("/user/consent/%s", c.params.String("userConsentId")))
}
