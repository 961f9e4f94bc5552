package operations

import (
	"context"
	"net/http"
)

var identityProviderJSONFields = []string{
	"applicationConfiguration",
	"oauth2",
	"tenantConfiguration",
	"data",
}

func identityProviderOperations() []Operation {
	return []Operation{
		{Name: "create", Method: http.MethodPost, Path: "/identity-provider[/{identityProviderId}]", Required: []string{"type", "name"}, run: createIdentityProvider},
		{Name: "get", Method: http.MethodGet, Path: "/identity-provider/{identityProviderId}", Required: []string{"identityProviderId"}, run: getIdentityProvider},
		{Name: "getAll", Method: http.MethodGet, Path: "/identity-provider", run: listIdentityProviders},
		{Name: "update", Method: http.MethodPut, Path: "/identity-provider/{identityProviderId}", Required: []string{"identityProviderId"}, run: updateIdentityProvider},
		{Name: "delete", Method: http.MethodDelete, Path: "/identity-provider/{identityProviderId}", Required: []string{"identityProviderId"}, run: deleteIdentityProvider},
		{Name: "lookup", Method: http.MethodGet, Path: "/identity-provider/lookup?domain=", Required: []string{"domain"}, run: lookupIdentityProvider},
		{Name: "link", Method: http.MethodPost, Path: "/identity-provider/link", Required: []string{"identityProviderId", "userId", "identityProviderUserId"}, run: linkIdentityProvider},
		{Name: "unlink", Method: http.MethodDelete, Path: "/identity-provider/link", Required: []string{"identityProviderId", "userId", "identityProviderUserId"}, run: unlinkIdentityProvider},
	}
}

func identityProviderFromFields(provider map[string]any, fields Params) (map[string]any, error) {
	copyDefined(provider, fields, "enabled")
	copyList(provider, fields, "domains")
	copyTruthy(provider, fields, "linkingStrategy")
	if err := copyJSON(provider, fields, identityProviderJSONFields...); err != nil {
		return nil, err
	}
	return provider, nil
}

func createIdentityProvider(ctx context.Context, c call) (any, error) {
	fields := c.params.Map("additionalFields")
	provider, err := identityProviderFromFields(map[string]any{
		"type": c.params.String("type"),
		"name": c.params.String("name"),
	}, fields)
	if err != nil {
		return nil, err
	}
	return c.request(ctx, http.MethodPost, createAt("/identity-provider", fields, "identityProviderId"),
		map[string]any{"identityProvider": provider}, nil)
}

func getIdentityProvider(ctx context.Context, c call) (any, error) {
	return c.get(ctx, path("/identity-provider/%s", c.params.String("identityProviderId")))
}

func listIdentityProviders(ctx context.Context, c call) (any, error) {
	return c.list(ctx, "/identity-provider", "identityProviders", nil)
}

func updateIdentityProvider(ctx context.Context, c call) (any, error) {
	fields := c.params.Map("updateFields")
	provider := map[string]any{}
	copyTruthy(provider, fields, "name")
	provider, err := identityProviderFromFields(provider, fields)
	if err != nil {
		return nil, err
	}
	return c.request(ctx, http.MethodPut, path("/identity-provider/%s", c.params.String("identityProviderId")),
		map[string]any{"identityProvider": provider}, nil)
}

func deleteIdentityProvider(ctx context.Context, c call) (any, error) {
	return c.del(ctx, path("/identity-provider/%s", c.params.String("identityProviderId")))
}

func lookupIdentityProvider(ctx context.Context, c call) (any, error) {
	return c.request(ctx, http.MethodGet, "/identity-provider/lookup", nil, map[string]any{"domain": c.params.String("domain")})
}

func identityProviderLink(c call) map[string]any {
	return map[string]any{
		"identityProviderId":     c.params.String("identityProviderId"),
		"userId":                 c.params.String("userId"),
		"identityProviderUserId": c.params.String("identityProviderUserId"),
	}
}

func linkIdentityProvider(ctx context.Context, c call) (any, error) {
	return c.request(ctx, http.MethodPost, "/identity-provider/link",
		map[string]any{"identityProviderLink": identityProviderLink(c)}, nil)
}

func unlinkIdentityProvider(ctx context.Context, c call) (any, error) {
	return c.request(ctx, http.MethodDelete, "/identity-provider/link", nil, identityProviderLink(c))
}
