package operations

import (
	"context"
	"net/http"
)

var webhookPlainFields = []string{
	"connectTimeout",
	"readTimeout",
	"description",
	"httpAuthenticationUsername",
	"httpAuthenticationPassword",
	"sslCertificate",
}

func webhookOperations() []Operation {
	return []Operation{
		{Name: "create", Method: http.MethodPost, Path: "/webhook[/{webhookId}]", Required: []string{"url", "eventsEnabled"}, run: createWebhook},
		{Name: "get", Method: http.MethodGet, Path: "/webhook/{webhookId}", Required: []string{"webhookId"}, run: getWebhook},
		{Name: "getAll", Method: http.MethodGet, Path: "/webhook", run: listWebhooks},
		{Name: "update", Method: http.MethodPut, Path: "/webhook/{webhookId}", Required: []string{"webhookId"}, run: updateWebhook},
		{Name: "delete", Method: http.MethodDelete, Path: "/webhook/{webhookId}", Required: []string{"webhookId"}, run: deleteWebhook},
		{Name: "test", Method: http.MethodPost, Path: "/webhook/{webhookId}/test", Required: []string{"webhookId", "eventType"}, run: testWebhook},
	}
}

// enabledEvents turns a list of event types into FusionAuth's
// {"user.create": {"enabled": true}} map.
func enabledEvents(types []string) map[string]any {
	events := make(map[string]any, len(types))
	for _, eventType := range types {
		events[eventType] = map[string]any{"enabled": true}
	}
	return events
}

func webhookFromFields(webhook map[string]any, fields Params) (map[string]any, error) {
	copyTruthy(webhook, fields, webhookPlainFields...)
	copyDefined(webhook, fields, "global")
	copyList(webhook, fields, "tenantIds")
	if err := copyJSON(webhook, fields, "headers"); err != nil {
		return nil, err
	}
	if keyID := fields.String("signingKeySecret"); keyID != "" {
		webhook["signatureConfiguration"] = map[string]any{
			"enabled":      true,
			"signingKeyId": keyID,
		}
	}
	return webhook, nil
}

func createWebhook(ctx context.Context, c call) (any, error) {
	fields := c.params.Map("additionalFields")
	webhook, err := webhookFromFields(map[string]any{
		"url":           c.params.String("url"),
		"eventsEnabled": enabledEvents(c.params.StringSlice("eventsEnabled")),
	}, fields)
	if err != nil {
		return nil, err
	}
	return c.request(ctx, http.MethodPost, createAt("/webhook", fields, "webhookId"), map[string]any{"webhook": webhook}, nil)
}

func getWebhook(ctx context.Context, c call) (any, error) {
	return c.get(ctx, path("/webhook/%s", c.params.String("webhookId")))
}

func listWebhooks(ctx context.Context, c call) (any, error) {
	return c.list(ctx, "/webhook", "webhooks", nil)
}

func updateWebhook(ctx context.Context, c call) (any, error) {
	fields := c.params.Map("updateFields")
	webhook := map[string]any{}
	copyTruthy(webhook, fields, "url")
	if fields.Truthy("eventsEnabled") {
		webhook["eventsEnabled"] = enabledEvents(fields.StringSlice("eventsEnabled"))
	}
	webhook, err := webhookFromFields(webhook, fields)
	if err != nil {
		return nil, err
	}
	return c.request(ctx, http.MethodPut, path("/webhook/%s", c.params.String("webhookId")), map[string]any{"webhook": webhook}, nil)
}

func deleteWebhook(ctx context.Context, c call) (any, error) {
	return c.del(ctx, path("/webhook/%s", c.params.String("webhookId")))
}

func testWebhook(ctx context.Context, c call) (any, error) {
	return c.request(ctx, http.MethodPost, path("/webhook/%s/test", c.params.String("webhookId")), map[string]any{
		"event": map[string]any{"type": c.params.String("eventType")},
	}, nil)
}
