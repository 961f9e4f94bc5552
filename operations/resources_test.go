package operations

import (
	"net/http"
	"reflect"
	"testing"
	"time"
)

func TestUserCreate_BuildsUserFromAdditionalFields(t *testing.T) {
	api := &fakeAPI{}
	execOne(t, api, ResourceUser, "create", Params{
		"email": "jane@example.com",
		"additionalFields": map[string]any{
			"userId":             "u-1",
			"firstName":          "Jane",
			"lastName":           "",
			"preferredLanguages": "en, fr",
			"data":               `{"plan":"pro"}`,
			"verified":           false,
		},
	})
	call := api.last(t)
	if call.Method != http.MethodPost || call.Endpoint != "/user/u-1" {
		t.Fatalf("unexpected call %s %s", call.Method, call.Endpoint)
	}
	user, _ := call.Body["user"].(map[string]any)
	want := map[string]any{
		"email":              "jane@example.com",
		"firstName":          "Jane",
		"preferredLanguages": []string{"en", "fr"},
		"data":               map[string]any{"plan": "pro"},
		"verified":           false,
	}
	if !reflect.DeepEqual(user, want) {
		t.Fatalf("unexpected user body\n got: %#v\nwant: %#v", user, want)
	}
}

func TestUserCreate_InvalidJSONFails(t *testing.T) {
	api := &fakeAPI{}
	_, err := newTestExecutor(t, api).Execute(t.Context(), ExecuteRequest{
		Resource:  ResourceUser,
		Operation: "create",
		Items: []Params{{
			"email":            "jane@example.com",
			"additionalFields": map[string]any{"data": "{not json"},
		}},
	})
	if err == nil {
		t.Fatalf("expected invalid json error")
	}
	if len(api.calls) != 0 {
		t.Fatalf("expected no api call")
	}
}

func TestUserSearch(t *testing.T) {
	api := &fakeAPI{
		response: map[string]any{"users": []any{map[string]any{"id": "u1"}}},
		items:    []map[string]any{{"id": "u1"}, {"id": "u2"}},
	}
	result := execOne(t, api, ResourceUser, "getAll", Params{
		"limit":   10,
		"filters": map[string]any{"sortBy": "email"},
	})
	call := api.last(t)
	search, _ := call.Body["search"].(map[string]any)
	if call.All || call.Endpoint != "/user/search" || search["queryString"] != "*" || search["numberOfResults"] != 10 {
		t.Fatalf("unexpected search call %#v", call)
	}
	sortFields, _ := search["sortFields"].([]map[string]any)
	if len(sortFields) != 1 || sortFields[0]["order"] != "asc" {
		t.Fatalf("unexpected sort fields %#v", search["sortFields"])
	}
	if len(result.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(result.Records))
	}

	result = execOne(t, api, ResourceUser, "getAll", Params{"returnAll": true})
	call = api.last(t)
	if !call.All || call.Property != "users" || call.Method != http.MethodPost {
		t.Fatalf("expected paginated search, got %#v", call)
	}
	if len(result.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(result.Records))
	}
}

func TestUserEndpoints(t *testing.T) {
	cases := []struct {
		operation string
		params    Params
		method    string
		endpoint  string
		body      map[string]any
		query     map[string]any
	}{
		{"get", Params{"userId": "u1"}, http.MethodGet, "/user/u1", nil, nil},
		{"getByEmail", Params{"email": "a@b.c"}, http.MethodGet, "/user", nil, map[string]any{"email": "a@b.c"}},
		{"delete", Params{"userId": "u1", "hardDelete": true}, http.MethodDelete, "/user/u1", nil, map[string]any{"hardDelete": true}},
		{"deactivate", Params{"userId": "u1"}, http.MethodDelete, "/user/u1", nil, map[string]any{"hardDelete": false}},
		{"reactivate", Params{"userId": "u1"}, http.MethodPut, "/user/u1", nil, map[string]any{"reactivate": true}},
		{"bulkDelete", Params{"userIds": "a, b"}, http.MethodDelete, "/user/bulk",
			map[string]any{"userIds": []string{"a", "b"}, "hardDelete": false}, nil},
		{"changePassword", Params{"userId": "u1", "currentPassword": "old", "newPassword": "new"}, http.MethodPost,
			"/user/change-password/u1", map[string]any{"currentPassword": "old", "password": "new"}, nil},
		{"verifyRegistration", Params{"userId": "u1", "applicationId": "a1"}, http.MethodPut,
			"/user/verify-registration/u1/a1", nil, nil},
		{"disableTwoFactor", Params{"userId": "u1", "methodId": "m1", "code": "123"}, http.MethodDelete,
			"/user/two-factor/u1", nil, map[string]any{"methodId": "m1", "code": "123"}},
		{"sendTwoFactorCode", Params{"userId": "u1", "methodId": "m1"}, http.MethodPost,
			"/user/two-factor/send/m1", map[string]any{"userId": "u1"}, nil},
		{"revokeRefreshTokens", Params{"userId": "u1"}, http.MethodDelete, "/jwt/refresh", nil, map[string]any{"userId": "u1"}},
		{"addUserComment", Params{"userId": "u1", "comment": "hi"}, http.MethodPost, "/user/comment/u1",
			map[string]any{"userComment": map[string]any{"comment": "hi"}}, nil},
		{"import", Params{"users": `[{"email":"x@y.z"}]`}, http.MethodPost, "/user/import",
			map[string]any{"users": []any{map[string]any{"email": "x@y.z"}}}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.operation, func(t *testing.T) {
			api := &fakeAPI{}
			execOne(t, api, ResourceUser, tc.operation, tc.params)
			call := api.last(t)
			if call.Method != tc.method || call.Endpoint != tc.endpoint {
				t.Fatalf("expected %s %s, got %s %s", tc.method, tc.endpoint, call.Method, call.Endpoint)
			}
			if len(tc.body) > 0 && !reflect.DeepEqual(call.Body, tc.body) {
				t.Fatalf("unexpected body %#v", call.Body)
			}
			if len(tc.query) > 0 && !reflect.DeepEqual(call.Query, tc.query) {
				t.Fatalf("unexpected query %#v", call.Query)
			}
		})
	}
}

func TestApplicationDerivedOperations(t *testing.T) {
	api := &fakeAPI{response: map[string]any{"application": map[string]any{
		"oauthConfiguration": map[string]any{"clientId": "c1"},
		"roles":              []any{map[string]any{"name": "admin"}, map[string]any{"name": "user"}},
	}}}
	result := execOne(t, api, ResourceApplication, "getRoles", Params{"applicationId": "a1"})
	if len(result.Records) != 2 || result.Records[1].JSON["name"] != "user" {
		t.Fatalf("unexpected roles %#v", result.Records)
	}
	result = execOne(t, api, ResourceApplication, "getOAuthConfiguration", Params{"applicationId": "a1"})
	oauth, _ := result.Records[0].JSON["oauthConfiguration"].(map[string]any)
	if oauth["clientId"] != "c1" {
		t.Fatalf("unexpected oauth config %#v", result.Records[0].JSON)
	}

	execOne(t, api, ResourceApplication, "createRole", Params{
		"applicationId":    "a1",
		"roleName":         "editor",
		"additionalFields": map[string]any{"isDefault": false, "description": "Edits"},
	})
	call := api.last(t)
	want := map[string]any{"role": map[string]any{"name": "editor", "isDefault": false, "description": "Edits"}}
	if call.Endpoint != "/application/a1/role" || !reflect.DeepEqual(call.Body, want) {
		t.Fatalf("unexpected createRole call %#v", call)
	}
}

func TestGroupMembers(t *testing.T) {
	api := &fakeAPI{}
	execOne(t, api, ResourceGroup, "addMembers", Params{"groupId": "g1", "memberIds": "u1,u2"})
	call := api.last(t)
	want := map[string]any{"members": []map[string]any{{"userId": "u1"}, {"userId": "u2"}}}
	if call.Endpoint != "/group/g1/member" || !reflect.DeepEqual(call.Body, want) {
		t.Fatalf("unexpected addMembers call %#v", call)
	}

	execOne(t, api, ResourceGroup, "removeMembers", Params{"groupId": "g1", "memberIds": []any{"u1"}})
	call = api.last(t)
	if call.Method != http.MethodDelete || !reflect.DeepEqual(call.Body, map[string]any{"memberIds": []string{"u1"}}) {
		t.Fatalf("unexpected removeMembers call %#v", call)
	}

	execOne(t, api, ResourceGroup, "getAll", Params{"filters": map[string]any{"tenantId": "t1"}})
	if q := api.last(t).Query; q["tenantId"] != "t1" {
		t.Fatalf("expected tenant filter, got %#v", q)
	}
}

func TestRegistrationCreate(t *testing.T) {
	api := &fakeAPI{}
	execOne(t, api, ResourceRegistration, "create", Params{
		"userId":           "u1",
		"applicationId":    "a1",
		"additionalFields": map[string]any{"roles": "admin, user", "verified": true},
	})
	call := api.last(t)
	want := map[string]any{"registration": map[string]any{
		"applicationId": "a1",
		"roles":         []string{"admin", "user"},
		"verified":      true,
	}}
	if call.Endpoint != "/user/registration/u1" || !reflect.DeepEqual(call.Body, want) {
		t.Fatalf("unexpected registration call %#v", call)
	}
}

func TestIdentityProviderLinking(t *testing.T) {
	api := &fakeAPI{}
	params := Params{"identityProviderId": "idp", "userId": "u1", "identityProviderUserId": "ext"}
	execOne(t, api, ResourceIdentityProvider, "link", params)
	call := api.last(t)
	link, _ := call.Body["identityProviderLink"].(map[string]any)
	if call.Method != http.MethodPost || link["identityProviderUserId"] != "ext" {
		t.Fatalf("unexpected link call %#v", call)
	}
	execOne(t, api, ResourceIdentityProvider, "unlink", params)
	call = api.last(t)
	if call.Method != http.MethodDelete || call.Query["userId"] != "u1" || len(call.Body) != 0 {
		t.Fatalf("unexpected unlink call %#v", call)
	}
}

func TestWebhookCreate(t *testing.T) {
	api := &fakeAPI{}
	execOne(t, api, ResourceWebhook, "create", Params{
		"url":           "https://hooks.example.com",
		"eventsEnabled": []any{"user.create", "user.delete"},
		"additionalFields": map[string]any{
			"global":           true,
			"tenantIds":        "t1,t2",
			"signingKeySecret": "key-1",
			"headers":          `{"X-Env":"prod"}`,
		},
	})
	webhook, _ := api.last(t).Body["webhook"].(map[string]any)
	events, _ := webhook["eventsEnabled"].(map[string]any)
	if len(events) != 2 || !reflect.DeepEqual(events["user.create"], map[string]any{"enabled": true}) {
		t.Fatalf("unexpected events %#v", webhook["eventsEnabled"])
	}
	signature, _ := webhook["signatureConfiguration"].(map[string]any)
	if signature["signingKeyId"] != "key-1" || signature["enabled"] != true {
		t.Fatalf("unexpected signature configuration %#v", signature)
	}
	if !reflect.DeepEqual(webhook["tenantIds"], []string{"t1", "t2"}) || webhook["global"] != true {
		t.Fatalf("unexpected webhook %#v", webhook)
	}

	execOne(t, api, ResourceWebhook, "test", Params{"webhookId": "w1", "eventType": "user.create"})
	call := api.last(t)
	if call.Endpoint != "/webhook/w1/test" || !reflect.DeepEqual(call.Body, map[string]any{"event": map[string]any{"type": "user.create"}}) {
		t.Fatalf("unexpected test call %#v", call)
	}
}

func TestAuditLogSearchConvertsDates(t *testing.T) {
	api := &fakeAPI{response: map[string]any{"auditLogs": []any{}}}
	execOne(t, api, ResourceAuditLog, "search", Params{
		"limit": 5,
		"filters": map[string]any{
			"start":   "2024-01-02T03:04:05Z",
			"end":     time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			"user":    "admin@example.com",
			"orderBy": "insertInstant",
		},
	})
	search, _ := api.last(t).Body["search"].(map[string]any)
	if search["start"] != time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC).UnixMilli() {
		t.Fatalf("unexpected start %#v", search["start"])
	}
	if search["end"] != time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC).UnixMilli() {
		t.Fatalf("unexpected end %#v", search["end"])
	}
	if search["numberOfResults"] != 5 || search["orderBy"] != "insertInstant" {
		t.Fatalf("unexpected search %#v", search)
	}

	execOne(t, api, ResourceAuditLog, "export", Params{"exportOptions": map[string]any{"reason": "audit"}})
	call := api.last(t)
	if call.Body["zoneId"] != "UTC" || call.Endpoint != "/system/audit-log/export" {
		t.Fatalf("unexpected export call %#v", call)
	}
}

func TestListOperationsSliceToLimit(t *testing.T) {
	items := []any{}
	for i := 0; i < 60; i++ {
		items = append(items, map[string]any{"i": i})
	}
	for _, tc := range []struct {
		resource, property string
	}{
		{ResourceTenant, "tenants"},
		{ResourceConsent, "consents"},
		{ResourceForm, "forms"},
		{ResourceFormField, "fields"},
		{ResourceLambda, "lambdas"},
		{ResourceWebhook, "webhooks"},
		{ResourceIdentityProvider, "identityProviders"},
	} {
		api := &fakeAPI{response: map[string]any{tc.property: items}}
		if got := len(execOne(t, api, tc.resource, "getAll", Params{}).Records); got != DefaultLimit {
			t.Fatalf("%s: expected default limit %d, got %d", tc.resource, DefaultLimit, got)
		}
		if got := len(execOne(t, api, tc.resource, "getAll", Params{"returnAll": true}).Records); got != 60 {
			t.Fatalf("%s: expected all 60, got %d", tc.resource, got)
		}
	}
}
