package operations

import (
	"context"
	"net/http"
)

func groupOperations() []Operation {
	return []Operation{
		{Name: "create", Method: http.MethodPost, Path: "/group[/{groupId}]", Required: []string{"name"}, run: createGroup},
		{Name: "get", Method: http.MethodGet, Path: "/group/{groupId}", Required: []string{"groupId"}, run: getGroup},
		{Name: "getAll", Method: http.MethodGet, Path: "/group[?tenantId=]", run: listGroups},
		{Name: "update", Method: http.MethodPut, Path: "/group/{groupId}", Required: []string{"groupId"}, run: updateGroup},
		{Name: "delete", Method: http.MethodDelete, Path: "/group/{groupId}", Required: []string{"groupId"}, run: deleteGroup},
		{Name: "addMembers", Method: http.MethodPost, Path: "/group/{groupId}/member", Required: []string{"groupId", "memberIds"}, run: addGroupMembers},
		{Name: "removeMembers", Method: http.MethodDelete, Path: "/group/{groupId}/member", Required: []string{"groupId", "memberIds"}, run: removeGroupMembers},
		{Name: "getMembers", Method: http.MethodGet, Path: "/group/{groupId}", Required: []string{"groupId"}, Description: "returns group.members", run: getGroupMembers},
	}
}

func createGroup(ctx context.Context, c call) (any, error) {
	fields := c.params.Map("additionalFields")
	group := map[string]any{"name": c.params.String("name")}
	copyTruthy(group, fields, "tenantId")
	if err := copyJSON(group, fields, "data", "roles"); err != nil {
		return nil, err
	}
	return c.request(ctx, http.MethodPost, createAt("/group", fields, "groupId"), map[string]any{"group": group}, nil)
}

func getGroup(ctx context.Context, c call) (any, error) {
	return c.get(ctx, path("/group/%s", c.params.String("groupId")))
}

func listGroups(ctx context.Context, c call) (any, error) {
	query := map[string]any{}
	copyTruthy(query, c.params.Map("filters"), "tenantId")
	return c.list(ctx, "/group", "groups", query)
}

func updateGroup(ctx context.Context, c call) (any, error) {
	fields := c.params.Map("updateFields")
	group := map[string]any{}
	copyTruthy(group, fields, "name")
	if err := copyJSON(group, fields, "data", "roles"); err != nil {
		return nil, err
	}
	return c.request(ctx, http.MethodPut, path("/group/%s", c.params.String("groupId")), map[string]any{"group": group}, nil)
}

func deleteGroup(ctx context.Context, c call) (any, error) {
	return c.del(ctx, path("/group/%s", c.params.String("groupId")))
}

func addGroupMembers(ctx context.Context, c call) (any, error) {
	ids := c.params.StringSlice("memberIds")
	members := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		members = append(members, map[string]any{"userId": id})
	}
	return c.request(ctx, http.MethodPost, path("/group/%s/member", c.params.String("groupId")),
		map[string]any{"members": members}, nil)
}

func removeGroupMembers(ctx context.Context, c call) (any, error) {
	return c.request(ctx, http.MethodDelete, path("/group/%s/member", c.params.String("groupId")),
		map[string]any{"memberIds": c.params.StringSlice("memberIds")}, nil)
}

func getGroupMembers(ctx context.Context, c call) (any, error) {
	res, err := c.request(ctx, http.MethodGet, path("/group/%s", c.params.String("groupId")), nil, nil)
	if err != nil {
		return nil, err
	}
	group, _ := res["group"].(map[string]any)
	return property(group, "members"), nil
}
