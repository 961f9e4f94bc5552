package operations

import (
	"context"
	"net/http"

	"github.com/goliatone/go-fusionauth/core"
)

var (
	userStringFields = []string{
		"password",
		"username",
		"firstName",
		"lastName",
		"fullName",
		"mobilePhone",
		"birthDate",
		"imageUrl",
		"timezone",
	}
	userFlagFields = []string{"verified", "active"}
)

func userOperations() []Operation {
	return []Operation{
		{Name: "create", Method: http.MethodPost, Path: "/user[/{userId}]", Required: []string{"email"}, run: createUser},
		{Name: "get", Method: http.MethodGet, Path: "/user/{userId}", Required: []string{"userId"}, run: getUser},
		{Name: "getByEmail", Method: http.MethodGet, Path: "/user?email=", Required: []string{"email"}, run: getUserByEmail},
		{Name: "getByUsername", Method: http.MethodGet, Path: "/user?username=", Required: []string{"username"}, run: getUserByUsername},
		{Name: "getAll", Method: http.MethodPost, Path: "/user/search", run: searchUsers},
		{Name: "update", Method: http.MethodPut, Path: "/user/{userId}", Required: []string{"userId"}, run: updateUser},
		{Name: "patch", Method: http.MethodPatch, Path: "/user/{userId}", Required: []string{"userId", "patchData"}, run: patchUser},
		{Name: "delete", Method: http.MethodDelete, Path: "/user/{userId}", Required: []string{"userId"}, run: deleteUser},
		{Name: "deactivate", Method: http.MethodDelete, Path: "/user/{userId}?hardDelete=false", Required: []string{"userId"}, run: deactivateUser},
		{Name: "reactivate", Method: http.MethodPut, Path: "/user/{userId}?reactivate=true", Required: []string{"userId"}, run: reactivateUser},
		{Name: "bulkDelete", Method: http.MethodDelete, Path: "/user/bulk", Required: []string{"userIds"}, run: bulkDeleteUsers},
		{Name: "import", Method: http.MethodPost, Path: "/user/import", Required: []string{"users"}, run: importUsers},
		{Name: "changePassword", Method: http.MethodPost, Path: "/user/change-password/{userId}", Required: []string{"userId", "newPassword"}, run: changePassword},
		{Name: "forgotPassword", Method: http.MethodPost, Path: "/user/forgot-password", Required: []string{"loginId"}, run: forgotPassword},
		{Name: "verifyEmail", Method: http.MethodPut, Path: "/user/verify-email/{userId}", Required: []string{"userId"}, run: verifyEmail},
		{Name: "verifyRegistration", Method: http.MethodPut, Path: "/user/verify-registration/{userId}/{applicationId}", Required: []string{"userId", "applicationId"}, run: verifyUserRegistration},
		{Name: "getTwoFactorRecoveryCodes", Method: http.MethodGet, Path: "/user/two-factor/recovery-code/{userId}", Required: []string{"userId"}, run: getRecoveryCodes},
		{Name: "generateTwoFactorRecoveryCodes", Method: http.MethodPost, Path: "/user/two-factor/recovery-code/{userId}", Required: []string{"userId"}, run: generateRecoveryCodes},
		{Name: "enableTwoFactor", Method: http.MethodPost, Path: "/user/two-factor/{userId}", Required: []string{"userId", "method", "code"}, run: enableTwoFactor},
		{Name: "disableTwoFactor", Method: http.MethodDelete, Path: "/user/two-factor/{userId}", Required: []string{"userId", "methodId", "code"}, run: disableTwoFactor},
		{Name: "sendTwoFactorCode", Method: http.MethodPost, Path: "/user/two-factor/send/{methodId}", Required: []string{"userId", "methodId"}, run: sendTwoFactorCode},
		{Name: "getRecentLogins", Method: http.MethodGet, Path: "/user/recent-login?userId=", Required: []string{"userId"}, run: getRecentLogins},
		{Name: "getRegistrations", Method: http.MethodGet, Path: "/user/registration/{userId}", Required: []string{"userId"}, run: getUserRegistrations},
		{Name: "refreshTokens", Method: http.MethodGet, Path: "/jwt/refresh/{userId}", Required: []string{"userId"}, run: getRefreshTokens},
		{Name: "revokeRefreshTokens", Method: http.MethodDelete, Path: "/jwt/refresh?userId=[&applicationId=]", Required: []string{"userId"}, run: revokeRefreshTokens},
		{Name: "getUserActionsOnUser", Method: http.MethodGet, Path: "/user/action/{userId}", Required: []string{"userId"}, run: getUserActions},
		{Name: "getUserComments", Method: http.MethodGet, Path: "/user/comment/{userId}", Required: []string{"userId"}, run: getUserComments},
		{Name: "addUserComment", Method: http.MethodPost, Path: "/user/comment/{userId}", Required: []string{"userId", "comment"}, run: addUserComment},
		{Name: "getConsents", Method: http.MethodGet, Path: "/user/consent/{userId}", Required: []string{"userId"}, run: getUserConsentsForUser},
		{Name: "updateConsents", Method: http.MethodPost, Path: "/user/consent/{userId}", Required: []string{"userId", "consents"}, run: updateUserConsents},
	}
}

// userFromFields builds the user object shared by create and update.
func userFromFields(user map[string]any, fields Params) (map[string]any, error) {
	copyTruthy(user, fields, userStringFields...)
	copyList(user, fields, "preferredLanguages")
	if err := copyJSON(user, fields, "data"); err != nil {
		return nil, err
	}
	copyDefined(user, fields, userFlagFields...)
	return user, nil
}

func createUser(ctx context.Context, c call) (any, error) {
	fields := c.params.Map("additionalFields")
	user, err := userFromFields(map[string]any{"email": c.params.String("email")}, fields)
	if err != nil {
		return nil, err
	}
	return c.request(ctx, http.MethodPost, createAt("/user", fields, "userId"), map[string]any{"user": user}, nil)
}

func getUser(ctx context.Context, c call) (any, error) {
	return c.get(ctx, path("/user/%s", c.params.String("userId")))
}

func getUserByEmail(ctx context.Context, c call) (any, error) {
	return c.request(ctx, http.MethodGet, "/user", nil, map[string]any{"email": c.params.String("email")})
}

func getUserByUsername(ctx context.Context, c call) (any, error) {
	return c.request(ctx, http.MethodGet, "/user", nil, map[string]any{"username": c.params.String("username")})
}

func searchUsers(ctx context.Context, c call) (any, error) {
	filters := c.params.Map("filters")
	queryString := filters.String("queryString")
	if queryString == "" {
		queryString = "*"
	}
	search := map[string]any{"queryString": queryString}
	if sortBy := filters.String("sortBy"); sortBy != "" {
		order := filters.String("sortOrder")
		if order == "" {
			order = "asc"
		}
		search["sortFields"] = []map[string]any{{"name": sortBy, "order": order}}
	}
	body := map[string]any{"search": search}

	if c.params.Bool("returnAll") {
		return c.all(ctx, http.MethodPost, "/user/search", "users", body, nil)
	}
	search["numberOfResults"] = c.params.Int("limit", DefaultLimit)
	res, err := c.request(ctx, http.MethodPost, "/user/search", body, nil)
	if err != nil {
		return nil, err
	}
	return property(res, "users"), nil
}

func updateUser(ctx context.Context, c call) (any, error) {
	fields := c.params.Map("updateFields")
	user := map[string]any{}
	copyTruthy(user, fields, "email")
	user, err := userFromFields(user, fields)
	if err != nil {
		return nil, err
	}
	return c.request(ctx, http.MethodPut, path("/user/%s", c.params.String("userId")), map[string]any{"user": user}, nil)
}

func patchUser(ctx context.Context, c call) (any, error) {
	body, err := core.ParseJSONParameter(c.params["patchData"])
	if err != nil {
		return nil, err
	}
	return c.request(ctx, http.MethodPatch, path("/user/%s", c.params.String("userId")), body, nil)
}

func deleteUser(ctx context.Context, c call) (any, error) {
	return c.request(ctx, http.MethodDelete, path("/user/%s", c.params.String("userId")), nil,
		map[string]any{"hardDelete": c.params.Bool("hardDelete")})
}

func deactivateUser(ctx context.Context, c call) (any, error) {
	return c.request(ctx, http.MethodDelete, path("/user/%s", c.params.String("userId")), nil,
		map[string]any{"hardDelete": false})
}

func reactivateUser(ctx context.Context, c call) (any, error) {
	return c.request(ctx, http.MethodPut, path("/user/%s", c.params.String("userId")), nil,
		map[string]any{"reactivate": true})
}

func bulkDeleteUsers(ctx context.Context, c call) (any, error) {
	return c.request(ctx, http.MethodDelete, "/user/bulk", map[string]any{
		"userIds":    c.params.StringSlice("userIds"),
		"hardDelete": c.params.Bool("hardDelete"),
	}, nil)
}

func importUsers(ctx context.Context, c call) (any, error) {
	users, err := core.ParseJSONValue(c.params["users"])
	if err != nil {
		return nil, err
	}
	return c.request(ctx, http.MethodPost, "/user/import", map[string]any{"users": users}, nil)
}

func changePassword(ctx context.Context, c call) (any, error) {
	return c.request(ctx, http.MethodPost, path("/user/change-password/%s", c.params.String("userId")), map[string]any{
		"currentPassword": c.params.String("currentPassword"),
		"password":        c.params.String("newPassword"),
	}, nil)
}

func forgotPassword(ctx context.Context, c call) (any, error) {
	return c.request(ctx, http.MethodPost, "/user/forgot-password", map[string]any{"loginId": c.params.String("loginId")}, nil)
}

func verifyEmail(ctx context.Context, c call) (any, error) {
	return c.request(ctx, http.MethodPut, path("/user/verify-email/%s", c.params.String("userId")), nil, nil)
}

func verifyUserRegistration(ctx context.Context, c call) (any, error) {
	endpoint := path("/user/verify-registration/%s/%s", c.params.String("userId"), c.params.String("applicationId"))
	return c.request(ctx, http.MethodPut, endpoint, nil, nil)
}

func getRecoveryCodes(ctx context.Context, c call) (any, error) {
	return c.get(ctx, path("/user/two-factor/recovery-code/%s", c.params.String("userId")))
}

func generateRecoveryCodes(ctx context.Context, c call) (any, error) {
	return c.request(ctx, http.MethodPost, path("/user/two-factor/recovery-code/%s", c.params.String("userId")), nil, nil)
}

func enableTwoFactor(ctx context.Context, c call) (any, error) {
	body := map[string]any{
		"method": c.params.String("method"),
		"code":   c.params.String("code"),
	}
	copyTruthy(body, c.params.Map("additionalFields"), "mobilePhone", "email", "secret")
	return c.request(ctx, http.MethodPost, path("/user/two-factor/%s", c.params.String("userId")), body, nil)
}

func disableTwoFactor(ctx context.Context, c call) (any, error) {
	return c.request(ctx, http.MethodDelete, path("/user/two-factor/%s", c.params.String("userId")), nil, map[string]any{
		"methodId": c.params.String("methodId"),
		"code":     c.params.String("code"),
	})
}

func sendTwoFactorCode(ctx context.Context, c call) (any, error) {
	return c.request(ctx, http.MethodPost, path("/user/two-factor/send/%s", c.params.String("methodId")),
		map[string]any{"userId": c.params.String("userId")}, nil)
}

func getRecentLogins(ctx context.Context, c call) (any, error) {
	return c.request(ctx, http.MethodGet, "/user/recent-login", nil, map[string]any{"userId": c.params.String("userId")})
}

func getUserRegistrations(ctx context.Context, c call) (any, error) {
	return c.get(ctx, path("/user/registration/%s", c.params.String("userId")))
}

func getRefreshTokens(ctx context.Context, c call) (any, error) {
	return c.get(ctx, path("/jwt/refresh/%s", c.params.String("userId")))
}

func revokeRefreshTokens(ctx context.Context, c call) (any, error) {
	query := map[string]any{"userId": c.params.String("userId")}
	if applicationID := c.params.String("applicationId"); applicationID != "" {
		query["applicationId"] = applicationID
	}
	return c.request(ctx, http.MethodDelete, "/jwt/refresh", nil, query)
}

func getUserActions(ctx context.Context, c call) (any, error) {
	return c.get(ctx, path("/user/action/%s", c.params.String("userId")))
}

func getUserComments(ctx context.Context, c call) (any, error) {
	return c.get(ctx, path("/user/comment/%s", c.params.String("userId")))
}

func addUserComment(ctx context.Context, c call) (any, error) {
	return c.request(ctx, http.MethodPost, path("/user/comment/%s", c.params.String("userId")), map[string]any{
		"userComment": map[string]any{"comment": c.params.String("comment")},
	}, nil)
}

func getUserConsentsForUser(ctx context.Context, c call) (any, error) {
	return c.get(ctx, path("/user/consent/%s", c.params.String("userId")))
}

func updateUserConsents(ctx context.Context, c call) (any, error) {
	consents, err := core.ParseJSONValue(c.params["consents"])
	if err != nil {
		return nil, err
	}
	return c.request(ctx, http.MethodPost, path("/user/consent/%s", c.params.String("userId")),
		map[string]any{"userConsents": consents}, nil)
}
