package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"
)

// responseKeys maps a resource name to the key FusionAuth wraps single
// entities in.
var responseKeys = map[string]string{
	"user":             "user",
	"application":      "application",
	"tenant":           "tenant",
	"group":            "group",
	"registration":     "registration",
	"identityProvider": "identityProvider",
	"consent":          "consent",
	"form":             "form",
	"formField":        "field",
	"lambda":           "lambda",
	"webhook":          "webhook",
	"auditLog":         "auditLog",
}

func ParseCommaSeparated(value string) []string {
	out := []string{}
	if value == "" {
		return out
	}
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ParseJSONParameter accepts an object or a JSON object string. Blank strings
// decode to an empty object.
func ParseJSONParameter(value any) (map[string]any, error) {
	switch typed := value.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return typed, nil
	case string:
		if strings.TrimSpace(typed) == "" {
			return map[string]any{}, nil
		}
		var out map[string]any
		if err := json.Unmarshal([]byte(typed), &out); err != nil || out == nil {
			return nil, NewBadInputError(invalidJSONParameterMessage)
		}
		return out, nil
	case []byte:
		return ParseJSONParameter(string(typed))
	default:
		return nil, NewBadInputError(invalidJSONParameterMessage)
	}
}

// ParseJSONValue is ParseJSONParameter for parameters that may hold arrays.
func ParseJSONValue(value any) (any, error) {
	switch typed := value.(type) {
	case nil:
		return map[string]any{}, nil
	case string:
		if strings.TrimSpace(typed) == "" {
			return map[string]any{}, nil
		}
		var out any
		if err := json.Unmarshal([]byte(typed), &out); err != nil {
			return nil, NewBadInputError(invalidJSONParameterMessage)
		}
		return out, nil
	case []byte:
		return ParseJSONValue(string(typed))
	default:
		return typed, nil
	}
}

func GenerateUUID() string {
	return uuid.NewString()
}

// FormatDate renders a date as YYYY-MM-DD in UTC. It accepts time.Time, an
// ISO-8601 string or epoch milliseconds.
func FormatDate(value any) (string, error) {
	t, ok, err := toTime(value)
	if err != nil || !ok {
		return "", err
	}
	return t.UTC().Format("2006-01-02"), nil
}

// ToEpochMillis converts a date parameter to the epoch milliseconds FusionAuth
// search criteria expect.
func ToEpochMillis(value any) (int64, bool, error) {
	t, ok, err := toTime(value)
	if err != nil || !ok {
		return 0, ok, err
	}
	return t.UnixMilli(), true, nil
}

// SimplifyResponse unwraps the entity from its resource key when present.
func SimplifyResponse(data map[string]any, resource string) map[string]any {
	key, ok := responseKeys[resource]
	if !ok {
		return data
	}
	if inner, ok := data[key].(map[string]any); ok && len(inner) > 0 {
		return inner
	}
	return data
}

func toTime(value any) (time.Time, bool, error) {
	switch typed := value.(type) {
	case nil:
		return time.Time{}, false, nil
	case time.Time:
		if typed.IsZero() {
			return time.Time{}, false, nil
		}
		return typed, true, nil
	case *time.Time:
		if typed == nil || typed.IsZero() {
			return time.Time{}, false, nil
		}
		return *typed, true, nil
	case int:
		return time.UnixMilli(int64(typed)), true, nil
	case int64:
		return time.UnixMilli(typed), true, nil
	case float64:
		return time.UnixMilli(int64(typed)), true, nil
	case json.Number:
		ms, err := typed.Int64()
		if err != nil {
			return time.Time{}, false, NewBadInputError(fmt.Sprintf("invalid date %q", typed.String()))
		}
		return time.UnixMilli(ms), true, nil
	case string:
		raw := strings.TrimSpace(typed)
		if raw == "" {
			return time.Time{}, false, nil
		}
		// zone-less strings are read as UTC
		parsed, err := dateparse.ParseIn(raw, time.UTC)
		if err != nil {
			return time.Time{}, false, NewBadInputError(fmt.Sprintf("invalid date %q", raw))
		}
		return parsed, true, nil
	default:
		return time.Time{}, false, NewBadInputError(fmt.Sprintf("invalid date value of type %T", value))
	}
}
