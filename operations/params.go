package operations

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-fusionauth/core"
)

// DefaultLimit is used by getAll/search when returnAll is false and no limit
// was given.
const DefaultLimit = 50

// Params is one input item. Nested collections (additionalFields,
// updateFields, filters, exportOptions) are read with Map.
type Params map[string]any

// Has reports whether key is present with a non-nil value.
func (p Params) Has(key string) bool {
	if p == nil {
		return false
	}
	value, ok := p[key]
	return ok && value != nil
}

// Truthy reports whether key holds a non-zero, non-empty value.
func (p Params) Truthy(key string) bool {
	if p == nil {
		return false
	}
	return truthy(p[key])
}

func (p Params) String(key string) string {
	if p == nil {
		return ""
	}
	switch typed := p[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(typed)
	case json.Number:
		return typed.String()
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	default:
		return strings.TrimSpace(fmt.Sprint(typed))
	}
}

// Required returns the string value of key or a bad input error when it is
// missing or blank.
func (p Params) Required(key string) (string, error) {
	value := p.String(key)
	if value == "" {
		return "", core.NewBadInputError(fmt.Sprintf("parameter %q is required", key))
	}
	return value, nil
}

func (p Params) Bool(key string) bool {
	return p.BoolDefault(key, false)
}

func (p Params) BoolDefault(key string, fallback bool) bool {
	if !p.Has(key) {
		return fallback
	}
	switch typed := p[key].(type) {
	case bool:
		return typed
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(typed))
		if err != nil {
			return fallback
		}
		return parsed
	default:
		return truthy(typed)
	}
}

func (p Params) Int(key string, fallback int) int {
	if !p.Has(key) {
		return fallback
	}
	switch typed := p[key].(type) {
	case int:
		return typed
	case int64:
		return int(typed)
	case float64:
		return int(typed)
	case json.Number:
		if parsed, err := typed.Int64(); err == nil {
			return int(parsed)
		}
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(typed)); err == nil {
			return parsed
		}
	}
	return fallback
}

// Map returns a nested collection. A JSON object string is decoded; anything
// else yields an empty collection. Use Object when a bad value must fail.
func (p Params) Map(key string) Params {
	out, err := p.Object(key)
	if err != nil {
		return Params{}
	}
	return out
}

// Object is Map that reports a string which does not decode to a JSON object
// as "Invalid JSON format".
func (p Params) Object(key string) (Params, error) {
	if p == nil {
		return Params{}, nil
	}
	switch typed := p[key].(type) {
	case nil:
		return Params{}, nil
	case Params:
		return typed, nil
	case map[string]any:
		return Params(typed), nil
	case string:
		parsed, err := core.ParseJSONParameter(typed)
		if err != nil {
			return Params{}, err
		}
		return Params(parsed), nil
	default:
		return Params{}, nil
	}
}

// StringSlice accepts a list or a comma separated string.
func (p Params) StringSlice(key string) []string {
	if p == nil {
		return []string{}
	}
	switch typed := p[key].(type) {
	case []string:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			if value := strings.TrimSpace(fmt.Sprint(item)); value != "" && item != nil {
				out = append(out, value)
			}
		}
		return out
	case string:
		return core.ParseCommaSeparated(typed)
	default:
		return []string{}
	}
}

func truthy(value any) bool {
	switch typed := value.(type) {
	case nil:
		return false
	case string:
		return typed != ""
	case bool:
		return typed
	case int:
		return typed != 0
	case int64:
		return typed != 0
	case float64:
		return typed != 0
	case json.Number:
		return typed.String() != "0"
	default:
		return true
	}
}

// copyTruthy copies keys whose values are truthy.
func copyTruthy(dst map[string]any, src Params, keys ...string) {
	for _, key := range keys {
		if src.Truthy(key) {
			dst[key] = src[key]
		}
	}
}

// copyDefined copies keys that are present, including false and zero.
func copyDefined(dst map[string]any, src Params, keys ...string) {
	for _, key := range keys {
		if src.Has(key) {
			dst[key] = src[key]
		}
	}
}

// copyJSON decodes truthy JSON parameters into dst.
func copyJSON(dst map[string]any, src Params, keys ...string) error {
	for _, key := range keys {
		if !src.Truthy(key) {
			continue
		}
		value, err := core.ParseJSONValue(src[key])
		if err != nil {
			return err
		}
		dst[key] = value
	}
	return nil
}

// copyList splits truthy comma separated parameters into dst.
func copyList(dst map[string]any, src Params, keys ...string) {
	for _, key := range keys {
		if src.Truthy(key) {
			dst[key] = src.StringSlice(key)
		}
	}
}
