package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-fusionauth/core"
	"github.com/spf13/viper"
)

const envPrefix = "FUSIONAUTH"

var configKeys = []string{
	"service_name",
	"credentials.instance_url",
	"credentials.api_key",
	"credentials.tenant_id",
	"http.timeout",
	"http.max_response_body_bytes",
	"http.user_agent",
	"rate_limit.requests_per_second",
	"rate_limit.burst",
	"trigger.events",
	"trigger.signature_secret",
	"trigger.include_all_events",
	"trigger.listen_addr",
	"trigger.path",
	"trigger.dedupe_ttl",
	"store.driver",
	"store.dsn",
	"store.redis_addr",
	"queue.enabled",
	"queue.job_id",
}

var durationKeys = []string{"http.timeout", "trigger.dedupe_ttl"}

// viperLoader reads an optional config file plus FUSIONAUTH_* environment
// variables, e.g. FUSIONAUTH_CREDENTIALS_API_KEY.
type viperLoader struct {
	v *viper.Viper
}

func newViperLoader(path string) (*viperLoader, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", key, err)
		}
	}
	if path = strings.TrimSpace(path); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	return &viperLoader{v: v}, nil
}

func (l *viperLoader) LoadRaw(context.Context) (map[string]any, error) {
	raw := map[string]any{}
	for _, key := range configKeys {
		if !l.v.IsSet(key) {
			continue
		}
		setNested(raw, key, l.v.Get(key))
	}
	for _, key := range durationKeys {
		if l.v.IsSet(key) {
			setNested(raw, key, l.v.GetDuration(key))
		}
	}
	if l.v.IsSet("trigger.events") {
		setNested(raw, "trigger.events", eventList(l.v.Get("trigger.events")))
	}
	return raw, nil
}

// eventList accepts a YAML list or the comma separated form used in env.
func eventList(value any) []string {
	switch typed := value.(type) {
	case string:
		return core.ParseCommaSeparated(typed)
	case []string:
		return typed
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			out = append(out, core.ParseCommaSeparated(fmt.Sprint(item))...)
		}
		return out
	default:
		return nil
	}
}

func setNested(target map[string]any, key string, value any) {
	parts := strings.Split(key, ".")
	current := target
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

var _ core.RawConfigLoader = (*viperLoader)(nil)
