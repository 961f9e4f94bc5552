package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-config/cfgx"
	goerrors "github.com/goliatone/go-errors"
	opts "github.com/goliatone/go-options"
)

type ErrorMapper func(err error) *goerrors.Error

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

// StaticRawConfigLoader serves a fixed map, mostly for tests and embedding.
type StaticRawConfigLoader struct {
	Values map[string]any
}

func (l StaticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = StaticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// GoOptionsResolver layers defaults < loaded config < runtime overrides.
type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			configToLayerMap(defaults, true),
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			configToLayerMap(loaded, false),
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			configToLayerMap(runtime, false),
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

// LoadConfig runs the provider and resolver against DefaultConfig.
func LoadConfig(ctx context.Context, provider ConfigProvider, resolver OptionsResolver, runtime Config) (Config, error) {
	if provider == nil {
		provider = NewCfgxConfigProvider(nil)
	}
	if resolver == nil {
		resolver = GoOptionsResolver{}
	}
	defaults := DefaultConfig()
	loaded, err := provider.Load(ctx, defaults)
	if err != nil {
		return Config{}, err
	}
	return resolver.Resolve(defaults, loaded, runtime)
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.ServiceName) != "" {
		layer["service_name"] = cfg.ServiceName
	}

	credentials := map[string]any{}
	putString(credentials, "instance_url", cfg.Credentials.InstanceURL, includeZero)
	putString(credentials, "api_key", cfg.Credentials.APIKey, includeZero)
	putString(credentials, "tenant_id", cfg.Credentials.TenantID, includeZero)
	putSection(layer, "credentials", credentials)

	httpLayer := map[string]any{}
	if includeZero || cfg.HTTP.Timeout != 0 {
		httpLayer["timeout"] = cfg.HTTP.Timeout
	}
	if includeZero || cfg.HTTP.MaxResponseBodyBytes != 0 {
		httpLayer["max_response_body_bytes"] = cfg.HTTP.MaxResponseBodyBytes
	}
	putString(httpLayer, "user_agent", cfg.HTTP.UserAgent, includeZero)
	putSection(layer, "http", httpLayer)

	rateLayer := map[string]any{}
	if includeZero || cfg.RateLimit.RequestsPerSecond != 0 {
		rateLayer["requests_per_second"] = cfg.RateLimit.RequestsPerSecond
	}
	if includeZero || cfg.RateLimit.Burst != 0 {
		rateLayer["burst"] = cfg.RateLimit.Burst
	}
	putSection(layer, "rate_limit", rateLayer)

	triggerLayer := map[string]any{}
	if includeZero || len(cfg.Trigger.Events) > 0 {
		triggerLayer["events"] = append([]string(nil), cfg.Trigger.Events...)
	}
	putString(triggerLayer, "signature_secret", cfg.Trigger.SignatureSecret, includeZero)
	if includeZero || cfg.Trigger.IncludeAllEvents {
		triggerLayer["include_all_events"] = cfg.Trigger.IncludeAllEvents
	}
	putString(triggerLayer, "listen_addr", cfg.Trigger.ListenAddr, includeZero)
	putString(triggerLayer, "path", cfg.Trigger.Path, includeZero)
	if includeZero || cfg.Trigger.DedupeTTL != 0 {
		triggerLayer["dedupe_ttl"] = cfg.Trigger.DedupeTTL
	}
	putSection(layer, "trigger", triggerLayer)

	storeLayer := map[string]any{}
	putString(storeLayer, "driver", cfg.Store.Driver, includeZero)
	putString(storeLayer, "dsn", cfg.Store.DSN, includeZero)
	putString(storeLayer, "redis_addr", cfg.Store.RedisAddr, includeZero)
	putSection(layer, "store", storeLayer)

	queueLayer := map[string]any{}
	if includeZero || cfg.Queue.Enabled {
		queueLayer["enabled"] = cfg.Queue.Enabled
	}
	putString(queueLayer, "job_id", cfg.Queue.JobID, includeZero)
	putSection(layer, "queue", queueLayer)

	return layer
}

func putString(target map[string]any, key, value string, includeZero bool) {
	if includeZero || strings.TrimSpace(value) != "" {
		target[key] = value
	}
}

func putSection(layer map[string]any, key string, section map[string]any) {
	if len(section) > 0 {
		layer[key] = section
	}
}
