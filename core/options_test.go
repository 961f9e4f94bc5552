package core

import (
	"context"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(context.Background(), nil, nil, Config{})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ServiceName != DefaultServiceName {
		t.Fatalf("expected default service name, got %q", cfg.ServiceName)
	}
	if cfg.HTTP.Timeout != DefaultHTTPTimeout {
		t.Fatalf("expected default timeout, got %s", cfg.HTTP.Timeout)
	}
	if cfg.Trigger.Path != DefaultTriggerPath {
		t.Fatalf("expected default trigger path, got %q", cfg.Trigger.Path)
	}
}

func TestLoadConfig_RuntimeOverridesLoaded(t *testing.T) {
	provider := NewCfgxConfigProvider(StaticRawConfigLoader{Values: map[string]any{
		"credentials": map[string]any{
			"instance_url": "https://auth.example.com",
			"api_key":      "from-file",
			"tenant_id":    "tenant-file",
		},
		"trigger": map[string]any{
			"events": []any{"user.create"},
		},
	}})
	runtime := Config{
		Credentials: CredentialsConfig{APIKey: "from-runtime"},
		HTTP:        HTTPConfig{Timeout: 5 * time.Second},
	}
	cfg, err := LoadConfig(context.Background(), provider, GoOptionsResolver{}, runtime)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Credentials.APIKey != "from-runtime" {
		t.Fatalf("expected runtime api key, got %q", cfg.Credentials.APIKey)
	}
	if cfg.Credentials.TenantID != "tenant-file" {
		t.Fatalf("expected loaded tenant, got %q", cfg.Credentials.TenantID)
	}
	if cfg.HTTP.Timeout != 5*time.Second {
		t.Fatalf("expected runtime timeout, got %s", cfg.HTTP.Timeout)
	}
	if len(cfg.Trigger.Events) != 1 || cfg.Trigger.Events[0] != "user.create" {
		t.Fatalf("expected loaded events, got %#v", cfg.Trigger.Events)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate: %v", err)
	}

	cfg.Credentials.InstanceURL = "not a url"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected invalid instance url")
	}

	cfg = DefaultConfig()
	cfg.Store.Driver = StoreDriverSQLite
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected dsn requirement for sqlite driver")
	}

	cfg = DefaultConfig()
	cfg.ServiceName = " "
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected service name requirement")
	}
}

func TestCredentials(t *testing.T) {
	creds := Credentials{InstanceURL: "https://auth.example.com/ ", APIKey: "k", TenantID: "default"}
	if creds.BaseURL() != "https://auth.example.com" {
		t.Fatalf("unexpected base url %q", creds.BaseURL())
	}
	if creds.ResolveTenant("override") != "override" {
		t.Fatalf("expected per-call tenant to win")
	}
	if creds.ResolveTenant("") != "default" {
		t.Fatalf("expected credential tenant fallback")
	}
	if err := (Credentials{APIKey: "k"}).Validate(); err == nil {
		t.Fatalf("expected instance url requirement")
	}
}
