package core

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultServiceName          = "fusionauth"
	DefaultHTTPTimeout          = 30 * time.Second
	DefaultMaxResponseBodyBytes = int64(10 << 20)
	DefaultTriggerListenAddr    = ":8085"
	DefaultTriggerPath          = "/webhook"
	DefaultDedupeTTL            = 24 * time.Hour
	DefaultQueueJobID           = "fusionauth.trigger.event"
)

type CredentialsConfig struct {
	InstanceURL string `koanf:"instance_url" mapstructure:"instance_url"`
	APIKey      string `koanf:"api_key" mapstructure:"api_key"`
	TenantID    string `koanf:"tenant_id" mapstructure:"tenant_id"`
}

type HTTPConfig struct {
	Timeout              time.Duration `koanf:"timeout" mapstructure:"timeout"`
	MaxResponseBodyBytes int64         `koanf:"max_response_body_bytes" mapstructure:"max_response_body_bytes"`
	UserAgent            string        `koanf:"user_agent" mapstructure:"user_agent"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `koanf:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `koanf:"burst" mapstructure:"burst"`
}

type TriggerConfig struct {
	Events           []string      `koanf:"events" mapstructure:"events"`
	SignatureSecret  string        `koanf:"signature_secret" mapstructure:"signature_secret"`
	IncludeAllEvents bool          `koanf:"include_all_events" mapstructure:"include_all_events"`
	ListenAddr       string        `koanf:"listen_addr" mapstructure:"listen_addr"`
	Path             string        `koanf:"path" mapstructure:"path"`
	DedupeTTL        time.Duration `koanf:"dedupe_ttl" mapstructure:"dedupe_ttl"`
}

type StoreConfig struct {
	Driver string `koanf:"driver" mapstructure:"driver"`
	DSN    string `koanf:"dsn" mapstructure:"dsn"`
	// RedisAddr enables the shared trigger dedupe store when set.
	RedisAddr string `koanf:"redis_addr" mapstructure:"redis_addr"`
}

type QueueConfig struct {
	Enabled bool   `koanf:"enabled" mapstructure:"enabled"`
	JobID   string `koanf:"job_id" mapstructure:"job_id"`
}

type Config struct {
	ServiceName string            `koanf:"service_name" mapstructure:"service_name"`
	Credentials CredentialsConfig `koanf:"credentials" mapstructure:"credentials"`
	HTTP        HTTPConfig        `koanf:"http" mapstructure:"http"`
	RateLimit   RateLimitConfig   `koanf:"rate_limit" mapstructure:"rate_limit"`
	Trigger     TriggerConfig     `koanf:"trigger" mapstructure:"trigger"`
	Store       StoreConfig       `koanf:"store" mapstructure:"store"`
	Queue       QueueConfig       `koanf:"queue" mapstructure:"queue"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: DefaultServiceName,
		HTTP: HTTPConfig{
			Timeout:              DefaultHTTPTimeout,
			MaxResponseBodyBytes: DefaultMaxResponseBodyBytes,
		},
		Trigger: TriggerConfig{
			ListenAddr: DefaultTriggerListenAddr,
			Path:       DefaultTriggerPath,
			DedupeTTL:  DefaultDedupeTTL,
		},
		Store: StoreConfig{Driver: StoreDriverMemory},
		Queue: QueueConfig{JobID: DefaultQueueJobID},
	}
}

const (
	StoreDriverMemory   = "memory"
	StoreDriverSQLite   = "sqlite3"
	StoreDriverPostgres = "postgres"
)

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("core: http.timeout must be positive")
	}
	if c.RateLimit.RequestsPerSecond < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("core: rate_limit values must not be negative")
	}
	if raw := strings.TrimSpace(c.Credentials.InstanceURL); raw != "" {
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("core: credentials.instance_url is invalid")
		}
	}
	switch strings.TrimSpace(c.Store.Driver) {
	case "", StoreDriverMemory, StoreDriverSQLite, StoreDriverPostgres:
	default:
		return fmt.Errorf("core: store.driver %q is not supported", c.Store.Driver)
	}
	if c.Store.Driver == StoreDriverSQLite || c.Store.Driver == StoreDriverPostgres {
		if strings.TrimSpace(c.Store.DSN) == "" {
			return fmt.Errorf("core: store.dsn is required for driver %s", c.Store.Driver)
		}
	}
	return nil
}

// ClientCredentials returns the connection settings used by the API client.
func (c Config) ClientCredentials() Credentials {
	return Credentials{
		InstanceURL: c.Credentials.InstanceURL,
		APIKey:      c.Credentials.APIKey,
		TenantID:    c.Credentials.TenantID,
	}
}

type Credentials struct {
	InstanceURL string
	APIKey      string
	TenantID    string
}

func (c Credentials) Validate() error {
	if strings.TrimSpace(c.InstanceURL) == "" {
		return fmt.Errorf("core: instance url is required")
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("core: api key is required")
	}
	return nil
}

// BaseURL is the instance URL without a trailing slash.
func (c Credentials) BaseURL() string {
	return strings.TrimRight(strings.TrimSpace(c.InstanceURL), "/")
}

// ResolveTenant prefers the per-call tenant over the credential default.
func (c Credentials) ResolveTenant(tenantID string) string {
	if tenant := strings.TrimSpace(tenantID); tenant != "" {
		return tenant
	}
	return strings.TrimSpace(c.TenantID)
}
