package fusionauth

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-fusionauth/adapters/gocommand"
	"github.com/goliatone/go-fusionauth/adapters/gojob"
	"github.com/goliatone/go-fusionauth/adapters/gologger"
	"github.com/goliatone/go-fusionauth/core"
	"github.com/goliatone/go-fusionauth/operations"
	"github.com/goliatone/go-fusionauth/ratelimit"
	"github.com/goliatone/go-fusionauth/transport"
	"github.com/goliatone/go-fusionauth/trigger"
)

type Config = core.Config

// EventLedger is the persisted trigger history, both written and read.
type EventLedger interface {
	core.EventRecorder
	core.EventReader
}

type Option func(*options)

type options struct {
	logger   core.Logger
	loggers  core.LoggerProvider
	metrics  core.MetricsRecorder
	doer     transport.HTTPDoer
	adapter  core.TransportAdapter
	claims   core.ClaimStore
	sinks    []trigger.Sink
	enqueuer core.JobEnqueuer
	ledger   EventLedger
	provider core.ConfigProvider
	resolver core.OptionsResolver
}

func WithLogger(logger core.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithLoggerProvider names a logger per component: fusionauth.client for the
// API client and executor, fusionauth.trigger for the webhook trigger.
func WithLoggerProvider(provider core.LoggerProvider) Option {
	return func(o *options) { o.loggers = provider }
}

func WithMetrics(metrics core.MetricsRecorder) Option {
	return func(o *options) { o.metrics = metrics }
}

func WithHTTPDoer(doer transport.HTTPDoer) Option {
	return func(o *options) { o.doer = doer }
}

func WithTransportAdapter(adapter core.TransportAdapter) Option {
	return func(o *options) { o.adapter = adapter }
}

func WithClaimStore(store core.ClaimStore) Option {
	return func(o *options) { o.claims = store }
}

// WithSink adds a destination for emitted trigger records. Sinks run in the
// order they were added.
func WithSink(sink trigger.Sink) Option {
	return func(o *options) {
		if sink != nil {
			o.sinks = append(o.sinks, sink)
		}
	}
}

// WithEnqueuer delivers trigger records as jobs when Queue.Enabled is set.
// The queue sink runs after any sink added with WithSink.
func WithEnqueuer(enqueuer core.JobEnqueuer) Option {
	return func(o *options) { o.enqueuer = enqueuer }
}

func WithEventLedger(ledger EventLedger) Option {
	return func(o *options) { o.ledger = ledger }
}

// WithConfigProvider layers provider output between the defaults and cfg.
func WithConfigProvider(provider core.ConfigProvider) Option {
	return func(o *options) { o.provider = provider }
}

func WithOptionsResolver(resolver core.OptionsResolver) Option {
	return func(o *options) { o.resolver = resolver }
}

// Service bundles the API client, the operation executor and the webhook
// trigger built from one Config.
type Service struct {
	config   Config
	observer *core.Observer
	client   *transport.Client
	executor *operations.Executor
	trigger  *trigger.Trigger
	ledger   EventLedger
}

// New builds a Service. The API client is only created when credentials are
// configured and the trigger only when events are selected, so a trigger-only
// or catalog-only process needs neither.
func New(cfg Config, opts ...Option) (*Service, error) {
	o := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.provider != nil || o.resolver != nil {
		loaded, err := core.LoadConfig(context.Background(), o.provider, o.resolver, cfg)
		if err != nil {
			return nil, core.MapError(err)
		}
		cfg = loaded
	} else if err := cfg.Validate(); err != nil {
		return nil, core.MapError(err)
	}

	svc := &Service{
		config:   cfg,
		observer: core.NewObserver(gologger.ForComponent(gologger.ComponentService, o.loggers, o.logger), o.metrics, cfg.ServiceName),
		ledger:   o.ledger,
	}

	if strings.TrimSpace(cfg.Credentials.InstanceURL) != "" {
		clientObserver := core.NewObserver(gologger.ForComponent(gologger.ComponentClient, o.loggers, o.logger), o.metrics, cfg.ServiceName)
		clientOpts := []transport.ClientOption{
			transport.WithObserver(clientObserver),
			transport.WithLimiter(ratelimit.NewLimiter(cfg.RateLimit)),
			transport.WithTimeout(cfg.HTTP.Timeout),
			transport.WithUserAgent(cfg.HTTP.UserAgent),
			transport.WithMaxResponseBodyBytes(cfg.HTTP.MaxResponseBodyBytes),
		}
		if o.doer != nil {
			clientOpts = append(clientOpts, transport.WithHTTPDoer(o.doer))
		}
		if o.adapter != nil {
			clientOpts = append(clientOpts, transport.WithAdapter(o.adapter))
		}
		client, err := transport.NewClient(cfg.ClientCredentials(), clientOpts...)
		if err != nil {
			return nil, err
		}
		executor, err := operations.NewExecutor(client, operations.WithObserver(clientObserver))
		if err != nil {
			return nil, err
		}
		svc.client = client
		svc.executor = executor
	}

	if len(cfg.Trigger.Events) > 0 || cfg.Trigger.IncludeAllEvents {
		triggerObserver := core.NewObserver(gologger.ForComponent(gologger.ComponentTrigger, o.loggers, o.logger), o.metrics, cfg.ServiceName)
		triggerOpts := []trigger.Option{
			trigger.WithObserver(triggerObserver),
			trigger.WithClaimStore(o.claims),
		}
		if o.ledger != nil {
			triggerOpts = append(triggerOpts, trigger.WithRecorder(o.ledger))
		}
		sinks := o.sinks
		if cfg.Queue.Enabled {
			if o.enqueuer == nil {
				return nil, core.NewError("fusionauth: queue is enabled but no enqueuer is configured", goerrors.CategoryBadInput, core.ErrorBadInput)
			}
			sinks = append(sinks[:len(sinks):len(sinks)], gojob.NewEnqueueSink(o.enqueuer, cfg.Queue.JobID))
		}
		switch len(sinks) {
		case 0:
		case 1:
			triggerOpts = append(triggerOpts, trigger.WithSink(sinks[0]))
		default:
			triggerOpts = append(triggerOpts, trigger.WithSink(trigger.MultiSink(sinks)))
		}
		trg, err := trigger.New(trigger.ConfigFromCore(cfg.Trigger), triggerOpts...)
		if err != nil {
			return nil, err
		}
		svc.trigger = trg
	}
	return svc, nil
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Observer() *core.Observer {
	if s == nil {
		return core.NewObserver(nil, nil, "")
	}
	return s.observer
}

func (s *Service) Client() *transport.Client {
	if s == nil {
		return nil
	}
	return s.client
}

func (s *Service) Executor() *operations.Executor {
	if s == nil {
		return nil
	}
	return s.executor
}

func (s *Service) Trigger() *trigger.Trigger {
	if s == nil {
		return nil
	}
	return s.trigger
}

func (s *Service) Events() core.EventReader {
	if s == nil || s.ledger == nil {
		return nil
	}
	return s.ledger
}

func (s *Service) Execute(ctx context.Context, req operations.ExecuteRequest) (operations.ExecuteResult, error) {
	if s == nil || s.executor == nil {
		return operations.ExecuteResult{}, missingCredentials()
	}
	return s.executor.Execute(ctx, req)
}

// TestCredentials checks the instance with the configured API key.
func (s *Service) TestCredentials(ctx context.Context) error {
	if s == nil || s.client == nil {
		return missingCredentials()
	}
	return s.client.TestCredentials(ctx)
}

func (s *Service) Handle(ctx context.Context, req trigger.Request) (trigger.Response, error) {
	if s == nil || s.trigger == nil {
		return trigger.Response{}, core.NewError("fusionauth: trigger is not configured", goerrors.CategoryBadInput, core.ErrorBadInput)
	}
	return s.trigger.Handle(ctx, req)
}

// Register exposes the service through go-command. Parts that are not
// configured are left out.
func (s *Service) Register(adapter *gocommand.RegistryAdapter) (*gocommand.Bindings, error) {
	deps := gocommand.Dependencies{}
	if s != nil {
		if s.executor != nil {
			deps.Executor = s.executor
		}
		if s.client != nil {
			deps.Credentials = s.client
		}
		if s.trigger != nil {
			deps.Trigger = s.trigger
		}
		if s.ledger != nil {
			deps.Events = s.ledger
		}
	}
	return gocommand.Register(adapter, deps)
}

func missingCredentials() error {
	return core.NewError("fusionauth: credentials.instance_url and credentials.api_key are required",
		goerrors.CategoryBadInput, core.ErrorBadInput)
}
