package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	fusionauth "github.com/goliatone/go-fusionauth"
	"github.com/goliatone/go-fusionauth/adapters/gocommand"
	"github.com/goliatone/go-fusionauth/core"
	faquery "github.com/goliatone/go-fusionauth/query"
	"github.com/goliatone/go-fusionauth/trigger"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newTriggerCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trigger",
		Short: "Receive FusionAuth webhooks and inspect the event ledger",
	}
	cmd.AddCommand(
		newTriggerServeCommand(a),
		newTriggerEventsCommand(a),
		newTriggerEventCommand(a),
		newTriggerPurgeCommand(a),
	)
	return cmd
}

type serveOptions struct {
	listen    string
	path      string
	events    []string
	allEvents bool
	migrate   bool
}

func newTriggerServeCommand(a *app) *cobra.Command {
	opts := &serveOptions{migrate: true}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the webhook endpoint and print each emitted record as a JSON line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(opts.events) > 0 {
				a.config.Trigger.Events = opts.events
			}
			if opts.allEvents {
				a.config.Trigger.IncludeAllEvents = true
			}
			if opts.listen != "" {
				a.config.Trigger.ListenAddr = opts.listen
			}
			if opts.path != "" {
				a.config.Trigger.Path = opts.path
			}
			return a.serveTrigger(cmd.Context(), opts.migrate)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.listen, "listen", "", "listen address (default trigger.listen_addr)")
	flags.StringVar(&opts.path, "path", "", "webhook path (default trigger.path)")
	flags.StringSliceVar(&opts.events, "event", nil, "event type to emit, repeatable or comma separated")
	flags.BoolVar(&opts.allEvents, "all-events", false, "emit every event type")
	flags.BoolVar(&opts.migrate, "migrate", opts.migrate, "apply ledger migrations before serving")
	return cmd
}

func (a *app) serveTrigger(ctx context.Context, migrate bool) error {
	ctx = background(ctx)
	st, err := a.openStores(ctx, migrate)
	if err != nil {
		return err
	}
	defer st.Close()

	svcOpts := []fusionauth.Option{
		fusionauth.WithClaimStore(st.claims),
		fusionauth.WithSink(a.recordPrinter()),
	}
	if st.ledger != nil {
		svcOpts = append(svcOpts, fusionauth.WithEventLedger(st.ledger))
	}
	svc, err := a.service(svcOpts...)
	if err != nil {
		return err
	}
	trg := svc.Trigger()
	if trg == nil {
		return core.NewBadInputError("trigger: select events with --event, --all-events or trigger.events")
	}
	if ok, err := trg.Create(ctx); err != nil || !ok {
		return fmt.Errorf("trigger: create webhook: %v", err)
	}

	path := a.config.Trigger.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	mux := http.NewServeMux()
	mux.Handle(path, trigger.NewHTTPHandler(trg))
	server := &http.Server{
		Addr:              a.config.Trigger.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("trigger listening", "addr", server.Addr, "path", path)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.logger.Info("trigger shutting down")
	if _, err := trg.Delete(shutdownCtx); err != nil {
		a.logger.Warn("trigger delete hook failed", "error", err)
	}
	return server.Shutdown(shutdownCtx)
}

// recordPrinter writes each emitted record as one JSON line on stdout.
// Handlers run concurrently, so writes are serialized.
func (a *app) recordPrinter() trigger.Sink {
	var mu sync.Mutex
	enc := json.NewEncoder(a.stdout)
	return trigger.SinkFunc(func(_ context.Context, record core.Record) error {
		mu.Lock()
		defer mu.Unlock()
		return enc.Encode(record.JSON)
	})
}

type eventsOptions struct {
	eventType string
	tenantID  string
	status    string
	since     time.Duration
	limit     int
	offset    int
}

func newTriggerEventsCommand(a *app) *cobra.Command {
	opts := &eventsOptions{}
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List recorded webhook deliveries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := core.EventFilter{
				EventType: opts.eventType,
				TenantID:  opts.tenantID,
				Status:    core.EventStatus(opts.status),
				Limit:     opts.limit,
				Offset:    opts.offset,
			}
			if opts.since > 0 {
				since := time.Now().UTC().Add(-opts.since)
				filter.Since = &since
			}
			return a.withLedger(cmd.Context(), func(ctx context.Context) error {
				page, err := gocommand.Query[faquery.ListTriggerEventsMessage, core.EventPage](ctx,
					faquery.ListTriggerEventsMessage{Filter: filter})
				if err != nil {
					return err
				}
				return a.printJSON(page)
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.eventType, "type", "", "filter by event type")
	flags.StringVar(&opts.tenantID, "tenant", "", "filter by tenant id")
	flags.StringVar(&opts.status, "status", "", "filter by status: emitted, ignored, rejected, duplicate, failed")
	flags.DurationVar(&opts.since, "since", 0, "only deliveries received within this window")
	flags.IntVar(&opts.limit, "limit", 25, "page size")
	flags.IntVar(&opts.offset, "offset", 0, "page offset")
	return cmd
}

func newTriggerEventCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "event <id>",
		Short: "Show one recorded webhook delivery",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd.Context(), func(ctx context.Context) error {
				event, err := gocommand.Query[faquery.GetTriggerEventMessage, core.EventRecord](ctx,
					faquery.GetTriggerEventMessage{ID: args[0]})
				if err != nil {
					return err
				}
				return a.printJSON(event)
			})
		},
	}
}

func newTriggerPurgeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete expired dedupe claims from the SQL store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := background(cmd.Context())
			if !sqlDriver(a.config.Store.Driver) {
				return core.NewBadInputError("purge needs store.driver sqlite3 or postgres")
			}
			st, err := a.openStores(ctx, false)
			if err != nil {
				return err
			}
			defer st.Close()
			removed, err := st.sqlClaims.Purge(ctx)
			if err != nil {
				return err
			}
			a.logger.Info("purged dedupe claims", "removed", removed)
			return nil
		},
	}
}

// withLedger opens the SQL ledger and exposes it through the query bus.
func (a *app) withLedger(ctx context.Context, run func(context.Context) error) error {
	ctx = background(ctx)
	if !sqlDriver(a.config.Store.Driver) {
		return core.NewBadInputError("the event ledger needs store.driver sqlite3 or postgres")
	}
	st, err := a.openStores(ctx, false)
	if err != nil {
		return err
	}
	defer st.Close()
	svc, err := a.service(fusionauth.WithEventLedger(st.ledger))
	if err != nil {
		return err
	}
	return withBindings(svc, func() error { return run(ctx) })
}
