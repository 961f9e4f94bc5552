package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	gocmd "github.com/goliatone/go-command"
	fusionauth "github.com/goliatone/go-fusionauth"
	"github.com/goliatone/go-fusionauth/adapters/gocommand"
	facommand "github.com/goliatone/go-fusionauth/command"
	"github.com/goliatone/go-fusionauth/core"
	"github.com/goliatone/go-fusionauth/operations"
	faquery "github.com/goliatone/go-fusionauth/query"
	"github.com/iancoleman/strcase"
	"github.com/spf13/cobra"
)

// withBindings registers svc on a fresh registry for the duration of run.
func withBindings(svc *fusionauth.Service, run func() error) error {
	adapter := gocommand.NewRegistryAdapter(gocmd.NewRegistry())
	bindings, err := svc.Register(adapter)
	if err != nil {
		return err
	}
	defer bindings.Close()
	if err := adapter.Initialize(); err != nil {
		return err
	}
	return run()
}

func newStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the instance URL and API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			return withBindings(svc, func() error {
				status, err := gocommand.DispatchWithResult[facommand.TestCredentialsMessage, facommand.CredentialStatus](
					cmd.Context(), facommand.TestCredentialsMessage{})
				if err != nil {
					return err
				}
				if err := a.printJSON(status); err != nil {
					return err
				}
				if status.Status != facommand.CredentialStatusOK {
					return fmt.Errorf("credential test failed")
				}
				return nil
			})
		},
	}
}

type execOptions struct {
	params         string
	paramsFile     string
	set            []string
	tenantID       string
	continueOnFail bool
	simplify       bool
}

func newExecCommand(a *app) *cobra.Command {
	opts := &execOptions{}
	cmd := &cobra.Command{
		Use:   "exec <resource> <operation>",
		Short: "Run one operation against the FusionAuth API",
		Example: `  fusionauth exec user get --set userId=2c1a...
  fusionauth exec user create --params '{"email":"a@example.com","password":"secret"}'
  fusionauth exec group addMembers --params-file members.json --continue-on-fail`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := opts.items(cmd.InOrStdin())
			if err != nil {
				return err
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			return withBindings(svc, func() error {
				result, err := gocommand.DispatchWithResult[facommand.ExecuteOperationMessage, operations.ExecuteResult](
					cmd.Context(), facommand.ExecuteOperationMessage{Request: operations.ExecuteRequest{
						Resource:       args[0],
						Operation:      args[1],
						Items:          items,
						ContinueOnFail: opts.continueOnFail,
						TenantID:       opts.tenantID,
						Simplify:       opts.simplify,
					}})
				if err != nil {
					return err
				}
				return a.printJSON(result)
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.params, "params", "p", "", "JSON object or array of objects, one per item")
	flags.StringVarP(&opts.paramsFile, "params-file", "f", "", "read --params from a file, - for stdin")
	flags.StringArrayVar(&opts.set, "set", nil, "key=value parameter applied to every item")
	flags.StringVar(&opts.tenantID, "tenant", "", "tenant id for this call")
	flags.BoolVar(&opts.continueOnFail, "continue-on-fail", false, "record item errors and keep going")
	flags.BoolVar(&opts.simplify, "simplify", false, "return the entity without its resource wrapper")
	return cmd
}

// items turns the flag values into executor items. Keys are normalised to
// lowerCamel so user_id and user-id both reach the API as userId.
func (o *execOptions) items(stdin io.Reader) ([]operations.Params, error) {
	raw := strings.TrimSpace(o.params)
	if path := strings.TrimSpace(o.paramsFile); path != "" {
		if raw != "" {
			return nil, core.NewBadInputError("use either --params or --params-file")
		}
		var data []byte
		var err error
		if path == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(path)
		}
		if err != nil {
			return nil, fmt.Errorf("read params file: %w", err)
		}
		raw = strings.TrimSpace(string(data))
	}

	items := []operations.Params{}
	switch {
	case raw == "":
	case strings.HasPrefix(raw, "["):
		var list []map[string]any
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			return nil, core.NewBadInputError("params must be a JSON object or an array of objects")
		}
		for _, item := range list {
			items = append(items, normalizeParams(item))
		}
	default:
		item, err := core.ParseJSONParameter(raw)
		if err != nil {
			return nil, err
		}
		items = append(items, normalizeParams(item))
	}

	shared := operations.Params{}
	for _, pair := range o.set {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, core.NewBadInputError(fmt.Sprintf("--set %q must be key=value", pair))
		}
		shared[strcase.ToLowerCamel(strings.TrimSpace(key))] = value
	}
	if len(shared) > 0 {
		if len(items) == 0 {
			items = append(items, operations.Params{})
		}
		for _, item := range items {
			for key, value := range shared {
				if _, exists := item[key]; !exists {
					item[key] = value
				}
			}
		}
	}
	return items, nil
}

func normalizeParams(in map[string]any) operations.Params {
	out := make(operations.Params, len(in))
	for key, value := range in {
		out[strcase.ToLowerCamel(key)] = value
	}
	return out
}

func newOperationsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "operations [resource]",
		Short: "List resources and their operations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := faquery.ListOperationsMessage{}
			if len(args) == 1 {
				msg.Resource = args[0]
			}
			catalog, err := faquery.NewListOperationsQuery().Query(cmd.Context(), msg)
			if err != nil {
				return err
			}
			for _, resource := range catalog {
				fmt.Fprintln(a.stdout, resource.Name)
				for _, op := range resource.Operations {
					fmt.Fprintf(a.stdout, "  %-24s %-6s %s\n", op.Name, op.Method, op.Path)
				}
			}
			return nil
		},
	}
}

func newEventsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "List the FusionAuth webhook event types the trigger understands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			events, err := faquery.NewListEventTypesQuery().Query(cmd.Context(), faquery.ListEventTypesMessage{})
			if err != nil {
				return err
			}
			for _, event := range events {
				fmt.Fprintf(a.stdout, "%-44s %s\n", event.Type, event.Label)
			}
			return nil
		},
	}
}

func background(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
