package main

import (
	"context"
	"encoding/json"
	"io"

	fusionauth "github.com/goliatone/go-fusionauth"
	"github.com/goliatone/go-fusionauth/adapters/gologger"
	"github.com/goliatone/go-fusionauth/core"
)

// app carries the state shared by every subcommand.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	logLevel   string
	logJSON    bool
	overrides  core.Config

	config core.Config
	logger *gologger.CharmLogger
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{stdout: stdout, stderr: stderr, logLevel: "info"}
}

// load resolves defaults < config file/env < flag overrides.
func (a *app) load(ctx context.Context) error {
	a.logger = gologger.NewCharmLogger(a.stderr, gologger.CharmOptions{
		Level:           a.logLevel,
		Prefix:          core.DefaultServiceName,
		JSON:            a.logJSON,
		ReportTimestamp: true,
	})
	loader, err := newViperLoader(a.configPath)
	if err != nil {
		return err
	}
	cfg, err := core.LoadConfig(ctx, core.NewCfgxConfigProvider(loader), core.GoOptionsResolver{}, a.overrides)
	if err != nil {
		return err
	}
	a.config = cfg
	return nil
}

func (a *app) service(opts ...fusionauth.Option) (*fusionauth.Service, error) {
	base := []fusionauth.Option{
		fusionauth.WithLogger(a.logger),
		fusionauth.WithLoggerProvider(gologger.NewCharmProvider(a.logger)),
	}
	return fusionauth.New(a.config, append(base, opts...)...)
}

func (a *app) printJSON(value any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
