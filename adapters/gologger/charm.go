package gologger

import (
	"context"
	"io"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
	glog "github.com/goliatone/go-logger/glog"
)

// CharmOptions configures the terminal logger used by the CLI.
type CharmOptions struct {
	Level           string
	Prefix          string
	JSON            bool
	ReportTimestamp bool
}

// CharmLogger adapts a charmbracelet logger to glog.Logger. Trace maps to
// debug.
type CharmLogger struct {
	logger *charmlog.Logger
}

func NewCharmLogger(w io.Writer, opts CharmOptions) *CharmLogger {
	if w == nil {
		w = os.Stderr
	}
	options := charmlog.Options{
		Prefix:          strings.TrimSpace(opts.Prefix),
		ReportTimestamp: opts.ReportTimestamp,
	}
	if opts.JSON {
		options.Formatter = charmlog.JSONFormatter
	}
	logger := charmlog.NewWithOptions(w, options)
	if level, err := charmlog.ParseLevel(strings.TrimSpace(opts.Level)); err == nil {
		logger.SetLevel(level)
	}
	return &CharmLogger{logger: logger}
}

func (l *CharmLogger) Trace(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *CharmLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *CharmLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *CharmLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *CharmLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }
func (l *CharmLogger) Fatal(msg string, args ...any) { l.logger.Fatal(msg, args...) }

func (l *CharmLogger) WithContext(context.Context) glog.Logger { return l }

// With returns a child logger carrying keyvals on every line.
func (l *CharmLogger) With(keyvals ...any) *CharmLogger {
	return &CharmLogger{logger: l.logger.With(keyvals...)}
}

// CharmProvider hands out prefixed children of one CharmLogger.
type CharmProvider struct {
	root *CharmLogger
}

func NewCharmProvider(root *CharmLogger) *CharmProvider {
	return &CharmProvider{root: root}
}

func (p *CharmProvider) GetLogger(name string) glog.Logger {
	if p == nil || p.root == nil {
		return glog.Nop()
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return p.root
	}
	return &CharmLogger{logger: p.root.logger.WithPrefix(name)}
}

var (
	_ glog.Logger         = (*CharmLogger)(nil)
	_ glog.LoggerProvider = (*CharmProvider)(nil)
)
