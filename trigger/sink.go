package trigger

import (
	"context"

	"github.com/goliatone/go-fusionauth/core"
)

// Sink receives every emitted event record.
type Sink interface {
	Emit(ctx context.Context, record core.Record) error
}

type SinkFunc func(ctx context.Context, record core.Record) error

func (f SinkFunc) Emit(ctx context.Context, record core.Record) error {
	if f == nil {
		return nil
	}
	return f(ctx, record)
}

// ChannelSink forwards records to a channel, blocking until the reader takes
// the record or ctx is done.
type ChannelSink chan core.Record

func (s ChannelSink) Emit(ctx context.Context, record core.Record) error {
	if s == nil {
		return triggerInternal("trigger: channel sink is nil", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case s <- record:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MultiSink emits to each sink in order and stops at the first error.
type MultiSink []Sink

func (m MultiSink) Emit(ctx context.Context, record core.Record) error {
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Emit(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

type discardSink struct{}

func (discardSink) Emit(context.Context, core.Record) error { return nil }
