package core

import (
	"context"
	"errors"
	"maps"
	"sync"
	"testing"
	"time"
)

type capturedCounter struct {
	name  string
	value int64
	tags  map[string]string
}

type captureMetricsRecorder struct {
	mu         sync.Mutex
	counters   []capturedCounter
	histograms []string
}

func (m *captureMetricsRecorder) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters = append(m.counters, capturedCounter{name: name, value: value, tags: maps.Clone(tags)})
}

func (m *captureMetricsRecorder) ObserveHistogram(_ context.Context, name string, _ float64, _ map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histograms = append(m.histograms, name)
}

type capturedLog struct {
	level  string
	msg    string
	fields map[string]any
}

type captureLogger struct {
	mu       *sync.Mutex
	records  *[]capturedLog
	defaults map[string]any
}

func newCaptureLogger() *captureLogger {
	records := []capturedLog{}
	return &captureLogger{mu: &sync.Mutex{}, records: &records, defaults: map[string]any{}}
}

func (l *captureLogger) WithFields(fields map[string]any) Logger {
	merged := cloneFields(l.defaults)
	for key, value := range fields {
		merged[key] = value
	}
	return &captureLogger{mu: l.mu, records: l.records, defaults: merged}
}

func (l *captureLogger) Trace(msg string, args ...any) { l.record("trace", msg, args...) }
func (l *captureLogger) Debug(msg string, args ...any) { l.record("debug", msg, args...) }
func (l *captureLogger) Info(msg string, args ...any)  { l.record("info", msg, args...) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args...) }
func (l *captureLogger) Error(msg string, args ...any) { l.record("error", msg, args...) }
func (l *captureLogger) Fatal(msg string, args ...any) { l.record("fatal", msg, args...) }

func (l *captureLogger) WithContext(context.Context) Logger {
	return &captureLogger{mu: l.mu, records: l.records, defaults: cloneFields(l.defaults)}
}

func (l *captureLogger) record(level string, msg string, args ...any) {
	fields := cloneFields(l.defaults)
	for index := 0; index+1 < len(args); index += 2 {
		key, ok := args[index].(string)
		if !ok {
			continue
		}
		fields[key] = args[index+1]
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.records = append(*l.records, capturedLog{level: level, msg: msg, fields: fields})
}

func (l *captureLogger) snapshot() []capturedLog {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]capturedLog, len(*l.records))
	copy(out, *l.records)
	return out
}

func TestObserver_LogsSuccessAndFailure(t *testing.T) {
	logger := newCaptureLogger()
	metrics := &captureMetricsRecorder{}
	observer := NewObserver(logger, metrics, "fusionauth")

	observer.ObserveOperation(context.Background(), time.Now(), "user.create", nil, map[string]any{"resource": "user"})
	observer.ObserveOperation(context.Background(), time.Now(), "user.delete", errors.New("boom"), map[string]any{"resource": "user"})

	records := logger.snapshot()
	if len(records) != 2 {
		t.Fatalf("expected two log records, got %d", len(records))
	}
	if records[0].level != "info" || records[0].msg != "user.create succeeded" {
		t.Fatalf("unexpected success log %#v", records[0])
	}
	if records[1].level != "error" || records[1].msg != "user.delete failed" {
		t.Fatalf("unexpected failure log %#v", records[1])
	}
	if records[1].fields["error"] != "boom" || records[1].fields["status"] != "failure" {
		t.Fatalf("expected error fields, got %#v", records[1].fields)
	}

	if len(metrics.counters) != 2 {
		t.Fatalf("expected two counters, got %d", len(metrics.counters))
	}
	if metrics.counters[0].name != "fusionauth.user.create.total" {
		t.Fatalf("unexpected counter name %q", metrics.counters[0].name)
	}
	if metrics.counters[1].tags["resource"] != "user" || metrics.counters[1].tags["status"] != "failure" {
		t.Fatalf("unexpected counter tags %#v", metrics.counters[1].tags)
	}
	if len(metrics.histograms) != 2 {
		t.Fatalf("expected two histograms, got %d", len(metrics.histograms))
	}
}

func TestObserver_KeepsCallerEventType(t *testing.T) {
	logger := newCaptureLogger()
	observer := NewObserver(logger, nil, "fusionauth")

	observer.ObserveOperation(context.Background(), time.Now(), "trigger", nil, map[string]any{"event_type": "user.create"})
	observer.ObserveOperation(context.Background(), time.Now(), "trigger", nil, map[string]any{"event_type": ""})

	records := logger.snapshot()
	if len(records) != 2 {
		t.Fatalf("expected two log records, got %d", len(records))
	}
	if records[0].msg != "trigger succeeded" || records[0].fields["event_type"] != "user.create" {
		t.Fatalf("expected webhook event type to be kept, got %#v", records[0])
	}
	if records[1].fields["event_type"] != "trigger" {
		t.Fatalf("expected operation as fallback event type, got %#v", records[1].fields)
	}
}

func TestObserver_NilSafe(t *testing.T) {
	var observer *Observer
	observer.ObserveOperation(context.Background(), time.Now(), "noop", nil, nil)
	if observer.Logger() == nil {
		t.Fatalf("expected nop logger from nil observer")
	}
}
