package gojob

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goliatone/go-fusionauth/core"
	job "github.com/goliatone/go-job"
)

// RecordHandler processes one trigger record pulled from the queue.
type RecordHandler interface {
	Emit(ctx context.Context, record core.Record) error
}

type BackoffConfig struct {
	InitialInterval     time.Duration
	MaxInterval         time.Duration
	Multiplier          float64
	RandomizationFactor float64
}

func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		InitialInterval:     time.Second,
		MaxInterval:         5 * time.Minute,
		Multiplier:          2,
		RandomizationFactor: backoff.DefaultRandomizationFactor,
	}
}

// Delay returns the wait before retry number attempt (1 based).
func (c BackoffConfig) Delay(attempt int) time.Duration {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     c.InitialInterval,
		RandomizationFactor: c.RandomizationFactor,
		Multiplier:          c.Multiplier,
		MaxInterval:         c.MaxInterval,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	if b.InitialInterval <= 0 {
		b.InitialInterval = backoff.DefaultInitialInterval
	}
	if b.Multiplier < 1 {
		b.Multiplier = backoff.DefaultMultiplier
	}
	if b.MaxInterval <= 0 {
		b.MaxInterval = backoff.DefaultMaxInterval
	}
	b.Reset()
	delay := b.NextBackOff()
	for i := 1; i < attempt; i++ {
		delay = b.NextBackOff()
	}
	return delay
}

type WorkerOption func(*Worker)

func WithRetryPolicy(policy RetryPolicy) WorkerOption {
	return func(w *Worker) {
		w.policy = policy
	}
}

func WithBackoff(cfg BackoffConfig) WorkerOption {
	return func(w *Worker) {
		w.backoff = cfg
	}
}

func WithHook(hook core.JobWorkerHook) WorkerOption {
	return func(w *Worker) {
		w.hook = hook
	}
}

func WithPollInterval(interval time.Duration) WorkerOption {
	return func(w *Worker) {
		if interval > 0 {
			w.pollInterval = interval
		}
	}
}

// WithJobLogger logs settled deliveries through a go-job logger.
func WithJobLogger(logger job.Logger) WorkerOption {
	return func(w *Worker) {
		w.logger = logger
	}
}

func WithWorkerObserver(observer *core.Observer) WorkerOption {
	return func(w *Worker) {
		if observer != nil {
			w.observer = observer
		}
	}
}

// Worker drains queued trigger records into a handler. Failed records are
// nacked with an exponential delay until the retry policy gives up.
type Worker struct {
	dequeuer     core.JobDequeuer
	handler      RecordHandler
	policy       RetryPolicy
	backoff      BackoffConfig
	hook         core.JobWorkerHook
	observer     *core.Observer
	logger       job.Logger
	pollInterval time.Duration

	mu       sync.Mutex
	attempts map[string]int
}

func NewWorker(dequeuer core.JobDequeuer, handler RecordHandler, opts ...WorkerOption) *Worker {
	w := &Worker{
		dequeuer:     dequeuer,
		handler:      handler,
		policy:       RetryPolicy{MaxAttempts: 5, DeadLetterOnMax: true},
		backoff:      DefaultBackoffConfig(),
		observer:     core.NewObserver(nil, nil, ""),
		pollInterval: time.Second,
		attempts:     map[string]int{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w
}

// Run processes deliveries until ctx is done. It waits one poll interval
// after a dequeue error or an empty queue.
func (w *Worker) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		handled, err := w.runOnce(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.observer.Log(ctx, "warn", "gojob: worker step failed", map[string]any{"error": err.Error()})
		}
		if handled && err == nil {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.pollInterval):
		}
	}
}

// RunOnce dequeues and settles a single delivery. Handler failures are
// settled with a nack and do not surface as errors.
func (w *Worker) RunOnce(ctx context.Context) error {
	_, err := w.runOnce(ctx)
	return err
}

func (w *Worker) runOnce(ctx context.Context) (bool, error) {
	if w == nil || w.dequeuer == nil || w.handler == nil {
		return false, errors.New("gojob: worker is not configured")
	}
	delivery, err := w.dequeuer.Dequeue(ctx)
	if err != nil {
		return false, err
	}
	if delivery == nil {
		return false, nil
	}
	msg := delivery.Message()
	key := attemptKey(msg)
	attempt := w.nextAttempt(key, msg)
	event := core.JobWorkerEvent{Message: msg, Attempt: attempt, StartedAt: time.Now()}
	w.notify(ctx, "start", event)

	record, err := RecordFromMessage(msg)
	if err == nil {
		err = w.handler.Emit(ctx, record)
	}
	event.Duration = time.Since(event.StartedAt)
	if err == nil {
		w.forget(key)
		w.notify(ctx, "success", event)
		w.logSettled("gojob: record acked", msg, attempt)
		return true, delivery.Ack(ctx)
	}

	event.Err = err
	opts := core.JobNackOptions{Requeue: true, Reason: err.Error()}
	if w.policy.Exhausted(attempt) {
		w.forget(key)
		w.notify(ctx, "failure", event)
		w.logSettled("gojob: record dead-lettered", msg, attempt)
	} else {
		opts.Delay = w.backoff.Delay(attempt)
		event.Delay = opts.Delay
		w.notify(ctx, "retry", event)
		if msg != nil && msg.Parameters != nil {
			msg.Parameters[ParamAttempt] = attempt
		}
	}
	return true, w.nack(ctx, delivery, opts, attempt)
}

func (w *Worker) nack(ctx context.Context, delivery core.JobDelivery, opts core.JobNackOptions, attempt int) error {
	return delivery.Nack(ctx, w.policy.NormalizeAttempt(opts, attempt))
}

func (w *Worker) logSettled(message string, msg *core.JobExecutionMessage, attempt int) {
	if w.logger == nil {
		return
	}
	w.logger.Info(message, "idempotency_key", attemptKey(msg), "attempt", attempt)
}

func (w *Worker) notify(ctx context.Context, phase string, event core.JobWorkerEvent) {
	if w.hook == nil {
		return
	}
	switch phase {
	case "start":
		w.hook.OnStart(ctx, event)
	case "success":
		w.hook.OnSuccess(ctx, event)
	case "retry":
		w.hook.OnRetry(ctx, event)
	case "failure":
		w.hook.OnFailure(ctx, event)
	}
}

// nextAttempt counts deliveries per key. A requeued message carries its last
// attempt in ParamAttempt, which wins when the worker has seen fewer.
func (w *Worker) nextAttempt(key string, msg *core.JobExecutionMessage) int {
	carried := carriedAttempt(msg)
	if key == "" {
		return carried + 1
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	attempt := max(w.attempts[key], carried) + 1
	w.attempts[key] = attempt
	return attempt
}

func (w *Worker) forget(key string) {
	if key == "" {
		return
	}
	w.mu.Lock()
	delete(w.attempts, key)
	w.mu.Unlock()
}

// attemptKey is the idempotency key, or the job id plus a digest of the
// record for records without a FusionAuth event id.
func attemptKey(msg *core.JobExecutionMessage) string {
	if msg == nil {
		return ""
	}
	if msg.IdempotencyKey != "" {
		return msg.IdempotencyKey
	}
	raw, err := json.Marshal(msg.Parameters[ParamRecord])
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	return msg.JobID + ":" + hex.EncodeToString(sum[:])
}

func carriedAttempt(msg *core.JobExecutionMessage) int {
	if msg == nil {
		return 0
	}
	switch n := msg.Parameters[ParamAttempt].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
