package gojob

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/goliatone/go-fusionauth/core"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-job/queue/worker"
)

// Backend is a go-job queue that both accepts and hands out executions.
type Backend interface {
	queue.Enqueuer
	queue.Dequeuer
}

// RecordQueue carries trigger records over a go-job backend. Only messages
// built by RecordMessage for its job id are accepted.
type RecordQueue struct {
	backend Backend
	jobID   string
}

func NewRecordQueue(backend Backend, jobID string) *RecordQueue {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		jobID = core.DefaultQueueJobID
	}
	return &RecordQueue{backend: backend, jobID: jobID}
}

// Sink returns an EnqueueSink writing into the queue.
func (q *RecordQueue) Sink() *EnqueueSink {
	return NewEnqueueSink(q, q.jobID)
}

func (q *RecordQueue) Enqueue(ctx context.Context, msg *core.JobExecutionMessage) error {
	if q == nil || q.backend == nil {
		return fmt.Errorf("gojob: queue backend is not configured")
	}
	if msg == nil {
		return fmt.Errorf("gojob: execution message is required")
	}
	if strings.TrimSpace(msg.JobID) != q.jobID {
		return fmt.Errorf("gojob: job %q does not belong to queue %q", msg.JobID, q.jobID)
	}
	if _, err := RecordFromMessage(msg); err != nil {
		return err
	}
	return q.backend.Enqueue(ctx, ToExecutionMessage(msg))
}

// Dequeue returns nil without error when the backend has nothing ready.
func (q *RecordQueue) Dequeue(ctx context.Context) (core.JobDelivery, error) {
	if q == nil || q.backend == nil {
		return nil, fmt.Errorf("gojob: queue backend is not configured")
	}
	delivery, err := q.backend.Dequeue(ctx)
	if err != nil || delivery == nil {
		return nil, err
	}
	return &recordDelivery{delivery: delivery, msg: FromExecutionMessage(delivery.Message())}, nil
}

type recordDelivery struct {
	delivery queue.Delivery
	msg      *core.JobExecutionMessage
}

func (d *recordDelivery) Message() *core.JobExecutionMessage { return d.msg }

func (d *recordDelivery) Ack(ctx context.Context) error { return d.delivery.Ack(ctx) }

func (d *recordDelivery) Nack(ctx context.Context, opts core.JobNackOptions) error {
	return d.delivery.Nack(ctx, queue.NackOptions{
		Delay:      opts.Delay,
		Requeue:    opts.Requeue,
		DeadLetter: opts.DeadLetter,
		Reason:     opts.Reason,
	})
}

// RetryPolicy bounds how often a failed record is requeued.
type RetryPolicy struct {
	MaxAttempts     int
	MaxDelay        time.Duration
	DeadLetterOnMax bool
}

// NormalizeAttempt applies the policy to a nack for the given attempt.
func (p RetryPolicy) NormalizeAttempt(opts core.JobNackOptions, attempt int) core.JobNackOptions {
	out := opts
	out.Reason = strings.TrimSpace(out.Reason)
	out.Delay = max(out.Delay, 0)
	if p.MaxDelay > 0 {
		out.Delay = min(out.Delay, p.MaxDelay)
	}
	if p.Exhausted(attempt) {
		out.Requeue = false
		out.DeadLetter = out.DeadLetter || p.DeadLetterOnMax
	}
	if out.DeadLetter {
		out.Requeue = false
	} else if !out.Requeue {
		out.Requeue = true
	}
	return out
}

// Exhausted reports whether attempt is the last one the policy allows.
func (p RetryPolicy) Exhausted(attempt int) bool {
	return p.MaxAttempts > 0 && attempt >= p.MaxAttempts
}

func ToExecutionMessage(msg *core.JobExecutionMessage) *job.ExecutionMessage {
	if msg == nil {
		return nil
	}
	return &job.ExecutionMessage{
		JobID:          strings.TrimSpace(msg.JobID),
		ScriptPath:     strings.TrimSpace(msg.ScriptPath),
		Parameters:     cloneParams(msg.Parameters),
		IdempotencyKey: strings.TrimSpace(msg.IdempotencyKey),
		DedupPolicy:    job.DeduplicationPolicy(strings.TrimSpace(msg.DedupPolicy)),
	}
}

func FromExecutionMessage(msg *job.ExecutionMessage) *core.JobExecutionMessage {
	if msg == nil {
		return nil
	}
	return &core.JobExecutionMessage{
		JobID:          strings.TrimSpace(msg.JobID),
		ScriptPath:     strings.TrimSpace(msg.ScriptPath),
		Parameters:     cloneParams(msg.Parameters),
		IdempotencyKey: strings.TrimSpace(msg.IdempotencyKey),
		DedupPolicy:    strings.TrimSpace(string(msg.DedupPolicy)),
	}
}

// HookBridge reports go-job worker events to a core hook, so a go-job
// worker draining a RecordQueue shows up like Worker does.
type HookBridge struct {
	hook core.JobWorkerHook
}

func NewHookBridge(hook core.JobWorkerHook) *HookBridge {
	return &HookBridge{hook: hook}
}

func (b *HookBridge) OnStart(ctx context.Context, event worker.Event) {
	if b != nil && b.hook != nil {
		b.hook.OnStart(ctx, workerEvent(event))
	}
}

func (b *HookBridge) OnSuccess(ctx context.Context, event worker.Event) {
	if b != nil && b.hook != nil {
		b.hook.OnSuccess(ctx, workerEvent(event))
	}
}

func (b *HookBridge) OnFailure(ctx context.Context, event worker.Event) {
	if b != nil && b.hook != nil {
		b.hook.OnFailure(ctx, workerEvent(event))
	}
}

func (b *HookBridge) OnRetry(ctx context.Context, event worker.Event) {
	if b != nil && b.hook != nil {
		b.hook.OnRetry(ctx, workerEvent(event))
	}
}

func workerEvent(event worker.Event) core.JobWorkerEvent {
	message := event.Message
	if message == nil && event.Delivery != nil {
		message = event.Delivery.Message()
	}
	return core.JobWorkerEvent{
		Message:   FromExecutionMessage(message),
		Attempt:   event.Attempt,
		Delay:     event.Delay,
		Err:       event.Err,
		StartedAt: event.StartedAt,
		Duration:  event.Duration,
	}
}

func cloneParams(in map[string]any) map[string]any {
	if len(in) == 0 {
		return map[string]any{}
	}
	return maps.Clone(in)
}

var (
	_ core.JobEnqueuer = (*RecordQueue)(nil)
	_ core.JobDequeuer = (*RecordQueue)(nil)
	_ core.JobDelivery = (*recordDelivery)(nil)
	_ worker.Hook      = (*HookBridge)(nil)
)
