package gojob

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-fusionauth/core"
)

const (
	// ParamRecord holds the emitted record JSON inside the job parameters.
	ParamRecord = "record"
	// ParamEventType duplicates the event type for queue side filtering.
	ParamEventType = "event_type"
	// ParamAttempt is the last failed attempt, written before a requeue.
	ParamAttempt = "attempt"

	dedupPolicyDrop = "drop"
)

// EnqueueSink hands emitted trigger records to a job queue instead of
// processing them inline. It satisfies trigger.Sink.
type EnqueueSink struct {
	enqueuer core.JobEnqueuer
	jobID    string
}

func NewEnqueueSink(enqueuer core.JobEnqueuer, jobID string) *EnqueueSink {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		jobID = core.DefaultQueueJobID
	}
	return &EnqueueSink{enqueuer: enqueuer, jobID: jobID}
}

func (s *EnqueueSink) Emit(ctx context.Context, record core.Record) error {
	if s == nil || s.enqueuer == nil {
		return fmt.Errorf("gojob: enqueuer is not configured")
	}
	return s.enqueuer.Enqueue(ctx, RecordMessage(s.jobID, record))
}

// RecordMessage wraps a trigger record in a job message. The FusionAuth
// event id, when present, becomes the idempotency key.
func RecordMessage(jobID string, record core.Record) *core.JobExecutionMessage {
	eventID := strings.TrimSpace(fmt.Sprint(valueOr(record.JSON["eventId"], "")))
	eventType := strings.TrimSpace(fmt.Sprint(valueOr(record.JSON["eventType"], "")))
	msg := &core.JobExecutionMessage{
		JobID:      jobID,
		ScriptPath: jobID,
		Parameters: map[string]any{
			ParamRecord:    cloneParams(record.JSON),
			ParamEventType: eventType,
		},
	}
	if eventID != "" {
		msg.IdempotencyKey = "fusionauth:event:" + eventID
		msg.DedupPolicy = dedupPolicyDrop
	}
	return msg
}

// RecordFromMessage reverses RecordMessage.
func RecordFromMessage(msg *core.JobExecutionMessage) (core.Record, error) {
	if msg == nil {
		return core.Record{}, fmt.Errorf("gojob: execution message is required")
	}
	payload, ok := msg.Parameters[ParamRecord].(map[string]any)
	if !ok {
		return core.Record{}, fmt.Errorf("gojob: job %q carries no trigger record", msg.JobID)
	}
	return core.Record{JSON: cloneParams(payload)}, nil
}

func valueOr(value any, fallback any) any {
	if value == nil {
		return fallback
	}
	return value
}
