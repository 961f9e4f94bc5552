package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type TransportRequest struct {
	Method               string
	URL                  string
	Headers              map[string]string
	Query                map[string]string
	Body                 []byte
	Metadata             map[string]any
	Timeout              time.Duration
	MaxResponseBodyBytes int64
}

type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

type TransportAdapter interface {
	Kind() string
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}

// Record is one output item. PairedItem is the index of the input item that
// produced it.
type Record struct {
	JSON       map[string]any `json:"json"`
	PairedItem int            `json:"pairedItem"`
}

// ClaimStore provides claim/complete/fail idempotency for inbound deliveries.
type ClaimStore interface {
	Claim(ctx context.Context, key string, lease time.Duration) (claimID string, accepted bool, err error)
	Complete(ctx context.Context, claimID string) error
	Fail(ctx context.Context, claimID string, cause error, retryAt time.Time) error
}

type EventStatus string

const (
	EventStatusEmitted   EventStatus = "emitted"
	EventStatusIgnored   EventStatus = "ignored"
	EventStatusRejected  EventStatus = "rejected"
	EventStatusDuplicate EventStatus = "duplicate"
	EventStatusFailed    EventStatus = "failed"
)

// EventRecord is the ledger entry written for each trigger delivery.
type EventRecord struct {
	ID         string         `json:"id"`
	EventID    string         `json:"eventId,omitempty"`
	EventType  string         `json:"eventType,omitempty"`
	TenantID   string         `json:"tenantId,omitempty"`
	Status     EventStatus    `json:"status"`
	StatusCode int            `json:"statusCode"`
	Payload    map[string]any `json:"payload,omitempty"`
	Error      string         `json:"error,omitempty"`
	ReceivedAt time.Time      `json:"receivedAt"`
}

type EventFilter struct {
	EventType string
	TenantID  string
	Status    EventStatus
	Since     *time.Time
	Limit     int
	Offset    int
}

type EventPage struct {
	Items []EventRecord `json:"items"`
	Total int           `json:"total"`
}

type EventRecorder interface {
	RecordEvent(ctx context.Context, record EventRecord) error
}

type EventReader interface {
	GetEvent(ctx context.Context, id string) (EventRecord, error)
	ListEvents(ctx context.Context, filter EventFilter) (EventPage, error)
}

type JobExecutionMessage struct {
	JobID          string
	ScriptPath     string
	Parameters     map[string]any
	IdempotencyKey string
	DedupPolicy    string
}

type JobNackOptions struct {
	Delay      time.Duration
	Requeue    bool
	DeadLetter bool
	Reason     string
}

type JobEnqueuer interface {
	Enqueue(ctx context.Context, msg *JobExecutionMessage) error
}

type JobDelivery interface {
	Message() *JobExecutionMessage
	Ack(ctx context.Context) error
	Nack(ctx context.Context, opts JobNackOptions) error
}

type JobDequeuer interface {
	Dequeue(ctx context.Context) (JobDelivery, error)
}

type JobWorkerHook interface {
	OnStart(ctx context.Context, event JobWorkerEvent)
	OnSuccess(ctx context.Context, event JobWorkerEvent)
	OnFailure(ctx context.Context, event JobWorkerEvent)
	OnRetry(ctx context.Context, event JobWorkerEvent)
}

type JobWorkerEvent struct {
	Message   *JobExecutionMessage
	Attempt   int
	Delay     time.Duration
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}
