package trigger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-fusionauth/core"
)

const (
	MessageAccepted         = "Event received"
	MessageInvalidSignature = "Invalid signature"
	MessageInvalidBody      = "Invalid JSON body"
	MessageMissingEventType = "Missing event type"
	MessageEventIgnored     = "Event ignored"
	MessageDuplicate        = "Event already processed"
	MessageInternal         = "Internal error"
)

const dedupeKeyPrefix = "fusionauth:event:"

type Config struct {
	Events           []string
	SignatureSecret  string
	IncludeAllEvents bool
	// DedupeTTL bounds how long a processed event id is remembered.
	DedupeTTL time.Duration
}

func ConfigFromCore(cfg core.TriggerConfig) Config {
	return Config{
		Events:           append([]string(nil), cfg.Events...),
		SignatureSecret:  cfg.SignatureSecret,
		IncludeAllEvents: cfg.IncludeAllEvents,
		DedupeTTL:        cfg.DedupeTTL,
	}
}

// Request is one webhook delivery. Body must be the raw bytes FusionAuth
// sent; the signature is computed over them.
type Request struct {
	Headers map[string]string
	Body    []byte
}

type Response struct {
	StatusCode int              `json:"statusCode"`
	Body       string           `json:"body"`
	Status     core.EventStatus `json:"status"`
	EventType  string           `json:"eventType,omitempty"`
	EventID    string           `json:"eventId,omitempty"`
	TenantID   string           `json:"tenantId,omitempty"`
	Record     *core.Record     `json:"record,omitempty"`

	payload map[string]any
}

type Trigger struct {
	config   Config
	events   map[string]struct{}
	verifier SignatureVerifier
	claims   core.ClaimStore
	sink     Sink
	recorder core.EventRecorder
	observer *core.Observer
	now      func() time.Time
}

type Option func(*Trigger)

func WithClaimStore(store core.ClaimStore) Option {
	return func(t *Trigger) {
		t.claims = store
	}
}

func WithSink(sink Sink) Option {
	return func(t *Trigger) {
		if sink != nil {
			t.sink = sink
		}
	}
}

func WithRecorder(recorder core.EventRecorder) Option {
	return func(t *Trigger) {
		t.recorder = recorder
	}
}

func WithObserver(observer *core.Observer) Option {
	return func(t *Trigger) {
		if observer != nil {
			t.observer = observer
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(t *Trigger) {
		if now != nil {
			t.now = now
		}
	}
}

func New(cfg Config, opts ...Option) (*Trigger, error) {
	events := map[string]struct{}{}
	for _, eventType := range cfg.Events {
		if eventType = strings.TrimSpace(eventType); eventType != "" {
			events[eventType] = struct{}{}
		}
	}
	if len(events) == 0 && !cfg.IncludeAllEvents {
		return nil, triggerBadInput("trigger: select at least one event or enable include_all_events", nil)
	}
	if cfg.DedupeTTL <= 0 {
		cfg.DedupeTTL = core.DefaultDedupeTTL
	}
	t := &Trigger{
		config:   cfg,
		events:   events,
		verifier: NewSignatureVerifier(cfg.SignatureSecret),
		sink:     discardSink{},
		observer: core.NewObserver(nil, nil, ""),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t, nil
}

// CheckExists, Create and Delete are the webhook lifecycle hooks. Webhooks
// are registered in FusionAuth itself, so there is nothing to provision.
func (t *Trigger) CheckExists(context.Context) (bool, error) { return true, nil }

func (t *Trigger) Create(context.Context) (bool, error) { return true, nil }

func (t *Trigger) Delete(context.Context) (bool, error) { return true, nil }

// Selected reports whether eventType would be emitted.
func (t *Trigger) Selected(eventType string) bool {
	if t == nil {
		return false
	}
	if t.config.IncludeAllEvents {
		return true
	}
	_, ok := t.events[strings.TrimSpace(eventType)]
	return ok
}

// Handle validates a delivery and emits it to the sink. Rejections are
// reported through Response; the error is set only when the delivery could
// not be processed and FusionAuth should retry it.
func (t *Trigger) Handle(ctx context.Context, req Request) (Response, error) {
	if t == nil {
		return Response{StatusCode: http.StatusInternalServerError, Body: MessageInternal, Status: core.EventStatusFailed},
			triggerInternal("trigger: trigger is nil", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	startedAt := time.Now()
	receivedAt := t.now()

	res, err := t.handle(ctx, req)
	t.record(ctx, res, err, receivedAt)
	t.observer.ObserveOperation(ctx, startedAt, "trigger", err, map[string]any{
		"event_kind":  string(res.Status),
		"event_type":  res.EventType,
		"event_id":    res.EventID,
		"status_code": res.StatusCode,
	})
	return res, err
}

func (t *Trigger) handle(ctx context.Context, req Request) (Response, error) {
	if !t.verifier.Verify(req.Headers, req.Body) {
		return reject(http.StatusUnauthorized, MessageInvalidSignature), nil
	}

	var body map[string]any
	if err := json.Unmarshal(req.Body, &body); err != nil || body == nil {
		return reject(http.StatusBadRequest, MessageInvalidBody), nil
	}
	event, _ := body["event"].(map[string]any)
	eventType := stringValue(event["type"])
	if eventType == "" {
		return reject(http.StatusBadRequest, MessageMissingEventType), nil
	}

	res := Response{
		EventType: eventType,
		EventID:   stringValue(event["id"]),
		TenantID:  stringValue(event["tenantId"]),
		payload:   body,
	}
	if !t.Selected(eventType) {
		res.StatusCode = http.StatusOK
		res.Body = MessageEventIgnored
		res.Status = core.EventStatusIgnored
		return res, nil
	}

	claimID := ""
	if t.claims != nil && res.EventID != "" {
		id, accepted, err := t.claims.Claim(ctx, dedupeKeyPrefix+res.EventID, t.config.DedupeTTL)
		if err != nil {
			return failed(res), triggerWrapError(err, goerrors.CategoryOperation, "trigger: dedupe claim failed",
				http.StatusInternalServerError, core.ErrorOperationFailed, map[string]any{"event_id": res.EventID})
		}
		if !accepted {
			res.StatusCode = http.StatusOK
			res.Body = MessageDuplicate
			res.Status = core.EventStatusDuplicate
			return res, nil
		}
		claimID = id
	}

	payload := eventPayload(event, body)
	record := core.Record{JSON: payload}
	res.payload = payload
	if err := t.sink.Emit(ctx, record); err != nil {
		if claimID != "" {
			if failErr := t.claims.Fail(ctx, claimID, err, time.Time{}); failErr != nil {
				t.observer.Log(ctx, "warn", "trigger: release dedupe claim failed", map[string]any{
					"event_id": res.EventID,
					"error":    core.ErrorMessage(failErr),
				})
			}
		}
		return failed(res), triggerWrapError(err, goerrors.CategoryOperation, "trigger: emit event failed",
			http.StatusInternalServerError, core.ErrorOperationFailed,
			map[string]any{"event_id": res.EventID, "event_type": eventType})
	}
	if claimID != "" {
		if err := t.claims.Complete(ctx, claimID); err != nil {
			t.observer.Log(ctx, "warn", "trigger: complete dedupe claim failed", map[string]any{
				"event_id": res.EventID,
				"error":    core.ErrorMessage(err),
			})
		}
	}

	res.StatusCode = http.StatusOK
	res.Body = MessageAccepted
	res.Status = core.EventStatusEmitted
	res.Record = &record
	return res, nil
}

// eventPayload flattens the event header fields next to the body. Body keys
// win on collision.
func eventPayload(event, body map[string]any) map[string]any {
	payload := make(map[string]any, len(body)+4)
	payload["eventType"] = event["type"]
	for key, source := range map[string]string{
		"eventId":   "id",
		"eventTime": "createInstant",
		"tenantId":  "tenantId",
	} {
		if value, ok := event[source]; ok && value != nil {
			payload[key] = value
		}
	}
	for key, value := range body {
		payload[key] = value
	}
	return payload
}

func (t *Trigger) record(ctx context.Context, res Response, handleErr error, receivedAt time.Time) {
	if t.recorder == nil {
		return
	}
	entry := core.EventRecord{
		ID:         core.GenerateUUID(),
		EventID:    res.EventID,
		EventType:  res.EventType,
		TenantID:   res.TenantID,
		Status:     res.Status,
		StatusCode: res.StatusCode,
		Payload:    res.payload,
		ReceivedAt: receivedAt,
	}
	if handleErr != nil {
		entry.Error = core.ErrorMessage(handleErr)
	} else if res.Status == core.EventStatusRejected {
		entry.Error = res.Body
	}
	if err := t.recorder.RecordEvent(ctx, entry); err != nil {
		t.observer.Log(ctx, "warn", "trigger: record event failed", map[string]any{
			"event_id": res.EventID,
			"error":    core.ErrorMessage(err),
		})
	}
}

func reject(status int, message string) Response {
	return Response{StatusCode: status, Body: message, Status: core.EventStatusRejected}
}

func failed(res Response) Response {
	res.StatusCode = http.StatusInternalServerError
	res.Body = MessageInternal
	res.Status = core.EventStatusFailed
	return res
}

func stringValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(typed)
	default:
		return strings.TrimSpace(fmt.Sprint(typed))
	}
}
