package adapters_test

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-fusionauth/adapters/gocommand"
	"github.com/goliatone/go-fusionauth/adapters/gojob"
	"github.com/goliatone/go-fusionauth/adapters/gologger"
	facommand "github.com/goliatone/go-fusionauth/command"
	"github.com/goliatone/go-fusionauth/core"
	"github.com/goliatone/go-fusionauth/trigger"
	job "github.com/goliatone/go-job"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
)

func TestRuntimeCompatibility_TriggerThroughCommandQueueAndWorker(t *testing.T) {
	ctx := context.Background()

	var logs bytes.Buffer
	logger := gologger.NewCharmLogger(&logs, gologger.CharmOptions{Level: "debug"})
	observer := core.NewObserver(logger, nil, "fusionauth")

	queue := &compatQueue{}
	trg, err := trigger.New(trigger.Config{Events: []string{"user.create"}},
		trigger.WithSink(gojob.NewEnqueueSink(queue, "")),
		trigger.WithClaimStore(trigger.NewMemoryClaimStore()),
		trigger.WithObserver(observer),
	)
	if err != nil {
		t.Fatalf("new trigger: %v", err)
	}

	queueRegistry := jobqueuecommand.NewRegistry()
	adapter := gocommand.NewRegistryAdapter(gocmd.NewRegistry())
	if err := adapter.AddQueueResolver("queue", queueRegistry); err != nil {
		t.Fatalf("add queue resolver: %v", err)
	}
	bindings, err := gocommand.Register(adapter, gocommand.Dependencies{Trigger: trg})
	if err != nil {
		t.Fatalf("register bindings: %v", err)
	}
	defer bindings.Close()
	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize registry: %v", err)
	}
	if _, ok := queueRegistry.Get(facommand.TypeHandleTriggerDelivery); !ok {
		t.Fatalf("expected trigger command mirrored into the queue registry")
	}

	body := []byte(`{"event":{"type":"user.create","id":"evt-100","user":{"email":"a@example.com"}}}`)
	for i := 0; i < 2; i++ {
		res, err := gocommand.DispatchWithResult[facommand.HandleTriggerDeliveryMessage, trigger.Response](ctx,
			facommand.HandleTriggerDeliveryMessage{Request: trigger.Request{Body: body}})
		if err != nil {
			t.Fatalf("dispatch delivery %d: %v", i+1, err)
		}
		if res.StatusCode != http.StatusOK {
			t.Fatalf("delivery %d: unexpected status %d", i+1, res.StatusCode)
		}
	}
	if len(queue.messages) != 1 {
		t.Fatalf("expected duplicate delivery to be dropped before the queue, got %d", len(queue.messages))
	}
	if queue.messages[0].JobID != core.DefaultQueueJobID {
		t.Fatalf("unexpected job id %q", queue.messages[0].JobID)
	}
	if mapped := gojob.ToExecutionMessage(queue.messages[0]); mapped.DedupPolicy != job.DeduplicationPolicy("drop") {
		t.Fatalf("expected go-job dedup policy mapping, got %q", mapped.DedupPolicy)
	}

	records := make(trigger.ChannelSink, 1)
	provider := gologger.NewCharmProvider(logger)
	worker := gojob.NewWorker(queue, records,
		gojob.WithWorkerObserver(observer),
		gojob.WithJobLogger(gologger.JobLogger(provider, nil)),
	)
	if err := worker.RunOnce(ctx); err != nil {
		t.Fatalf("worker run once: %v", err)
	}
	record := <-records
	if record.JSON["eventType"] != "user.create" || record.JSON["eventId"] != "evt-100" {
		t.Fatalf("unexpected drained record %#v", record.JSON)
	}
	if !strings.Contains(logs.String(), "trigger") {
		t.Fatalf("expected trigger observations in the charm log, got %q", logs.String())
	}
	if !strings.Contains(logs.String(), "gojob: record acked") {
		t.Fatalf("expected worker settlement in the charm log, got %q", logs.String())
	}
}

type compatQueue struct {
	messages []*core.JobExecutionMessage
}

func (q *compatQueue) Enqueue(_ context.Context, msg *core.JobExecutionMessage) error {
	q.messages = append(q.messages, msg)
	return nil
}

func (q *compatQueue) Dequeue(context.Context) (core.JobDelivery, error) {
	if len(q.messages) == 0 {
		return nil, context.DeadlineExceeded
	}
	msg := q.messages[0]
	q.messages = q.messages[1:]
	return &compatDelivery{msg: msg}, nil
}

type compatDelivery struct {
	msg *core.JobExecutionMessage
}

func (d *compatDelivery) Message() *core.JobExecutionMessage { return d.msg }

func (d *compatDelivery) Ack(context.Context) error { return nil }

func (d *compatDelivery) Nack(context.Context, core.JobNackOptions) error { return nil }
