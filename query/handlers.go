package query

import (
	"context"
	"strings"

	"github.com/goliatone/go-fusionauth/core"
	"github.com/goliatone/go-fusionauth/operations"
)

type ListOperationsQuery struct {
	catalog func() []operations.Resource
}

func NewListOperationsQuery() *ListOperationsQuery {
	return &ListOperationsQuery{catalog: operations.Catalog}
}

func (q *ListOperationsQuery) Query(_ context.Context, msg ListOperationsMessage) ([]operations.Resource, error) {
	if q == nil || q.catalog == nil {
		return nil, queryDependencyError("query: operation catalog is required")
	}
	catalog := q.catalog()
	resource := strings.TrimSpace(msg.Resource)
	if resource == "" {
		return catalog, nil
	}
	for _, entry := range catalog {
		if entry.Name == resource {
			return []operations.Resource{entry}, nil
		}
	}
	return nil, core.NewUnsupportedOperationError(resource, "")
}

type ListEventTypesQuery struct{}

func NewListEventTypesQuery() *ListEventTypesQuery {
	return &ListEventTypesQuery{}
}

func (*ListEventTypesQuery) Query(context.Context, ListEventTypesMessage) ([]core.Event, error) {
	return core.FusionAuthEvents(), nil
}

type ListTriggerEventsQuery struct {
	reader core.EventReader
}

func NewListTriggerEventsQuery(reader core.EventReader) *ListTriggerEventsQuery {
	return &ListTriggerEventsQuery{reader: reader}
}

func (q *ListTriggerEventsQuery) Query(ctx context.Context, msg ListTriggerEventsMessage) (core.EventPage, error) {
	if q == nil || q.reader == nil {
		return core.EventPage{}, queryDependencyError("query: trigger event reader is required")
	}
	return q.reader.ListEvents(ctx, msg.Filter)
}

type GetTriggerEventQuery struct {
	reader core.EventReader
}

func NewGetTriggerEventQuery(reader core.EventReader) *GetTriggerEventQuery {
	return &GetTriggerEventQuery{reader: reader}
}

func (q *GetTriggerEventQuery) Query(ctx context.Context, msg GetTriggerEventMessage) (core.EventRecord, error) {
	if q == nil || q.reader == nil {
		return core.EventRecord{}, queryDependencyError("query: trigger event reader is required")
	}
	return q.reader.GetEvent(ctx, strings.TrimSpace(msg.ID))
}
