package query

import (
	"strings"

	"github.com/goliatone/go-fusionauth/core"
)

const (
	TypeListOperations    = "fusionauth.query.operations.list"
	TypeListEventTypes    = "fusionauth.query.event_types.list"
	TypeListTriggerEvents = "fusionauth.query.trigger_events.list"
	TypeGetTriggerEvent   = "fusionauth.query.trigger_events.get"
)

// ListOperationsMessage lists the catalog, optionally for one resource.
type ListOperationsMessage struct {
	Resource string
}

func (ListOperationsMessage) Type() string { return TypeListOperations }

func (ListOperationsMessage) Validate() error { return nil }

type ListEventTypesMessage struct{}

func (ListEventTypesMessage) Type() string { return TypeListEventTypes }

func (ListEventTypesMessage) Validate() error { return nil }

type ListTriggerEventsMessage struct {
	Filter core.EventFilter
}

func (ListTriggerEventsMessage) Type() string { return TypeListTriggerEvents }

func (m ListTriggerEventsMessage) Validate() error {
	if m.Filter.Limit < 0 {
		return queryValidationError("limit", "limit must be >= 0")
	}
	if m.Filter.Offset < 0 {
		return queryValidationError("offset", "offset must be >= 0")
	}
	return nil
}

type GetTriggerEventMessage struct {
	ID string
}

func (GetTriggerEventMessage) Type() string { return TypeGetTriggerEvent }

func (m GetTriggerEventMessage) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return queryValidationError("id", "event id is required")
	}
	return nil
}
