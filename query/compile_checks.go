package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-fusionauth/core"
	"github.com/goliatone/go-fusionauth/operations"
)

var (
	_ gocmd.Querier[ListOperationsMessage, []operations.Resource] = (*ListOperationsQuery)(nil)
	_ gocmd.Querier[ListEventTypesMessage, []core.Event]          = (*ListEventTypesQuery)(nil)
	_ gocmd.Querier[ListTriggerEventsMessage, core.EventPage]     = (*ListTriggerEventsQuery)(nil)
	_ gocmd.Querier[GetTriggerEventMessage, core.EventRecord]     = (*GetTriggerEventQuery)(nil)
)
