package sqlstore

import "github.com/goliatone/go-fusionauth/core"

var (
	_ core.EventRecorder = (*TriggerEventStore)(nil)
	_ core.EventReader   = (*TriggerEventStore)(nil)
	_ core.ClaimStore    = (*ClaimStore)(nil)
)
