package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[ExecuteOperationMessage]      = (*ExecuteOperationCommand)(nil)
	_ gocmd.Commander[TestCredentialsMessage]       = (*TestCredentialsCommand)(nil)
	_ gocmd.Commander[HandleTriggerDeliveryMessage] = (*HandleTriggerDeliveryCommand)(nil)
)
