package command

import (
	"strings"

	"github.com/goliatone/go-fusionauth/operations"
	"github.com/goliatone/go-fusionauth/trigger"
)

const (
	TypeExecuteOperation      = "fusionauth.command.operation.execute"
	TypeTestCredentials       = "fusionauth.command.credentials.test"
	TypeHandleTriggerDelivery = "fusionauth.command.trigger.deliver"
)

type ExecuteOperationMessage struct {
	Request operations.ExecuteRequest
}

func (ExecuteOperationMessage) Type() string { return TypeExecuteOperation }

func (m ExecuteOperationMessage) Validate() error {
	if strings.TrimSpace(m.Request.Resource) == "" {
		return commandValidationError("resource", "resource is required")
	}
	if strings.TrimSpace(m.Request.Operation) == "" {
		return commandValidationError("operation", "operation is required")
	}
	return nil
}

type TestCredentialsMessage struct{}

func (TestCredentialsMessage) Type() string { return TypeTestCredentials }

func (TestCredentialsMessage) Validate() error { return nil }

type HandleTriggerDeliveryMessage struct {
	Request trigger.Request
}

func (HandleTriggerDeliveryMessage) Type() string { return TypeHandleTriggerDelivery }

func (m HandleTriggerDeliveryMessage) Validate() error {
	if len(m.Request.Body) == 0 {
		return commandValidationError("body", "delivery body is required")
	}
	return nil
}

// CredentialStatus mirrors the credential check shown to operators.
type CredentialStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

const (
	CredentialStatusOK    = "OK"
	CredentialStatusError = "Error"
)
