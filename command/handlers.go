package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-fusionauth/core"
	"github.com/goliatone/go-fusionauth/operations"
	"github.com/goliatone/go-fusionauth/trigger"
)

type OperationExecutor interface {
	Execute(ctx context.Context, req operations.ExecuteRequest) (operations.ExecuteResult, error)
}

type CredentialTester interface {
	TestCredentials(ctx context.Context) error
}

type DeliveryHandler interface {
	Handle(ctx context.Context, req trigger.Request) (trigger.Response, error)
}

type ExecuteOperationCommand struct {
	executor OperationExecutor
}

func NewExecuteOperationCommand(executor OperationExecutor) *ExecuteOperationCommand {
	return &ExecuteOperationCommand{executor: executor}
}

func (c *ExecuteOperationCommand) Execute(ctx context.Context, msg ExecuteOperationMessage) error {
	if c == nil || c.executor == nil {
		return commandDependencyError("command: operation executor is required")
	}
	out, err := c.executor.Execute(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

// TestCredentialsCommand reports credential problems as a CredentialStatus
// rather than an error.
type TestCredentialsCommand struct {
	tester CredentialTester
}

func NewTestCredentialsCommand(tester CredentialTester) *TestCredentialsCommand {
	return &TestCredentialsCommand{tester: tester}
}

func (c *TestCredentialsCommand) Execute(ctx context.Context, _ TestCredentialsMessage) error {
	if c == nil || c.tester == nil {
		return commandDependencyError("command: credential tester is required")
	}
	status := CredentialStatus{Status: CredentialStatusOK, Message: "Authentication successful"}
	if err := c.tester.TestCredentials(ctx); err != nil {
		status = CredentialStatus{Status: CredentialStatusError, Message: core.ErrorMessage(err)}
	}
	storeResult(ctx, status)
	return nil
}

type HandleTriggerDeliveryCommand struct {
	handler DeliveryHandler
}

func NewHandleTriggerDeliveryCommand(handler DeliveryHandler) *HandleTriggerDeliveryCommand {
	return &HandleTriggerDeliveryCommand{handler: handler}
}

func (c *HandleTriggerDeliveryCommand) Execute(ctx context.Context, msg HandleTriggerDeliveryMessage) error {
	if c == nil || c.handler == nil {
		return commandDependencyError("command: trigger handler is required")
	}
	out, err := c.handler.Handle(ctx, msg.Request)
	storeResult(ctx, out)
	return err
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
