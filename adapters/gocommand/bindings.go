package gocommand

import (
	"fmt"

	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	facommand "github.com/goliatone/go-fusionauth/command"
	"github.com/goliatone/go-fusionauth/core"
	faquery "github.com/goliatone/go-fusionauth/query"
)

// Dependencies are the runtime services behind the FusionAuth commands and
// queries. Nil members skip the handlers that need them.
type Dependencies struct {
	Executor    facommand.OperationExecutor
	Credentials facommand.CredentialTester
	Trigger     facommand.DeliveryHandler
	Events      core.EventReader
}

// Bindings holds the dispatcher subscriptions created by Register.
type Bindings struct {
	subscriptions []commanddispatcher.Subscription
}

func (b *Bindings) Len() int {
	if b == nil {
		return 0
	}
	return len(b.subscriptions)
}

func (b *Bindings) Close() {
	if b == nil {
		return
	}
	for _, subscription := range b.subscriptions {
		if subscription != nil {
			subscription.Unsubscribe()
		}
	}
	b.subscriptions = nil
}

// Register subscribes every FusionAuth command and query on the global
// dispatcher and records them in the adapter registry. The catalog queries
// are always available.
func Register(adapter *RegistryAdapter, deps Dependencies, runnerOpts ...runner.Option) (*Bindings, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	bindings := &Bindings{}
	add := func(subscription commanddispatcher.Subscription, err error) error {
		if err != nil {
			bindings.Close()
			return err
		}
		bindings.subscriptions = append(bindings.subscriptions, subscription)
		return nil
	}

	if err := add(RegisterAndSubscribeQuery(adapter, faquery.NewListOperationsQuery(), runnerOpts...)); err != nil {
		return nil, err
	}
	if err := add(RegisterAndSubscribeQuery(adapter, faquery.NewListEventTypesQuery(), runnerOpts...)); err != nil {
		return nil, err
	}
	if deps.Executor != nil {
		if err := add(RegisterAndSubscribe(adapter, facommand.NewExecuteOperationCommand(deps.Executor), runnerOpts...)); err != nil {
			return nil, err
		}
	}
	if deps.Credentials != nil {
		if err := add(RegisterAndSubscribe(adapter, facommand.NewTestCredentialsCommand(deps.Credentials), runnerOpts...)); err != nil {
			return nil, err
		}
	}
	if deps.Trigger != nil {
		if err := add(RegisterAndSubscribe(adapter, facommand.NewHandleTriggerDeliveryCommand(deps.Trigger), runnerOpts...)); err != nil {
			return nil, err
		}
	}
	if deps.Events != nil {
		if err := add(RegisterAndSubscribeQuery(adapter, faquery.NewListTriggerEventsQuery(deps.Events), runnerOpts...)); err != nil {
			return nil, err
		}
		if err := add(RegisterAndSubscribeQuery(adapter, faquery.NewGetTriggerEventQuery(deps.Events), runnerOpts...)); err != nil {
			return nil, err
		}
	}
	return bindings, nil
}
