package operations

import (
	"context"
	"sort"
)

const (
	ResourceUser             = "user"
	ResourceApplication      = "application"
	ResourceTenant           = "tenant"
	ResourceGroup            = "group"
	ResourceRegistration     = "registration"
	ResourceIdentityProvider = "identityProvider"
	ResourceConsent          = "consent"
	ResourceForm             = "form"
	ResourceFormField        = "formField"
	ResourceLambda           = "lambda"
	ResourceWebhook          = "webhook"
	ResourceAuditLog         = "auditLog"
)

type handler func(ctx context.Context, c call) (any, error)

// Operation describes one resource operation. Path is a template; optional
// segments are documented in Description.
type Operation struct {
	Name        string   `json:"name"`
	Method      string   `json:"method"`
	Path        string   `json:"path"`
	Required    []string `json:"required,omitempty"`
	Description string   `json:"description,omitempty"`

	run handler
}

type Resource struct {
	Name       string      `json:"name"`
	Operations []Operation `json:"operations"`
}

// Catalog lists every resource and its operations in a stable order.
func Catalog() []Resource {
	return []Resource{
		{Name: ResourceUser, Operations: userOperations()},
		{Name: ResourceApplication, Operations: applicationOperations()},
		{Name: ResourceTenant, Operations: tenantOperations()},
		{Name: ResourceGroup, Operations: groupOperations()},
		{Name: ResourceRegistration, Operations: registrationOperations()},
		{Name: ResourceIdentityProvider, Operations: identityProviderOperations()},
		{Name: ResourceConsent, Operations: consentOperations()},
		{Name: ResourceForm, Operations: formOperations()},
		{Name: ResourceFormField, Operations: formFieldOperations()},
		{Name: ResourceLambda, Operations: lambdaOperations()},
		{Name: ResourceWebhook, Operations: webhookOperations()},
		{Name: ResourceAuditLog, Operations: auditLogOperations()},
	}
}

// Resources returns the sorted resource names.
func Resources() []string {
	catalog := Catalog()
	names := make([]string, 0, len(catalog))
	for _, resource := range catalog {
		names = append(names, resource.Name)
	}
	sort.Strings(names)
	return names
}

// Find returns the descriptor for resource/operation.
func Find(resource, operation string) (Operation, bool) {
	ops, ok := index(Catalog())[resource]
	if !ok {
		return Operation{}, false
	}
	op, ok := ops[operation]
	return op, ok
}

func index(catalog []Resource) map[string]map[string]Operation {
	out := make(map[string]map[string]Operation, len(catalog))
	for _, resource := range catalog {
		ops := make(map[string]Operation, len(resource.Operations))
		for _, op := range resource.Operations {
			ops[op.Name] = op
		}
		out[resource.Name] = ops
	}
	return out
}
