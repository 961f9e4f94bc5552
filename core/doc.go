// Package core contains the FusionAuth configuration, credential, error and
// helper contracts shared by the client, operation executor and trigger.
// It must not depend on transport or storage adapters.
package core
