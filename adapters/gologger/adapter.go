package gologger

import (
	job "github.com/goliatone/go-job"
	glog "github.com/goliatone/go-logger/glog"
)

// Logger names handed to a provider, one per component.
const (
	ComponentService = "fusionauth"
	ComponentClient  = "fusionauth.client"
	ComponentTrigger = "fusionauth.trigger"
	ComponentWorker  = "fusionauth.worker"
)

// ForComponent returns the provider's logger for component, falling back to
// logger and then to a nop logger.
func ForComponent(component string, provider glog.LoggerProvider, logger glog.Logger) glog.Logger {
	_, resolved := glog.Resolve(component, provider, logger)
	return resolved
}

// JobLogger bridges the worker component logger into go-job.
func JobLogger(provider glog.LoggerProvider, logger glog.Logger) job.Logger {
	resolved := ForComponent(ComponentWorker, provider, logger)
	if resolved == nil {
		return nil
	}
	return job.GoLogger(resolved)
}

// JobProvider exposes provider to go-job queue backends.
func JobProvider(provider glog.LoggerProvider) job.LoggerProvider {
	if provider == nil {
		return nil
	}
	return job.GoLoggerProvider(provider)
}
