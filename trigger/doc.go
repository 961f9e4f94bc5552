// Package trigger receives FusionAuth webhook deliveries.
//
// A delivery is verified against the optional signing secret, filtered by
// event type, deduplicated by event id and emitted as a core.Record to a
// Sink. Every outcome can be written to a core.EventRecorder.
package trigger
