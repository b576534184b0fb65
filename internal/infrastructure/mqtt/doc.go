// Package mqtt provides the broker client for device command delivery.
//
// Unlike a long-lived telemetry client, command delivery here is
// one-shot: each command opens its own connection, publishes once at
// QoS 1, waits for the broker acknowledgment and disconnects. The
// dispatcher above this package absorbs all failures into a degraded
// result; nothing in this package is fatal to a request.
package mqtt
