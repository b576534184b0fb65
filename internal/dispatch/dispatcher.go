package dispatch

import (
	"context"
	"strings"

	"github.com/dudumsantos1976-design/power-lift-control/internal/metrics"
	"github.com/dudumsantos1976-design/power-lift-control/internal/settings"
)

// Action is a device command direction.
type Action string

const (
	// ActionActivate powers the device on when a session starts.
	ActionActivate Action = "activate"

	// ActionDeactivate powers the device off when a session ends.
	ActionDeactivate Action = "deactivate"
)

// Payload returns the wire payload the device firmware expects.
func (a Action) Payload() []byte {
	if a == ActionActivate {
		return []byte("ON")
	}
	return []byte("OFF")
}

// Result reports the outcome of one command dispatch. A command that
// could not be delivered is degraded, never an error: the state change
// that triggered it has already been committed and stands regardless.
type Result struct {
	Delivered bool   `json:"delivered"`
	Reason    string `json:"reason,omitempty"`
}

// delivered is the success Result.
func delivered() Result {
	return Result{Delivered: true}
}

// degraded builds a failure Result with a human-readable reason.
func degraded(reason string) Result {
	return Result{Delivered: false, Reason: reason}
}

// BrokerConfigSource resolves the broker configuration at dispatch
// time, so a settings change applies to the next command without a
// restart.
type BrokerConfigSource interface {
	BrokerConfig(ctx context.Context) (settings.BrokerConfig, error)
}

// Publisher delivers a single payload to a topic on the configured
// broker.
type Publisher interface {
	Publish(ctx context.Context, cfg settings.BrokerConfig, topic string, payload []byte) error
}

// Logger is the logging surface the dispatcher needs.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Dispatcher sends power commands to equipment-mounted devices.
//
// Dispatch is best effort: every failure mode short of a programming
// error is folded into a degraded Result so callers can report it
// without unwinding the state change that triggered the command.
type Dispatcher struct {
	source    BrokerConfigSource
	publisher Publisher
	logger    Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(source BrokerConfigSource, publisher Publisher, logger Logger) *Dispatcher {
	return &Dispatcher{
		source:    source,
		publisher: publisher,
		logger:    logger,
	}
}

// Notify dispatches action to the device identified by deviceID and
// reports whether the broker acknowledged it.
//
// An equipment record with no device id is not an error: the unit
// simply has no controllable relay, and the result says so.
func (d *Dispatcher) Notify(ctx context.Context, deviceID string, action Action) Result {
	cfg, err := d.source.BrokerConfig(ctx)
	if err != nil {
		return d.record(action, "", degraded("broker settings unavailable: "+err.Error()))
	}

	if reason := validateTarget(cfg.TopicPrefix, deviceID); reason != "" {
		return d.record(action, "", degraded(reason))
	}

	topic := cfg.TopicPrefix + deviceID
	if err := d.publisher.Publish(ctx, cfg, topic, action.Payload()); err != nil {
		return d.record(action, topic, degraded(err.Error()))
	}

	return d.record(action, topic, delivered())
}

// record logs the attempt and counts it before handing the Result back.
func (d *Dispatcher) record(action Action, topic string, res Result) Result {
	outcome := "delivered"
	if !res.Delivered {
		outcome = "degraded"
	}
	metrics.RecordCommand(string(action), outcome)

	if res.Delivered {
		d.logger.Info("device command delivered",
			"action", string(action),
			"topic", topic,
			"payload", string(action.Payload()),
		)
	} else {
		d.logger.Warn("device command degraded",
			"action", string(action),
			"topic", topic,
			"reason", res.Reason,
		)
	}
	return res
}

// validateTarget checks the dispatch target before any broker work.
// Returns an empty string when the target is usable.
func validateTarget(prefix, deviceID string) string {
	switch {
	case deviceID == "":
		return "equipment has no device id configured"
	case strings.ContainsAny(deviceID, "+#"):
		return "device id contains topic wildcards"
	case prefix == "":
		return "topic prefix setting is empty"
	case strings.ContainsAny(prefix, "+#"):
		return "topic prefix contains wildcards"
	}
	return ""
}
