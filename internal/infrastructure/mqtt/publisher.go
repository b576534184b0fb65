package mqtt

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/dudumsantos1976-design/power-lift-control/internal/settings"
)

// Timing constants for the per-command connection lifecycle.
const (
	// connectTimeout is the maximum time to wait for the broker's
	// connection acknowledgment.
	connectTimeout = 10 * time.Second

	// overallTimeout bounds the whole connect-publish-ack sequence.
	overallTimeout = 15 * time.Second

	// disconnectQuiesce is the time allowed for pending operations on
	// disconnect, in milliseconds.
	disconnectQuiesce = 250

	// commandQoS is the delivery quality for device commands:
	// at-least-once, acknowledged by the broker.
	commandQoS = 1

	// tlsMinVersion is the minimum TLS version for secure connections.
	tlsMinVersion = tls.VersionTLS12
)

// Publisher delivers single command messages to a broker.
//
// Each Publish call is a connection-scoped resource: it opens a fresh
// connection, publishes once at QoS 1, waits for the acknowledgment and
// disconnects on every exit path. No broker handle outlives a command,
// so a wedged connection can never poison later dispatches. Pooling
// could be layered behind this same interface if command volume ever
// warrants it.
//
// Thread Safety:
//   - Publish is safe for concurrent use; concurrent calls use
//     independent connections.
type Publisher struct{}

// NewPublisher creates a Publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// Publish connects to the configured broker, publishes payload to topic
// at QoS 1 (not retained), waits for the broker acknowledgment and
// disconnects.
//
// Returns ErrInvalidTopic, ErrConnectTimeout, ErrConnectionFailed or
// ErrPublishFailed; the context can cut the wait short, surfacing as a
// timeout of the phase it interrupted.
func (p *Publisher) Publish(ctx context.Context, cfg settings.BrokerConfig, topic string, payload []byte) error {
	if err := validateTopic(topic); err != nil {
		return err
	}

	deadline := time.Now().Add(overallTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	client := pahomqtt.NewClient(buildClientOptions(cfg))

	token := client.Connect()
	if !waitToken(ctx, token, minDuration(connectTimeout, time.Until(deadline))) {
		client.Disconnect(disconnectQuiesce)
		return fmt.Errorf("%w: no acknowledgment within %v", ErrConnectTimeout, connectTimeout)
	}
	if err := token.Error(); err != nil {
		client.Disconnect(disconnectQuiesce)
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// Disconnect on every exit path once connected.
	defer client.Disconnect(disconnectQuiesce)

	pubToken := client.Publish(topic, commandQoS, false, payload)
	if !waitToken(ctx, pubToken, time.Until(deadline)) {
		return fmt.Errorf("%w: no acknowledgment within %v", ErrPublishFailed, overallTimeout)
	}
	if err := pubToken.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

// waitToken waits for a paho token up to timeout, returning early if
// the context is cancelled. Returns true if the token completed.
func waitToken(ctx context.Context, token pahomqtt.Token, timeout time.Duration) bool {
	if timeout <= 0 {
		return false
	}

	select {
	case <-token.Done():
		return true
	case <-ctx.Done():
		return false
	case <-time.After(timeout):
		return false
	}
}

// buildClientOptions creates paho options for a single-command connection.
func buildClientOptions(cfg settings.BrokerConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if cfg.UseTLS {
		scheme = "ssl"
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.URL, cfg.Port))

	// Unique client id per command; brokers disconnect duplicate ids.
	opts.SetClientID("powerlift-" + uuid.NewString()[:8])

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	// One-shot connection: no retry or auto-reconnect machinery. A
	// failed command is reported degraded, not retried.
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)
	opts.SetConnectTimeout(connectTimeout)

	if cfg.UseTLS {
		opts.SetTLSConfig(&tls.Config{
			MinVersion: tlsMinVersion,
		})
	}

	return opts
}

// validateTopic rejects empty topics and topics carrying subscription
// wildcards, which brokers refuse on publish.
func validateTopic(topic string) error {
	if topic == "" {
		return fmt.Errorf("%w: empty", ErrInvalidTopic)
	}
	if strings.ContainsAny(topic, "+#") {
		return fmt.Errorf("%w: wildcard in %q", ErrInvalidTopic, topic)
	}
	return nil
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
