package mqtt

import "errors"

// Domain-specific errors for broker operations.
// Use errors.Is() to check for these in calling code.
var (
	// ErrConnectTimeout is returned when the broker does not acknowledge
	// the connection within the connect timeout.
	ErrConnectTimeout = errors.New("mqtt: connect timeout")

	// ErrConnectionFailed is returned when the broker refuses the
	// connection outright (bad credentials, TLS failure).
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	// ErrPublishFailed is returned when the broker rejects the publish
	// or the transport drops before the acknowledgment arrives.
	ErrPublishFailed = errors.New("mqtt: publish failed")

	// ErrInvalidTopic is returned for empty topics or topics containing
	// the wildcard characters '+' or '#', which are not publishable.
	ErrInvalidTopic = errors.New("mqtt: invalid topic")
)
