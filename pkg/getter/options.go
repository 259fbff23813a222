package getter

import (
	"time"

	"github.com/zbx-labs/zbxkit/pkg/log"
)

// Option configures optional behavior of a Getter.
type Option func(*Getter)

// WithHost sets the agent address. Defaults to 127.0.0.1.
func WithHost(host string) Option {
	return func(g *Getter) {
		g.host = host
	}
}

// WithPort sets the agent port. Defaults to 10050.
func WithPort(port int) Option {
	return func(g *Getter) {
		g.port = port
	}
}

// WithTimeout sets the timeout for the whole query round trip.
// Defaults to 10 seconds.
func WithTimeout(timeout time.Duration) Option {
	return func(g *Getter) {
		g.timeout = timeout
	}
}

// WithSourceIP sets the local address queries are made from.
func WithSourceIP(ip string) Option {
	return func(g *Getter) {
		g.sourceIP = ip
	}
}

// WithCompression enables zlib compression of request payloads.
func WithCompression() Option {
	return func(g *Getter) {
		g.compress = true
	}
}

// WithDialFunc sets a custom dialer, e.g. for TLS connections.
// When set, WithSourceIP has no effect.
func WithDialFunc(dial DialFunc) Option {
	return func(g *Getter) {
		g.dial = dial
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger log.Logger) Option {
	return func(g *Getter) {
		g.logger = logger
	}
}
