package getter

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/zbx-labs/zbxkit/pkg/log"
	"github.com/zbx-labs/zbxkit/pkg/protocol"
)

// Defaults for a Getter.
const (
	DefaultHost    = "127.0.0.1"
	DefaultPort    = 10050
	DefaultTimeout = 10 * time.Second
)

// DialFunc opens the connection to the agent. Custom dialers can bind a
// source address or wrap the connection in TLS.
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// Getter queries item values from passive Zabbix agents.
// Use New to create one; the zero value is not usable.
type Getter struct {
	host     string
	port     int
	timeout  time.Duration
	sourceIP string
	compress bool
	dial     DialFunc
	logger   log.Logger
}

// New creates a Getter with the given options applied over the defaults.
func New(opts ...Option) *Getter {
	g := &Getter{
		host:    DefaultHost,
		port:    DefaultPort,
		timeout: DefaultTimeout,
		logger:  log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Get queries the agent for a single item key and returns its reply.
// The agent closes the connection after answering, so every call opens
// a fresh one.
func (g *Getter) Get(ctx context.Context, key string) (*Response, error) {
	packet, err := protocol.Pack([]byte(key), g.compress)
	if err != nil {
		return nil, err
	}

	addr := net.JoinHostPort(g.host, strconv.Itoa(g.port))

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	conn, err := g.dialContext(ctx, addr)
	if err != nil {
		g.logger.Error("agent connection failed", log.String("addr", addr), log.Err(err))
		return nil, fmt.Errorf("getter: connect %s: %w", addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	g.logger.Debug("query agent", log.String("addr", addr), log.String("key", key))

	if _, err := conn.Write(packet); err != nil {
		return nil, fmt.Errorf("getter: send to %s: %w", addr, err)
	}

	payload, err := protocol.Read(conn)
	if err != nil {
		return nil, fmt.Errorf("getter: read from %s: %w", addr, err)
	}

	resp := parseResponse(string(payload))
	g.logger.Debug("agent response",
		log.String("addr", addr),
		log.String("key", key),
		log.String("raw", resp.Raw))
	return resp, nil
}

func (g *Getter) dialContext(ctx context.Context, addr string) (net.Conn, error) {
	if g.dial != nil {
		return g.dial(ctx, "tcp", addr)
	}
	d := net.Dialer{Timeout: g.timeout}
	if g.sourceIP != "" {
		d.LocalAddr = &net.TCPAddr{IP: net.ParseIP(g.sourceIP)}
	}
	return d.DialContext(ctx, "tcp", addr)
}
