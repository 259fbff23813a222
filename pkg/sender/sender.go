package sender

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/zbx-labs/zbxkit/pkg/log"
	"github.com/zbx-labs/zbxkit/pkg/protocol"
)

// Defaults for a Sender.
const (
	DefaultTimeout   = 10 * time.Second
	DefaultChunkSize = 250
)

// defaultServer receives data when no server is configured at all.
const defaultServer = "127.0.0.1:10051"

// DialFunc opens the connection to a trapper node. Custom dialers can bind
// a source address or wrap the connection in TLS.
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// Sender reports item values over the Zabbix sender protocol.
// Use New to create one; the zero value is not usable.
type Sender struct {
	clusters  []Cluster
	timeout   time.Duration
	chunkSize int
	sourceIP  string
	compress  bool
	dial      DialFunc
	logger    log.Logger
}

// New creates a Sender with the given options applied over the defaults.
// Without a server option, data goes to 127.0.0.1:10051.
func New(opts ...Option) (*Sender, error) {
	cfg := options{
		timeout:   DefaultTimeout,
		chunkSize: DefaultChunkSize,
		logger:    log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	clusters, sourceIP, err := cfg.resolveServers()
	if err != nil {
		return nil, err
	}

	return &Sender{
		clusters:  clusters,
		timeout:   cfg.timeout,
		chunkSize: cfg.chunkSize,
		sourceIP:  sourceIP,
		compress:  cfg.compress,
		dial:      cfg.dial,
		logger:    cfg.logger,
	}, nil
}

// Clusters returns the configured target clusters.
func (s *Sender) Clusters() []Cluster {
	return append([]Cluster(nil), s.clusters...)
}

// SendValue reports a single value and returns the server summary.
func (s *Sender) SendValue(ctx context.Context, host, key, value string) (*Response, error) {
	return s.Send(ctx, []ItemValue{{Host: host, Key: key, Value: value}})
}

// Send reports the given values, split into chunks, to every configured
// cluster. Within a cluster the nodes are tried in order and the first one
// that accepts a connection gets the data. The returned Response sums the
// per-chunk summaries of all answering nodes.
func (s *Sender) Send(ctx context.Context, items []ItemValue) (*Response, error) {
	result := &Response{}

	for start, num := 0, 1; start < len(items); start, num = start+s.chunkSize, num+1 {
		end := min(start+s.chunkSize, len(items))
		if err := s.sendChunk(ctx, items[start:end], num, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// sendChunk delivers one chunk to every cluster and accumulates the
// summaries into result.
func (s *Sender) sendChunk(ctx context.Context, items []ItemValue, chunk int, result *Response) error {
	payload, err := json.Marshal(request{Request: "sender data", Data: items})
	if err != nil {
		return fmt.Errorf("sender: marshal request: %w", err)
	}
	packet, err := protocol.Pack(payload, s.compress)
	if err != nil {
		return err
	}

	for _, cluster := range s.clusters {
		node, conn, err := s.connect(ctx, cluster)
		if err != nil {
			return err
		}

		reply, err := s.exchange(ctx, conn, packet)
		conn.Close()
		if err != nil {
			return fmt.Errorf("sender: node %s: %w", node, err)
		}
		if reply.Response != "success" {
			return fmt.Errorf("%w: node %s answered %q", ErrSendFailed, node, reply.Response)
		}

		cr, err := parseInfo(reply.Info, chunk)
		if err != nil {
			return fmt.Errorf("sender: node %s: %w", node, err)
		}

		s.logger.Debug("chunk accepted",
			log.String("node", node.String()),
			log.Int("chunk", chunk),
			log.Int("processed", cr.Processed),
			log.Int("failed", cr.Failed))
		result.add(node.String(), cr)
	}
	return nil
}

// connect returns a connection to the first reachable node of the cluster.
func (s *Sender) connect(ctx context.Context, cluster Cluster) (Node, net.Conn, error) {
	for _, node := range cluster.Nodes() {
		conn, err := s.dialNode(ctx, node)
		if err != nil {
			s.logger.Debug("node unreachable", log.String("node", node.String()), log.Err(err))
			continue
		}
		return node, conn, nil
	}
	return Node{}, nil, fmt.Errorf("%w: cluster %s", ErrClusterUnavailable, cluster)
}

func (s *Sender) dialNode(ctx context.Context, node Node) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if s.dial != nil {
		return s.dial(ctx, "tcp", node.String())
	}
	d := net.Dialer{Timeout: s.timeout}
	if s.sourceIP != "" {
		d.LocalAddr = &net.TCPAddr{IP: net.ParseIP(s.sourceIP)}
	}
	return d.DialContext(ctx, "tcp", node.String())
}

// exchange writes the packet and reads the framed JSON reply.
func (s *Sender) exchange(ctx context.Context, conn net.Conn, packet []byte) (*trapperReply, error) {
	deadline := time.Now().Add(s.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	if _, err := conn.Write(packet); err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}

	payload, err := protocol.Read(conn)
	if err != nil {
		return nil, err
	}

	var reply trapperReply
	if err := json.Unmarshal(payload, &reply); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	return &reply, nil
}
