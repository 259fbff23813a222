package testserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/zbx-labs/zbxkit/pkg/protocol"
)

// SenderItem is one value as it arrives on the trapper wire.
type SenderItem struct {
	Host  string `json:"host"`
	Key   string `json:"key"`
	Value string `json:"value"`
	Clock int64  `json:"clock,omitempty"`
	NS    int    `json:"ns,omitempty"`
}

// senderRequest mirrors the trapper request envelope.
type senderRequest struct {
	Request string       `json:"request"`
	Data    []SenderItem `json:"data"`
}

// TrapperHandler decides how many items of a received chunk are reported
// as processed and failed.
type TrapperHandler func(items []SenderItem) (processed, failed int)

// AcceptAll reports every received item as processed.
func AcceptAll(items []SenderItem) (int, int) {
	return len(items), 0
}

// Trapper is an in-process Zabbix trapper. Each connection carries one
// request chunk and gets one framed JSON reply.
type Trapper struct {
	ln      net.Listener
	handler TrapperHandler
	wg      sync.WaitGroup

	mu     sync.Mutex
	chunks [][]SenderItem
}

// NewTrapper starts a trapper on a random loopback port.
func NewTrapper(handler TrapperHandler) (*Trapper, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	if handler == nil {
		handler = AcceptAll
	}
	tr := &Trapper{ln: ln, handler: handler}
	tr.wg.Add(1)
	go tr.serve()
	return tr, nil
}

// Addr returns the host:port the trapper listens on.
func (t *Trapper) Addr() string { return t.ln.Addr().String() }

// Port returns the TCP port the trapper listens on.
func (t *Trapper) Port() int { return t.ln.Addr().(*net.TCPAddr).Port }

// Chunks returns the item chunks received so far, in arrival order.
func (t *Trapper) Chunks() [][]SenderItem {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([][]SenderItem, len(t.chunks))
	copy(out, t.chunks)
	return out
}

// Close stops the listener and waits for in-flight connections.
func (t *Trapper) Close() {
	t.ln.Close()
	t.wg.Wait()
}

func (t *Trapper) serve() {
	defer t.wg.Done()
	for {
		conn, err := t.ln.Accept()
		if err != nil {
			return
		}
		t.wg.Add(1)
		go func() {
			defer t.wg.Done()
			t.handle(conn)
		}()
	}
}

func (t *Trapper) handle(conn net.Conn) {
	defer conn.Close()

	payload, err := protocol.Read(conn)
	if err != nil {
		return
	}

	var req senderRequest
	if err := json.Unmarshal(payload, &req); err != nil || req.Request != "sender data" {
		t.reply(conn, `{"response":"failed","info":"invalid request"}`)
		return
	}

	t.mu.Lock()
	t.chunks = append(t.chunks, req.Data)
	t.mu.Unlock()

	processed, failed := t.handler(req.Data)
	info := fmt.Sprintf("processed: %d; failed: %d; total: %d; seconds spent: %f",
		processed, failed, len(req.Data), 0.000100)
	t.reply(conn, fmt.Sprintf(`{"response":"success","info":%q}`, info))
}

func (t *Trapper) reply(conn net.Conn, body string) {
	reply, err := protocol.Pack(bytes.TrimSpace([]byte(body)), false)
	if err != nil {
		return
	}
	_, _ = conn.Write(reply)
}
