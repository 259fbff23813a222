package testserver

import (
	"net"
	"sync"

	"github.com/zbx-labs/zbxkit/pkg/protocol"
)

// AgentHandler resolves an item key to its value. Returning an error makes
// the agent answer with a ZBX_NOTSUPPORTED reply carrying the error text.
type AgentHandler func(key string) (string, error)

// Agent is an in-process passive Zabbix agent. It answers one query per
// connection and closes it, like the real agent does.
type Agent struct {
	ln      net.Listener
	handler AgentHandler
	wg      sync.WaitGroup

	mu   sync.Mutex
	keys []string
}

// NewAgent starts an agent on a random loopback port.
func NewAgent(handler AgentHandler) (*Agent, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	a := &Agent{ln: ln, handler: handler}
	a.wg.Add(1)
	go a.serve()
	return a, nil
}

// Addr returns the host:port the agent listens on.
func (a *Agent) Addr() string { return a.ln.Addr().String() }

// Port returns the TCP port the agent listens on.
func (a *Agent) Port() int { return a.ln.Addr().(*net.TCPAddr).Port }

// Keys returns the item keys received so far, in arrival order.
func (a *Agent) Keys() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.keys...)
}

// Close stops the listener and waits for in-flight connections.
func (a *Agent) Close() {
	a.ln.Close()
	a.wg.Wait()
}

func (a *Agent) serve() {
	defer a.wg.Done()
	for {
		conn, err := a.ln.Accept()
		if err != nil {
			return
		}
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.handle(conn)
		}()
	}
}

func (a *Agent) handle(conn net.Conn) {
	defer conn.Close()

	payload, err := protocol.Read(conn)
	if err != nil {
		return
	}
	key := string(payload)

	a.mu.Lock()
	a.keys = append(a.keys, key)
	a.mu.Unlock()

	value, err := a.handler(key)
	if err != nil {
		value = "ZBX_NOTSUPPORTED\x00" + err.Error()
	}
	reply, err := protocol.Pack([]byte(value), false)
	if err != nil {
		return
	}
	_, _ = conn.Write(reply)
}
