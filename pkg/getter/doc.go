// Package getter implements the client side of the passive Zabbix agent
// protocol: one TCP connection per query, the item key as the request
// payload and a single framed reply.
//
//	g := getter.New(getter.WithHost("192.168.1.10"))
//	resp, err := g.Get(ctx, "agent.ping")
package getter
