// Package testserver provides in-process Zabbix endpoints for tests:
// a passive agent, a trapper, and a JSON-RPC API backed by httptest.
// They speak just enough of the real protocols to exercise the clients
// in pkg/getter, pkg/sender and pkg/api without a Zabbix installation.
package testserver
