// Package sender implements the Zabbix sender (trapper) protocol: item
// values are reported in JSON chunks to the trapper port of a server or
// proxy, with failover across the nodes of each high-availability cluster.
//
// # Usage
//
// Create a sender and report a value:
//
//	s, err := sender.New(sender.WithServer("zabbix.example.com", 10051))
//	if err != nil {
//	    return err
//	}
//	resp, err := s.SendValue(ctx, "web-01", "app.requests", "42")
//
// Server addresses follow the ServerActive syntax of the agent
// configuration: commas separate clusters, semicolons separate the
// high-availability nodes within one cluster. Every cluster receives every
// value; within a cluster only the first reachable node does.
//
// # Version
//
// Current version: 0.1.0
// Minimum compatible version: 0.1.0
//
// See version.go for version constants that can be used programmatically.
package sender
