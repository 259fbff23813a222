package sender

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// DefaultPort is the trapper port of a Zabbix server or proxy.
const DefaultPort = 10051

// Node is one server of a high-availability cluster.
type Node struct {
	Address string
	Port    int
}

// parseNode reads "address[:port]". The catch-all 0.0.0.0/0 an agent
// configuration may carry maps to localhost.
func parseNode(s string) (Node, error) {
	addr := strings.TrimSpace(s)
	port := DefaultPort

	if strings.Contains(addr, ":") {
		parts := strings.Split(addr, ":")
		if len(parts) != 2 {
			return Node{}, fmt.Errorf("sender: invalid node address %q", s)
		}
		p, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return Node{}, fmt.Errorf("sender: invalid port in node address %q", s)
		}
		addr, port = strings.TrimSpace(parts[0]), p
	}

	if addr == "0.0.0.0/0" {
		addr = "127.0.0.1"
	}
	return Node{Address: addr, Port: port}, nil
}

// String returns the node as address:port.
func (n Node) String() string {
	return net.JoinHostPort(n.Address, strconv.Itoa(n.Port))
}

// Cluster is an ordered list of high-availability nodes. Data goes to the
// first node that accepts a connection.
type Cluster struct {
	nodes []Node
}

// ParseCluster reads a semicolon-separated node list like
// "zabbix1.example.com;zabbix2.example.com:20051". Nodes without an
// explicit port get the default trapper port.
func ParseCluster(s string) (Cluster, error) {
	var c Cluster
	for _, part := range strings.Split(s, ";") {
		n, err := parseNode(part)
		if err != nil {
			return Cluster{}, err
		}
		c.nodes = append(c.nodes, n)
	}
	return c, nil
}

// ParseClusters reads a comma-separated list of clusters, the ServerActive
// syntax of the agent configuration.
func ParseClusters(s string) ([]Cluster, error) {
	var out []Cluster
	for _, part := range strings.Split(s, ",") {
		c, err := ParseCluster(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Nodes returns the cluster's nodes in failover order.
func (c Cluster) Nodes() []Node {
	return append([]Node(nil), c.nodes...)
}

// String returns the cluster as its semicolon-separated node list.
func (c Cluster) String() string {
	parts := make([]string, len(c.nodes))
	for i, n := range c.nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, ";")
}
