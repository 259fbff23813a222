package sender_test

import (
	"context"
	"fmt"

	"github.com/zbx-labs/zbxkit/pkg/agentconf"
	"github.com/zbx-labs/zbxkit/pkg/sender"
)

// ExampleNew demonstrates pushing a batch of values to a trapper port.
func ExampleNew() {
	snd, err := sender.New(
		// Two HA nodes of one cluster and a second standalone server.
		sender.WithServers("zbx-node1:10051;zbx-node2:10051,zbx-backup"),
	)
	if err != nil {
		fmt.Printf("bad server spec: %v\n", err)
		return
	}

	items := []sender.ItemValue{
		{Host: "web1", Key: "app.users", Value: "42"},
		{Host: "web1", Key: "app.errors", Value: "0", Clock: 1695713666},
	}
	resp, err := snd.Send(context.Background(), items)
	if err != nil {
		fmt.Printf("send failed: %v\n", err)
		return
	}
	fmt.Println(resp)
}

// Example_fromAgentConfig demonstrates reusing the servers an installed
// agent already reports to, the way zabbix_sender -c does.
func Example_fromAgentConfig() {
	snd, err := sender.New(sender.WithConfigFile(agentconf.DefaultPath))
	if err != nil {
		fmt.Printf("bad agent config: %v\n", err)
		return
	}

	resp, err := snd.SendValue(context.Background(), "web1", "app.users", "42")
	if err != nil {
		fmt.Printf("send failed: %v\n", err)
		return
	}
	fmt.Println(resp)
}

// ExampleResponse_String demonstrates the zabbix_sender summary format.
func ExampleResponse_String() {
	resp := sender.Response{
		Processed:    2,
		Total:        2,
		SecondsSpent: 0.000062,
	}
	fmt.Println(resp.String())
	// Output: processed: 2; failed: 0; total: 2; seconds spent: 0.000062
}
