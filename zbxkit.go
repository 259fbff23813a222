// Package zbxkit provides Go clients for the Zabbix protocols: passive
// agent queries, trapper value pushes and the JSON-RPC web API.
//
// Example usage:
//
//	g := zbxkit.NewGetter(getter.WithHost("192.168.1.5"))
//	resp, err := g.Get(ctx, "agent.ping")
//
//	snd, err := zbxkit.NewSender(sender.WithConfigFile(agentconf.DefaultPath))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	r, err := snd.SendValue(ctx, "web1", "app.users", "42")
//
//	cl := zbxkit.NewAPI(api.WithURL("http://localhost/api_jsonrpc.php"),
//	    api.WithToken(os.Getenv("ZABBIX_TOKEN")))
//	if err := cl.Login(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer cl.Logout(ctx)
package zbxkit

import (
	"github.com/zbx-labs/zbxkit/pkg/agentconf"
	"github.com/zbx-labs/zbxkit/pkg/api"
	"github.com/zbx-labs/zbxkit/pkg/getter"
	"github.com/zbx-labs/zbxkit/pkg/sender"
)

// Getter queries item values from a passive Zabbix agent.
type Getter = getter.Getter

// Sender pushes item values to the trapper port of a server or proxy.
type Sender = sender.Sender

// ItemValue is one measurement handed to a Sender.
type ItemValue = sender.ItemValue

// API is a client for the Zabbix JSON-RPC web API.
type API = api.Client

// AgentConfig is a parsed zabbix_agentd.conf, the source of trapper
// addresses when a Sender is built from one.
type AgentConfig = agentconf.Config

// NewGetter returns an agent client. Without options it queries
// 127.0.0.1:10050.
func NewGetter(opts ...getter.Option) *Getter {
	return getter.New(opts...)
}

// NewSender returns a trapper client. Without options it targets
// 127.0.0.1:10051.
func NewSender(opts ...sender.Option) (*Sender, error) {
	return sender.New(opts...)
}

// NewAPI returns an API client. Authentication happens on Login, driven
// by the configured token or credentials.
func NewAPI(opts ...api.Option) *API {
	return api.New(opts...)
}

// LoadAgentConfig parses an agent configuration file.
func LoadAgentConfig(path string) (*AgentConfig, error) {
	return agentconf.Load(path)
}
