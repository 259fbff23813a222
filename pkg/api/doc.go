// Package api implements a client for the Zabbix JSON-RPC API.
//
// The client speaks JSON-RPC 2.0 over HTTP, handles the authentication
// differences between server generations (session field vs bearer header,
// user vs username login parameter, API token support) and masks secrets
// in its debug logging.
//
//	c := api.New(api.WithURL("https://zabbix.example.com"),
//	    api.WithCredentials("Admin", "zabbix"))
//	if err := c.Login(ctx); err != nil {
//	    return err
//	}
//	defer c.Logout(ctx)
//
//	hosts, err := c.Call(ctx, "host.get", map[string]any{"output": []string{"host"}})
package api
