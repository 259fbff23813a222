package api

import (
	"encoding/base64"
	"time"

	"github.com/zbx-labs/zbxkit/pkg/log"
)

// Option configures a Client.
type Option func(*Client)

// WithURL sets the API endpoint. A bare host is completed to
// http://<host>/api_jsonrpc.php.
func WithURL(url string) Option {
	return func(c *Client) {
		c.url = url
	}
}

// WithCredentials sets the user and password for session login.
func WithCredentials(user, password string) Option {
	return func(c *Client) {
		c.user = user
		c.password = password
	}
}

// WithToken sets an API token. Token authentication requires a 5.4 or
// newer server.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithBasicAuth enables HTTP basic authentication in front of the API.
// The session then always travels in the request body, the
// Authorization header carries the basic credentials.
func WithBasicAuth(user, password string) Option {
	return func(c *Client) {
		c.basicCred = base64.StdEncoding.EncodeToString([]byte(user + ":" + password))
	}
}

// WithTimeout bounds each API request. The default is DefaultTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithSkipVersionCheck lets Login proceed against server versions
// outside the supported window.
func WithSkipVersionCheck() Option {
	return func(c *Client) {
		c.skipVersionCheck = true
	}
}

// WithInsecureSkipVerify disables TLS certificate verification on the
// default HTTP client. Ignored when WithHTTPClient is used.
func WithInsecureSkipVerify() Option {
	return func(c *Client) {
		c.insecureTLS = true
	}
}

// WithHTTPClient replaces the HTTP client used for requests.
func WithHTTPClient(hc HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger. Request and response bodies are logged at
// debug level with secrets masked.
func WithLogger(logger log.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}
