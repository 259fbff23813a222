package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zbx-labs/zbxkit/pkg/log"
)

const (
	// DefaultURL is used when no URL is configured and the environment
	// does not name one.
	DefaultURL = "http://localhost/zabbix/api_jsonrpc.php"

	// DefaultTimeout bounds a single API request.
	DefaultTimeout = 30 * time.Second

	// jsonrpcFile is the entry point of the API on the server.
	jsonrpcFile = "api_jsonrpc.php"

	libraryVersion = "0.1.0"
	userAgent      = "zbxkit/" + libraryVersion
)

// unauthMethods are callable without a session. No credentials are ever
// attached to them.
var unauthMethods = map[string]bool{
	"apiinfo.version":          true,
	"user.login":               true,
	"user.checkAuthentication": true,
}

// RequiresAuth reports whether method needs a logged-in session.
func RequiresAuth(method string) bool {
	return !unauthMethods[method]
}

// filesMethods return whole files as their result. Their responses are
// truncated in the debug log instead of masked.
var filesMethods = map[string]bool{
	"configuration.export": true,
}

// HTTPClient abstracts HTTP operations for dependency injection.
// The standard *http.Client satisfies this interface.
type HTTPClient interface {
	// Do sends an HTTP request and returns an HTTP response.
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to one Zabbix JSON-RPC API endpoint. It is safe for
// concurrent use after Login.
type Client struct {
	url      string
	token    string
	user     string
	password string

	basicCred string // base64 user:password, empty when basic auth is off

	timeout          time.Duration
	skipVersionCheck bool
	insecureTLS      bool

	httpClient HTTPClient
	logger     log.Logger

	mu      sync.Mutex
	session string
	version Version
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      string `json:"id"`
	Auth    string `json:"auth,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error"`
}

// New creates a client. The URL falls back to the ZABBIX_URL environment
// variable and then to DefaultURL; credentials fall back to ZABBIX_USER
// and ZABBIX_PASSWORD. No connection is made until the first call.
func New(opts ...Option) *Client {
	c := &Client{
		timeout: DefaultTimeout,
		logger:  log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.url == "" {
		c.url = os.Getenv("ZABBIX_URL")
	}
	if c.url == "" {
		c.url = DefaultURL
	}
	c.url = normalizeURL(c.url)
	if c.token == "" && c.user == "" && c.password == "" {
		c.user = os.Getenv("ZABBIX_USER")
		c.password = os.Getenv("ZABBIX_PASSWORD")
	}
	if c.httpClient == nil {
		hc := &http.Client{}
		if c.insecureTLS {
			hc.Transport = &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			}
		}
		c.httpClient = hc
	}
	return c
}

// URL returns the normalized endpoint the client talks to.
func (c *Client) URL() string { return c.url }

// Login authenticates the client. The server version is fetched first
// and checked against the supported window. With a token configured on
// a 5.4+ server the token becomes the session without any API call;
// otherwise user.login runs with the credential field the server
// generation expects ("user" before 6.4, "username" from 6.4 on).
func (c *Client) Login(ctx context.Context) error {
	ver, err := c.APIVersion(ctx)
	if err != nil {
		return err
	}
	if err := c.checkVersion(ver); err != nil {
		return err
	}

	hasUserPass := c.user != "" && c.password != ""
	if c.token != "" && !ver.AtLeast(5, 4) && !hasUserPass {
		return fmt.Errorf("%w (server is %s)", ErrTokenNotSupported, ver)
	}
	if c.token == "" && !hasUserPass {
		return ErrMissingCredentials
	}

	if c.token != "" && ver.AtLeast(5, 4) {
		c.logger.Debug("using API token as session",
			log.String("token", maskSecret(c.token, maskShowLen)))
		c.setSession(c.token)
		return nil
	}

	creds := map[string]string{"username": c.user, "password": c.password}
	if !ver.AtLeast(6, 4) {
		creds = map[string]string{"user": c.user, "password": c.password}
	}
	c.logger.Debug("logging in", log.String("user", c.user))
	result, err := c.Call(ctx, "user.login", creds)
	if err != nil {
		return err
	}
	var session string
	if err := json.Unmarshal(result, &session); err != nil {
		return fmt.Errorf("api: unexpected user.login result: %w", err)
	}
	c.setSession(session)
	c.logger.Debug("connected to Zabbix API",
		log.String("version", ver.String()),
		log.String("url", c.url))
	return nil
}

// Logout invalidates the session. A token session is only forgotten
// locally, tokens cannot be revoked through user.logout.
func (c *Client) Logout(ctx context.Context) error {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	if session == "" {
		return nil
	}
	if c.token != "" && session == c.token {
		c.setSession("")
		return nil
	}

	result, err := c.Call(ctx, "user.logout", struct{}{})
	if err != nil {
		return err
	}
	var ok bool
	if err := json.Unmarshal(result, &ok); err != nil {
		return fmt.Errorf("api: unexpected user.logout result: %w", err)
	}
	if ok {
		c.setSession("")
	}
	return nil
}

// CheckAuth reports whether the current session is still valid on the
// server. Token sessions are checked with the token parameter of
// user.checkAuthentication, password sessions with sessionid. A
// rejection by the server means false, not an error.
func (c *Client) CheckAuth(ctx context.Context) (bool, error) {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	if session == "" {
		return false, nil
	}
	params := map[string]string{"sessionid": session}
	if c.token != "" && session == c.token {
		params = map[string]string{"token": session}
	}

	result, err := c.Call(ctx, "user.checkAuthentication", params)
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) {
			return false, nil
		}
		return false, err
	}
	var status struct {
		UserID any `json:"userid"`
	}
	if err := json.Unmarshal(result, &status); err != nil {
		return false, fmt.Errorf("api: unexpected user.checkAuthentication result: %w", err)
	}
	return status.UserID != nil, nil
}

// APIVersion returns the server version reported by apiinfo.version.
// The version is fetched once and cached for the lifetime of the client.
func (c *Client) APIVersion(ctx context.Context) (Version, error) {
	c.mu.Lock()
	cached := c.version
	c.mu.Unlock()
	if !cached.IsZero() {
		return cached, nil
	}

	result, err := c.Call(ctx, "apiinfo.version", nil)
	if err != nil {
		return Version{}, err
	}
	var raw string
	if err := json.Unmarshal(result, &raw); err != nil {
		return Version{}, fmt.Errorf("api: unexpected apiinfo.version result: %w", err)
	}
	ver, err := ParseVersion(raw)
	if err != nil {
		return Version{}, err
	}

	c.mu.Lock()
	c.version = ver
	c.mu.Unlock()
	return ver, nil
}

// Call invokes an API method and returns its raw result. Methods
// outside the unauthenticated set require a prior Login: servers before
// 6.4 receive the session in the body auth field, newer ones in an
// Authorization bearer header, unless that header is already taken by
// basic auth.
func (c *Client) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	if params == nil {
		params = struct{}{}
	}
	req := rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      uuid.NewString(),
	}

	var bearer string
	if !unauthMethods[method] {
		c.mu.Lock()
		session, ver := c.session, c.version
		c.mu.Unlock()
		if session == "" {
			return nil, fmt.Errorf("%w: %s requires authentication", ErrNotLoggedIn, method)
		}
		if !ver.AtLeast(6, 4) || c.basicCred != "" {
			req.Auth = session
		} else {
			bearer = session
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("api: marshal request: %w", err)
	}
	c.logger.Debug("sending API request",
		log.String("url", c.url),
		log.String("body", hidePrivate(string(body))))

	respBody, err := c.post(ctx, body, bearer)
	if err != nil {
		return nil, err
	}

	if filesMethods[method] {
		c.logger.Debug("received API response",
			log.String("body", cutBody(string(respBody), exportLogLimit)))
	} else {
		c.logger.Debug("received API response",
			log.String("body", hidePrivate(string(respBody))))
	}

	var resp rpcResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("api: parse response from %s: %w", c.url, err)
	}
	if resp.Error != nil {
		resp.Error.Method = method
		return nil, resp.Error
	}
	return resp.Result, nil
}

func (c *Client) post(ctx context.Context, body []byte, bearer string) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("api: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json-rpc")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if c.basicCred != "" {
		req.Header.Set("Authorization", "Basic "+c.basicCred)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: connect %s: %w", c.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("api: server returned %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) setSession(s string) {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
}

// checkVersion enforces the supported window unless the check is
// skipped, in which case the mismatch is only logged.
func (c *Client) checkVersion(ver Version) error {
	tooOld := !ver.AtLeast(minSupported.Major, minSupported.Minor)
	tooNew := ver.Major > maxSupported.Major ||
		(ver.Major == maxSupported.Major && ver.Minor > maxSupported.Minor)
	if !tooOld && !tooNew {
		return nil
	}
	if c.skipVersionCheck {
		c.logger.Debug("server version outside the supported window, continuing anyway",
			log.String("version", ver.String()),
			log.String("supported", fmt.Sprintf("%d.%d through %d.%d",
				minSupported.Major, minSupported.Minor, maxSupported.Major, maxSupported.Minor)))
		return nil
	}
	if tooOld {
		return fmt.Errorf("%w: %s is older than %d.%d", ErrVersionNotSupported,
			ver, minSupported.Major, minSupported.Minor)
	}
	return fmt.Errorf("%w: %s is newer than %d.%d, the latest tested release line",
		ErrVersionNotSupported, ver, maxSupported.Major, maxSupported.Minor)
}

// normalizeURL completes a user-supplied endpoint: the api_jsonrpc.php
// entry point is appended when missing and schemeless addresses default
// to plain http.
func normalizeURL(url string) string {
	if !strings.HasSuffix(url, jsonrpcFile) {
		if strings.HasSuffix(url, "/") {
			url += jsonrpcFile
		} else {
			url += "/" + jsonrpcFile
		}
	}
	if !strings.HasPrefix(url, "http") {
		url = "http://" + url
	}
	return url
}
