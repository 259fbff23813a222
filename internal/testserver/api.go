package testserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

// Session is the session id the mock API hands out on login.
const Session = "09e7d4286dfdca4ba7be15e0f3b2b55a"

// APIError mirrors the JSON-RPC error object.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

// APIHandler serves one JSON-RPC method. auth is the session or token the
// caller presented, empty when none was sent.
type APIHandler func(params json.RawMessage, auth string) (any, *APIError)

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      any             `json:"id"`
	Auth    string          `json:"auth,omitempty"`
}

type rpcResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	Result  any       `json:"result,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	ID      any       `json:"id"`
}

// API is an in-process Zabbix JSON-RPC endpoint. It implements version
// reporting, login, logout and auth checking, and lets tests register
// handlers for any other method.
type API struct {
	Server *httptest.Server

	version  string
	user     string
	password string
	token    string

	mu           sync.Mutex
	handlers     map[string]APIHandler
	failNext     int
	lastAuthBody string
	lastBearer   string
	calls        []string
}

// NewAPI starts a mock API reporting the given version, accepting the given
// user/password pair on login and the given token for bearer access.
func NewAPI(version, user, password, token string) *API {
	a := &API{
		version:  version,
		user:     user,
		password: password,
		token:    token,
		handlers: map[string]APIHandler{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api_jsonrpc.php", a.serveRPC)
	a.Server = httptest.NewServer(mux)
	return a
}

// URL returns the base URL of the endpoint, without the api_jsonrpc.php path.
func (a *API) URL() string { return a.Server.URL }

// Close shuts the endpoint down.
func (a *API) Close() { a.Server.Close() }

// Handle registers a handler for a method, replacing any default behavior.
func (a *API) Handle(method string, h APIHandler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.handlers[method] = h
}

// FailNext makes the endpoint answer the next n requests with 503.
// Used to exercise readiness polling.
func (a *API) FailNext(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failNext = n
}

// Calls returns the method names received so far, in arrival order.
func (a *API) Calls() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.calls...)
}

// LastAuth reports how the last authenticated call carried its credentials:
// the body "auth" field value and the Authorization bearer value.
func (a *API) LastAuth() (bodyAuth, bearer string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastAuthBody, a.lastBearer
}

// atLeast64 reports whether the configured version is 6.4 or newer.
func (a *API) atLeast64() bool {
	parts := strings.Split(a.version, ".")
	if len(parts) < 2 {
		return false
	}
	major, _ := strconv.Atoi(parts[0])
	minor, _ := strconv.Atoi(parts[1])
	return major > 6 || (major == 6 && minor >= 4)
}

func (a *API) serveRPC(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	if a.failNext > 0 {
		a.failNext--
		a.mu.Unlock()
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	a.mu.Unlock()

	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	bearer := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if bearer == r.Header.Get("Authorization") {
		bearer = ""
	}
	auth := req.Auth
	if auth == "" {
		auth = bearer
	}

	a.mu.Lock()
	a.calls = append(a.calls, req.Method)
	a.lastAuthBody = req.Auth
	a.lastBearer = bearer
	custom := a.handlers[req.Method]
	a.mu.Unlock()

	var (
		result any
		rpcErr *APIError
	)
	switch {
	case custom != nil:
		result, rpcErr = custom(req.Params, auth)
	default:
		result, rpcErr = a.dispatch(req.Method, req.Params, auth)
	}

	resp := rpcResponse{JSONRPC: "2.0", Result: result, Error: rpcErr, ID: req.ID}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (a *API) dispatch(method string, params json.RawMessage, auth string) (any, *APIError) {
	switch method {
	case "apiinfo.version":
		return a.version, nil

	case "user.login":
		var creds map[string]string
		if err := json.Unmarshal(params, &creds); err != nil {
			return nil, &APIError{Code: -32602, Message: "Invalid params."}
		}
		// The login user field was renamed in 6.4.
		userField := "user"
		if a.atLeast64() {
			userField = "username"
		}
		user, ok := creds[userField]
		if !ok {
			return nil, &APIError{
				Code:    -32602,
				Message: "Invalid params.",
				Data:    `unexpected parameter for method "user.login"`,
			}
		}
		if user != a.user || creds["password"] != a.password {
			return nil, &APIError{
				Code:    -32602,
				Message: "Invalid params.",
				Data:    "Incorrect user name or password or account is temporarily blocked.",
			}
		}
		return Session, nil

	case "user.logout":
		if auth == "" {
			return nil, &APIError{Code: -32602, Message: "Invalid params.", Data: "Not authorised."}
		}
		return true, nil

	case "user.checkAuthentication":
		var p map[string]string
		_ = json.Unmarshal(params, &p)
		if p["sessionid"] == Session || (a.token != "" && p["token"] == a.token) {
			return map[string]any{"userid": 1, "username": a.user}, nil
		}
		return nil, &APIError{Code: -32602, Message: "Invalid params.", Data: "Session terminated, re-login, please."}

	default:
		if auth == "" {
			return nil, &APIError{Code: -32602, Message: "Invalid params.", Data: "Not authorised."}
		}
		if auth != Session && auth != a.token {
			return nil, &APIError{Code: -32602, Message: "Invalid params.", Data: "Session terminated, re-login, please."}
		}
		return nil, &APIError{Code: -32601, Message: "Method not found."}
	}
}
