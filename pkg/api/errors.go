package api

import (
	"errors"
	"fmt"
)

// Errors returned by the client. They are wrapped with call context,
// check with errors.Is.
var (
	// ErrNotLoggedIn is returned when an authenticated method is called
	// without a prior successful Login.
	ErrNotLoggedIn = errors.New("api: not logged in")

	// ErrMissingCredentials is returned by Login when neither a token
	// nor a user/password pair is configured.
	ErrMissingCredentials = errors.New("api: either a token or a user and password must be set")

	// ErrTokenNotSupported is returned when token authentication is
	// requested from a server older than 5.4.
	ErrTokenNotSupported = errors.New("api: token authentication requires Zabbix 5.4 or newer")

	// ErrVersionNotSupported is returned by Login when the server
	// version falls outside the supported window and the version check
	// was not skipped.
	ErrVersionNotSupported = errors.New("api: server version not supported")
)

// Error is the error object of a JSON-RPC response. The server fills
// Data with the human-readable detail ("Incorrect user name or
// password...", "Not authorised." and so on).
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data"`

	// Method is the API method whose call produced the error.
	Method string `json:"-"`
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Data != "" {
		msg += " " + e.Data
	}
	return fmt.Sprintf("api: %s returned code %d: %s", e.Method, e.Code, msg)
}
