package sender

import "errors"

// Errors returned by the sender. They are wrapped with call context,
// check with errors.Is.
var (
	// ErrUnexpectedResponse is returned when a trapper reply cannot be parsed.
	ErrUnexpectedResponse = errors.New("sender: unexpected response")

	// ErrClusterUnavailable is returned when no node of a cluster accepts
	// a connection.
	ErrClusterUnavailable = errors.New("sender: no cluster node reachable")

	// ErrSendFailed is returned when the server answers a chunk with a
	// non-success response.
	ErrSendFailed = errors.New("sender: server reported failure")
)
