package getter

import "strings"

// notSupported prefixes agent replies for item keys it cannot resolve.
const notSupported = "ZBX_NOTSUPPORTED"

// Response is a parsed passive agent reply.
type Response struct {
	// Raw is the reply body exactly as received.
	Raw string

	// Value is the item value when the key was resolved.
	Value string

	// ErrMsg is the agent-side error text for unsupported keys.
	ErrMsg string
}

// Supported reports whether the agent resolved the item key.
func (r *Response) Supported() bool { return r.ErrMsg == "" }

// parseResponse splits an agent reply into value and error parts.
// Unsupported keys arrive as "ZBX_NOTSUPPORTED\x00<message>"; very old
// agents send the bare marker without a message.
func parseResponse(raw string) *Response {
	r := &Response{Raw: raw}
	switch {
	case raw == notSupported:
		r.ErrMsg = "Not supported by Zabbix Agent"
	case strings.HasPrefix(raw, notSupported+"\x00"):
		r.ErrMsg = raw[len(notSupported)+1:]
	default:
		r.Value = raw
	}
	return r
}
