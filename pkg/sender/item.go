package sender

// ItemValue is one measurement to report: the host and item key it belongs
// to and the value itself, with an optional collection time.
type ItemValue struct {
	// Host is the host name the item belongs to, as registered in the
	// Zabbix frontend.
	Host string `json:"host"`

	// Key is the item key to send the value to.
	Key string `json:"key"`

	// Value is the item value. Zabbix accepts any text here, including
	// serialized JSON.
	Value string `json:"value"`

	// Clock is the value collection time as a Unix timestamp.
	// When zero it is omitted and the server stamps the value on arrival.
	Clock int64 `json:"clock,omitempty"`

	// NS is the nanosecond part of Clock. Omitted when zero.
	NS int `json:"ns,omitempty"`
}

// request is the trapper request envelope.
type request struct {
	Request string      `json:"request"`
	Data    []ItemValue `json:"data"`
}
