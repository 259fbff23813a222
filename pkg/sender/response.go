package sender

import (
	"fmt"
	"regexp"
	"strconv"
)

// infoPattern matches the summary line a trapper answers with, e.g.
// "processed: 2; failed: 0; total: 2; seconds spent: 0.000062".
// Old servers capitalize the field names.
var infoPattern = regexp.MustCompile(
	`[Pp]rocessed:\s+?(?P<processed>\d+);\s+?` +
		`[Ff]ailed:\s+?(?P<failed>\d+);\s+?` +
		`[Tt]otal:\s+?(?P<total>\d+);\s+?` +
		`[Ss]econds spent:\s+?(?P<time>\d+\.\d+)`)

// trapperReply is the raw JSON reply for one chunk.
type trapperReply struct {
	Response string `json:"response"`
	Info     string `json:"info"`
}

// ChunkResponse is the parsed server summary for one sent chunk.
type ChunkResponse struct {
	Processed    int
	Failed       int
	Total        int
	SecondsSpent float64

	// Chunk is the 1-based number of the chunk this summary answers.
	Chunk int
}

// parseInfo extracts the counters from a trapper info line.
func parseInfo(info string, chunk int) (ChunkResponse, error) {
	if info == "" {
		return ChunkResponse{}, fmt.Errorf("%w: empty info", ErrUnexpectedResponse)
	}
	m := infoPattern.FindStringSubmatch(info)
	if m == nil {
		return ChunkResponse{}, fmt.Errorf("%w: info %q", ErrUnexpectedResponse, info)
	}

	processed, _ := strconv.Atoi(m[1])
	failed, _ := strconv.Atoi(m[2])
	total, _ := strconv.Atoi(m[3])
	spent, _ := strconv.ParseFloat(m[4], 64)

	return ChunkResponse{
		Processed:    processed,
		Failed:       failed,
		Total:        total,
		SecondsSpent: spent,
		Chunk:        chunk,
	}, nil
}

// Response aggregates the per-node chunk summaries of one Send call.
type Response struct {
	Processed    int
	Failed       int
	Total        int
	SecondsSpent float64

	details map[string][]ChunkResponse
}

// add accumulates one chunk summary answered by the given node.
func (r *Response) add(node string, cr ChunkResponse) {
	r.Processed += cr.Processed
	r.Failed += cr.Failed
	r.Total += cr.Total
	r.SecondsSpent += cr.SecondsSpent

	if r.details == nil {
		r.details = map[string][]ChunkResponse{}
	}
	r.details[node] = append(r.details[node], cr)
}

// Details returns the chunk summaries grouped by the node that answered
// them, keyed by address:port.
func (r *Response) Details() map[string][]ChunkResponse {
	out := make(map[string][]ChunkResponse, len(r.details))
	for node, list := range r.details {
		out[node] = append([]ChunkResponse(nil), list...)
	}
	return out
}

// String formats the totals the way zabbix_sender prints them.
func (r *Response) String() string {
	return fmt.Sprintf("processed: %d; failed: %d; total: %d; seconds spent: %f",
		r.Processed, r.Failed, r.Total, r.SecondsSpent)
}
