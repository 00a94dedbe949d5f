package realtime

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Frame is one SSE message (spec §6.2). A Comment frame (no event/data)
// renders as a bare ": ping" line, matching the heartbeat format the
// original implementation emits literally so existing SSE client
// parsers — which only special-case lines starting with ":" — keep
// working (SPEC_FULL §12.4).
type Frame struct {
	Event   string
	ID      string
	RetryMs int
	Data    any
	Comment string
}

// revalidateFrame builds the reserved revalidation frame (spec §6.2).
func revalidateFrame(keys []string) Frame {
	return Frame{Event: "revalidate", Data: revalidatePayload{Keys: keys}}
}

// reconnectFrame is the synthetic frame sent when a client reconnects
// with a Last-Event-ID header (spec §6.3, SPEC_FULL §12.3).
func reconnectFrame() Frame {
	return Frame{Event: "reconnect", Data: map[string]bool{"reconnected": true}}
}

func heartbeatFrame() Frame {
	return Frame{Comment: "ping"}
}

type revalidatePayload struct {
	Keys []string `json:"keys"`
}

// Encode renders the frame as wire-format SSE bytes: event:/id:/retry:/
// data: lines terminated by a blank line, or a bare comment line for
// heartbeats. data is always a single escaped line (spec §6.2).
func (f Frame) Encode() ([]byte, error) {
	var buf bytes.Buffer

	if f.Comment != "" {
		buf.WriteString(": ")
		buf.WriteString(f.Comment)
		buf.WriteString("\n\n")
		return buf.Bytes(), nil
	}

	if f.Event != "" {
		buf.WriteString("event: ")
		buf.WriteString(f.Event)
		buf.WriteByte('\n')
	}
	if f.ID != "" {
		buf.WriteString("id: ")
		buf.WriteString(f.ID)
		buf.WriteByte('\n')
	}
	if f.RetryMs > 0 {
		buf.WriteString("retry: ")
		buf.WriteString(itoa(f.RetryMs))
		buf.WriteByte('\n')
	}
	if f.Data != nil {
		encoded, err := json.Marshal(f.Data)
		if err != nil {
			return nil, err
		}
		// data must be a single line; JSON marshaling never emits raw
		// newlines, but guard anyway since user-supplied frame data
		// could contain a pre-escaped string with literal newlines.
		line := strings.ReplaceAll(string(encoded), "\n", "\\n")
		buf.WriteString("data: ")
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')

	return buf.Bytes(), nil
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var digits [20]byte
	i := len(digits)
	for n > 0 {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		digits[i] = '-'
	}
	return string(digits[i:])
}
