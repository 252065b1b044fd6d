// Package queue carries aggregation requests and their replies over Redis
// lists. Requests are LPUSHed onto a named queue and consumed with BRPOP;
// each reply goes to the per-request list named in the envelope.
package queue

import (
	"bytes"
	"encoding/json"
	"errors"
)

var (
	// ErrTimeout is returned by Client.Call when no reply arrives before
	// the context deadline.
	ErrTimeout = errors.New("queue: timed out waiting for reply")
	// ErrClosed is returned by Client.Call after Close.
	ErrClosed = errors.New("queue: client closed")
)

// Envelope wraps a request or reply body with its routing data.
type Envelope struct {
	CorrelationID string          `json:"correlationId"`
	ReplyTo       string          `json:"replyTo,omitempty"`
	Body          json.RawMessage `json:"body"`
}

// ReplyKey returns the reply list used for correlation id on queue.
func ReplyKey(queue, correlationID string) string {
	return queue + ".reply." + correlationID
}

// recoverRouting reads correlationId and replyTo from the top level of a
// payload that failed to decode as a whole. It stops at the first
// malformed value, so keys appearing after a broken body are lost.
func recoverRouting(payload []byte) (correlationID, replyTo string) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return "", ""
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return
		}
		key, ok := tok.(string)
		if !ok {
			return
		}
		switch key {
		case "correlationId":
			if err := dec.Decode(&correlationID); err != nil {
				return
			}
		case "replyTo":
			if err := dec.Decode(&replyTo); err != nil {
				return
			}
		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return
			}
		}
	}
	return
}
