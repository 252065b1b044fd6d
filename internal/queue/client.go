package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Client sends requests to a Server and waits for the matching reply.
type Client struct {
	rdb    *redis.Client
	queue  string
	poll   time.Duration
	closed atomic.Bool
}

// NewClient returns a Client for queue. It does not own rdb.
func NewClient(rdb *redis.Client, queue string) *Client {
	return &Client{rdb: rdb, queue: queue, poll: defaultPoll}
}

// Call sends body and returns the reply body. body must be valid JSON.
// The wait ends with ErrTimeout at the ctx deadline.
func (c *Client) Call(ctx context.Context, body []byte) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}

	id := uuid.NewString()
	replyTo := ReplyKey(c.queue, id)
	payload, err := json.Marshal(Envelope{CorrelationID: id, ReplyTo: replyTo, Body: body})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	if err := c.rdb.LPush(ctx, c.queue, payload).Err(); err != nil {
		return nil, fmt.Errorf("LPUSH %s: %w", c.queue, err)
	}
	defer c.rdb.Del(context.WithoutCancel(ctx), replyTo)

	for {
		if err := ctx.Err(); err != nil {
			return nil, waitErr(err)
		}
		if c.closed.Load() {
			return nil, ErrClosed
		}
		res, err := c.rdb.BLPop(ctx, c.poll, replyTo).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, waitErr(ctx.Err())
			}
			return nil, fmt.Errorf("BLPOP %s: %w", replyTo, err)
		}

		var reply Envelope
		if err := json.Unmarshal([]byte(res[1]), &reply); err != nil || reply.CorrelationID != id {
			continue
		}
		return reply.Body, nil
	}
}

// Close makes pending and future calls return ErrClosed.
func (c *Client) Close() {
	c.closed.Store(true)
}

func waitErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return err
}
