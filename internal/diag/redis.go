package diag

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultBuffer  = 256
	publishTimeout = 2 * time.Second
	stampLayout    = "2006-01-02 : 15:04:05.0000"
)

type published struct {
	channel string
	payload string
}

// RedisSink publishes diagnostics on Redis Pub/Sub channels named
// <prefix>.<component>.<level>. Messages are queued in a bounded buffer and
// published by a background goroutine; when the buffer is full they are
// dropped.
type RedisSink struct {
	rdb       *redis.Client
	prefix    string
	component string
	instance  string
	now       func() time.Time

	mu      sync.RWMutex
	closed  bool
	msgs    chan published
	done    chan struct{}
	dropped atomic.Int64
}

// NewRedisSink starts the publisher goroutine. Call Close to stop it.
func NewRedisSink(rdb *redis.Client, prefix, component, instance string) *RedisSink {
	s := &RedisSink{
		rdb:       rdb,
		prefix:    prefix,
		component: component,
		instance:  instance,
		now:       time.Now,
		msgs:      make(chan published, defaultBuffer),
		done:      make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *RedisSink) Warn(msg string, keyvals ...any) {
	s.enqueue("warn", msg, keyvals)
}

func (s *RedisSink) Error(msg string, keyvals ...any) {
	s.enqueue("error", msg, keyvals)
}

// Dropped returns how many messages were discarded because the buffer was
// full or the sink was closed.
func (s *RedisSink) Dropped() int64 {
	return s.dropped.Load()
}

// Close flushes queued messages and stops the publisher.
func (s *RedisSink) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.msgs)
	s.mu.Unlock()
	<-s.done
}

// Channel returns the Pub/Sub channel used for the given level.
func (s *RedisSink) Channel(level string) string {
	return fmt.Sprintf("%s.%s.%s", s.prefix, s.component, level)
}

func (s *RedisSink) enqueue(level, msg string, keyvals []any) {
	p := published{
		channel: s.Channel(level),
		payload: fmt.Sprintf("%s - %s (%s)", s.now().Format(stampLayout), formatMessage(msg, keyvals), s.instance),
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.dropped.Add(1)
		return
	}
	select {
	case s.msgs <- p:
	default:
		s.dropped.Add(1)
	}
}

func (s *RedisSink) loop() {
	defer close(s.done)
	for p := range s.msgs {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		// Publish errors are swallowed; diagnostics are best effort.
		_ = s.rdb.Publish(ctx, p.channel, p.payload).Err()
		cancel()
	}
}

func formatMessage(msg string, keyvals []any) string {
	if len(keyvals) == 0 {
		return msg
	}
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(keyvals); i += 2 {
		b.WriteByte(' ')
		if i+1 < len(keyvals) {
			fmt.Fprintf(&b, "%v=%v", keyvals[i], keyvals[i+1])
		} else {
			fmt.Fprintf(&b, "%v", keyvals[i])
		}
	}
	return b.String()
}
