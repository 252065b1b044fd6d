package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"jobmate/aggregator-service/internal/logger"
)

const (
	defaultPoll     = time.Second
	errorBackoff    = time.Second
	defaultTimeout  = 5 * time.Minute
	defaultReplyTTL = 10 * time.Minute
)

// Handler answers one request body. It must always return a valid JSON
// document.
type Handler func(ctx context.Context, body []byte) []byte

// ServerOptions tunes a Server. Zero values take the defaults.
type ServerOptions struct {
	RequestTimeout time.Duration // deadline for one handler call, default 5m
	ReplyTTL       time.Duration // expiry of reply lists, default 10m
	Poll           time.Duration // BRPOP block time, default 1s
}

// Server consumes a request queue one message at a time.
type Server struct {
	rdb     *redis.Client
	queue   string
	handler Handler
	log     *logger.Logger
	opts    ServerOptions
}

// NewServer wires a Server for queue.
func NewServer(rdb *redis.Client, queue string, h Handler, log *logger.Logger, opts ServerOptions) *Server {
	if log == nil {
		log = logger.Nop()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultTimeout
	}
	if opts.ReplyTTL <= 0 {
		opts.ReplyTTL = defaultReplyTTL
	}
	if opts.Poll <= 0 {
		opts.Poll = defaultPoll
	}
	return &Server{rdb: rdb, queue: queue, handler: h, log: log.With("queue", queue), opts: opts}
}

// Run blocks until ctx is cancelled. Redis errors are logged and retried.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("waiting for requests")
	for {
		if ctx.Err() != nil {
			return nil
		}
		res, err := s.rdb.BRPop(ctx, s.opts.Poll, s.queue).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.log.Error("BRPOP failed", "err", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(errorBackoff):
			}
			continue
		}
		// res is [key, value].
		s.handle(ctx, []byte(res[1]))
	}
}

func (s *Server) handle(ctx context.Context, payload []byte) {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		env.CorrelationID, env.ReplyTo = recoverRouting(payload)
		env.Body = nil
		if env.ReplyTo == "" {
			s.log.Warn("dropping undecodable request with no reply address", "err", err, "bytes", len(payload))
			return
		}
		s.log.Warn("request envelope does not decode, answering anyway", "err", err, "correlationId", env.CorrelationID)
	}
	if env.ReplyTo == "" {
		s.log.Warn("request has no reply address, processing without reply", "correlationId", env.CorrelationID)
	}

	hctx, cancel := context.WithTimeout(ctx, s.opts.RequestTimeout)
	body := s.handler(hctx, env.Body)
	cancel()

	if env.ReplyTo == "" {
		return
	}
	if err := s.reply(ctx, env, body); err != nil {
		s.log.Error("reply failed", "err", err, "correlationId", env.CorrelationID, "replyTo", env.ReplyTo)
	}
}

func (s *Server) reply(ctx context.Context, req Envelope, body []byte) error {
	out, err := json.Marshal(Envelope{CorrelationID: req.CorrelationID, Body: body})
	if err != nil {
		return err
	}
	// Answer even when shutdown has begun.
	ctx = context.WithoutCancel(ctx)
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LPush(ctx, req.ReplyTo, out)
		p.Expire(ctx, req.ReplyTo, s.opts.ReplyTTL)
		return nil
	})
	return err
}
