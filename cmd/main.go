// jobmate-aggregator-service
//
// Job-listing aggregator. Consumes RequestSpecifications from a Redis
// request queue, polls the requested job boards, and replies with the
// filtered listings. Also exposes:
//   - POST /search, GET /health, GET /metrics over HTTP
//   - the grpc.health.v1 service when GRPC_PORT is set
//   - standing searches archived to PostgreSQL when DATABASE_URL is set
//
// Diagnostics are published on Redis Pub/Sub under LOG_CHANNEL.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"jobmate/aggregator-service/internal/api"
	"jobmate/aggregator-service/internal/config"
	"jobmate/aggregator-service/internal/db"
	"jobmate/aggregator-service/internal/diag"
	"jobmate/aggregator-service/internal/grpcserver"
	"jobmate/aggregator-service/internal/logger"
	"jobmate/aggregator-service/internal/metrics"
	"jobmate/aggregator-service/internal/queue"
	"jobmate/aggregator-service/internal/scheduler"
	"jobmate/aggregator-service/internal/scraper"
	"jobmate/aggregator-service/internal/store"
)

const version = "1.0.0"

// diagComponent is the component segment of diagnostic channel names.
const diagComponent = "Backend"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", false).Fatal("config error", "err", err)
	}

	instanceID := uuid.NewString()
	log := logger.New(cfg.LogLevel, cfg.LogDevelopment).With(
		"service", grpcserver.ServiceName, "instance", instanceID)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Info("connecting to Redis")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal("redis", "err", err)
	}
	defer rdb.Close()
	log.Info("Redis connected")

	redisSink := diag.NewRedisSink(rdb, cfg.LogChannel, diagComponent, instanceID)
	defer redisSink.Close()
	sink := diag.Multi(log, redisSink)

	// ── Metrics ──────────────────────────────────────────────────────────────
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// ── Worker ───────────────────────────────────────────────────────────────
	worker := scraper.NewService(scraper.Options{
		Fetcher: scraper.NewHTTPFetcher(cfg.UserAgent, cfg.FetchTimeout, cfg.FetchRatePerSecond),
		Diag:    sink,
		Log:     log,
		Metrics: m,
		Dispatch: scraper.DispatcherOptions{
			Concurrency:     cfg.FanoutConcurrency,
			IsolateFailures: cfg.IsolateFailures,
		},
	})

	// ── PostgreSQL + standing searches (optional) ─────────────────────────────
	if cfg.DatabaseURL != "" {
		log.Info("connecting to PostgreSQL")
		pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("postgres", "err", err)
		}
		defer pool.Close()
		log.Info("PostgreSQL connected")

		st := store.New(pool, log)
		if err := st.EnsureSchema(ctx); err != nil {
			log.Fatal("schema", "err", err)
		}

		sched := scheduler.New(st, st, worker, log, cfg.StandingRefresh)
		if err := sched.Start(ctx); err != nil {
			log.Fatal("scheduler", "err", err)
		}
		defer sched.Stop()
	} else {
		log.Info("DATABASE_URL not set, standing searches disabled")
	}

	// ── gRPC health (optional) ───────────────────────────────────────────────
	var health *grpcserver.Server
	if cfg.GRPCPort != "" {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
		if err != nil {
			log.Fatal("gRPC listen", "err", err)
		}
		health = grpcserver.New(log)
		go func() {
			if err := health.Serve(lis); err != nil {
				log.Error("gRPC server error", "err", err)
			}
		}()
	}

	// ── Request queue ────────────────────────────────────────────────────────
	qs := queue.NewServer(rdb, cfg.RequestQueue, worker.Handle, log, queue.ServerOptions{
		RequestTimeout: cfg.RequestTimeout,
		ReplyTTL:       cfg.ReplyTTL,
	})
	queueDone := make(chan struct{})
	go func() {
		defer close(queueDone)
		if health != nil {
			health.SetServing(true)
			defer health.SetServing(false)
		}
		if err := qs.Run(ctx); err != nil {
			log.Error("queue server error", "err", err)
		}
	}()

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	api.NewHandler(worker, m, log, version).RegisterRoutes(mux)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		// /search can poll every site; allow the full request budget.
		WriteTimeout: cfg.RequestTimeout + 10*time.Second,
	}

	go func() {
		log.Info("listening", "version", version, "port", cfg.Port, "queue", cfg.RequestQueue)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "err", err)
			stop()
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown error", "err", err)
	}
	select {
	case <-queueDone:
	case <-shutdownCtx.Done():
		log.Warn("queue server did not stop in time")
	}
	if health != nil {
		health.Stop()
	}
	log.Info("stopped")
}
