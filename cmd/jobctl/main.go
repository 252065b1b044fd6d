// jobctl talks to a running aggregator-service over Redis: it sends
// aggregation requests through the request queue and tails the
// diagnostics channels.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"jobmate/aggregator-service/internal/db"
)

type rootOptions struct {
	redisURL   string
	queue      string
	logChannel string
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "jobctl",
		Short:         "Query and watch the job-listing aggregator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.redisURL, "redis-url",
		envOr("REDIS_URL", "redis://localhost:6379/0"), "Redis connection URL")
	cmd.PersistentFlags().StringVar(&opts.queue, "queue",
		envOr("REQUEST_QUEUE", "scratchjobs_queue"), "request queue name")
	cmd.PersistentFlags().StringVar(&opts.logChannel, "log-channel",
		envOr("LOG_CHANNEL", "scratchjobs_log"), "diagnostics channel prefix")

	cmd.AddCommand(
		newRequestCommand(opts),
		newLogsCommand(opts),
	)
	return cmd
}

func (o *rootOptions) connect(ctx context.Context) (*redis.Client, error) {
	rdb, err := db.NewRedisClient(ctx, o.redisURL)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return rdb, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
