package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newLogsCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logs [pattern...]",
		Short: "Print diagnostics published by aggregator instances",
		Long: `Subscribes to <log-channel>.<pattern> and prints every message as
"<channel> - <message>". Patterns use Redis glob syntax; "#" is accepted as
an alias for "*". Without arguments every channel is followed.`,
		Example: `  jobctl logs
  jobctl logs "Backend.warn" "*.error"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rdb, err := root.connect(ctx)
			if err != nil {
				return err
			}
			defer rdb.Close()

			sub := rdb.PSubscribe(ctx, channelPatterns(root.logChannel, args)...)
			defer sub.Close()
			if _, err := sub.Receive(ctx); err != nil {
				return fmt.Errorf("subscribe: %w", err)
			}

			out := cmd.OutOrStdout()
			msgs := sub.Channel()
			for {
				select {
				case <-ctx.Done():
					return nil
				case msg, ok := <-msgs:
					if !ok {
						return nil
					}
					fmt.Fprintf(out, "%s - %s\n", msg.Channel, msg.Payload)
				}
			}
		},
	}
}

// channelPatterns prefixes every binding with the channel root.
func channelPatterns(prefix string, bindings []string) []string {
	if len(bindings) == 0 {
		bindings = []string{"#"}
	}
	out := make([]string, 0, len(bindings))
	for _, b := range bindings {
		out = append(out, prefix+"."+strings.ReplaceAll(b, "#", "*"))
	}
	return out
}
