package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/snonux/ankismart/internal/cli"
	"codeberg.org/snonux/ankismart/internal/processor"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	flags := cli.NewFlags()
	rootCmd := cli.CreateRootCommand(flags, func(ctx context.Context, s *cli.Settings) (cli.Runner, error) {
		return processor.New(ctx, s)
	})

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
