package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gobarber/gobarber-client/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := &cli.CLI{Stdout: os.Stdout, Stderr: os.Stderr}
	code := c.Run(ctx, os.Args[1:])

	stop()
	os.Exit(code)
}
