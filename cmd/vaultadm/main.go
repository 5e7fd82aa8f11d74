package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/client/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp(os.Stdin, os.Stdout)
	code := cli.Execute(ctx, app, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}
