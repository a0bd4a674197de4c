package main

import (
	"FieldScribe/internal/cli/commands"
	"FieldScribe/internal/config"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// заполняются через -ldflags при сборке
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// env + флаги; команда и её аргументы остаются в flag.Args()
	cfg := config.NewConfig()
	if cfg.Version {
		fmt.Printf("FieldScribe CLI\nVersion: %s\nBuild date: %s\nServer: %s\n", version, buildDate, cfg.ServerURL)
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return commands.Dispatch(ctx, cfg, flag.Args())
}
