// Package main provides the config-secrets operator CLI.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/awnumar/memguard"
	"github.com/urfave/cli/v3"
)

func main() {
	memguard.CatchInterrupt()
	defer memguard.Purge()

	cmd := &cli.Command{
		Name:     "config-secrets",
		Usage:    "Manage encrypted credentials in crash-safe settings files",
		Version:  "1.0.0",
		Commands: getCommands(),
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		memguard.SafeExit(1)
	}
}
