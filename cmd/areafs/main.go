package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/brettbedarf/areafs/internal/cli"
	"github.com/brettbedarf/areafs/internal/util"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCmd(os.Stdin, os.Stdout).ExecuteContext(ctx); err != nil {
		logger := util.GetLogger("main")
		logger.Error().Err(err).Msg("Command failed")
		stop()
		os.Exit(1)
	}
}
