package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"crimewatch/internal/app"
	"crimewatch/pkg/config"
	"crimewatch/pkg/logger"
	"crimewatch/pkg/shutdown"
)

// build metadata - set via ldflags during build/release
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	_ = godotenv.Load(".env")
	flags := config.ParseConfigFlags()

	eff, err := config.LoadEffective(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.InitWithLevel(eff.Config.Logging.Level)

	a, err := app.New(eff, version, commit, buildDate)
	if err != nil {
		logger.Error("startup_failed", "error", err)
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := shutdown.SetupSignalHandler(context.Background())
	defer cancel()

	if err := a.Run(ctx); err != nil {
		if dump, derr := shutdown.WriteCrashDump(eff.DBPath, "server_error", err); derr == nil {
			logger.Error("server_crashed", "error", err, "dump", dump)
		} else {
			logger.Error("server_crashed", "error", err)
		}
		os.Exit(1)
	}
	logger.Info("server_stopped")
}
