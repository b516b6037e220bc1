package main

import (
	"context"
	"embed"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/comfortlab/comfortcast/internal/app"
	"github.com/comfortlab/comfortcast/pkg/util/logger"
)

// embeddedConfig embeds the application's YAML configuration, expanded with
// environment variables at startup.
//
//go:embed resources/application.yaml
var embeddedConfig []byte

// migrationsFS bundles the per-driver schema migrations into the binary.
//
//go:embed all:resources/migrations
var migrationsFS embed.FS

func main() {
	jobName := flag.String("job", app.JobMasterRefresh, "job to run (masterRefresh or batchInference)")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Warnf("Received signal '%v'. Attempting to stop the job...", sig)
		cancel()
	}()

	envFilePath := os.Getenv("ENV_FILE_PATH")
	if envFilePath == "" {
		envFilePath = ".env"
	}

	if err := app.RunApplication(ctx, envFilePath, *jobName, embeddedConfig, migrationsFS); err != nil {
		os.Exit(1)
	}
}
