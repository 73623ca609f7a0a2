// secgraph-server runs the security graph analysis engine over HTTP,
// backed by the organization database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/aegisops/secgraph/pkg/api"
	"github.com/aegisops/secgraph/pkg/config"
	"github.com/aegisops/secgraph/pkg/graph"
	"github.com/aegisops/secgraph/pkg/health"
	"github.com/aegisops/secgraph/pkg/inventory"
	"github.com/aegisops/secgraph/pkg/logging"
	"github.com/aegisops/secgraph/pkg/metrics"
	"github.com/aegisops/secgraph/pkg/server"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "secgraph-server: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(cfg.LogLevel))
	logging.SetDefaultLogger(logger)

	if cfg.DatabaseURL == "" {
		return fmt.Errorf("database_url is required (SECGRAPH_DATABASE_URL)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	source, err := inventory.NewPostgresSource(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer source.Close()

	checker := health.NewChecker()
	checker.RegisterCheck("database", health.PingCheck(source.Ping))

	srv := api.NewServer(
		graph.NewBuilder(source, logger.With(logging.Component("builder"))),
		logger,
		metrics.NewRegistry(),
		checker,
		api.Options{
			AnalysisTimeout: cfg.AnalysisTimeout(),
			Workers:         cfg.Workers,
			DecayFactor:     cfg.DecayFactor,
			Version:         version,
		},
	)

	addr := fmt.Sprintf(":%d", cfg.Port)
	return server.NewGracefulServer(addr, srv.Routes(), logger).Start()
}
