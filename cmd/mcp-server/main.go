// cmd/mcp-server/main.go: Standalone HTTP MCP server for linsolve
//
// Exposes linsolve tools as an HTTP endpoint for AI agent frameworks.
//
// Usage:
//   go run ./cmd/mcp-server -port 8080
//
// Settings come from LINSOLVE_* environment variables (LINSOLVE_SERVER_PORT,
// LINSOLVE_LOG_LEVEL, LINSOLVE_CACHE_SIZE, ...); flags given on the command
// line win.
//
// Tool call endpoint: POST /tool
// Solve endpoint:     POST /solve
// Schema endpoint:    GET  /schema
// Health endpoint:    GET  /health
// Metrics endpoint:   GET  /metrics
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/njchilds90/linsolve/internal/config"
	"github.com/njchilds90/linsolve/internal/logger"
	"github.com/njchilds90/linsolve/internal/server"
)

func main() {
	port := flag.Int("port", 0, "Port to listen on (overrides LINSOLVE_SERVER_PORT)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	logJSON := flag.Bool("log-json", false, "Emit logs as JSON")
	flag.Parse()

	overrides := map[string]any{}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			overrides["server.port"] = *port
		case "log-level":
			overrides["log.level"] = *logLevel
		case "log-json":
			overrides["log.json"] = *logJSON
		}
	})

	cfg, err := config.Load(overrides)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := logger.NewLogger(&logger.Config{
		Level:      logger.LogLevel(cfg.Log.Level),
		Output:     os.Stderr,
		JSON:       cfg.Log.JSON,
		TimeFormat: "15:04:05",
	})

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log logger.Logger) error {
	srv, err := server.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
