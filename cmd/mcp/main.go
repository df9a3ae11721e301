package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/medbench/medbench/internal/mcpadapter"
	"github.com/medbench/medbench/internal/setup"
	"github.com/medbench/medbench/internal/setup/logger"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logging
	log.Logger = logger.New(os.Getenv("LOG_LEVEL"))

	// Load env
	_ = godotenv.Load()

	// Graceful shutdown on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load Config
	cfg := setup.LoadConfig()

	// Wire dependencies
	deps, err := setup.Wire(ctx, cfg, &log.Logger)
	if err != nil {
		log.Error().Err(err).Msg("Unable to load dependencies")
		os.Exit(1)
	}

	// Create MCP Server
	server := createMCPServer(deps)

	// Run over stdio
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		// EOF / "server is closing" is expected when stdin closes
		if errors.Is(err, io.EOF) || strings.Contains(err.Error(), "server is closing") {
			log.Debug().Err(err).Msg("MCP server stopped")
			return
		}
		log.Error().Err(err).Msg("Failed to run mcp server")
		os.Exit(1)
	}
}

func createMCPServer(deps *setup.Dependencies) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "medbench",
			Version: "1.0.0",
		}, nil,
	)

	// Add Tools
	mcp.AddTool(server, &mcp.Tool{
		Name:        "benchmark_question",
		Description: "Send a medical question to the benchmarked models and record their responses",
	}, mcpadapter.NewBenchmarkHandler(deps.Orchestrator))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "score_conversation",
		Description: "Score every unscored model response of a conversation against the safety rubric",
	}, mcpadapter.NewScoreHandler(deps.Orchestrator))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "aggregate_results",
		Description: "Compute per-model score statistics and the recommended model(s) for a conversation",
	}, mcpadapter.NewAggregateHandler(deps.Orchestrator))

	return server
}
