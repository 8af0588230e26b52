package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marketlens-ai/marketlens/pkg/adapters/mart"
	"github.com/marketlens-ai/marketlens/pkg/agent"
	"github.com/marketlens-ai/marketlens/pkg/config"
	"github.com/marketlens-ai/marketlens/pkg/handlers"
	"github.com/marketlens-ai/marketlens/pkg/llm"
	"github.com/marketlens-ai/marketlens/pkg/logging"
	"github.com/marketlens-ai/marketlens/pkg/mcp"
	"github.com/marketlens-ai/marketlens/pkg/mcp/tools"
	"github.com/marketlens-ai/marketlens/ui"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat UI, HTTP API, and MCP endpoint",
	Long: `Starts the HTTP server: the embedded chat front-end at /, the JSON API
under /api/, and the MCP streamable HTTP transport at /mcp. The chat agent
answers questions by generating read-only SQL against the mart.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(Version)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	martDB, err := mart.Connect(ctx, &cfg.Mart, logger)
	if err != nil {
		return fmt.Errorf("connect mart: %w", err)
	}
	defer martDB.Close()

	schema := mart.NewSchemaExtractor(martDB, logger)
	query := mart.NewQueryExecutor(martDB, logger)

	toolClient, err := llm.NewToolClient(&llm.Config{
		Endpoint: cfg.LLM.Endpoint,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
	}, logger)
	if err != nil {
		return fmt.Errorf("create llm client: %w", err)
	}

	sqlAgent := agent.New(&agent.Config{
		Caller:      toolClient,
		Executor:    agent.NewMartToolExecutor(schema, query, logger),
		Schema:      schema,
		Temperature: cfg.LLM.Temperature,
		Logger:      logger,
	})

	mux := http.NewServeMux()

	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewChatHandler(sqlAgent, logger).RegisterRoutes(mux)
	handlers.NewStatsHandler(query, logger).RegisterRoutes(mux)

	questionsHandler, err := handlers.NewQuestionsHandler(cfg.QuestionsPath, logger)
	if err != nil {
		return fmt.Errorf("load sample questions: %w", err)
	}
	questionsHandler.RegisterRoutes(mux)

	mcpServer := mcp.NewServer("marketlens", cfg.Version, logger)
	tools.RegisterAskQuestionTool(mcpServer.MCP(), sqlAgent)
	tools.RegisterGetStatsTool(mcpServer.MCP(), query)
	tools.RegisterHealthTool(mcpServer.MCP(), cfg.Version)
	mux.Handle("/mcp", mcpServer.NewStreamableHTTPServer())

	dist, err := fs.Sub(ui.DistFS(), "dist")
	if err != nil {
		return fmt.Errorf("mount ui assets: %w", err)
	}
	mux.Handle("/", http.FileServer(http.FS(dist)))

	srv := &http.Server{
		Addr:              cfg.BindAddr + ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting marketlens",
			zap.String("addr", srv.Addr),
			zap.String("version", cfg.Version),
			zap.String("env", cfg.Env),
			zap.String("llm_model", toolClient.GetModel()),
			zap.String("llm_endpoint", toolClient.GetEndpoint()),
			zap.String("config_fingerprint", cfg.Fingerprint()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}
