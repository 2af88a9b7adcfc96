package main

import (
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cantina/internal/api"
	"cantina/internal/assistant"
	"cantina/internal/database"
	"cantina/internal/generation"
	"cantina/internal/interpreter"
	"cantina/internal/monitoring"
	"cantina/internal/session"
)

// serveCmd runs the API, the metrics server and the background workers
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ordering API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		return err
	}
	seeded, err := database.EnsureMenu(ctx, db, cfg.Database.MenuFile)
	if err != nil {
		return err
	}
	if seeded > 0 {
		log.Info("Seeded menu catalog", zap.Int("items", seeded))
	}

	in, err := loadInterpreter(cfg.Interpreter)
	if err != nil {
		return fmt.Errorf("failed to load interpreter rules: %w", err)
	}

	gen, err := generation.New(cfg.LLM)
	if err != nil {
		return err
	}

	metrics := monitoring.NewMetricsCollector()
	sessions := session.NewStore(cfg.Session.IdleTimeout, log, metrics)
	catalog := database.NewMenuRepository(db)
	orders := database.NewOrderRepository(db)

	bot := assistant.New(in, catalog, gen,
		assistant.WithArchive(orders),
		assistant.WithMetrics(metrics),
		assistant.WithLogger(log),
	)

	server := api.NewServer(bot, sessions, catalog,
		api.WithMetrics(metrics),
		api.WithLogger(log),
		api.WithOrderHistory(orders),
		api.WithJWTSecret(cfg.Auth.JWTSecret),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Run(gctx, fmt.Sprintf(":%d", cfg.Server.Port), cfg.Server.ShutdownTimeout)
	})

	if cfg.Server.MetricsPort > 0 {
		g.Go(func() error {
			metricsRouter := gin.New()
			metricsRouter.GET("/metrics", gin.WrapH(metrics.Handler()))
			srv := &http.Server{
				Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
				Handler: metricsRouter,
			}
			return api.Serve(gctx, srv, cfg.Server.ShutdownTimeout, log.Named("metrics"))
		})
	}

	g.Go(func() error {
		return sessions.Run(gctx, cfg.Session.SweepInterval)
	})

	if cfg.Interpreter.WatchRules && cfg.Interpreter.RulesFile != "" {
		g.Go(func() error {
			return interpreter.WatchRules(gctx, cfg.Interpreter.RulesFile, log, bot.SetInterpreter)
		})
	}

	log.Info("Cantina started",
		zap.Int("port", cfg.Server.Port),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("database", cfg.Database.Driver),
	)

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		return err
	}
	log.Info("Shut down cleanly")
	return nil
}
