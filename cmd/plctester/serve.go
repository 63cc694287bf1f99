package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jorik41/plctester/internal/config"
	"github.com/jorik41/plctester/internal/s7"
	"github.com/jorik41/plctester/internal/s7/sim"
	"github.com/jorik41/plctester/internal/storage"
	"github.com/jorik41/plctester/internal/system"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveFlags struct {
	configPath string
	useSim     bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the plan management and execution service",
	RunE:  serve,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.configPath, "config", "configs/config.yaml", "path to config file")
	serveCmd.Flags().BoolVar(&serveFlags.useSim, "sim", false, "execute runs against the in-memory simulator")
}

func serve(cmd *cobra.Command, args []string) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg, err := config.Load(serveFlags.configPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	logger.Info("Config loaded successfully")

	db, err := storage.NewPostgresClient(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	logger.Info("Database connected successfully")

	lifecycle := system.NewLifecycleManager(db, cfg, logger)

	if serveFlags.useSim {
		// One shared simulator so state carries across runs, like a PLC.
		port := sim.New()
		lifecycle.RunService().SetPortFactory(func() s7.MemoryPort { return port })
		logger.Info("Runs will execute against the in-memory simulator")
	}

	if err := lifecycle.Start(); err != nil {
		logger.Fatal("Failed to start service", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	logger.Info("Shutdown signal received")

	if err := lifecycle.Shutdown(context.Background()); err != nil {
		logger.Error("Shutdown failed", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("Service stopped successfully")
	return nil
}
