package system

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jorik41/plctester/internal/api/rest"
	"github.com/jorik41/plctester/internal/api/websocket"
	"github.com/jorik41/plctester/internal/auth"
	"github.com/jorik41/plctester/internal/config"
	"github.com/jorik41/plctester/internal/runner"
	"github.com/jorik41/plctester/internal/storage"
	"go.uber.org/zap"
)

// LifecycleManager wires the service together and owns startup and
// shutdown order.
type LifecycleManager struct {
	config      *config.Config
	storage     *storage.PostgresClient
	authService *auth.AuthService
	wsHub       *websocket.Hub
	runService  *runner.Service
	restServer  *rest.Server
	logger      *zap.Logger

	stateMu   sync.RWMutex
	state     SystemState
	startedAt time.Time

	shutdownOnce sync.Once
}

func NewLifecycleManager(store *storage.PostgresClient, cfg *config.Config, logger *zap.Logger) *LifecycleManager {
	authService := auth.NewAuthService(store, cfg.Auth)
	wsHub := websocket.NewHub(logger)
	runService := runner.NewService(store, cfg, websocket.NewEventSink(wsHub), logger)
	restServer := rest.NewServer(cfg, store, runService, logger, wsHub, authService)

	return &LifecycleManager{
		config:      cfg,
		storage:     store,
		authService: authService,
		wsHub:       wsHub,
		runService:  runService,
		restServer:  restServer,
		logger:      logger,
		state:       StateInitializing,
	}
}

// RunService exposes the run service, e.g. to swap in a simulator port
// factory.
func (lm *LifecycleManager) RunService() *runner.Service {
	return lm.runService
}

// Start brings the service up: event hub first, then the HTTP surface.
func (lm *LifecycleManager) Start() error {
	lm.logger.Info("Starting plctester service")
	lm.setState(StateInitializing)

	go lm.wsHub.Run()

	if err := lm.restServer.Start(); err != nil {
		lm.setState(StateError)
		return fmt.Errorf("failed to start REST API: %w", err)
	}

	lm.stateMu.Lock()
	lm.startedAt = time.Now()
	lm.stateMu.Unlock()
	lm.setState(StateRunning)

	lm.logger.Info("Service started",
		zap.Int("http_port", lm.config.Server.HTTPPort))
	return nil
}

// Shutdown stops the HTTP surface and closes the database pool. Idempotent.
func (lm *LifecycleManager) Shutdown(ctx context.Context) error {
	var err error
	lm.shutdownOnce.Do(func() {
		lm.setState(StateShuttingDown)

		shutdownCtx, cancel := context.WithTimeout(ctx, lm.config.Server.ShutdownTimeout)
		defer cancel()

		if serr := lm.restServer.Shutdown(shutdownCtx); serr != nil {
			lm.logger.Error("REST shutdown failed", zap.Error(serr))
			err = serr
		}

		lm.storage.Close()
		lm.logger.Info("Service stopped")
	})
	return err
}

// GetCurrentStatus returns a status snapshot.
func (lm *LifecycleManager) GetCurrentStatus() SystemStatus {
	lm.stateMu.RLock()
	defer lm.stateMu.RUnlock()
	return SystemStatus{
		State:            lm.state,
		ConnectedClients: lm.wsHub.GetClientCount(),
		StartedAt:        lm.startedAt,
	}
}

func (lm *LifecycleManager) setState(state SystemState) {
	lm.stateMu.Lock()
	defer lm.stateMu.Unlock()
	lm.state = state
}
