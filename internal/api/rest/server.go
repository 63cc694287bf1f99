package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jorik41/plctester/internal/api/websocket"
	"github.com/jorik41/plctester/internal/auth"
	"github.com/jorik41/plctester/internal/config"
	"github.com/jorik41/plctester/internal/runner"
	"github.com/jorik41/plctester/internal/storage"
	"go.uber.org/zap"
)

// Server is the HTTP surface: plan management, run triggering and the live
// event stream.
type Server struct {
	router      *gin.Engine
	storage     *storage.PostgresClient
	runs        *runner.Service
	logger      *zap.Logger
	server      *http.Server
	wsHub       *websocket.Hub
	authService *auth.AuthService
}

func NewServer(cfg *config.Config, store *storage.PostgresClient, runs *runner.Service,
	logger *zap.Logger, wsHub *websocket.Hub, authService *auth.AuthService) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		router:      gin.New(),
		storage:     store,
		runs:        runs,
		logger:      logger,
		wsHub:       wsHub,
		authService: authService,
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("REST server failed", zap.Error(err))
		}
	}()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down REST API server")
	return s.server.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	s.router.Use(gin.Recovery())
	s.router.Use(LoggerMiddleware(s.logger))
	s.router.Use(CORSMiddleware())

	s.router.GET("/health", s.healthCheck)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/auth/login", s.login)

		// Plan management. Reads and runs are for operators, mutation is
		// admin only.
		plans := v1.Group("/plans")
		plans.Use(s.authService.AuthMiddleware())
		{
			plans.GET("", auth.RequireRole(auth.RoleOperator), s.listPlans)
			plans.GET("/:id", auth.RequireRole(auth.RoleOperator), s.getPlan)
			plans.GET("/:id/runs", auth.RequireRole(auth.RoleOperator), s.listRuns)
			plans.POST("/:id/run", auth.RequireRole(auth.RoleOperator), s.startRun)

			plans.POST("", auth.RequireRole(auth.RoleAdmin), s.createPlan)
			plans.PUT("/:id", auth.RequireRole(auth.RoleAdmin), s.updatePlan)
			plans.DELETE("/:id", auth.RequireRole(auth.RoleAdmin), s.deletePlan)
		}

		runs := v1.Group("/runs")
		runs.Use(s.authService.AuthMiddleware())
		runs.Use(auth.RequireRole(auth.RoleOperator))
		{
			runs.GET("/:id", s.getRun)
			runs.GET("/:id/report", s.getRunReport)
			runs.GET("/:id/cases", s.getRunCases)
		}

		// WebSocket: token is checked before the upgrade.
		v1.GET("/ws/live", s.wsLiveConnection)
	}
}

func (s *Server) wsLiveConnection(c *gin.Context) {
	validator := websocket.TokenValidatorFunc(func(token string) error {
		_, err := s.authService.ValidateToken(token)
		return err
	})
	websocket.ServeWs(s.wsHub, validator, c.Writer, c.Request)
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}
