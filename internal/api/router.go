package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mediafold/mediafold/internal/health"
	"github.com/mediafold/mediafold/internal/library"
	"github.com/mediafold/mediafold/internal/metrics"
	"github.com/mediafold/mediafold/internal/normalize"
	"github.com/mediafold/mediafold/internal/service"
)

// Server represents the REST API server
type Server struct {
	router      *gin.Engine
	engine      *normalize.Engine
	prefs       normalize.Preferences
	workRepo    *library.WorkRepository
	healthStore health.Store
	enricher    *service.Enricher // Optional: nil when no authority is configured
	metrics     *metrics.Metrics  // Optional
}

// NewServer creates a new API server
func NewServer(
	engine *normalize.Engine,
	prefs normalize.Preferences,
	workRepo *library.WorkRepository,
	healthStore health.Store,
	enricher *service.Enricher, // Can be nil
	m *metrics.Metrics, // Can be nil
) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		router:      gin.New(),
		engine:      engine,
		prefs:       prefs,
		workRepo:    workRepo,
		healthStore: healthStore,
		enricher:    enricher,
		metrics:     m,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.router.Use(gin.Recovery())

	// Logging middleware
	s.router.Use(func(c *gin.Context) {
		c.Next()
		slog.Info("API request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
		)
	})

	// CORS for development
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.healthz)

	api := s.router.Group("/api/v1")

	// Normalization
	api.POST("/normalize", s.normalizeBatch)

	// Works
	api.GET("/works", s.listWorks)
	api.GET("/works/:id", s.getWork)
	api.POST("/works/:id/enrich", s.enrichWork)
	api.POST("/works/enrich", s.enrichAll)

	// Variant health reports from the playback collaborator
	api.POST("/variants/dead", s.reportDeadVariant)
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Error response helper
func errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
