package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"surfscout/config"
	"surfscout/internal/storage"
	"surfscout/internal/weather"
	"surfscout/internal/windfield"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Server struct {
	router  *gin.Engine
	server  *http.Server
	db      *storage.Database
	builder *windfield.Builder
	pool    *windfield.Pool
	tides   weather.TideSource
	cfg     *config.Config
	port    int
}

type ServerConfig struct {
	Port     int
	Database *storage.Database
	Builder  *windfield.Builder
	Pool     *windfield.Pool
	Tides    weather.TideSource // nil when the provider has no tide data
	Config   *config.Config
}

func NewServer(cfg ServerConfig) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(requestID())

	s := &Server{
		router:  router,
		db:      cfg.Database,
		builder: cfg.Builder,
		pool:    cfg.Pool,
		tides:   cfg.Tides,
		cfg:     cfg.Config,
		port:    cfg.Port,
	}

	s.setupRoutes()
	return s
}

// requestID tags every request with an id for log correlation.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthHandler)

	api := s.router.Group("/api")

	users := api.Group("/users")
	{
		users.POST("/register", s.registerHandler)
		users.POST("/login", s.loginHandler)
		users.GET("", s.authRequired(), s.listUsersHandler)
	}

	spots := api.Group("/spots", s.authRequired())
	{
		spots.GET("", s.listSpotsHandler)
		spots.POST("", s.adminRequired(), s.createSpotHandler)
		spots.PUT("/:id/rename", s.adminRequired(), s.renameSpotHandler)
		spots.PUT("/:id/windfetcharea", s.adminRequired(), s.setWindFetchAreaHandler)
	}

	sessions := api.Group("/sessions", s.authRequired())
	{
		sessions.POST("", s.createSessionHandler)
		sessions.GET("/search", s.searchSessionsHandler)
	}

	connections := api.Group("/userconnections", s.authRequired())
	{
		connections.GET("/pending", s.pendingConnectionsHandler)
		connections.POST("/newrequest", s.newConnectionRequestHandler)
		connections.PUT("/accept", s.acceptConnectionHandler)
		connections.PUT("/reject", s.rejectConnectionHandler)
	}

	planned := api.Group("/plannedsessions", s.authRequired())
	{
		planned.GET("/sessionsofuser", s.plannedSessionsOfUserHandler)
		planned.GET("/pastusersessions", s.pastPlannedSessionsHandler)
		planned.GET("/sessionsofconnections", s.plannedSessionsOfConnectionsHandler)
		planned.POST("/addsession", s.createPlannedSessionHandler)
	}

	windfields := api.Group("/windfields", s.authRequired())
	{
		windfields.GET("", s.windFieldsHandler)
		windfields.GET("/interpolated/export", s.exportInterpolatedHandler)
	}
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
	})
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.router,
	}

	log.Printf("API server starting on port %d", s.port)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Router exposes the gin engine for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
