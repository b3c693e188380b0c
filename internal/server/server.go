// Package server wires the gin router: API routes plus the embedded
// single-page UI.
package server

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Kolique/controle-tele/internal/config"
	"github.com/Kolique/controle-tele/internal/server/handlers"
	"github.com/Kolique/controle-tele/internal/store"
)

//go:embed static
var staticFiles embed.FS

// Server is the HTTP server.
type Server struct {
	router *gin.Engine
	store  *store.Store
	log    *zap.Logger
}

// NewServer builds the server on an already opened store.
func NewServer(cfg *config.AppConfig, log *zap.Logger, st *store.Store) *Server {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		router: gin.New(),
		store:  st,
		log:    log,
	}
	s.router.Use(gin.Recovery())

	h := handlers.NewHandlers(cfg, log, st)
	s.setupRoutes(h)
	return s
}

func (s *Server) setupRoutes(h *handlers.Handlers) {
	// CORS, for a dev frontend served from another port.
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	api := s.router.Group("/api")
	h.RegisterRoutes(api)

	sub, _ := fs.Sub(staticFiles, "static")
	s.router.GET("/", func(c *gin.Context) {
		data, err := fs.ReadFile(sub, "index.html")
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", data)
	})
	s.router.NoRoute(func(c *gin.Context) {
		data, err := fs.ReadFile(sub, "index.html")
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", data)
	})
}

// Run starts listening on addr.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
