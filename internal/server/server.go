// =============================================================================
// Order Settlement Reconciler - HTTP Server
// =============================================================================
//
// The server exposes the pipeline to browser uploads.
//
// ROUTES:
//   GET  /api/health     liveness and version
//   POST /api/reconcile  multipart upload, responds with the .xlsx workbook
//   POST /api/validate   multipart upload, responds with the pre-flight report
//
// Every request runs on its own freshly loaded tables; nothing is shared
// between requests or kept after the response.
//
// =============================================================================

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ginjaninja78/order-settlement-reconciler/internal/config"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/pipeline"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/schema"
)

// Server is the HTTP upload surface.
type Server struct {
	router  *gin.Engine
	handler *Handler
}

// New creates a server. cfg supplies CSV settings, upload limits and
// column aliases.
func New(cfg *config.MainConfig, aliases schema.AliasSet, log pipeline.Logger, version string) *Server {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.MaxMultipartMemory = int64(cfg.Server.MaxUploadMB) << 20

	s := &Server{
		router:  router,
		handler: NewHandler(cfg, aliases, log, version),
	}
	s.setupRoutes()
	return s
}

// setupRoutes registers the API routes.
func (s *Server) setupRoutes() {
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Header("Access-Control-Expose-Headers", "Content-Disposition, X-Run-Id, X-Run-Issues")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	api := s.router.Group("/api")
	s.handler.RegisterRoutes(api)
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts listening on addr.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
