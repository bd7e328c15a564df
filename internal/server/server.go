// Package server runs the long-lived inspection API for editor and CI
// integrations that want hazard checks without the hook protocol.
package server

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"winguard/internal/api"
	"winguard/internal/config"
	"winguard/internal/eventlog"
	"winguard/internal/hook"
	"winguard/internal/logger"
	"winguard/internal/shellparse"
)

var log = logger.New("server")

// Server serves hazard checks over HTTP. The guard behind it is swapped
// atomically on config reload.
type Server struct {
	cfgPath string
	router  *gin.Engine

	mu      sync.RWMutex
	cfg     *config.Config
	guard   *hook.Guard
	journal *eventlog.Journal
}

// New creates a Server from a validated config.
func New(cfgPath string, cfg *config.Config) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply middleware in order
	router.Use(gin.Recovery())
	router.Use(api.SecurityHeadersMiddleware())
	router.Use(api.BodySizeLimitMiddleware(api.MaxBodySize))

	s := &Server{
		cfgPath: cfgPath,
		router:  router,
	}
	s.install(cfg)
	s.registerRoutes()
	return s
}

// install swaps in a config and the guard built from it.
func (s *Server) install(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.guard = hook.NewGuard(cfg)
	s.journal = nil
	if cfg.EventLog.Enabled {
		s.journal = eventlog.New(cfg.EventLog.Path)
	}
}

// Reload re-reads the config file and swaps the guard. In-flight requests
// finish against the guard they started with.
func (s *Server) Reload() error {
	cfg, err := config.Load(s.cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.install(cfg)
	log.Info("config reloaded from %s", s.cfgPath)
	return nil
}

func (s *Server) currentGuard() *hook.Guard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.guard
}

// Handler returns the HTTP handler for the API
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until the listener fails.
func (s *Server) Run() error {
	s.mu.RLock()
	port := s.cfg.Server.Port
	s.mu.RUnlock()

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Info("inspection API listening on %s", addr)
	return srv.ListenAndServe()
}

func (s *Server) registerRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	apiGroup := s.router.Group("/api/winguard")
	{
		apiGroup.POST("/check", s.handleCheck)
		apiGroup.POST("/fix", s.handleFix)
		apiGroup.POST("/explain", s.handleExplain)
		apiGroup.GET("/events", s.handleEvents)
	}
}

// commandRequest is the body of every inspection endpoint.
type commandRequest struct {
	Command string `json:"command" binding:"required"`
}

// handleCheck handles POST /api/winguard/check
func (s *Server) handleCheck(c *gin.Context) {
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	f := s.currentGuard().Classify(req.Command)
	if f == nil {
		api.Success(c, gin.H{"verdict": "allow"})
		return
	}
	api.Success(c, gin.H{
		"verdict": "block",
		"finding": gin.H{
			"kind":    f.Kind,
			"offset":  f.Offset,
			"excerpt": f.Excerpt,
			"message": f.Message,
		},
	})
}

// handleFix handles POST /api/winguard/fix
func (s *Server) handleFix(c *gin.Context) {
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	out := s.currentGuard().Normalize(req.Command)
	api.Success(c, gin.H{
		"changed": out.Changed,
		"command": out.Command,
		"applied": out.Applied,
		"note":    out.Note(),
	})
}

// handleExplain handles POST /api/winguard/explain
func (s *Server) handleExplain(c *gin.Context) {
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	explanation, err := shellparse.Explain(req.Command)
	if err != nil {
		api.Error(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	api.Success(c, gin.H{"explanation": explanation})
}

// eventsQuery limits how much of the journal one request can pull.
type eventsQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=1000"`
}

// handleEvents handles GET /api/winguard/events
func (s *Server) handleEvents(c *gin.Context) {
	var query eventsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		api.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if query.Limit == 0 {
		query.Limit = 100
	}

	s.mu.RLock()
	journal := s.journal
	s.mu.RUnlock()
	if journal == nil {
		api.Success(c, []eventlog.Entry{})
		return
	}

	entries, err := journal.Tail(query.Limit)
	if err != nil {
		api.Error(c, http.StatusInternalServerError, "failed to read event log")
		return
	}
	if entries == nil {
		entries = []eventlog.Entry{}
	}
	api.Success(c, entries)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
