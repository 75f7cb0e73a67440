// Package server exposes the allocator over HTTP.
//
// Each browser session owns a workspace holding the last uploaded
// students and centers lists; the table and both exports are computed
// from that workspace on every request.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"exam-allocator/internal/config"
	"exam-allocator/internal/metrics"
	"exam-allocator/internal/workspace"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	sessionName         = "examalloc"
	sessionUserKey      = "user"
	sessionWorkspaceKey = "workspace"

	readTimeout     = 10 * time.Second
	writeTimeout    = 30 * time.Second
	shutdownTimeout = 5 * time.Second
)

type Server struct {
	log     *slog.Logger
	cfg     *config.Config
	store   *workspace.Store
	metrics *metrics.Metrics
	engine  *gin.Engine
}

func New(
	log *slog.Logger,
	cfg *config.Config,
	store *workspace.Store,
	appMetrics *metrics.Metrics,
	reg prometheus.Gatherer,
) *Server {
	s := &Server{
		log:     log,
		cfg:     cfg,
		store:   store,
		metrics: appMetrics,
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.MaxMultipartMemory = cfg.UploadLimit

	cookieStore := cookie.NewStore([]byte(cfg.SessionSecret))
	cookieStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.WorkspaceTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, cookieStore))

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	if cfg.AuthEnabled() {
		r.POST("/login", s.login)
		r.GET("/logout", s.logout)
	}

	authorized := r.Group("/")
	authorized.Use(s.authRequired)
	{
		authorized.POST("/students", s.uploadStudents)
		authorized.POST("/centers", s.uploadCenters)
		authorized.PUT("/mode", s.setMode)
		authorized.GET("/assignments", s.assignments)
		authorized.GET("/summary", s.summary)
		authorized.GET("/export/:format", s.export)
		authorized.GET("/logs", s.logs)
		authorized.DELETE("/workspace", s.deleteWorkspace)
	}

	s.engine = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves HTTP until ctx is canceled, then shuts the server down.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.engine,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	go s.janitor(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoContext(ctx, "Starting HTTP server", "port", s.cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.InfoContext(ctx, "Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// janitor drops idle workspaces until ctx is canceled.
func (s *Server) janitor(ctx context.Context) {
	interval := s.cfg.WorkspaceTTL / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pruneWorkspaces(ctx)
		}
	}
}

func (s *Server) pruneWorkspaces(ctx context.Context) {
	if removed := s.store.Prune(s.cfg.WorkspaceTTL); removed > 0 {
		s.log.InfoContext(ctx, "Dropped idle workspaces", "count", removed)
	}
	s.metrics.ActiveWorkspaces.Set(float64(s.store.Len()))
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.DebugContext(c.Request.Context(), "Request served",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// workspace returns the session's workspace, creating one on first use.
// Only requests that store input call it, so read-only traffic without a
// session never grows the store.
func (s *Server) workspace(c *gin.Context) *workspace.Workspace {
	session := sessions.Default(c)
	id, _ := session.Get(sessionWorkspaceKey).(string)

	ws, created := s.store.GetOrCreate(id)
	if created {
		session.Set(sessionWorkspaceKey, ws.ID)
		if err := session.Save(); err != nil {
			s.log.ErrorContext(c.Request.Context(), "Failed to save session", "error", err)
		}
		s.metrics.ActiveWorkspaces.Set(float64(s.store.Len()))
		s.log.DebugContext(c.Request.Context(), "Workspace created", "workspace", ws.ID)
	}
	return ws
}

// currentWorkspace returns the session's workspace or nil when it has none.
func (s *Server) currentWorkspace(c *gin.Context) *workspace.Workspace {
	id, _ := sessions.Default(c).Get(sessionWorkspaceKey).(string)
	if id == "" {
		return nil
	}
	return s.store.Get(id)
}
