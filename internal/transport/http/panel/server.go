package panel

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"rsadesk/internal/desk"
	"rsadesk/internal/executor"
	"rsadesk/internal/logger"
	"rsadesk/internal/store"
	"rsadesk/internal/trade"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templates embed.FS

// Desk is what the panel needs from the desk service.
type Desk interface {
	Brokers() []string
	Submit(ctx context.Context, o trade.Order) (desk.RoundReport, error)
	Rows(ctx context.Context) ([]store.Row, error)
	Clear(ctx context.Context) error
	Sync(ctx context.Context) (executor.SyncResult, error)
}

// Server is the browser control panel plus its JSON API.
type Server struct {
	addr   string
	router *gin.Engine
}

// ServerConfig describes the panel's dependencies.
type ServerConfig struct {
	Addr     string
	Desk     Desk
	Accounts map[string]string // basic auth; empty disables it
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Desk == nil {
		return nil, errors.New("panel requires a desk service")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8501"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	tmpl, err := template.New("panel").Funcs(templateFuncs).ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(tmpl)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	protected := router.Group("/")
	if len(cfg.Accounts) > 0 {
		protected.Use(gin.BasicAuthForRealm(gin.Accounts(cfg.Accounts), "rsadesk"))
	}
	h := &handlers{desk: cfg.Desk}
	h.registerPage(protected)
	h.registerAPI(protected.Group("/api", requireJSON()))

	return &Server{addr: cfg.Addr, router: router}, nil
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Start serves until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logger.Infof("panel listening on %s", s.addr)

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		client := c.ClientIP()
		c.Next()
		fullPath := path
		if query != "" {
			fullPath = path + "?" + query
		}
		logger.Debugf("HTTP %s %s status=%d ip=%s dur=%s", method, fullPath, c.Writer.Status(), client, time.Since(start))
	}
}

var templateFuncs = template.FuncMap{
	"fmtTime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("2006-01-02 15:04:05")
	},
	"join": strings.Join,
}
