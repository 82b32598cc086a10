package webui

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shouni/gemini-image-studio/pkg/generator"
	"github.com/shouni/gemini-image-studio/pkg/session"
)

//go:embed templates/*
var embeddedFS embed.FS

const (
	// sessionCookieName はブラウザセッション識別用クッキーの名前です。
	sessionCookieName = "studio_session"

	defaultRequestTimeout = 120 * time.Second
	defaultMaxUploadBytes = 10 << 20
	defaultSessionTTL     = time.Hour

	// sweepInterval はアイドルセッション回収の周期です。
	sweepInterval = 5 * time.Minute
)

// Options は Server の依存関係と調整値です。
type Options struct {
	Factory        generator.ClientFactory
	Model          string
	RequestTimeout time.Duration
	MaxUploadBytes int64
	SessionTTL     time.Duration
}

// browserSession はブラウザタブ1つ分の状態です。
type browserSession struct {
	controller *session.Controller
	lastSeen   time.Time
}

// Server はブラウザ向けの UI と JSON API を提供します。
// コントローラはセッションクッキー単位に1つずつ生成され、
// 状態はすべてサーバーメモリ内で完結します。
type Server struct {
	engine  *gin.Engine
	factory generator.ClientFactory
	model   string
	timeout time.Duration
	maxUp   int64
	ttl     time.Duration
	fetcher *generator.Fetcher

	mu       sync.Mutex
	sessions map[string]*browserSession
}

// NewServer は Server を初期化します。
func NewServer(opts Options) (*Server, error) {
	if opts.Factory == nil {
		return nil, fmt.Errorf("factory (ClientFactory) is required")
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = defaultSessionTTL
	}

	fetcher, err := generator.NewFetcher(generator.NewHTTPFetcher(nil))
	if err != nil {
		return nil, err
	}

	s := &Server{
		factory:  opts.Factory,
		model:    opts.Model,
		timeout:  opts.RequestTimeout,
		maxUp:    opts.MaxUploadBytes,
		ttl:      opts.SessionTTL,
		fetcher:  fetcher,
		sessions: make(map[string]*browserSession),
	}

	tmpl, err := template.ParseFS(embeddedFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("テンプレートの読み込みに失敗しました: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.SetHTMLTemplate(tmpl)

	engine.GET("/", s.withSession(s.handleIndex))

	api := engine.Group("/api")
	{
		api.GET("/state", s.withSession(s.handleState))
		api.POST("/key", s.withSession(s.handleSubmitKey))
		api.DELETE("/key", s.withSession(s.handleClearKey))
		api.POST("/mode", s.withSession(s.handleSwitchMode))
		api.POST("/image", s.withSession(s.handleAttachImage))
		api.POST("/image/url", s.withSession(s.handleAttachImageURL))
		api.DELETE("/image", s.withSession(s.handleClearImage))
		api.POST("/generate", s.withSession(s.handleGenerate))
		api.POST("/history/recall", s.withSession(s.handleRecall))
		api.DELETE("/history", s.withSession(s.handleClearHistory))
	}

	s.engine = engine
	return s, nil
}

// Handler は http.Handler としてのエンジンを返します。
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run はサーバーを起動し、ctx がキャンセルされるまで待ち受けます。
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: s.timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go s.sweepLoop(ctx)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Webサーバーを起動します", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// withSession はセッションクッキーを保証し、対応するコントローラを
// ハンドラに引き渡すミドルウェアです。
func (s *Server) withSession(next func(*gin.Context, *session.Controller)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(sessionCookieName)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
			c.SetCookie(sessionCookieName, id, 0, "/", "", false, true)
		}

		ctrl, err := s.controllerFor(c.Request.Context(), id)
		if err != nil {
			slog.Error("セッションの初期化に失敗しました", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session init failed"})
			return
		}

		next(c, ctrl)
	}
}

// controllerFor はセッションIDに対応するコントローラを返します（無ければ生成）。
func (s *Server) controllerFor(ctx context.Context, id string) (*session.Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if bs, ok := s.sessions[id]; ok {
		bs.lastSeen = time.Now()
		return bs.controller, nil
	}

	ctrl, err := session.NewController(ctx, session.NewMemoryStore(), s.factory, s.model)
	if err != nil {
		return nil, err
	}

	s.sessions[id] = &browserSession{controller: ctrl, lastSeen: time.Now()}
	return ctrl, nil
}

// sweepLoop は一定周期でアイドルセッションを破棄します。
// セッションの中身（資格情報・履歴）はここで完全に消滅します。
func (s *Server) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepIdleSessions(time.Now())
		}
	}
}

func (s *Server) sweepIdleSessions(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, bs := range s.sessions {
		if now.Sub(bs.lastSeen) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		slog.Info("アイドルセッションを回収しました", "removed", removed, "active", len(s.sessions))
	}
	return removed
}
