package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Rakshana0506/ET-project-deployment/internal/auth"
	"github.com/Rakshana0506/ET-project-deployment/internal/coach"
	"github.com/Rakshana0506/ET-project-deployment/internal/store"
)

// maxAudioBytes caps a single speech upload.
const maxAudioBytes = 10 << 20

const identityKey = "identity"

// Users is the account storage the API signs people in against.
type Users interface {
	CreateUser(ctx context.Context, name, email, username, password string) (store.User, error)
	Authenticate(ctx context.Context, username, password string) (store.User, error)
}

type Options struct {
	Service *coach.Service
	Users   Users
	Tokens  *auth.Tokens
	Keyring *coach.Keyring
}

type Server struct {
	svc     *coach.Service
	users   Users
	tokens  *auth.Tokens
	keyring *coach.Keyring
}

func New(opts Options) *Server {
	s := &Server{svc: opts.Service, users: opts.Users, tokens: opts.Tokens, keyring: opts.Keyring}
	if s.tokens == nil {
		s.tokens = auth.NewTokens(0)
	}
	return s
}

// Tokens exposes the token store so the socket server can authenticate
// watchers with the same bearer tokens.
func (s *Server) Tokens() *auth.Tokens { return s.tokens }

// NewEngine returns a gin engine with recovery, request logging and the
// health check installed.
func NewEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})
	return r
}

// requestLogger logs every request except the socket.io polling noise.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/socket.io") {
			return
		}
		log.Info().Str("method", c.Request.Method).Str("path", path).Int("status", c.Writer.Status()).Dur("dur", time.Since(start)).Msg("http")
	}
}

// Mount registers the /api routes on r.
func (s *Server) Mount(r gin.IRouter) {
	api := r.Group("/api")
	api.POST("/register", s.register)
	api.POST("/login", s.login)

	authed := api.Group("", s.requireAuth)
	authed.POST("/logout", s.logout)
	authed.GET("/settings/keys", s.getKeys)
	authed.PUT("/settings/keys", s.putKeys)

	authed.POST("/debates", s.startDebate)
	authed.GET("/debates/active", s.activeDebate)
	authed.GET("/debates/:id", s.getDebate)
	authed.POST("/debates/:id/turns", s.submitTurn)
	authed.GET("/debates/:id/result", s.debateResult)
	authed.POST("/transcribe", s.transcribe)

	authed.GET("/history", s.history)
	authed.GET("/history/:id", s.archived)
	authed.GET("/stats", s.statistics)
}

func (s *Server) requireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		abort(c, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	identity, err := s.tokens.Identity(token)
	if err != nil {
		abort(c, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
		return
	}
	c.Set(identityKey, identity)
	c.Next()
}

func identity(c *gin.Context) string { return c.GetString(identityKey) }

func bearer(c *gin.Context) string {
	token, _ := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	return token
}
