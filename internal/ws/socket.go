package ws

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/zerolog/log"

	"github.com/Rakshana0506/ET-project-deployment/internal/api"
	"github.com/Rakshana0506/ET-project-deployment/internal/auth"
	"github.com/Rakshana0506/ET-project-deployment/internal/coach"
	"github.com/Rakshana0506/ET-project-deployment/internal/debate"
)

// ConnCtx is what a connection is watching, and as whom.
type ConnCtx struct {
	Identity string
	DebateID string
}

// Server pushes debate events to socket.io clients. Every debate is a room.
type Server struct {
	svc    *coach.Service
	tokens *auth.Tokens

	mu      sync.RWMutex
	io      *socketio.Server
	members map[string]map[string]socketio.Conn // debateID -> socketID -> Conn
}

func New(svc *coach.Service, tokens *auth.Tokens) *Server {
	return &Server{svc: svc, tokens: tokens, members: make(map[string]map[string]socketio.Conn)}
}

// Publish broadcasts an event to everyone watching debateID.
func (srv *Server) Publish(debateID, event string, payload any) {
	srv.mu.RLock()
	io := srv.io
	srv.mu.RUnlock()
	if io == nil {
		return
	}
	io.BroadcastToRoom("/", debateID, event, payload)
}

// Watchers returns how many connections are watching debateID.
func (srv *Server) Watchers(debateID string) int {
	srv.mu.RLock()
	defer srv.mu.RUnlock()
	return len(srv.members[debateID])
}

// authorize resolves token to an identity that owns debateID.
func (srv *Server) authorize(token, debateID string) (string, debate.State, []debate.Turn, error) {
	identity, err := srv.tokens.Identity(strings.TrimPrefix(token, "Bearer "))
	if err != nil {
		return "", debate.State{}, nil, err
	}
	st, turns, err := srv.svc.Session(identity, debateID)
	if err != nil {
		return "", debate.State{}, nil, err
	}
	return identity, st, turns, nil
}

// Mount attaches the socket.io server to r and registers it as the
// service's event publisher.
func (srv *Server) Mount(r *gin.Engine) *socketio.Server {
	io := socketio.NewServer(nil)

	io.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext(&ConnCtx{})
		log.Info().Str("sid", s.ID()).Msg("socket connected")
		return nil
	})

	// debate:watch
	io.OnEvent("/", "debate:watch", func(s socketio.Conn, payload struct {
		DebateID string `json:"debateId"`
		Token    string `json:"token"`
	}) map[string]any {
		identity, st, turns, err := srv.authorize(payload.Token, payload.DebateID)
		if err != nil {
			return srv.fail(s, err)
		}
		srv.leave(s)
		s.SetContext(&ConnCtx{Identity: identity, DebateID: st.ID})
		s.Join(st.ID)
		srv.addMember(st.ID, s)
		log.Info().Str("sid", s.ID()).Str("debate", st.ID).Str("user", identity).Msg("debate:watch")
		s.Emit("debate:state", map[string]any{"session": st, "transcript": turns})
		return map[string]any{"ok": true}
	})

	// debate:submit
	io.OnEvent("/", "debate:submit", func(s socketio.Conn, payload struct {
		Speaker string `json:"speaker"`
		Text    string `json:"text"`
		Elapsed string `json:"elapsed"`
	}) map[string]any {
		ctx, _ := s.Context().(*ConnCtx)
		if ctx == nil || ctx.DebateID == "" {
			return srv.err(s, "unauthorized", "Watch a debate first")
		}
		speaker, err := srv.speaker(ctx, payload.Speaker)
		if err != nil {
			return srv.fail(s, err)
		}
		res, err := srv.svc.SubmitTurn(context.Background(), ctx.Identity, ctx.DebateID, speaker, payload.Text, payload.Elapsed)
		if err != nil {
			return srv.fail(s, err)
		}
		return map[string]any{"ok": true, "result": res}
	})

	// debate:leave
	io.OnEvent("/", "debate:leave", func(s socketio.Conn) map[string]any {
		srv.leave(s)
		s.SetContext(&ConnCtx{})
		return map[string]any{"ok": true}
	})

	io.OnError("/", func(s socketio.Conn, e error) {
		if s == nil {
			log.Error().Err(e).Msg("socket error")
			return
		}
		log.Error().Str("sid", s.ID()).Err(e).Msg("socket error")
	})
	io.OnDisconnect("/", func(s socketio.Conn, reason string) {
		srv.leave(s)
		log.Info().Str("sid", s.ID()).Str("reason", reason).Msg("socket disconnected")
	})

	srv.mu.Lock()
	srv.io = io
	srv.mu.Unlock()
	srv.svc.SetPublisher(srv)

	go func() {
		if err := io.Serve(); err != nil {
			log.Error().Err(err).Msg("socket serve")
		}
	}()

	r.GET("/socket.io/*any", gin.WrapH(io))
	r.POST("/socket.io/*any", gin.WrapH(io))

	// Basic CORS preflight for Socket.IO POST
	r.OPTIONS("/socket.io/*any", func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Status(http.StatusNoContent)
	})

	return io
}

func (srv *Server) speaker(ctx *ConnCtx, raw string) (debate.Role, error) {
	switch strings.ToUpper(raw) {
	case string(debate.RoleA):
		return debate.RoleA, nil
	case string(debate.RoleB):
		return debate.RoleB, nil
	}
	st, _, err := srv.svc.Session(ctx.Identity, ctx.DebateID)
	if err != nil {
		return "", err
	}
	return st.CurrentSpeaker, nil
}

func (srv *Server) addMember(debateID string, c socketio.Conn) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if srv.members[debateID] == nil {
		srv.members[debateID] = make(map[string]socketio.Conn)
	}
	srv.members[debateID][c.ID()] = c
}

func (srv *Server) leave(c socketio.Conn) {
	ctx, ok := c.Context().(*ConnCtx)
	if !ok || ctx.DebateID == "" {
		return
	}
	c.Leave(ctx.DebateID)
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if m := srv.members[ctx.DebateID]; m != nil {
		delete(m, c.ID())
		if len(m) == 0 {
			delete(srv.members, ctx.DebateID)
		}
	}
}

func (srv *Server) fail(s socketio.Conn, err error) map[string]any {
	if errors.Is(err, auth.ErrUnknownToken) {
		return srv.err(s, "unauthorized", "Invalid or expired token")
	}
	status, code := api.Status(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("sid", s.ID()).Msg("socket:error")
		return srv.err(s, code, "Internal error")
	}
	return srv.err(s, code, err.Error())
}

func (srv *Server) err(s socketio.Conn, code, message string) map[string]any {
	s.Emit("error", map[string]any{"code": code, "message": message})
	return map[string]any{"error": message, "code": code}
}
