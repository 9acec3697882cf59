package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Rakshana0506/ET-project-deployment/internal/coach"
	"github.com/Rakshana0506/ET-project-deployment/internal/debate"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=40"`
	Password string `json:"password" binding:"required,min=4"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	u, err := s.users.CreateUser(c.Request.Context(), req.Name, req.Email, req.Username, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	log.Info().Str("user", u.Username).Msg("user:register")
	c.JSON(http.StatusCreated, gin.H{"user": u})
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	u, err := s.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	token := s.tokens.Issue(u.Username)
	log.Info().Str("user", u.Username).Msg("user:login")
	c.JSON(http.StatusOK, gin.H{"token": token, "user": u})
}

func (s *Server) logout(c *gin.Context) {
	s.tokens.Revoke(bearer(c))
	if s.keyring != nil {
		s.keyring.Forget(identity(c))
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) getKeys(c *gin.Context) {
	if s.keyring == nil {
		c.JSON(http.StatusOK, gin.H{"keys": coach.Keys{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"keys": s.keyring.Keys(identity(c)).Masked()})
}

func (s *Server) putKeys(c *gin.Context) {
	if s.keyring == nil {
		abort(c, http.StatusNotImplemented, "unsupported", "per-user keys are disabled")
		return
	}
	var keys coach.Keys
	if err := c.ShouldBindJSON(&keys); err != nil {
		abort(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	s.keyring.SetKeys(identity(c), keys)
	c.JSON(http.StatusOK, gin.H{"keys": keys.Masked()})
}

type startRequest struct {
	Mode    string `json:"mode" binding:"required"`
	Topic   string `json:"topic" binding:"required"`
	Stance  string `json:"stance" binding:"required"`
	Turns   int    `json:"turns" binding:"required,min=1"`
	PlayerA string `json:"playerA"`
	PlayerB string `json:"playerB"`
}

func (s *Server) startDebate(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	mode, err := debate.ParseMode(req.Mode)
	if err != nil {
		fail(c, err)
		return
	}
	stance, err := debate.ParseStance(req.Stance)
	if err != nil {
		fail(c, err)
		return
	}
	st, err := s.svc.StartDebate(identity(c), debate.Config{
		Mode:         mode,
		Topic:        req.Topic,
		ParticipantA: debate.Participant{DisplayName: req.PlayerA, Stance: stance},
		ParticipantB: debate.Participant{DisplayName: req.PlayerB},
		Turns:        req.Turns,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": st})
}

func (s *Server) activeDebate(c *gin.Context) {
	st, ok := s.svc.Active(identity(c))
	if !ok {
		abort(c, http.StatusNotFound, "not_found", "no active debate")
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": st})
}

func (s *Server) getDebate(c *gin.Context) {
	st, turns, err := s.svc.Session(identity(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": st, "transcript": turns})
}

type turnRequest struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	Elapsed string `json:"elapsed"`
}

func (s *Server) submitTurn(c *gin.Context) {
	var req turnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	id := c.Param("id")
	speaker, err := s.speaker(identity(c), id, req.Speaker)
	if err != nil {
		fail(c, err)
		return
	}
	res, err := s.svc.SubmitTurn(c.Request.Context(), identity(c), id, speaker, req.Text, req.Elapsed)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// speaker resolves the role a submission is made as. An omitted speaker
// means whoever holds the floor.
func (s *Server) speaker(identity, id, raw string) (debate.Role, error) {
	switch raw {
	case "A", "a":
		return debate.RoleA, nil
	case "B", "b":
		return debate.RoleB, nil
	}
	st, _, err := s.svc.Session(identity, id)
	if err != nil {
		return "", err
	}
	return st.CurrentSpeaker, nil
}

func (s *Server) debateResult(c *gin.Context) {
	o, err := s.svc.Outcome(identity(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (s *Server) transcribe(c *gin.Context) {
	fh, err := c.FormFile("audio")
	if err != nil {
		abort(c, http.StatusBadRequest, "bad_request", "audio file is required")
		return
	}
	if fh.Size > maxAudioBytes {
		abort(c, http.StatusRequestEntityTooLarge, "too_large", "audio upload is too large")
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, err)
		return
	}
	defer f.Close()
	wav, err := io.ReadAll(io.LimitReader(f, maxAudioBytes))
	if err != nil {
		fail(c, err)
		return
	}
	text, err := s.svc.Transcribe(c.Request.Context(), identity(c), wav, c.PostForm("draft"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}

func (s *Server) history(c *gin.Context) {
	entries, err := s.svc.History(c.Request.Context(), identity(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": entries})
}

func (s *Server) archived(c *gin.Context) {
	a, err := s.svc.Archived(c.Request.Context(), identity(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *Server) statistics(c *gin.Context) {
	st, err := s.svc.Statistics(c.Request.Context(), identity(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"statistics": st, "total": st.Total()})
}
