package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Rakshana0506/ET-project-deployment/internal/coach"
	"github.com/Rakshana0506/ET-project-deployment/internal/debate"
	"github.com/Rakshana0506/ET-project-deployment/internal/speech"
	"github.com/Rakshana0506/ET-project-deployment/internal/store"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"error"`
}

func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, errorBody{Code: code, Message: msg})
}

// Status maps a domain error to its HTTP status and a short error code.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, debate.ErrInvalidState):
		return http.StatusConflict, "invalid_state"
	case errors.Is(err, debate.ErrTurnOrderViolation):
		return http.StatusConflict, "turn_order"
	case errors.Is(err, coach.ErrNotCompleted):
		return http.StatusConflict, "not_completed"
	case errors.Is(err, debate.ErrEmptyArgument):
		return http.StatusBadRequest, "empty_argument"
	case errors.Is(err, debate.ErrInvalidConfig):
		return http.StatusBadRequest, "invalid_config"
	case errors.Is(err, speech.ErrInvalidWAV):
		return http.StatusBadRequest, "invalid_audio"
	case errors.Is(err, speech.ErrNoSpeech):
		return http.StatusUnprocessableEntity, "no_speech"
	case errors.Is(err, debate.ErrSessionNotFound), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, debate.ErrNotOwner), errors.Is(err, store.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, store.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, store.ErrUserExists):
		return http.StatusConflict, "user_exists"
	case errors.Is(err, coach.ErrTranscriberMissing):
		return http.StatusServiceUnavailable, "speech_unavailable"
	}
	return http.StatusInternalServerError, "internal"
}

func fail(c *gin.Context, err error) {
	status, code := Status(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("api:error")
		abort(c, status, code, "internal error")
		return
	}
	abort(c, status, code, err.Error())
}
