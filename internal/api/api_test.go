package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rakshana0506/ET-project-deployment/internal/coach"
	"github.com/Rakshana0506/ET-project-deployment/internal/debate"
	"github.com/Rakshana0506/ET-project-deployment/internal/judge"
	"github.com/Rakshana0506/ET-project-deployment/internal/speech"
	"github.com/Rakshana0506/ET-project-deployment/internal/store"
)

const verdict = `{"scores":{"User":{"logicalConsistency":6,"evidenceAndExamples":6,"clarityAndConcision":6,"rebuttalEffectiveness":6,"overallPersuasiveness":6},
"AI":{"logicalConsistency":7,"evidenceAndExamples":7,"clarityAndConcision":7,"rebuttalEffectiveness":7,"overallPersuasiveness":7}},
"reasoning":{"overallWinner":"AI"}}`

type echoGenerator struct{}

func (echoGenerator) Generate(_ context.Context, req debate.GenerationRequest) (string, error) {
	return "Counterpoint from " + string(req.OwnStance), nil
}

type fixedEvaluator string

func (e fixedEvaluator) Evaluate(context.Context, string) (string, error) { return string(e), nil }

type fixedTranscriber string

func (f fixedTranscriber) Transcribe(context.Context, speech.Audio) (string, error) {
	return string(f), nil
}

func init() { gin.SetMode(gin.TestMode) }

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	db, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	defaults := coach.Capabilities{
		Generator:   echoGenerator{},
		Evaluator:   fixedEvaluator(verdict),
		Transcriber: fixedTranscriber("with evidence"),
	}
	keyring := coach.NewKeyring(defaults, "m", "m", "en-IN")
	svc := coach.New(coach.Options{
		Pipeline: judge.NewPipeline(time.Second),
		Archive:  db,
		Resolver: keyring,
	})
	r := NewEngine()
	New(Options{Service: svc, Users: db, Keyring: keyring}).Mount(r)
	return r
}

func do(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func signIn(t *testing.T, r http.Handler, username string) string {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/register", "", gin.H{
		"name": "Test " + username, "email": username + "@example.com", "username": username, "password": "secret",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = do(t, r, http.MethodPost, "/api/login", "", gin.H{"username": username, "password": "secret"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out struct {
		Token string `json:"token"`
	}
	decode(t, w, &out)
	require.NotEmpty(t, out.Token)
	return out.Token
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAccounts(t *testing.T) {
	r := newTestRouter(t)
	token := signIn(t, r, "alice")

	w := do(t, r, http.MethodPost, "/api/register", "", gin.H{
		"name": "Again", "email": "other@example.com", "username": "alice", "password": "secret",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodPost, "/api/register", "", gin.H{"name": "x", "email": "not-an-email", "username": "bob", "password": "secret"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/login", "", gin.H{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodGet, "/api/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodPost, "/api/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, r, http.MethodGet, "/api/stats", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPracticeDebateOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	token := signIn(t, r, "alice")

	w := do(t, r, http.MethodPost, "/api/debates", token, gin.H{
		"mode": "practice", "topic": "Universal basic income", "stance": "For", "turns": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var started struct {
		Session debate.State `json:"session"`
	}
	decode(t, w, &started)
	id := started.Session.ID
	assert.Equal(t, debate.StatusAwaitingFirstTurn, started.Session.Status)

	w = do(t, r, http.MethodGet, "/api/debates/active", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/api/debates/"+id+"/result", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodPost, "/api/debates/"+id+"/turns", token, gin.H{"text": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/debates/"+id+"/turns", token, gin.H{"text": "It ends poverty traps", "elapsed": "0:30"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res coach.TurnResult
	decode(t, w, &res)
	require.NotNil(t, res.Outcome)
	assert.Equal(t, debate.StatusCompleted, res.Session.Status)
	assert.Len(t, res.Turns, 2)
	assert.Equal(t, "Outcome: You Lost", res.Outcome.Results.Outcome)

	w = do(t, r, http.MethodPost, "/api/debates/"+id+"/turns", token, gin.H{"text": "late"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodGet, "/api/debates/"+id+"/result", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/api/history", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var hist struct {
		History []store.HistoryEntry `json:"history"`
	}
	decode(t, w, &hist)
	require.Len(t, hist.History, 1)

	w = do(t, r, http.MethodGet, "/api/history/"+hist.History[0].ID, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/api/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var st struct {
		Total int `json:"total"`
	}
	decode(t, w, &st)
	assert.Equal(t, 1, st.Total)

	other := signIn(t, r, "mallory")
	w = do(t, r, http.MethodGet, "/api/history/"+hist.History[0].ID, other, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = do(t, r, http.MethodGet, "/api/debates/"+id, other, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = do(t, r, http.MethodGet, "/api/debates/nope", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestJudgeModeTurnOrder(t *testing.T) {
	r := newTestRouter(t)
	token := signIn(t, r, "alice")

	w := do(t, r, http.MethodPost, "/api/debates", token, gin.H{
		"mode": "judge", "topic": "School uniforms", "stance": "Against", "turns": 1, "playerA": "Asha", "playerB": "Ben",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var started struct {
		Session debate.State `json:"session"`
	}
	decode(t, w, &started)
	id := started.Session.ID

	w = do(t, r, http.MethodPost, "/api/debates/"+id+"/turns", token, gin.H{"speaker": "B", "text": "Too early"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodPost, "/api/debates/"+id+"/turns", token, gin.H{"text": "Uniforms stifle expression"})
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodPost, "/api/debates/"+id+"/turns", token, gin.H{"speaker": "B", "text": "They reduce bullying"})
	require.Equal(t, http.StatusOK, w.Code)
	var res coach.TurnResult
	decode(t, w, &res)
	require.NotNil(t, res.Outcome)
	assert.Equal(t, "Outcome: Ben Wins!", res.Outcome.Results.Outcome)

	w = do(t, r, http.MethodGet, "/api/stats", token, nil)
	var st struct {
		Total int `json:"total"`
	}
	decode(t, w, &st)
	assert.Equal(t, 0, st.Total)

	w = do(t, r, http.MethodPost, "/api/debates", token, gin.H{"mode": "chess", "topic": "x", "stance": "For", "turns": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSettingsKeysAreMasked(t *testing.T) {
	r := newTestRouter(t)
	token := signIn(t, r, "alice")

	w := do(t, r, http.MethodPut, "/api/settings/keys", token, gin.H{"azureSpeechKey": "0123456789", "azureSpeechRegion": "eastus"})
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodGet, "/api/settings/keys", token, nil)
	var out struct {
		Keys coach.Keys `json:"keys"`
	}
	decode(t, w, &out)
	assert.Equal(t, "****6789", out.Keys.AzureSpeechKey)
	assert.Equal(t, "eastus", out.Keys.AzureSpeechRegion)
}

func TestTranscribeUpload(t *testing.T) {
	r := newTestRouter(t)
	token := signIn(t, r, "alice")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("audio", "clip.wav")
	require.NoError(t, err)
	_, err = part.Write(speech.EncodeWAV(speech.Audio{PCM: make([]byte, 320), SampleRate: 16000, BitDepth: 16, Channels: 1}))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("draft", "Costs fall"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out struct {
		Text string `json:"text"`
	}
	decode(t, w, &out)
	assert.Equal(t, "Costs fall with evidence", out.Text)

	w = do(t, r, http.MethodPost, "/api/transcribe", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatusMapping(t *testing.T) {
	cases := map[error]int{
		debate.ErrInvalidState:       http.StatusConflict,
		debate.ErrTurnOrderViolation: http.StatusConflict,
		debate.ErrEmptyArgument:      http.StatusBadRequest,
		store.ErrNotFound:            http.StatusNotFound,
		store.ErrForbidden:           http.StatusForbidden,
		speech.ErrNoSpeech:           http.StatusUnprocessableEntity,
		context.DeadlineExceeded:     http.StatusInternalServerError,
	}
	for err, want := range cases {
		if got, _ := Status(err); got != want {
			t.Fatalf("Status(%v) = %d, want %d", err, got, want)
		}
	}
}
