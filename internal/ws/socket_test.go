package ws

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Rakshana0506/ET-project-deployment/internal/auth"
	"github.com/Rakshana0506/ET-project-deployment/internal/coach"
	"github.com/Rakshana0506/ET-project-deployment/internal/debate"
)

func TestAuthorize(t *testing.T) {
	svc := coach.New(coach.Options{})
	tokens := auth.NewTokens(0)
	srv := New(svc, tokens)

	st, err := svc.StartDebate("alice", debate.Config{
		Mode:         debate.ModeDualHuman,
		Topic:        "Zoos",
		ParticipantA: debate.Participant{Stance: debate.StanceFor},
		Turns:        2,
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	alice := tokens.Issue("alice")
	identity, got, turns, err := srv.authorize("Bearer "+alice, st.ID)
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if identity != "alice" || got.ID != st.ID || len(turns) != 0 {
		t.Fatalf("unexpected watch state %q %+v %v", identity, got, turns)
	}

	if _, _, _, err := srv.authorize("bogus", st.ID); !errors.Is(err, auth.ErrUnknownToken) {
		t.Fatalf("bogus token: %v", err)
	}
	bob := tokens.Issue("bob")
	if _, _, _, err := srv.authorize(bob, st.ID); !errors.Is(err, debate.ErrNotOwner) {
		t.Fatalf("foreign debate: %v", err)
	}
}

func TestSpeakerDefaultsToFloorHolder(t *testing.T) {
	svc := coach.New(coach.Options{})
	srv := New(svc, auth.NewTokens(0))
	st, err := svc.StartDebate("alice", debate.Config{
		Mode:         debate.ModeDualHuman,
		Topic:        "Zoos",
		ParticipantA: debate.Participant{Stance: debate.StanceFor},
		Turns:        2,
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	ctx := &ConnCtx{Identity: "alice", DebateID: st.ID}
	if r, _ := srv.speaker(ctx, ""); r != debate.RoleA {
		t.Fatalf("speaker = %q, want A", r)
	}
	if r, _ := srv.speaker(ctx, "b"); r != debate.RoleB {
		t.Fatalf("speaker = %q, want B", r)
	}
}

func TestPublishBeforeMount(t *testing.T) {
	srv := New(coach.New(coach.Options{}), auth.NewTokens(0))
	srv.Publish("missing", coach.EventTurn, nil)
	if srv.Watchers("missing") != 0 {
		t.Fatal("no watchers expected")
	}
}

func TestMountRegistersRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	srv := New(coach.New(coach.Options{}), auth.NewTokens(0))
	io := srv.Mount(r)
	defer io.Close()

	found := 0
	for _, route := range r.Routes() {
		if route.Path == "/socket.io/*any" {
			found++
		}
	}
	if found != 3 {
		t.Fatalf("socket.io routes = %d, want 3", found)
	}
}
