package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrUnknownToken = errors.New("auth: unknown or expired token")

type grant struct {
	identity string
	issued   time.Time
}

// Tokens maps bearer tokens to the username that signed in with them.
type Tokens struct {
	mu     sync.RWMutex
	grants map[string]grant
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens returns a token store; a ttl of zero never expires tokens.
func NewTokens(ttl time.Duration) *Tokens {
	return &Tokens{grants: make(map[string]grant), ttl: ttl, now: time.Now}
}

func (t *Tokens) Issue(identity string) string {
	token := uuid.NewString()
	t.mu.Lock()
	t.grants[token] = grant{identity: identity, issued: t.now()}
	t.mu.Unlock()
	return token
}

func (t *Tokens) Identity(token string) (string, error) {
	t.mu.RLock()
	g, ok := t.grants[token]
	t.mu.RUnlock()
	if !ok || t.expired(g) {
		return "", ErrUnknownToken
	}
	return g.identity, nil
}

func (t *Tokens) Revoke(token string) {
	t.mu.Lock()
	delete(t.grants, token)
	t.mu.Unlock()
}

// Sweep drops expired tokens and reports how many were removed.
func (t *Tokens) Sweep() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for token, g := range t.grants {
		if t.expired(g) {
			delete(t.grants, token)
			n++
		}
	}
	return n
}

func (t *Tokens) expired(g grant) bool {
	return t.ttl > 0 && t.now().Sub(g.issued) > t.ttl
}
