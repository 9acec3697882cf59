package ai

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options tune a single Chat call. JSON asks the backend for a JSON-only reply.
type Options struct {
	JSON        bool
	Temperature float64
	MaxTokens   int
}

type Provider interface {
	Chat(ctx context.Context, model, system string, messages []Message, opts Options) (string, error)
}

var ErrUnknownProvider = errors.New("ai: unknown provider")

// Registry maps provider names to clients.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	def       string
}

func NewRegistry(def string) *Registry {
	return &Registry{providers: make(map[string]Provider), def: def}
}

func (r *Registry) Register(name string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = p
}

// Get returns the named provider, or the default one for an empty name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name == "" {
		name = r.def
	}
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return p, nil
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for n := range r.providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
