package coach

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Rakshana0506/ET-project-deployment/internal/ai"
	"github.com/Rakshana0506/ET-project-deployment/internal/ai/gemini"
	"github.com/Rakshana0506/ET-project-deployment/internal/debate"
	"github.com/Rakshana0506/ET-project-deployment/internal/judge"
	"github.com/Rakshana0506/ET-project-deployment/internal/speech"
	"github.com/Rakshana0506/ET-project-deployment/internal/speech/azure"
)

// Capabilities are the external collaborators used for one request.
type Capabilities struct {
	Generator   debate.Generator
	Evaluator   judge.Evaluator
	Transcriber speech.Transcriber
}

type Resolver interface {
	Resolve(ctx context.Context, identity string) Capabilities
}

// Keys are provider credentials a user supplied in their settings.
type Keys struct {
	GoogleAPIKey      string `json:"googleApiKey"`
	AzureSpeechKey    string `json:"azureSpeechKey"`
	AzureSpeechRegion string `json:"azureSpeechRegion"`
}

// Masked hides all but the last four characters of each key.
func (k Keys) Masked() Keys {
	return Keys{GoogleAPIKey: mask(k.GoogleAPIKey), AzureSpeechKey: mask(k.AzureSpeechKey), AzureSpeechRegion: k.AzureSpeechRegion}
}

func mask(s string) string {
	if len(s) <= 4 {
		if s == "" {
			return ""
		}
		return "****"
	}
	return "****" + s[len(s)-4:]
}

// Keyring resolves capabilities from per-user keys, falling back to the
// process-wide defaults. Keys live in memory only.
type Keyring struct {
	defaults       Capabilities
	opponentModel  string
	judgeModel     string
	speechLanguage string

	mu    sync.RWMutex
	keys  map[string]Keys
	cache map[string]Capabilities
}

func NewKeyring(defaults Capabilities, opponentModel, judgeModel, speechLanguage string) *Keyring {
	return &Keyring{
		defaults:       defaults,
		opponentModel:  opponentModel,
		judgeModel:     judgeModel,
		speechLanguage: speechLanguage,
		keys:           make(map[string]Keys),
		cache:          make(map[string]Capabilities),
	}
}

func (k *Keyring) SetKeys(identity string, keys Keys) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys[identity] = keys
	delete(k.cache, identity)
}

func (k *Keyring) Keys(identity string) Keys {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.keys[identity]
}

func (k *Keyring) Forget(identity string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.keys, identity)
	delete(k.cache, identity)
}

func (k *Keyring) Resolve(ctx context.Context, identity string) Capabilities {
	k.mu.RLock()
	caps, cached := k.cache[identity]
	keys, hasKeys := k.keys[identity]
	k.mu.RUnlock()
	if cached {
		return caps
	}
	if !hasKeys {
		return k.defaults
	}

	caps = k.defaults
	if keys.GoogleAPIKey != "" {
		client, err := gemini.New(ctx, keys.GoogleAPIKey)
		if err != nil {
			log.Warn().Err(err).Str("user", identity).Msg("keys:gemini")
		} else {
			caps.Generator = ai.NewOpponent(client, k.opponentModel)
			caps.Evaluator = ai.NewEvaluator(client, k.judgeModel)
		}
	}
	if keys.AzureSpeechKey != "" && keys.AzureSpeechRegion != "" {
		caps.Transcriber = azure.New(keys.AzureSpeechKey, keys.AzureSpeechRegion, k.speechLanguage)
	}

	k.mu.Lock()
	k.cache[identity] = caps
	k.mu.Unlock()
	return caps
}

// Static always returns the same capabilities.
type Static Capabilities

func (s Static) Resolve(context.Context, string) Capabilities { return Capabilities(s) }
