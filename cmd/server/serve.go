package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Rakshana0506/ET-project-deployment/internal/ai"
	"github.com/Rakshana0506/ET-project-deployment/internal/ai/gemini"
	"github.com/Rakshana0506/ET-project-deployment/internal/ai/ollama"
	"github.com/Rakshana0506/ET-project-deployment/internal/ai/openai"
	"github.com/Rakshana0506/ET-project-deployment/internal/api"
	"github.com/Rakshana0506/ET-project-deployment/internal/auth"
	"github.com/Rakshana0506/ET-project-deployment/internal/coach"
	"github.com/Rakshana0506/ET-project-deployment/internal/config"
	"github.com/Rakshana0506/ET-project-deployment/internal/debate"
	"github.com/Rakshana0506/ET-project-deployment/internal/export"
	"github.com/Rakshana0506/ET-project-deployment/internal/judge"
	"github.com/Rakshana0506/ET-project-deployment/internal/speech/azure"
	"github.com/Rakshana0506/ET-project-deployment/internal/store"
	"github.com/Rakshana0506/ET-project-deployment/internal/ws"
	staticserver "github.com/Rakshana0506/ET-project-deployment/static"
)

const sweepInterval = 10 * time.Minute

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and socket.io server",
		RunE:  runServe,
	}
	cmd.Flags().String("port", "", "Port to listen on (overrides PORT env var)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	defaults := defaultCapabilities(ctx, cfg)
	keyring := coach.NewKeyring(defaults, cfg.OpponentModel, cfg.JudgeModel, cfg.SpeechLanguage)

	var exporter *export.Exporter
	if cfg.ExportEnabled {
		exporter = export.New(cfg.ExportFile)
	}
	svc := coach.New(coach.Options{
		Manager:           debate.NewManager(),
		Pipeline:          judge.NewPipeline(cfg.EvaluationTimeout),
		Archive:           db,
		Resolver:          keyring,
		Exporter:          exporter,
		GenerationTimeout: cfg.GenerationTimeout,
	})

	gin.SetMode(gin.ReleaseMode)
	r := api.NewEngine()
	tokens := auth.NewTokens(cfg.SessionTTL)
	api.New(api.Options{Service: svc, Users: db, Tokens: tokens, Keyring: keyring}).Mount(r)

	sock := ws.New(svc, tokens)
	io := sock.Mount(r)
	defer io.Close()

	// Serve frontend (if embedded build is present) for all other routes
	r.NoRoute(func(c *gin.Context) {
		staticserver.Handler().ServeHTTP(c.Writer, c.Request)
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("db", db.Path()).Str("provider", cfg.DefaultProvider).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		log.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case now := <-ticker.C:
				if n := svc.Sweep(now.Add(-cfg.SessionTTL)); n > 0 {
					log.Info().Int("removed", n).Msg("debate:sweep")
				}
				tokens.Sweep()
			}
		}
	})
	return g.Wait()
}

// defaultCapabilities wires the process-wide opponent, evaluator and
// transcriber. A provider that cannot be built leaves its capability nil,
// which degrades the affected step instead of failing startup.
func defaultCapabilities(ctx context.Context, cfg config.Config) coach.Capabilities {
	reg := ai.NewRegistry(cfg.DefaultProvider)
	reg.Register("openai", openai.New(cfg.OpenAIKey, cfg.OpenAIBaseURL))
	reg.Register("ollama", ollama.New(cfg.OllamaHost))
	if cfg.GoogleAPIKey != "" {
		client, err := gemini.New(ctx, cfg.GoogleAPIKey)
		if err != nil {
			log.Warn().Err(err).Msg("provider:gemini")
		} else {
			reg.Register("gemini", client)
		}
	}

	var caps coach.Capabilities
	provider, err := reg.Get("")
	if err != nil {
		log.Warn().Err(err).Strs("available", reg.Names()).Msg("no default provider; opponent and judge disabled until keys are set")
	} else {
		caps.Generator = ai.NewOpponent(provider, cfg.OpponentModel)
		caps.Evaluator = ai.NewEvaluator(provider, cfg.JudgeModel)
	}
	if cfg.AzureSpeechKey != "" && cfg.AzureSpeechRegion != "" {
		caps.Transcriber = azure.New(cfg.AzureSpeechKey, cfg.AzureSpeechRegion, cfg.SpeechLanguage)
	}
	return caps
}
