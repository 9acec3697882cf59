package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Rakshana0506/ET-project-deployment/internal/config"
)

const version = "v1.0.0-dev"

func main() {
	root := &cobra.Command{
		Use:           "debatecoach",
		Short:         "Debate practice and judging server",
		Long:          "Runs practice debates against an AI opponent or judges debates between two people, scores them with an AI evaluator and keeps each user's history and statistics.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "YAML config file (overrides CONFIG_FILE env var)")
	root.PersistentFlags().String("db", "", "SQLite database path (overrides DB_PATH env var)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newInitDBCmd())
	root.AddCommand(newHistoryCmd())
	root.AddCommand(newStatsCmd())
	root.AddCommand(newTranscribeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves configuration from .env, the environment, the YAML
// overlay and finally the persistent flags, then sets up logging.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if db, _ := cmd.Root().PersistentFlags().GetString("db"); db != "" {
		cfg.DBPath = db
	}
	setupLogging(cfg.LogLevel, cfg.LogFormat)
	return cfg, nil
}

func setupLogging(level, format string) {
	zerolog.TimeFieldFormat = time.RFC3339
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	if format == "json" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
		return
	}
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	log.Logger = log.Output(cw)
}
