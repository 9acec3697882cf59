package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Rakshana0506/ET-project-deployment/internal/judge"
	"github.com/Rakshana0506/ET-project-deployment/internal/speech"
	"github.com/Rakshana0506/ET-project-deployment/internal/speech/azure"
	"github.com/Rakshana0506/ET-project-deployment/internal/store"
)

func newInitDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "initdb",
		Short: "Create the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			db, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()
			fmt.Printf("Database ready at %s\n", db.Path())
			return nil
		},
	}
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List a user's archived debates",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, _ := cmd.Flags().GetString("user")
			db, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer db.Close()
			entries, err := db.LoadHistoryList(cmd.Context(), user)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Printf("No debates archived for %s\n", user)
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tWHEN\tMODE\tTOPIC")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.ID, e.Timestamp.Local().Format(time.DateTime), e.Mode, e.Topic)
			}
			return w.Flush()
		},
	}
	cmd.Flags().String("user", "", "Username (required)")
	cmd.MarkFlagRequired("user")
	return cmd
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show a user's practice statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, _ := cmd.Flags().GetString("user")
			db, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer db.Close()
			st, err := db.ReadStatistics(cmd.Context(), user)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %d debates, %d won, %d lost, %d drawn\n", user, st.Total(), st.Wins, st.Losses, st.Draws)
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, skill := range judge.Skills {
				fmt.Fprintf(w, "  %s\t%.1f\n", skill.Label(), st.Averages[skill])
			}
			return w.Flush()
		},
	}
	cmd.Flags().String("user", "", "Username (required)")
	cmd.MarkFlagRequired("user")
	return cmd
}

func newTranscribeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcribe",
		Short: "Transcribe a WAV recording with the configured speech service",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.AzureSpeechKey == "" || cfg.AzureSpeechRegion == "" {
				return fmt.Errorf("AZURE_SPEECH_KEY and AZURE_SPEECH_REGION are required")
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			audio, err := speech.DecodeWAV(data)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.GenerationTimeout)
			defer cancel()
			text, err := azure.New(cfg.AzureSpeechKey, cfg.AzureSpeechRegion, cfg.SpeechLanguage).Transcribe(ctx, audio)
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		},
	}
	cmd.Flags().String("file", "", "WAV file to transcribe (required)")
	cmd.MarkFlagRequired("file")
	return cmd
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return store.Open(cfg.DBPath)
}
