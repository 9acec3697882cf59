package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port   string `yaml:"port"`
	DBPath string `yaml:"db_path"`

	DefaultProvider string `yaml:"default_provider"`
	OpponentModel   string `yaml:"opponent_model"`
	JudgeModel      string `yaml:"judge_model"`
	GoogleAPIKey    string `yaml:"google_api_key"`
	OpenAIKey       string `yaml:"openai_api_key"`
	OpenAIBaseURL   string `yaml:"openai_base_url"`
	OllamaHost      string `yaml:"ollama_host"`

	AzureSpeechKey    string `yaml:"azure_speech_key"`
	AzureSpeechRegion string `yaml:"azure_speech_region"`
	SpeechLanguage    string `yaml:"speech_language"`

	GenerationTimeout time.Duration `yaml:"generation_timeout"`
	EvaluationTimeout time.Duration `yaml:"evaluation_timeout"`
	SessionTTL        time.Duration `yaml:"session_ttl"`

	ExportEnabled bool   `yaml:"export_enabled"`
	ExportFile    string `yaml:"export_file"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func FromEnv() Config {
	c := Config{}
	c.Port = getenv("PORT", "8080")
	c.DBPath = getenv("DB_PATH", "./data/debates.db")
	c.DefaultProvider = strings.ToLower(getenv("DEFAULT_PROVIDER", "gemini"))
	c.OpponentModel = getenv("OPPONENT_MODEL", "gemini-2.0-flash")
	c.JudgeModel = getenv("JUDGE_MODEL", "gemini-2.0-flash")
	c.GoogleAPIKey = os.Getenv("GOOGLE_API_KEY")
	c.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	c.OpenAIBaseURL = os.Getenv("OPENAI_BASE_URL")
	c.OllamaHost = getenv("OLLAMA_HOST", "http://localhost:11434")
	c.AzureSpeechKey = os.Getenv("AZURE_SPEECH_KEY")
	c.AzureSpeechRegion = os.Getenv("AZURE_SPEECH_REGION")
	c.SpeechLanguage = getenv("SPEECH_LANGUAGE", "en-IN")
	c.GenerationTimeout = getduration("GENERATION_TIMEOUT", 60*time.Second)
	c.EvaluationTimeout = getduration("EVALUATION_TIMEOUT", 90*time.Second)
	c.SessionTTL = getduration("SESSION_TTL", 6*time.Hour)
	c.ExportEnabled = getenv("EXPORT_ENABLED", "false") == "true"
	c.ExportFile = getenv("EXPORT_FILE", "./debate-results.txt")
	c.LogLevel = getenv("LOG_LEVEL", "info")
	c.LogFormat = getenv("LOG_FORMAT", "console")
	return c
}

// Load reads .env (if present) into the environment, builds the config from
// the environment and overlays the YAML file at path when path is not empty.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}
	c := FromEnv()
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	switch c.DefaultProvider {
	case "gemini", "openai", "ollama":
	default:
		return fmt.Errorf("config: unknown provider %q", c.DefaultProvider)
	}
	if c.GenerationTimeout <= 0 || c.EvaluationTimeout <= 0 {
		return errors.New("config: timeouts must be positive")
	}
	if c.DBPath == "" {
		return errors.New("config: db_path is required")
	}
	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
