package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var (
	ErrMissingRequired = errors.New("missing required configuration")
	ErrNoCredential    = errors.New("no API key found for LLM")
)

type Config struct {
	// Server
	ServerPort     int      `envconfig:"SERVER_PORT" default:"8000"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`

	// GitHub
	GitHubToken    string `envconfig:"GITHUB_TOKEN"`
	GitHubUsername string `envconfig:"GITHUB_USERNAME" default:"sankalp250"`

	// LLM providers. Groq is the primary chat backend, Gemini the fallback.
	// Embeddings always go through Gemini, so GOOGLE_API_KEY is required.
	GroqAPIKey   string `envconfig:"GROQ_API_KEY"`
	GoogleAPIKey string `envconfig:"GOOGLE_API_KEY"`
	GroqModel    string `envconfig:"GROQ_MODEL" default:"mixtral-8x7b-32768"`
	GeminiModel  string `envconfig:"GEMINI_MODEL" default:"gemini-pro"`

	// Knowledge base
	IndexDir     string `envconfig:"INDEX_DIR" default:"./data/index"`
	ResumePath   string `envconfig:"RESUME_PATH" default:"./assets/resume.pdf"`
	ChunkSize    int    `envconfig:"CHUNK_SIZE" default:"500"`
	ChunkOverlap int    `envconfig:"CHUNK_OVERLAP" default:"50"`
	RetrievalK   int    `envconfig:"RETRIEVAL_K" default:"3"`
	QueryLogPath string `envconfig:"QUERY_LOG_PATH" default:"data/logs/query.log"`

	// Optional Weaviate-backed index. When set, the embedded index directory
	// is not used.
	WeaviateHost   string `envconfig:"WEAVIATE_HOST"`
	WeaviateScheme string `envconfig:"WEAVIATE_SCHEME" default:"http"`

	// Optional Postgres for the contact feature. Left empty, the contact
	// endpoint is not registered.
	DBHost        string `envconfig:"DB_HOST"`
	DBPort        int    `envconfig:"DB_PORT" default:"5432"`
	DBUser        string `envconfig:"DB_USER" default:"portfolio"`
	DBPass        string `envconfig:"DB_PASS" default:"password"`
	DBName        string `envconfig:"DB_NAME" default:"portfolio"`
	MigrationPath string `envconfig:"MIGRATION_PATH" default:"file://migrations"`

	// Resilience
	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Try loading .env from current dir and repo root.
	// Ignore errors, as env vars might be set in the shell.
	_ = godotenv.Load(".env")

	cwd, _ := os.Getwd()
	rootEnv := filepath.Join(cwd, "../.env")
	_ = godotenv.Load(rootEnv)

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.GroqAPIKey == "" && c.GoogleAPIKey == "" {
		return ErrNoCredential
	}
	if c.GoogleAPIKey == "" {
		return fmt.Errorf("%w: GOOGLE_API_KEY (required for embeddings)", ErrMissingRequired)
	}
	if c.GitHubUsername == "" {
		return fmt.Errorf("%w: GITHUB_USERNAME", ErrMissingRequired)
	}
	if c.ChunkSize <= c.ChunkOverlap || c.ChunkOverlap < 0 {
		return fmt.Errorf("%w: CHUNK_SIZE must exceed CHUNK_OVERLAP and overlap must be >= 0", ErrMissingRequired)
	}
	return nil
}

// ContactEnabled reports whether a Postgres instance is configured for the
// contact feature.
func (c *Config) ContactEnabled() bool {
	return strings.TrimSpace(c.DBHost) != ""
}
