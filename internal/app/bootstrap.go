package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"

	"portfolio/backend/features/chat"
	"portfolio/backend/internal/adapter/chromem"
	"portfolio/backend/internal/adapter/gemini"
	"portfolio/backend/internal/adapter/groq"
	wstore "portfolio/backend/internal/adapter/weaviate"
	"portfolio/backend/internal/config"
	"portfolio/backend/internal/retrieval"
)

type Dependencies struct {
	DB       *sql.DB // nil when the contact feature is disabled
	Store    retrieval.VectorStore
	Embedder retrieval.Embedder
	LLM      chat.LLM

	closers []func() error
}

func (d *Dependencies) Close() {
	for _, c := range d.closers {
		if err := c(); err != nil {
			slog.Warn("failed to close dependency", "error", err)
		}
	}
}

// Bootstrap builds the external dependencies: the Gemini embedder, the chat
// model, the vector store, and (when configured) Postgres with migrations
// applied.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	deps := &Dependencies{}

	embedder, err := gemini.NewEmbedder(ctx, cfg.GoogleAPIKey)
	if err != nil {
		return nil, fmt.Errorf("embedder error: %w", err)
	}
	deps.Embedder = embedder
	deps.closers = append(deps.closers, embedder.Close)

	// Groq is the primary chat backend; Gemini serves when no Groq key is set.
	if cfg.GroqAPIKey != "" {
		deps.LLM = groq.NewClient(cfg.GroqAPIKey, cfg.GroqModel)
	} else {
		client, err := gemini.NewClient(ctx, cfg.GoogleAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("gemini client error: %w", err)
		}
		deps.LLM = client
		deps.closers = append(deps.closers, client.Close)
	}
	slog.Info("chat model selected", "provider", deps.LLM.Name())

	retryDelay := time.Duration(cfg.BootstrapRetryDelaySeconds) * time.Second

	if cfg.WeaviateHost != "" {
		wClient, err := weaviate.NewClient(weaviate.Config{Host: cfg.WeaviateHost, Scheme: cfg.WeaviateScheme})
		if err != nil {
			return nil, fmt.Errorf("weaviate client error: %w", err)
		}
		if err := EnsureSchemaWithRetry(ctx, wstore.NewClientAdapter(wClient), cfg.BootstrapRetryAttempts, retryDelay); err != nil {
			return nil, fmt.Errorf("weaviate schema error: %w", err)
		}
		deps.Store = wstore.NewStore(wClient)
		slog.Info("using weaviate vector store", "host", cfg.WeaviateHost)
	} else {
		store, err := chromem.NewStore(cfg.IndexDir, embedder)
		if err != nil {
			return nil, fmt.Errorf("index error: %w", err)
		}
		deps.Store = store
		slog.Info("using embedded vector store", "dir", cfg.IndexDir)
	}

	if cfg.ContactEnabled() {
		db, err := openDatabase(cfg, retryDelay)
		if err != nil {
			return nil, err
		}
		deps.DB = db
		deps.closers = append(deps.closers, db.Close)
	}

	return deps, nil
}

func openDatabase(cfg *config.Config, retryDelay time.Duration) (*sql.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPass, cfg.DBName)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	for i := 0; i < cfg.BootstrapRetryAttempts; i++ {
		if err := db.Ping(); err == nil {
			break
		}
		slog.Warn("failed to ping db, retrying...", "attempt", i+1)
		time.Sleep(retryDelay)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("migration driver error: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance(cfg.MigrationPath, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("migration instance error: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return nil, fmt.Errorf("migration up error: %w", err)
	}

	return db, nil
}

// EnsureSchemaWithRetry waits out a weaviate instance that is still coming up.
func EnsureSchemaWithRetry(ctx context.Context, client wstore.SchemaClient, attempts int, delay time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = wstore.EnsureSchema(ctx, client); err == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(delay)
		}
	}
	return err
}
