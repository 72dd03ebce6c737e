package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/stowage-labs/stowage/internal/agent"
	"github.com/stowage-labs/stowage/internal/embedding"
	"github.com/stowage-labs/stowage/internal/feedback"
	"github.com/stowage-labs/stowage/internal/llm"
	"github.com/stowage-labs/stowage/internal/search"
	"github.com/stowage-labs/stowage/internal/storage"
)

// expandPath expands a leading tilde and environment variables in a path.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return os.ExpandEnv(path)
}

// initStore opens the database configured under database.path and runs
// migrations.
func initStore() (*storage.Store, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/stowage/stowage.db"
	}
	dbPath = expandPath(dbPath)

	store, err := storage.NewStore(dbPath, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, nil
}

// createEngineClient builds the reasoning-engine client from configuration.
func createEngineClient() (llm.Client, error) {
	apiKey := viper.GetString("anthropic.api_key")
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key not found in config or ANTHROPIC_API_KEY environment variable")
	}

	return llm.NewClient(llm.Config{
		APIKey:      apiKey,
		Model:       viper.GetString("anthropic.model"),
		BaseURL:     viper.GetString("anthropic.base_url"),
		MaxTokens:   viper.GetInt("anthropic.max_tokens"),
		Temperature: viper.GetFloat64("anthropic.temperature"),
		Timeout:     viper.GetDuration("anthropic.timeout"),
	})
}

// createEmbeddingClient builds the embedding client, or returns nil when no
// endpoint is configured. A nil client disables the semantic search tier.
func createEmbeddingClient() (*embedding.HTTPClient, error) {
	baseURL := viper.GetString("embedding.base_url")
	if baseURL == "" {
		return nil, nil
	}

	retryDelay := viper.GetDuration("embedding.retry_delay")
	if retryDelay == 0 {
		retryDelay = time.Second
	}

	return embedding.NewClient(embedding.Config{
		BaseURL:    baseURL,
		APIKey:     viper.GetString("embedding.api_key"),
		Model:      viper.GetString("embedding.model"),
		Timeout:    viper.GetDuration("embedding.timeout"),
		MaxRetries: viper.GetInt("embedding.max_retries"),
		RetryDelay: retryDelay,
	}, slog.Default())
}

// buildSearchEngine wires the hybrid search engine over a store. The
// semantic tier is active only when an embedding endpoint is configured.
func buildSearchEngine(store *storage.Store) (*search.Engine, error) {
	embedder, err := createEmbeddingClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}
	if embedder == nil {
		slog.Info("no embedding endpoint configured, semantic search disabled")
		return search.NewEngine(store, nil, nil, slog.Default()), nil
	}
	return search.NewEngine(store, embedder, store, slog.Default()), nil
}

// buildClassifier assembles the full classification pipeline over a store.
func buildClassifier(store *storage.Store) (*agent.Classifier, error) {
	engineClient, err := createEngineClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create engine client: %w", err)
	}

	searchEngine, err := buildSearchEngine(store)
	if err != nil {
		return nil, err
	}

	retriever := feedback.NewRetriever(store, slog.Default())
	return agent.NewClassifier(engineClient, searchEngine, retriever, slog.Default()), nil
}

// closeStore closes the store, logging rather than failing on error.
func closeStore(store *storage.Store) {
	if err := store.Close(); err != nil {
		slog.Error("Failed to close database", "error", err)
	}
}
