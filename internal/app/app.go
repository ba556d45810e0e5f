// Package app assembles adapters and services from configuration.
// It is shared by the HTTP server and the CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arturoeanton/scout/internal/adapter/ai"
	"github.com/arturoeanton/scout/internal/adapter/cache"
	"github.com/arturoeanton/scout/internal/adapter/speech"
	"github.com/arturoeanton/scout/internal/adapter/store"
	"github.com/arturoeanton/scout/internal/port"
	"github.com/arturoeanton/scout/internal/service"
	"github.com/arturoeanton/scout/pkg/config"
)

// App holds the wired services.
type App struct {
	Store     port.DocumentStore
	AuditLogs port.AuditLogStore

	Embeddings *service.EmbeddingService
	Retrieval  *service.RetrievalService
	Knowledge  *service.KnowledgeService
	Interview  *service.InterviewService
	Voice      *service.VoiceService

	closers []func() error
}

// Build connects the configured store and providers and creates the services.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}
	if err := a.openStore(ctx, cfg); err != nil {
		a.Close()
		return nil, err
	}

	embedder, err := a.embeddingProvider(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	chat, err := chatProvider(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	var transcriber port.Transcriber
	if cfg.OpenAIAPIKey != "" {
		transcriber = ai.NewWhisperTranscriber(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.TranscriptionModel,
		})
	}
	tts := speech.NewElevenLabs(speech.ElevenLabsConfig{
		APIKey:  cfg.ElevenLabsAPIKey,
		VoiceID: cfg.ElevenLabsVoiceID,
		Model:   cfg.ElevenLabsModel,
	})

	a.Embeddings = service.NewEmbeddingService(embedder, cfg.EmbeddingBatchSize, cfg.EmbeddingConcurrency)
	a.Retrieval = service.NewRetrievalService(a.Embeddings, a.Store, cfg.MatchThreshold, cfg.MatchCount)
	a.Knowledge = service.NewKnowledgeService(a.Embeddings, a.Store, a.Retrieval, cfg.ChunkMaxTokens)
	a.Interview = service.NewInterviewService(chat, a.Retrieval, cfg.InterviewerPrompt)
	a.Voice = service.NewVoiceService(transcriber, tts)

	slog.Info("services ready",
		"store", cfg.StoreDriver,
		"embedding", cfg.EmbeddingProvider+"/"+embedder.ModelName(),
		"chat", cfg.ChatProvider+"/"+chat.ModelName(),
		"transcription", transcriber != nil,
		"tts", tts.Enabled(),
	)
	return a, nil
}

// Close releases connections opened by Build, in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			slog.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}

func (a *App) openStore(ctx context.Context, cfg *config.Config) error {
	switch cfg.StoreDriver {
	case "postgres":
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, pg.Close)
		if err := pg.Migrate(ctx, cfg.EmbeddingDimension); err != nil {
			return err
		}
		a.Store = store.NewVectorStore(pg)
		a.AuditLogs = pg
	case "memory":
		mem := store.NewMemoryStore(cfg.EmbeddingDimension)
		a.Store = mem
		a.AuditLogs = mem
	default:
		return fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
	return nil
}

func (a *App) embeddingProvider(ctx context.Context, cfg *config.Config) (port.EmbeddingProvider, error) {
	var provider port.EmbeddingProvider
	switch cfg.EmbeddingProvider {
	case "openai":
		provider = ai.NewOpenAIEmbedder(ai.OpenAIConfig{
			BaseURL: cfg.EmbeddingBaseURL,
			APIKey:  cfg.EmbeddingAPIKey,
			Model:   cfg.EmbeddingModel,
		})
	case "ollama":
		o, err := ai.NewOllamaProvider(ai.OllamaEndpointConfig{
			BaseURL: cfg.EmbeddingBaseURL,
			Model:   cfg.EmbeddingModel,
			Token:   cfg.EmbeddingAPIKey,
		}, 0)
		if err != nil {
			return nil, err
		}
		provider = o
	case "gemini":
		g, err := ai.NewGeminiEmbedder(ctx, cfg.EmbeddingAPIKey, cfg.EmbeddingModel)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, g.Close)
		provider = g
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbeddingProvider)
	}

	if cfg.RedisURL == "" {
		return provider, nil
	}
	rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Warn("embedding cache disabled", "error", err)
		return provider, nil
	}
	a.closers = append(a.closers, rdb.Close)
	return cache.NewEmbeddingCache(provider, rdb, time.Duration(cfg.EmbeddingCacheTTL)*time.Hour), nil
}

func chatProvider(cfg *config.Config) (port.ChatProvider, error) {
	switch cfg.ChatProvider {
	case "openai":
		return ai.NewOpenAIChat(ai.OpenAIConfig{
			BaseURL:     cfg.ChatBaseURL,
			APIKey:      cfg.ChatAPIKey,
			Model:       cfg.ChatModel,
			Temperature: float32(cfg.ChatTemperature),
		}), nil
	case "ollama":
		return ai.NewOllamaProvider(ai.OllamaEndpointConfig{
			BaseURL: cfg.ChatBaseURL,
			Model:   cfg.ChatModel,
			Token:   cfg.ChatAPIKey,
		}, float32(cfg.ChatTemperature))
	default:
		return nil, fmt.Errorf("unknown chat provider %q", cfg.ChatProvider)
	}
}
