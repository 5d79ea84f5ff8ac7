// Package bootstrap assembles the verifier and memory stack from the
// environment configuration. The server, the CLI, the MCP server and the
// seed script share it.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/Harshitk-cp/groundcheck/internal/config"
	"github.com/Harshitk-cp/groundcheck/internal/domain"
	"github.com/Harshitk-cp/groundcheck/internal/embedding"
	"github.com/Harshitk-cp/groundcheck/internal/knowledge"
	"github.com/Harshitk-cp/groundcheck/internal/llm"
	"github.com/Harshitk-cp/groundcheck/internal/service"
	"github.com/Harshitk-cp/groundcheck/internal/store"
	"go.uber.org/zap"
)

// Stack is everything a front end needs to store and verify memories.
type Stack struct {
	Store     domain.MemoryStore
	Memory    *service.MemoryService
	Verifier  *service.Verifier
	Embedding domain.EmbeddingClient
}

func (s *Stack) Close() {
	if s.Store != nil {
		s.Store.Close()
	}
}

// NewVerifier builds a verifier with the configured knowledge tables,
// semantic matcher and contradiction confirmer. Provider failures are logged
// and leave the verifier on its built-in fallbacks.
func NewVerifier(logger *zap.Logger) (*service.Verifier, domain.EmbeddingClient, error) {
	tables, err := knowledge.LoadFiles(config.TaxonomyPath(), config.OntologyPath())
	if err != nil {
		return nil, nil, fmt.Errorf("load knowledge tables: %w", err)
	}
	v := service.NewVerifier(knowledge.NewEngine(tables), logger)
	v.SetCollaboratorTimeout(config.CollaboratorTimeout())

	llmProvider := config.LLMProvider()
	llmClient, err := llm.NewClient(llmProvider, config.LLMAPIKey())
	switch {
	case err != nil:
		logger.Warn("LLM client initialization failed", zap.String("provider", llmProvider), zap.Error(err))
	case llmClient != nil:
		v.SetConfirmer(service.NewLLMConfirmer(llmClient, logger))
		logger.Info("LLM client initialized", zap.String("provider", llmProvider))
	}

	embeddingProvider := config.EmbeddingProvider()
	embeddingClient, err := embedding.NewClient(embeddingProvider, config.EmbeddingAPIKey(), embedding.WithModel(config.EmbeddingModel()))
	if err != nil {
		logger.Warn("Embedding client initialization failed", zap.String("provider", embeddingProvider), zap.Error(err))
		embeddingClient = nil
	} else if embeddingClient != nil {
		logger.Info("Embedding client initialized", zap.String("provider", embeddingProvider))
	}
	v.SetMatcher(service.NewSemanticMatcher(embeddingClient, config.EmbeddingThreshold()))

	return v, embeddingClient, nil
}

// StoreOptions returns the store selection from the environment.
func StoreOptions() store.Options {
	return store.Options{
		DatabaseURL: config.DatabaseURL(),
		SQLitePath:  config.SQLitePath(),
	}
}

// Open builds the verifier and connects the memory store.
func Open(ctx context.Context, logger *zap.Logger, opts store.Options) (*Stack, error) {
	v, ec, err := NewVerifier(logger)
	if err != nil {
		return nil, err
	}
	ms, err := store.Open(ctx, opts, logger)
	if err != nil {
		return nil, err
	}
	return &Stack{
		Store:     ms,
		Memory:    service.NewMemoryService(ms, v, ec, logger),
		Verifier:  v,
		Embedding: ec,
	}, nil
}
