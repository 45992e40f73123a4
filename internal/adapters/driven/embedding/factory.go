// Package embedding selects an embedding adapter from settings.
package embedding

import (
	"fmt"

	"github.com/litdb/litdb/internal/adapters/driven/embedding/ollama"
	"github.com/litdb/litdb/internal/adapters/driven/embedding/openai"
	"github.com/litdb/litdb/internal/core/domain"
	"github.com/litdb/litdb/internal/core/ports/driven"
)

// New builds the embedding service named by settings.Provider. The vector
// width comes from settings, then from the table of known models.
func New(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	dims := settings.Dimensions
	if dims == 0 {
		dims = domain.EmbeddingDimensions()[settings.Model]
	}

	switch settings.Provider {
	case domain.AIProviderOllama, "":
		return ollama.New(ollama.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dims,
		}), nil
	case domain.AIProviderOpenAI:
		return openai.New(openai.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dims,
		})
	default:
		return nil, fmt.Errorf("embedding provider %q: %w", settings.Provider, domain.ErrInvalidInput)
	}
}
