package domain

const unknownDescription = "Unknown"

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API, or any compatible endpoint.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider and chunking configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the model's known vector width.
	Dimensions int

	// ChunkSize is the chunk window in characters.
	ChunkSize int

	// ChunkOverlap is the number of characters shared by adjacent chunks.
	ChunkOverlap int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// RerankSettings configures the optional cross-encoder service.
type RerankSettings struct {
	// BaseURL of a text-embeddings-inference compatible /rerank endpoint.
	// Empty disables re-ranking.
	BaseURL string

	// Model is sent along with the request when set.
	Model string
}

// IsConfigured returns true if a rerank endpoint is set.
func (r RerankSettings) IsConfigured() bool {
	return r.BaseURL != ""
}

// OpenAlexSettings configures the metadata client.
type OpenAlexSettings struct {
	// Email is sent as mailto for the polite pool.
	Email string

	// APIKey is optional.
	APIKey string

	// CitationCountTrigger is the citing-set size above which confirmation
	// is required.
	CitationCountTrigger int

	// Rate is the maximum number of requests per second.
	Rate float64
}

// Settings holds all application settings.
type Settings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// Rerank holds cross-encoder settings.
	Rerank RerankSettings

	// OpenAlex holds metadata client settings.
	OpenAlex OpenAlexSettings
}

// Defaults used when a setting is absent from the config file.
const (
	DefaultChunkSize            = 1000
	DefaultChunkOverlap         = 200
	DefaultCitationCountTrigger = 100
	DefaultRequestRate          = 10.0
)

// DefaultSettings returns settings with sensible defaults.
// The embedding provider defaults to a local Ollama instance.
func DefaultSettings() Settings {
	return Settings{
		Embedding: EmbeddingSettings{
			Provider:     AIProviderOllama,
			Model:        DefaultEmbeddingModels()[AIProviderOllama],
			ChunkSize:    DefaultChunkSize,
			ChunkOverlap: DefaultChunkOverlap,
		},
		OpenAlex: OpenAlexSettings{
			CitationCountTrigger: DefaultCitationCountTrigger,
			Rate:                 DefaultRequestRate,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		"bge-m3":            1024,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
