package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// ExtractionClient pulls structured specifications out of raw quote text
// via the LLM completion service
type ExtractionClient interface {
	ExtractQuote(ctx context.Context, text string) (*QuoteExtraction, error)
}

// EmbeddingClient produces an embedding vector for a search query
type EmbeddingClient interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// QuoteSearchClient runs similarity search over the historical quote index
type QuoteSearchClient interface {
	SearchQuotes(ctx context.Context, query string, topK int) ([]QuoteHit, error)
}

// PDFExtractor turns an uploaded quote PDF into plain text
type PDFExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// PatternStore persists the learned pattern log. The log is read in full and
// rewritten wholesale; Update must serialize concurrent writers (the
// read-all/modify/write-all shape is not safe otherwise).
type PatternStore interface {
	Load(ctx context.Context) ([]MemoryPattern, error)
	Update(ctx context.Context, fn func([]MemoryPattern) []MemoryPattern) error
}
