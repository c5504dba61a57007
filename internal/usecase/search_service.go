package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/sai-aps/quotematch/internal/domain"
)

const defaultSearchTopK = 5

// CompletionClient generates a short conversational answer from retrieved
// quote context. Implemented by the OpenAI client.
type CompletionClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64, maxTokens int) (string, error)
}

// SearchServiceConfig holds configuration for the search service
type SearchServiceConfig struct {
	TopK int
}

// SearchService runs similarity search over historical quotes and summarizes
// the hits into a chat answer
type SearchService struct {
	search     domain.QuoteSearchClient
	completion CompletionClient
	topK       int
}

// NewSearchService creates a search service. completion may be nil; the
// answer then falls back to a plain hit count.
func NewSearchService(search domain.QuoteSearchClient, completion CompletionClient, config SearchServiceConfig) *SearchService {
	topK := config.TopK
	if topK <= 0 {
		topK = defaultSearchTopK
	}

	return &SearchService{
		search:     search,
		completion: completion,
		topK:       topK,
	}
}

// Search returns matching historical quotes plus a generated answer
func (s *SearchService) Search(ctx context.Context, query string) (string, []domain.QuoteHit, error) {
	if strings.TrimSpace(query) == "" {
		return "", nil, domain.ErrInvalidRequest
	}
	if s.search == nil {
		return "", nil, fmt.Errorf("%w: search not configured", domain.ErrSearchAPIFailure)
	}

	hits, err := s.search.SearchQuotes(ctx, query, s.topK)
	if err != nil {
		return "", nil, err
	}

	if len(hits) == 0 {
		return "I couldn't find any quotes matching those specifications. " +
			"Try different voltage, amperage, or broader search terms.", nil, nil
	}

	return s.answer(ctx, query, hits), hits, nil
}

// answer asks the completion service to summarize the top hits; any failure
// degrades to a plain count message rather than surfacing an error
func (s *SearchService) answer(ctx context.Context, query string, hits []domain.QuoteHit) string {
	fallback := fmt.Sprintf("I found %d similar quotes based on your search.", len(hits))
	if s.completion == nil {
		return fallback
	}

	contextHits := hits
	if len(contextHits) > 3 {
		contextHits = contextHits[:3]
	}

	var b strings.Builder
	for _, hit := range contextHits {
		fmt.Fprintf(&b, "Quote %s: %s, %s\nDimensions: %s\nDetails: %s\n\n",
			hit.QuoteNumber, hit.Voltage, hit.Amperage, hit.DimensionsText, hit.ModulesSummary)
	}

	system := "You are a helpful assistant for SAI Advanced Power Solutions. " +
		"Help users find relevant switchgear quotes. Be concise and highlight key specs."
	user := fmt.Sprintf("Based on these quotes:\n\n%sAnswer: %s", b.String(), query)

	answer, err := s.completion.Complete(ctx, system, user, 0.7, 500)
	if err != nil {
		log.Printf("[SEARCH] answer generation failed: %v", err)
		return fallback
	}
	return answer
}
