package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/sai-aps/quotematch/internal/domain"
)

// QuoteServiceConfig holds configuration for the quote service
type QuoteServiceConfig struct {
	CacheTTL time.Duration
}

// QuoteService orchestrates the full pipeline: raw text or PDF -> structured
// extraction -> feature normalization -> catalog match -> BOM. Collaborator
// failures never escape as errors; they surface as a status "error" outcome
// so the chat layer always has something to render.
type QuoteService struct {
	extractor *FeatureExtractor
	matcher   *Matcher
	boms      *BOMService
	llm       domain.ExtractionClient
	pdf       domain.PDFExtractor
	cache     domain.CacheRepository
	patterns  *PatternService
	cacheTTL  time.Duration
}

// NewQuoteService creates the quote orchestration service. llm, pdf, cache
// and patterns may be nil; the corresponding steps degrade gracefully.
func NewQuoteService(
	extractor *FeatureExtractor,
	matcher *Matcher,
	boms *BOMService,
	llm domain.ExtractionClient,
	pdf domain.PDFExtractor,
	cache domain.CacheRepository,
	patterns *PatternService,
	config QuoteServiceConfig,
) *QuoteService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}

	return &QuoteService{
		extractor: extractor,
		matcher:   matcher,
		boms:      boms,
		llm:       llm,
		pdf:       pdf,
		cache:     cache,
		patterns:  patterns,
		cacheTTL:  cacheTTL,
	}
}

// MatchText matches a free-typed spec line against the catalog
func (s *QuoteService) MatchText(ctx context.Context, text string) *domain.MatchOutcome {
	features, err := s.extractor.FromText(text)
	if err != nil {
		return s.errorOutcome(err)
	}
	return s.match(ctx, features, domain.PatternSourceText)
}

// MatchQuote matches a structured quote extraction against the catalog
func (s *QuoteService) MatchQuote(ctx context.Context, quote *domain.QuoteExtraction) *domain.MatchOutcome {
	features, err := s.extractor.FromQuote(quote)
	if err != nil {
		return s.errorOutcome(err)
	}

	outcome := s.match(ctx, features, domain.PatternSourceQuote)
	if quote.Reasoning != "" {
		outcome.Message = quote.Reasoning + "\n\n" + outcome.Message
	}
	return outcome
}

// MatchPDF runs the full document pipeline: extract text, pull structured
// specs through the LLM (cached by content hash), then match.
func (s *QuoteService) MatchPDF(ctx context.Context, pdfPath string) *domain.MatchOutcome {
	if s.pdf == nil || s.llm == nil {
		return s.errorOutcome(fmt.Errorf("%w: document pipeline not configured", domain.ErrInvalidRequest))
	}

	text, err := s.pdf.ExtractText(ctx, pdfPath)
	if err != nil {
		return s.errorOutcome(err)
	}

	quote, err := s.extractWithCache(ctx, text)
	if err != nil {
		return s.errorOutcome(err)
	}

	features, err := s.extractor.FromQuote(quote)
	if err != nil {
		return s.errorOutcome(err)
	}

	outcome := s.match(ctx, features, domain.PatternSourcePDF)
	if quote.Reasoning != "" {
		outcome.Message = quote.Reasoning + "\n\n" + outcome.Message
	}
	return outcome
}

// match runs the matcher, attaches the BOM on an exact hit, records learned
// patterns, and consults them for a suggestion when nothing matched
func (s *QuoteService) match(ctx context.Context, features domain.FeatureRecord, source string) *domain.MatchOutcome {
	matched, status, message := s.matcher.Match(features)

	outcome := &domain.MatchOutcome{
		Status:            status,
		Message:           message,
		MatchedAssemblies: matched,
		ExtractedFeatures: features,
	}

	switch status {
	case domain.StatusExactMatch:
		bom, err := s.boms.Generate(matched[0])
		if err != nil {
			return s.errorOutcome(err)
		}
		outcome.BOM = bom

		if s.patterns != nil {
			if err := s.patterns.Record(ctx, features, matched[0], source); err != nil {
				log.Printf("[QUOTE] pattern record failed: %v", err)
			}
		}

	case domain.StatusNoMatch:
		if s.patterns != nil {
			suggestion, err := s.patterns.Suggest(ctx, features)
			if err != nil {
				log.Printf("[QUOTE] pattern suggest failed: %v", err)
			} else if suggestion != nil {
				outcome.Message += fmt.Sprintf(
					"   Learned pattern suggests box identifier %s (seen %d times).\n",
					suggestion.BoxIdentifier, suggestion.MatchCount)
			}
		}
	}

	return outcome
}

// extractWithCache runs the LLM extraction, caching results by content hash
// so re-uploads of the same quote skip the completion call
func (s *QuoteService) extractWithCache(ctx context.Context, text string) (*domain.QuoteExtraction, error) {
	key := extractionCacheKey(text)

	if s.cache != nil {
		if value, err := s.cache.Get(ctx, key); err == nil {
			if quote, err := decodeCachedExtraction(value); err == nil {
				log.Printf("[QUOTE] extraction cache hit: %s", key)
				return quote, nil
			}
		}
	}

	quote, err := s.llm.ExtractQuote(ctx, text)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, quote, s.cacheTTL); err != nil {
			log.Printf("[QUOTE] extraction cache store failed: %v", err)
		}
	}

	return quote, nil
}

func extractionCacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "extract:" + hex.EncodeToString(sum[:16])
}

// decodeCachedExtraction rebuilds a QuoteExtraction from whatever shape the
// cache hands back (the memory cache stores JSON-roundtripped maps)
func decodeCachedExtraction(value interface{}) (*domain.QuoteExtraction, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var quote domain.QuoteExtraction
	if err := json.Unmarshal(raw, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

// errorOutcome converts a pipeline failure into the error-status outcome the
// chat layer renders directly
func (s *QuoteService) errorOutcome(err error) *domain.MatchOutcome {
	log.Printf("[QUOTE] matching failed: %v", err)
	return &domain.MatchOutcome{
		Status:            domain.StatusError,
		Message:           fmt.Sprintf("Error during matching: %v", err),
		MatchedAssemblies: []string{},
		ExtractedFeatures: domain.FeatureRecord{},
	}
}
