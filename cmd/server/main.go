package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/sai-aps/quotematch/config"
	"github.com/sai-aps/quotematch/internal/catalog"
	httpDelivery "github.com/sai-aps/quotematch/internal/delivery/http"
	"github.com/sai-aps/quotematch/internal/domain"
	"github.com/sai-aps/quotematch/internal/infrastructure/cache"
	"github.com/sai-aps/quotematch/internal/infrastructure/openai"
	"github.com/sai-aps/quotematch/internal/infrastructure/patterns"
	"github.com/sai-aps/quotematch/internal/infrastructure/pdf"
	"github.com/sai-aps/quotematch/internal/infrastructure/search"
	"github.com/sai-aps/quotematch/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting QuoteMatch Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Cache Type: %s", cfg.Cache.Type)

	// The catalog is fixed and validated at startup; any inconsistency in the
	// embedded parts table is fatal.
	cat, err := catalog.New()
	if err != nil {
		log.Fatalf("Failed to load assembly catalog: %v", err)
	}
	log.Printf("Catalog loaded: %d assemblies", cat.Len())

	// Cache backend
	var extractionCache domain.CacheRepository
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(context.Background(), cfg.Cache.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisCache.Close()
		extractionCache = redisCache
	default:
		extractionCache = cache.NewMemoryCache()
	}

	// Learned pattern log
	var patternService *usecase.PatternService
	if cfg.Patterns.Enabled {
		store, err := patterns.NewFileStore(cfg.Patterns.FilePath)
		if err != nil {
			log.Fatalf("Failed to open pattern store: %v", err)
		}
		patternService = usecase.NewPatternService(store, usecase.PatternServiceConfig{
			SimilarityThreshold: cfg.Patterns.SimilarityThreshold,
		})
		log.Printf("Pattern log: %s (threshold %.2f)", cfg.Patterns.FilePath, cfg.Patterns.SimilarityThreshold)
	} else {
		log.Printf("Pattern log disabled")
	}

	// Azure OpenAI (optional; text matching works without it)
	var (
		llmClient       *openai.Client
		extractor       domain.ExtractionClient
		completions     usecase.CompletionClient
		embeddingClient domain.EmbeddingClient
	)
	if cfg.OpenAI.Endpoint != "" {
		llmClient = openai.NewClient(openai.Config{
			Endpoint:            cfg.OpenAI.Endpoint,
			APIKey:              cfg.OpenAI.APIKey,
			Deployment:          cfg.OpenAI.Deployment,
			EmbeddingDeployment: cfg.OpenAI.EmbeddingDeployment,
			APIVersion:          cfg.OpenAI.APIVersion,
			RequestsPerMinute:   cfg.RateLimit.OpenAI,
			TrainingContext:     cat.TrainingText(),
		})
		extractor = llmClient
		completions = llmClient
		embeddingClient = llmClient
		log.Printf("OpenAI configured: %s (deployment %s)", cfg.OpenAI.Endpoint, cfg.OpenAI.Deployment)
	} else {
		log.Printf("OpenAI not configured - PDF extraction and quote search disabled")
	}

	// Azure AI Search (optional)
	var searchService *usecase.SearchService
	if cfg.Search.Endpoint != "" && embeddingClient != nil {
		searchClient := search.NewClient(search.Config{
			Endpoint:  cfg.Search.Endpoint,
			APIKey:    cfg.Search.APIKey,
			IndexName: cfg.Search.IndexName,
		}, embeddingClient)
		searchService = usecase.NewSearchService(searchClient, completions, usecase.SearchServiceConfig{})
		log.Printf("Quote search configured: %s (index %s)", cfg.Search.Endpoint, cfg.Search.IndexName)
	}

	// Usecase layer
	matcher := usecase.NewMatcher(cat, usecase.MatcherConfig{
		EnableDebugLogging: cfg.Matching.DebugLogging,
	})
	bomService := usecase.NewBOMService(cat)
	quoteService := usecase.NewQuoteService(
		usecase.NewFeatureExtractor(cfg.Matching.DebugLogging),
		matcher,
		bomService,
		extractor,
		pdf.NewExtractor(),
		extractionCache,
		patternService,
		usecase.QuoteServiceConfig{CacheTTL: cfg.Cache.TTL},
	)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(
		quoteService,
		bomService,
		usecase.NewBoxCodeGenerator(),
		searchService,
		cat,
	)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
