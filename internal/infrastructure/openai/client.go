// Package openai implements the Azure OpenAI chat-completion and embedding
// clients used for quote spec extraction, answer generation, and search query
// embedding.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/sai-aps/quotematch/internal/domain"
)

const (
	maxRetries        = 3
	requestTimeout    = 30 * time.Second
	extractMaxTokens  = 2500
	extractTemprature = 0.0
)

// Config holds the Azure OpenAI connection settings
type Config struct {
	Endpoint            string
	APIKey              string
	Deployment          string
	EmbeddingDeployment string
	APIVersion          string
	RequestsPerMinute   int
	// TrainingContext is the assembly reference text injected into the
	// extraction system prompt.
	TrainingContext string
}

// Client handles communication with the Azure OpenAI service
type Client struct {
	httpClient  *http.Client
	config      Config
	rateLimiter *rate.Limiter
}

// NewClient creates a new Azure OpenAI client
func NewClient(config Config) *Client {
	rpm := config.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}
	limiter := rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 5)

	return &Client{
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		config:      config,
		rateLimiter: limiter,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type embeddingRequest struct {
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Complete sends a chat completion request and returns the assistant content
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64, maxTokens int) (string, error) {
	reqBody := chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	reqURL := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		c.config.Endpoint, c.config.Deployment, c.config.APIVersion)

	var chatResp chatResponse
	if err := c.postJSON(ctx, reqURL, reqBody, &chatResp); err != nil {
		return "", err
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: completion returned no choices", domain.ErrOpenAIAPIFailure)
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

// ExtractQuote pulls structured section specs out of raw quote text
func (c *Client) ExtractQuote(ctx context.Context, text string) (*domain.QuoteExtraction, error) {
	log.Printf("[OPENAI] ExtractQuote called with %d chars of text", len(text))

	content, err := c.Complete(ctx, c.extractionSystemPrompt(), extractionUserPrompt(text),
		extractTemprature, extractMaxTokens)
	if err != nil {
		return nil, err
	}

	cleaned := CleanJSONResponse(content)

	var quote domain.QuoteExtraction
	if err := json.Unmarshal([]byte(cleaned), &quote); err != nil {
		log.Printf("[OPENAI] JSON decode error: %v", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	if len(quote.Sections) == 0 {
		return nil, domain.ErrNoSections
	}

	log.Printf("[OPENAI] Extracted %d sections", len(quote.Sections))
	return &quote, nil
}

// CreateEmbedding generates an embedding vector for a search query
func (c *Client) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	reqURL := fmt.Sprintf("%s/openai/deployments/%s/embeddings?api-version=%s",
		c.config.Endpoint, c.config.EmbeddingDeployment, c.config.APIVersion)

	var embResp embeddingResponse
	if err := c.postJSON(ctx, reqURL, embeddingRequest{Input: text}, &embResp); err != nil {
		return nil, err
	}
	if len(embResp.Data) == 0 {
		return nil, fmt.Errorf("%w: embedding returned no data", domain.ErrOpenAIAPIFailure)
	}

	return embResp.Data[0].Embedding, nil
}

// postJSON executes a rate-limited POST with retries for transient failures
func (c *Client) postJSON(ctx context.Context, reqURL string, reqBody, respBody interface{}) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		// Wait for rate limiter
		if err := c.rateLimiter.Wait(ctx); err != nil {
			log.Printf("[OPENAI] Rate limiter error: %v", err)
			return fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, "POST", reqURL, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("api-key", c.config.APIKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			log.Printf("[OPENAI] Request error (attempt %d): %v", attempt, err)
			lastErr = fmt.Errorf("%w: %v", domain.ErrOpenAIAPIFailure, err)
			time.Sleep(backoff(attempt))
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			log.Printf("[OPENAI] API error (attempt %d) - Status: %d, Body: %s", attempt, resp.StatusCode, string(body))
			lastErr = fmt.Errorf("%w: status %d", domain.ErrOpenAIAPIFailure, resp.StatusCode)
			// Client errors other than 429 will not improve on retry
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return lastErr
			}
			time.Sleep(backoff(attempt))
			continue
		}

		if err := json.Unmarshal(body, respBody); err != nil {
			log.Printf("[OPENAI] JSON decode error: %v", err)
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	log.Printf("[OPENAI] All retries failed for %s", reqURL)
	return lastErr
}

func backoff(attempt int) time.Duration {
	return time.Duration(attempt*500) * time.Millisecond
}

// trailingCommaRegex matches a comma immediately before a closing brace or
// bracket, which models emit often enough to special-case
var trailingCommaRegex = regexp.MustCompile(`,(\s*[}\]])`)

// CleanJSONResponse strips markdown fences, slices the outermost JSON object
// out of surrounding prose, and removes trailing commas. Repeated removal
// passes handle nested trailing commas.
func CleanJSONResponse(content string) string {
	content = strings.ReplaceAll(content, "```json", "")
	content = strings.ReplaceAll(content, "```", "")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start != -1 && end > start {
		content = content[start : end+1]
	}

	for i := 0; i < 5; i++ {
		content = trailingCommaRegex.ReplaceAllString(content, "$1")
	}

	return content
}

func (c *Client) extractionSystemPrompt() string {
	training := c.config.TrainingContext
	if training == "" {
		training = "Training document not available."
	}

	return fmt.Sprintf(`You are an expert at matching switchgear quotes to Module 1 assemblies using the training document.

COMPLETE TRAINING DOCUMENT:
%s

YOUR TASK:
1. Read the quote and extract specifications
2. Compare to the examples and patterns in the training document
3. Determine which assembly from the training doc matches
4. EXPLAIN your reasoning by referencing the training document

Extract specs as JSON AND provide explanation:
{
  "sections": [
    {
      "identifier": "Section 101",
      "dimensions": {"height": "90", "width": "40", "depth": "60"},
      "main_circuit_breaker": {"type": "ABB SACE Emax 6.2", "quantity": 1}
    }
  ],
  "special_construction_requirements": ["fixed mount", "front and rear access"],
  "reasoning": "Based on the training document, quotes with 90H x 40W x 60D and Emax 6.2 match Assembly 123456-0100-101."
}

CRITICAL: Always reference the training document in your reasoning. Show which example or pattern you used.`, training)
}

func extractionUserPrompt(text string) string {
	// Keep the prompt inside the completion context window
	if len(text) > 12000 {
		text = text[:12000]
	}

	return fmt.Sprintf(`Using the training document as your guide, extract specs from this quote AND explain which assembly it matches and WHY based on the training document.

Quote:
%s

Return JSON with specs AND reasoning that references the training document.`, text)
}
