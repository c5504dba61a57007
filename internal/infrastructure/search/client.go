// Package search implements the Azure AI Search client for historical quote
// similarity lookup. Queries run as hybrid search: the text query plus a
// vector query over the content embedding field.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/sai-aps/quotematch/internal/domain"
)

const (
	apiVersion     = "2023-11-01"
	vectorField    = "content_vector"
	requestTimeout = 30 * time.Second

	selectFields = "quote_number,customer_name,project_title,quote_date," +
		"dimensions_text,voltage,amperage,modules_summary"
)

// Config holds the Azure AI Search connection settings
type Config struct {
	Endpoint  string
	APIKey    string
	IndexName string
}

// Client handles communication with the Azure AI Search service
type Client struct {
	httpClient *http.Client
	config     Config
	embeddings domain.EmbeddingClient
}

// NewClient creates a new search client. The embedding client supplies the
// query vector for the hybrid search.
func NewClient(config Config, embeddings domain.EmbeddingClient) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		config:     config,
		embeddings: embeddings,
	}
}

type vectorQuery struct {
	Kind   string    `json:"kind"`
	Vector []float32 `json:"vector"`
	K      int       `json:"k"`
	Fields string    `json:"fields"`
}

type searchRequest struct {
	Search        string        `json:"search"`
	VectorQueries []vectorQuery `json:"vectorQueries"`
	Select        string        `json:"select"`
	Top           int           `json:"top"`
}

type searchDocument struct {
	QuoteNumber    string  `json:"quote_number"`
	CustomerName   string  `json:"customer_name"`
	ProjectTitle   string  `json:"project_title"`
	QuoteDate      string  `json:"quote_date"`
	DimensionsText string  `json:"dimensions_text"`
	Voltage        string  `json:"voltage"`
	Amperage       string  `json:"amperage"`
	ModulesSummary string  `json:"modules_summary"`
	Score          float64 `json:"@search.score"`
}

type searchResponse struct {
	Value []searchDocument `json:"value"`
}

// SearchQuotes runs a hybrid text + vector search over the quote index
func (c *Client) SearchQuotes(ctx context.Context, query string, topK int) ([]domain.QuoteHit, error) {
	log.Printf("[SEARCH] SearchQuotes called with query: %q, topK: %d", query, topK)

	vector, err := c.embeddings.CreateEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}

	reqBody := searchRequest{
		Search: query,
		VectorQueries: []vectorQuery{{
			Kind:   "vector",
			Vector: vector,
			K:      topK,
			Fields: vectorField,
		}},
		Select: selectFields,
		Top:    topK,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/indexes/%s/docs/search?api-version=%s",
		c.config.Endpoint, c.config.IndexName, apiVersion)

	req, err := http.NewRequestWithContext(ctx, "POST", reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchAPIFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Printf("[SEARCH] API error - Status: %d, Body: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("%w: status %d", domain.ErrSearchAPIFailure, resp.StatusCode)
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	hits := make([]domain.QuoteHit, 0, len(searchResp.Value))
	for _, doc := range searchResp.Value {
		hits = append(hits, domain.QuoteHit{
			QuoteNumber:    doc.QuoteNumber,
			CustomerName:   doc.CustomerName,
			ProjectTitle:   doc.ProjectTitle,
			QuoteDate:      doc.QuoteDate,
			DimensionsText: doc.DimensionsText,
			Voltage:        doc.Voltage,
			Amperage:       doc.Amperage,
			ModulesSummary: doc.ModulesSummary,
			Score:          doc.Score,
		})
	}

	log.Printf("[SEARCH] Found %d quotes for query: %q", len(hits), query)
	return hits, nil
}
