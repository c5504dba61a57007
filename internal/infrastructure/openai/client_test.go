package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sai-aps/quotematch/internal/domain"
)

func testConfig(endpoint string) Config {
	return Config{
		Endpoint:            endpoint,
		APIKey:              "test-api-key",
		Deployment:          "gpt-4o",
		EmbeddingDeployment: "text-embedding-3-small",
		APIVersion:          "2024-02-01",
		RequestsPerMinute:   6000,
	}
}

func chatServerReturning(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/deployments/gpt-4o/chat/completions", r.URL.Path)
		assert.Equal(t, "2024-02-01", r.URL.Query().Get("api-version"))
		assert.Equal(t, "test-api-key", r.Header.Get("api-key"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)

		response := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
}

func TestNewClient(t *testing.T) {
	client := NewClient(testConfig("https://example.openai.azure.com"))

	assert.NotNil(t, client)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.rateLimiter)
	assert.Equal(t, "gpt-4o", client.config.Deployment)
}

func TestComplete_Success(t *testing.T) {
	server := chatServerReturning(t, "  Two quotes match your specs.  ")
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	answer, err := client.Complete(context.Background(), "system", "user", 0.7, 500)

	require.NoError(t, err)
	assert.Equal(t, "Two quotes match your specs.", answer)
}

func TestComplete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	_, err := client.Complete(context.Background(), "system", "user", 0, 100)

	assert.ErrorIs(t, err, domain.ErrOpenAIAPIFailure)
}

func TestComplete_ServerErrorRetries(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"recovered"}}]}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	answer, err := client.Complete(context.Background(), "system", "user", 0, 100)

	require.NoError(t, err)
	assert.Equal(t, "recovered", answer)
	assert.Equal(t, 3, attempts)
}

func TestComplete_ClientErrorDoesNotRetry(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	_, err := client.Complete(context.Background(), "system", "user", 0, 100)

	assert.ErrorIs(t, err, domain.ErrOpenAIAPIFailure)
	assert.Equal(t, 1, attempts)
}

func TestExtractQuote_Success(t *testing.T) {
	extraction := `{
		"sections": [
			{
				"identifier": "Section 101",
				"dimensions": {"height": "90", "width": "40", "depth": "60"},
				"main_circuit_breaker": {"type": "ABB SACE Emax 6.2", "quantity": 1}
			}
		],
		"special_construction_requirements": ["fixed mount"],
		"reasoning": "Matches the 90x40x60 fixed example."
	}`

	server := chatServerReturning(t, "```json\n"+extraction+"\n```")
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	quote, err := client.ExtractQuote(context.Background(), "quote text")

	require.NoError(t, err)
	require.Len(t, quote.Sections, 1)
	assert.Equal(t, "Section 101", quote.Sections[0].Identifier)
	assert.Equal(t, "90", quote.Sections[0].Dimensions.Height)
	require.NotNil(t, quote.Sections[0].MainCircuitBreaker)
	assert.Equal(t, "ABB SACE Emax 6.2", quote.Sections[0].MainCircuitBreaker.Type)
	assert.Equal(t, []string{"fixed mount"}, quote.SpecialConstructionRequirements)
	assert.Equal(t, "Matches the 90x40x60 fixed example.", quote.Reasoning)
}

func TestExtractQuote_NoSections(t *testing.T) {
	server := chatServerReturning(t, `{"sections": [], "reasoning": "nothing found"}`)
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	_, err := client.ExtractQuote(context.Background(), "unrelated text")

	assert.ErrorIs(t, err, domain.ErrNoSections)
}

func TestExtractQuote_MalformedJSON(t *testing.T) {
	server := chatServerReturning(t, "The quote appears to describe switchgear but no JSON here")
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	_, err := client.ExtractQuote(context.Background(), "quote text")

	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestCreateEmbedding_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/deployments/text-embedding-3-small/embeddings", r.URL.Path)
		assert.Equal(t, "test-api-key", r.Header.Get("api-key"))

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "480V switchgear", req.Input)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"embedding":[0.1,0.2,0.3]}]}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	vector, err := client.CreateEmbedding(context.Background(), "480V switchgear")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vector)
}

func TestCreateEmbedding_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	_, err := client.CreateEmbedding(context.Background(), "query")

	assert.ErrorIs(t, err, domain.ErrOpenAIAPIFailure)
}

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "strips markdown fences",
			input:    "```json\n{\"a\": 1}\n```",
			expected: `{"a": 1}`,
		},
		{
			name:     "slices object out of prose",
			input:    "Here is the extraction: {\"a\": 1} Hope that helps!",
			expected: `{"a": 1}`,
		},
		{
			name:     "removes trailing commas",
			input:    `{"a": [1, 2,], "b": {"c": 3,},}`,
			expected: `{"a": [1, 2], "b": {"c": 3}}`,
		},
		{
			name:     "plain json passes through",
			input:    `{"a": 1}`,
			expected: `{"a": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONResponse(tt.input))
		})
	}
}

func TestBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 500 * time.Millisecond},
		{2, 1000 * time.Millisecond},
		{3, 1500 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			assert.Equal(t, tt.expected, backoff(tt.attempt))
		})
	}
}
