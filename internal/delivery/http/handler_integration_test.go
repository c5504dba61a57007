package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/sai-aps/quotematch/config"
	"github.com/sai-aps/quotematch/internal/catalog"
	"github.com/sai-aps/quotematch/internal/domain"
	"github.com/sai-aps/quotematch/internal/usecase"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// setupTestRouter creates a test router with the full offline pipeline: real
// catalog, matcher and BOM service, no LLM, search or cache.
func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Cache: config.CacheConfig{Type: "memory"},
	}

	cat, err := catalog.New()
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}

	boms := usecase.NewBOMService(cat)
	quotes := usecase.NewQuoteService(
		usecase.NewFeatureExtractor(false),
		usecase.NewMatcher(cat, usecase.MatcherConfig{}),
		boms,
		nil, nil, nil, nil,
		usecase.QuoteServiceConfig{},
	)

	handler := NewHandler(quotes, boms, usecase.NewBoxCodeGenerator(), nil, cat)
	return SetupRouter(cfg, handler)
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	req, _ := http.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheckEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", response["status"])
	}
	if response["assemblies"] != float64(10) {
		t.Errorf("assemblies = %v, want 10", response["assemblies"])
	}
}

func TestMatchTextEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	t.Run("exact match returns a BOM", func(t *testing.T) {
		w := postJSON(t, router, "/api/v1/match/text", gin.H{
			"text": "78 high, 42 wide, 33 deep, square d, fixed, front only",
		})

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var outcome domain.MatchOutcome
		if err := json.Unmarshal(w.Body.Bytes(), &outcome); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if outcome.Status != domain.StatusExactMatch {
			t.Errorf("status = %s, want exact_match", outcome.Status)
		}
		if outcome.BOM == nil || outcome.BOM.AssemblyNumber != "123456-0100-401" {
			t.Errorf("BOM = %+v, want assembly 123456-0100-401", outcome.BOM)
		}
	})

	t.Run("ambiguous specs list candidates", func(t *testing.T) {
		w := postJSON(t, router, "/api/v1/match/text", gin.H{
			"text": "90 high, 40 wide, 60 deep",
		})

		var outcome domain.MatchOutcome
		if err := json.Unmarshal(w.Body.Bytes(), &outcome); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if outcome.Status != domain.StatusAmbiguous {
			t.Errorf("status = %s, want ambiguous", outcome.Status)
		}
		if len(outcome.MatchedAssemblies) != 6 {
			t.Errorf("len(MatchedAssemblies) = %d, want 6", len(outcome.MatchedAssemblies))
		}
	})

	t.Run("missing text is a 400", func(t *testing.T) {
		w := postJSON(t, router, "/api/v1/match/text", gin.H{})

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}

func TestMatchQuoteEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	w := postJSON(t, router, "/api/v1/match/quote", domain.QuoteExtraction{
		Sections: []domain.QuoteSection{{
			Identifier:         "Section 101",
			Dimensions:         domain.SectionDimensions{Height: "78", Width: "42", Depth: "33"},
			MainCircuitBreaker: &domain.BreakerSpec{Type: "Square D"},
		}},
		Reasoning: "Single Square D section.",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
	}

	var outcome domain.MatchOutcome
	if err := json.Unmarshal(w.Body.Bytes(), &outcome); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if outcome.Status != domain.StatusExactMatch {
		t.Errorf("status = %s, want exact_match (message: %s)", outcome.Status, outcome.Message)
	}
	if !strings.HasPrefix(outcome.Message, "Single Square D section.") {
		t.Errorf("Message = %q, want reasoning prefix", outcome.Message)
	}
}

func TestListAssembliesEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	req, _ := http.NewRequest("GET", "/api/v1/assemblies", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
	}

	var response struct {
		Count      int                     `json:"count"`
		Assemblies []domain.AssemblyRecord `json:"assemblies"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Count != 10 || len(response.Assemblies) != 10 {
		t.Errorf("count = %d, len = %d, want 10", response.Count, len(response.Assemblies))
	}
	if response.Assemblies[0].AssemblyNumber != "123456-0100-101" {
		t.Errorf("first assembly = %s, want 123456-0100-101", response.Assemblies[0].AssemblyNumber)
	}
}

func TestGetBOMEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	t.Run("known assembly", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/v1/assemblies/123456-0100-101/bom", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var bom domain.BOM
		if err := json.Unmarshal(w.Body.Bytes(), &bom); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if bom.AssemblyNumber != "123456-0100-101" {
			t.Errorf("AssemblyNumber = %s", bom.AssemblyNumber)
		}
		if bom.TotalParts != len(bom.Components) {
			t.Errorf("TotalParts = %d, components = %d", bom.TotalParts, len(bom.Components))
		}
	})

	t.Run("unknown assembly is a 404 with the valid list", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/v1/assemblies/123456-0100-999/bom", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusNotFound)
		}

		var response struct {
			Error               string   `json:"error"`
			AvailableAssemblies []string `json:"available_assemblies"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if len(response.AvailableAssemblies) != 10 {
			t.Errorf("len(AvailableAssemblies) = %d, want 10", len(response.AvailableAssemblies))
		}
	})
}

func TestExportBOMEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	req, _ := http.NewRequest("GET", "/api/v1/assemblies/123456-0100-101/bom/export", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %s, want text/csv", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "bom_123456-0100-101.csv") {
		t.Errorf("Content-Disposition = %s", cd)
	}

	lines := strings.Split(strings.TrimRight(w.Body.String(), "\n"), "\n")
	if lines[0] != "Item,Part Number,Description,Quantity" {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) < 2 {
		t.Error("export has no component rows")
	}
}

func TestGenerateBoxCodesEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	t.Run("generates one code per section", func(t *testing.T) {
		w := postJSON(t, router, "/api/v1/boxcode", gin.H{
			"sections": []domain.BoxSection{
				{
					Identifier:          "Section 1",
					Height:              "72",
					Width:               "42",
					Depth:               "56",
					BreakerManufacturer: "ABB",
					MountingType:        "Drawout",
				},
				{Identifier: "Section 2", Height: "90", Width: "40", Depth: "60"},
			},
			"board_features": domain.BoardFeatures{SeismicInclusions: "seismic bracing required"},
		})

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var response struct {
			Count    int              `json:"count"`
			BoxCodes []domain.BoxCode `json:"box_codes"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if response.Count != 2 {
			t.Fatalf("count = %d, want 2", response.Count)
		}
		if response.BoxCodes[0].Identifier != "APBXACCDDLS-G01-99" {
			t.Errorf("first code = %s, want APBXACCDDLS-G01-99", response.BoxCodes[0].Identifier)
		}
	})

	t.Run("missing sections is a 400", func(t *testing.T) {
		w := postJSON(t, router, "/api/v1/boxcode", gin.H{})

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}

func TestSearchQuotesEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	// Search is not wired in the offline test router
	w := postJSON(t, router, "/api/v1/quotes/search", gin.H{"query": "480V switchgear"})

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}
