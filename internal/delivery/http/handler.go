package http

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/sai-aps/quotematch/internal/catalog"
	"github.com/sai-aps/quotematch/internal/domain"
	"github.com/sai-aps/quotematch/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	quotes   *usecase.QuoteService
	boms     *usecase.BOMService
	boxcodes *usecase.BoxCodeGenerator
	search   *usecase.SearchService
	catalog  *catalog.Catalog
}

// NewHandler creates a new HTTP handler. search may be nil when the quote
// index is not configured.
func NewHandler(
	quotes *usecase.QuoteService,
	boms *usecase.BOMService,
	boxcodes *usecase.BoxCodeGenerator,
	search *usecase.SearchService,
	cat *catalog.Catalog,
) *Handler {
	return &Handler{
		quotes:   quotes,
		boms:     boms,
		boxcodes: boxcodes,
		search:   search,
		catalog:  cat,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"service":    "quotematch-backend",
		"version":    "1.0.0",
		"assemblies": h.catalog.Len(),
	})
}

type matchTextRequest struct {
	Text string `json:"text" binding:"required"`
}

// MatchText matches a free-typed specification line against the catalog
func (h *Handler) MatchText(c *gin.Context) {
	var req matchTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	outcome := h.quotes.MatchText(c.Request.Context(), req.Text)
	c.JSON(http.StatusOK, outcome)
}

// MatchQuote matches a structured quote extraction against the catalog
func (h *Handler) MatchQuote(c *gin.Context) {
	var quote domain.QuoteExtraction
	if err := c.ShouldBindJSON(&quote); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quote payload"})
		return
	}

	outcome := h.quotes.MatchQuote(c.Request.Context(), &quote)
	c.JSON(http.StatusOK, outcome)
}

// MatchPDF accepts a quote PDF upload and runs the full extraction pipeline
func (h *Handler) MatchPDF(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	// Stage the upload in a temp file; the extractor reads from disk
	tmpPath := filepath.Join(os.TempDir(), fmt.Sprintf("quotematch-upload-%s", filepath.Base(file.Filename)))
	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
		return
	}
	defer os.Remove(tmpPath)

	outcome := h.quotes.MatchPDF(c.Request.Context(), tmpPath)
	c.JSON(http.StatusOK, outcome)
}

// ListAssemblies returns every catalog assembly spec in declaration order
func (h *Handler) ListAssemblies(c *gin.Context) {
	ids := h.catalog.IDs()
	assemblies := make([]domain.AssemblyRecord, 0, len(ids))
	for _, id := range ids {
		spec, _ := h.catalog.Get(id)
		assemblies = append(assemblies, spec)
	}

	c.JSON(http.StatusOK, gin.H{
		"count":      len(assemblies),
		"assemblies": assemblies,
	})
}

// GetBOM returns the bill of materials for one assembly
func (h *Handler) GetBOM(c *gin.Context) {
	bom, err := h.boms.Generate(c.Param("id"))
	if err != nil {
		h.renderBOMError(c, err)
		return
	}

	c.JSON(http.StatusOK, bom)
}

// ExportBOM streams the flat CSV form of one assembly's BOM
func (h *Handler) ExportBOM(c *gin.Context) {
	assemblyNumber := c.Param("id")

	bom, err := h.boms.Generate(assemblyNumber)
	if err != nil {
		h.renderBOMError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="bom_%s.csv"`, assemblyNumber))

	if err := h.boms.ExportCSV(c.Writer, bom); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export BOM"})
	}
}

func (h *Handler) renderBOMError(c *gin.Context, err error) {
	var notFound *domain.AssemblyNotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":                notFound.Error(),
			"available_assemblies": notFound.AvailableAssemblies,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

type boxCodeRequest struct {
	Sections []domain.BoxSection  `json:"sections" binding:"required"`
	Board    domain.BoardFeatures `json:"board_features"`
}

// GenerateBoxCodes produces a box identifier per submitted section
func (h *Handler) GenerateBoxCodes(c *gin.Context) {
	var req boxCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sections are required"})
		return
	}

	codes := make([]domain.BoxCode, 0, len(req.Sections))
	for _, section := range req.Sections {
		codes = append(codes, h.boxcodes.Generate(section, req.Board))
	}

	c.JSON(http.StatusOK, gin.H{
		"count":     len(codes),
		"box_codes": codes,
	})
}

type searchRequest struct {
	Query string `json:"query" binding:"required"`
}

// SearchQuotes runs similarity search over historical quotes
func (h *Handler) SearchQuotes(c *gin.Context) {
	if h.search == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "quote search is not configured"})
		return
	}

	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	answer, hits, err := h.search.Search(c.Request.Context(), req.Query)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "quote search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"answer": answer,
		"hits":   hits,
	})
}
