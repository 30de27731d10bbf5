package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gifthub/engine/internal/domain"
	"github.com/gifthub/engine/internal/logging"
	"github.com/gifthub/engine/internal/usecase"
	"github.com/gin-gonic/gin"
)

// Services are the use cases the HTTP handlers delegate to
type Services struct {
	Pages   *usecase.PageService
	Catalog *usecase.CatalogService
	Related *usecase.RelatedService
	Warmer  *usecase.Warmer
	// Ready reports storage health; nil means always ready
	Ready func(ctx context.Context) error
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	svc Services
}

// NewHandler creates a new HTTP handler
func NewHandler(svc Services) *Handler {
	return &Handler{svc: svc}
}

// WarmRequest is the body of POST /api/v1/catalog/warm
type WarmRequest struct {
	Identifiers []string `json:"identifiers" binding:"required"`
	BatchSize   *int     `json:"batch_size"`
	SleepMs     *int     `json:"sleep_ms"`
}

// PageSavedRequest is the body of POST /api/v1/hooks/page-saved
type PageSavedRequest struct {
	PageID int64 `json:"page_id" binding:"required"`
}

// TermsSetRequest is the body of POST /api/v1/hooks/terms-set
type TermsSetRequest struct {
	PageID   int64  `json:"page_id" binding:"required"`
	Taxonomy string `json:"taxonomy" binding:"required"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	if h.svc.Ready != nil {
		if err := h.svc.Ready(c.Request.Context()); err != nil {
			logging.Warn().Err(err).Msg("health check failed")
			status, code = "unhealthy", http.StatusServiceUnavailable
		}
	}

	enrichment := false
	if h.svc.Catalog != nil {
		enrichment = h.svc.Catalog.Enabled()
	}

	c.JSON(code, gin.H{
		"status":     status,
		"service":    "gifthub-engine",
		"version":    "1.0.0",
		"enrichment": enrichment,
	})
}

// GetPage returns the assembled view of a gift page
func (h *Handler) GetPage(c *gin.Context) {
	view, err := h.svc.Pages.BuildView(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetRelated returns the related pages of a gift page
func (h *Handler) GetRelated(c *gin.Context) {
	limit, ok := queryInt(c, "limit", usecase.DefaultRelatedLimit)
	if !ok {
		return
	}

	related, err := h.svc.Pages.Related(c.Request.Context(), c.Param("slug"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"related": related})
}

// GetTopPick returns one enriched top pick by 1-based index
func (h *Handler) GetTopPick(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be an integer"})
		return
	}

	pick, err := h.svc.Pages.TopPick(c.Request.Context(), c.Param("slug"), index)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pick)
}

// GetHub lists published pages carrying a taxonomy term
func (h *Handler) GetHub(c *gin.Context) {
	limit, ok := queryInt(c, "limit", usecase.DefaultHubLimit)
	if !ok {
		return
	}

	pages, err := h.svc.Pages.HubList(c.Request.Context(), c.Param("taxonomy"), c.Param("term"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pages": pages})
}

// GetCatalogItem returns enrichment for one product identifier
func (h *Handler) GetCatalogItem(c *gin.Context) {
	id := domain.NormalizeIdentifier(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifier is empty after normalization"})
		return
	}

	result, err := h.svc.Catalog.Lookup(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !result.Found() {
		c.JSON(http.StatusNotFound, gin.H{"asin": id, "source": result.Source, "error": "enrichment not available"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"asin":       id,
		"source":     result.Source,
		"enrichment": result.Enrichment,
	})
}

// WarmCatalog pre-populates the catalog cache for a list of identifiers
func (h *Handler) WarmCatalog(c *gin.Context) {
	var req WarmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	batchSize, sleepMs := usecase.DefaultWarmBatchSize, usecase.DefaultWarmDelayMs
	if req.BatchSize != nil {
		batchSize = *req.BatchSize
	}
	if req.SleepMs != nil {
		sleepMs = *req.SleepMs
	}

	summary := h.svc.Warmer.Warm(c.Request.Context(), req.Identifiers, batchSize, sleepMs)
	c.JSON(http.StatusOK, summary)
}

// PageSaved invalidates a page's related list after the content host saved it
func (h *Handler) PageSaved(c *gin.Context) {
	var req PageSavedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.svc.Related.InvalidatePage(c.Request.Context(), req.PageID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// TermsSet invalidates a page's related list after its terms changed
func (h *Handler) TermsSet(c *gin.Context) {
	var req TermsSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.svc.Related.InvalidateOnTermsSet(c.Request.Context(), req.PageID, req.Taxonomy); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// queryInt parses an optional integer query parameter, writing a 400 on failure
func queryInt(c *gin.Context, name string, fallback int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be an integer"})
		return 0, false
	}
	return v, true
}

// respondError maps domain errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrPageNotFound), errors.Is(err, domain.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "request cancelled"})
	default:
		logging.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
