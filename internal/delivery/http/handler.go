package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/claimvalue/backend/internal/domain"
	"github.com/claimvalue/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	validation   *usecase.ValidationService
	categories   *usecase.CategoryService
	depreciation *usecase.DepreciationService
}

// NewHandler creates a new HTTP handler
func NewHandler(validation *usecase.ValidationService, categories *usecase.CategoryService, depreciation *usecase.DepreciationService) *Handler {
	return &Handler{
		validation:   validation,
		categories:   categories,
		depreciation: depreciation,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "claimvalue-backend",
		"version": "1.0.0",
	})
}

// validateRequest is the body of POST /api/v1/products/validate.
type validateRequest struct {
	Query         string               `json:"query" binding:"required"`
	PriceCriteria domain.PriceCriteria `json:"priceCriteria"`
}

// ValidateProduct runs the search/extract/validate pipeline for one query.
func (h *Handler) ValidateProduct(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	resp, err := h.validation.ValidateProduct(c.Request.Context(), req.Query, req.PriceCriteria)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrAllSourcesFailed):
			c.JSON(http.StatusBadGateway, domain.ErrorResponse{
				Error:     "all search sources failed",
				Query:     req.Query,
				Details:   err.Error(),
				Timestamp: time.Now().UTC(),
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "validation failed"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// InferCategory resolves a single item's attributes to a category and rate.
// Inference never fails; malformed JSON is the only error path.
func (h *Handler) InferCategory(c *gin.Context) {
	var query domain.CategoryQuery
	if err := c.ShouldBindJSON(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.categories.Infer(c.Request.Context(), query))
}

// depreciationRequest is the body of POST /api/v1/depreciation/apply.
type depreciationRequest struct {
	Items []domain.DepreciationItem `json:"items" binding:"required"`
}

// ApplyDepreciation categorizes and depreciates a batch of items. Items fail
// independently; the response always carries one result per submitted item.
func (h *Handler) ApplyDepreciation(c *gin.Context) {
	var req depreciationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	results := h.depreciation.Apply(c.Request.Context(), req.Items)
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// ReloadCategories re-reads the category schedule and swaps the snapshot.
func (h *Handler) ReloadCategories(c *gin.Context) {
	count, err := h.categories.Reload(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reload failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reloaded": count})
}
