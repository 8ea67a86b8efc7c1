package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/labelscan/backend/internal/domain"
	"github.com/labelscan/backend/internal/usecase"
	"go.uber.org/zap"
)

// Analyzer is the slice of the analysis engine the handler needs.
type Analyzer interface {
	Analyze(ctx context.Context, text string, info *domain.ProductInfo) ([]domain.IngredientAnalysis, error)
}

// Scanner is the slice of the scan pipeline the handler needs.
type Scanner interface {
	Scan(ctx context.Context, image []byte) (*domain.ScanResult, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	extraction *usecase.ExtractionService
	analyzer   Analyzer
	scanner    Scanner
	local      *usecase.LocalAnalyzer
	cache      domain.CacheRepository
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	extraction *usecase.ExtractionService,
	analyzer Analyzer,
	scanner Scanner,
	local *usecase.LocalAnalyzer,
	cache domain.CacheRepository,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		extraction: extraction,
		analyzer:   analyzer,
		scanner:    scanner,
		local:      local,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "labelscan-backend",
		"version": "1.0.0",
	})
}

type extractRequest struct {
	Text string `json:"text"`
}

// ExtractIngredients turns label text into a structured ingredient list.
func (h *Handler) ExtractIngredients(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No text provided"})
		return
	}

	c.JSON(http.StatusOK, h.extraction.Extract(req.Text))
}

// AnalyzeIngredients produces per-ingredient health analyses plus a
// product summary, via the generative model or, when the caller opts
// in, the deterministic local analyzer.
func (h *Handler) AnalyzeIngredients(c *gin.Context) {
	var req domain.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No text provided"})
		return
	}

	if req.UseLocal {
		c.JSON(http.StatusOK, h.analyzeLocally(req.Text))
		return
	}

	cacheKey := analysisCacheKey(req.Text)
	if cached := h.cachedResponse(c.Request.Context(), cacheKey); cached != nil {
		cached.Source = "cache"
		c.JSON(http.StatusOK, cached)
		return
	}

	analyses, err := h.analyzer.Analyze(c.Request.Context(), req.Text, req.ProductInfo)
	if err != nil {
		status := statusForAnalysisError(err)
		h.logger.Warn("analysis failed", zap.Int("status", status), zap.Error(err))
		c.JSON(status, gin.H{"error": userMessage(err)})
		return
	}

	response := &domain.AnalysisResponse{
		Analyses: analyses,
		Summary:  usecase.BuildProductSummary(analyses),
		Source:   "model",
	}

	if h.cache != nil {
		if err := h.cache.Set(c.Request.Context(), cacheKey, response, h.cacheTTL); err != nil {
			h.logger.Warn("failed to cache analysis", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, response)
}

// analyzeLocally extracts ingredient names and runs the heuristic
// analyzer. This path is explicit caller opt-in, never a fallback.
func (h *Handler) analyzeLocally(text string) *domain.AnalysisResponse {
	extraction := h.extraction.Extract(text)
	names := make([]string, 0, len(extraction.Ingredients))
	for _, ing := range extraction.Ingredients {
		names = append(names, ing.Name)
	}

	analyses := h.local.Analyze(names)
	return &domain.AnalysisResponse{
		Analyses: analyses,
		Summary:  usecase.BuildProductSummary(analyses),
		Source:   "local",
	}
}

type scanRequest struct {
	Image string `json:"image"` // base64, optionally a data URL
}

// ScanLabel OCRs an uploaded label image and extracts its ingredients.
func (h *Handler) ScanLabel(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Image == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image provided"})
		return
	}

	payload := req.Image
	if idx := strings.Index(payload, ";base64,"); idx >= 0 {
		payload = payload[idx+len(";base64,"):]
	}
	image, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image encoding"})
		return
	}

	result, err := h.scanner.Scan(c.Request.Context(), image)
	if err != nil {
		if errors.Is(err, domain.ErrOCRFailed) {
			c.JSON(http.StatusBadGateway, gin.H{"error": domain.ErrOCRFailed.Error()})
			return
		}
		h.logger.Error("scan failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "scan failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// cachedResponse decodes a cache hit back into an AnalysisResponse.
func (h *Handler) cachedResponse(ctx context.Context, key string) *domain.AnalysisResponse {
	if h.cache == nil {
		return nil
	}
	value, err := h.cache.Get(ctx, key)
	if err != nil {
		return nil
	}
	response, err := decodeAnalysisResponse(value)
	if err != nil {
		h.logger.Warn("discarding undecodable cache entry", zap.Error(err))
		return nil
	}
	return response
}

// statusForAnalysisError maps the engine's typed errors to HTTP statuses.
func statusForAnalysisError(err error) int {
	switch {
	case errors.Is(err, domain.ErrMissingInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrMissingCredential):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrModelOverloaded):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrModelTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// userMessage strips wrapped detail so callers only ever see the
// sentinel's user-facing text.
func userMessage(err error) string {
	for _, sentinel := range []error{
		domain.ErrMissingInput,
		domain.ErrMissingCredential,
		domain.ErrModelOverloaded,
		domain.ErrModelTimeout,
		domain.ErrMalformedResponse,
		domain.ErrModelFailure,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "analysis failed"
}

var cacheKeyNoise = regexp.MustCompile(`[^a-z0-9\s]`)
var cacheKeySpaces = regexp.MustCompile(`\s+`)

// analysisCacheKey normalizes label text into a stable cache key.
func analysisCacheKey(text string) string {
	key := strings.ToLower(text)
	key = cacheKeyNoise.ReplaceAllString(key, "")
	key = cacheKeySpaces.ReplaceAllString(key, " ")
	return "analysis:" + strings.TrimSpace(key)
}

// decodeAnalysisResponse re-marshals the JSON-shaped cache value into a
// typed response.
func decodeAnalysisResponse(value interface{}) (*domain.AnalysisResponse, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var response domain.AnalysisResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		return nil, err
	}
	if len(response.Analyses) == 0 {
		return nil, errors.New("empty cached analysis")
	}
	return &response, nil
}
