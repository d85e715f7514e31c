package routes

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"solarsight/internal/service/analysis"
	"solarsight/internal/service/geocode"
	"solarsight/internal/service/insights"
)

// analysisService is resolved lazily so tests can configure the singleton
var analysisService func() *analysis.AnalysisService

// SetAnalysisService wires the service used by the handlers
func SetAnalysisService(fn func() *analysis.AnalysisService) {
	analysisService = fn
}

// SetupAnalysisHandlers registers the address analysis endpoints
func SetupAnalysisHandlers(router *gin.RouterGroup) {
	group := router.Group("/analysis")

	group.POST("", AnalyzeAddress)
	group.GET("/:id", GetAnalysis)
}

type analyzeRequest struct {
	Address string `json:"address" binding:"required"`
}

// AnalyzeAddress runs the geocode -> insights -> price pipeline for an
// address. Upstream errors are pattern-matched into one user-facing message
// per category; raw provider text never reaches the client.
func AnalyzeAddress(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "address is required",
		})
		return
	}

	a, err := analysisService().Analyze(c.Request.Context(), req.Address)
	if err != nil {
		status, message, retryable := classifyAnalysisError(err)
		log.Printf("analysis failed for %q: %v", req.Address, err)
		c.JSON(status, gin.H{
			"status":    "error",
			"message":   message,
			"retryable": retryable,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":   "success",
		"analysis": a,
	})
}

// GetAnalysis returns the current state of an analysis
func GetAnalysis(c *gin.Context) {
	a, err := analysisService().Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"status":  "error",
			"message": "analysis not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"analysis": a,
	})
}

// classifyAnalysisError maps the error taxonomy to transport responses:
// input errors are final, upstream errors invite a manual retry, missing
// solar data is terminal for the address.
func classifyAnalysisError(err error) (int, string, bool) {
	switch {
	case errors.Is(err, geocode.ErrNoResult):
		return http.StatusUnprocessableEntity, "this address could not be located", false
	case errors.Is(err, insights.ErrNotAnalyzable):
		return http.StatusUnprocessableEntity, "this roof cannot be analyzed", false
	case errors.Is(err, geocode.ErrUpstream), errors.Is(err, insights.ErrUpstream):
		return http.StatusBadGateway, "the analysis service is temporarily unavailable, please retry", true
	default:
		return http.StatusInternalServerError, "analysis failed", false
	}
}
