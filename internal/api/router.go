package api

import (
	routes "solarsight/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// SetupRouter initializes all application routes
func SetupRouter(r *gin.Engine) {
	// API group
	api := r.Group("/api")

	// Setup main handlers
	routes.SetupMainHandlers(r.Group(""))

	// Setup analysis and drawing handlers
	routes.SetupAnalysisHandlers(api)
	routes.SetupDrawingHandlers(api)
}
