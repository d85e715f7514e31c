package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"solarsight/internal/drawing"
	"solarsight/internal/model"
	"solarsight/internal/service/analysis"
)

// SetupDrawingHandlers registers the drawing session endpoints
func SetupDrawingHandlers(router *gin.RouterGroup) {
	group := router.Group("/analysis/:id/draw")

	group.POST("/start", StartDrawing)
	group.POST("/click", Click)
	group.POST("/hole", BeginHole)
	group.POST("/hole/complete", CompleteHole)
	group.POST("/finish", FinishDrawing)
	group.POST("/undo", UndoDrawing)
	group.POST("/redo", RedoDrawing)
	group.POST("/clear", ClearDrawing)
}

type clickRequest struct {
	Lat float64 `json:"lat" binding:"required"`
	Lng float64 `json:"lng" binding:"required"`
}

// StartDrawing enters drawing mode for an analysis
func StartDrawing(c *gin.Context) {
	respond(c, func(id string) (*analysis.Analysis, error) {
		return analysisService().StartDrawing(id)
	})
}

// Click appends a vertex to the active polygon or hole; within the snap
// tolerance of the first vertex it closes the ring instead.
func Click(c *gin.Context) {
	var req clickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "lat and lng are required",
		})
		return
	}

	a, event, err := analysisService().Click(c.Param("id"), model.GeoPoint{Lat: req.Lat, Lng: req.Lng})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"event":    eventName(event),
		"analysis": a,
	})
}

// BeginHole switches to exclusion-hole drawing
func BeginHole(c *gin.Context) {
	respond(c, func(id string) (*analysis.Analysis, error) {
		return analysisService().BeginHole(id)
	})
}

// CompleteHole explicitly finishes the hole in progress
func CompleteHole(c *gin.Context) {
	respond(c, func(id string) (*analysis.Analysis, error) {
		return analysisService().CompleteHole(id)
	})
}

// FinishDrawing explicitly ends configuration
func FinishDrawing(c *gin.Context) {
	respond(c, func(id string) (*analysis.Analysis, error) {
		return analysisService().Finish(id)
	})
}

// UndoDrawing restores the previous polygon snapshot
func UndoDrawing(c *gin.Context) {
	respond(c, func(id string) (*analysis.Analysis, error) {
		return analysisService().Undo(id)
	})
}

// RedoDrawing restores the next polygon snapshot
func RedoDrawing(c *gin.Context) {
	respond(c, func(id string) (*analysis.Analysis, error) {
		return analysisService().Redo(id)
	})
}

// ClearDrawing empties the session
func ClearDrawing(c *gin.Context) {
	respond(c, func(id string) (*analysis.Analysis, error) {
		return analysisService().Clear(id)
	})
}

func respond(c *gin.Context, fn func(id string) (*analysis.Analysis, error)) {
	a, err := fn(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"analysis": a,
	})
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, analysis.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"status":  "error",
			"message": "analysis not found",
		})
	case errors.Is(err, analysis.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{
			"status":  "error",
			"message": "operation not permitted in the current drawing state",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "drawing operation failed",
		})
	}
}

func eventName(event drawing.Event) string {
	switch event {
	case drawing.EventVertexAdded:
		return "vertex_added"
	case drawing.EventMainClosed:
		return "polygon_closed"
	case drawing.EventHoleClosed:
		return "hole_closed"
	default:
		return "none"
	}
}
