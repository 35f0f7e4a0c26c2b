package report

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vigilhq/vigil/internal/session"
)

// Handler provides HTTP endpoints for integrity reports.
type Handler struct {
	svc *Service
}

// NewHandler creates a new report handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes sets up the report routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/reports/:id", h.FullReport)
	r.GET("/reports/:id/latest", h.LatestRisk)
	r.GET("/reports/:id/final", h.FinalReport)
}

// FullReport handles GET /v1/reports/:id
func (h *Handler) FullReport(c *gin.Context) {
	result, err := h.svc.Full(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// LatestRisk handles GET /v1/reports/:id/latest
func (h *Handler) LatestRisk(c *gin.Context) {
	snap, err := h.svc.Latest(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": snap.SessionID,
		"risk_score": snap.Score,
		"risk_level": snap.Level,
	})
}

// FinalReport handles GET /v1/reports/:id/final
func (h *Handler) FinalReport(c *gin.Context) {
	rep, err := h.svc.Final(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	if errors.Is(err, session.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "session not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to build report"})
}
