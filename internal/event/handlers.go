package event

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vigilhq/vigil/internal/pagination"
	"github.com/vigilhq/vigil/internal/session"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Handler provides HTTP endpoints for event submission and history.
type Handler struct {
	svc *Service
}

// NewHandler creates a new event handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes sets up the event routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/events", h.SubmitEvent)
	r.GET("/sessions/:id/events", h.ListEvents)
}

// SubmitEvent handles POST /v1/events
func (h *Handler) SubmitEvent(c *gin.Context) {
	var in AdmitInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "invalid JSON body"})
		return
	}

	e, result, err := h.svc.Admit(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"event": e, "risk": result})
}

// ListEvents handles GET /v1/sessions/:id/events
func (h *Handler) ListEvents(c *gin.Context) {
	limit := defaultPageSize
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "limit must be a positive integer"})
			return
		}
		if n > maxPageSize {
			n = maxPageSize
		}
		limit = n
	}

	cur, err := pagination.Decode(c.Query("cursor"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "invalid cursor"})
		return
	}

	events, next, more, err := h.svc.ListPage(c.Request.Context(), c.Param("id"), cur, limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if events == nil {
		events = []*Event{}
	}

	c.JSON(http.StatusOK, gin.H{
		"events":      events,
		"next_cursor": next,
		"has_more":    more,
	})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "session not found"})
	case errors.Is(err, ErrSessionNotActive):
		c.JSON(http.StatusConflict, gin.H{"error": "invalid_state", "message": err.Error()})
	case errors.Is(err, ErrInvalidPayload):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to process event"})
	}
}
