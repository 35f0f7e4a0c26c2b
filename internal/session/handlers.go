package session

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// EventEmitter publishes lifecycle transitions to live subscribers
// (websocket hub, webhook dispatcher). Optional; nil-safe via WithEvents.
type EventEmitter interface {
	SessionStarted(s *Session)
	SessionEnded(s *Session)
}

// Handler provides HTTP endpoints for session lifecycle management.
type Handler struct {
	svc    *Service
	events EventEmitter
}

// NewHandler creates a new session handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// WithEvents returns a handler that publishes lifecycle transitions.
func (h *Handler) WithEvents(emitter EventEmitter) *Handler {
	h.events = emitter
	return h
}

// RegisterRoutes sets up the session routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/sessions", h.CreateSession)
	r.POST("/sessions/:id/start", h.StartSession)
	r.POST("/sessions/:id/end", h.EndSession)
	r.GET("/sessions/:id", h.GetSession)
}

// CreateSession handles POST /v1/sessions
func (h *Handler) CreateSession(c *gin.Context) {
	sess, err := h.svc.Create(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to create session"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": sess})
}

// StartSession handles POST /v1/sessions/:id/start
func (h *Handler) StartSession(c *gin.Context) {
	sess, err := h.svc.Start(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "failed to start session")
		return
	}
	if h.events != nil {
		h.events.SessionStarted(sess)
	}
	c.JSON(http.StatusOK, gin.H{"session": sess})
}

// EndSession handles POST /v1/sessions/:id/end
func (h *Handler) EndSession(c *gin.Context) {
	sess, err := h.svc.End(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "failed to end session")
		return
	}
	if h.events != nil {
		h.events.SessionEnded(sess)
	}
	c.JSON(http.StatusOK, gin.H{"session": sess})
}

// GetSession handles GET /v1/sessions/:id
func (h *Handler) GetSession(c *gin.Context) {
	sess, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "failed to load session")
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess})
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "session not found"})
	case errors.Is(err, ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "invalid_state", "message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": fallback})
	}
}
