package emaillog

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/attendly/backend/internal/events"
	"github.com/attendly/backend/internal/middleware"
	"github.com/attendly/backend/pkg/response"
)

// Handler exposes notification delivery history to organizers.
type Handler struct {
	repo      *Repository
	eventRepo *events.Repository
	logger    *zap.Logger
}

// NewHandler creates an email log handler.
func NewHandler(repo *Repository, eventRepo *events.Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, eventRepo: eventRepo, logger: logger}
}

// ListByEvent handles GET /api/events/:id/emails.
func (h *Handler) ListByEvent(c *gin.Context) {
	v, ok := c.Get(middleware.ContextUserID)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	userID, ok := v.(uuid.UUID)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	if _, err := h.eventRepo.GetByIDForOrganizer(c.Request.Context(), eventID, userID); err != nil {
		response.NotFound(c, "event not found")
		return
	}
	logs, err := h.repo.ListByEvent(c.Request.Context(), eventID)
	if err != nil {
		h.logger.Error("list email logs failed", zap.Error(err), zap.String("event_id", eventID.String()))
		response.Internal(c, "failed to load email logs")
		return
	}
	response.OK(c, gin.H{"emails": logs, "total": len(logs)})
}
