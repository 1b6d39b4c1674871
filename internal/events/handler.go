package events

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/attendly/backend/internal/accesscode"
	"github.com/attendly/backend/internal/groups"
	"github.com/attendly/backend/internal/middleware"
	"github.com/attendly/backend/internal/models"
	"github.com/attendly/backend/pkg/response"
)

// maxCodeAttempts bounds access code regeneration on unique-constraint collisions.
const maxCodeAttempts = 5

// CreateRequest is the body for POST /api/events.
type CreateRequest struct {
	EventGroupID    string    `json:"event_group_id" binding:"required,uuid"`
	Name            string    `json:"name" binding:"required,max=100"`
	ScheduledTime   time.Time `json:"scheduled_time" binding:"required"`
	DurationMinutes int       `json:"duration_minutes" binding:"required,min=1"`
}

// UpdateRequest is the body for PUT /api/events/:id. Only provided fields change.
type UpdateRequest struct {
	Name            *string    `json:"name,omitempty"`
	ScheduledTime   *time.Time `json:"scheduled_time,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
}

// Handler handles event HTTP endpoints.
type Handler struct {
	repo      *Repository
	groupRepo *groups.Repository
	logger    *zap.Logger
}

// NewHandler creates an events handler.
func NewHandler(repo *Repository, groupRepo *groups.Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, groupRepo: groupRepo, logger: logger}
}

func organizerID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(middleware.ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// Create handles POST /api/events. Generates the access code and QR payload,
// retrying generation on the rare code collision.
func (h *Handler) Create(c *gin.Context) {
	userID, ok := organizerID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	groupID, err := uuid.Parse(req.EventGroupID)
	if err != nil {
		response.BadRequest(c, "invalid event_group_id")
		return
	}

	if _, err := h.groupRepo.GetByIDForOrganizer(c.Request.Context(), groupID, userID); err != nil {
		response.NotFound(c, "event group not found")
		return
	}

	e := &models.Event{
		EventGroupID:    groupID,
		Name:            req.Name,
		ScheduledTime:   req.ScheduledTime,
		DurationMinutes: req.DurationMinutes,
		State:           models.EventStateClosed,
	}
	for attempt := 0; ; attempt++ {
		code, err := accesscode.Generate()
		if err != nil {
			h.logger.Error("generate access code failed", zap.Error(err))
			response.Internal(c, "failed to generate access code")
			return
		}
		qr, err := accesscode.GenerateQR(code)
		if err != nil {
			h.logger.Error("generate qr failed", zap.Error(err))
			response.Internal(c, "failed to generate qr code")
			return
		}
		e.AccessCode = code
		e.QRCodeData = qr

		err = h.repo.Create(c.Request.Context(), e)
		if err == nil {
			break
		}
		if IsUniqueViolation(err) && attempt < maxCodeAttempts-1 {
			h.logger.Warn("access code collision, regenerating", zap.Int("attempt", attempt+1))
			continue
		}
		if IsUniqueViolation(err) {
			response.Conflict(c, "failed to generate unique access code, please try again")
			return
		}
		h.logger.Error("create event failed", zap.Error(err))
		response.Internal(c, "failed to create event")
		return
	}

	response.Created(c, e)
}

// ListByGroup handles GET /api/event-groups/:id/events.
func (h *Handler) ListByGroup(c *gin.Context) {
	userID, ok := organizerID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid group id")
		return
	}
	if _, err := h.groupRepo.GetByIDForOrganizer(c.Request.Context(), groupID, userID); err != nil {
		response.NotFound(c, "event group not found")
		return
	}
	list, err := h.repo.ListByGroup(c.Request.Context(), groupID)
	if err != nil {
		h.logger.Error("list events failed", zap.Error(err), zap.String("group_id", groupID.String()))
		response.Internal(c, "failed to load events")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /api/events/:id.
func (h *Handler) GetByID(c *gin.Context) {
	userID, ok := organizerID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, err := h.repo.GetByIDForOrganizer(c.Request.Context(), id, userID)
	if err != nil {
		response.NotFound(c, "event not found")
		return
	}
	response.OK(c, e)
}

// Update handles PUT /api/events/:id. State is never edited here; schedule
// changes take effect at the scheduler's next sweep.
func (h *Handler) Update(c *gin.Context) {
	userID, ok := organizerID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	if _, err := h.repo.GetByIDForOrganizer(c.Request.Context(), id, userID); err != nil {
		response.NotFound(c, "event not found")
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.DurationMinutes != nil && *req.DurationMinutes < 1 {
		response.BadRequest(c, "duration_minutes must be positive")
		return
	}
	if err := h.repo.Update(c.Request.Context(), id, req.Name, req.ScheduledTime, req.DurationMinutes); err != nil {
		h.logger.Error("update event failed", zap.Error(err), zap.String("event_id", id.String()))
		response.Internal(c, "failed to update event")
		return
	}
	e, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load event")
		return
	}
	response.OK(c, e)
}

// Delete handles DELETE /api/events/:id. Attendance records cascade.
func (h *Handler) Delete(c *gin.Context) {
	userID, ok := organizerID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	if _, err := h.repo.GetByIDForOrganizer(c.Request.Context(), id, userID); err != nil {
		response.NotFound(c, "event not found")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("delete event failed", zap.Error(err), zap.String("event_id", id.String()))
		response.Internal(c, "failed to delete event")
		return
	}
	response.OK(c, gin.H{"message": "event deleted"})
}

// Attendees handles GET /api/events/:id/attendees.
func (h *Handler) Attendees(c *gin.Context) {
	userID, ok := organizerID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, err := h.repo.GetByIDForOrganizer(c.Request.Context(), id, userID)
	if err != nil {
		response.NotFound(c, "event not found")
		return
	}
	attendees, err := h.repo.ListAttendees(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("list attendees failed", zap.Error(err), zap.String("event_id", id.String()))
		response.Internal(c, "failed to load attendees")
		return
	}
	response.OK(c, gin.H{
		"event": gin.H{
			"id":             e.ID,
			"name":           e.Name,
			"scheduled_time": e.ScheduledTime,
			"state":          e.State,
		},
		"attendees": attendees,
		"total":     len(attendees),
	})
}
