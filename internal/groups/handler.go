package groups

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/attendly/backend/internal/middleware"
	"github.com/attendly/backend/internal/models"
	"github.com/attendly/backend/pkg/response"
)

// GroupRequest is the body for creating or updating an event group.
type GroupRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
}

// Handler handles event group HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates an event groups handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

func organizerID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(middleware.ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// Create handles POST /api/event-groups.
func (h *Handler) Create(c *gin.Context) {
	userID, ok := organizerID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	var req GroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	g := &models.EventGroup{
		Name:        req.Name,
		Description: req.Description,
		OrganizerID: userID,
	}
	if err := h.repo.Create(c.Request.Context(), g); err != nil {
		h.logger.Error("create event group failed", zap.Error(err))
		response.Internal(c, "failed to create event group")
		return
	}
	response.Created(c, g)
}

// List handles GET /api/event-groups.
func (h *Handler) List(c *gin.Context) {
	userID, ok := organizerID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	list, err := h.repo.ListByOrganizer(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list event groups failed", zap.Error(err))
		response.Internal(c, "failed to load event groups")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /api/event-groups/:id.
func (h *Handler) GetByID(c *gin.Context) {
	userID, ok := organizerID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid group id")
		return
	}
	g, err := h.repo.GetByIDForOrganizer(c.Request.Context(), id, userID)
	if err != nil {
		response.NotFound(c, "event group not found")
		return
	}
	response.OK(c, g)
}

// Update handles PUT /api/event-groups/:id.
func (h *Handler) Update(c *gin.Context) {
	userID, ok := organizerID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid group id")
		return
	}
	var req GroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if _, err := h.repo.GetByIDForOrganizer(c.Request.Context(), id, userID); err != nil {
		response.NotFound(c, "event group not found")
		return
	}
	if err := h.repo.Update(c.Request.Context(), id, req.Name, req.Description); err != nil {
		h.logger.Error("update event group failed", zap.Error(err), zap.String("group_id", id.String()))
		response.Internal(c, "failed to update event group")
		return
	}
	g, err := h.repo.GetByIDForOrganizer(c.Request.Context(), id, userID)
	if err != nil {
		response.Internal(c, "failed to load event group")
		return
	}
	response.OK(c, g)
}

// Delete handles DELETE /api/event-groups/:id. Events and attendances cascade.
func (h *Handler) Delete(c *gin.Context) {
	userID, ok := organizerID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid group id")
		return
	}
	if _, err := h.repo.GetByIDForOrganizer(c.Request.Context(), id, userID); err != nil {
		response.NotFound(c, "event group not found")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("delete event group failed", zap.Error(err), zap.String("group_id", id.String()))
		response.Internal(c, "failed to delete event group")
		return
	}
	response.OK(c, gin.H{"message": "event group deleted"})
}
