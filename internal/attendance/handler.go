package attendance

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/attendly/backend/internal/events"
	"github.com/attendly/backend/internal/export"
	"github.com/attendly/backend/internal/groups"
	"github.com/attendly/backend/internal/middleware"
	"github.com/attendly/backend/pkg/response"
)

// ConfirmRequest is the body for POST /api/attendance/confirm.
type ConfirmRequest struct {
	AccessCode       string `json:"access_code" binding:"required,len=8,alphanum"`
	ParticipantName  string `json:"participant_name" binding:"required,max=100"`
	ParticipantEmail string `json:"participant_email" binding:"required,email"`
	ParticipantPhone string `json:"participant_phone" binding:"omitempty,max=20"`
}

// Handler handles check-in and export HTTP endpoints.
type Handler struct {
	service   *Service
	repo      *Repository
	eventRepo *events.Repository
	groupRepo *groups.Repository
	exportDir string
	logger    *zap.Logger
}

// NewHandler creates an attendance handler.
func NewHandler(service *Service, repo *Repository, eventRepo *events.Repository, groupRepo *groups.Repository, exportDir string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		service:   service,
		repo:      repo,
		eventRepo: eventRepo,
		groupRepo: groupRepo,
		exportDir: exportDir,
		logger:    logger,
	}
}

// Confirm handles POST /api/attendance/confirm (public). Each failure mode
// maps to a distinct status so the UI can explain why check-in failed.
func (h *Handler) Confirm(c *gin.Context) {
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	conf, err := h.service.Confirm(c.Request.Context(), ConfirmInput{
		AccessCode:       req.AccessCode,
		ParticipantName:  req.ParticipantName,
		ParticipantEmail: req.ParticipantEmail,
		ParticipantPhone: req.ParticipantPhone,
	})
	if err != nil {
		var notOpen *NotOpenError
		var already *AlreadyConfirmedError
		switch {
		case errors.Is(err, ErrEventNotFound):
			response.NotFound(c, "invalid access code")
		case errors.As(err, &notOpen):
			c.JSON(http.StatusBadRequest, response.Body{
				Success: false,
				Error:   "event is not currently open for attendance confirmation",
				Data:    gin.H{"event_state": notOpen.State},
			})
		case errors.As(err, &already):
			c.JSON(http.StatusConflict, response.Body{
				Success: false,
				Error:   "attendance already confirmed for this event",
				Data:    gin.H{"confirmed_at": already.ConfirmedAt},
			})
		default:
			h.logger.Error("confirm attendance failed", zap.Error(err))
			response.Internal(c, "failed to confirm attendance")
		}
		return
	}

	response.Created(c, conf)
}

func organizerID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(middleware.ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// ExportEvent handles GET /api/attendance/export/:eventId?format=csv|xlsx.
func (h *Handler) ExportEvent(c *gin.Context) {
	userID, ok := organizerID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	if _, err := h.eventRepo.GetByIDForOrganizer(c.Request.Context(), eventID, userID); err != nil {
		response.NotFound(c, "event not found")
		return
	}

	records, err := h.repo.ListRecordsByEvent(c.Request.Context(), eventID)
	if err != nil {
		h.logger.Error("load export records failed", zap.Error(err), zap.String("event_id", eventID.String()))
		response.Internal(c, "failed to load attendance records")
		return
	}

	h.writeExport(c, records, fmt.Sprintf("event_%s_attendance_%d", eventID, time.Now().Unix()))
}

// ExportGroup handles GET /api/attendance/export/group/:groupId?format=csv|xlsx.
func (h *Handler) ExportGroup(c *gin.Context) {
	userID, ok := organizerID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	groupID, err := uuid.Parse(c.Param("groupId"))
	if err != nil {
		response.BadRequest(c, "invalid group id")
		return
	}
	if _, err := h.groupRepo.GetByIDForOrganizer(c.Request.Context(), groupID, userID); err != nil {
		response.NotFound(c, "event group not found")
		return
	}

	records, err := h.repo.ListRecordsByGroup(c.Request.Context(), groupID)
	if err != nil {
		h.logger.Error("load export records failed", zap.Error(err), zap.String("group_id", groupID.String()))
		response.Internal(c, "failed to load attendance records")
		return
	}

	h.writeExport(c, records, fmt.Sprintf("group_%s_attendance_%d", groupID, time.Now().Unix()))
}

func (h *Handler) writeExport(c *gin.Context, records []export.Record, filename string) {
	if len(records) == 0 {
		response.NotFound(c, "no attendance records to export")
		return
	}
	rows := export.FormatRecords(records)

	format := c.DefaultQuery("format", "csv")
	var path string
	var err error
	switch format {
	case "csv":
		path = filepath.Join(h.exportDir, filename+".csv")
		err = export.WriteCSV(rows, path)
	case "xlsx":
		path = filepath.Join(h.exportDir, filename+".xlsx")
		err = export.WriteXLSX(rows, path)
	default:
		response.BadRequest(c, "format must be csv or xlsx")
		return
	}
	if err != nil {
		h.logger.Error("write export failed", zap.Error(err), zap.String("format", format))
		response.Internal(c, "failed to generate export")
		return
	}

	c.FileAttachment(path, filepath.Base(path))
}
