package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"docfill/internal/service"
)

// SessionHandler serves the persisted fill session endpoints.
type SessionHandler struct {
	sessions      *service.SessionService
	presignExpiry int64
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(sessions *service.SessionService, presignExpiry int64) *SessionHandler {
	return &SessionHandler{sessions: sessions, presignExpiry: presignExpiry}
}

func sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_SESSION_ID", "session id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// Create opens a fill session for an uploaded document.
// POST /api/v1/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	name, data, err := readUpload(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_UPLOAD", err.Error())
		return
	}

	session, err := h.sessions.Create(c.Request.Context(), name, data)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, session)
}

// List returns recent sessions.
// GET /api/v1/sessions
func (h *SessionHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	sessions, err := h.sessions.List(c.Request.Context(), limit, offset)
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    sessions,
		Meta:    &PagMeta{Offset: offset, Limit: limit},
	})
}

// GetByID returns a session with its validation attempts.
// GET /api/v1/sessions/:id
func (h *SessionHandler) GetByID(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	session, attempts, err := h.sessions.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"session": session, "attempts": attempts})
}

type submitRequest struct {
	FieldID string `json:"field_id" binding:"required"`
	Value   string `json:"value"`
}

// Submit validates a value for one field of the session.
// POST /api/v1/sessions/:id/submit
func (h *SessionHandler) Submit(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	attempt, err := h.sessions.Submit(c.Request.Context(), id, req.FieldID, req.Value)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, attempt)
}

type confirmRequest struct {
	FieldID  string `json:"field_id" binding:"required"`
	Accepted *bool  `json:"accepted" binding:"required"`
}

// Confirm resolves an awaiting-confirmation proposal for a field.
// POST /api/v1/sessions/:id/confirm
func (h *SessionHandler) Confirm(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	attempt, err := h.sessions.Confirm(c.Request.Context(), id, req.FieldID, *req.Accepted)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, attempt)
}

// Finalize renders and stores the filled document.
// POST /api/v1/sessions/:id/finalize
func (h *SessionHandler) Finalize(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	session, report, err := h.sessions.Finalize(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"session": session, "report": report})
}

// Download returns a presigned URL for the finalized artifact.
// GET /api/v1/sessions/:id/download
func (h *SessionHandler) Download(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	url, err := h.sessions.DownloadFilled(c.Request.Context(), id, h.presignExpiry)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"url": url})
}

// Export streams the session's field report workbook.
// GET /api/v1/sessions/:id/export
func (h *SessionHandler) Export(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	data, err := h.sessions.Export(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="fields.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// Delete removes a session and its artifacts.
// DELETE /api/v1/sessions/:id
func (h *SessionHandler) Delete(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	if err := h.sessions.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
