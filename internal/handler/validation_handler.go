package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docfill/internal/domain"
	"docfill/internal/validator"
)

// ValidationHandler serves the stateless validation endpoints. These carry
// no prior attempt state; sessions track retry streaks.
type ValidationHandler struct {
	engine *validator.Engine
}

// NewValidationHandler creates a ValidationHandler.
func NewValidationHandler(engine *validator.Engine) *ValidationHandler {
	return &ValidationHandler{engine: engine}
}

type validateRequest struct {
	FieldID  string          `json:"field_id" binding:"required"`
	Value    string          `json:"value"`
	DataType domain.DataType `json:"data_type"`
	Name     string          `json:"name"`
}

// Validate checks a single value against its field type.
// POST /api/v1/validate
func (h *ValidationHandler) Validate(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	results := h.engine.SubmitBatch([]validator.BatchItem{{
		FieldID:  req.FieldID,
		Value:    req.Value,
		DataType: req.DataType,
		Name:     req.Name,
	}})
	RespondOK(c, results[0])
}

type validateBatchRequest struct {
	Fields []validator.BatchItem `json:"fields" binding:"required"`
}

// ValidateBatch checks many values independently. Results align with the
// request order.
// POST /api/v1/validate-batch
func (h *ValidationHandler) ValidateBatch(c *gin.Context) {
	var req validateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	RespondOK(c, gin.H{"results": h.engine.SubmitBatch(req.Fields)})
}
