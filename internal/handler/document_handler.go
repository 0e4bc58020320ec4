package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"docfill/internal/service"
)

// DocumentHandler serves the stateless document pipeline endpoints.
type DocumentHandler struct {
	pipeline *service.PipelineService
}

// NewDocumentHandler creates a DocumentHandler.
func NewDocumentHandler(pipeline *service.PipelineService) *DocumentHandler {
	return &DocumentHandler{pipeline: pipeline}
}

// readUpload pulls the "file" part out of a multipart request.
func readUpload(c *gin.Context) (string, []byte, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return "", nil, fmt.Errorf("missing file upload: %w", err)
	}
	f, err := fh.Open()
	if err != nil {
		return "", nil, fmt.Errorf("opening upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, fmt.Errorf("reading upload: %w", err)
	}
	return fh.Filename, data, nil
}

// Process analyzes an uploaded document and returns its occurrences and
// field schemas.
// POST /api/v1/documents/process
func (h *DocumentHandler) Process(c *gin.Context) {
	name, data, err := readUpload(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_UPLOAD", err.Error())
		return
	}

	analysis, err := h.pipeline.Process(c.Request.Context(), name, data)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, analysis)
}

// Placeholders returns raw detected occurrences without disambiguation.
// POST /api/v1/documents/placeholders
func (h *DocumentHandler) Placeholders(c *gin.Context) {
	name, data, err := readUpload(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_UPLOAD", err.Error())
		return
	}

	occs, err := h.pipeline.Detect(c.Request.Context(), name, data)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"occurrences": occs, "count": len(occs)})
}

// Fill fills an uploaded document with the provided value map and streams
// back the filled artifact. The fill report travels in the X-Fill-Report
// header.
// POST /api/v1/documents/fill
func (h *DocumentHandler) Fill(c *gin.Context) {
	name, data, err := readUpload(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_UPLOAD", err.Error())
		return
	}

	values := map[string]string{}
	if raw := c.PostForm("values"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &values); err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_VALUES", "values must be a JSON object of field_id to string")
			return
		}
	}

	out, report, err := h.pipeline.Fill(c.Request.Context(), name, data, values)
	if err != nil {
		HandleError(c, err)
		return
	}

	reportJSON, _ := json.Marshal(report)
	c.Header("X-Fill-Report", string(reportJSON))
	c.Header("Content-Disposition", `attachment; filename="filled.docx"`)
	c.Data(http.StatusOK, service.DocxContentType, out)
}
