package handler

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"workshop-funnel/internal/dto"
	"workshop-funnel/internal/service"
	"workshop-funnel/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler spreadsheet downloads
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler creates an ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportLeads submissions matching the list filters
// GET /api/v1/forms/submissions/export
func (h *ExportHandler) ExportLeads(c *gin.Context) {
	var req dto.LeadListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	buf, filename, err := h.exportSvc.ExportLeads(c.Request.Context(), &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	h.sendFile(c, buf, filename)
}

// ExportEnrollments all enrollments with commission columns
// GET /api/v1/enrollments/export
func (h *ExportHandler) ExportEnrollments(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportEnrollments(c.Request.Context())
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	h.sendFile(c, buf, filename)
}

func (h *ExportHandler) sendFile(c *gin.Context, buf *bytes.Buffer, filename string) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Header("Content-Type", xlsxContentType)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, 17101, "failed to generate spreadsheet")
	default:
		response.InternalError(c)
	}
}
