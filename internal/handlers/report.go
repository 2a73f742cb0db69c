package handlers

import (
	"encoding/json"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/huangang/venturelink/internal/middleware"
	"github.com/huangang/venturelink/internal/services"
	"github.com/huangang/venturelink/pkg/logger"
	"github.com/huangang/venturelink/pkg/response"
)

type ReportHandler struct {
	reportService *services.TimelyReportService
}

func NewReportHandler(reportService *services.TimelyReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// bindReport accepts either a JSON body or a multipart form carrying the
// report as a JSON "report" field plus "attachments" files.
func bindReport(c *gin.Context) (*services.TimelyReportRequest, []services.UploadedFile, bool) {
	var req services.TimelyReportRequest

	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, bindMessage(err))
			return nil, nil, false
		}
		return &req, nil, true
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.BadRequest(c, "Invalid multipart form")
		return nil, nil, false
	}
	raw := c.PostForm("report")
	if raw == "" {
		response.BadRequest(c, "report is required")
		return nil, nil, false
	}
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		response.BadRequest(c, "report must be valid JSON")
		return nil, nil, false
	}
	files, err := readUploads(form, "attachments")
	if err != nil {
		logger.Warnf("[Report] %v", err)
		response.BadRequest(c, "Failed to read attachments")
		return nil, nil, false
	}
	return &req, files, true
}

// Create stores a report and mails it unless it is a draft
// POST /api/startup/reports
func (h *ReportHandler) Create(c *gin.Context) {
	req, files, ok := bindReport(c)
	if !ok {
		return
	}

	report, err := h.reportService.Create(c.Request.Context(), middleware.GetUserID(c), req, files)
	if err != nil {
		response.Error(c, err)
		return
	}
	msg := "Timely report sent successfully."
	if report.DraftReport {
		msg = "Draft report saved successfully."
	}
	response.Created(c, msg, report)
}

// Update replaces a report
// PUT /api/startup/reports/:id
func (h *ReportHandler) Update(c *gin.Context) {
	req, files, ok := bindReport(c)
	if !ok {
		return
	}

	report, err := h.reportService.Update(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), req, files)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Timely report updated successfully.", report)
}

// List returns the founder's reports, newest first
// GET /api/startup/reports
func (h *ReportHandler) List(c *gin.Context) {
	reports, err := h.reportService.ListByFounder(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Timely reports fetched successfully.", reports)
}

// Draft returns the startup's draft report
// GET /api/startup/reports/draft
func (h *ReportHandler) Draft(c *gin.Context) {
	report, err := h.reportService.GetDraft(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Draft report fetched successfully.", report)
}
