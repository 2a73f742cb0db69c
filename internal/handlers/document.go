package handlers

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/huangang/venturelink/internal/middleware"
	"github.com/huangang/venturelink/internal/models"
	"github.com/huangang/venturelink/internal/services"
	"github.com/huangang/venturelink/pkg/logger"
	"github.com/huangang/venturelink/pkg/response"
)

type DocumentHandler struct {
	documentService *services.StartupDocumentService
}

func NewDocumentHandler(documentService *services.StartupDocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

func documentType(raw string) models.DocumentType {
	return models.DocumentType(strings.ToUpper(strings.TrimSpace(raw)))
}

// Upload stores a startup document
// POST /api/startup/documents
func (h *DocumentHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	docType := documentType(c.PostForm("documentType"))
	if !docType.Valid() {
		response.BadRequest(c, "documentType must be one of: FINANCIAL LEGAL PITCH OTHER")
		return
	}

	file, err := readUpload(fh)
	if err != nil {
		logger.Warnf("[Document] %v", err)
		response.BadRequest(c, "Failed to read uploaded file")
		return
	}

	doc, err := h.documentService.Upload(c.Request.Context(), middleware.GetUserID(c), docType, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Document uploaded successfully.", doc)
}

// List returns the startup's documents, optionally of one type
// GET /api/startup/documents?documentType=
func (h *DocumentHandler) List(c *gin.Context) {
	docType := documentType(c.Query("documentType"))

	docs, err := h.documentService.List(c.Request.Context(), middleware.GetUserID(c), docType)
	if err != nil {
		response.Error(c, err)
		return
	}

	msg := "All startup documents fetched successfully."
	if docType != "" {
		msg = fmt.Sprintf("Startup documents of type %s fetched successfully.", docType)
	}
	response.Success(c, msg, docs)
}

// Delete removes a document owned by the founder's startup
// DELETE /api/startup/documents/:documentId
func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.documentService.Delete(c.Request.Context(), middleware.GetUserID(c), c.Param("documentId")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Document deleted successfully.", nil)
}
