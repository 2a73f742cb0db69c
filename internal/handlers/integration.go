package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/huangang/venturelink/internal/middleware"
	"github.com/huangang/venturelink/internal/services"
	"github.com/huangang/venturelink/pkg/response"
)

type IntegrationHandler struct {
	zoho        *services.ZohoClient
	frontendURL string
}

func NewIntegrationHandler(zoho *services.ZohoClient, frontendURL string) *IntegrationHandler {
	return &IntegrationHandler{zoho: zoho, frontendURL: frontendURL}
}

// ZohoConnect returns the consent URL for the founder
// GET /api/startup/integrations/zoho/connect
func (h *IntegrationHandler) ZohoConnect(c *gin.Context) {
	authURL, err := h.zoho.ConnectURL(middleware.GetUserID(c), middleware.GetEmail(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Zoho authorization URL generated.", gin.H{"authUrl": authURL})
}

// ZohoCallback completes the OAuth flow. Browsers are sent back to the
// frontend; other clients get the envelope.
// GET /api/integrations/zoho/callback?code&state
func (h *IntegrationHandler) ZohoCallback(c *gin.Context) {
	integration, err := h.zoho.HandleCallback(c.Request.Context(), c.Query("code"), c.Query("state"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.frontendURL != "" && c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEHTML {
		c.Redirect(http.StatusFound, h.frontendURL+"/startup/integrations?zoho=connected")
		return
	}
	response.Success(c, "Zoho integration connected successfully.", integration)
}
