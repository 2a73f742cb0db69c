package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/venturelink/internal/middleware"
	"github.com/huangang/venturelink/internal/services"
	"github.com/huangang/venturelink/pkg/response"
)

// ConnectionHandler exposes both sides of the connection lifecycle.
type ConnectionHandler struct {
	connectionService *services.ConnectionService
}

func NewConnectionHandler(connectionService *services.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{connectionService: connectionService}
}

// Invite sends a connection invitation to an investor's email
// POST /api/startup/connections/invite
func (h *ConnectionHandler) Invite(c *gin.Context) {
	var req services.InviteInvestorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindMessage(err))
		return
	}

	mapping, err := h.connectionService.InviteInvestor(c.Request.Context(), middleware.GetUserID(c), req.InvestorEmail, req.InvestorRole)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Invitation sent successfully.", mapping)
}

// Approve activates a pending request
// GET /api/startup/connections/:mappingId/approve
func (h *ConnectionHandler) Approve(c *gin.Context) {
	mapping, err := h.connectionService.ApproveConnection(c.Request.Context(), middleware.GetUserID(c), c.Param("mappingId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Connection approved successfully.", mapping)
}

// RejectByFounder declines and removes a pending request
// GET /api/startup/connections/:mappingId/reject
func (h *ConnectionHandler) RejectByFounder(c *gin.Context) {
	if err := h.connectionService.RejectByFounder(c.Request.Context(), middleware.GetUserID(c), c.Param("mappingId")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Connection request rejected and removed successfully.", nil)
}

// Request asks a startup for a connection
// POST /api/investor/connections/request
func (h *ConnectionHandler) Request(c *gin.Context) {
	var req services.ConnectStartupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindMessage(err))
		return
	}

	mapping, err := h.connectionService.RequestConnection(c.Request.Context(), middleware.GetUserID(c), req.StartupID, req.InvestorRole)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Connection request sent successfully.", mapping)
}

// Accept activates an invitation addressed to the caller
// GET /api/investor/connections/:mappingId/accept
func (h *ConnectionHandler) Accept(c *gin.Context) {
	mapping, err := h.connectionService.AcceptInvitation(c.Request.Context(), c.Param("mappingId"), middleware.GetEmail(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Invitation accepted successfully.", mapping)
}

// RejectByInvestor declines and removes an invitation addressed to the caller
// GET /api/investor/connections/:mappingId/reject
func (h *ConnectionHandler) RejectByInvestor(c *gin.Context) {
	if err := h.connectionService.RejectByInvestor(c.Request.Context(), middleware.GetEmail(c), c.Param("mappingId")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Invitation rejected and removed successfully.", nil)
}
