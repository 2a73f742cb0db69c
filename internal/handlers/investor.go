package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/venturelink/internal/middleware"
	"github.com/huangang/venturelink/internal/models"
	"github.com/huangang/venturelink/internal/services"
	"github.com/huangang/venturelink/pkg/response"
)

// currentInvestor resolves the caller's investor profile, answering the
// request itself when there is none.
func currentInvestor(c *gin.Context, investors *services.InvestorService) (*models.Investor, bool) {
	investor, err := investors.GetByUserID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return investor, true
}

type InvestorHandler struct {
	investorService *services.InvestorService
}

func NewInvestorHandler(investorService *services.InvestorService) *InvestorHandler {
	return &InvestorHandler{investorService: investorService}
}

// ConnectedStartups lists startups linked to the investor in any state
// GET /api/investor/startups
func (h *InvestorHandler) ConnectedStartups(c *gin.Context) {
	startups, err := h.investorService.GetConnectedStartups(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Connected startups fetched successfully.", startups)
}

// LatestActivities returns the newest activity of each connected startup
// GET /api/investor/startups/latest-activities
func (h *InvestorHandler) LatestActivities(c *gin.Context) {
	activities, err := h.investorService.LatestActivities(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Latest activities fetched successfully.", activities)
}
