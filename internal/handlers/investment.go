package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/venturelink/internal/services"
	"github.com/huangang/venturelink/pkg/response"
)

type InvestmentHandler struct {
	investmentService *services.InvestmentService
	investorService   *services.InvestorService
}

func NewInvestmentHandler(investmentService *services.InvestmentService, investorService *services.InvestorService) *InvestmentHandler {
	return &InvestmentHandler{investmentService: investmentService, investorService: investorService}
}

// Add records an investment
// POST /api/investor/investments
func (h *InvestmentHandler) Add(c *gin.Context) {
	var req services.InvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindMessage(err))
		return
	}
	investor, ok := currentInvestor(c, h.investorService)
	if !ok {
		return
	}

	if err := h.investmentService.AddInvestment(c.Request.Context(), investor.ID, &req); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Investment added successfully.", nil)
}

// Portfolio lists the investor's holdings
// GET /api/investor/investments
func (h *InvestmentHandler) Portfolio(c *gin.Context) {
	investor, ok := currentInvestor(c, h.investorService)
	if !ok {
		return
	}

	portfolio, err := h.investmentService.GetPortfolio(c.Request.Context(), investor.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Portfolio fetched successfully.", portfolio)
}

// Dashboard returns portfolio totals
// GET /api/investor/investments/dashboard
func (h *InvestmentHandler) Dashboard(c *gin.Context) {
	investor, ok := currentInvestor(c, h.investorService)
	if !ok {
		return
	}

	metrics, err := h.investmentService.GetDashboardMetrics(c.Request.Context(), investor.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Portfolio dashboard fetched successfully.", metrics)
}
