package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/venturelink/internal/models"
	"github.com/huangang/venturelink/internal/services"
	"github.com/huangang/venturelink/pkg/response"
)

type DealPipelineHandler struct {
	pipelineService *services.DealPipelineService
	investorService *services.InvestorService
}

func NewDealPipelineHandler(pipelineService *services.DealPipelineService, investorService *services.InvestorService) *DealPipelineHandler {
	return &DealPipelineHandler{pipelineService: pipelineService, investorService: investorService}
}

// List returns the investor's pipeline, optionally filtered by status
// GET /api/investor/deal-pipeline?filter=
func (h *DealPipelineHandler) List(c *gin.Context) {
	investor, ok := currentInvestor(c, h.investorService)
	if !ok {
		return
	}

	deals, err := h.pipelineService.GetPipelineForInvestor(c.Request.Context(), investor.ID, models.DealStatus(c.Query("filter")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Deal pipeline fetched successfully.", deals)
}

// Add puts a connected startup on the pipeline
// POST /api/investor/deal-pipeline
func (h *DealPipelineHandler) Add(c *gin.Context) {
	var req services.DealPipelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindMessage(err))
		return
	}
	investor, ok := currentInvestor(c, h.investorService)
	if !ok {
		return
	}

	deal, err := h.pipelineService.AddToPipeline(c.Request.Context(), investor.ID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Startup added to deal pipeline.", deal)
}

// Update changes the status of a pipeline entry
// PUT /api/investor/deal-pipeline/:id
func (h *DealPipelineHandler) Update(c *gin.Context) {
	var req services.UpdateDealPipelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindMessage(err))
		return
	}
	investor, ok := currentInvestor(c, h.investorService)
	if !ok {
		return
	}

	deal, err := h.pipelineService.UpdatePipeline(c.Request.Context(), investor.ID, c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Deal pipeline updated successfully.", deal)
}

// Remove deletes a pipeline entry
// DELETE /api/investor/deal-pipeline/:id
func (h *DealPipelineHandler) Remove(c *gin.Context) {
	investor, ok := currentInvestor(c, h.investorService)
	if !ok {
		return
	}

	if err := h.pipelineService.RemoveFromPipeline(c.Request.Context(), investor.ID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Dashboard returns pipeline counts and total value
// GET /api/investor/deal-pipeline/dashboard
func (h *DealPipelineHandler) Dashboard(c *gin.Context) {
	investor, ok := currentInvestor(c, h.investorService)
	if !ok {
		return
	}

	metrics, err := h.pipelineService.GetDashboardMetrics(c.Request.Context(), investor.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Deal pipeline dashboard fetched successfully.", metrics)
}
