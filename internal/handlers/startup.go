package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/venturelink/internal/middleware"
	"github.com/huangang/venturelink/internal/services"
	"github.com/huangang/venturelink/pkg/response"
)

type StartupHandler struct {
	startupService   *services.StartupService
	activityService  *services.StartupActivityService
	dashboardService *services.FounderDashboardService
}

func NewStartupHandler(startupService *services.StartupService, activityService *services.StartupActivityService, dashboardService *services.FounderDashboardService) *StartupHandler {
	return &StartupHandler{
		startupService:   startupService,
		activityService:  activityService,
		dashboardService: dashboardService,
	}
}

// Investors lists the startup's active investors with their holdings
// GET /api/startup/investors
func (h *StartupHandler) Investors(c *gin.Context) {
	investors, err := h.startupService.GetFullInvestorData(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Investors fetched successfully.", investors)
}

// LatestActivity returns the founder's own startup activity
// GET /api/startup/:startupId/latest-activity
func (h *StartupHandler) LatestActivity(c *gin.Context) {
	startup, err := h.startupService.GetByFounderUserID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if startup.ID != c.Param("startupId") {
		response.NotFound(c, "Startup not found.")
		return
	}

	activity, err := h.activityService.GetByStartupID(c.Request.Context(), startup.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if activity == nil {
		response.Success(c, "No activity found for this startup.", nil)
		return
	}
	response.Success(c, "Latest activity fetched successfully.", activity)
}

// Dashboard returns KPIs computed from the connected accounting service
// GET /api/startup/dashboard
func (h *StartupHandler) Dashboard(c *gin.Context) {
	dash, err := h.dashboardService.GetDashboard(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Dashboard data fetched successfully.", dash)
}
