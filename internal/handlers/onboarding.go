package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/venturelink/internal/middleware"
	"github.com/huangang/venturelink/internal/services"
	"github.com/huangang/venturelink/pkg/response"
)

type OnboardingHandler struct {
	onboardingService *services.OnboardingService
}

func NewOnboardingHandler(onboardingService *services.OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{onboardingService: onboardingService}
}

// CreateFounderProfile creates the founder's startup
// POST /api/onboarding/founder
func (h *OnboardingHandler) CreateFounderProfile(c *gin.Context) {
	var req services.FounderProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindMessage(err))
		return
	}

	startup, err := h.onboardingService.CreateFounderProfile(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Founder profile created successfully.", startup)
}

// CreateInvestorProfile creates the investor's profile
// POST /api/onboarding/investor
func (h *OnboardingHandler) CreateInvestorProfile(c *gin.Context) {
	var req services.InvestorProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindMessage(err))
		return
	}

	investor, err := h.onboardingService.CreateInvestorProfile(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Investor profile created successfully.", investor)
}
