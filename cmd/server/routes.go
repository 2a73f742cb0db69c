package main

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/venturelink/internal/middleware"
	"github.com/huangang/venturelink/internal/models"
	"github.com/huangang/venturelink/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.MaxMultipartMemory = int64(svc.cfg.Server.MaxUploadMB) << 20
	r.Use(middleware.CORS(svc.cfg.App.FrontendURL))
	r.Use(middleware.BodyLimit(svc.cfg.Server.MaxUploadMB))
	r.Use(middleware.AuditLog())

	// Rate limiter for credential and OTP endpoints
	authLimiter := middleware.NewRateLimiter(5, 10)

	r.GET("/health", svc.healthHandler.CheckHealth)

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth", authLimiter.Middleware())
		{
			auth.POST("/signup", svc.authHandler.Signup)
			auth.POST("/verify-otp", svc.authHandler.VerifyOTP)
			auth.POST("/resend-otp", svc.authHandler.ResendOTP)
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/forgot-password", svc.authHandler.ForgotPassword)
			auth.POST("/reset-password", svc.authHandler.ResetPassword)
		}

		// OAuth redirect target, authenticated through the signed state
		api.GET("/integrations/zoho/callback", svc.integrationHandler.ZohoCallback)

		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)

			onboarding := protected.Group("/onboarding")
			{
				onboarding.POST("/founder", svc.onboardingHandler.CreateFounderProfile)
				onboarding.POST("/investor", svc.onboardingHandler.CreateInvestorProfile)
			}

			investor := protected.Group("/investor")
			investor.Use(middleware.RoleRequired(string(models.RoleInvestor)))
			{
				investor.GET("/deal-pipeline", svc.pipelineHandler.List)
				investor.GET("/deal-pipeline/dashboard", svc.pipelineHandler.Dashboard)
				investor.POST("/deal-pipeline", svc.pipelineHandler.Add)
				investor.PUT("/deal-pipeline/:id", svc.pipelineHandler.Update)
				investor.DELETE("/deal-pipeline/:id", svc.pipelineHandler.Remove)

				investor.POST("/investments", svc.investmentHandler.Add)
				investor.GET("/investments", svc.investmentHandler.Portfolio)
				investor.GET("/investments/dashboard", svc.investmentHandler.Dashboard)

				investor.POST("/connections/request", svc.connectionHandler.Request)
				investor.GET("/connections/:mappingId/accept", svc.connectionHandler.Accept)
				investor.GET("/connections/:mappingId/reject", svc.connectionHandler.RejectByInvestor)

				investor.GET("/startups", svc.investorHandler.ConnectedStartups)
				investor.GET("/startups/latest-activities", svc.investorHandler.LatestActivities)
			}

			startup := protected.Group("/startup")
			startup.Use(middleware.RoleRequired(string(models.RoleFounder)))
			{
				startup.GET("/investors", svc.startupHandler.Investors)
				startup.GET("/dashboard", svc.startupHandler.Dashboard)
				startup.GET("/:startupId/latest-activity", svc.startupHandler.LatestActivity)

				startup.POST("/connections/invite", svc.connectionHandler.Invite)
				startup.GET("/connections/:mappingId/approve", svc.connectionHandler.Approve)
				startup.GET("/connections/:mappingId/reject", svc.connectionHandler.RejectByFounder)

				startup.POST("/documents", svc.documentHandler.Upload)
				startup.GET("/documents", svc.documentHandler.List)
				startup.DELETE("/documents/:documentId", svc.documentHandler.Delete)

				startup.POST("/reports", svc.reportHandler.Create)
				startup.GET("/reports", svc.reportHandler.List)
				startup.GET("/reports/draft", svc.reportHandler.Draft)
				startup.PUT("/reports/:id", svc.reportHandler.Update)

				startup.GET("/integrations/zoho/connect", svc.integrationHandler.ZohoConnect)
			}
		}
	}
}
