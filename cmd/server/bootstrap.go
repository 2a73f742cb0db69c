package main

import (
	"context"

	"github.com/huangang/venturelink/internal/config"
	"github.com/huangang/venturelink/internal/handlers"
	"github.com/huangang/venturelink/internal/models"
	"github.com/huangang/venturelink/internal/services"
	"github.com/huangang/venturelink/internal/utils"
	"github.com/huangang/venturelink/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	cfg       *config.Config
	taskQueue services.TaskQueue
	worker    *services.Worker
	sweeper   *services.OutboxSweeper

	healthHandler      *handlers.HealthHandler
	authHandler        *handlers.AuthHandler
	onboardingHandler  *handlers.OnboardingHandler
	investorHandler    *handlers.InvestorHandler
	pipelineHandler    *handlers.DealPipelineHandler
	investmentHandler  *handlers.InvestmentHandler
	connectionHandler  *handlers.ConnectionHandler
	startupHandler     *handlers.StartupHandler
	documentHandler    *handlers.DocumentHandler
	reportHandler      *handlers.ReportHandler
	integrationHandler *handlers.IntegrationHandler
}

// bootstrap initializes all application dependencies: database, storage, mail pipeline, services.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)
	handlers.RegisterValidators()

	// Initialize database
	if err := models.InitDB(&cfg.Database, cfg.Server.Mode == "debug"); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	db := models.GetDB()

	// Auto migrate database
	if err := models.AutoMigrate(db); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	store, err := services.NewBlobStore(context.Background(), &cfg.Storage)
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}

	// Notification pipeline: outbox rows -> task queue -> dispatcher -> mailer
	mailer := services.NewMailer(&cfg.Mail)
	dispatcher := services.NewOutboxDispatcher(db, mailer, store, &cfg.Notification)
	taskQueue := services.NewTaskQueue(&cfg.Redis)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(dispatcher.Process)
	}

	// Start async worker if Redis is enabled
	var worker *services.Worker
	if taskQueue.IsAsync() {
		worker = services.NewWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(dispatcher.Process)
			if err := worker.Start(); err != nil {
				logger.Warn().Err(err).Msg("Failed to start notification worker")
			}
		}
	}

	sweeper := services.NewOutboxSweeper(db, taskQueue, dispatcher, cfg.Notification.SweepSpec)
	if err := sweeper.Start(); err != nil {
		logger.Warn().Err(err).Msg("Failed to start outbox sweeper")
	}

	notifier := services.NewOutboxNotifier(db, taskQueue)
	templates := services.NewTemplates(&cfg.App)

	activityService := services.NewStartupActivityService(db)
	investorService := services.NewInvestorService(db, activityService)
	zohoClient := services.NewZohoClient(db, &cfg.Zoho, cfg.ZohoTimeout())
	reportService := services.NewTimelyReportService(db, store, services.NewPDFRenderer(cfg.App.Currency),
		notifier, templates, activityService)

	return &appServices{
		cfg:       cfg,
		taskQueue: taskQueue,
		worker:    worker,
		sweeper:   sweeper,

		healthHandler:     handlers.NewHealthHandler(db, taskQueue),
		authHandler:       handlers.NewAuthHandler(services.NewAuthService(db, &cfg.JWT, notifier, templates)),
		onboardingHandler: handlers.NewOnboardingHandler(services.NewOnboardingService(db)),
		investorHandler:   handlers.NewInvestorHandler(investorService),
		pipelineHandler: handlers.NewDealPipelineHandler(
			services.NewDealPipelineService(db, cfg.App.Currency), investorService),
		investmentHandler: handlers.NewInvestmentHandler(services.NewInvestmentService(db), investorService),
		connectionHandler: handlers.NewConnectionHandler(
			services.NewConnectionService(db, notifier, templates, activityService)),
		startupHandler: handlers.NewStartupHandler(services.NewStartupService(db), activityService,
			services.NewFounderDashboardService(db, zohoClient, cfg.Zoho.MarketingAccounts)),
		documentHandler:    handlers.NewDocumentHandler(services.NewStartupDocumentService(db, store)),
		reportHandler:      handlers.NewReportHandler(reportService),
		integrationHandler: handlers.NewIntegrationHandler(zohoClient, cfg.App.FrontendURL),
	}
}

// shutdown gracefully stops background delivery.
func (s *appServices) shutdown() {
	s.sweeper.Stop()
	logger.Info().Msg("Outbox sweeper stopped")

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		if err := s.taskQueue.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close task queue")
		}
	}
}
