package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/huangang/venturelink/internal/models"
	"github.com/huangang/venturelink/pkg/logger"
	"github.com/huangang/venturelink/pkg/response"
	"gorm.io/gorm"
)

// TimelyReportService stores founder updates, renders them to PDF and mails
// published ones to the selected investors.
type TimelyReportService struct {
	db        *gorm.DB
	store     BlobStore
	renderer  *PDFRenderer
	notifier  Notifier
	templates *Templates
	activity  *StartupActivityService
}

func NewTimelyReportService(db *gorm.DB, store BlobStore, renderer *PDFRenderer, notifier Notifier, templates *Templates, activity *StartupActivityService) *TimelyReportService {
	return &TimelyReportService{
		db:        db,
		store:     store,
		renderer:  renderer,
		notifier:  notifier,
		templates: templates,
		activity:  activity,
	}
}

// TimelyReportRequest is the "report" part of the multipart upload.
// InvestorIDs holds investor profile ids.
type TimelyReportRequest struct {
	Title                  string   `json:"title"`
	ReportingPeriod        string   `json:"reportingPeriod"`
	KeyMetrics             string   `json:"keyMetrics"`
	MonthlyRevenue         float64  `json:"monthlyRevenue"`
	MonthlyBurn            float64  `json:"monthlyBurn"`
	CashRunway             float64  `json:"cashRunway"`
	TeamSize               int      `json:"teamSize"`
	KeyAchievements        string   `json:"keyAchievements"`
	ChallengesAndLearnings string   `json:"challengesAndLearnings"`
	OtherKeyMetrics        string   `json:"otherKeyMetrics"`
	AsksFromInvestors      string   `json:"asksFromInvestors"`
	DraftReport            bool     `json:"draftReport"`
	InvestorIDs            []string `json:"investorUserIds"`
}

var errDraftExists = response.NewBadRequest("A draft report already exists. Please update or delete it before creating a new one.")

func (req *TimelyReportRequest) applyTo(r *models.TimelyReport) {
	r.Title = strings.TrimSpace(req.Title)
	r.ReportingPeriod = req.ReportingPeriod
	r.KeyMetrics = req.KeyMetrics
	r.MonthlyRevenue = req.MonthlyRevenue
	r.MonthlyBurn = req.MonthlyBurn
	r.CashRunway = req.CashRunway
	r.TeamSize = req.TeamSize
	r.KeyAchievements = req.KeyAchievements
	r.ChallengesAndLearnings = req.ChallengesAndLearnings
	r.OtherKeyMetrics = req.OtherKeyMetrics
	r.AsksFromInvestors = req.AsksFromInvestors
	r.DraftReport = req.DraftReport
	r.InvestorIDs = uniqueStrings(req.InvestorIDs)
}

func (s *TimelyReportService) Create(ctx context.Context, founderUserID string, req *TimelyReportRequest, attachments []UploadedFile) (*models.TimelyReport, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, response.NewBadRequest("Report title cannot be empty")
	}
	db := s.db.WithContext(ctx)

	var founder models.User
	if err := first(db, &founder, "Founder not found", "id = ?", founderUserID); err != nil {
		return nil, err
	}
	startup, err := startupForFounder(db, founder.ID)
	if err != nil {
		return nil, err
	}

	if req.DraftReport {
		var drafts int64
		if err := db.Model(&models.TimelyReport{}).
			Where("startup_id = ? AND draft_report = ?", startup.ID, true).
			Count(&drafts).Error; err != nil {
			return nil, err
		}
		if drafts > 0 {
			return nil, errDraftExists
		}
	}

	report := models.TimelyReport{StartupID: startup.ID, FounderUserID: founder.ID}
	req.applyTo(&report)

	if err := s.attach(ctx, &report, startup.Name, attachments); err != nil {
		return nil, err
	}
	if err := db.Create(&report).Error; err != nil {
		s.discardFiles(ctx, &report)
		if isDuplicate(err) {
			return nil, errDraftExists
		}
		return nil, err
	}

	logger.Infof("[Report] %s created report %q (draft=%v)", startup.Name, report.Title, report.DraftReport)
	if !report.DraftReport {
		s.publish(ctx, &founder, startup, &report)
	}
	return &report, nil
}

// Update replaces every field and file of a report owned by the founder,
// regenerates the PDF and mails it again when the report is published.
func (s *TimelyReportService) Update(ctx context.Context, founderUserID, reportID string, req *TimelyReportRequest, attachments []UploadedFile) (*models.TimelyReport, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, response.NewBadRequest("Report title cannot be empty")
	}
	db := s.db.WithContext(ctx)

	var report models.TimelyReport
	if err := first(db, &report, "Timely report not found", "id = ?", reportID); err != nil {
		return nil, err
	}
	if report.FounderUserID != founderUserID {
		return nil, response.NewBadRequest("You are not authorized to update this report.")
	}

	var founder models.User
	if err := first(db, &founder, "Founder not found", "id = ?", founderUserID); err != nil {
		return nil, err
	}
	startup, err := startupForFounder(db, founder.ID)
	if err != nil {
		return nil, err
	}

	oldFiles := append([]models.FileRef{}, report.Attachments...)
	if report.ReportPDF != nil {
		oldFiles = append(oldFiles, *report.ReportPDF)
	}

	req.applyTo(&report)
	report.StartupID = startup.ID
	if err := s.attach(ctx, &report, startup.Name, attachments); err != nil {
		return nil, err
	}
	if err := db.Save(&report).Error; err != nil {
		s.discardFiles(ctx, &report)
		if isDuplicate(err) {
			return nil, errDraftExists
		}
		return nil, err
	}
	removeBlobs(ctx, s.store, oldFiles...)

	logger.Infof("[Report] %s updated report %s (draft=%v)", startup.Name, report.ID, report.DraftReport)
	if !report.DraftReport {
		s.publish(ctx, &founder, startup, &report)
	}
	return &report, nil
}

func (s *TimelyReportService) GetDraft(ctx context.Context, founderUserID string) (*models.TimelyReport, error) {
	db := s.db.WithContext(ctx)
	startup, err := startupForFounder(db, founderUserID)
	if err != nil {
		return nil, err
	}
	var report models.TimelyReport
	if err := first(db, &report, "No draft report found for this startup.", "startup_id = ? AND draft_report = ?", startup.ID, true); err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *TimelyReportService) ListByFounder(ctx context.Context, founderUserID string) ([]models.TimelyReport, error) {
	reports := []models.TimelyReport{}
	err := s.db.WithContext(ctx).Where("founder_user_id = ?", founderUserID).
		Order("created_at DESC").Find(&reports).Error
	return reports, err
}

// attach stores the uploaded files and the rendered PDF on report. Files
// written before a failure are removed again.
func (s *TimelyReportService) attach(ctx context.Context, report *models.TimelyReport, startupName string, files []UploadedFile) error {
	refs := make([]models.FileRef, 0, len(files))
	for _, f := range files {
		ref, err := storeUpload(ctx, s.store, f)
		if err != nil {
			removeBlobs(ctx, s.store, refs...)
			return err
		}
		refs = append(refs, ref)
	}
	report.Attachments = refs

	pdfBytes, err := s.renderer.RenderTimelyReport(report, startupName)
	if err != nil {
		removeBlobs(ctx, s.store, refs...)
		return err
	}
	pdfRef, err := storeUpload(ctx, s.store, UploadedFile{
		Name:        fmt.Sprintf("%s_%s.pdf", startupName, report.Title),
		ContentType: "application/pdf",
		Data:        pdfBytes,
	})
	if err != nil {
		removeBlobs(ctx, s.store, refs...)
		return err
	}
	report.ReportPDF = &pdfRef
	return nil
}

func (s *TimelyReportService) discardFiles(ctx context.Context, report *models.TimelyReport) {
	removeBlobs(ctx, s.store, report.Attachments...)
	if report.ReportPDF != nil {
		removeBlobs(ctx, s.store, *report.ReportPDF)
	}
}

// publish mails the PDF to every selected investor. A recipient that cannot
// be resolved is logged and skipped.
func (s *TimelyReportService) publish(ctx context.Context, founder *models.User, startup *models.Startup, report *models.TimelyReport) {
	db := s.db.WithContext(ctx)

	for _, investorID := range report.InvestorIDs {
		var investor models.Investor
		if err := db.Where("id = ?", investorID).First(&investor).Error; err != nil {
			logger.Warnf("[Report] Skipping investor %s for report %s: %v", investorID, report.ID, err)
			continue
		}
		var user models.User
		if err := db.Where("id = ?", investor.UserID).First(&user).Error; err != nil {
			logger.Warnf("[Report] Skipping investor %s for report %s: user not found", investorID, report.ID)
			continue
		}
		s.notifier.Notify(ctx, s.templates.TimelyReport(
			user.Email, founder.Email, startup.Name, report.Title,
			report.ReportPDF.FileName, report.ReportPDF.FilePath,
		))
	}

	if s.activity != nil {
		if err := s.activity.Upsert(ctx, startup.ID, startup.Name, "Published report: "+report.Title); err != nil {
			logger.Warnf("[Report] Failed to record activity for %s: %v", startup.ID, err)
		}
	}
}
