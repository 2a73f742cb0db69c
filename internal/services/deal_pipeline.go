package services

import (
	"context"
	"time"

	"github.com/huangang/venturelink/internal/models"
	"github.com/huangang/venturelink/internal/utils"
	"github.com/huangang/venturelink/pkg/response"
	"gorm.io/gorm"
)

// DealPipelineService manages an investor's watch-list of connected startups.
type DealPipelineService struct {
	db       *gorm.DB
	currency string
	now      func() time.Time
}

func NewDealPipelineService(db *gorm.DB, currency string) *DealPipelineService {
	return &DealPipelineService{db: db, currency: currency, now: time.Now}
}

type DealPipelineRequest struct {
	StartupID string            `json:"startupId" binding:"required,notblank"`
	Status    models.DealStatus `json:"status" binding:"required,notblank"`
}

type UpdateDealPipelineRequest struct {
	Status models.DealStatus `json:"status" binding:"required,notblank"`
}

type DealPipelineDTO struct {
	ID           string            `json:"id"`
	StartupID    string            `json:"startupId"`
	InvestorID   string            `json:"investorId"`
	StartupName  string            `json:"startupName"`
	Industry     string            `json:"industry"`
	Stage        string            `json:"stage"`
	Valuation    string            `json:"valuation"`
	Funding      string            `json:"funding"`
	DealStatus   models.DealStatus `json:"dealStatus"`
	Status       string            `json:"status"`
	LastActivity string            `json:"lastActivity"`
}

type DealPipelineDashboard struct {
	TotalPipeline int64  `json:"totalPipeline"`
	StarredDeals  int64  `json:"starredDeals"`
	HotDeals      int64  `json:"hotDeals"`
	TotalValue    string `json:"totalValue"`
}

var errDealNotFound = response.NewNotFound("Deal Pipeline not found")

// requireActiveConnection fails unless the pair is linked by an ACTIVE mapping.
func requireActiveConnection(db *gorm.DB, investorID, startupID string) error {
	var m models.StartupInvestorMapping
	if err := db.Where("startup_id = ? AND investor_id = ?", startupID, investorID).First(&m).Error; err != nil {
		if isRecordNotFound(err) {
			return response.NewBadRequest("No connection found between investor and startup")
		}
		return err
	}
	if m.Status != models.MappingActive {
		return response.NewBadRequest("Connection is not active")
	}
	return nil
}

func (s *DealPipelineService) AddToPipeline(ctx context.Context, investorID string, req *DealPipelineRequest) (*DealPipelineDTO, error) {
	db := s.db.WithContext(ctx)

	var startup models.Startup
	if err := first(db, &startup, "Startup not found", "id = ?", req.StartupID); err != nil {
		return nil, err
	}

	var count int64
	if err := db.Model(&models.DealPipeline{}).
		Where("investor_id = ? AND startup_id = ?", investorID, startup.ID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, response.NewBadRequest("Startup already in deal pipeline")
	}

	if err := requireActiveConnection(db, investorID, startup.ID); err != nil {
		return nil, err
	}

	deal := models.DealPipeline{
		InvestorID: investorID,
		StartupID:  startup.ID,
		Status:     req.Status,
	}
	if err := db.Create(&deal).Error; err != nil {
		if isDuplicate(err) {
			return nil, response.NewBadRequest("Startup already in deal pipeline")
		}
		return nil, err
	}

	dto, err := s.toDTO(db, &deal, &startup)
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

// UpdatePipeline changes the label; the connection must still be ACTIVE.
func (s *DealPipelineService) UpdatePipeline(ctx context.Context, investorID, id string, req *UpdateDealPipelineRequest) (*DealPipelineDTO, error) {
	db := s.db.WithContext(ctx)

	var deal models.DealPipeline
	if err := db.Where("id = ? AND investor_id = ?", id, investorID).First(&deal).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, errDealNotFound
		}
		return nil, err
	}
	if err := requireActiveConnection(db, deal.InvestorID, deal.StartupID); err != nil {
		return nil, err
	}

	if err := db.Model(&deal).Update("status", req.Status).Error; err != nil {
		return nil, err
	}
	deal.Status = req.Status

	startups, err := startupsByID(db, []string{deal.StartupID})
	if err != nil {
		return nil, err
	}
	dto, err := s.toDTO(db, &deal, startups[deal.StartupID])
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

// RemoveFromPipeline deletes the entry. Removing a missing entry succeeds.
func (s *DealPipelineService) RemoveFromPipeline(ctx context.Context, investorID, id string) error {
	return s.db.WithContext(ctx).
		Where("id = ? AND investor_id = ?", id, investorID).
		Delete(&models.DealPipeline{}).Error
}

// GetPipelineForInvestor lists the investor's entries, optionally only those
// with status filter.
func (s *DealPipelineService) GetPipelineForInvestor(ctx context.Context, investorID string, filter models.DealStatus) ([]DealPipelineDTO, error) {
	db := s.db.WithContext(ctx)

	q := db.Where("investor_id = ?", investorID)
	if filter != "" {
		q = q.Where("status = ?", filter)
	}
	var deals []models.DealPipeline
	if err := q.Order("created_at DESC").Find(&deals).Error; err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(deals))
	for _, d := range deals {
		ids = append(ids, d.StartupID)
	}
	startups, err := startupsByID(db, ids)
	if err != nil {
		return nil, err
	}

	out := make([]DealPipelineDTO, 0, len(deals))
	for i := range deals {
		dto, err := s.toDTO(db, &deals[i], startups[deals[i].StartupID])
		if err != nil {
			return nil, err
		}
		out = append(out, dto)
	}
	return out, nil
}

func (s *DealPipelineService) GetDashboardMetrics(ctx context.Context, investorID string) (*DealPipelineDashboard, error) {
	db := s.db.WithContext(ctx)

	var deals []models.DealPipeline
	if err := db.Where("investor_id = ?", investorID).Find(&deals).Error; err != nil {
		return nil, err
	}

	dash := &DealPipelineDashboard{TotalPipeline: int64(len(deals))}
	ids := make([]string, 0, len(deals))
	for _, d := range deals {
		switch d.Status {
		case models.DealStarred:
			dash.StarredDeals++
		case models.DealHot:
			dash.HotDeals++
		}
		ids = append(ids, d.StartupID)
	}

	startups, err := startupsByID(db, ids)
	if err != nil {
		return nil, err
	}
	funding := make([]float64, 0, len(startups))
	for _, st := range startups {
		funding = append(funding, st.FundingRaised)
	}
	dash.TotalValue = utils.FormatMoney(s.currency, utils.SumMoney(funding...))
	return dash, nil
}

// toDTO joins the entry with its startup. A deleted startup renders as a
// placeholder instead of dropping the entry.
func (s *DealPipelineService) toDTO(db *gorm.DB, deal *models.DealPipeline, startup *models.Startup) (DealPipelineDTO, error) {
	dto := DealPipelineDTO{
		ID:           deal.ID,
		StartupID:    deal.StartupID,
		InvestorID:   deal.InvestorID,
		StartupName:  "Unknown Startup",
		Industry:     "Unknown",
		Stage:        "Seed",
		Valuation:    "N/A",
		Funding:      utils.FormatMoney(s.currency, 0),
		DealStatus:   deal.Status,
		Status:       "Hot",
		LastActivity: "N/A",
	}
	if startup == nil {
		return dto, nil
	}

	dto.StartupName = startup.Name
	if startup.Sector != "" {
		dto.Industry = startup.Sector
	}
	if startup.Stage != "" {
		dto.Stage = startup.Stage
	}
	dto.Valuation = utils.FormatMoney(s.currency, startup.Valuation)
	dto.Funding = utils.FormatMoney(s.currency, startup.FundingRaised)

	last, err := s.lastActivity(db, startup)
	if err != nil {
		return dto, err
	}
	if !last.IsZero() {
		dto.LastActivity = utils.TimeAgo(last, s.now())
	}
	return dto, nil
}

// lastActivity prefers the newest report; the startup's creation time is
// the fallback.
func (s *DealPipelineService) lastActivity(db *gorm.DB, startup *models.Startup) (time.Time, error) {
	var report models.TimelyReport
	err := db.Select("created_at").Where("startup_id = ?", startup.ID).
		Order("created_at DESC").First(&report).Error
	switch {
	case err == nil:
		return report.CreatedAt, nil
	case isRecordNotFound(err):
		return startup.CreatedAt, nil
	default:
		return time.Time{}, err
	}
}
