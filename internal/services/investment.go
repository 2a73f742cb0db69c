package services

import (
	"context"
	"strconv"
	"time"

	"github.com/huangang/venturelink/internal/models"
	"github.com/huangang/venturelink/internal/utils"
	"github.com/huangang/venturelink/pkg/logger"
	"github.com/huangang/venturelink/pkg/response"
	"gorm.io/gorm"
)

const dayMonthYear = "02-01-2006"

// InvestmentService accumulates capital per (investor, startup) and derives
// portfolio figures from it.
type InvestmentService struct {
	db *gorm.DB
}

func NewInvestmentService(db *gorm.DB) *InvestmentService {
	return &InvestmentService{db: db}
}

type InvestmentRequest struct {
	StartupID             string  `json:"startupId" binding:"required,notblank"`
	Amount                float64 `json:"amount" binding:"gt=0"`
	OwnershipPercentage   float64 `json:"ownershipPercentage" binding:"gte=0,lte=100"`
	Currency              string  `json:"currency"`
	Stage                 string  `json:"stage"`
	InvestmentDate        string  `json:"investmentDate" binding:"omitempty,datetime=2006-01-02"`
	ValuationAtInvestment float64 `json:"valuationAtInvestment" binding:"gte=0"`
	Notes                 string  `json:"notes"`
}

type PortfolioCompanyDTO struct {
	StartupID               string     `json:"startupId"`
	StartupName             string     `json:"startupName"`
	StartupIndustry         string     `json:"startupIndustry"`
	StartupTeamSize         int        `json:"startupTeamSize"`
	StartupFoundedYear      string     `json:"startupFoundedYear"`
	StartupMRR              float64    `json:"startupMrr"`
	StartupGrowthPercentage float64    `json:"startupGrowthPercentage"`
	InvestmentAmount        float64    `json:"investmentAmount"`
	OwnershipPercentage     float64    `json:"investmentOwnershipPercentage"`
	InvestmentCurrency      string     `json:"investmentCurrency"`
	InvestmentStage         string     `json:"investmentStage"`
	InvestmentDate          *time.Time `json:"investmentDate,omitempty"`
	ValuationAtInvestment   float64    `json:"valuationAtInvestment"`
	InvestmentNotes         string     `json:"investmentNotes"`
	InvestmentLastUpdate    string     `json:"investmentLastUpdate"`
	IsActive                bool       `json:"isActive"`

	startupValuation float64
}

type PortfolioDashboard struct {
	TotalCompanies int     `json:"totalCompanies"`
	TotalInvested  float64 `json:"totalInvested"`
	PortfolioValue float64 `json:"portfolioValue"`
	AvgGrowth      float64 `json:"avgGrowth"`
}

// AddInvestment records capital. A repeat call for the same pair adds amount
// to the running total and overwrites every descriptive field.
func (s *InvestmentService) AddInvestment(ctx context.Context, investorID string, req *InvestmentRequest) error {
	db := s.db.WithContext(ctx)

	var startup models.Startup
	if err := first(db, &startup, "Startup not found", "id = ?", req.StartupID); err != nil {
		return err
	}
	if err := requireActiveConnection(db, investorID, startup.ID); err != nil {
		return err
	}

	var investedAt *time.Time
	if req.InvestmentDate != "" {
		t, err := time.Parse("2006-01-02", req.InvestmentDate)
		if err != nil {
			return response.NewBadRequest("Invalid investment date")
		}
		investedAt = &t
	}

	updated, err := s.accumulate(db, investorID, startup.ID, req, investedAt)
	if err != nil || updated {
		return err
	}

	inv := models.Investment{
		InvestorID:            investorID,
		StartupID:             startup.ID,
		TotalInvestedAmount:   req.Amount,
		OwnershipPercentage:   req.OwnershipPercentage,
		Currency:              req.Currency,
		Stage:                 req.Stage,
		InvestmentDate:        investedAt,
		ValuationAtInvestment: req.ValuationAtInvestment,
		Notes:                 req.Notes,
		IsActive:              true,
	}
	if err := db.Create(&inv).Error; err != nil {
		if !isDuplicate(err) {
			return err
		}
		// lost the insert race; the row exists now
		updated, err := s.accumulate(db, investorID, startup.ID, req, investedAt)
		if err != nil {
			return err
		}
		if !updated {
			return response.NewServerError("Failed to record investment")
		}
	}

	logger.Infof("[Investment] investor %s added %.2f to %s", investorID, req.Amount, startup.ID)
	return nil
}

// accumulate applies the additive update to an existing row. It reports
// false when the pair has no investment yet.
func (s *InvestmentService) accumulate(db *gorm.DB, investorID, startupID string, req *InvestmentRequest, investedAt *time.Time) (bool, error) {
	res := db.Model(&models.Investment{}).
		Where("investor_id = ? AND startup_id = ?", investorID, startupID).
		Updates(map[string]interface{}{
			"total_invested_amount":   gorm.Expr("total_invested_amount + ?", req.Amount),
			"ownership_percentage":    req.OwnershipPercentage,
			"currency":                req.Currency,
			"stage":                   req.Stage,
			"investment_date":         investedAt,
			"valuation_at_investment": req.ValuationAtInvestment,
			"notes":                   req.Notes,
			"is_active":               true,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// GetPortfolio lists the investor's holdings. Holdings whose startup no
// longer exists are left out.
func (s *InvestmentService) GetPortfolio(ctx context.Context, investorID string) ([]PortfolioCompanyDTO, error) {
	db := s.db.WithContext(ctx)

	var investments []models.Investment
	if err := db.Where("investor_id = ?", investorID).Order("created_at ASC").Find(&investments).Error; err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(investments))
	for _, inv := range investments {
		ids = append(ids, inv.StartupID)
	}
	startups, err := startupsByID(db, ids)
	if err != nil {
		return nil, err
	}

	out := make([]PortfolioCompanyDTO, 0, len(investments))
	for i := range investments {
		inv := &investments[i]
		startup, ok := startups[inv.StartupID]
		if !ok {
			continue
		}
		mrr, growth, err := revenueTrend(db, startup.ID)
		if err != nil {
			return nil, err
		}

		industry := startup.Sector
		if industry == "" {
			industry = "Unknown"
		}
		foundedYear := "N/A"
		if !startup.CreatedAt.IsZero() {
			foundedYear = strconv.Itoa(startup.CreatedAt.Year())
		}
		lastUpdate := "N/A"
		switch {
		case !inv.UpdatedAt.IsZero():
			lastUpdate = inv.UpdatedAt.Format(dayMonthYear)
		case !inv.CreatedAt.IsZero():
			lastUpdate = inv.CreatedAt.Format(dayMonthYear)
		}

		out = append(out, PortfolioCompanyDTO{
			StartupID:               startup.ID,
			StartupName:             startup.Name,
			StartupIndustry:         industry,
			StartupTeamSize:         startup.TeamSize,
			StartupFoundedYear:      foundedYear,
			StartupMRR:              utils.Round2(mrr),
			StartupGrowthPercentage: utils.Round2(growth),
			InvestmentAmount:        utils.Round2(inv.TotalInvestedAmount),
			OwnershipPercentage:     utils.Round2(inv.OwnershipPercentage),
			InvestmentCurrency:      inv.Currency,
			InvestmentStage:         inv.Stage,
			InvestmentDate:          inv.InvestmentDate,
			ValuationAtInvestment:   utils.Round2(inv.ValuationAtInvestment),
			InvestmentNotes:         inv.Notes,
			InvestmentLastUpdate:    lastUpdate,
			IsActive:                inv.IsActive,
			startupValuation:        startup.Valuation,
		})
	}
	return out, nil
}

// revenueTrend returns the latest report's monthly revenue and its growth
// over the report before it. Growth is 0 without a positive previous value.
func revenueTrend(db *gorm.DB, startupID string) (current, growth float64, err error) {
	var reports []models.TimelyReport
	if err := db.Select("monthly_revenue", "created_at").
		Where("startup_id = ?", startupID).
		Order("created_at DESC").Limit(2).
		Find(&reports).Error; err != nil {
		return 0, 0, err
	}
	if len(reports) == 0 {
		return 0, 0, nil
	}
	current = reports[0].MonthlyRevenue
	if len(reports) == 2 && reports[1].MonthlyRevenue > 0 {
		prev := reports[1].MonthlyRevenue
		growth = (current - prev) / prev * 100
	}
	return current, growth, nil
}

func (s *InvestmentService) GetDashboardMetrics(ctx context.Context, investorID string) (*PortfolioDashboard, error) {
	portfolio, err := s.GetPortfolio(ctx, investorID)
	if err != nil {
		return nil, err
	}

	dash := &PortfolioDashboard{TotalCompanies: len(portfolio)}
	if len(portfolio) == 0 {
		return dash, nil
	}

	var growthSum float64
	for _, p := range portfolio {
		dash.TotalInvested += p.InvestmentAmount
		valuation := p.ValuationAtInvestment
		if valuation == 0 {
			valuation = p.startupValuation
		}
		dash.PortfolioValue += valuation * p.OwnershipPercentage / 100
		growthSum += p.StartupGrowthPercentage
	}
	dash.TotalInvested = utils.Round2(dash.TotalInvested)
	dash.PortfolioValue = utils.Round2(dash.PortfolioValue)
	dash.AvgGrowth = utils.Round2(growthSum / float64(len(portfolio)))
	return dash, nil
}
