package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/huangang/venturelink/internal/models"
	"github.com/stretchr/testify/require"
)

func TestAddInvestment_Accumulates(t *testing.T) {
	db := newTestDB(t)
	svc := NewInvestmentService(db)
	ctx := context.Background()
	_, startup := createFounder(t, db, "founder@acme.io", "Acme")
	_, investor := createInvestor(t, db, "vc@fund.com", "Fund One")
	connect(t, db, startup.ID, investor.ID, models.MappingActive)

	require.NoError(t, svc.AddInvestment(ctx, investor.ID, &InvestmentRequest{
		StartupID: startup.ID, Amount: 100, OwnershipPercentage: 5, Currency: "USD", Stage: "Seed",
		InvestmentDate: "2025-01-10", Notes: "first",
	}))
	require.NoError(t, svc.AddInvestment(ctx, investor.ID, &InvestmentRequest{
		StartupID: startup.ID, Amount: 50, OwnershipPercentage: 8, Currency: "INR", Stage: "Series A",
		ValuationAtInvestment: 250000, Notes: "follow-on",
	}))

	var rows []models.Investment
	require.NoError(t, db.Where("investor_id = ? AND startup_id = ?", investor.ID, startup.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	inv := rows[0]
	require.Equal(t, 150.0, inv.TotalInvestedAmount)
	require.Equal(t, 8.0, inv.OwnershipPercentage)
	require.Equal(t, "INR", inv.Currency)
	require.Equal(t, "Series A", inv.Stage)
	require.Equal(t, "follow-on", inv.Notes)
	require.Nil(t, inv.InvestmentDate, "descriptive fields are overwritten, even when empty")
	require.True(t, inv.IsActive)
}

func TestAddInvestment_RequiresActiveConnection(t *testing.T) {
	db := newTestDB(t)
	svc := NewInvestmentService(db)
	ctx := context.Background()
	_, startup := createFounder(t, db, "founder@acme.io", "Acme")
	_, investor := createInvestor(t, db, "vc@fund.com", "Fund One")

	err := svc.AddInvestment(ctx, investor.ID, &InvestmentRequest{StartupID: "missing", Amount: 10})
	requireAppError(t, err, http.StatusNotFound, "Startup not found")

	err = svc.AddInvestment(ctx, investor.ID, &InvestmentRequest{StartupID: startup.ID, Amount: 10})
	requireAppError(t, err, http.StatusBadRequest, "No connection found between investor and startup")

	connect(t, db, startup.ID, investor.ID, models.MappingPending)
	err = svc.AddInvestment(ctx, investor.ID, &InvestmentRequest{StartupID: startup.ID, Amount: 10})
	requireAppError(t, err, http.StatusBadRequest, "Connection is not active")

	var count int64
	db.Model(&models.Investment{}).Count(&count)
	require.Zero(t, count)
}

func TestPortfolioAndDashboard(t *testing.T) {
	db := newTestDB(t)
	svc := NewInvestmentService(db)
	ctx := context.Background()
	founder, startup := createFounder(t, db, "founder@acme.io", "Acme")
	_, investor := createInvestor(t, db, "vc@fund.com", "Fund One")
	connect(t, db, startup.ID, investor.ID, models.MappingActive)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, revenue := range []float64{1000, 1200} {
		r := models.TimelyReport{
			StartupID: startup.ID, FounderUserID: founder.ID, Title: "Monthly",
			MonthlyRevenue: revenue, CreatedAt: base.AddDate(0, i, 0),
		}
		require.NoError(t, db.Create(&r).Error)
	}

	require.NoError(t, svc.AddInvestment(ctx, investor.ID, &InvestmentRequest{
		StartupID: startup.ID, Amount: 100000, OwnershipPercentage: 10, ValuationAtInvestment: 200000,
	}))

	portfolio, err := svc.GetPortfolio(ctx, investor.ID)
	require.NoError(t, err)
	require.Len(t, portfolio, 1)
	p := portfolio[0]
	require.Equal(t, "Acme", p.StartupName)
	require.Equal(t, "Fintech", p.StartupIndustry)
	require.Equal(t, 1200.0, p.StartupMRR)
	require.Equal(t, 20.0, p.StartupGrowthPercentage)
	require.Equal(t, 100000.0, p.InvestmentAmount)
	require.Equal(t, time.Now().Format(dayMonthYear), p.InvestmentLastUpdate)

	dash, err := svc.GetDashboardMetrics(ctx, investor.ID)
	require.NoError(t, err)
	require.Equal(t, 1, dash.TotalCompanies)
	require.Equal(t, 100000.0, dash.TotalInvested)
	require.Equal(t, 20000.0, dash.PortfolioValue)
	require.Equal(t, 20.0, dash.AvgGrowth)
}

func TestDashboard_FallsBackToStartupValuation(t *testing.T) {
	db := newTestDB(t)
	svc := NewInvestmentService(db)
	ctx := context.Background()
	_, startup := createFounder(t, db, "founder@acme.io", "Acme")
	_, investor := createInvestor(t, db, "vc@fund.com", "Fund One")
	connect(t, db, startup.ID, investor.ID, models.MappingActive)

	require.NoError(t, svc.AddInvestment(ctx, investor.ID, &InvestmentRequest{
		StartupID: startup.ID, Amount: 1000, OwnershipPercentage: 2.5,
	}))

	dash, err := svc.GetDashboardMetrics(ctx, investor.ID)
	require.NoError(t, err)
	// 5,000,000 * 2.5%
	require.Equal(t, 125000.0, dash.PortfolioValue)
	require.Zero(t, dash.AvgGrowth)
}

func TestDashboard_EmptyPortfolio(t *testing.T) {
	db := newTestDB(t)
	dash, err := NewInvestmentService(db).GetDashboardMetrics(context.Background(), "nobody")
	require.NoError(t, err)
	require.Equal(t, &PortfolioDashboard{}, dash)
}

func TestPortfolio_SkipsDeletedStartups(t *testing.T) {
	db := newTestDB(t)
	svc := NewInvestmentService(db)
	require.NoError(t, db.Create(&models.Investment{InvestorID: "inv", StartupID: "gone", TotalInvestedAmount: 10, IsActive: true}).Error)

	portfolio, err := svc.GetPortfolio(context.Background(), "inv")
	require.NoError(t, err)
	require.Empty(t, portfolio)
}

func TestRevenueTrend_NoPreviousRevenue(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&models.TimelyReport{StartupID: "s", FounderUserID: "f", Title: "a", MonthlyRevenue: 0, CreatedAt: base}).Error)
	require.NoError(t, db.Create(&models.TimelyReport{StartupID: "s", FounderUserID: "f", Title: "b", MonthlyRevenue: 500, CreatedAt: base.AddDate(0, 1, 0)}).Error)

	current, growth, err := revenueTrend(db, "s")
	require.NoError(t, err)
	require.Equal(t, 500.0, current)
	require.Zero(t, growth)
}
