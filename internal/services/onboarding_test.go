package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/huangang/venturelink/internal/models"
	"github.com/stretchr/testify/require"
)

func TestCreateFounderProfile(t *testing.T) {
	db := newTestDB(t)
	svc := NewOnboardingService(db)
	ctx := context.Background()
	u := models.User{Email: "jane@acme.io", Role: models.RoleFounder, Verified: true}
	require.NoError(t, db.Create(&u).Error)

	st, err := svc.CreateFounderProfile(ctx, u.ID, &FounderProfileRequest{StartupName: "Acme", Sector: "Fintech", Valuation: 10})
	require.NoError(t, err)
	require.Equal(t, u.ID, st.FounderUserID)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", u.ID).Error)
	require.True(t, reloaded.Onboarded)

	_, err = svc.CreateFounderProfile(ctx, u.ID, &FounderProfileRequest{StartupName: "Acme 2"})
	requireAppError(t, err, http.StatusBadRequest, "Founder profile already exists for this user.")
}

func TestCreateProfile_RoleMismatch(t *testing.T) {
	db := newTestDB(t)
	svc := NewOnboardingService(db)
	ctx := context.Background()
	founder := models.User{Email: "jane@acme.io", Role: models.RoleFounder}
	require.NoError(t, db.Create(&founder).Error)

	_, err := svc.CreateInvestorProfile(ctx, founder.ID, &InvestorProfileRequest{FirmName: "Fund"})
	requireAppError(t, err, http.StatusForbidden, "")

	var count int64
	db.Model(&models.Investor{}).Count(&count)
	require.Zero(t, count)

	_, err = svc.CreateFounderProfile(ctx, "missing", &FounderProfileRequest{StartupName: "X"})
	requireAppError(t, err, http.StatusNotFound, "User not found.")
}

func TestCreateInvestorProfile(t *testing.T) {
	db := newTestDB(t)
	svc := NewOnboardingService(db)
	ctx := context.Background()
	u := models.User{Email: "vc@fund.com", Role: models.RoleInvestor}
	require.NoError(t, db.Create(&u).Error)

	inv, err := svc.CreateInvestorProfile(ctx, u.ID, &InvestorProfileRequest{
		FirmName: "Fund One", SectorFocus: []string{"Fintech", "Health"}, AUM: 1e8,
	})
	require.NoError(t, err)

	var loaded models.Investor
	require.NoError(t, db.First(&loaded, "id = ?", inv.ID).Error)
	require.Equal(t, []string{"Fintech", "Health"}, loaded.SectorFocus)

	_, err = svc.CreateInvestorProfile(ctx, u.ID, &InvestorProfileRequest{FirmName: "Again"})
	requireAppError(t, err, http.StatusBadRequest, "Investor profile already exists for this user.")
}
