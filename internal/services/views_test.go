package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/huangang/venturelink/internal/models"
	"github.com/stretchr/testify/require"
)

func TestStartupActivity_Upsert(t *testing.T) {
	db := newTestDB(t)
	svc := NewStartupActivityService(db)
	ctx := context.Background()

	got, err := svc.GetByStartupID(ctx, "s1")
	require.NoError(t, err)
	require.Nil(t, got)

	require.NoError(t, svc.Upsert(ctx, "s1", "Acme", "first"))
	require.NoError(t, svc.Upsert(ctx, "s1", "Acme", "second"))

	var count int64
	db.Model(&models.StartupActivity{}).Count(&count)
	require.EqualValues(t, 1, count)

	got, err = svc.GetByStartupID(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, "second", got.Message)
	require.Equal(t, "Just now", got.TimeAgo)
}

func TestInvestorService_ConnectedStartupsAndActivities(t *testing.T) {
	db := newTestDB(t)
	activity := NewStartupActivityService(db)
	svc := NewInvestorService(db, activity)
	ctx := context.Background()

	invUser, investor := createInvestor(t, db, "vc@fund.com", "Fund One")
	_, acme := createFounder(t, db, "founder@acme.io", "Acme")
	_, beta := createFounder(t, db, "founder@beta.io", "Beta")
	_, gamma := createFounder(t, db, "founder@gamma.io", "Gamma")

	connect(t, db, acme.ID, investor.ID, models.MappingActive)
	invite := models.StartupInvestorMapping{StartupID: beta.ID, Status: models.MappingInvited}
	invite.SetCounterparty(models.ByInvestorEmail("vc@fund.com"))
	require.NoError(t, db.Create(&invite).Error)
	// a mapping whose startup vanished is skipped
	connect(t, db, "gone", investor.ID, models.MappingActive)

	startups, err := svc.GetConnectedStartups(ctx, invUser.ID)
	require.NoError(t, err)
	require.Len(t, startups, 2)
	byID := map[string]InvestorStartupDTO{}
	for _, s := range startups {
		byID[s.StartupID] = s
	}
	require.Equal(t, models.MappingActive, byID[acme.ID].Status)
	require.Equal(t, models.MappingInvited, byID[beta.ID].Status)

	base := time.Now()
	activity.now = func() time.Time { return base.Add(-2 * time.Hour) }
	require.NoError(t, activity.Upsert(ctx, acme.ID, "Acme (old name)", "older"))
	activity.now = func() time.Time { return base.Add(-time.Hour) }
	require.NoError(t, activity.Upsert(ctx, beta.ID, "Beta", "newer"))
	require.NoError(t, activity.Upsert(ctx, gamma.ID, "Gamma", "not connected"))
	activity.now = time.Now

	acts, err := svc.LatestActivities(ctx, invUser.ID)
	require.NoError(t, err)
	require.Len(t, acts, 2)
	require.Equal(t, "newer", acts[0].Message)
	require.Equal(t, "Acme", acts[1].StartupName, "current startup name wins")
	require.Equal(t, "2 hours ago", acts[1].TimeAgo)
}

func TestInvestorService_NoProfile(t *testing.T) {
	db := newTestDB(t)
	svc := NewInvestorService(db, NewStartupActivityService(db))
	u := createUser(t, db, "vc@fund.com", models.RoleInvestor)

	_, err := svc.GetConnectedStartups(context.Background(), u.ID)
	requireAppError(t, err, http.StatusNotFound, "Investor profile not found.")
}

func TestStartupService_FullInvestorData(t *testing.T) {
	db := newTestDB(t)
	svc := NewStartupService(db)
	ctx := context.Background()

	founder, startup := createFounder(t, db, "founder@acme.io", "Acme")
	list, err := svc.GetFullInvestorData(ctx, founder.ID)
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Empty(t, list)

	_, lead := createInvestor(t, db, "lead@fund.com", "Lead Fund")
	_, pending := createInvestor(t, db, "pending@fund.com", "Pending Fund")
	m := connect(t, db, startup.ID, lead.ID, models.MappingActive)
	connect(t, db, startup.ID, pending.ID, models.MappingPending)
	invite := models.StartupInvestorMapping{StartupID: startup.ID, Status: models.MappingActive}
	invite.SetCounterparty(models.ByInvestorEmail("bound-later@fund.com"))
	require.NoError(t, db.Create(&invite).Error)

	created := time.Date(2025, 7, 4, 10, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&models.Investment{
		InvestorID: lead.ID, StartupID: startup.ID, TotalInvestedAmount: 150,
		OwnershipPercentage: 7.5, IsActive: true, CreatedAt: created,
	}).Error)

	list, err = svc.GetFullInvestorData(ctx, founder.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	got := list[0]
	require.Equal(t, "Lead Fund", got.FirmName)
	require.Equal(t, "lead@fund.com", got.Email)
	require.Equal(t, m.ID, got.MappingID)
	require.Equal(t, 150.0, got.TotalInvestedAmount)
	require.Equal(t, 7.5, got.OwnershipPercentage)
	require.NotNil(t, got.InvestedAt)
	require.Equal(t, "04-07-2025", *got.InvestedAt)

	_, err = svc.GetFullInvestorData(ctx, "no-startup")
	requireAppError(t, err, http.StatusNotFound, "")
}
