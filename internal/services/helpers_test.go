package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/huangang/venturelink/internal/config"
	"github.com/huangang/venturelink/internal/models"
	"github.com/huangang/venturelink/pkg/response"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := models.Open(&config.DatabaseConfig{Driver: "sqlite", DSN: dsn}, false)
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// shared-cache sqlite reports table locks under concurrent writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// recordingNotifier keeps every notification instead of mailing it.
type recordingNotifier struct {
	mu    sync.Mutex
	notes []*Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n *Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recordingNotifier) sent() []*Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Notification(nil), r.notes...)
}

func (r *recordingNotifier) to(addr string) []*Notification {
	var out []*Notification
	for _, n := range r.sent() {
		if n.To == addr {
			out = append(out, n)
		}
	}
	return out
}

func testTemplates() *Templates {
	return NewTemplates(&config.AppConfig{Name: "VentureLink", FrontendURL: "https://app.example.com/"})
}

func createUser(t *testing.T, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()
	u := models.User{Name: email, Email: email, Role: role, Verified: true, Onboarded: true}
	require.NoError(t, db.Create(&u).Error)
	return &u
}

// createFounder creates a verified founder user with one startup.
func createFounder(t *testing.T, db *gorm.DB, email, startupName string) (*models.User, *models.Startup) {
	t.Helper()
	u := createUser(t, db, email, models.RoleFounder)
	st := models.Startup{
		FounderUserID: u.ID,
		Name:          startupName,
		Sector:        "Fintech",
		Stage:         "Seed",
		FundingRaised: 1000000,
		Valuation:     5000000,
		TeamSize:      12,
	}
	require.NoError(t, db.Create(&st).Error)
	return u, &st
}

func createInvestor(t *testing.T, db *gorm.DB, email, firm string) (*models.User, *models.Investor) {
	t.Helper()
	u := createUser(t, db, email, models.RoleInvestor)
	inv := models.Investor{UserID: u.ID, FirmName: firm, InvestorType: "VC"}
	require.NoError(t, db.Create(&inv).Error)
	return u, &inv
}

func connect(t *testing.T, db *gorm.DB, startupID, investorID string, status models.MappingStatus) *models.StartupInvestorMapping {
	t.Helper()
	m := models.StartupInvestorMapping{StartupID: startupID, Status: status}
	m.SetCounterparty(models.ByInvestorID(investorID))
	require.NoError(t, db.Create(&m).Error)
	return &m
}

// requireAppError asserts err is an AppError with the given status and message.
func requireAppError(t *testing.T, err error, status int, msg string) {
	t.Helper()
	require.Error(t, err)
	var appErr *response.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	require.Equal(t, status, appErr.HTTPStatus)
	if msg != "" {
		require.Equal(t, msg, appErr.Message)
	}
}
