package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/huangang/venturelink/internal/config"
	"github.com/huangang/venturelink/internal/middleware"
	"github.com/huangang/venturelink/internal/models"
	"github.com/huangang/venturelink/internal/services"
	"github.com/huangang/venturelink/internal/utils"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("handler-test-secret")
	if err := RegisterValidators(); err != nil {
		panic(err)
	}
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, *services.Notification) {}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testApp struct {
	db     *gorm.DB
	router *gin.Engine
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := models.Open(&config.DatabaseConfig{Driver: "sqlite", DSN: dsn}, false)
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	templates := services.NewTemplates(&config.AppConfig{Name: "VentureLink", FrontendURL: "https://app.example.com"})
	activity := services.NewStartupActivityService(db)
	investorService := services.NewInvestorService(db, activity)
	authHandler := NewAuthHandler(services.NewAuthService(db, &config.JWTConfig{ExpireHour: 1}, nopNotifier{}, templates))
	connectionHandler := NewConnectionHandler(services.NewConnectionService(db, nopNotifier{}, templates, activity))
	pipelineHandler := NewDealPipelineHandler(services.NewDealPipelineService(db, "₹"), investorService)
	investmentHandler := NewInvestmentHandler(services.NewInvestmentService(db), investorService)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/auth/signup", authHandler.Signup)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired())

	investor := protected.Group("/investor")
	investor.Use(middleware.RoleRequired(string(models.RoleInvestor)))
	investor.POST("/deal-pipeline", pipelineHandler.Add)
	investor.GET("/deal-pipeline/dashboard", pipelineHandler.Dashboard)
	investor.DELETE("/deal-pipeline/:id", pipelineHandler.Remove)
	investor.POST("/investments", investmentHandler.Add)
	investor.GET("/investments/dashboard", investmentHandler.Dashboard)
	investor.GET("/connections/:mappingId/accept", connectionHandler.Accept)

	startup := protected.Group("/startup")
	startup.Use(middleware.RoleRequired(string(models.RoleFounder)))
	startup.POST("/connections/invite", connectionHandler.Invite)

	return &testApp{db: db, router: r}
}

func (a *testApp) user(t *testing.T, email string, role models.Role) (*models.User, string) {
	t.Helper()
	u := models.User{Name: email, Email: email, Role: role, Verified: true, Onboarded: true}
	require.NoError(t, a.db.Create(&u).Error)
	token, err := utils.GenerateToken(u.ID, u.Email, string(u.Role), 1)
	require.NoError(t, err)
	return &u, token
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func TestFlow_InviteAcceptPipelineInvest(t *testing.T) {
	app := newTestApp(t)

	founder, founderToken := app.user(t, "founder@acme.io", models.RoleFounder)
	startup := models.Startup{FounderUserID: founder.ID, Name: "Acme", Valuation: 5000000}
	require.NoError(t, app.db.Create(&startup).Error)
	vc, vcToken := app.user(t, "vc@fund.com", models.RoleInvestor)
	require.NoError(t, app.db.Create(&models.Investor{UserID: vc.ID, FirmName: "Fund One"}).Error)

	code, env := app.do(t, http.MethodPost, "/api/startup/connections/invite", founderToken,
		gin.H{"investorEmail": "VC@Fund.com", "investorRole": "LEAD_INVESTOR"})
	require.Equal(t, http.StatusOK, code, env.Message)
	require.Equal(t, "success", env.Status)
	var mapping models.StartupInvestorMapping
	require.NoError(t, json.Unmarshal(env.Data, &mapping))
	require.Equal(t, models.MappingInvited, mapping.Status)

	// not connected yet
	code, env = app.do(t, http.MethodPost, "/api/investor/deal-pipeline", vcToken,
		gin.H{"startupId": startup.ID, "status": models.DealHot})
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "No connection found between investor and startup", env.Message)

	code, env = app.do(t, http.MethodGet, "/api/investor/connections/"+mapping.ID+"/accept", vcToken, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	require.NoError(t, json.Unmarshal(env.Data, &mapping))
	require.Equal(t, models.MappingActive, mapping.Status)

	code, env = app.do(t, http.MethodPost, "/api/investor/deal-pipeline", vcToken,
		gin.H{"startupId": startup.ID, "status": models.DealHot})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var deal services.DealPipelineDTO
	require.NoError(t, json.Unmarshal(env.Data, &deal))
	require.Equal(t, "Acme", deal.StartupName)

	code, env = app.do(t, http.MethodGet, "/api/investor/deal-pipeline/dashboard", vcToken, nil)
	require.Equal(t, http.StatusOK, code)
	var pipeline services.DealPipelineDashboard
	require.NoError(t, json.Unmarshal(env.Data, &pipeline))
	require.EqualValues(t, 1, pipeline.TotalPipeline)
	require.EqualValues(t, 1, pipeline.HotDeals)

	for i := 0; i < 2; i++ {
		code, env = app.do(t, http.MethodPost, "/api/investor/investments", vcToken,
			gin.H{"startupId": startup.ID, "amount": 100, "ownershipPercentage": 5})
		require.Equal(t, http.StatusOK, code, env.Message)
	}
	code, env = app.do(t, http.MethodGet, "/api/investor/investments/dashboard", vcToken, nil)
	require.Equal(t, http.StatusOK, code)
	var portfolio services.PortfolioDashboard
	require.NoError(t, json.Unmarshal(env.Data, &portfolio))
	require.Equal(t, 1, portfolio.TotalCompanies)
	require.Equal(t, 200.0, portfolio.TotalInvested)

	req := httptest.NewRequest(http.MethodDelete, "/api/investor/deal-pipeline/"+deal.ID, nil)
	req.Header.Set("Authorization", "Bearer "+vcToken)
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Zero(t, w.Body.Len())
}

func TestFlow_RoleAndAuthChecks(t *testing.T) {
	app := newTestApp(t)
	_, founderToken := app.user(t, "founder@acme.io", models.RoleFounder)

	code, env := app.do(t, http.MethodGet, "/api/investor/investments/dashboard", founderToken, nil)
	require.Equal(t, http.StatusForbidden, code)
	require.Equal(t, "error", env.Status)

	code, _ = app.do(t, http.MethodGet, "/api/investor/investments/dashboard", "", nil)
	require.Equal(t, http.StatusUnauthorized, code)

	// an investor account without a profile
	_, vcToken := app.user(t, "vc@fund.com", models.RoleInvestor)
	code, env = app.do(t, http.MethodGet, "/api/investor/investments/dashboard", vcToken, nil)
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "Investor profile not found.", env.Message)
}

func TestFlow_BindingMessages(t *testing.T) {
	app := newTestApp(t)
	_, founderToken := app.user(t, "founder@acme.io", models.RoleFounder)

	tests := []struct {
		name, path, token string
		body              interface{}
		want              string
	}{
		{"blank name", "/api/auth/signup", "",
			gin.H{"name": "  ", "email": "a@b.io", "password": "password1", "role": "FOUNDER"}, "name is required"},
		{"bad role", "/api/auth/signup", "",
			gin.H{"name": "Jane", "email": "a@b.io", "password": "password1", "role": "ADMIN"}, "role must be one of: FOUNDER INVESTOR"},
		{"short password", "/api/auth/signup", "",
			gin.H{"name": "Jane", "email": "a@b.io", "password": "short", "role": "FOUNDER"}, "password must be at least 8 characters"},
		{"bad invite email", "/api/startup/connections/invite", founderToken,
			gin.H{"investorEmail": "nope"}, "investorEmail must be a valid email address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := app.do(t, http.MethodPost, tt.path, tt.token, tt.body)
			require.Equal(t, http.StatusBadRequest, code)
			require.Equal(t, tt.want, env.Message)
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Invalid request body")
}
