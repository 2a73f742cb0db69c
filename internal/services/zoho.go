package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/huangang/venturelink/internal/config"
	"github.com/huangang/venturelink/internal/models"
	"github.com/huangang/venturelink/internal/utils"
	"github.com/huangang/venturelink/pkg/logger"
	"github.com/huangang/venturelink/pkg/response"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	zohoStateTTL       = 10 * time.Minute
	zohoDefaultExpiry  = time.Hour
	zohoRefreshLeeway  = 30 * time.Second
	zohoEmployeesLimit = 200
)

var (
	errZohoNotConnected = response.NewBadRequest("Zoho integration not connected for this startup.")
	errZohoNoOrg        = response.NewBadRequest("Zoho organization ID not found in integration configuration.")
	errZohoUpstream     = response.NewBadGateway("Failed to fetch data from Zoho. Please try again later.")
)

// ZohoClient talks to the Zoho Books API on behalf of a startup. It owns the
// OAuth flow and keeps each integration's access token fresh.
type ZohoClient struct {
	db         *gorm.DB
	cfg        *config.ZohoConfig
	oauth      *oauth2.Config
	httpClient *http.Client
	refreshes  singleflight.Group
	now        func() time.Time
	log        zerolog.Logger
}

func NewZohoClient(db *gorm.DB, cfg *config.ZohoConfig, timeout time.Duration) *ZohoClient {
	accounts := strings.TrimRight(cfg.AccountsURL, "/")
	return &ZohoClient{
		db:  db,
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{cfg.Scopes},
			Endpoint: oauth2.Endpoint{
				AuthURL:   accounts + "/auth",
				TokenURL:  accounts + "/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
		log:        logger.Component("zoho"),
	}
}

// oauthContext makes the oauth2 package use our timeout-bound client.
func (z *ZohoClient) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, z.httpClient)
}

// ConnectURL returns the consent page URL. The state is a short-lived signed
// token naming the founder, checked again on callback.
func (z *ZohoClient) ConnectURL(founderUserID, email string) (string, error) {
	state, err := utils.GenerateStateToken(founderUserID, email, zohoStateTTL)
	if err != nil {
		return "", err
	}
	return z.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	), nil
}

// HandleCallback exchanges the authorization code and stores the
// integration of the founder's startup.
func (z *ZohoClient) HandleCallback(ctx context.Context, code, state string) (*models.Integration, error) {
	if code == "" {
		return nil, response.NewBadRequest("Missing authorization code.")
	}
	claims, err := utils.ParseStateToken(state)
	if err != nil {
		return nil, response.NewBadRequest("Invalid or expired authorization state.")
	}

	db := z.db.WithContext(ctx)
	startup, err := startupForFounder(db, claims.UserID)
	if err != nil {
		return nil, err
	}

	tok, err := z.oauth.Exchange(z.oauthContext(ctx), code)
	if err != nil {
		z.log.Error().Err(err).Str("startup_id", startup.ID).Msg("token exchange failed")
		return nil, response.NewBadGateway("Failed to connect Zoho integration.")
	}

	orgID, err := z.firstOrganization(ctx, tok.AccessToken)
	if err != nil {
		return nil, err
	}

	var in models.Integration
	err = db.Where("startup_id = ? AND type = ?", startup.ID, models.IntegrationZoho).First(&in).Error
	if err != nil && !isRecordNotFound(err) {
		return nil, err
	}
	now := z.now()
	in.StartupID = startup.ID
	in.Type = models.IntegrationZoho
	in.Status = "CONNECTED"
	in.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		in.RefreshToken = tok.RefreshToken
	}
	in.ExpiresAt = z.expiry(tok)
	in.LastSyncTime = &now
	if orgID != "" {
		in.ConnectionConfig = map[string]string{"organization_id": orgID}
	}
	if err := db.Save(&in).Error; err != nil {
		return nil, err
	}

	z.log.Info().Str("startup_id", startup.ID).Str("organization_id", orgID).Msg("integration connected")
	return &in, nil
}

func (z *ZohoClient) expiry(tok *oauth2.Token) time.Time {
	if tok.Expiry.IsZero() {
		return z.now().Add(zohoDefaultExpiry)
	}
	return tok.Expiry
}

func (z *ZohoClient) firstOrganization(ctx context.Context, accessToken string) (string, error) {
	body, err := z.do(ctx, accessToken, "organizations", url.Values{})
	if err != nil {
		return "", err
	}
	return body.Get("organizations.0.organization_id").String(), nil
}

// Acquire returns the startup's integration carrying a valid access token.
// Concurrent callers that find the token stale share one refresh.
func (z *ZohoClient) Acquire(ctx context.Context, startupID string) (*models.Integration, error) {
	in, err := z.load(ctx, startupID)
	if err != nil {
		return nil, err
	}
	if z.fresh(in) {
		return in, nil
	}

	v, err, _ := z.refreshes.Do(in.ID, func() (interface{}, error) {
		return z.refresh(ctx, startupID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Integration), nil
}

func (z *ZohoClient) load(ctx context.Context, startupID string) (*models.Integration, error) {
	var in models.Integration
	err := z.db.WithContext(ctx).
		Where("startup_id = ? AND type = ?", startupID, models.IntegrationZoho).
		First(&in).Error
	if err != nil {
		if isRecordNotFound(err) {
			return nil, errZohoNotConnected
		}
		return nil, err
	}
	if in.AccessToken == "" {
		return nil, errZohoNotConnected
	}
	return &in, nil
}

func (z *ZohoClient) fresh(in *models.Integration) bool {
	return in.ExpiresAt.After(z.now().Add(zohoRefreshLeeway))
}

func (z *ZohoClient) refresh(ctx context.Context, startupID string) (*models.Integration, error) {
	// another instance may have refreshed while we waited
	in, err := z.load(ctx, startupID)
	if err != nil {
		return nil, err
	}
	if z.fresh(in) {
		return in, nil
	}
	if in.RefreshToken == "" {
		return nil, response.NewBadRequest("Zoho refresh token missing. Please reconnect your Zoho integration.")
	}

	src := z.oauth.TokenSource(z.oauthContext(ctx), &oauth2.Token{
		RefreshToken: in.RefreshToken,
		Expiry:       time.Unix(1, 0),
	})
	tok, err := src.Token()
	if err != nil {
		z.log.Error().Err(err).Str("startup_id", startupID).Msg("token refresh failed")
		return nil, errZohoUpstream
	}

	now := z.now()
	in.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		in.RefreshToken = tok.RefreshToken
	}
	in.ExpiresAt = z.expiry(tok)
	in.LastSyncTime = &now
	if err := z.db.WithContext(ctx).Save(in).Error; err != nil {
		return nil, err
	}
	z.log.Info().Str("startup_id", startupID).Msg("access token refreshed")
	return in, nil
}

// get calls an organization-scoped endpoint for the startup.
func (z *ZohoClient) get(ctx context.Context, startupID, endpoint string, params url.Values) (gjson.Result, error) {
	in, err := z.Acquire(ctx, startupID)
	if err != nil {
		return gjson.Result{}, err
	}
	orgID := in.OrganizationID()
	if orgID == "" {
		return gjson.Result{}, errZohoNoOrg
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("organization_id", orgID)
	return z.do(ctx, in.AccessToken, endpoint, params)
}

func (z *ZohoClient) do(ctx context.Context, accessToken, endpoint string, params url.Values) (gjson.Result, error) {
	apiURL := strings.TrimRight(z.cfg.APIBaseURL, "/") + "/" + endpoint
	if len(params) > 0 {
		apiURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return gjson.Result{}, err
	}
	req.Header.Set("Authorization", "Zoho-oauthtoken "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := z.httpClient.Do(req)
	if err != nil {
		z.log.Error().Err(err).Str("endpoint", endpoint).Msg("request failed")
		return gjson.Result{}, errZohoUpstream
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		z.log.Error().Err(err).Str("endpoint", endpoint).Msg("read response failed")
		return gjson.Result{}, errZohoUpstream
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		z.log.Error().Int("status", resp.StatusCode).Str("endpoint", endpoint).
			Str("body", truncate(string(body), 500)).Msg("unexpected response")
		return gjson.Result{}, errZohoUpstream
	}
	if !gjson.ValidBytes(body) {
		z.log.Error().Str("endpoint", endpoint).Msg("response is not valid JSON")
		return gjson.Result{}, errZohoUpstream
	}
	return gjson.ParseBytes(body), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func dateRange(from, to string) url.Values {
	v := url.Values{}
	if from != "" {
		v.Set("date_start", from)
	}
	if to != "" {
		v.Set("date_end", to)
	}
	return v
}

func (z *ZohoClient) SalesOrders(ctx context.Context, startupID, from, to string) (gjson.Result, error) {
	return z.get(ctx, startupID, "salesorders", dateRange(from, to))
}

func (z *ZohoClient) Expenses(ctx context.Context, startupID, from, to string) (gjson.Result, error) {
	return z.get(ctx, startupID, "expenses", dateRange(from, to))
}

func (z *ZohoClient) BankAccounts(ctx context.Context, startupID string) (gjson.Result, error) {
	return z.get(ctx, startupID, "bankaccounts", nil)
}

func (z *ZohoClient) Contacts(ctx context.Context, startupID string) (gjson.Result, error) {
	return z.get(ctx, startupID, "contacts", nil)
}

func (z *ZohoClient) Invoices(ctx context.Context, startupID string) (gjson.Result, error) {
	return z.get(ctx, startupID, "invoices", nil)
}

// ProfitAndLoss defaults to the last month when the range is empty.
func (z *ZohoClient) ProfitAndLoss(ctx context.Context, startupID, from, to string) (gjson.Result, error) {
	today := z.now()
	if from == "" {
		from = today.AddDate(0, -1, 0).Format(isoDate)
	}
	if to == "" {
		to = today.Format(isoDate)
	}
	v := url.Values{}
	v.Set("from_date", from)
	v.Set("to_date", to)
	return z.get(ctx, startupID, "reports/profitandloss", v)
}

func (z *ZohoClient) Employees(ctx context.Context, startupID string) (gjson.Result, error) {
	v := url.Values{}
	v.Set("page", "1")
	v.Set("per_page", fmt.Sprint(zohoEmployeesLimit))
	return z.get(ctx, startupID, "employees", v)
}
