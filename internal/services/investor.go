package services

import (
	"context"
	"sort"

	"github.com/huangang/venturelink/internal/models"
	"gorm.io/gorm"
)

// InvestorService serves the investor-side read views.
type InvestorService struct {
	db       *gorm.DB
	activity *StartupActivityService
}

func NewInvestorService(db *gorm.DB, activity *StartupActivityService) *InvestorService {
	return &InvestorService{db: db, activity: activity}
}

type InvestorStartupDTO struct {
	StartupID     string               `json:"startupId"`
	StartupName   string               `json:"startupName"`
	Sector        string               `json:"sector"`
	Stage         string               `json:"stage"`
	FundingRaised float64              `json:"fundingRaised"`
	HQLocation    string               `json:"hqLocation"`
	TeamSize      int                  `json:"teamSize"`
	Website       string               `json:"website"`
	Valuation     float64              `json:"valuation"`
	MappingID     string               `json:"mappingId"`
	Status        models.MappingStatus `json:"status"`
	InvestorRole  models.InvestorRole  `json:"investorRole"`
}

// GetByUserID resolves the investor profile of a user.
func (s *InvestorService) GetByUserID(ctx context.Context, userID string) (*models.Investor, error) {
	return investorForUser(s.db.WithContext(ctx), userID)
}

// GetConnectedStartups lists every startup linked to the investor, either by
// investor id or by an invitation still addressed to the user's email.
func (s *InvestorService) GetConnectedStartups(ctx context.Context, userID string) ([]InvestorStartupDTO, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := first(db, &user, "User not found", "id = ?", userID); err != nil {
		return nil, err
	}
	investor, err := investorForUser(db, user.ID)
	if err != nil {
		return nil, err
	}

	var mappings []models.StartupInvestorMapping
	if err := db.Where("investor_id = ? OR investor_email = ?", investor.ID, user.Email).
		Order("created_at DESC").Find(&mappings).Error; err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(mappings))
	for _, m := range mappings {
		ids = append(ids, m.StartupID)
	}
	startups, err := startupsByID(db, ids)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(mappings))
	out := make([]InvestorStartupDTO, 0, len(mappings))
	for _, m := range mappings {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}

		st, ok := startups[m.StartupID]
		if !ok {
			continue
		}
		out = append(out, InvestorStartupDTO{
			StartupID:     st.ID,
			StartupName:   st.Name,
			Sector:        st.Sector,
			Stage:         st.Stage,
			FundingRaised: st.FundingRaised,
			HQLocation:    st.HQLocation,
			TeamSize:      st.TeamSize,
			Website:       st.Website,
			Valuation:     st.Valuation,
			MappingID:     m.ID,
			Status:        m.Status,
			InvestorRole:  m.InvestorRole,
		})
	}
	return out, nil
}

// LatestActivities returns the newest activity line of each connected
// startup, most recent first.
func (s *InvestorService) LatestActivities(ctx context.Context, userID string) ([]StartupActivityDTO, error) {
	startups, err := s.GetConnectedStartups(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(startups))
	names := make(map[string]string, len(startups))
	for _, st := range startups {
		ids = append(ids, st.StartupID)
		names[st.StartupID] = st.StartupName
	}
	activities, err := s.activity.ListForStartups(ctx, ids, names)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].UpdatedAt.After(activities[j].UpdatedAt)
	})
	return activities, nil
}
