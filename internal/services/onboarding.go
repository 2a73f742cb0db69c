package services

import (
	"context"

	"github.com/huangang/venturelink/internal/models"
	"github.com/huangang/venturelink/pkg/response"
	"gorm.io/gorm"
)

type OnboardingService struct {
	db *gorm.DB
}

func NewOnboardingService(db *gorm.DB) *OnboardingService {
	return &OnboardingService{db: db}
}

type FounderProfileRequest struct {
	StartupName   string  `json:"startupName" binding:"required,notblank"`
	Sector        string  `json:"sector"`
	Stage         string  `json:"stage"`
	FundingRaised float64 `json:"fundingRaised" binding:"gte=0"`
	Valuation     float64 `json:"valuation" binding:"gte=0"`
	TeamSize      int     `json:"teamSize" binding:"gte=0"`
	HQLocation    string  `json:"hqLocation"`
	Website       string  `json:"website" binding:"omitempty,url"`
}

type InvestorProfileRequest struct {
	FirmName     string   `json:"firmName" binding:"required,notblank"`
	InvestorType string   `json:"investorType"`
	TicketSize   string   `json:"ticketSize"`
	SectorFocus  []string `json:"sectorFocus"`
	AUM          float64  `json:"aum" binding:"gte=0"`
}

func (s *OnboardingService) loadUser(tx *gorm.DB, userID string, role models.Role) (*models.User, error) {
	var user models.User
	if err := first(tx, &user, "User not found.", "id = ?", userID); err != nil {
		return nil, err
	}
	if user.Role != role {
		return nil, response.NewForbidden("This profile type does not match your account role.")
	}
	return &user, nil
}

// CreateFounderProfile creates the founder's single startup and marks the
// user onboarded.
func (s *OnboardingService) CreateFounderProfile(ctx context.Context, userID string, req *FounderProfileRequest) (*models.Startup, error) {
	var startup models.Startup
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.loadUser(tx, userID, models.RoleFounder)
		if err != nil {
			return err
		}

		startup = models.Startup{
			FounderUserID: user.ID,
			Name:          req.StartupName,
			Sector:        req.Sector,
			Stage:         req.Stage,
			FundingRaised: req.FundingRaised,
			Valuation:     req.Valuation,
			TeamSize:      req.TeamSize,
			HQLocation:    req.HQLocation,
			Website:       req.Website,
		}
		if err := tx.Create(&startup).Error; err != nil {
			if isDuplicate(err) {
				return response.NewBadRequest("Founder profile already exists for this user.")
			}
			return err
		}
		return tx.Model(user).Update("onboarded", true).Error
	})
	if err != nil {
		return nil, err
	}
	return &startup, nil
}

// CreateInvestorProfile creates the investor profile and marks the user onboarded.
func (s *OnboardingService) CreateInvestorProfile(ctx context.Context, userID string, req *InvestorProfileRequest) (*models.Investor, error) {
	var investor models.Investor
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.loadUser(tx, userID, models.RoleInvestor)
		if err != nil {
			return err
		}

		investor = models.Investor{
			UserID:       user.ID,
			FirmName:     req.FirmName,
			InvestorType: req.InvestorType,
			TicketSize:   req.TicketSize,
			SectorFocus:  req.SectorFocus,
			AUM:          req.AUM,
		}
		if err := tx.Create(&investor).Error; err != nil {
			if isDuplicate(err) {
				return response.NewBadRequest("Investor profile already exists for this user.")
			}
			return err
		}
		return tx.Model(user).Update("onboarded", true).Error
	})
	if err != nil {
		return nil, err
	}
	return &investor, nil
}
