package services

import (
	"context"

	"github.com/huangang/venturelink/internal/models"
	"gorm.io/gorm"
)

// StartupService serves the founder-side read views.
type StartupService struct {
	db *gorm.DB
}

func NewStartupService(db *gorm.DB) *StartupService {
	return &StartupService{db: db}
}

// InvestorFullDTO merges an active investor's user, profile, mapping and
// investment.
type InvestorFullDTO struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`

	InvestorID   string   `json:"investorId"`
	FirmName     string   `json:"firmName"`
	InvestorType string   `json:"investorType"`
	TicketSize   string   `json:"ticketSize"`
	SectorFocus  []string `json:"sectorFocus"`
	AUM          float64  `json:"aum"`

	MappingID    string               `json:"mappingId"`
	InvestorRole models.InvestorRole  `json:"investorRole"`
	Status       models.MappingStatus `json:"status"`

	OwnershipPercentage float64 `json:"ownershipPercentage"`
	TotalInvestedAmount float64 `json:"totalInvestedAmount"`
	InvestedAt          *string `json:"investedAt"`
}

func (s *StartupService) GetByFounderUserID(ctx context.Context, founderUserID string) (*models.Startup, error) {
	return startupForFounder(s.db.WithContext(ctx), founderUserID)
}

// GetFullInvestorData lists the ACTIVE investors of the founder's startup.
// A startup without active investors yields an empty list.
func (s *StartupService) GetFullInvestorData(ctx context.Context, founderUserID string) ([]InvestorFullDTO, error) {
	db := s.db.WithContext(ctx)

	startup, err := startupForFounder(db, founderUserID)
	if err != nil {
		return nil, err
	}

	var mappings []models.StartupInvestorMapping
	if err := db.Where("startup_id = ? AND status = ? AND investor_id IS NOT NULL", startup.ID, models.MappingActive).
		Order("created_at ASC").Find(&mappings).Error; err != nil {
		return nil, err
	}
	out := make([]InvestorFullDTO, 0, len(mappings))
	if len(mappings) == 0 {
		return out, nil
	}

	investorIDs := make([]string, 0, len(mappings))
	for _, m := range mappings {
		investorIDs = append(investorIDs, *m.InvestorID)
	}

	var investors []models.Investor
	if err := db.Where("id IN ?", investorIDs).Find(&investors).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]*models.Investor, len(investors))
	userIDs := make([]string, 0, len(investors))
	for i := range investors {
		byID[investors[i].ID] = &investors[i]
		userIDs = append(userIDs, investors[i].UserID)
	}

	var users []models.User
	if len(userIDs) > 0 {
		if err := db.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
			return nil, err
		}
	}
	usersByID := make(map[string]*models.User, len(users))
	for i := range users {
		usersByID[users[i].ID] = &users[i]
	}

	var investments []models.Investment
	if err := db.Where("startup_id = ? AND investor_id IN ?", startup.ID, investorIDs).Find(&investments).Error; err != nil {
		return nil, err
	}
	investmentByInvestor := make(map[string]*models.Investment, len(investments))
	for i := range investments {
		investmentByInvestor[investments[i].InvestorID] = &investments[i]
	}

	for _, m := range mappings {
		inv, ok := byID[*m.InvestorID]
		if !ok {
			continue
		}
		dto := InvestorFullDTO{
			InvestorID:   inv.ID,
			FirmName:     inv.FirmName,
			InvestorType: inv.InvestorType,
			TicketSize:   inv.TicketSize,
			SectorFocus:  inv.SectorFocus,
			AUM:          inv.AUM,
			MappingID:    m.ID,
			InvestorRole: m.InvestorRole,
			Status:       m.Status,
		}
		if u, ok := usersByID[inv.UserID]; ok {
			dto.UserID = u.ID
			dto.Name = u.Name
			dto.Email = u.Email
			dto.Phone = u.Phone
		}
		if investment, ok := investmentByInvestor[inv.ID]; ok {
			dto.OwnershipPercentage = investment.OwnershipPercentage
			dto.TotalInvestedAmount = investment.TotalInvestedAmount
			at := investment.CreatedAt.Format(dayMonthYear)
			dto.InvestedAt = &at
		}
		out = append(out, dto)
	}
	return out, nil
}
