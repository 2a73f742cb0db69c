package models

import (
	"time"

	"gorm.io/gorm"
)

// Startup is owned by exactly one founder user.
type Startup struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	FounderUserID string    `gorm:"uniqueIndex;size:36;not null" json:"founderUserId"`
	Name          string    `gorm:"size:200;not null" json:"startupName"`
	Sector        string    `gorm:"size:100" json:"sector"`
	Stage         string    `gorm:"size:100" json:"stage"`
	FundingRaised float64   `json:"fundingRaised"`
	Valuation     float64   `json:"valuation"`
	TeamSize      int       `json:"teamSize"`
	HQLocation    string    `gorm:"size:200" json:"hqLocation"`
	Website       string    `gorm:"size:500" json:"website"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (Startup) TableName() string { return "startups" }

func (s *Startup) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}

// Investor is owned by exactly one investor user.
type Investor struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	UserID       string    `gorm:"uniqueIndex;size:36;not null" json:"userId"`
	FirmName     string    `gorm:"size:200" json:"firmName"`
	InvestorType string    `gorm:"size:50" json:"investorType"`
	TicketSize   string    `gorm:"size:100" json:"ticketSize"`
	SectorFocus  []string  `gorm:"serializer:json;type:text" json:"sectorFocus"`
	AUM          float64   `json:"aum"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (Investor) TableName() string { return "investors" }

func (i *Investor) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}
