package models

import (
	"time"

	"gorm.io/gorm"
)

// DealStatus is a free-form pipeline label. Two values feed dashboard counts.
type DealStatus string

const (
	DealHot     DealStatus = "HOT_DEAL"
	DealStarred DealStatus = "STARRED_DEAL"
)

// DealPipeline is an investor's watch-list entry for one startup.
type DealPipeline struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	InvestorID string     `gorm:"size:36;not null;uniqueIndex:idx_deal_investor_startup" json:"investorId"`
	StartupID  string     `gorm:"size:36;not null;uniqueIndex:idx_deal_investor_startup;index" json:"startupId"`
	Status     DealStatus `gorm:"size:50;index" json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (DealPipeline) TableName() string { return "deal_pipelines" }

func (d *DealPipeline) BeforeCreate(*gorm.DB) error {
	assignID(&d.ID)
	return nil
}

// Investment accumulates capital one investor committed to one startup.
// TotalInvestedAmount only grows; the descriptive fields are last-write-wins.
type Investment struct {
	ID                    string     `gorm:"primaryKey;size:36" json:"id"`
	InvestorID            string     `gorm:"size:36;not null;uniqueIndex:idx_investment_investor_startup" json:"investorId"`
	StartupID             string     `gorm:"size:36;not null;uniqueIndex:idx_investment_investor_startup;index" json:"startupId"`
	TotalInvestedAmount   float64    `gorm:"not null;default:0" json:"totalInvestedAmount"`
	OwnershipPercentage   float64    `json:"ownershipPercentage"`
	Currency              string     `gorm:"size:10" json:"currency"`
	Stage                 string     `gorm:"size:100" json:"stage"`
	InvestmentDate        *time.Time `json:"investmentDate,omitempty"`
	ValuationAtInvestment float64    `json:"valuationAtInvestment"`
	Notes                 string     `gorm:"type:text" json:"notes"`
	IsActive              bool       `gorm:"default:true" json:"isActive"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

func (Investment) TableName() string { return "investments" }

func (i *Investment) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}

// StartupActivity holds only the latest activity message of a startup.
type StartupActivity struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	StartupID   string    `gorm:"uniqueIndex;size:36;not null" json:"startupId"`
	StartupName string    `gorm:"size:200" json:"startupName"`
	Message     string    `gorm:"type:text" json:"message"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (StartupActivity) TableName() string { return "startup_activities" }

func (a *StartupActivity) BeforeCreate(*gorm.DB) error {
	assignID(&a.ID)
	return nil
}
