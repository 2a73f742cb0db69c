package models

import (
	"time"

	"gorm.io/gorm"
)

type MappingStatus string

const (
	// MappingInvited: founder invited an investor known only by email.
	MappingInvited MappingStatus = "INVITED"
	// MappingPending: investor requested a connection by investor id.
	MappingPending MappingStatus = "PENDING"
	MappingActive  MappingStatus = "ACTIVE"
)

// InvestorRole is the free-form capacity an investor holds, e.g. LEAD_INVESTOR.
type InvestorRole string

// StartupInvestorMapping links one startup to one investor. Rejection
// deletes the row, so there is no terminal rejected state.
//
// Exactly one of InvestorID / InvestorEmail is set at a time. Both take part
// in a unique index together with StartupID; NULLs never collide.
type StartupInvestorMapping struct {
	ID            string        `gorm:"primaryKey;size:36" json:"id"`
	StartupID     string        `gorm:"size:36;not null;uniqueIndex:idx_mapping_startup_investor;uniqueIndex:idx_mapping_startup_email" json:"startupId"`
	InvestorID    *string       `gorm:"size:36;uniqueIndex:idx_mapping_startup_investor" json:"investorId,omitempty"`
	InvestorEmail *string       `gorm:"size:255;uniqueIndex:idx_mapping_startup_email" json:"investorEmail,omitempty"`
	InvestorRole  InvestorRole  `gorm:"size:50" json:"investorRole"`
	Status        MappingStatus `gorm:"size:20;not null;index" json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

func (StartupInvestorMapping) TableName() string { return "startup_investor_mappings" }

func (m *StartupInvestorMapping) BeforeCreate(*gorm.DB) error {
	assignID(&m.ID)
	return nil
}

type CounterpartyKind int

const (
	CounterpartyByID CounterpartyKind = iota + 1
	CounterpartyByEmail
)

// Counterparty identifies the investor side of a mapping.
type Counterparty struct {
	Kind  CounterpartyKind
	Value string
}

func ByInvestorID(id string) Counterparty {
	return Counterparty{Kind: CounterpartyByID, Value: id}
}

func ByInvestorEmail(email string) Counterparty {
	return Counterparty{Kind: CounterpartyByEmail, Value: email}
}

// Counterparty returns whichever identity the mapping currently carries.
func (m *StartupInvestorMapping) Counterparty() Counterparty {
	if m.InvestorID != nil && *m.InvestorID != "" {
		return ByInvestorID(*m.InvestorID)
	}
	if m.InvestorEmail != nil {
		return ByInvestorEmail(*m.InvestorEmail)
	}
	return Counterparty{}
}

// SetCounterparty replaces the investor identity, clearing the other track.
func (m *StartupInvestorMapping) SetCounterparty(c Counterparty) {
	v := c.Value
	switch c.Kind {
	case CounterpartyByID:
		m.InvestorID = &v
		m.InvestorEmail = nil
	case CounterpartyByEmail:
		m.InvestorEmail = &v
		m.InvestorID = nil
	}
}
