package models

import (
	"time"

	"gorm.io/gorm"
)

type IntegrationType string

const IntegrationZoho IntegrationType = "ZOHO"

// Integration stores OAuth credentials for a startup's accounting connection.
type Integration struct {
	ID               string            `gorm:"primaryKey;size:36" json:"id"`
	StartupID        string            `gorm:"size:36;not null;uniqueIndex:idx_integration_startup_type" json:"startupId"`
	Type             IntegrationType   `gorm:"size:30;not null;uniqueIndex:idx_integration_startup_type" json:"type"`
	AccessToken      string            `gorm:"type:text" json:"-"`
	RefreshToken     string            `gorm:"type:text" json:"-"`
	ExpiresAt        time.Time         `json:"expiresAt"`
	ConnectionConfig map[string]string `gorm:"serializer:json;type:text" json:"connectionConfig"`
	Status           string            `gorm:"size:30" json:"status"`
	LastSyncTime     *time.Time        `json:"lastSyncTime,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

func (Integration) TableName() string { return "integrations" }

func (i *Integration) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}

// OrganizationID returns the accounting organization bound at connect time.
func (i *Integration) OrganizationID() string {
	if i.ConnectionConfig == nil {
		return ""
	}
	return i.ConnectionConfig["organization_id"]
}
