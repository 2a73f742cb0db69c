package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	OutboxPending = "pending"
	OutboxSent    = "sent"
	OutboxFailed  = "failed"
)

// NotificationOutbox is a queued email. Rows are written on the request path
// and delivered asynchronously with retry.
type NotificationOutbox struct {
	ID             string     `gorm:"primaryKey;size:36" json:"id"`
	Kind           string     `gorm:"size:50;index" json:"kind"`
	Recipient      string     `gorm:"size:255;not null" json:"recipient"`
	ReplyTo        string     `gorm:"size:255" json:"replyTo,omitempty"`
	Subject        string     `gorm:"size:500" json:"subject"`
	Body           string     `gorm:"type:text" json:"body"`
	AttachmentName string     `gorm:"size:300" json:"attachmentName,omitempty"`
	AttachmentPath string     `gorm:"size:500" json:"attachmentPath,omitempty"`
	Status         string     `gorm:"size:20;not null;index:idx_outbox_due" json:"status"`
	Attempts       int        `gorm:"default:0" json:"attempts"`
	NextAttemptAt  time.Time  `gorm:"index:idx_outbox_due" json:"nextAttemptAt"`
	LastError      string     `gorm:"type:text" json:"lastError,omitempty"`
	SentAt         *time.Time `json:"sentAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func (NotificationOutbox) TableName() string { return "notification_outbox" }

func (n *NotificationOutbox) BeforeCreate(*gorm.DB) error {
	assignID(&n.ID)
	if n.Status == "" {
		n.Status = OutboxPending
	}
	return nil
}
