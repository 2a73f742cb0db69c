package models

import (
	"time"

	"gorm.io/gorm"
)

// FileRef points at a blob in the configured store.
type FileRef struct {
	FileName    string `json:"fileName"`
	FilePath    string `json:"filePath"`
	ContentType string `json:"contentType,omitempty"`
}

// TimelyReport is a founder's periodic update for investors.
//
// DraftKey equals StartupID while the report is a draft and is NULL otherwise;
// its unique index enforces a single draft per startup.
type TimelyReport struct {
	ID                     string    `gorm:"primaryKey;size:36" json:"id"`
	StartupID              string    `gorm:"size:36;not null;index:idx_report_startup_created" json:"startupId"`
	FounderUserID          string    `gorm:"size:36;not null;index" json:"founderUserId"`
	Title                  string    `gorm:"size:300;not null" json:"title"`
	ReportingPeriod        string    `gorm:"size:100" json:"reportingPeriod"`
	KeyMetrics             string    `gorm:"type:text" json:"keyMetrics"`
	MonthlyRevenue         float64   `json:"monthlyRevenue"`
	MonthlyBurn            float64   `json:"monthlyBurn"`
	CashRunway             float64   `json:"cashRunway"`
	TeamSize               int       `json:"teamSize"`
	KeyAchievements        string    `gorm:"type:text" json:"keyAchievements"`
	ChallengesAndLearnings string    `gorm:"type:text" json:"challengesAndLearnings"`
	OtherKeyMetrics        string    `gorm:"type:text" json:"otherKeyMetrics"`
	AsksFromInvestors      string    `gorm:"type:text" json:"asksFromInvestors"`
	DraftReport            bool      `gorm:"default:false" json:"draftReport"`
	DraftKey               *string   `gorm:"size:36;uniqueIndex" json:"-"`
	InvestorIDs            []string  `gorm:"serializer:json;type:text" json:"investorUserIds"`
	Attachments            []FileRef `gorm:"serializer:json;type:text" json:"attachments"`
	ReportPDF              *FileRef  `gorm:"serializer:json;type:text" json:"reportPdf,omitempty"`
	CreatedAt              time.Time `gorm:"index:idx_report_startup_created" json:"createdAt"`
	UpdatedAt              time.Time `json:"updatedAt"`
}

func (TimelyReport) TableName() string { return "timely_reports" }

func (r *TimelyReport) BeforeCreate(*gorm.DB) error {
	assignID(&r.ID)
	r.syncDraftKey()
	return nil
}

func (r *TimelyReport) BeforeSave(*gorm.DB) error {
	r.syncDraftKey()
	return nil
}

func (r *TimelyReport) syncDraftKey() {
	if r.DraftReport && r.StartupID != "" {
		key := r.StartupID
		r.DraftKey = &key
		return
	}
	r.DraftKey = nil
}

type DocumentType string

const (
	DocumentFinancial DocumentType = "FINANCIAL"
	DocumentLegal     DocumentType = "LEGAL"
	DocumentPitch     DocumentType = "PITCH"
	DocumentOther     DocumentType = "OTHER"
)

func (t DocumentType) Valid() bool {
	switch t {
	case DocumentFinancial, DocumentLegal, DocumentPitch, DocumentOther:
		return true
	}
	return false
}

// StartupDocument is a file a founder shares with connected investors.
type StartupDocument struct {
	ID           string       `gorm:"primaryKey;size:36" json:"id"`
	StartupID    string       `gorm:"size:36;not null;index" json:"startupId"`
	DocumentType DocumentType `gorm:"size:30;not null;index" json:"documentType"`
	FileName     string       `gorm:"size:300" json:"fileName"`
	FilePath     string       `gorm:"size:500" json:"filePath"`
	ContentType  string       `gorm:"size:100" json:"contentType"`
	Size         int64        `json:"size"`
	CreatedAt    time.Time    `json:"createdAt"`
}

func (StartupDocument) TableName() string { return "startup_documents" }

func (d *StartupDocument) BeforeCreate(*gorm.DB) error {
	assignID(&d.ID)
	return nil
}
