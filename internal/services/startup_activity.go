package services

import (
	"context"
	"time"

	"github.com/huangang/venturelink/internal/models"
	"github.com/huangang/venturelink/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StartupActivityService keeps one "latest activity" line per startup.
type StartupActivityService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewStartupActivityService(db *gorm.DB) *StartupActivityService {
	return &StartupActivityService{db: db, now: time.Now}
}

type StartupActivityDTO struct {
	StartupID   string    `json:"startupId"`
	StartupName string    `json:"startupName"`
	Message     string    `json:"message"`
	UpdatedAt   time.Time `json:"updatedAt"`
	TimeAgo     string    `json:"timeAgo"`
}

// Upsert replaces the startup's activity message.
func (s *StartupActivityService) Upsert(ctx context.Context, startupID, startupName, message string) error {
	activity := models.StartupActivity{
		StartupID:   startupID,
		StartupName: startupName,
		Message:     message,
		UpdatedAt:   s.now(),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "startup_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"startup_name", "message", "updated_at"}),
	}).Create(&activity).Error
}

// GetByStartupID returns nil when the startup has no activity yet.
func (s *StartupActivityService) GetByStartupID(ctx context.Context, startupID string) (*StartupActivityDTO, error) {
	var a models.StartupActivity
	if err := s.db.WithContext(ctx).Where("startup_id = ?", startupID).First(&a).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	dto := s.toDTO(&a, a.StartupName)
	return &dto, nil
}

// ListForStartups returns the activity of each listed startup that has one.
// names overrides the stored startup name when present.
func (s *StartupActivityService) ListForStartups(ctx context.Context, startupIDs []string, names map[string]string) ([]StartupActivityDTO, error) {
	out := []StartupActivityDTO{}
	if len(startupIDs) == 0 {
		return out, nil
	}

	var rows []models.StartupActivity
	if err := s.db.WithContext(ctx).Where("startup_id IN ?", uniqueStrings(startupIDs)).
		Order("updated_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		name, ok := names[rows[i].StartupID]
		if !ok {
			name = "Unknown Startup"
		}
		out = append(out, s.toDTO(&rows[i], name))
	}
	return out, nil
}

func (s *StartupActivityService) toDTO(a *models.StartupActivity, name string) StartupActivityDTO {
	return StartupActivityDTO{
		StartupID:   a.StartupID,
		StartupName: name,
		Message:     a.Message,
		UpdatedAt:   a.UpdatedAt,
		TimeAgo:     utils.TimeAgo(a.UpdatedAt, s.now()),
	}
}
