package services

import (
	"github.com/huangang/venturelink/internal/models"
	"gorm.io/gorm"
)

// startupForFounder resolves the single startup owned by a founder user.
func startupForFounder(db *gorm.DB, founderUserID string) (*models.Startup, error) {
	var startup models.Startup
	if err := first(db, &startup, "Startup not found for this founder.", "founder_user_id = ?", founderUserID); err != nil {
		return nil, err
	}
	return &startup, nil
}

func investorForUser(db *gorm.DB, userID string) (*models.Investor, error) {
	var investor models.Investor
	if err := first(db, &investor, "Investor profile not found.", "user_id = ?", userID); err != nil {
		return nil, err
	}
	return &investor, nil
}

// startupsByID loads startups keyed by id. Missing ids are simply absent.
func startupsByID(db *gorm.DB, ids []string) (map[string]*models.Startup, error) {
	out := make(map[string]*models.Startup, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var startups []models.Startup
	if err := db.Where("id IN ?", uniqueStrings(ids)).Find(&startups).Error; err != nil {
		return nil, err
	}
	for i := range startups {
		out[startups[i].ID] = &startups[i]
	}
	return out, nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok || s == "" {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
