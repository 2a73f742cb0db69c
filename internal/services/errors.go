package services

import (
	"errors"

	"github.com/huangang/venturelink/pkg/response"
	"gorm.io/gorm"
)

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// first loads the first row matching query into dest. A missing row becomes
// a NotFound AppError carrying msg.
func first(db *gorm.DB, dest interface{}, msg string, query interface{}, args ...interface{}) error {
	if err := db.Where(query, args...).First(dest).Error; err != nil {
		if isRecordNotFound(err) {
			return response.NewNotFound(msg)
		}
		return err
	}
	return nil
}
