package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SchedulerLock is a lease row that keeps a periodic job on one instance.
type SchedulerLock struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	LockName  string    `gorm:"uniqueIndex:idx_lock_name_key;size:100;not null" json:"lock_name"`
	LockKey   string    `gorm:"uniqueIndex:idx_lock_name_key;size:100;not null" json:"lock_key"`
	LockedBy  string    `gorm:"size:100" json:"locked_by"`
	LockedAt  time.Time `json:"locked_at"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
}

func (SchedulerLock) TableName() string { return "scheduler_locks" }

// TryAcquireLock takes (or steals an expired) lease for name/key. It returns
// false when another owner holds a live lease.
func TryAcquireLock(db *gorm.DB, name, key, owner string, ttl time.Duration) (bool, error) {
	now := time.Now()
	lock := SchedulerLock{
		LockName:  name,
		LockKey:   key,
		LockedBy:  owner,
		LockedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&lock)
	if res.Error != nil && !errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return false, res.Error
	}
	if res.Error == nil && res.RowsAffected == 1 {
		return true, nil
	}

	res = db.Model(&SchedulerLock{}).
		Where("lock_name = ? AND lock_key = ? AND (expires_at < ? OR locked_by = ?)", name, key, now, owner).
		Updates(map[string]interface{}{
			"locked_by":  owner,
			"locked_at":  now,
			"expires_at": now.Add(ttl),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
