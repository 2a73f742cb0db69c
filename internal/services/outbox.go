package services

import (
	"context"
	"fmt"
	"time"

	"github.com/huangang/venturelink/internal/config"
	"github.com/huangang/venturelink/internal/models"
	"github.com/huangang/venturelink/pkg/logger"
	"gorm.io/gorm"
)

const (
	maxBackoff       = time.Hour
	deliveryLease    = 5 * time.Minute
	outboxSweepBatch = 50
)

// OutboxDispatcher delivers outbox rows through a Mailer.
type OutboxDispatcher struct {
	db          *gorm.DB
	mailer      Mailer
	store       BlobStore
	maxAttempts int
	baseBackoff time.Duration
	now         func() time.Time
}

func NewOutboxDispatcher(db *gorm.DB, mailer Mailer, store BlobStore, cfg *config.NotificationConfig) *OutboxDispatcher {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	base := time.Duration(cfg.BaseBackoffSeconds) * time.Second
	if base <= 0 {
		base = 30 * time.Second
	}
	return &OutboxDispatcher{
		db:          db,
		mailer:      mailer,
		store:       store,
		maxAttempts: maxAttempts,
		baseBackoff: base,
		now:         time.Now,
	}
}

// Backoff returns the delay before the next try after attempts failures:
// base * 2^(attempts-1), capped at one hour.
func (d *OutboxDispatcher) Backoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	delay := d.baseBackoff
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	if delay > maxBackoff {
		return maxBackoff
	}
	return delay
}

// Process is the task-queue entry point.
func (d *OutboxDispatcher) Process(ctx context.Context, task *NotificationTask) error {
	_, err := d.Deliver(ctx, task.OutboxID)
	return err
}

// claim leases a due pending row by pushing next_attempt_at forward. Only one
// caller can win the compare-and-swap for a given due time.
func (d *OutboxDispatcher) claim(ctx context.Context, id string) (bool, error) {
	now := d.now()
	res := d.db.WithContext(ctx).Model(&models.NotificationOutbox{}).
		Where("id = ? AND status = ? AND next_attempt_at <= ?", id, models.OutboxPending, now).
		Updates(map[string]interface{}{
			"next_attempt_at": now.Add(deliveryLease),
			"attempts":        gorm.Expr("attempts + 1"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Deliver sends one row if it is due. It reports whether a send was attempted.
// Send failures are recorded on the row, not returned.
func (d *OutboxDispatcher) Deliver(ctx context.Context, id string) (bool, error) {
	claimed, err := d.claim(ctx, id)
	if err != nil || !claimed {
		return false, err
	}

	var row models.NotificationOutbox
	if err := d.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return true, err
	}

	sendErr := d.send(ctx, &row)
	now := d.now()

	updates := map[string]interface{}{}
	switch {
	case sendErr == nil:
		updates["status"] = models.OutboxSent
		updates["sent_at"] = now
		updates["last_error"] = ""
	case row.Attempts >= d.maxAttempts:
		updates["status"] = models.OutboxFailed
		updates["last_error"] = sendErr.Error()
		logger.Error().Err(sendErr).Str("outbox_id", row.ID).Int("attempts", row.Attempts).
			Msg("[Outbox] giving up on notification")
	default:
		updates["next_attempt_at"] = now.Add(d.Backoff(row.Attempts))
		updates["last_error"] = sendErr.Error()
		logger.Warn().Err(sendErr).Str("outbox_id", row.ID).Int("attempts", row.Attempts).
			Msg("[Outbox] delivery failed, will retry")
	}

	return true, d.db.WithContext(ctx).Model(&models.NotificationOutbox{}).
		Where("id = ?", row.ID).Updates(updates).Error
}

func (d *OutboxDispatcher) send(ctx context.Context, row *models.NotificationOutbox) error {
	msg := &MailMessage{
		To:       row.Recipient,
		ReplyTo:  row.ReplyTo,
		Subject:  row.Subject,
		HTMLBody: row.Body,
	}
	if row.AttachmentPath != "" {
		if d.store == nil {
			return fmt.Errorf("attachment %s: no blob store configured", row.AttachmentPath)
		}
		data, err := d.store.Open(ctx, row.AttachmentPath)
		if err != nil {
			return fmt.Errorf("load attachment %s: %w", row.AttachmentPath, err)
		}
		msg.Attachments = []MailAttachment{{
			Name: row.AttachmentName,
			Data: data,
		}}
	}
	return d.mailer.Send(ctx, msg)
}

// DueIDs lists pending rows whose next attempt is due.
func (d *OutboxDispatcher) DueIDs(ctx context.Context, limit int) ([]string, error) {
	var ids []string
	err := d.db.WithContext(ctx).Model(&models.NotificationOutbox{}).
		Where("status = ? AND next_attempt_at <= ?", models.OutboxPending, d.now()).
		Order("next_attempt_at ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}
