package services

import (
	"context"
	"time"

	"github.com/huangang/venturelink/internal/models"
	"github.com/huangang/venturelink/pkg/logger"
	"gorm.io/gorm"
)

type NotificationKind string

const (
	KindConnectionInvite   NotificationKind = "connection_invite"
	KindConnectionRequest  NotificationKind = "connection_request"
	KindConnectionStatus   NotificationKind = "connection_status"
	KindConnectionRejected NotificationKind = "connection_rejected"
	KindOTP                NotificationKind = "otp"
	KindPasswordReset      NotificationKind = "password_reset"
	KindTimelyReport       NotificationKind = "timely_report"
)

// Notification is an email intent. AttachmentPath, when set, names a blob
// in the BlobStore that is attached at delivery time.
type Notification struct {
	Kind           NotificationKind
	To             string
	ReplyTo        string
	Subject        string
	Body           string
	AttachmentName string
	AttachmentPath string
}

// Notifier accepts notifications on the request path. It never fails the
// caller: problems are logged and retried out of band.
type Notifier interface {
	Notify(ctx context.Context, n *Notification)
}

// OutboxNotifier persists each notification and hands it to the task queue.
type OutboxNotifier struct {
	db    *gorm.DB
	queue TaskQueue
}

func NewOutboxNotifier(db *gorm.DB, queue TaskQueue) *OutboxNotifier {
	return &OutboxNotifier{db: db, queue: queue}
}

func (n *OutboxNotifier) Notify(ctx context.Context, note *Notification) {
	if note == nil || note.To == "" {
		logger.Warnf("[Notification] Dropping notification without recipient (kind=%s)", noteKind(note))
		return
	}

	row := models.NotificationOutbox{
		Kind:           string(note.Kind),
		Recipient:      note.To,
		ReplyTo:        note.ReplyTo,
		Subject:        note.Subject,
		Body:           note.Body,
		AttachmentName: note.AttachmentName,
		AttachmentPath: note.AttachmentPath,
		Status:         models.OutboxPending,
		NextAttemptAt:  time.Now(),
	}
	if err := n.db.WithContext(ctx).Create(&row).Error; err != nil {
		logger.Error().Err(err).Str("kind", row.Kind).Str("to", row.Recipient).Msg("[Notification] failed to write outbox row")
		return
	}

	if err := n.queue.Enqueue(&NotificationTask{OutboxID: row.ID}); err != nil {
		// the row stays pending and the sweeper re-enqueues it
		logger.Warn().Err(err).Str("outbox_id", row.ID).Msg("[Notification] enqueue failed")
	}
}

func noteKind(n *Notification) NotificationKind {
	if n == nil {
		return ""
	}
	return n.Kind
}
