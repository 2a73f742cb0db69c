package services

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/huangang/venturelink/internal/models"
	"github.com/huangang/venturelink/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const (
	sweepLockName = "notification_outbox"
	sweepLockKey  = "sweep"
	sweepLockTTL  = 2 * time.Minute
)

// OutboxSweeper periodically re-enqueues pending notifications whose retry
// time has come. A scheduler lock keeps the sweep on one instance.
type OutboxSweeper struct {
	db         *gorm.DB
	queue      TaskQueue
	dispatcher *OutboxDispatcher
	spec       string
	owner      string
	cron       *cron.Cron
}

func NewOutboxSweeper(db *gorm.DB, queue TaskQueue, dispatcher *OutboxDispatcher, spec string) *OutboxSweeper {
	if spec == "" {
		spec = "@every 1m"
	}
	host, _ := os.Hostname()
	return &OutboxSweeper{
		db:         db,
		queue:      queue,
		dispatcher: dispatcher,
		spec:       spec,
		owner:      host + "-" + uuid.NewString()[:8],
	}
}

func (s *OutboxSweeper) Start() error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.spec, func() {
		if _, err := s.RunOnce(context.Background()); err != nil {
			logger.Warnf("[Outbox] Sweep failed: %v", err)
		}
	}); err != nil {
		return err
	}
	s.cron.Start()
	logger.Infof("[Outbox] Sweeper started (spec: %s, owner: %s)", s.spec, s.owner)
	return nil
}

func (s *OutboxSweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// RunOnce enqueues due rows and returns how many were handed off. It does
// nothing when another instance holds the sweep lease.
func (s *OutboxSweeper) RunOnce(ctx context.Context) (int, error) {
	ok, err := models.TryAcquireLock(s.db.WithContext(ctx), sweepLockName, sweepLockKey, s.owner, sweepLockTTL)
	if err != nil || !ok {
		return 0, err
	}

	ids, err := s.dispatcher.DueIDs(ctx, outboxSweepBatch)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, id := range ids {
		if err := s.queue.Enqueue(&NotificationTask{OutboxID: id}); err != nil {
			logger.Warn().Err(err).Str("outbox_id", id).Msg("[Outbox] re-enqueue failed")
			continue
		}
		n++
	}
	if n > 0 {
		logger.Infof("[Outbox] Re-enqueued %d due notification(s)", n)
	}
	return n, nil
}
