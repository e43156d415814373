package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mrlokans/ipcboard/internal/tasks"
)

// TaskEnqueuer is implemented by tasks.Client.
type TaskEnqueuer interface {
	Enqueue(task backlite.Task) (string, error)
}

type MaintenanceConfig struct {
	Enabled            bool
	Schedule           string
	AuditRetentionDays int
	UploadRetention    time.Duration // 0 keeps uploads forever
}

// MaintenanceScheduler periodically queues the audit and upload cleanup tasks.
// The work itself runs on the task workers.
type MaintenanceScheduler struct {
	queue  TaskEnqueuer
	config MaintenanceConfig
	log    *zap.Logger

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

func NewMaintenanceScheduler(queue TaskEnqueuer, cfg MaintenanceConfig, log *zap.Logger) *MaintenanceScheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &MaintenanceScheduler{
		queue:  queue,
		config: cfg,
		log:    log.Named("maintenance"),
		cron:   cron.New(cron.WithParser(newParser())),
	}
}

// Start begins the scheduler if maintenance is enabled. It stops on its own
// once ctx is cancelled.
func (s *MaintenanceScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if !s.config.Enabled {
		s.log.Info("maintenance scheduler disabled")
		return nil
	}

	if err := ValidateSchedule(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.config.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.RunNow()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule maintenance job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := NextRunTime(s.config.Schedule, time.Now())
	s.log.Info("maintenance scheduler started",
		zap.String("schedule", s.config.Schedule),
		zap.String("description", DescribeSchedule(s.config.Schedule)),
		zap.Timep("next_run", nextRun))

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running job to finish and stops the scheduler.
func (s *MaintenanceScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.cron.Remove(s.entryID)
	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	s.log.Info("maintenance scheduler stopped")
}

func (s *MaintenanceScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when the job fires next, or nil when the scheduler is stopped.
func (s *MaintenanceScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// RunNow queues the cleanup tasks immediately and returns the queued task IDs.
// Upload cleanup is skipped while uploads are kept forever.
func (s *MaintenanceScheduler) RunNow() []string {
	var queued []string

	retentionDays := s.config.AuditRetentionDays
	if retentionDays <= 0 {
		retentionDays = tasks.DefaultAuditRetentionDays
	}
	queued = s.enqueue(queued, tasks.CleanupAuditEventsTask{RetentionDays: retentionDays})

	if s.config.UploadRetention > 0 {
		queued = s.enqueue(queued, tasks.CleanupUploadsTask{Retention: s.config.UploadRetention})
	}
	return queued
}

func (s *MaintenanceScheduler) enqueue(queued []string, task backlite.Task) []string {
	name := task.Config().Name
	id, err := s.queue.Enqueue(task)
	if err != nil {
		s.log.Error("failed to queue maintenance task", zap.String("task", name), zap.Error(err))
		return queued
	}
	s.log.Info("maintenance task queued", zap.String("task", name), zap.String("task_id", id))
	return append(queued, id)
}
