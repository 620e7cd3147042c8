package service

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
)

// Jobs 定时任务：到期提醒 + 成员数对账
type Jobs struct {
	scheduler *gocron.Scheduler
}

func NewJobs(ctx context.Context, reminderCron string, reminder *ReminderService, reconcileEvery time.Duration, reconciler *MemberCountReconciler) (*Jobs, error) {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	if reminder != nil && reminderCron != "" {
		if _, err := s.Cron(reminderCron).Do(func() { reminder.RunOnce(ctx) }); err != nil {
			return nil, err
		}
	}
	if reconciler != nil && reconcileEvery > 0 {
		if _, err := s.Every(reconcileEvery).Do(func() { reconciler.ReconcileOnce(ctx) }); err != nil {
			return nil, err
		}
	}
	return &Jobs{scheduler: s}, nil
}

func (j *Jobs) Start() { j.scheduler.StartAsync() }

func (j *Jobs) Stop() { j.scheduler.Stop() }
