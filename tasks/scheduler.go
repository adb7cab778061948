package tasks

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"report-approval-api/config"
)

// Scheduler enqueues the periodic jobs (retention cleanup daily, analytics
// every N hours) through the broker so the worker pool executes them.
type Scheduler struct {
	cron   *cron.Cron
	broker Broker
}

func NewScheduler(broker Broker) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		broker: broker,
	}
}

func (s *Scheduler) Start() error {
	settings := config.Settings()

	_, err := s.cron.AddFunc("@daily", func() {
		days := config.Settings().CleanupRetentionDays
		if id, err := s.broker.Enqueue(context.Background(), JobCleanupOldData,
			map[string]any{"days": days}); err != nil {
			log.Printf("failed to enqueue cleanup job: %v", err)
		} else {
			log.Printf("enqueued cleanup job %s (retention %d days)", id, days)
		}
	})
	if err != nil {
		return err
	}

	_, err = s.cron.AddFunc(fmt.Sprintf("@every %dh", settings.AnalyticsIntervalHours), func() {
		if id, err := s.broker.Enqueue(context.Background(), JobGenerateAnalytics, nil); err != nil {
			log.Printf("failed to enqueue analytics job: %v", err)
		} else {
			log.Printf("enqueued analytics job %s", id)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}
