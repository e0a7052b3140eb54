// Package scheduler drives the daemon's recurring jobs: the morning
// prediction run and the day-after results settlement.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/dinger/internal/config"
	"github.com/yourusername/dinger/internal/service"
)

// Scheduler manages the cron jobs. All expressions run in UTC.
type Scheduler struct {
	cron      *cron.Cron
	pipeline  *service.Pipeline
	results   *service.ResultsUpdater
	logger    *logrus.Logger
	mu        sync.RWMutex
	isRunning bool
	jobIDs    []cron.EntryID
}

// NewScheduler creates a new scheduler.
func NewScheduler(pipeline *service.Pipeline, results *service.ResultsUpdater, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		pipeline: pipeline,
		results:  results,
		logger:   logger,
		jobIDs:   make([]cron.EntryID, 0),
	}
}

// ScheduleJobs registers the prediction and settlement jobs from config.
func (s *Scheduler) ScheduleJobs(cfg config.ScheduleConfig) error {
	if err := s.schedulePredictionRun(cfg.PredictionCron); err != nil {
		return err
	}
	return s.scheduleResultsSettlement(cfg.ResultsCron)
}

// schedulePredictionRun scores today's slate on the given cron expression.
func (s *Scheduler) schedulePredictionRun(expression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		date := time.Now().UTC().Truncate(24 * time.Hour)
		s.logger.WithField("date", date.Format("2006-01-02")).Info("Starting scheduled prediction run")

		summary, err := s.pipeline.RunDaily(ctx, date)
		if err != nil {
			s.logger.WithError(err).Error("Scheduled prediction run failed")
			return
		}
		s.logger.WithFields(logrus.Fields{
			"scored":   summary.Scored,
			"excluded": summary.Excluded,
			"elapsed":  summary.Elapsed.String(),
		}).Info("Scheduled prediction run completed")
	}

	entryID, err := s.cron.AddFunc(expression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add prediction job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", expression).Info("Prediction run scheduled")
	return nil
}

// scheduleResultsSettlement settles yesterday's predictions on the given
// cron expression.
func (s *Scheduler) scheduleResultsSettlement(expression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
		defer cancel()

		yesterday := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -1)
		settled, err := s.results.SettleDate(ctx, yesterday)
		if err != nil {
			s.logger.WithError(err).Error("Scheduled results settlement failed")
			return
		}
		s.logger.WithFields(logrus.Fields{
			"date":    yesterday.Format("2006-01-02"),
			"settled": settled,
		}).Info("Scheduled results settlement completed")
	}

	entryID, err := s.cron.AddFunc(expression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add settlement job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", expression).Info("Results settlement scheduled")
	return nil
}

// Start starts the scheduler.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")
}

// IsRunning returns whether the scheduler is currently running.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the time of the next scheduled job run.
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return time.Time{}
	}

	next := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() && (next.IsZero() || entry.Next.Before(next)) {
			next = entry.Next
		}
	}
	return next
}
