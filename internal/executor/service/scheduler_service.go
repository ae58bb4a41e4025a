package service

import (
	"context"
	"fmt"
	"time"

	"yt-stock-insight/internal/entity"
	"yt-stock-insight/internal/executor/config"
	"yt-stock-insight/pkg/logger"

	"github.com/robfig/cron/v3"
)

// SchedulerService runs configured jobs on their cron schedules.
type SchedulerService interface {
	Start(ctx context.Context)
	ProcessJobs(ctx context.Context, now time.Time)
}

type scheduledJob struct {
	job           *entity.Job
	schedule      cron.Schedule
	nextExecution time.Time
}

type schedulerService struct {
	executor        ExecutorService
	logger          *logger.Logger
	pollingInterval time.Duration
	jobs            []*scheduledJob
}

// NewSchedulerService parses every job schedule up front so a bad expression
// fails at startup.
func NewSchedulerService(jobs []config.Job, executor ExecutorService, log *logger.Logger, pollingInterval time.Duration, now time.Time) (SchedulerService, error) {
	if pollingInterval <= 0 {
		pollingInterval = 30 * time.Second
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

	s := &schedulerService{
		executor:        executor,
		logger:          log,
		pollingInterval: pollingInterval,
	}
	for _, j := range jobs {
		schedule, err := parser.Parse(j.Schedule)
		if err != nil {
			return nil, fmt.Errorf("failed to parse cron expression of job %s: %w", j.Name, err)
		}
		job, err := JobFromConfig(j)
		if err != nil {
			return nil, err
		}
		s.jobs = append(s.jobs, &scheduledJob{
			job:           job,
			schedule:      schedule,
			nextExecution: schedule.Next(now),
		})
		log.Info("Job scheduled",
			logger.StringField("job", j.Name),
			logger.StringField("schedule", j.Schedule),
			logger.Field("next_execution", schedule.Next(now)),
		)
	}
	return s, nil
}

// Start begins the periodic job processing loop.
func (s *schedulerService) Start(ctx context.Context) {
	ticker := time.NewTicker(s.pollingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler service stopping")
			return
		case now := <-ticker.C:
			s.ProcessJobs(ctx, now)
		}
	}
}

// ProcessJobs runs every job that is due at now and advances its schedule.
// A run that overlaps several ticks is not replayed.
func (s *schedulerService) ProcessJobs(ctx context.Context, now time.Time) {
	for _, sj := range s.jobs {
		if now.Before(sj.nextExecution) {
			continue
		}
		if _, err := s.executor.Execute(ctx, sj.job); err != nil {
			s.logger.Error("Scheduled job failed", logger.StringField("job", sj.job.Name), logger.ErrorField(err))
		}
		from := time.Now()
		if from.Before(now) {
			from = now
		}
		sj.nextExecution = sj.schedule.Next(from)
		if ctx.Err() != nil {
			return
		}
	}
}
