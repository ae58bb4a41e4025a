package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"yt-stock-insight/internal/entity"
	"yt-stock-insight/internal/executor/config"
	"yt-stock-insight/internal/executor/strategy"
	"yt-stock-insight/pkg/logger"
)

// ExecutorService runs jobs through their registered strategy, one at a time.
type ExecutorService interface {
	Execute(ctx context.Context, job *entity.Job) (string, error)
}

// NewExecutorService creates a new ExecutorService.
func NewExecutorService(log *logger.Logger, strategies []strategy.JobExecutionStrategy) ExecutorService {
	strategyMap := make(map[entity.JobType]strategy.JobExecutionStrategy)
	for _, s := range strategies {
		strategyMap[s.GetType()] = s
	}
	return &executorService{
		logger:             log,
		executorStrategies: strategyMap,
	}
}

type executorService struct {
	mu                 sync.Mutex
	logger             *logger.Logger
	executorStrategies map[entity.JobType]strategy.JobExecutionStrategy
}

// Execute blocks until any job already running has finished.
func (s *executorService) Execute(ctx context.Context, job *entity.Job) (string, error) {
	strategy, ok := s.executorStrategies[job.Type]
	if !ok {
		err := fmt.Errorf("no executor strategy found for job type: %s", job.Type)
		s.logger.Error("Job execution failed", logger.ErrorField(err), logger.StringField("job", job.Name))
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	start := time.Now()
	s.logger.Info("Executing job", logger.StringField("job", job.Name), logger.StringField("type", string(job.Type)))
	output, err := strategy.Execute(ctx, job)
	if err != nil {
		s.logger.Error("Job execution failed", logger.ErrorField(err), logger.StringField("job", job.Name))
		return output, err
	}
	s.logger.Info("Job executed successfully",
		logger.StringField("job", job.Name),
		logger.DurationField("duration", time.Since(start)),
	)
	return output, nil
}

// JobFromConfig converts a configured job into an executable one.
func JobFromConfig(cfg config.Job) (*entity.Job, error) {
	payload := []byte("{}")
	if len(cfg.Payload) > 0 {
		b, err := json.Marshal(cfg.Payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload of job %s: %w", cfg.Name, err)
		}
		payload = b
	}
	return &entity.Job{
		Name:    cfg.Name,
		Type:    entity.JobType(cfg.Type),
		Payload: payload,
		Timeout: cfg.Timeout,
	}, nil
}
