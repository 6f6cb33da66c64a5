package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang-market-signal/internal/entity"
	"golang-market-signal/internal/pipeline/repository"
	"golang-market-signal/pkg/common"
	"golang-market-signal/pkg/logger"
	"golang-market-signal/pkg/redis"
	"golang-market-signal/pkg/telegram"
	"golang-market-signal/pkg/utils"
)

// ErrRunInProgress is returned when another process runs the same job.
var ErrRunInProgress = errors.New("run already in progress")

// RunOutput is what a job strategy reports back.
type RunOutput struct {
	Symbols []string
	Output  string
}

// JobStrategy executes one kind of batch job.
type JobStrategy interface {
	Execute(ctx context.Context) (RunOutput, error)
	GetType() entity.JobType
}

// RunLocker guards a job against concurrent runs.
type RunLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}

type redisRunLocker struct {
	client *redis.Client
}

// NewRedisRunLocker creates a RunLocker on top of a Redis client.
func NewRedisRunLocker(client *redis.Client) RunLocker {
	return &redisRunLocker{client: client}
}

func (l *redisRunLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	lock, err := l.client.AcquireLock(ctx, key, ttl)
	if err != nil {
		if errors.Is(err, redis.ErrLockHeld) {
			return nil, ErrRunInProgress
		}
		return nil, err
	}
	return lock.Release, nil
}

// RunnerService runs job strategies and records their history.
type RunnerService interface {
	Run(ctx context.Context, jobType entity.JobType) error
}

type runnerService struct {
	strategies  map[entity.JobType]JobStrategy
	historyRepo repository.RunHistoryRepository
	locker      RunLocker
	lockTTL     time.Duration
	notifier    telegram.Notifier
	logger      *logger.Logger
}

// NewRunnerService creates a RunnerService. locker may be nil when no Redis is
// configured.
func NewRunnerService(
	historyRepo repository.RunHistoryRepository,
	locker RunLocker,
	lockTTL time.Duration,
	notifier telegram.Notifier,
	log *logger.Logger,
	strategies []JobStrategy,
) RunnerService {
	strategyMap := make(map[entity.JobType]JobStrategy)
	for _, s := range strategies {
		strategyMap[s.GetType()] = s
	}
	return &runnerService{
		strategies:  strategyMap,
		historyRepo: historyRepo,
		locker:      locker,
		lockTTL:     lockTTL,
		notifier:    notifier,
		logger:      log,
	}
}

func (s *runnerService) Run(ctx context.Context, jobType entity.JobType) error {
	strategy, ok := s.strategies[jobType]
	if !ok {
		return fmt.Errorf("no strategy found for job type: %s", jobType)
	}

	history := &entity.RunHistory{
		JobType:   jobType,
		Status:    entity.RunStatusRunning,
		StartedAt: time.Now(),
	}

	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, common.RedisLockKeyPrefix+string(jobType), s.lockTTL)
		if err != nil {
			if errors.Is(err, ErrRunInProgress) {
				s.logger.WarnContext(ctx, "Job is already running, skipping", logger.StringField("job_type", string(jobType)))
				history.Status = entity.RunStatusSkipped
				history.CompletedAt = sql.NullTime{Time: time.Now(), Valid: true}
				s.saveHistory(ctx, history, true)
				return err
			}
			return fmt.Errorf("failed to acquire run lock: %w", err)
		}
		defer func() {
			if err := release(context.Background()); err != nil {
				s.logger.Warn("Failed to release run lock", logger.StringField("job_type", string(jobType)), logger.ErrorField(err))
			}
		}()
	}

	s.saveHistory(ctx, history, true)
	s.logger.InfoContext(ctx, "Job started", logger.StringField("job_type", string(jobType)))

	var output RunOutput
	runErr := utils.SafeRun(func() error {
		var err error
		output, err = strategy.Execute(ctx)
		return err
	})

	history.Symbols = output.Symbols
	history.Output = sql.NullString{String: output.Output, Valid: output.Output != ""}
	history.CompletedAt = sql.NullTime{Time: time.Now(), Valid: true}
	if runErr != nil {
		s.logger.ErrorContext(ctx, "Job execution failed", logger.StringField("job_type", string(jobType)), logger.ErrorField(runErr))
		history.Status = entity.RunStatusFailed
		history.ErrorMessage = sql.NullString{String: runErr.Error(), Valid: true}
		if err := s.notifier.SendMessage(telegram.FormatErrorAlertMessage(time.Now(), string(jobType), runErr.Error())); err != nil {
			s.logger.WarnContext(ctx, "Failed to send error alert", logger.ErrorField(err))
		}
	} else {
		history.Status = entity.RunStatusCompleted
	}
	s.saveHistory(ctx, history, false)

	s.logger.InfoContext(ctx, "Job execution completed",
		logger.StringField("job_type", string(jobType)),
		logger.StringField("status", string(history.Status)),
		logger.StringField("duration", time.Since(history.StartedAt).String()),
	)
	return runErr
}

func (s *runnerService) saveHistory(ctx context.Context, history *entity.RunHistory, create bool) {
	var err error
	if create {
		err = s.historyRepo.Create(ctx, history)
	} else if history.ID != 0 {
		err = s.historyRepo.Update(ctx, history)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to save run history", logger.StringField("job_type", string(history.JobType)), logger.ErrorField(err))
	}
}
