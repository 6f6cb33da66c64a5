package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang-market-signal/internal/entity"
	"golang-market-signal/internal/pipeline/config"
	"golang-market-signal/internal/pipeline/repository"
	"golang-market-signal/internal/pipeline/service"
	"golang-market-signal/internal/pipeline/strategy"
	"golang-market-signal/pkg/line"
	"golang-market-signal/pkg/logger"
	"golang-market-signal/pkg/postgres"
	"golang-market-signal/pkg/ratelimit"
	"golang-market-signal/pkg/redis"
	"golang-market-signal/pkg/telegram"
	"golang-market-signal/pkg/tracing"
	"golang-market-signal/pkg/utils"
)

// app holds the shared infrastructure every command needs.
type app struct {
	cfg      *config.Config
	logger   *logger.Logger
	db       *postgres.DB
	redis    *redis.Client
	notifier telegram.Notifier
	closers  []func()
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	time.Local = utils.GetLocation(cfg.App.TimeZone)

	a := &app{cfg: cfg, logger: appLogger}
	a.closers = append(a.closers, func() { _ = appLogger.Sync() })

	if err := tracing.Init(cfg.Tracing.Enabled, cfg.App.Name, cfg.App.Version); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.closers = append(a.closers, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tracing.Shutdown(ctx)
	})

	db, err := postgres.NewDB(postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	a.db = db
	if sqlDB, err := db.DB.DB(); err == nil {
		a.closers = append(a.closers, func() { _ = sqlDB.Close() })
	}

	if cfg.Redis.Host != "" {
		redisClient, err := redis.NewClient(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		a.redis = redisClient
		a.closers = append(a.closers, func() { _ = redisClient.Close() })
	} else {
		appLogger.Warn("Redis not configured, runs are not guarded against overlap across processes")
	}

	notifier, err := newNotifier(cfg.Notifier)
	if err != nil {
		if !errors.Is(err, errNotifierNotConfigured) {
			a.Close()
			return nil, err
		}
		appLogger.Warn("Notifier disabled", logger.ErrorField(err))
		notifier = telegram.NewNopNotifier()
	}
	a.notifier = notifier

	appLogger.Info("Signal bot initialized",
		logger.StringField("name", cfg.App.Name),
		logger.StringField("env", cfg.App.Env),
		logger.StringField("notifier", cfg.Notifier.Channel),
	)
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

var errNotifierNotConfigured = errors.New("notifier credentials not configured")

func newNotifier(cfg config.Notifier) (telegram.Notifier, error) {
	switch cfg.Channel {
	case "telegram", "":
		if cfg.Telegram.BotToken == "" {
			return nil, fmt.Errorf("%w: notifier.telegram.bot_token is empty", errNotifierNotConfigured)
		}
		notifier, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize telegram notifier: %w", err)
		}
		return notifier, nil
	case "line":
		if cfg.Line.ChannelAccessToken == "" || cfg.Line.To == "" {
			return nil, fmt.Errorf("%w: notifier.line.channel_access_token or notifier.line.to is empty", errNotifierNotConfigured)
		}
		return line.NewClient(cfg.Line.BaseURL, cfg.Line.ChannelAccessToken, cfg.Line.To), nil
	case "none":
		return telegram.NewNopNotifier(), nil
	default:
		return nil, fmt.Errorf("unknown notifier channel: %s", cfg.Channel)
	}
}

// newRunner builds the strategies for the requested job types and a runner
// around them. Model backends are only built when an ingestion job needs them.
func (a *app) newRunner(ctx context.Context, jobTypes ...entity.JobType) (service.RunnerService, error) {
	cfg := a.cfg
	log := a.logger

	predictionRepo := repository.NewPredictionRepository(a.db.DB)
	historyRepo := repository.NewRunHistoryRepository(a.db.DB)
	feedback := service.NewFeedbackStore(predictionRepo, log)
	prices := repository.NewYahooFinanceRepository(cfg, log)
	thresholds := strategy.Thresholds{
		ImpactThreshold: cfg.Alert.ImpactThreshold,
		RelevanceTopK:   cfg.Alert.RelevanceTopK,
	}

	var engine service.PredictionEngine
	buildEngine := func() (service.PredictionEngine, error) {
		if engine != nil {
			return engine, nil
		}
		backends, err := repository.NewModelBackends(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		engine = service.NewPredictionEngine(
			service.PredictionEngineConfig{
				MistakeLimit: cfg.Alert.MistakeLimit,
				Language:     cfg.Alert.SummaryLanguage,
				Timeout:      cfg.AI.Timeout,
			},
			backends,
			feedback,
			service.NewMarketContextProvider(prices, cfg.MarketContext.Instruments, log),
			service.NewTechnicalSignalProvider(prices, cfg.YahooFinance.HistoryDays, log),
			log,
		)
		return engine, nil
	}

	var strategies []service.JobStrategy
	for _, jobType := range jobTypes {
		switch jobType {
		case entity.JobTypeNewsIngestion:
			e, err := buildEngine()
			if err != nil {
				return nil, err
			}
			news, err := repository.NewNewsRepository(cfg, log)
			if err != nil {
				return nil, err
			}
			watchlist, err := repository.NewWatchlistRepository(cfg.Watchlist, repository.NewStocksRepository(a.db.DB))
			if err != nil {
				return nil, err
			}
			strategies = append(strategies, strategy.NewNewsIngestionStrategy(
				thresholds, watchlist, news, prices, e, feedback, a.notifier,
				ratelimit.NewPacer(cfg.Alert.NewsDelay), log,
			))
		case entity.JobTypeSocialIngestion:
			if cfg.Twitter.BearerToken == "" {
				return nil, fmt.Errorf("twitter.bearer_token is required for social ingestion")
			}
			if len(cfg.Social.Accounts) == 0 {
				return nil, fmt.Errorf("social.accounts is empty")
			}
			e, err := buildEngine()
			if err != nil {
				return nil, err
			}
			strategies = append(strategies, strategy.NewSocialIngestionStrategy(
				thresholds, cfg.Social.Accounts, repository.NewTwitterRepository(cfg, log), prices, e, feedback, a.notifier,
				ratelimit.NewPacer(cfg.Alert.SocialDelay), log,
			))
		case entity.JobTypeVerification:
			strategies = append(strategies, strategy.NewVerificationStrategy(
				service.NewVerificationEngine(feedback, prices, a.notifier, ratelimit.NewPacer(cfg.Alert.VerifyDelay), log),
			))
		default:
			return nil, fmt.Errorf("unknown job type: %s", jobType)
		}
	}

	var locker service.RunLocker
	if a.redis != nil {
		locker = service.NewRedisRunLocker(a.redis)
	}
	return service.NewRunnerService(historyRepo, locker, cfg.Scheduler.LockTTL, a.notifier, log, strategies), nil
}
