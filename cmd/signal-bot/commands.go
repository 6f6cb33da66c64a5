package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"golang-market-signal/internal/entity"
	"golang-market-signal/internal/pipeline/config"
	delivery "golang-market-signal/internal/pipeline/delivery/http"
	_ "golang-market-signal/internal/pipeline/docs"
	"golang-market-signal/internal/pipeline/repository"
	"golang-market-signal/internal/pipeline/service"
	"golang-market-signal/pkg/logger"
)

var ingestSource string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run one ingestion and prediction pass",
	RunE: func(cmd *cobra.Command, args []string) error {
		jobTypes, err := ingestJobTypes(ingestSource)
		if err != nil {
			return err
		}
		return runOnce(jobTypes...)
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Grade every pending prediction against the current price",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(entity.JobTypeVerification)
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run ingestion and verification on their cron schedules",
	RunE:  runSchedule,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read-only prediction API",
	RunE:  runServe,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestSource, "source", "s", "news", "Signal source: news, social or all")
}

func ingestJobTypes(source string) ([]entity.JobType, error) {
	switch strings.ToLower(source) {
	case "news":
		return []entity.JobType{entity.JobTypeNewsIngestion}, nil
	case "social":
		return []entity.JobType{entity.JobTypeSocialIngestion}, nil
	case "all":
		return []entity.JobType{entity.JobTypeNewsIngestion, entity.JobTypeSocialIngestion}, nil
	default:
		return nil, fmt.Errorf("unknown source %q, expected news, social or all", source)
	}
}

// runOnce runs the given jobs in order. Item-level failures are reported in
// the run history and never fail the command.
func runOnce(jobTypes ...entity.JobType) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	runner, err := a.newRunner(ctx, jobTypes...)
	if err != nil {
		a.logger.Error("Failed to set up pipeline", logger.ErrorField(err))
		return err
	}

	return runJobs(ctx, runner, jobTypes)
}

// runJobs runs every job even when an earlier one fails; the sources are
// independent. A job skipped because it is already running is not an error.
func runJobs(ctx context.Context, runner service.RunnerService, jobTypes []entity.JobType) error {
	var errs []error
	for _, jobType := range jobTypes {
		if err := runner.Run(ctx, jobType); err != nil && !errors.Is(err, service.ErrRunInProgress) {
			errs = append(errs, fmt.Errorf("%s: %w", jobType, err))
		}
	}
	return errors.Join(errs...)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	entries := []struct {
		spec    string
		jobType entity.JobType
	}{
		{a.cfg.Scheduler.NewsCron, entity.JobTypeNewsIngestion},
		{a.cfg.Scheduler.SocialCron, entity.JobTypeSocialIngestion},
		{a.cfg.Scheduler.VerifyCron, entity.JobTypeVerification},
	}

	var jobTypes []entity.JobType
	for _, e := range entries {
		if e.spec == "" {
			continue
		}
		if e.jobType == entity.JobTypeSocialIngestion && (len(a.cfg.Social.Accounts) == 0 || a.cfg.Twitter.BearerToken == "") {
			a.logger.Warn("Social accounts or twitter token not configured, social ingestion not scheduled")
			continue
		}
		jobTypes = append(jobTypes, e.jobType)
	}

	runner, err := a.newRunner(ctx, jobTypes...)
	if err != nil {
		a.logger.Error("Failed to set up pipeline", logger.ErrorField(err))
		return err
	}

	cronLogger := cron.PrintfLogger(zap.NewStdLog(a.logger.Logger))
	c := cron.New(cron.WithChain(
		cron.Recover(cronLogger),
		cron.SkipIfStillRunning(cronLogger),
	))

	for _, e := range entries {
		if !contains(jobTypes, e.jobType) {
			continue
		}
		jobType := e.jobType
		if _, err := c.AddFunc(e.spec, func() {
			if err := runner.Run(ctx, jobType); err != nil && !errors.Is(err, service.ErrRunInProgress) {
				a.logger.Error("Scheduled run failed", logger.StringField("job_type", string(jobType)), logger.ErrorField(err))
			}
		}); err != nil {
			return fmt.Errorf("invalid cron expression %q for %s: %w", e.spec, jobType, err)
		}
		a.logger.Info("Job scheduled", logger.StringField("job_type", string(jobType)), logger.StringField("cron", e.spec))
	}

	c.Start()
	a.logger.Info("Scheduler started. Waiting for jobs...")

	<-ctx.Done()
	a.logger.Info("Shutting down scheduler...")
	<-c.Stop().Done()
	a.logger.Info("Scheduler exiting")
	return nil
}

func contains(jobTypes []entity.JobType, jobType entity.JobType) bool {
	for _, jt := range jobTypes {
		if jt == jobType {
			return true
		}
	}
	return false
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	predictionRepo := repository.NewPredictionRepository(a.db.DB)
	reportSvc := service.NewReportService(
		predictionRepo,
		repository.NewRunHistoryRepository(a.db.DB),
		service.NewFeedbackStore(predictionRepo, a.logger),
	)

	e := newEcho(a.cfg, a.logger, reportSvc)

	go func() {
		addr := fmt.Sprintf("%s:%d", a.cfg.API.Host, a.cfg.API.Port)
		a.logger.Info("HTTP server starting", logger.StringField("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			a.logger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	<-ctx.Done()
	a.logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	a.logger.Info("Server exiting")
	return nil
}

func newEcho(cfg *config.Config, log *logger.Logger, reportSvc service.ReportService) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("HTTP request",
				logger.StringField("method", v.Method),
				logger.StringField("uri", v.URI),
				logger.IntField("status", v.Status),
			)
			return nil
		},
	}))

	apiV1 := e.Group("/api/v1")
	delivery.NewPredictionHandler(reportSvc, log).RegisterRoutes(apiV1)
	delivery.NewRunHandler(reportSvc, log).RegisterRoutes(apiV1)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "version": cfg.App.Version})
	})
	e.GET("/swagger/*", swagger.WrapHandler)
	return e
}
