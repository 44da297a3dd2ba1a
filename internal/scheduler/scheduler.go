package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/gasdiary/internal/clock"
	"github.com/mamadbah2/gasdiary/internal/config"
	"github.com/mamadbah2/gasdiary/internal/domain/models"
	"github.com/mamadbah2/gasdiary/internal/service/reporting"
)

const jobTimeout = 2 * time.Minute

// DiaryRefetcher reloads every diary stream.
type DiaryRefetcher interface {
	Refetch(ctx context.Context) error
}

// NotificationRefresher regenerates the notification feed.
type NotificationRefresher interface {
	Refresh(ctx context.Context) error
}

// Reporter builds the scheduled summaries.
type Reporter interface {
	GenerateDailySummary(ctx context.Context, now time.Time) (models.DailyReport, error)
	GenerateWeeklyReport(ctx context.Context, now time.Time) (string, error)
}

// ReportSender delivers report text to the owner.
type ReportSender interface {
	SendReport(ctx context.Context, text string) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	specs    config.ScheduleConfig
	diary    DiaryRefetcher
	notifier NotificationRefresher
	reporter Reporter
	sender   ReportSender
	clock    clock.Clock
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance running in loc. sender may be
// nil, in which case weekly reports are only logged.
func NewScheduler(specs config.ScheduleConfig, loc *time.Location, diary DiaryRefetcher, notifier NotificationRefresher, reporter Reporter, sender ReportSender, clk clock.Clock, logger *zap.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cl := cronLogger{logger.Sugar()}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	return &Scheduler{
		cron:     c,
		specs:    specs,
		diary:    diary,
		notifier: notifier,
		reporter: reporter,
		sender:   sender,
		clock:    clk,
		logger:   logger,
	}
}

// Start registers every job, runs one notification refresh immediately and
// starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler")

	jobs := []struct {
		name string
		spec string
		run  func()
	}{
		{"notifications", s.specs.Notifications, s.refreshNotifications},
		{"diary_poll", s.specs.DiaryPoll, s.pollDiary},
		{"daily_summary", s.specs.DailySummary, s.generateDailySummary},
		{"weekly_report", s.specs.WeeklyReport, s.sendWeeklyReport},
	}

	var errs []error
	for _, job := range jobs {
		if _, err := s.cron.AddFunc(job.spec, job.run); err != nil {
			s.logger.Error("failed to schedule job", zap.String("job", job.name), zap.String("spec", job.spec), zap.Error(err))
			errs = append(errs, fmt.Errorf("schedule %s: %w", job.name, err))
		}
	}

	s.refreshNotifications()
	s.cron.Start()
	return errors.Join(errs...)
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) refreshNotifications() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.notifier.Refresh(ctx); err != nil {
		s.logger.Warn("notification refresh incomplete", zap.Error(err))
	}
}

func (s *Scheduler) pollDiary() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.diary.Refetch(ctx); err != nil {
		s.logger.Warn("diary poll incomplete", zap.Error(err))
	}
}

func (s *Scheduler) generateDailySummary() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := s.reporter.GenerateDailySummary(ctx, s.clock.Now()); err != nil {
		if errors.Is(err, reporting.ErrDiaryNotReady) {
			s.logger.Warn("skipping daily summary", zap.Error(err))
			return
		}
		s.logger.Error("failed to generate daily summary", zap.Error(err))
	}
}

func (s *Scheduler) sendWeeklyReport() {
	s.logger.Info("generating weekly report")
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	report, err := s.reporter.GenerateWeeklyReport(ctx, s.clock.Now())
	if err != nil {
		s.logger.Error("failed to generate weekly report", zap.Error(err))
		return
	}

	if s.sender == nil {
		s.logger.Info("weekly report generated; messaging disabled", zap.String("report", report))
		return
	}

	if err := s.sender.SendReport(ctx, report); err != nil {
		s.logger.Error("failed to send weekly report", zap.Error(err))
	} else {
		s.logger.Info("weekly report sent successfully")
	}
}

// cronLogger routes cron's own logging through zap.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
