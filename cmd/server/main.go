package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/gasdiary/internal/cache"
	"github.com/mamadbah2/gasdiary/internal/clock"
	"github.com/mamadbah2/gasdiary/internal/config"
	"github.com/mamadbah2/gasdiary/internal/domain/models"
	"github.com/mamadbah2/gasdiary/internal/realtime"
	"github.com/mamadbah2/gasdiary/internal/repository/mongodb"
	"github.com/mamadbah2/gasdiary/internal/repository/redisstore"
	"github.com/mamadbah2/gasdiary/internal/repository/sheets"
	"github.com/mamadbah2/gasdiary/internal/scheduler"
	"github.com/mamadbah2/gasdiary/internal/server/handlers"
	"github.com/mamadbah2/gasdiary/internal/server/router"
	diarysvc "github.com/mamadbah2/gasdiary/internal/service/diary"
	notificationsvc "github.com/mamadbah2/gasdiary/internal/service/notifications"
	reportingsvc "github.com/mamadbah2/gasdiary/internal/service/reporting"
	whatsappsvc "github.com/mamadbah2/gasdiary/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/gasdiary/pkg/clients/whatsapp"
	"github.com/mamadbah2/gasdiary/pkg/logger"
	"github.com/mamadbah2/gasdiary/pkg/retry"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancelConnect := context.WithTimeout(ctx, 20*time.Second)
	defer cancelConnect()

	mongoRepo, err := mongodb.NewMongoDBRepository(connectCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName, baseLogger.Named("repo.mongo"))
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	// Redis backs the second cache tier and read lists; without it both stay in memory.
	var (
		persister cache.Persister
		reads     notificationsvc.ReadStore
	)
	redisStore, err := redisstore.New(connectCtx, cfg.Redis, baseLogger.Named("repo.redis"))
	if err != nil {
		baseLogger.Warn("redis unavailable, running without persisted cache and read state", zap.Error(err))
	} else {
		persister, reads = redisStore, redisStore
		defer func() {
			if err := redisStore.Close(); err != nil {
				baseLogger.Error("failed to close redis connection", zap.Error(err))
			}
		}()
	}

	clk := clock.Real()
	ledgerCache := cache.New[models.Ledger](persister, cfg.Cache.TTL, clk, baseLogger.Named("cache"))

	var feed realtime.ChangeFeed
	if cfg.MongoDB.ChangeStreams {
		feed = mongoRepo.ChangeFeed()
	} else {
		baseLogger.Info("change streams disabled, diary relies on the poll schedule")
	}

	retryPolicy := retry.DefaultPolicy()
	retryPolicy.Attempts = cfg.Diary.FetchAttempts
	retryPolicy.BaseDelay = cfg.Diary.RetryBaseDelay
	retryPolicy.Timeout = cfg.Diary.FetchTimeout

	diaryEngine := diarysvc.NewEngine(mongoRepo, ledgerCache, feed, clk, diarysvc.Options{
		Location:          cfg.Location,
		FetchLimit:        cfg.Diary.FetchLimit,
		Retry:             retryPolicy,
		SoftRefreshMinAge: cfg.Cache.SoftRefreshMinAge,
		Debounce:          cfg.Diary.Debounce,
	}, baseLogger.Named("svc.diary"))

	var (
		alerter        notificationsvc.Alerter
		reportSender   scheduler.ReportSender
		messageHandler *handlers.MessageHandler
	)
	if cfg.WhatsApp.Enabled() {
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, baseLogger.Named("svc.whatsapp"))
		alerter, reportSender = messagingSvc, messagingSvc
		messageHandler = handlers.NewMessageHandler(messagingSvc, baseLogger.Named("handlers.messages"))
		baseLogger.Info("whatsapp messaging enabled")
	} else {
		baseLogger.Warn("whatsapp token missing, critical alerts and reports stay in-app")
	}

	notificationSvc := notificationsvc.NewService(mongoRepo, reads, alerter, retryPolicy, clk, cfg.Location, baseLogger.Named("svc.notifications"))
	navLogger := baseLogger.Named("navigation")
	notificationSvc.OnNavigate(func(intent models.NavigationIntent) {
		navLogger.Debug("notification opened",
			zap.String("notification_id", intent.NotificationID),
			zap.String("user_id", intent.UserID),
			zap.String("module", intent.Module))
	})

	var archive reportingsvc.Archiver
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		archive = sheets.NewArchive(sheetsRepo)
	}
	reportingSvc := reportingsvc.NewService(diaryEngine, mongoRepo, archive, cfg.Location, baseLogger.Named("svc.reporting"))

	if err := diaryEngine.Activate(ctx); err != nil {
		baseLogger.Fatal("failed to activate diary", zap.Error(err))
	}
	defer diaryEngine.Deactivate()

	sched := scheduler.NewScheduler(cfg.Schedules, cfg.Location, diaryEngine, notificationSvc, reportingSvc, reportSender, clk, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	gin.SetMode(gin.ReleaseMode)
	engine := router.New(router.Handlers{
		Diary:         handlers.NewDiaryHandler(diaryEngine, clk, cfg.Location, baseLogger.Named("handlers.diary")),
		Notifications: handlers.NewNotificationHandler(notificationSvc, mongoRepo, baseLogger.Named("handlers.notifications")),
		Messages:      messageHandler,
	}, baseLogger.Named("router"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("timezone", cfg.Timezone))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
