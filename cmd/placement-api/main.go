package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/placement-api/api/swagger"
	"github.com/noah-isme/placement-api/internal/handler"
	"github.com/noah-isme/placement-api/internal/repository"
	"github.com/noah-isme/placement-api/internal/service"
	"github.com/noah-isme/placement-api/pkg/cache"
	"github.com/noah-isme/placement-api/pkg/config"
	"github.com/noah-isme/placement-api/pkg/database"
	"github.com/noah-isme/placement-api/pkg/events"
	"github.com/noah-isme/placement-api/pkg/jobs"
	"github.com/noah-isme/placement-api/pkg/logger"
	"github.com/noah-isme/placement-api/pkg/tabular"
	"github.com/noah-isme/placement-api/pkg/tabular/gsheets"
	"github.com/noah-isme/placement-api/pkg/tabular/pgstore"
)

// @title Placement API
// @version 1.0.0
// @description Drive requests, calendar approvals and offer publication over placement workbooks.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()

	backend, calendarID, closeBackend, err := openBackend(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to open tabular backend", zap.String("backend", cfg.Tabular.Backend), zap.Error(err))
	}
	defer closeBackend()

	cacheSvc, redisClient, err := openCache(ctx, cfg, metrics, logr)
	if err != nil {
		logr.Fatal("failed to open table cache", zap.String("backend", cfg.Cache.Backend), zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}
	store := tabular.NewCachedStore(tabular.NewInstrumentedStore(backend, metrics), cacheSvc, cfg.Cache.TTL, logr)

	drives := repository.NewDriveRequestRepository(store, calendarID)
	calendar := repository.NewCompanyDriveRepository(store, calendarID)
	ledger := repository.NewPlacementResultRepository(store, calendarID)
	assignments := repository.NewCompanyAssignmentRepository(store, calendarID)
	associates := repository.NewAssociateRepository(store, calendarID)
	workbookRepo := repository.NewPlacementWorkbookRepository(store)

	for name, ensure := range map[string]func(context.Context) error{
		repository.DriveRequestsSheet:    drives.EnsureSchema,
		repository.CompanyDrivesSheet:    calendar.EnsureSchema,
		repository.PlacementResultsSheet: ledger.EnsureSchema,
		repository.CompanySPOCMapSheet:   assignments.EnsureSchema,
		repository.AssociatesSheet:       associates.EnsureSchema,
	} {
		if err := ensure(ctx); err != nil {
			logr.Fatal("failed to prepare calendar sheet", zap.String("sheet", name), zap.Error(err))
		}
	}

	var notifier interface {
		ResultsPublished(evt events.ResultsPublished)
	}
	if cfg.Events.Enabled {
		dispatcher, err := openDispatcher(cfg, logr)
		if err != nil {
			logr.Warn("event publishing disabled", zap.Error(err))
		} else {
			dispatcher.Start(ctx)
			defer dispatcher.Stop()
			notifier = dispatcher
		}
	}

	years := service.NewAcademicYearService(cfg.Placement.AcademicYear, cfg.Placement.DefaultAcademicYear, logr)
	authSvc := service.NewAuthService(associates, nil, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	if err := authSvc.EnsureBootstrapAdmin(ctx, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword, cfg.Bootstrap.AdminName); err != nil {
		logr.Fatal("failed to seed bootstrap admin", zap.Error(err))
	}

	projection := service.NewProjectionService(calendar, logr)
	driveSvc := service.NewDriveService(drives, projection, nil, logr)
	workbooks := service.NewWorkbookService(workbookRepo, years, logr)
	publisher := service.NewPublicationService(ledger, drives, workbooks, projection, notifier, metrics, cfg.Placement.PublishBatchSize, logr)

	checks := map[string]handler.ReadinessCheck{
		"store": func(ctx context.Context) error {
			_, err := backend.ListSheets(ctx, calendarID)
			return err
		},
	}
	if redisClient != nil {
		checks["cache"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	r := newRouter(cfg, logr, metrics, authSvc, routeHandlers{
		auth:       handler.NewAuthHandler(authSvc),
		drives:     handler.NewDriveHandler(driveSvc, publisher, service.NewExportService(ledger, drives, workbooks, logr)),
		companies:  handler.NewCompanyHandler(service.NewCompanyService(assignments, associates, nil, logr)),
		placements: handler.NewPlacementHandler(projection, years),
		enrollment: handler.NewEnrollmentHandler(service.NewEnrollmentService(workbookRepo, workbooks, cfg.Placement.EligibilityCGPA, logr)),
		analytics:  handler.NewAnalyticsHandler(service.NewStatsService(workbookRepo, years, cfg.Placement.EligibilityCGPA, nil, logr)),
		metrics:    handler.NewMetricsHandler(metrics, checks),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "backend", cfg.Tabular.Backend, "academic_year", years.Current())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

// openBackend builds the configured tabular store and resolves the calendar
// workbook id inside it.
func openBackend(ctx context.Context, cfg *config.Config, logr *zap.Logger) (tabular.Store, string, func(), error) {
	noop := func() {}
	switch cfg.Tabular.Backend {
	case config.BackendGSheets:
		store, err := gsheets.New(ctx, cfg.Tabular.CredentialsFile, cfg.Tabular.PlacementFolderID, logr)
		if err != nil {
			return nil, "", noop, err
		}
		return store, cfg.Tabular.CalendarWorkbookID, noop, nil
	case config.BackendPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, "", noop, err
		}
		closeDB := func() { _ = db.Close() }
		if err := pgstore.Migrate(db, cfg.Migrations.Path); err != nil {
			closeDB()
			return nil, "", noop, err
		}
		store := pgstore.New(db)
		calendarID, err := store.GetOrCreateWorkbook(ctx, cfg.Tabular.CalendarWorkbookID)
		if err != nil {
			closeDB()
			return nil, "", noop, err
		}
		return store, calendarID, closeDB, nil
	case config.BackendMemory, "":
		store := tabular.NewMemoryStore()
		store.AddWorkbook(cfg.Tabular.CalendarWorkbookID, "Placement Calendar")
		logr.Warn("using in-memory tabular store, data is lost on restart")
		return store, cfg.Tabular.CalendarWorkbookID, noop, nil
	}
	return nil, "", noop, fmt.Errorf("unknown tabular backend %q", cfg.Tabular.Backend)
}

// openCache returns the table cache; the Redis client is returned so the
// caller can close it and check it for readiness.
func openCache(ctx context.Context, cfg *config.Config, metrics *service.MetricsService, logr *zap.Logger) (*service.CacheService, *redis.Client, error) {
	switch cfg.Cache.Backend {
	case "redis":
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewCacheRepository(client, "placement", logr)
		return service.NewCacheService(repo, metrics, cfg.Cache.TTL, logr, true), client, nil
	case "none", "off":
		return service.NewCacheService(nil, metrics, cfg.Cache.TTL, logr, false), nil, nil
	default:
		return service.NewCacheService(cache.NewMemory(), metrics, cfg.Cache.TTL, logr, true), nil, nil
	}
}

func openDispatcher(cfg *config.Config, logr *zap.Logger) (*events.Dispatcher, error) {
	publisher, err := events.NewAMQPPublisher(events.AMQPConfig{
		URL:        cfg.Events.URL,
		Exchange:   cfg.Events.Exchange,
		Queue:      cfg.Events.Queue,
		RoutingKey: cfg.Events.RoutingKey,
	}, logr)
	if err != nil {
		return nil, err
	}
	return events.NewDispatcher(publisher, cfg.Events.RoutingKey, jobs.QueueConfig{
		Workers:    cfg.Events.Workers,
		BufferSize: 128,
		MaxRetries: cfg.Events.Retries,
		RetryDelay: cfg.Events.RetryDelay,
		Logger:     logr,
	}), nil
}
