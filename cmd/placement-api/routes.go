package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/placement-api/internal/handler"
	"github.com/noah-isme/placement-api/internal/middleware"
	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/internal/service"
	"github.com/noah-isme/placement-api/pkg/config"
	"github.com/noah-isme/placement-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/placement-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/placement-api/pkg/middleware/requestid"
)

type routeHandlers struct {
	auth       *handler.AuthHandler
	drives     *handler.DriveHandler
	companies  *handler.CompanyHandler
	placements *handler.PlacementHandler
	enrollment *handler.EnrollmentHandler
	analytics  *handler.AnalyticsHandler
	metrics    *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService, tokens middleware.TokenValidator, h routeHandlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", h.auth.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(tokens))
	secured.GET("/auth/me", h.auth.Me)

	spoc := middleware.RequireRoles(models.RoleSPOC)
	calendarTeam := middleware.RequireRoles(models.RoleCalendarTeam)
	admin := middleware.RequireRoles(models.RoleAdmin)
	spocOrAdmin := middleware.RequireRoles(models.RoleSPOC, models.RoleAdmin)
	anyAssociate := middleware.RequireRoles(models.RoleSPOC, models.RoleDataTeam)

	drives := secured.Group("/drives")
	drives.POST("/request", spoc, middleware.Audit(logr, "drive.submit"), h.drives.Submit)
	drives.GET("/pending", calendarTeam, h.drives.Pending)
	drives.POST("/approve", calendarTeam, middleware.Audit(logr, "drive.approve"), h.drives.Approve)
	drives.GET("/my", anyAssociate, h.drives.My)
	drives.GET("/completed", calendarTeam, h.drives.Completed)
	drives.POST("/status", spocOrAdmin, middleware.Audit(logr, "drive.status"), h.drives.SetStatus)
	drives.POST("/results", spocOrAdmin, middleware.Audit(logr, "drive.results.publish"), h.drives.PublishResults)
	drives.GET("/results/:request_id", spocOrAdmin, h.drives.Results)
	drives.GET("/results/:request_id/export", spocOrAdmin, h.drives.ExportResults)

	secured.GET("/companies/my", spoc, h.companies.Mine)
	secured.POST("/companies/assign", admin, middleware.Audit(logr, "company.assign"), h.companies.Assign)
	secured.GET("/users/spocs", calendarTeam, h.companies.SearchSPOCs)

	secured.GET("/placements/calendar", anyAssociate, h.placements.Calendar)
	secured.GET("/academic-year", anyAssociate, h.placements.AcademicYear)
	secured.POST("/academic-year", admin, middleware.Audit(logr, "academic_year.set"), h.placements.SetAcademicYear)

	dataTeam := middleware.RequireRoles(models.RoleDataTeam, models.RoleAdmin)
	secured.POST("/enroll/students", dataTeam, middleware.Audit(logr, "students.enroll"), h.enrollment.Upload)

	analytics := secured.Group("/analytics", anyAssociate)
	analytics.GET("/branch/:degree/:branch", h.analytics.Branch)
	analytics.GET("/branchwise/:degree", h.analytics.Branchwise)
	analytics.GET("/overall", h.analytics.Overall)
	analytics.POST("/recalculate", dataTeam, middleware.Audit(logr, "stats.recalculate"), h.analytics.Recalculate)

	return r
}
