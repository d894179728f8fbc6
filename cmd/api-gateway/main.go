package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/section-portal-api/api/swagger"
	"github.com/noah-isme/section-portal-api/internal/handler"
	"github.com/noah-isme/section-portal-api/internal/middleware"
	"github.com/noah-isme/section-portal-api/internal/models"
	"github.com/noah-isme/section-portal-api/internal/repository"
	"github.com/noah-isme/section-portal-api/internal/service"
	"github.com/noah-isme/section-portal-api/pkg/cache"
	"github.com/noah-isme/section-portal-api/pkg/config"
	"github.com/noah-isme/section-portal-api/pkg/export"
	"github.com/noah-isme/section-portal-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/section-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/section-portal-api/pkg/middleware/requestid"
	"github.com/noah-isme/section-portal-api/pkg/storage"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// @title Section Portal API
// @version 1.0.0
// @description Multi-tenant record store for academic sections
// @BasePath /api/v1
// @schemes http

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

	store, err := repository.NewStore(cfg.Storage.DataDir, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to open data store", "error", err)
	}

	blobs, err := storage.NewBlobStore(cfg.Storage.UploadsDir, "/uploads")
	if err != nil {
		logr.Sugar().Fatalw("failed to open blob store", "error", err)
	}

	var cacheRepo *repository.DirectoryCache
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(cfg.Cache)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			cacheRepo = repository.NewDirectoryCache(client, logr)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}

	if cfg.Seed.Enabled {
		seed := models.NewScope(cfg.Seed.Course, cfg.Seed.Year, cfg.Seed.Section)
		if created, err := store.EnsureScope(seed); err != nil {
			logr.Warn("failed to seed default scope", zap.Error(err))
		} else if created {
			logr.Info("seeded default scope", zap.String("scope", seed.Key()))
		}
	}

	validate := validator.New()
	guard := service.NewGuard()
	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(store, cfg.Admin, cfg.JWT, validate, logr)
	directorySvc := service.NewDirectoryService(store, guard, cacheRepo, cfg.Cache.TTL, metricsSvc, logr)
	studentSvc := service.NewStudentService(store, guard, blobs, validate, logr)
	adminSvc := service.NewAdminService(store, guard, blobs, validate, logr)
	activitySvc := service.NewActivityService(store, guard, validate, logr)
	attendanceSvc := service.NewAttendanceService(store, guard, validate, logr)
	issueSvc := service.NewIssueService(store, guard, validate, logr)
	noteSvc := service.NewNoteService(store, guard, blobs, logr)
	certificateSvc := service.NewCertificateService(store, guard, blobs, logr)
	scrutinySvc := service.NewScrutinyService(store, guard, blobs, logr)
	chatSvc := service.NewChatService(store, guard, blobs, validate, logr)
	reportSvc := service.NewReportService(store, guard, export.NewPDFExporter(), logr)

	authHandler := handler.NewAuthHandler(authSvc)
	directoryHandler := handler.NewDirectoryHandler(directorySvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	adminHandler := handler.NewAdminHandler(adminSvc)
	activityHandler := handler.NewActivityHandler(activitySvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	issueHandler := handler.NewIssueHandler(issueSvc)
	noteHandler := handler.NewNoteHandler(noteSvc)
	certificateHandler := handler.NewCertificateHandler(certificateSvc)
	scrutinyHandler := handler.NewScrutinyHandler(scrutinySvc)
	chatHandler := handler.NewChatHandler(chatSvc, blobs)
	reportHandler := handler.NewReportHandler(reportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)
	r.Static("/uploads", blobs.Dir())

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/admin/login", authHandler.AdminLogin)
		auth.POST("/teacher/login", authHandler.TeacherLogin)
		auth.POST("/student/login", authHandler.StudentLogin)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	protected.GET("/auth/whoami", authHandler.Whoami)
	protected.GET("/metrics/snapshot", metricsHandler.Snapshot)

	admins := protected.Group("", middleware.RequireRoles(models.RoleMainAdmin, models.RoleSecondaryAdmin))
	{
		admins.GET("/courses", directoryHandler.ListCourses)
		admins.POST("/courses", directoryHandler.CreateCourse)
		admins.DELETE("/courses/:course", directoryHandler.DeleteCourse)
		admins.GET("/courses/:course/years", directoryHandler.ListYears)
		admins.POST("/courses/:course/years", directoryHandler.CreateYear)
		admins.DELETE("/courses/:course/years/:year", directoryHandler.DeleteYear)
		admins.GET("/courses/:course/years/:year/sections", directoryHandler.ListSections)
		admins.POST("/courses/:course/years/:year/sections", directoryHandler.CreateSection)
		admins.DELETE("/courses/:course/years/:year/sections/:section", directoryHandler.DeleteSection)

		scoped := admins.Group("/courses/:course/years/:year/sections/:section")
		{
			scoped.GET("/students", studentHandler.List)
			scoped.POST("/students", studentHandler.Create)
			scoped.GET("/students/:id", studentHandler.Get)
			scoped.PUT("/students/:id", studentHandler.Update)
			scoped.DELETE("/students/:id", studentHandler.Delete)
			scoped.POST("/students/:id/photo", studentHandler.UploadPhoto)
			scoped.PUT("/students/:id/activities", studentHandler.AssignActivities)

			scoped.GET("/students/:id/certificates", certificateHandler.List)
			scoped.POST("/students/:id/certificates", certificateHandler.Upload)
			scoped.DELETE("/students/:id/certificates/:certId", certificateHandler.Delete)

			scoped.GET("/admins", adminHandler.List)
			scoped.POST("/admins", adminHandler.Create)
			scoped.PUT("/admins/:id", adminHandler.Update)
			scoped.DELETE("/admins/:id", adminHandler.Delete)
			scoped.POST("/admins/:id/photo", adminHandler.UploadPhoto)

			scoped.GET("/activities", activityHandler.List)
			scoped.POST("/activities", activityHandler.Create)
			scoped.DELETE("/activities/:id", activityHandler.Delete)

			scoped.GET("/attendance", attendanceHandler.Ledger)
			scoped.POST("/attendance", attendanceHandler.Mark)
			scoped.GET("/subjects", attendanceHandler.Subjects)
			scoped.POST("/subjects", attendanceHandler.AddSubject)
			scoped.DELETE("/subjects/:subject", attendanceHandler.DeleteSubject)

			scoped.GET("/issues", issueHandler.List)
			scoped.PUT("/issues/:id", issueHandler.Resolve)

			scoped.GET("/notes", noteHandler.List)
			scoped.POST("/notes", noteHandler.Upload)
			scoped.DELETE("/notes/:subject/:id", noteHandler.Delete)

			scoped.GET("/scrutiny", scrutinyHandler.List)
			scoped.PUT("/scrutiny/:id", scrutinyHandler.Remark)

			if cfg.Reports.Enabled {
				scoped.GET("/reports/attendance", reportHandler.AttendanceRegister)
			}
		}
	}

	chat := protected.Group("/courses/:course/years/:year/sections/:section/chat")
	{
		chat.GET("/groups", chatHandler.ListGroups)
		chat.POST("/groups", chatHandler.CreateGroup)
		chat.POST("/groups/auto", chatHandler.RefreshSectionGroup)
		chat.PUT("/groups/:groupId", chatHandler.UpdateGroup)
		chat.DELETE("/groups/:groupId", chatHandler.DeleteGroup)
		chat.POST("/groups/:groupId/photo", chatHandler.UploadGroupPhoto)
		chat.GET("/groups/:groupId/messages", chatHandler.ListMessages)
		chat.POST("/groups/:groupId/messages", chatHandler.SendMessage)
		chat.GET("/threads/:otherId/messages", chatHandler.ListThread)
		chat.POST("/threads/:otherId/messages", chatHandler.SendThreadMessage)
	}

	me := protected.Group("/me", middleware.RequireRoles(models.RoleStudent))
	{
		me.GET("/profile", studentHandler.SelfGet)
		me.PUT("/profile", studentHandler.SelfUpdate)
		me.GET("/teachers", studentHandler.Teachers)
		me.GET("/attendance", attendanceHandler.Own)
		me.GET("/subjects", attendanceHandler.OwnSubjects)
		me.GET("/activities", activityHandler.Own)
		me.GET("/notes", noteHandler.ListOwn)
		me.GET("/certificates", certificateHandler.ListOwn)
		me.GET("/issues", issueHandler.ListOwn)
		me.POST("/issues", issueHandler.Raise)
		me.GET("/scrutiny", scrutinyHandler.ListOwn)
		me.POST("/scrutiny", scrutinyHandler.Submit)
		me.DELETE("/scrutiny/:id", scrutinyHandler.DeleteOwn)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
