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
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/uni-adp-api/api/swagger"
	"github.com/noah-isme/uni-adp-api/internal/handler"
	"github.com/noah-isme/uni-adp-api/internal/middleware"
	"github.com/noah-isme/uni-adp-api/internal/models"
	"github.com/noah-isme/uni-adp-api/internal/repository"
	"github.com/noah-isme/uni-adp-api/internal/service"
	"github.com/noah-isme/uni-adp-api/internal/workload"
	"github.com/noah-isme/uni-adp-api/pkg/cache"
	"github.com/noah-isme/uni-adp-api/pkg/config"
	"github.com/noah-isme/uni-adp-api/pkg/database"
	"github.com/noah-isme/uni-adp-api/pkg/export"
	"github.com/noah-isme/uni-adp-api/pkg/jobs"
	"github.com/noah-isme/uni-adp-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/uni-adp-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/uni-adp-api/pkg/middleware/requestid"
	"github.com/noah-isme/uni-adp-api/pkg/storage"
)

// @title UNI ADP API
// @version 1.0.0
// @description University administrative portal: standard-hours workload, timetable, reports
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()
	validate := validator.New()

	// Redis is best-effort: without it summaries fall through to the database.
	var cacheSvc *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, workload cache disabled", "error", err)
		cacheSvc = service.NewCacheService(nil, metricsSvc, cfg.Workload.CacheTTL, logr, false)
	} else {
		defer redisClient.Close()
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Workload.CacheTTL, logr, true)
	}

	policy := workload.DefaultPolicy()
	if cfg.Workload.PolicyVersion != "" {
		policy.Version = cfg.Workload.PolicyVersion
	}
	if cfg.Workload.DefaultQuota > 0 {
		policy.DefaultQuota = cfg.Workload.DefaultQuota
	}
	if cfg.Workload.PracticeGroupSize > 0 {
		policy.PracticeGroupSize = cfg.Workload.PracticeGroupSize
	}

	userRepo := repository.NewUserRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	lecturerRepo := repository.NewLecturerRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	semesterRepo := repository.NewSemesterRepository(db)
	classRepo := repository.NewTeachingClassRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	guidanceRepo := repository.NewGuidanceRepository(db)
	quotaRepo := repository.NewQuotaRepository(db)
	workloadRepo := repository.NewWorkloadRepository(db)
	reportRepo := repository.NewReportRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "uni-adp-api",
	})
	departmentSvc := service.NewDepartmentService(departmentRepo, validate, logr)
	lecturerSvc := service.NewLecturerService(lecturerRepo, departmentRepo, validate, logr)
	roomSvc := service.NewRoomService(roomRepo, validate, logr)
	semesterSvc := service.NewSemesterService(semesterRepo, validate, logr)
	classSvc := service.NewTeachingClassService(classRepo, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, departmentRepo, validate, logr)
	sectionSvc := service.NewSectionService(service.SectionServiceDeps{
		Repo:      sectionRepo,
		Subjects:  subjectRepo,
		Classes:   classRepo,
		Lecturers: lecturerRepo,
		Depts:     departmentRepo,
		Semesters: semesterRepo,
		Rooms:     roomRepo,
		Cache:     cacheSvc,
		Policy:    policy,
		Scheduling: service.SectionSchedulingConfig{
			AllowSunday:   cfg.Scheduling.AllowSunday,
			PeriodsPerDay: cfg.Scheduling.PeriodsPerDay,
		},
		Validator: validate,
		Logger:    logr,
	})
	guidanceSvc := service.NewGuidanceService(guidanceRepo, lecturerRepo, cacheSvc, policy, validate, logr)
	quotaSvc := service.NewQuotaService(quotaRepo, lecturerRepo, cacheSvc, policy, validate, logr)
	workloadSvc := service.NewWorkloadService(workloadRepo, quotaRepo, departmentRepo, cacheSvc, policy, cfg.Workload.CacheTTL, logr)

	apiPrefix := cfg.APIPrefix
	if apiPrefix == "" {
		apiPrefix = "/api/v1"
	}

	var reportSvc *service.ReportService
	var reportQueue *jobs.Queue
	if cfg.Reports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init report storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
		exportSvc := service.NewExportService(
			sectionRepo, guidanceRepo, workloadSvc, store, signer,
			service.ExportConfig{APIPrefix: apiPrefix, ResultTTL: cfg.Reports.SignedURLTTL},
			logr, export.NewCSVExporter(), export.NewPDFExporter(),
		)
		worker := service.NewReportWorker(reportRepo, exportSvc, metricsSvc, cfg.Reports.WorkerRetries, logr)
		reportQueue = jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Reports.WorkerConcurrency,
			MaxRetries: cfg.Reports.WorkerRetries,
			Logger:     logr,
		})
		reportSvc = service.NewReportService(reportRepo, reportQueue, exportSvc, logr, service.ReportServiceConfig{
			ResultTTL:       cfg.Reports.SignedURLTTL,
			CleanupInterval: cfg.Reports.CleanupInterval,
			MaxRetries:      cfg.Reports.WorkerRetries,
		})

		reportQueue.Start(ctx)
		defer reportQueue.Stop()
		reportSvc.RecoverPendingJobs(ctx)
		reportSvc.StartCleanup(ctx)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta(policy.Version))

	metricsHandler := handler.NewMetricsHandler(metricsSvc)
	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r.Group(apiPrefix), routeDeps{
		auth:       handler.NewAuthHandler(authSvc),
		department: handler.NewDepartmentHandler(departmentSvc),
		lecturer:   handler.NewLecturerHandler(lecturerSvc, workloadSvc),
		room:       handler.NewRoomHandler(roomSvc),
		semester:   handler.NewSemesterHandler(semesterSvc),
		class:      handler.NewTeachingClassHandler(classSvc),
		subject:    handler.NewSubjectHandler(subjectSvc),
		section:    handler.NewSectionHandler(sectionSvc),
		guidance:   handler.NewGuidanceHandler(guidanceSvc),
		quota:      handler.NewQuotaHandler(quotaSvc),
		workloads:  handler.NewWorkloadHandler(workloadSvc),
		metrics:    metricsHandler,
		report:     newReportHandlerIfEnabled(reportSvc, logr),
		authSvc:    authSvc,
		userRepo:   userRepo,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

type routeDeps struct {
	auth       *handler.AuthHandler
	department *handler.DepartmentHandler
	lecturer   *handler.LecturerHandler
	room       *handler.RoomHandler
	semester   *handler.SemesterHandler
	class      *handler.TeachingClassHandler
	subject    *handler.SubjectHandler
	section    *handler.SectionHandler
	guidance   *handler.GuidanceHandler
	quota      *handler.QuotaHandler
	workloads  *handler.WorkloadHandler
	metrics    *handler.MetricsHandler
	report     *handler.ReportHandler
	authSvc    *service.AuthService
	userRepo   *repository.UserRepository
}

func newReportHandlerIfEnabled(svc *service.ReportService, logr *zap.Logger) *handler.ReportHandler {
	if svc == nil {
		return nil
	}
	return handler.NewReportHandler(svc, logr)
}

func registerRoutes(api *gin.RouterGroup, deps routeDeps) {
	api.POST("/auth/login", deps.auth.Login)
	api.POST("/auth/refresh", deps.auth.Refresh)

	authed := api.Group("")
	authed.Use(middleware.JWT(deps.authSvc))

	authed.POST("/auth/logout", deps.auth.Logout)
	authed.POST("/auth/change-password", deps.auth.ChangePassword)
	authed.GET("/auth/me", deps.auth.Me)
	authed.GET("/metrics/system", deps.metrics.System)

	read := authed.Group("")
	read.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleViewer))

	write := authed.Group("")
	write.Use(middleware.RequireRoles(models.RoleAdmin))

	read.GET("/departments", deps.department.List)
	read.GET("/departments/:id", deps.department.Get)
	read.GET("/departments/:id/workload", deps.workloads.DepartmentReport)
	write.POST("/departments", middleware.Audit(deps.userRepo, "create", "department"), deps.department.Create)
	write.PUT("/departments/:id", middleware.Audit(deps.userRepo, "update", "department"), deps.department.Update)
	write.DELETE("/departments/:id", middleware.Audit(deps.userRepo, "delete", "department"), deps.department.Delete)

	read.GET("/lecturers", deps.lecturer.List)
	read.GET("/lecturers/:id", deps.lecturer.Get)
	read.GET("/lecturers/:id/workload", deps.lecturer.Workload)
	write.POST("/lecturers", middleware.Audit(deps.userRepo, "create", "lecturer"), deps.lecturer.Create)
	write.PUT("/lecturers/:id", middleware.Audit(deps.userRepo, "update", "lecturer"), deps.lecturer.Update)
	write.DELETE("/lecturers/:id", middleware.Audit(deps.userRepo, "deactivate", "lecturer"), deps.lecturer.Deactivate)

	read.GET("/rooms", deps.room.List)
	read.GET("/rooms/:id", deps.room.Get)
	write.POST("/rooms", deps.room.Create)
	write.PUT("/rooms/:id", deps.room.Update)
	write.DELETE("/rooms/:id", deps.room.Delete)

	read.GET("/semesters", deps.semester.List)
	read.GET("/semesters/active", deps.semester.GetActive)
	read.GET("/semesters/:id", deps.semester.Get)
	write.POST("/semesters", deps.semester.Create)
	write.PUT("/semesters/:id", deps.semester.Update)
	write.POST("/semesters/:id/activate", middleware.Audit(deps.userRepo, "activate", "semester"), deps.semester.Activate)
	write.DELETE("/semesters/:id", deps.semester.Delete)

	read.GET("/classes", deps.class.List)
	read.GET("/classes/:id", deps.class.Get)
	write.POST("/classes", deps.class.Create)
	write.POST("/classes/import", middleware.Audit(deps.userRepo, "import", "teaching_class"), deps.class.Import)
	write.PUT("/classes/:id", deps.class.Update)
	write.DELETE("/classes/:id", deps.class.Delete)

	read.GET("/subjects", deps.subject.List)
	read.GET("/subjects/:id", deps.subject.Get)
	write.POST("/subjects", deps.subject.Create)
	write.POST("/subjects/import", middleware.Audit(deps.userRepo, "import", "subject"), deps.subject.Import)
	write.PUT("/subjects/:id", deps.subject.Update)
	write.DELETE("/subjects/:id", deps.subject.Delete)

	read.GET("/sections", deps.section.List)
	read.GET("/sections/:id", deps.section.Get)
	read.POST("/sections/check-conflicts", deps.section.CheckConflicts)
	write.POST("/sections", middleware.Audit(deps.userRepo, "create", "course_section"), deps.section.Create)
	write.PUT("/sections/:id", middleware.Audit(deps.userRepo, "update", "course_section"), deps.section.Update)
	write.DELETE("/sections/:id", middleware.Audit(deps.userRepo, "delete", "course_section"), deps.section.Delete)
	write.DELETE("/sections/semester/:semester_id", middleware.Audit(deps.userRepo, "purge", "course_section"), deps.section.PurgeSemester)

	read.GET("/guidance-tasks", deps.guidance.List)
	read.GET("/guidance-tasks/:id", deps.guidance.Get)
	write.POST("/guidance-tasks", deps.guidance.Create)
	write.PUT("/guidance-tasks/:id", deps.guidance.Update)
	write.DELETE("/guidance-tasks/:id", deps.guidance.Delete)

	read.GET("/quotas/:lecturer_id", deps.quota.Get)
	write.PUT("/quotas", middleware.Audit(deps.userRepo, "set", "quota"), deps.quota.Set)
	write.DELETE("/quotas/:lecturer_id", middleware.Audit(deps.userRepo, "delete", "quota"), deps.quota.Delete)

	if deps.report != nil {
		read.POST("/reports", deps.report.GenerateReport)
		read.GET("/reports/:id", deps.report.ReportStatus)
		api.GET("/reports/download/:token", deps.report.DownloadReport)
	}
}
