package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"anoa.com/collegetrack/internal/agent"
	"anoa.com/collegetrack/internal/agent/agents"
	"anoa.com/collegetrack/internal/config"
	"anoa.com/collegetrack/internal/entity"
	"anoa.com/collegetrack/internal/middleware"
	"anoa.com/collegetrack/pkg/logger"
	"anoa.com/collegetrack/pkg/storage"
	"anoa.com/collegetrack/pkg/token"

	accessRepo "anoa.com/collegetrack/internal/modules/access/repository"
	accessService "anoa.com/collegetrack/internal/modules/access/service"

	adminHttp "anoa.com/collegetrack/internal/modules/admin/delivery/http"
	adminService "anoa.com/collegetrack/internal/modules/admin/service"

	applicationHttp "anoa.com/collegetrack/internal/modules/application/delivery/http"
	applicationRepo "anoa.com/collegetrack/internal/modules/application/repository"
	applicationService "anoa.com/collegetrack/internal/modules/application/service"

	financialPlanHttp "anoa.com/collegetrack/internal/modules/financialplan/delivery/http"
	financialPlanRepo "anoa.com/collegetrack/internal/modules/financialplan/repository"
	financialPlanService "anoa.com/collegetrack/internal/modules/financialplan/service"

	notifHttp "anoa.com/collegetrack/internal/modules/notification/delivery/http"
	notifRepo "anoa.com/collegetrack/internal/modules/notification/repository"
	notifService "anoa.com/collegetrack/internal/modules/notification/service"

	profileHttp "anoa.com/collegetrack/internal/modules/profile/delivery/http"
	profileService "anoa.com/collegetrack/internal/modules/profile/service"

	requirementHttp "anoa.com/collegetrack/internal/modules/requirement/delivery/http"
	requirementService "anoa.com/collegetrack/internal/modules/requirement/service"

	universityHttp "anoa.com/collegetrack/internal/modules/university/delivery/http"
	universityRepo "anoa.com/collegetrack/internal/modules/university/repository"
	"anoa.com/collegetrack/internal/modules/university/search"
	universityService "anoa.com/collegetrack/internal/modules/university/service"

	userHttp "anoa.com/collegetrack/internal/modules/user/delivery/http"
	userRepo "anoa.com/collegetrack/internal/modules/user/repository"
	userService "anoa.com/collegetrack/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	httpServer  *http.Server
	db          *gorm.DB
	redisClient *redis.Client
	scheduler   *agent.Scheduler
}

// NewServer wires every module. redisClient may be nil; rate limits, reminder dedupe and
// live notifications are then disabled.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	tokens := token.NewManager(cfg.JWTSecret, cfg.SessionTTL)

	users := userRepo.NewUserRepository(db)
	links := accessRepo.NewLinkRepository(db)
	applications := applicationRepo.NewApplicationRepository(db)
	universities := universityRepo.NewUniversityRepository(db)
	plans := financialPlanRepo.NewFinancialPlanRepository(db)
	notifications := notifRepo.NewNotificationRepository(db)

	access := accessService.NewAccessService(links)

	var documents storage.DocumentStorage
	if cfg.CloudinaryURL != "" {
		var err error
		documents, err = storage.NewCloudinaryStorage(cfg.CloudinaryURL, cfg.CloudinaryUploadFolder)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize cloudinary storage: %w", err)
		}
	} else {
		logger.Warn().Msg("CLOUDINARY_URL not set, document uploads are disabled")
	}

	var index search.Index
	if cfg.MeiliSearchHost != "" {
		meiliHost := cfg.MeiliSearchHost
		if !strings.HasPrefix(meiliHost, "http") {
			meiliHost = "http://" + meiliHost + ":7700"
		}
		index = search.NewMeiliIndex(meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey)))
	} else {
		logger.Warn().Msg("MEILISEARCH_HOST not set, university search uses name matching")
	}

	notificationSvc := notifService.NewNotificationService(notifications, links, redisClient)
	notificationHandler := notifHttp.NewNotificationHandler(notificationSvc, redisClient, cfg.AllowedOrigins)

	var googleConfig *oauth2.Config
	if cfg.GoogleEnabled() {
		googleConfig = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}

	authSvc := userService.NewAuthService(users, links, tokens, userService.Options{
		Redis:            redisClient,
		LoginMaxAttempts: cfg.LoginMaxAttempts,
		LoginLockout:     cfg.LoginLockout,
		RegisterCooldown: cfg.RateLimitRegister,
		Google:           googleConfig,
	})
	authHandler := userHttp.NewAuthHandler(authSvc, userHttp.CookieConfig{
		Name:   cfg.CookieName,
		Secure: cfg.CookieSecure,
		TTL:    cfg.SessionTTL,
	}, cfg.FrontendURL)

	profileHandler := profileHttp.NewProfileHandler(profileService.NewProfileService(users))

	applicationSvc := applicationService.NewApplicationService(applications, universities, access, notificationSvc, applicationService.Options{
		Tx: applicationRepo.TxOptions{
			Timeout: cfg.StatusTxTimeout,
			MaxWait: cfg.StatusTxMaxWait,
		},
	})
	applicationHandler := applicationHttp.NewApplicationHandler(applicationSvc)

	requirementHandler := requirementHttp.NewRequirementHandler(
		requirementService.NewRequirementService(applications, access, documents),
	)

	financialPlanHandler := financialPlanHttp.NewFinancialPlanHandler(
		financialPlanService.NewFinancialPlanService(plans, applications, access),
	)

	universitySvc := universityService.NewUniversityService(universities, index)
	universityHandler := universityHttp.NewUniversityHandler(universitySvc)

	adminHandler := adminHttp.NewAdminHandler(adminService.NewAdminService(users, links))

	scheduler := agent.NewScheduler(5 * time.Minute)
	reminder := agents.NewDeadlineReminderAgent(applications, notificationSvc, redisClient, agents.DeadlineReminderConfig{
		Schedule: cfg.ReminderSchedule,
		Window:   cfg.ReminderWindow,
	})
	if err := scheduler.RegisterAgent(reminder); err != nil {
		return nil, fmt.Errorf("failed to register reminder agent: %w", err)
	}

	if index != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if _, err := universitySvc.Reindex(ctx); err != nil {
				logger.Warn().Err(err).Msg("initial university reindex failed")
			}
		}()
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())

	router.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authMiddleware := middleware.NewAuthMiddleware(tokens, cfg.CookieName)

	api := router.Group("/api")

	// Public routes
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/google/login", authHandler.GoogleLogin)
		auth.GET("/google/callback", authHandler.GoogleCallback)
	}

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.GET("/auth/me", authHandler.Me)

		student := protected.Group("/student")
		{
			student.GET("/applications", applicationHandler.ListApplications)
			student.POST("/applications", applicationHandler.CreateApplication)
			student.GET("/applications/summary", applicationHandler.GetSummary)
			student.GET("/applications/:id", applicationHandler.GetApplication)
			student.PATCH("/applications/:id", applicationHandler.UpdateStatus)
			student.PUT("/applications/:id", applicationHandler.UpdateApplication)
			student.DELETE("/applications/:id", applicationHandler.DeleteApplication)

			student.PATCH("/applications/:id/requirements/:requirementId", requirementHandler.UpdateRequirement)
			student.POST("/applications/:id/requirements/:requirementId/document", requirementHandler.UploadDocument)

			profile := student.Group("/profile", authMiddleware.RequireRoles(entity.RoleStudent))
			profile.GET("", profileHandler.GetProfile)
			profile.PUT("", profileHandler.UpdateProfile)
		}

		protected.GET("/financial-plans", financialPlanHandler.ListPlans)
		protected.POST("/financial-plans", financialPlanHandler.UpsertPlan)

		protected.GET("/universities", universityHandler.ListUniversities)
		protected.GET("/universities/:id", universityHandler.GetUniversity)

		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)

		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireRoles(entity.RoleAdmin))
		{
			adminGroup.GET("/users", adminHandler.ListUsers)
			adminGroup.POST("/links", adminHandler.CreateLink)
			adminGroup.DELETE("/links", adminHandler.DeleteLink)
			adminGroup.POST("/universities/reindex", universityHandler.Reindex)
		}
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
		scheduler:   scheduler,
	}, nil
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run starts the scheduler and serves until Shutdown is called.
func (s *Server) Run(addr string) error {
	s.scheduler.Start()

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info().Str("addr", addr).Msg("http server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.scheduler.Stop(ctx)
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
