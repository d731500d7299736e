package main

import (
	"context"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/bigbrownking/taubago/internal/config"
	"github.com/bigbrownking/taubago/internal/handlers"
	"github.com/bigbrownking/taubago/internal/models"
	"github.com/bigbrownking/taubago/internal/repository"
	"github.com/bigbrownking/taubago/internal/services"
	"github.com/bigbrownking/taubago/pkg/database"
	"github.com/bigbrownking/taubago/pkg/logger"
	"github.com/bigbrownking/taubago/pkg/storage"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.New(cfg.Mode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	// Подключаемся к базе данных
	db, err := database.NewDatabase(cfg.DatabaseDSN)
	if err != nil {
		appLogger.Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	// Наполняем базу стартовыми данными
	if err := db.CreateDefaultAdmin(cfg.AdminEmail, cfg.AdminPassword); err != nil {
		appLogger.Errorw("failed to create default admin", "error", err)
	}
	if err := db.SeedRegistrationQuestions(); err != nil {
		appLogger.Errorw("failed to seed registration questions", "error", err)
	}
	if err := db.SeedVideoCategories(); err != nil {
		appLogger.Errorw("failed to seed video categories", "error", err)
	}

	// Инициализируем объектное хранилище
	store, err := storage.NewMinioStorage(context.Background(), storage.Config{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	})
	if err != nil {
		appLogger.Fatalw("failed to initialize storage", "error", err)
	}

	// Создаем репозитории
	userRepo := repository.NewUserRepository(db.DB)
	registrationRepo := repository.NewRegistrationRepository(db.DB)
	resetRepo := repository.NewPasswordResetRepository(db.DB)
	courseRepo := repository.NewCourseRepository(db.DB)
	lessonRepo := repository.NewLessonRepository(db.DB)
	enrollmentRepo := repository.NewEnrollmentRepository(db.DB)
	videoRepo := repository.NewVideoRepository(db.DB)
	progressRepo := repository.NewVideoProgressRepository(db.DB)
	categoryRepo := repository.NewVideoCategoryRepository(db.DB)
	reportRepo := repository.NewLessonReportRepository(db.DB)
	reviewRepo := repository.NewCourseReviewRepository(db.DB)
	likeRepo := repository.NewReviewLikeRepository(db.DB)

	// Создаем сервисы
	emailService := services.NewEmailService(cfg.SendgridAPIKey, cfg.EmailFrom, cfg.EmailFromName, cfg.FrontendURL, appLogger)
	authService := services.NewAuthService(userRepo, registrationRepo, resetRepo, emailService, appLogger,
		cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	courseService := services.NewCourseService(courseRepo, lessonRepo, enrollmentRepo, videoRepo, reportRepo, reviewRepo, store, appLogger)
	lessonService := services.NewLessonService(lessonRepo, courseRepo, enrollmentRepo, appLogger)
	videoService := services.NewVideoService(videoRepo, progressRepo, categoryRepo, lessonRepo, enrollmentRepo, store, appLogger)
	reportService := services.NewReportService(reportRepo, lessonRepo, videoRepo, enrollmentRepo, store, appLogger)
	ratingService := services.NewRatingService(reviewRepo, likeRepo, courseRepo, enrollmentRepo, appLogger)
	profileService := services.NewProfileService(userRepo, registrationRepo, enrollmentRepo, store, appLogger)

	// Создаем обработчики
	authHandler := handlers.NewAuthHandler(authService, profileService)
	courseHandler := handlers.NewCourseHandler(courseService, lessonService)
	videoHandler := handlers.NewVideoHandler(videoService)
	reportHandler := handlers.NewReportHandler(reportService)
	ratingHandler := handlers.NewRatingHandler(ratingService)
	profileHandler := handlers.NewProfileHandler(profileService)

	// Настраиваем Gin
	if cfg.Mode == "prod" || cfg.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.MaxMultipartMemory = cfg.MaxUploadSize

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.FrontendURL}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "Range")
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	// Публичные маршруты
	public := api.Group("/")
	{
		public.POST("/auth/signup", authHandler.SignUp)
		public.POST("/auth/login", authHandler.Login)
		public.POST("/auth/refresh", authHandler.Refresh)
		public.POST("/auth/forgot-password", authHandler.ForgotPassword)
		public.POST("/auth/reset-password", authHandler.ResetPassword)
		public.GET("/auth/reset-password/validate", authHandler.ValidateResetToken)
		public.GET("/registration-questions", authHandler.RegistrationQuestions)
	}

	// Курсы и отзывы доступны и гостям, но с данными пользователя при токене
	guest := api.Group("/")
	guest.Use(handlers.GuestMiddleware(authService))
	{
		guest.GET("/courses", courseHandler.ListCourses)
		guest.GET("/courses/:id", courseHandler.GetCourse)
		guest.GET("/courses/:id/rating", ratingHandler.CourseRatingStats)
		guest.GET("/courses/:id/reviews", ratingHandler.CourseReviews)
		guest.GET("/courses/:id/my-rating", ratingHandler.MyCourseRating)
		guest.GET("/reviews", ratingHandler.AllReviews)
		guest.GET("/courses/summaries", ratingHandler.CourseSummaries)
	}

	// Защищенные маршруты
	protected := api.Group("/")
	protected.Use(handlers.AuthMiddleware(authService))
	{
		// Профиль
		protected.GET("/profile", profileHandler.MyProfile)
		protected.PUT("/profile", profileHandler.UpdateMyProfile)
		protected.POST("/profile/children", profileHandler.AddChild)
		protected.POST("/profile/picture", profileHandler.UploadProfilePicture)

		// Записи на курсы
		protected.POST("/courses/:id/enroll", courseHandler.Enroll)
		protected.DELETE("/courses/:id/enroll", courseHandler.Unenroll)
		protected.POST("/courses/:id/complete", courseHandler.CompleteCourse)
		protected.GET("/courses/:id/enrolled", courseHandler.IsEnrolled)
		protected.GET("/enrollments", courseHandler.MyEnrollments)
		protected.GET("/enrollments/active", courseHandler.ActiveEnrollment)
		protected.GET("/enrollments/completed", courseHandler.CompletedEnrollments)

		// Уроки
		protected.GET("/courses/:id/lessons", courseHandler.ListLessons)
		protected.GET("/courses/:id/lessons/current", courseHandler.CurrentLesson)
		protected.GET("/lessons/:id", courseHandler.GetLesson)
		protected.GET("/lessons/:id/videos", videoHandler.ListLessonVideos)

		// Домашние видео
		protected.POST("/lessons/:id/homework/upload-url", videoHandler.HomeworkUploadURL)
		protected.POST("/lessons/:id/homework/confirm", videoHandler.ConfirmHomeworkUpload)

		// Прогресс просмотра
		protected.PUT("/videos/:id/progress", videoHandler.UpdateProgress)
		protected.POST("/videos/:id/complete", videoHandler.MarkAsCompleted)
		protected.GET("/videos/:id/progress", videoHandler.GetProgress)
		protected.GET("/videos/:id/stream", videoHandler.StreamVideo)
		protected.DELETE("/videos/:id", videoHandler.DeleteVideo)
		protected.GET("/video-categories", videoHandler.ListCategories)

		// Отчеты об уроках
		protected.POST("/lessons/:id/report", reportHandler.SaveReport)
		protected.GET("/lessons/:id/report", reportHandler.MyReport)
		protected.GET("/reports", reportHandler.MyReports)
		protected.GET("/lessons/:id/reports/community", reportHandler.CommunityReports)

		// Оценки и отзывы
		protected.POST("/courses/:id/rate", ratingHandler.RateCourse)
		protected.POST("/courses/:id/review", ratingHandler.ReviewCourse)
		protected.POST("/reviews/:id/like", ratingHandler.ToggleLike)
		protected.DELETE("/reviews/:id", ratingHandler.DeleteReview)
	}

	// Маршруты администратора
	admin := api.Group("/admin")
	admin.Use(handlers.AuthMiddleware(authService))
	admin.Use(handlers.RequireTypes(models.UserTypeAdministrator))
	{
		admin.POST("/courses", courseHandler.CreateCourse)
		admin.PUT("/courses/:id", courseHandler.UpdateCourse)
		admin.DELETE("/courses/:id", courseHandler.DeleteCourse)
		admin.POST("/lessons/:id/videos", videoHandler.UploadLessonVideo)
	}

	// Маршруты кураторов и администраторов
	staff := api.Group("/staff")
	staff.Use(handlers.AuthMiddleware(authService))
	staff.Use(handlers.RequireTypes(models.UserTypeAdministrator, models.UserTypeCurator))
	{
		staff.GET("/lessons/:id/reports", reportHandler.FullReports)
		staff.GET("/lessons/:id/reports/:parentId", reportHandler.FullReportByParent)
	}

	addr := cfg.Host + ":" + cfg.Port
	appLogger.Infow("starting server", "addr", addr, "mode", cfg.Mode)
	if err := router.Run(addr); err != nil {
		appLogger.Fatalw("server stopped", "error", err)
	}
}
