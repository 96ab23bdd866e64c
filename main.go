package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"atelier-backend/bootstrap"
	"atelier-backend/common"
	"atelier-backend/config"
	"atelier-backend/database"
	"atelier-backend/middleware"
	authAPI "atelier-backend/modules/auth/delivery/api"
	authRepo "atelier-backend/modules/auth/repository"
	authUC "atelier-backend/modules/auth/usecase"
	customerAPI "atelier-backend/modules/customer/delivery/api"
	customerRepo "atelier-backend/modules/customer/repository"
	customerUC "atelier-backend/modules/customer/usecase"
	inquiryAPI "atelier-backend/modules/inquiry/delivery/api"
	inquiryRepo "atelier-backend/modules/inquiry/repository"
	inquiryUC "atelier-backend/modules/inquiry/usecase"
	mediaAPI "atelier-backend/modules/media/delivery/api"
	mediaRepo "atelier-backend/modules/media/repository"
	mediaUC "atelier-backend/modules/media/usecase"
	orderAPI "atelier-backend/modules/order/delivery/api"
	orderRepo "atelier-backend/modules/order/repository"
	orderUC "atelier-backend/modules/order/usecase"
	productAPI "atelier-backend/modules/product/delivery/api"
	productRepo "atelier-backend/modules/product/repository"
	productUC "atelier-backend/modules/product/usecase"
	roleAPI "atelier-backend/modules/role/delivery/api"
	roleRepo "atelier-backend/modules/role/repository"
	roleUC "atelier-backend/modules/role/usecase"
	userAPI "atelier-backend/modules/user/delivery/api"
	userRepo "atelier-backend/modules/user/repository"
	userUC "atelier-backend/modules/user/usecase"
	"atelier-backend/pkg/cache"
	"atelier-backend/pkg/email"
	"atelier-backend/pkg/log"
	"atelier-backend/pkg/notify"
	"atelier-backend/pkg/upload"
	"atelier-backend/validator"
)

func main() {
	// Parse command line flags
	envPath := flag.String("env-file", "", "ENV config file path")
	yamlPath := flag.String("config", "./config/config.yml", "ENV config file path")
	flag.Parse()

	configPaths := []string{*yamlPath}
	if *envPath == "" {
		fmt.Printf("App is starting with config path is '%s' and no load env file\n", *yamlPath)
	} else {
		fmt.Printf("App is starting with config path is '%s' and env path is '%s'...\n", *yamlPath, *envPath)
		configPaths = append(configPaths, *envPath)
	}

	cfg, err := config.Load(configPaths...)
	if err != nil {
		panic(fmt.Errorf("failed to load config: %w", err))
	}

	if err = config.Validate(cfg); err != nil {
		panic(fmt.Errorf("invalid config: %w", err))
	}

	// Initialize logger
	var logger log.Logger
	if cfg.App().IsProduction() {
		logger = log.MustNewProductionLogger(cfg.App().Name(), cfg.App().Version())
	} else {
		logger = log.MustNewDevelopmentLogger()
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			fmt.Printf("Failed to sync logger: %v\n", err)
		}
	}()

	// Set logger for common package using adapter and as default logger
	loggerAdapter := common.NewLoggerAdapter(logger)
	common.SetLogger(loggerAdapter)
	log.SetDefaultLogger(logger)

	logger.Info("Application starting",
		log.String("name", cfg.App().Name()),
		log.String("version", cfg.App().Version()),
		log.String("environment", cfg.App().Environment()),
		log.String("config_path", *yamlPath),
	)

	db, err := database.Connect(cfg.Database(), logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", log.Error(err))
	}

	if err = database.MigrateDB(db); err != nil {
		logger.Fatal("Failed to migrate database", log.Error(err))
	}

	logger.Info("Database connected and migrated successfully")

	// Initialize cache for rate limiting
	cacheConfig := &cache.Config{
		Host:       cfg.Redis().Host(),
		Port:       cfg.Redis().Port(),
		Password:   cfg.Redis().Password(),
		DB:         cfg.Redis().DB(),
		DefaultTTL: 5 * time.Minute,
	}

	cacheFactory := cache.NewCacheFactory(loggerAdapter)
	redisCache, err := cacheFactory.CreateCache(cache.Redis, cacheConfig)
	if err != nil {
		logger.Fatal("Failed to create Redis cache for rate limiting", log.Error(err))
	}
	defer redisCache.Close()

	logger.Info("Redis cache connected successfully for rate limiting")

	// Initialize file storage
	uploadClient, err := upload.New(upload.Provider(cfg.Upload().Provider()), &upload.Config{
		LocalDir:      cfg.Upload().LocalDir(),
		S3AccessKey:   cfg.Upload().S3AccessKey(),
		S3SecretKey:   cfg.Upload().S3SecretKey(),
		S3EndpointURL: cfg.Upload().S3EndpointURL(),
		S3BucketName:  cfg.Upload().S3BucketName(),
		S3PathPrefix:  cfg.Upload().S3PathPrefix(),
		S3Region:      cfg.Upload().S3Region(),
	})
	if err != nil {
		logger.Fatal("Failed to initialize upload client", log.Error(err))
	}

	// Initialize email client
	emailClient, err := email.GetClientFromConfig(&email.Config{
		Provider:         cfg.Email().Provider(),
		DefaultFrom:      cfg.Email().From(),
		SESRegion:        cfg.Email().SESRegion(),
		SESAccessKey:     cfg.Email().SESAccessKey(),
		SESSecretKey:     cfg.Email().SESSecretKey(),
		SendGridAPIKey:   cfg.Email().SendGridAPIKey(),
		SendGridFromName: cfg.Email().FromName(),
	}, loggerAdapter)
	if err != nil {
		logger.Fatal("Failed to initialize email client", log.Error(err))
	}

	// Initialize repositories
	users := userRepo.NewUserRepository(db)
	roles := roleRepo.NewRoleRepository(db)
	customers := customerRepo.NewCustomerRepository(db)
	products := productRepo.NewProductRepository(db)
	orders := orderRepo.NewOrderRepository(db)
	inquiries := inquiryRepo.NewInquiryRepository(db)
	sessions := authRepo.NewSessionRepository(db)
	files := mediaRepo.NewFileRepository(db, cfg.Server(), cfg.Upload(), uploadClient)
	fileLinks := mediaRepo.NewFileLinkRepository(db)

	bcryptHasher := common.NewBcryptHasher()

	// Seed built-in roles and the superadmin account
	if err := bootstrap.SeedRoles(context.Background(), roles, logger); err != nil {
		logger.Fatal("Failed to seed built-in roles", log.Error(err))
	}
	if err := bootstrap.SeedSuperadmin(context.Background(), users, roles, bcryptHasher, cfg.App(), logger); err != nil {
		logger.Fatal("Failed to seed superadmin account", log.Error(err))
	}

	// Initialize usecases
	inquiryNotifier := notify.NewEmailNotifier(emailClient, cfg.Email().From())

	userUsecase := userUC.NewUserUsecase(users, roles, bcryptHasher)
	roleUsecase := roleUC.NewRoleUsecase(roles, users)
	customerUsecase := customerUC.NewCustomerUsecase(customers, orders, bcryptHasher)
	productUsecase := productUC.NewProductUsecase(products, orders)
	orderUsecase := orderUC.NewOrderUsecase(orders, customers, products)
	inquiryUsecase := inquiryUC.NewInquiryUsecase(inquiries, inquiryNotifier, logger)
	mediaUsecase := mediaUC.NewMediaUsecase(files, fileLinks, uploadClient, "media")

	jwtProvider := common.NewJWTProvider(cfg.App())
	authUsecase := authUC.NewAuthUsecase(
		sessions,
		users,
		customers,
		jwtProvider,
		bcryptHasher,
		cfg.App().RefreshTokenExpiresIn(),
	)

	// Initialize dependencies for middlewares
	deps := middleware.Dependencies{
		Cache:        redisCache,
		Logger:       logger,
		JwtProvider:  jwtProvider,
		AuthResolver: authUsecase,
	}

	// Create middlewares instance
	middlewares := middleware.NewMiddlewares(deps)

	// Initialize handlers
	authHandler := authAPI.NewAuthHandler(authUsecase, middlewares)
	userHandler := userAPI.NewUserHandler(userUsecase, middlewares)
	roleHandler := roleAPI.NewRoleHandler(roleUsecase, middlewares)
	customerHandler := customerAPI.NewCustomerHandler(customerUsecase, middlewares)
	productHandler := productAPI.NewProductHandler(productUsecase, middlewares)
	orderHandler := orderAPI.NewOrderHandler(orderUsecase, middlewares)
	inquiryHandler := inquiryAPI.NewInquiryHandler(inquiryUsecase, middlewares)
	mediaHandler := mediaAPI.NewMediaHandler(mediaUsecase, middlewares)

	// Register custom validations before the router starts binding requests
	validator.RegisterValidatorWithGin()

	// Disable Gin's default logger and recovery
	gin.DisableConsoleColor()
	gin.SetMode(gin.ReleaseMode)

	// Create Gin server without default middleware
	r := gin.New()

	// Add custom middleware in order
	corsConfig := middleware.DefaultCORSConfig()
	if origins := cfg.Server().AllowedOrigins(); len(origins) > 0 {
		corsConfig.AllowOrigins = origins
	}
	r.Use(middlewares.CORSWithLogger(corsConfig))
	r.Use(middlewares.RequestIDMiddleware())

	// Add general rate limiting middleware
	r.Use(middlewares.RateLimitWithLogger(middleware.RateLimitConfig{
		WindowSize:  time.Minute,
		MaxRequests: 100,
		KeyPrefix:   "global:",
		SkipPaths:   []string{"/health", "/metrics"},
		// OnLimitReached is omitted - will use default handler
	}))

	// Body capture stays out of production, request bodies can carry
	// credentials and PII.
	if cfg.App().IsProduction() {
		r.Use(middlewares.LoggingMiddleware(middleware.LoggerConfig{
			SkipPaths: []string{"/health", "/metrics"},
		}))
	} else {
		r.Use(middlewares.DetailedLoggingMiddleware(middleware.LoggerConfig{
			SkipPaths:         []string{"/health", "/metrics"},
			EnableRequestBody: true,
			MaxBodySize:       1024,
		}))
	}
	r.Use(gin.Recovery())

	// Register routes
	apiGroup := r.Group("/api/v1")
	authHandler.RegisterRoutes(apiGroup)
	userHandler.RegisterRoutes(apiGroup)
	roleHandler.RegisterRoutes(apiGroup)
	customerHandler.RegisterRoutes(apiGroup)
	productHandler.RegisterRoutes(apiGroup)
	orderHandler.RegisterRoutes(apiGroup)
	inquiryHandler.RegisterRoutes(apiGroup)
	mediaHandler.RegisterRoutes(apiGroup)

	// Add health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "timestamp": time.Now().Unix()})
	})

	// Graceful shutdown setup
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server().Port()),
		Handler: r,
	}

	// Run server in goroutine
	go func() {
		logger.Info("Starting HTTP server",
			log.Int("port", cfg.Server().Port()),
			log.String("host", cfg.Server().Host()),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", log.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", log.Error(err))
	} else {
		logger.Info("Server exited gracefully")
	}
}
