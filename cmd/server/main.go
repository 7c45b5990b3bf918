package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/docs"
	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/handler"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"
)

// @title Storefront API
// @version 1.0
// @description Catalog, checkout with promo codes, and the admin panel of the storefront.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	// Money is rendered as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	gormDB, err := db.NewMySQL(cfg.MySQLDSN, cfg.MySQLPool)
	if err != nil {
		logger.Fatal("database init", zap.Error(err))
	}

	if cfg.ResetDB {
		logger.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			logger.Warn("drop tables", zap.Error(err))
		}
	}

	if err := db.Migrate(gormDB); err != nil {
		logger.Fatal("auto-migrate", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer func() { _ = cacheClient.Close() }()
	if err := cacheClient.Ping(context.Background()); err != nil {
		logger.Warn("redis unreachable, token revocation disabled until it recovers", zap.Error(err))
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	categoryRepo := repository.NewCategoryRepository(gormDB)
	productRepo := repository.NewProductRepository(gormDB)
	promoRepo := repository.NewPromoCodeRepository(gormDB)
	orderRepo := repository.NewOrderRepository(gormDB)
	analyticsRepo := repository.NewAnalyticsRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore, logger.Named("auth"))
	userService := service.NewUserService(userRepo)
	productService := service.NewProductService(productRepo, categoryRepo)
	categoryService := service.NewCategoryService(categoryRepo, productRepo)
	promoService := service.NewPromoCodeService(promoRepo)
	orderService := service.NewOrderService(orderRepo, promoRepo, logger.Named("orders"))
	analyticsService := service.NewAnalyticsService(analyticsRepo)

	e := echo.New()
	e.HideBanner = true

	router.Register(e, cfg, logger.Named("http"), gormDB, cacheClient,
		router.Gate{
			JWT:        jwtService,
			TokenStore: tokenStore,
			Users:      userService,
			Logger:     logger.Named("gate"),
		},
		router.Handlers{
			Auth:       handler.NewAuthHandler(authService),
			Settings:   handler.NewSettingsHandler(authService, userService),
			Users:      handler.NewUserHandler(userService),
			Products:   handler.NewProductHandler(productService, categoryService),
			Categories: handler.NewCategoryHandler(categoryService),
			Orders:     handler.NewOrderHandler(orderService),
			PromoCodes: handler.NewPromoCodeHandler(promoService),
			Analytics:  handler.NewAnalyticsHandler(analyticsService),
		},
	)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}
	logger.Info("swagger documentation available", zap.String("url", swaggerURL(cfg.SwaggerHost)))

	go func() {
		addr := ":" + cfg.ServerPort
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsDevelopment() {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return logger
}

// swaggerURL builds the docs link; host may already carry a scheme.
func swaggerURL(host string) string {
	if host == "" {
		// docker-compose maps the container's 8080 to 5000
		return "http://localhost:5000/swagger/index.html"
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return strings.TrimSuffix(host, "/") + "/swagger/index.html"
}
