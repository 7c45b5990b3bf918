package router

import (
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/config"
	apperrors "storefront/internal/errors"
	"storefront/internal/handler"
	"storefront/internal/service"
)

var errTokenRevoked = errors.New("token revoked")

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Auth       *handler.AuthHandler
	Settings   *handler.SettingsHandler
	Users      *handler.UserHandler
	Products   *handler.ProductHandler
	Categories *handler.CategoryHandler
	Orders     *handler.OrderHandler
	PromoCodes *handler.PromoCodeHandler
	Analytics  *handler.AnalyticsHandler
}

// Gate holds what the bearer-token middlewares need.
type Gate struct {
	JWT        *auth.JWTService
	TokenStore auth.TokenStoreInterface
	Users      service.UserService
	Logger     *zap.Logger
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, logger *zap.Logger, db *gorm.DB, redis *cache.Client, gate Gate, h Handlers) {
	e.HTTPErrorHandler = ErrorHandler(cfg.IsDevelopment(), logger)
	e.Validator = NewCustomValidator()

	e.Use(middleware.RequestID())
	e.Use(RequestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	e.GET("/healthz", func(c echo.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return apperrors.Internal("database unavailable", err)
		}
		if err := sqlDB.PingContext(c.Request().Context()); err != nil {
			return apperrors.Internal("database unavailable", err)
		}
		status := map[string]string{"status": "ok", "redis": "ok"}
		if err := redis.Ping(c.Request().Context()); err != nil {
			status["redis"] = "unavailable"
		}
		return c.JSON(http.StatusOK, status)
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	requireUser := RequireUser(gate.JWT, gate.TokenStore, gate.Logger)
	requireAdmin := RequireAdmin(gate.Users)

	api := e.Group("/api")

	// Public routes
	api.POST("/signup", h.Auth.Signup)
	api.POST("/signin", h.Auth.Signin)
	api.GET("/products", h.Products.ListProducts)
	api.GET("/all-products", h.Products.ListProducts)
	api.GET("/product/:id", h.Products.GetProduct)
	api.GET("/category/:category", h.Products.CategoryProducts)
	api.GET("/search", h.Products.Search)
	api.GET("/categories", h.Products.ListCategories)
	api.POST("/admin/signin", h.Settings.AdminSignin)

	// Promo code evaluation sits behind the admin gate.
	api.GET("/promo-codes/validate", h.PromoCodes.ValidatePromoCode, requireUser, requireAdmin)

	// Customer routes
	secured := api.Group("", requireUser)
	secured.POST("/logout", h.Auth.Logout)
	secured.GET("/protected", h.Auth.Protected)
	secured.POST("/orders", h.Orders.CreateOrder)
	secured.GET("/orders", h.Orders.ListMyOrders)
	secured.GET("/orders/:orderId", h.Orders.GetOrder)

	// Admin routes
	admin := api.Group("/admin", requireUser, requireAdmin)
	admin.GET("/verify-token", h.Settings.VerifyToken)
	admin.GET("/me", h.Settings.Me)
	admin.PUT("/update-profile", h.Settings.UpdateProfile)

	admin.GET("/users", h.Users.ListUsers)
	admin.POST("/users", h.Users.CreateUser)
	admin.PUT("/users/:id", h.Users.UpdateUser)
	admin.DELETE("/users/:id", h.Users.DeleteUser)

	admin.POST("/products", h.Products.CreateProduct)
	admin.PUT("/products/:id", h.Products.UpdateProduct)
	admin.PUT("/products/:id/stock", h.Products.UpdateStock)
	admin.DELETE("/products/:id", h.Products.DeleteProduct)

	admin.POST("/categories", h.Categories.CreateCategory)
	admin.GET("/category/:id", h.Categories.CategoryProducts)
	admin.DELETE("/categories/:id", h.Categories.DeleteCategory)

	admin.GET("/orders", h.Orders.ListAllOrders)
	admin.PUT("/orders/:orderId", h.Orders.UpdateOrderStatus)
	admin.DELETE("/orders/:orderId", h.Orders.DeleteOrder)

	admin.GET("/promo-codes", h.PromoCodes.ListPromoCodes)
	admin.POST("/promo-codes", h.PromoCodes.CreatePromoCode)
	admin.GET("/promo-codes/validate", h.PromoCodes.ValidatePromoCode)
	admin.PUT("/promo-codes/:id", h.PromoCodes.UpdatePromoCode)
	admin.DELETE("/promo-codes/:id", h.PromoCodes.DeletePromoCode)

	analytics := admin.Group("/analytics")
	analytics.GET("/stats", h.Analytics.Stats)
	analytics.GET("/sales", h.Analytics.Sales)
	analytics.GET("/traffic", h.Analytics.Traffic)
	analytics.GET("/top-products", h.Analytics.TopProducts)
	analytics.GET("/recent-activity", h.Analytics.RecentActivity)
}

// RequireUser accepts a valid, unrevoked bearer token and stores its claims
// under handler.ClaimsContextKey.
func RequireUser(jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface, logger *zap.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  handler.ClaimsContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			claims, err := jwtService.ValidateToken(token)
			if err != nil {
				return nil, err
			}
			revoked, err := tokenStore.IsRevoked(c.Request().Context(), claims.ID)
			if err != nil {
				logger.Warn("revocation check failed", zap.String("jti", claims.ID), zap.Error(err))
			}
			if revoked {
				return nil, errTokenRevoked
			}
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return apperrors.ErrInvalidToken.Wrap(err)
		},
	})
}

// RequireAdmin loads the token's user and rejects anyone who is not the Admin.
// It must run after RequireUser.
func RequireAdmin(users service.UserService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(handler.ClaimsContextKey).(*auth.Claims)
			if !ok {
				return apperrors.ErrInvalidToken
			}
			id, err := claims.UserUUID()
			if err != nil {
				return apperrors.ErrInvalidToken
			}

			user, err := users.GetUser(c.Request().Context(), id)
			if errors.Is(err, service.ErrUserNotFound) {
				return apperrors.ErrAdminRequired
			}
			if err != nil {
				return err
			}
			if !user.IsAdmin() {
				return apperrors.ErrAdminRequired
			}

			c.Set(handler.AdminContextKey, user)
			return next(c)
		}
	}
}

// RequestLogger emits one zap line per request.
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			if v.Status >= http.StatusInternalServerError {
				logger.Error("request", fields...)
				return nil
			}
			logger.Info("request", fields...)
			return nil
		},
	})
}

// ErrorHandler renders every error as an errors.ErrorResponse.
func ErrorHandler(verbose bool, logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var httpErr *apperrors.HTTPError
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			httpErr = apperrors.NewHTTPError(echoErr.Code, messageOf(echoErr), statusCode(echoErr.Code))
		} else {
			httpErr = apperrors.MapErrorToHTTP(err, verbose)
		}
		if httpErr.StatusCode >= http.StatusInternalServerError {
			logger.Error("request failed", zap.String("uri", c.Request().RequestURI), zap.Error(err))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(httpErr.StatusCode)
		} else {
			err = c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
		}
		if err != nil {
			logger.Warn("write error response", zap.Error(err))
		}
	}
}

func messageOf(he *echo.HTTPError) string {
	if msg, ok := he.Message.(string); ok {
		return msg
	}
	return http.StatusText(he.Code)
}

// statusCode turns 404 into NOT_FOUND and so on.
func statusCode(status int) string {
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// NewCustomValidator returns the validator Register installs.
func NewCustomValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}
