package pkg

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"PlacementPortal/internal/analytics"
	"PlacementPortal/internal/chatbot"
	"PlacementPortal/internal/config"
	"PlacementPortal/internal/identity"
	"PlacementPortal/internal/placement"
	"PlacementPortal/internal/training"
	"PlacementPortal/pkg/middleware"
	"PlacementPortal/pkg/response"
)

// PortalModule wires the whole application: config, storage, services,
// handlers, middleware and the HTTP server.
var PortalModule = fx.Module("portal",
	fx.Provide(
		config.New,
		config.NewLogger,
		config.NewMongoDatabase,
		config.NewMailer,
		identity.NewTokenManager,
		identity.NewRepository,
		identity.NewService,
		identity.NewHandler,
		middleware.NewAuthenticator,
		placement.NewRepository,
		placement.NewService,
		placement.NewHandler,
		training.NewRepository,
		training.NewService,
		training.NewHandler,
		analytics.NewRepository,
		analytics.NewService,
		analytics.NewHandler,
		chatbot.NewService,
		chatbot.NewHandler,
		NewEchoServer,
	),
	fx.Invoke(RegisterRoutes),
)

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// NewEchoServer builds the echo instance with the shared middleware stack and
// ties start/stop to the fx lifecycle.
func NewEchoServer(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: validator.New()}

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(requestLogger(logger))
	e.Use(response.Middleware(logger, cfg.IsDevelopment()))

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("starting http server", zap.String("port", cfg.Port))
			go func() {
				if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
					logger.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("shutting down http server")
			return e.Shutdown(ctx)
		},
	})
	return e
}

// requestLogger emits one structured line per request. The bearer token is
// never part of the line.
func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			logger.Info("http_request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return err
		}
	}
}

// RegisterRoutes declares the HTTP surface. Route-level policy chains run
// after authentication; ownership rules that depend on document fields live
// in the services.
func RegisterRoutes(
	e *echo.Echo,
	auth *middleware.Authenticator,
	identityHandler *identity.Handler,
	placementHandler *placement.Handler,
	trainingHandler *training.Handler,
	analyticsHandler *analytics.Handler,
	chatbotHandler *chatbot.Handler,
) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	e.POST("/auth/register", identityHandler.Register)
	e.POST("/auth/login", identityHandler.Login)

	users := e.Group("/users", auth.Authenticate)
	users.GET("", identityHandler.List, middleware.Chain(middleware.RequireRole(identity.RoleAdmin)))
	users.GET("/:id", identityHandler.Get, middleware.Chain(middleware.RequireSelfOrAdmin(middleware.PathParam("id"))))
	users.PUT("/:id", identityHandler.Update, middleware.Chain(middleware.RequireSelfOrAdmin(middleware.PathParam("id"))))
	users.PUT("/:id/password", identityHandler.ChangePassword, middleware.Chain(middleware.RequireSelfOrAdmin(middleware.PathParam("id"))))
	users.DELETE("/:id", identityHandler.Delete, middleware.Chain(middleware.RequireRole(identity.RoleAdmin)))
	users.PUT("/:id/status", identityHandler.SetStatus, middleware.Chain(middleware.RequireRole(identity.RoleAdmin)))
	users.PUT("/:id/role", identityHandler.SetRole, middleware.Chain(middleware.RequireRole(identity.RoleAdmin)))

	e.GET("/placements", placementHandler.List, auth.Optional)
	e.GET("/placements/:id", placementHandler.Get, auth.Optional)
	placements := e.Group("/placements", auth.Authenticate)
	placements.POST("", placementHandler.Create)
	placements.PUT("/:id", placementHandler.Update)
	placements.DELETE("/:id", placementHandler.Delete)
	placements.POST("/:id/verify", placementHandler.Verify,
		middleware.Chain(middleware.RequirePrivilegedRole(identity.RolePlacementOfficer)))

	e.GET("/training", trainingHandler.List, auth.Optional)
	e.GET("/training/:id", trainingHandler.Get, auth.Optional)
	trainingGroup := e.Group("/training", auth.Authenticate)
	trainingGroup.POST("", trainingHandler.Create,
		middleware.Chain(middleware.RequirePrivilegedRole(identity.RoleFaculty)))
	trainingGroup.PUT("/:id", trainingHandler.Update,
		middleware.Chain(middleware.RequirePrivilegedRole(identity.RoleFaculty)))
	trainingGroup.DELETE("/:id", trainingHandler.Delete,
		middleware.Chain(middleware.RequirePrivilegedRole(identity.RoleFaculty)))
	trainingGroup.POST("/:id/enroll", trainingHandler.Enroll)
	trainingGroup.PUT("/:id/progress", trainingHandler.Progress)
	trainingGroup.POST("/:id/drop", trainingHandler.Drop)
	trainingGroup.POST("/:id/feedback", trainingHandler.Feedback)

	admin := e.Group("/admin", auth.Authenticate)
	admin.GET("/dashboard", analyticsHandler.Dashboard, middleware.Chain(middleware.RequireRole(identity.RoleAdmin)))
	admin.GET("/analytics/users", analyticsHandler.Users, middleware.Chain(middleware.RequireRole(identity.RoleAdmin)))
	admin.GET("/analytics/placements", analyticsHandler.Placements,
		middleware.Chain(middleware.RequireRole(identity.RoleAdmin, identity.RolePlacementOfficer)))
	admin.GET("/analytics/training", analyticsHandler.Training, middleware.Chain(middleware.RequireRole(identity.RoleAdmin)))
	admin.GET("/analytics/trends", analyticsHandler.Trends, middleware.Chain(middleware.RequireRole(identity.RoleAdmin)))

	chat := e.Group("/chatbot", auth.Authenticate)
	chat.POST("/ask", chatbotHandler.Ask)
}
