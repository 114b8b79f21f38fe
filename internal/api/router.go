package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/app"
	iauth "github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/handlers"
	"github.com/openshelf/openshelf/internal/middleware"
	"github.com/openshelf/openshelf/pkg/mail"
)

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config, gateway mail.Gateway) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if gateway == nil {
		return nil, fmt.Errorf("mail gateway must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	r.NoRoute(middleware.NotFoundHandler)

	// Health endpoint (public)
	r.GET("/health", handlers.Health(db))

	if cfg.Monitoring.Prometheus.Enabled {
		r.GET(cfg.Monitoring.Prometheus.Endpoint, gin.WrapH(promhttp.Handler()))
	}

	requireAuth := middleware.Auth(jwt)
	api := r.Group("/api")

	authHandler, err := handlers.NewAuthHandler(db, jwt)
	if err != nil {
		return nil, err
	}
	registerAuthRoutes(api, authHandler)

	bookHandler, err := handlers.NewBookHandler(db)
	if err != nil {
		return nil, err
	}
	registerBookRoutes(api, bookHandler)

	readerHandler, err := handlers.NewReaderHandler(db)
	if err != nil {
		return nil, err
	}
	registerReaderRoutes(api, readerHandler, requireAuth)

	lendingHandler, err := handlers.NewLendingHandler(db)
	if err != nil {
		return nil, err
	}
	registerLendingRoutes(api, lendingHandler)

	notificationHandler, err := handlers.NewNotificationHandler(db, gateway)
	if err != nil {
		return nil, err
	}
	registerNotificationRoutes(api, notificationHandler, requireAuth)

	return r, nil
}
