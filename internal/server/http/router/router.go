package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/qrloyalty/internal/metrics"
	"github.com/polkiloo/qrloyalty/internal/pkg/ratelimit"
	"github.com/polkiloo/qrloyalty/internal/server/http/handlers"
	"github.com/polkiloo/qrloyalty/internal/server/http/middleware"
)

var customerReadLimit = ratelimit.Limit{RequestsPerMinute: 120, Burst: 20}

// Setup configures gin router with handlers and middleware.
// A nil collector set disables request metrics and the /metrics endpoint.
func Setup(facade handlers.LoyaltyFacade, collectors *metrics.Metrics, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	var observer middleware.RequestObserver
	if collectors != nil {
		observer = collectors
	}

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger, observer))
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithDecompressFn(gzip.DefaultDecompressHandle)))

	authHandler := handlers.NewAuthHandler(facade)
	businessHandler := handlers.NewBusinessHandler(facade)
	workflowHandler := handlers.NewWorkflowHandler(facade)
	customerHandler := handlers.NewCustomerHandler(facade)
	healthHandler := handlers.NewHealthHandler(facade)

	if collectors != nil {
		engine.GET("/metrics", gin.WrapH(collectors.Handler()))
	}

	api := engine.Group("/api")
	api.GET("/healthz", healthHandler.Check)
	api.POST("/scan", workflowHandler.Scan)

	customers := api.Group("/customers/:customerID")
	customers.Use(middleware.RateLimit(ratelimit.New(customerReadLimit)))
	customers.GET("/profile", customerHandler.Profile)
	customers.GET("/businesses/:businessID/balance", customerHandler.Balance)
	customers.GET("/businesses/:businessID/transactions", customerHandler.Transactions)
	customers.GET("/businesses/:businessID/stats", customerHandler.Stats)

	operator := api.Group("/operator")
	operator.POST("/register", authHandler.Register)
	operator.POST("/login", authHandler.Login)

	operatorAuth := operator.Group("")
	operatorAuth.Use(middleware.AuthRequired(facade))
	operatorAuth.GET("/me", authHandler.Me)
	operatorAuth.POST("/businesses", businessHandler.Create)
	operatorAuth.GET("/businesses", businessHandler.List)
	operatorAuth.GET("/businesses/:businessID/tiers", businessHandler.Tiers)
	operatorAuth.PUT("/businesses/:businessID/tiers", businessHandler.ReplaceTiers)
	operatorAuth.GET("/workflow", workflowHandler.Current)
	operatorAuth.POST("/workflow/input", workflowHandler.Input)
	operatorAuth.POST("/workflow/cancel", workflowHandler.Cancel)

	return engine
}
