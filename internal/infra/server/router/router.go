// Package router sets up the HTTP routing for the application.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finance-tracker/ledger/internal/integration/entrypoint/controller"
	"github.com/finance-tracker/ledger/internal/integration/entrypoint/middleware"
)

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine                *gin.Engine
	healthController      *controller.HealthController
	recurrenceController  *controller.RecurrenceController
	installmentController *controller.InstallmentController
	transactionController *controller.TransactionController
	triggerRateLimiter    *middleware.RateLimiter
	authMiddleware        *middleware.AuthMiddleware
	metricsHandler        http.Handler
}

// NewRouter creates a new router instance with all dependencies.
func NewRouter(
	healthController *controller.HealthController,
	recurrenceController *controller.RecurrenceController,
	installmentController *controller.InstallmentController,
	transactionController *controller.TransactionController,
	triggerRateLimiter *middleware.RateLimiter,
	authMiddleware *middleware.AuthMiddleware,
	metricsHandler http.Handler,
) *Router {
	return &Router{
		healthController:      healthController,
		recurrenceController:  recurrenceController,
		installmentController: installmentController,
		transactionController: transactionController,
		triggerRateLimiter:    triggerRateLimiter,
		authMiddleware:        authMiddleware,
		metricsHandler:        metricsHandler,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	// Set Gin mode based on environment
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if environment == "test" {
		gin.SetMode(gin.TestMode)
	}

	// Create router with default middleware (logger and recovery)
	r.engine = gin.Default()

	r.setupHealthRoutes()
	r.setupAPIRoutes()

	return r.engine
}

// Engine returns the configured engine, nil before Setup.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupHealthRoutes configures health check and metrics endpoints.
func (r *Router) setupHealthRoutes() {
	r.engine.GET("/health", r.healthController.Check)
	if r.metricsHandler != nil {
		r.engine.GET("/metrics", gin.WrapH(r.metricsHandler))
	}
}

// setupAPIRoutes configures the dashboard-scoped API routes.
func (r *Router) setupAPIRoutes() {
	v1 := r.engine.Group("/api/v1")
	if r.authMiddleware == nil {
		return
	}

	dashboard := v1.Group("/dashboards/:dashboardId")
	dashboard.Use(r.authMiddleware.Authenticate())

	if r.recurrenceController != nil {
		recurrences := dashboard.Group("/recurrences")
		{
			recurrences.GET("", r.recurrenceController.List)
			recurrences.POST("", r.recurrenceController.Create)

			// Manual trigger, rate limited per user and dashboard
			process := []gin.HandlerFunc{r.recurrenceController.Process}
			if r.triggerRateLimiter != nil {
				process = append([]gin.HandlerFunc{r.triggerRateLimiter.Middleware()}, process...)
			}
			recurrences.POST("/process", process...)

			recurrences.GET("/:id", r.recurrenceController.Get)
			recurrences.PUT("/:id", r.recurrenceController.Update)
			recurrences.DELETE("/:id", r.recurrenceController.Delete)
		}
	}

	if r.installmentController != nil {
		groups := dashboard.Group("/installment-groups")
		{
			groups.POST("", r.installmentController.Create)
			groups.GET("/:groupId", r.installmentController.Get)
			groups.PUT("/:groupId", r.installmentController.Update)
			groups.DELETE("/:groupId", r.installmentController.Delete)
		}
	}

	if r.transactionController != nil {
		dashboard.DELETE("/transactions", r.transactionController.BulkDelete)
	}
}
