package routes

import (
	"time"

	"brandops/internal/api/middleware"
	"brandops/internal/handlers"
	"brandops/internal/permissions"
	"brandops/internal/tasks/rate"
	"brandops/internal/utils/logger"

	"github.com/labstack/echo/v4"
	goredis "github.com/redis/go-redis/v9"
)

// SetupDashboardRoutes wires the hybrid permission and session surface under
// /dashboard. The redis client may be nil; rate limiting is then disabled.
func SetupDashboardRoutes(api *echo.Group, svc *permissions.Service, redisClient *goredis.Client) {
	log := logger.New("dashboard_routes")

	var createLimiter, switchLimiter *rate.ActionRateLimiter
	if redisClient != nil {
		createLimiter = rate.NewActionRateLimiter(redisClient, rate.ActionConfig{
			Name: "dashboard_switch",
			RateLimit: rate.RateLimit{
				Window:    time.Minute,
				MaxEvents: 10,
			},
		})
		switchLimiter = rate.NewActionRateLimiter(redisClient, rate.ActionConfig{
			Name: "brand_switch",
			RateLimit: rate.RateLimit{
				Window:    time.Minute,
				MaxEvents: 30,
			},
		})
	} else {
		log.Warn("redis not configured, dashboard rate limiting disabled")
	}

	dashboardHandler := handlers.NewDashboardHandler(svc, createLimiter, switchLimiter)

	group := api.Group("/dashboard")

	group.GET("/access", dashboardHandler.GetAccess)
	group.POST("/switch", dashboardHandler.SwitchDashboard)
	group.GET("/session", dashboardHandler.GetSession)
	group.POST("/sessions/:id/brand-switch", dashboardHandler.SwitchBrand)
	group.DELETE("/sessions/:id", dashboardHandler.EndSession)

	group.GET("/permissions", dashboardHandler.GetPermissions)
	group.GET("/permissions/check", dashboardHandler.CheckPermission)
	group.POST("/permissions/refresh", dashboardHandler.RefreshPermissions)

	group.GET("/audit", dashboardHandler.GetAuditTrail)

	// Permission management and cross-user audit review are admin-only.
	adminGroup := group.Group("")
	adminGroup.Use(middleware.RequireGlobalAdmin(svc))
	adminGroup.PUT("/permissions/:userId", dashboardHandler.UpdatePermissions)
	adminGroup.GET("/audit/:userId", dashboardHandler.GetUserAuditTrail)

	log.Success("Dashboard routes initialized successfully")
}
