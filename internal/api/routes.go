package api

import (
	"brandops/internal/api/middleware"
	"brandops/internal/api/registry"
	"brandops/internal/routes"
	"net/http"

	_ "brandops/docs/swagger"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func (s *Server) registerRoutes() {
	s.echo.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "BrandOps API")
	})
	// Health check
	// @Summary Health check
	// @Description Check if the server is running
	// @Accept json
	// @Produce json
	// @Success 200 {object} map[string]string "OK"
	// @Router /health [get]
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	// API v1 group
	api := s.echo.Group("/api/v1")
	auth := middleware.NewAuthMiddleware(s.config.JWT.Secret)
	api.Use(auth.Middleware())

	// Hybrid dashboard permission and session surface
	routes.SetupDashboardRoutes(api, s.perms, s.redis)

	// CRUD routes for the tenant hierarchy
	registry.RegisterCRUDRoutes(api, s.db, s.perms)
}
