package middleware

import (
	"errors"
	"net/http"

	"brandops/internal/models"
	"brandops/internal/permissions"

	"github.com/labstack/echo/v4"
)

// deny returns the uniform refusal. One generic message for every denial so
// responses never leak which gate or allow-list rejected the caller.
func deny() error {
	return echo.NewHTTPError(http.StatusForbidden, "access denied")
}

// RequireDashboard guards a route group behind dashboard access. The brand
// scope is taken from the brandId query parameter when present, falling back
// to the identity token's brand claim.
func RequireDashboard(svc *permissions.Service, dashboardType models.DashboardType) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := GetUserID(c)
			if userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing identity")
			}

			brandID := c.QueryParam("brandId")
			if brandID == "" {
				brandID = GetBrandID(c)
			}

			allowed, err := svc.CanAccessDashboard(c.Request().Context(), userID, dashboardType, brandID)
			if err != nil {
				if errors.Is(err, permissions.ErrInvalidInput) {
					return echo.NewHTTPError(http.StatusBadRequest, err.Error())
				}
				return echo.NewHTTPError(http.StatusServiceUnavailable, "permission check unavailable")
			}
			if !allowed {
				return deny()
			}

			return next(c)
		}
	}
}

// RequireModule guards a route behind a module/action grant on the given
// plane.
func RequireModule(svc *permissions.Service, module string, action models.ModuleAction, dashboardType models.DashboardType) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := GetUserID(c)
			if userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing identity")
			}

			allowed, err := svc.HasPermission(c.Request().Context(), userID, module, action, dashboardType)
			if err != nil {
				if errors.Is(err, permissions.ErrInvalidInput) {
					return echo.NewHTTPError(http.StatusBadRequest, err.Error())
				}
				return echo.NewHTTPError(http.StatusServiceUnavailable, "permission check unavailable")
			}
			if !allowed {
				return deny()
			}

			return next(c)
		}
	}
}

// RequireGlobalAdmin guards the permission-management surface: only a
// principal with the GlobalAdminAccess capability may change other users'
// records.
func RequireGlobalAdmin(svc *permissions.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := GetUserID(c)
			if userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing identity")
			}

			record, err := svc.Engine.GetUserPermissions(c.Request().Context(), userID)
			if err != nil {
				if errors.Is(err, permissions.ErrInvalidInput) {
					return echo.NewHTTPError(http.StatusBadRequest, err.Error())
				}
				return echo.NewHTTPError(http.StatusServiceUnavailable, "permission check unavailable")
			}
			if record == nil || !record.Hybrid.Data().GlobalAdminAccess {
				return deny()
			}

			return next(c)
		}
	}
}
