package handlers

import (
	"errors"
	"net/http"
	"strconv"

	apivalidator "brandops/internal/api/validator"
	"brandops/internal/api/middleware"
	"brandops/internal/models"
	"brandops/internal/permissions"
	"brandops/internal/tasks/rate"
	"brandops/internal/utils"
	"brandops/internal/utils/logger"

	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"
)

// DashboardHandler exposes the hybrid permission and session surface. Every
// route assumes the auth middleware already placed a verified identity in
// the context; the handler only does authorization, never authentication.
type DashboardHandler struct {
	svc           *permissions.Service
	createLimiter *rate.ActionRateLimiter
	switchLimiter *rate.ActionRateLimiter
	log           *logger.Logger
}

func NewDashboardHandler(svc *permissions.Service, createLimiter, switchLimiter *rate.ActionRateLimiter) *DashboardHandler {
	return &DashboardHandler{
		svc:           svc,
		createLimiter: createLimiter,
		switchLimiter: switchLimiter,
		log:           logger.New("dashboard_handler"),
	}
}

// mapPermissionError translates the permission taxonomy to HTTP. Denials get
// one generic message regardless of which gate refused; faults map to 503 so
// clients can tell an outage from a refusal.
func mapPermissionError(err error) error {
	switch {
	case errors.Is(err, permissions.ErrAccessDenied):
		return echo.NewHTTPError(http.StatusForbidden, "access denied")
	case errors.Is(err, permissions.ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, permissions.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, permissions.ErrStoreFault):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "permission store unavailable")
	default:
		return err
	}
}

// GetAccess godoc
// @Summary Check dashboard access
// @Description Answer whether the caller may enter a dashboard, optionally scoped to a brand
// @Accept json
// @Produce json
// @Param type query string true "Dashboard type (company or brand)"
// @Param brandId query string false "Brand scope"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 503 {object} map[string]string "Store unavailable"
// @Router /api/v1/dashboard/access [get]
func (h *DashboardHandler) GetAccess(c echo.Context) error {
	userID := middleware.GetUserID(c)
	dashboardType := models.DashboardType(c.QueryParam("type"))
	brandID := c.QueryParam("brandId")

	allowed, err := h.svc.CanAccessDashboard(c.Request().Context(), userID, dashboardType, brandID)
	if err != nil {
		return mapPermissionError(err)
	}

	return c.JSON(http.StatusOK, map[string]bool{"allowed": allowed})
}

// SwitchDashboard godoc
// @Summary Switch to a dashboard
// @Description Create a fresh dashboard session, ending any other active one
// @Accept json
// @Produce json
// @Param request body validator.SwitchDashboardRequest true "Switch request"
// @Success 201 {object} models.DashboardSession
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 429 {object} map[string]string "Too many requests"
// @Router /api/v1/dashboard/switch [post]
func (h *DashboardHandler) SwitchDashboard(c echo.Context) error {
	userID := middleware.GetUserID(c)

	req := new(apivalidator.SwitchDashboardRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	if h.createLimiter != nil {
		ok, err := h.createLimiter.Allow(c.Request().Context(), userID)
		if err != nil {
			h.log.Warn("rate limiter unavailable, allowing request: %v", err)
		} else if !ok {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many session switches")
		}
	}

	session, err := h.svc.SwitchToDashboard(
		c.Request().Context(),
		userID,
		models.DashboardType(req.DashboardType),
		req.BrandContext,
		permissions.RequestMeta{
			IPAddress: utils.GetIPAddress(c.Request()),
			Reason:    req.Reason,
		},
	)
	if err != nil {
		return mapPermissionError(err)
	}

	return c.JSON(http.StatusCreated, session)
}

// SwitchBrand godoc
// @Summary Switch brand context
// @Description Move an active session to a new brand context
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body validator.BrandSwitchRequest true "Brand switch request"
// @Success 200 {object} models.DashboardSession
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /api/v1/dashboard/sessions/{id}/brand-switch [post]
func (h *DashboardHandler) SwitchBrand(c echo.Context) error {
	userID := middleware.GetUserID(c)
	sessionID := c.Param("id")

	req := new(apivalidator.BrandSwitchRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	if h.switchLimiter != nil {
		ok, err := h.switchLimiter.Allow(c.Request().Context(), userID)
		if err != nil {
			h.log.Warn("rate limiter unavailable, allowing request: %v", err)
		} else if !ok {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many brand switches")
		}
	}

	switched, err := h.svc.SwitchBrand(c.Request().Context(), sessionID, req.ToBrand, req.Reason)
	if err != nil {
		return mapPermissionError(err)
	}
	if !switched {
		return echo.NewHTTPError(http.StatusForbidden, "access denied")
	}

	session := h.svc.CurrentSession()
	if session == nil || session.ID != sessionID {
		return c.JSON(http.StatusOK, map[string]bool{"switched": true})
	}
	return c.JSON(http.StatusOK, session)
}

// EndSession godoc
// @Summary End a session
// @Description Terminate a dashboard session; ending an already ended session is a no-op
// @Param id path string true "Session ID"
// @Success 204 "No content"
// @Router /api/v1/dashboard/sessions/{id} [delete]
func (h *DashboardHandler) EndSession(c echo.Context) error {
	sessionID := c.Param("id")

	if err := h.svc.EndSession(c.Request().Context(), sessionID); err != nil {
		return mapPermissionError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// GetSession godoc
// @Summary Get current session
// @Produce json
// @Success 200 {object} models.DashboardSession
// @Failure 404 {object} map[string]string "No active session"
// @Router /api/v1/dashboard/session [get]
func (h *DashboardHandler) GetSession(c echo.Context) error {
	userID := middleware.GetUserID(c)

	session, err := h.svc.Store.GetActiveSession(c.Request().Context(), userID)
	if err != nil {
		return mapPermissionError(err)
	}
	if session == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no active session")
	}

	return c.JSON(http.StatusOK, session)
}

// GetPermissions godoc
// @Summary Get own permission record
// @Produce json
// @Success 200 {object} models.UserPermission
// @Failure 404 {object} map[string]string "No permission record"
// @Router /api/v1/dashboard/permissions [get]
func (h *DashboardHandler) GetPermissions(c echo.Context) error {
	userID := middleware.GetUserID(c)

	record, err := h.svc.Engine.GetUserPermissions(c.Request().Context(), userID)
	if err != nil {
		return mapPermissionError(err)
	}
	if record == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no permission record")
	}

	return c.JSON(http.StatusOK, record)
}

// CheckPermission godoc
// @Summary Check a module/action grant
// @Produce json
// @Param module query string true "Module name"
// @Param action query string true "Action (read, write, delete, admin)"
// @Param type query string false "Dashboard type; defaults to the current session's plane"
// @Success 200 {object} map[string]bool
// @Router /api/v1/dashboard/permissions/check [get]
func (h *DashboardHandler) CheckPermission(c echo.Context) error {
	userID := middleware.GetUserID(c)
	module := c.QueryParam("module")
	action := models.ModuleAction(c.QueryParam("action"))
	dashboardType := models.DashboardType(c.QueryParam("type"))

	allowed, err := h.svc.HasPermission(c.Request().Context(), userID, module, action, dashboardType)
	if err != nil {
		return mapPermissionError(err)
	}

	return c.JSON(http.StatusOK, map[string]bool{"allowed": allowed})
}

// RefreshPermissions godoc
// @Summary Refresh own cached permissions
// @Success 204 "No content"
// @Router /api/v1/dashboard/permissions/refresh [post]
func (h *DashboardHandler) RefreshPermissions(c echo.Context) error {
	userID := middleware.GetUserID(c)

	if err := h.svc.RefreshPermissions(c.Request().Context(), userID); err != nil {
		return mapPermissionError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// UpdatePermissions godoc
// @Summary Update a user's permission record
// @Description Apply a partial permission update with attribution; admin only
// @Accept json
// @Produce json
// @Param userId path string true "Target user ID"
// @Param request body validator.UpdatePermissionsRequest true "Permission update"
// @Success 200 {object} models.UserPermission
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /api/v1/dashboard/permissions/{userId} [put]
func (h *DashboardHandler) UpdatePermissions(c echo.Context) error {
	adminID := middleware.GetUserID(c)
	targetID := c.Param("userId")

	req := new(apivalidator.UpdatePermissionsRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	change := permissions.PermissionChange{
		ChangedBy:      adminID,
		PermissionType: req.PermissionType,
		Reason:         req.Reason,
		IPAddress:      utils.GetIPAddress(c.Request()),
	}

	record, err := h.svc.Engine.UpdatePermissions(c.Request().Context(), targetID, change, func(record *models.UserPermission) {
		if req.CanAccessCompanyDashboard != nil {
			record.CanAccessCompanyDashboard = *req.CanAccessCompanyDashboard
		}
		if req.CanAccessBrandDashboard != nil {
			record.CanAccessBrandDashboard = *req.CanAccessBrandDashboard
		}
		if req.CompanyDashboard != nil {
			record.CompanyDashboard = datatypes.NewJSONType(grantsFromRequest(req.CompanyDashboard))
		}
		if req.BrandDashboard != nil {
			record.BrandDashboard = datatypes.NewJSONType(grantsFromRequest(req.BrandDashboard))
		}
		if req.CrossPlatform != nil {
			record.CrossPlatform = datatypes.NewJSONType(models.CrossPlatformAccess{
				AllowedBrands: req.CrossPlatform.AllowedBrands,
				AllowedStores: req.CrossPlatform.AllowedStores,
				DataSharing:   req.CrossPlatform.DataSharing,
			})
		}
		if req.Hybrid != nil {
			record.Hybrid = datatypes.NewJSONType(models.HybridPermissions{
				CanSwitchBetweenDashboards: req.Hybrid.CanSwitchBetweenDashboards,
				CrossPlatformDataAccess:    req.Hybrid.CrossPlatformDataAccess,
				BrandContextSwitching:      req.Hybrid.BrandContextSwitching,
				GlobalAdminAccess:          req.Hybrid.GlobalAdminAccess,
			})
		}
		if req.TimeoutExempt != nil {
			record.TimeoutExempt = *req.TimeoutExempt
		}
	})
	if err != nil {
		return mapPermissionError(err)
	}

	return c.JSON(http.StatusOK, record)
}

func grantsFromRequest(req *apivalidator.GrantsRequest) models.DashboardGrants {
	grants := models.DashboardGrants{
		Role:    models.DashboardRole(req.Role),
		Modules: map[string][]models.ModuleAction{},
		Actions: req.Actions,
	}
	for module, actions := range req.Modules {
		converted := make([]models.ModuleAction, 0, len(actions))
		for _, a := range actions {
			converted = append(converted, models.ModuleAction(a))
		}
		grants.Modules[module] = converted
	}
	return grants
}

// GetAuditTrail godoc
// @Summary Get the caller's audit trail
// @Produce json
// @Param limit query int false "Max entries (default 50, cap 500)"
// @Success 200 {array} models.PermissionAuditLog
// @Router /api/v1/dashboard/audit [get]
func (h *DashboardHandler) GetAuditTrail(c echo.Context) error {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	entries, err := h.svc.AuditTrail(c.Request().Context(), userID, limit)
	if err != nil {
		return mapPermissionError(err)
	}

	return c.JSON(http.StatusOK, entries)
}

// GetUserAuditTrail godoc
// @Summary Get another user's audit trail
// @Description Admin only
// @Produce json
// @Param userId path string true "Target user ID"
// @Param limit query int false "Max entries (default 50, cap 500)"
// @Success 200 {array} models.PermissionAuditLog
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /api/v1/dashboard/audit/{userId} [get]
func (h *DashboardHandler) GetUserAuditTrail(c echo.Context) error {
	targetID := c.Param("userId")
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	entries, err := h.svc.AuditTrail(c.Request().Context(), targetID, limit)
	if err != nil {
		return mapPermissionError(err)
	}

	return c.JSON(http.StatusOK, entries)
}
