package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"brandops/internal/models"

	playgroundvalidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// ValidationErrors wraps the validator's ValidationErrors
type ValidationErrors []playgroundvalidator.FieldError

// CustomValidator wraps go-playground/validator
type CustomValidator struct {
	validator *playgroundvalidator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() echo.Validator {
	v := playgroundvalidator.New()

	// Register custom validation tags
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Register custom validations
	err := v.RegisterValidation("dashboard_type", validateDashboardType)
	if err != nil {
		return nil
	}
	err = v.RegisterValidation("dashboard_role", validateDashboardRole)
	if err != nil {
		return nil
	}
	err = v.RegisterValidation("audit_action", validateAuditAction)
	if err != nil {
		return nil
	}
	err = v.RegisterValidation("module_action", validateModuleAction)
	if err != nil {
		return nil
	}

	return &CustomValidator{validator: v}
}

// Custom validation functions
func validateDashboardType(fl playgroundvalidator.FieldLevel) bool {
	return models.IsValidDashboardType(models.DashboardType(fl.Field().String()))
}

func validateDashboardRole(fl playgroundvalidator.FieldLevel) bool {
	return models.IsValidDashboardRole(models.DashboardRole(fl.Field().String()))
}

func validateAuditAction(fl playgroundvalidator.FieldLevel) bool {
	return models.IsValidAuditAction(models.AuditAction(fl.Field().String()))
}

func validateModuleAction(fl playgroundvalidator.FieldLevel) bool {
	switch models.ModuleAction(fl.Field().String()) {
	case models.ModuleActionRead, models.ModuleActionWrite, models.ModuleActionDelete, models.ModuleActionAdmin:
		return true
	default:
		return false
	}
}

// Validate implements echo.Validator interface
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		var validationErrors playgroundvalidator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return ValidationErrors(validationErrors)
		}
		return err
	}
	return nil
}

// Error implements the error interface for ValidationErrors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}
	var fields []string
	for _, err := range ve {
		fields = append(fields, err.Field())
	}
	return fmt.Sprintf("validation failed on fields: %s", strings.Join(fields, ", "))
}

// SwitchDashboardRequest Request validation structs for the dashboard surface
type SwitchDashboardRequest struct {
	DashboardType string `json:"dashboardType" validate:"required,dashboard_type"`
	BrandContext  string `json:"brandContext" validate:"omitempty,max=128"`
	Reason        string `json:"reason" validate:"omitempty,max=512"`
}

type BrandSwitchRequest struct {
	ToBrand string `json:"toBrand" validate:"required,max=128"`
	Reason  string `json:"reason" validate:"omitempty,max=512"`
}

type GrantsRequest struct {
	Role    string              `json:"role" validate:"required,dashboard_role"`
	Modules map[string][]string `json:"modules" validate:"omitempty,dive,dive,module_action"`
	Actions []string            `json:"actions"`
}

type CrossPlatformRequest struct {
	AllowedBrands []string `json:"allowedBrands" validate:"omitempty,dive,max=128"`
	AllowedStores []string `json:"allowedStores" validate:"omitempty,dive,max=128"`
	DataSharing   bool     `json:"dataSharing"`
}

type HybridRequest struct {
	CanSwitchBetweenDashboards bool `json:"canSwitchBetweenDashboards"`
	CrossPlatformDataAccess    bool `json:"crossPlatformDataAccess"`
	BrandContextSwitching      bool `json:"brandContextSwitching"`
	GlobalAdminAccess          bool `json:"globalAdminAccess"`
}

// UpdatePermissionsRequest is a partial update: only non-nil blocks are
// applied, so an admin can flip one gate without restating the whole record.
type UpdatePermissionsRequest struct {
	CanAccessCompanyDashboard *bool                 `json:"canAccessCompanyDashboard"`
	CanAccessBrandDashboard   *bool                 `json:"canAccessBrandDashboard"`
	CompanyDashboard          *GrantsRequest        `json:"companyDashboardPermissions"`
	BrandDashboard            *GrantsRequest        `json:"brandDashboardPermissions"`
	CrossPlatform             *CrossPlatformRequest `json:"crossPlatformAccess"`
	Hybrid                    *HybridRequest        `json:"hybridPermissions"`
	TimeoutExempt             *bool                 `json:"timeoutExempt"`
	PermissionType            string                `json:"permissionType" validate:"required,max=64"`
	Reason                    string                `json:"reason" validate:"omitempty,max=512"`
}

type CompanyRequest struct {
	Name string `json:"name" validate:"required,min=2"`
	Slug string `json:"slug" validate:"required,min=2,max=64"`
}

type BrandRequest struct {
	CompanyID string `json:"companyId" validate:"required,uuid"`
	Name      string `json:"name" validate:"required,min=2"`
	Slug      string `json:"slug" validate:"required,min=2,max=64"`
	IsActive  bool   `json:"isActive"`
}

type StoreRequest struct {
	BrandID  string `json:"brandId" validate:"required,uuid"`
	Name     string `json:"name" validate:"required,min=2"`
	Slug     string `json:"slug" validate:"required,min=2,max=64"`
	Address  string `json:"address"`
	IsActive bool   `json:"isActive"`
}
