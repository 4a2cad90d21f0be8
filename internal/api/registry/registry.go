package registry

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"brandops/internal/api/controllers"
	"brandops/internal/api/middleware"
	"brandops/internal/models"
	"brandops/internal/permissions"
	"brandops/internal/services"

	"gorm.io/gorm"
)

// 📝 RegisterCRUDRoutes registers CRUD routes for the tenant hierarchy - godoc
// @Summary Register CRUD routes for companies, brands and stores
// @Accept json
// @Produce json
func RegisterCRUDRoutes(g *echo.Group, db *gorm.DB, perms *permissions.Service) {
	// Companies live on the company dashboard plane.
	companyService := services.NewBaseService(db, models.Company{})
	companyController := controllers.NewBaseController(companyService)
	companyGroup := g.Group("/companies")
	companyGroup.Use(middleware.RequireModule(perms, "companies", models.ModuleActionRead, models.DashboardTypeCompany))

	// @Summary List companies
	// @Produce json
	// @Success 200 {array} models.Company
	// @Failure 403 {object} map[string]string "Forbidden"
	// @Router /api/v1/companies [get]
	companyGroup.GET("", companyController.List)
	// @Summary Get company
	// @Param id path string true "Company ID"
	// @Success 200 {object} models.Company
	// @Router /api/v1/companies/{id} [get]
	companyGroup.GET("/:id", companyController.Get)

	companyWriteGroup := companyGroup.Group("")
	companyWriteGroup.Use(middleware.RequireModule(perms, "companies", models.ModuleActionWrite, models.DashboardTypeCompany))
	// @Summary Create company
	// @Param company body models.Company true "Company object"
	// @Success 201 {object} models.Company
	// @Router /api/v1/companies [post]
	companyWriteGroup.POST("", companyController.Create)
	// @Summary Update company
	// @Param id path string true "Company ID"
	// @Success 200 {object} models.Company
	// @Router /api/v1/companies/{id} [put]
	companyWriteGroup.PUT("/:id", companyController.Update)

	companyDeleteGroup := companyGroup.Group("")
	companyDeleteGroup.Use(middleware.RequireModule(perms, "companies", models.ModuleActionDelete, models.DashboardTypeCompany))
	// @Summary Delete company
	// @Param id path string true "Company ID"
	// @Success 204 "No content"
	// @Router /api/v1/companies/{id} [delete]
	companyDeleteGroup.DELETE("/:id", companyController.Delete)

	// Brands are managed from the company dashboard.
	brandService := services.NewBaseService(db, models.Brand{})
	brandController := controllers.NewBaseController(brandService)
	brandGroup := g.Group("/brands")
	brandGroup.Use(middleware.RequireModule(perms, "brands", models.ModuleActionRead, models.DashboardTypeCompany))
	// @Summary List brands
	// @Success 200 {array} models.Brand
	// @Router /api/v1/brands [get]
	brandGroup.GET("", brandController.List)
	// @Summary Get brand
	// @Param id path string true "Brand ID"
	// @Success 200 {object} models.Brand
	// @Router /api/v1/brands/{id} [get]
	brandGroup.GET("/:id", brandController.Get)
	// @Summary Get brand by slug
	// @Description Resolve an active brand by the slug used in allow-lists and session contexts
	// @Param slug path string true "Brand slug"
	// @Success 200 {object} models.Brand
	// @Router /api/v1/brands/slug/{slug} [get]
	brandGroup.GET("/slug/:slug", func(c echo.Context) error {
		brand, err := models.GetBrandBySlug(c.Param("slug"), db)
		if err != nil {
			return echo.NewHTTPError(http.StatusNotFound, "entity not found")
		}
		return c.JSON(http.StatusOK, brand)
	})

	brandWriteGroup := brandGroup.Group("")
	brandWriteGroup.Use(middleware.RequireModule(perms, "brands", models.ModuleActionWrite, models.DashboardTypeCompany))
	// @Summary Create brand
	// @Success 201 {object} models.Brand
	// @Router /api/v1/brands [post]
	brandWriteGroup.POST("", brandController.Create)
	// @Summary Update brand
	// @Param id path string true "Brand ID"
	// @Success 200 {object} models.Brand
	// @Router /api/v1/brands/{id} [put]
	brandWriteGroup.PUT("/:id", brandController.Update)
	// @Summary Delete brand
	// @Param id path string true "Brand ID"
	// @Success 204 "No content"
	// @Router /api/v1/brands/{id} [delete]
	brandWriteGroup.DELETE("/:id", brandController.Delete)

	// Stores belong to the brand dashboard plane; listings are additionally
	// pinned to the caller's brand context by the controller scope filter.
	storeService := services.NewBaseService(db, models.Store{})
	storeController := controllers.NewBaseController(storeService)
	storeGroup := g.Group("/stores")
	storeGroup.Use(middleware.RequireDashboard(perms, models.DashboardTypeBrand))
	storeGroup.Use(middleware.RequireModule(perms, "stores", models.ModuleActionRead, models.DashboardTypeBrand))
	// @Summary List stores
	// @Success 200 {array} models.Store
	// @Router /api/v1/stores [get]
	storeGroup.GET("", storeController.List)
	// @Summary Get store
	// @Param id path string true "Store ID"
	// @Success 200 {object} models.Store
	// @Router /api/v1/stores/{id} [get]
	storeGroup.GET("/:id", storeController.Get)
	// @Summary Get store by slug
	// @Param slug path string true "Store slug"
	// @Success 200 {object} models.Store
	// @Router /api/v1/stores/slug/{slug} [get]
	storeGroup.GET("/slug/:slug", func(c echo.Context) error {
		store, err := models.GetStoreBySlug(c.Param("slug"), db)
		if err != nil {
			return echo.NewHTTPError(http.StatusNotFound, "entity not found")
		}
		return c.JSON(http.StatusOK, store)
	})

	storeWriteGroup := storeGroup.Group("")
	storeWriteGroup.Use(middleware.RequireModule(perms, "stores", models.ModuleActionWrite, models.DashboardTypeBrand))
	// @Summary Create store
	// @Success 201 {object} models.Store
	// @Router /api/v1/stores [post]
	storeWriteGroup.POST("", storeController.Create)
	// @Summary Update store
	// @Param id path string true "Store ID"
	// @Success 200 {object} models.Store
	// @Router /api/v1/stores/{id} [put]
	storeWriteGroup.PUT("/:id", storeController.Update)
	// @Summary Delete store
	// @Param id path string true "Store ID"
	// @Success 204 "No content"
	// @Router /api/v1/stores/{id} [delete]
	storeWriteGroup.DELETE("/:id", storeController.Delete)
}
