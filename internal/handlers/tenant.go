package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"uk.co.dudmesh.courier/internal/model"
)

func CreateTenant(tenants TenantService) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := &model.CreateTenantParams{}
		if err := c.Bind(params); err != nil {
			return httpError(c, model.ErrorInvalidInput)
		}
		tenant, err := tenants.Create(params)
		if err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusCreated, tenant)
	}
}

func ListTenants(tenants TenantService) echo.HandlerFunc {
	return func(c echo.Context) error {
		all, err := tenants.List()
		if err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusOK, all)
	}
}

func GetTenant(tenants TenantService) echo.HandlerFunc {
	return func(c echo.Context) error {
		tenant, err := tenants.Fetch(model.TenantID(c.Param("id")))
		if err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusOK, tenant)
	}
}

// GetOwnTenant returns the authenticated caller's record, provider
// credentials included.
func GetOwnTenant() echo.HandlerFunc {
	return func(c echo.Context) error {
		tenant, err := tenantFromContext(c)
		if err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusOK, tenant)
	}
}

func UpdateTenant(tenants TenantService) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := &model.UpdateTenantParams{}
		if err := c.Bind(params); err != nil {
			return httpError(c, model.ErrorInvalidInput)
		}
		tenant, err := tenants.Update(model.TenantID(c.Param("id")), params)
		if err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusOK, tenant)
	}
}

func DeleteTenant(tenants TenantService) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := tenants.Delete(model.TenantID(c.Param("id"))); err != nil {
			return httpError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
