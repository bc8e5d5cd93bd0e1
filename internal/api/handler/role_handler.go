package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/backoffice/users-api/internal/core/domain"
	"github.com/backoffice/users-api/internal/core/service"
)

// RoleHandler exposes the read-only roles lookup table.
type RoleHandler struct {
	service *service.RoleService
}

func NewRoleHandler(service *service.RoleService) *RoleHandler {
	return &RoleHandler{service: service}
}

// List handles GET /api/roles.
func (h *RoleHandler) List(c echo.Context) error {
	roles, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, okList("roles retrieved", roles, len(roles)))
}

// GetByID handles GET /api/roles/:id.
func (h *RoleHandler) GetByID(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return domain.Invalid("invalid role id", "id")
	}

	role, err := h.service.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if role == nil {
		return domain.NotFound("role", id)
	}
	return c.JSON(http.StatusOK, ok("role retrieved", role))
}
