package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/backoffice/users-api/internal/api/metrics"
	"github.com/backoffice/users-api/internal/core/domain"
	"github.com/backoffice/users-api/internal/core/ports"
)

// UserHandler exposes the user CRUD and login endpoints. All failures are
// returned to Echo and rendered by the central error translator.
type UserHandler struct {
	service ports.UserService
	audit   ports.AuditRepository
}

func NewUserHandler(service ports.UserService, audit ports.AuditRepository) *UserHandler {
	return &UserHandler{service: service, audit: audit}
}

// Create handles POST /api/users.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      createUserRequest  true  "User details"
// @Success      201   {object}  envelope
// @Failure      400   {object}  errorEnvelope
// @Failure      409   {object}  errorEnvelope
// @Router       /api/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.service.Create(c.Request().Context(), toCreateInput(req))
	if err != nil {
		return err
	}

	metrics.UsersCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, ok("user created", user))
}

// List handles GET /api/users.
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, okList("users retrieved", users, len(users)))
}

// GetByID handles GET /api/users/:id.
func (h *UserHandler) GetByID(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return err
	}

	user, err := h.service.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.NotFound("user", id)
	}
	return c.JSON(http.StatusOK, ok("user retrieved", user))
}

// GetByEmail handles GET /api/users/email/:email.
func (h *UserHandler) GetByEmail(c echo.Context) error {
	email := c.Param("email")

	user, err := h.service.GetByEmail(c.Request().Context(), email)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.NotFound("user", nil)
	}
	return c.JSON(http.StatusOK, ok("user retrieved", user))
}

// Update handles PUT /api/users/:id with partial-update semantics.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	user, err := h.service.Update(c.Request().Context(), id, toUpdateInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok("user updated", user))
}

// Delete handles DELETE /api/users/:id.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope{Success: true, Message: "user deleted"})
}

// Login handles POST /api/users/login.
//
// @Summary      Authenticate a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  envelope
// @Failure      401   {object}  errorEnvelope
// @Failure      429   {object}  errorEnvelope
// @Router       /api/users/login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, token, err := h.service.Authenticate(c.Request().Context(), ports.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	resp := ok("authentication successful", user)
	resp.Token = token
	return c.JSON(http.StatusOK, resp)
}

// Audit handles GET /api/users/:id/audit.
func (h *UserHandler) Audit(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return err
	}

	events, err := h.audit.FindByUserID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, okList("audit events retrieved", events, len(events)))
}

func parseID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, domain.Invalid("invalid user id", "id")
	}
	return id, nil
}

func loginResult(err error) string {
	switch {
	case domain.IsKind(err, domain.KindRateLimit):
		return "throttled"
	case domain.IsKind(err, domain.KindUnauthorized):
		if err.Error() == domain.MsgAccountInactive {
			return "inactive"
		}
		return "invalid"
	case domain.IsKind(err, domain.KindValidation):
		return "invalid"
	default:
		return "error"
	}
}
