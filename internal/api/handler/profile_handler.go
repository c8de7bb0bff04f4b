package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/enersim/energy-simulator/internal/core/domain"
	"github.com/enersim/energy-simulator/internal/core/ports"
)

// ProfileHandler serves the caller's own user record.
type ProfileHandler struct {
	service ports.UserService
}

func NewProfileHandler(service ports.UserService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

type updateProfileRequest struct {
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Company string `json:"company,omitempty" validate:"max=128"`
	Country string `json:"country,omitempty" validate:"max=64"`
}

type profileResponse struct {
	Username  string   `json:"username"`
	Email     string   `json:"email,omitempty"`
	Company   string   `json:"company,omitempty"`
	Country   string   `json:"country,omitempty"`
	Roles     []string `json:"roles"`
	CreatedAt string   `json:"created_at,omitempty"`
}

func toProfileResponse(u *domain.User) profileResponse {
	resp := profileResponse{
		Username: u.Username,
		Email:    u.Email,
		Company:  u.Company,
		Country:  u.Country,
		Roles:    u.Roles,
	}
	if !u.CreatedAt.IsZero() {
		resp.CreatedAt = u.CreatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// Get handles GET /v1/profile.
//
// @Summary      Get own profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  map[string]interface{}
// @Router       /v1/profile [get]
func (h *ProfileHandler) Get(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	user, err := h.service.Profile(c.Request().Context(), identity.Username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProfileResponse(user))
}

// Update handles PUT /v1/profile. Password and roles are not editable here.
//
// @Summary      Update own profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Editable profile fields"
// @Success      200   {object}  profileResponse
// @Failure      400   {object}  map[string]interface{}
// @Failure      401   {object}  map[string]interface{}
// @Router       /v1/profile [put]
func (h *ProfileHandler) Update(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.service.UpdateProfile(c.Request().Context(), ports.UpdateProfileInput{
		Username: identity.Username,
		Email:    req.Email,
		Company:  req.Company,
		Country:  req.Country,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProfileResponse(user))
}
