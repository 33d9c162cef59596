package identity

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"PlacementPortal/pkg/apperrors"
	"PlacementPortal/pkg/response"
)

// Handler exposes the auth and user directory endpoints.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, apperrors.Validation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, apperrors.FromValidation(err))
	}
	res, err := h.service.Register(c.Request().Context(), req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, res)
}

func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, apperrors.Validation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, apperrors.FromValidation(err))
	}
	res, err := h.service.Login(c.Request().Context(), req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, res)
}

func (h *Handler) List(c echo.Context) error {
	filter := ListFilter{
		Role:       Role(c.QueryParam("role")),
		Department: c.QueryParam("department"),
	}
	filter.Page, _ = strconv.Atoi(c.QueryParam("page"))
	filter.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	filter.Page, filter.Limit = response.NormalizePage(filter.Page, filter.Limit)
	filter.Year, _ = strconv.Atoi(c.QueryParam("year"))
	if v := c.QueryParam("isActive"); v != "" {
		active := v == "true"
		filter.IsActive = &active
	}

	users, total, stats, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Paginated(c, map[string]interface{}{"users": users, "stats": stats},
		&response.Pagination{Page: filter.Page, Limit: filter.Limit, Total: total})
}

func (h *Handler) Get(c echo.Context) error {
	user, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, user)
}

func (h *Handler) Update(c echo.Context) error {
	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, apperrors.Validation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, apperrors.FromValidation(err))
	}
	user, err := h.service.UpdateProfile(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, user)
}

func (h *Handler) ChangePassword(c echo.Context) error {
	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, apperrors.Validation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, apperrors.FromValidation(err))
	}
	if err := h.service.ChangePassword(c.Request().Context(), FromContext(c), c.Param("id"), req); err != nil {
		return response.Error(c, err)
	}
	return response.Message(c, http.StatusOK, "password updated")
}

func (h *Handler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), FromContext(c), c.Param("id")); err != nil {
		return response.Error(c, err)
	}
	return response.Message(c, http.StatusOK, "user deleted")
}

func (h *Handler) SetStatus(c echo.Context) error {
	var req SetStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, apperrors.Validation("invalid request body"))
	}
	user, err := h.service.SetStatus(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, user)
}

func (h *Handler) SetRole(c echo.Context) error {
	var req SetRoleRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, apperrors.Validation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, apperrors.FromValidation(err))
	}
	user, err := h.service.SetRole(c.Request().Context(), FromContext(c), c.Param("id"), req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, user)
}
