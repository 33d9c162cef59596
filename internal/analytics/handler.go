package analytics

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"PlacementPortal/pkg/response"
)

// Handler exposes the admin analytics endpoints.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Dashboard(c echo.Context) error {
	dashboard, err := h.service.Dashboard(c.Request().Context(), Period(c.QueryParam("period")))
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, dashboard)
}

func (h *Handler) Users(c echo.Context) error {
	result, err := h.service.Users(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, result)
}

func (h *Handler) Placements(c echo.Context) error {
	result, err := h.service.Placements(c.Request().Context(), Period(c.QueryParam("period")))
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, result)
}

func (h *Handler) Training(c echo.Context) error {
	result, err := h.service.Training(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, result)
}

func (h *Handler) Trends(c echo.Context) error {
	result, err := h.service.Trends(c.Request().Context(), Period(c.QueryParam("period")))
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, result)
}
