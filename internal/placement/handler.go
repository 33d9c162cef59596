package placement

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"PlacementPortal/internal/identity"
	"PlacementPortal/pkg/apperrors"
	"PlacementPortal/pkg/response"
)

// Handler exposes the placement record endpoints.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(c echo.Context) error {
	filter := ListFilter{
		Status:   Status(c.QueryParam("status")),
		Industry: Industry(c.QueryParam("industry")),
		Student:  c.QueryParam("student"),
	}
	filter.Page, _ = strconv.Atoi(c.QueryParam("page"))
	filter.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	filter.Page, filter.Limit = response.NormalizePage(filter.Page, filter.Limit)
	if v := c.QueryParam("verified"); v != "" {
		verified := v == "true"
		filter.Verified = &verified
	}

	records, total, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Paginated(c, records,
		&response.Pagination{Page: filter.Page, Limit: filter.Limit, Total: total})
}

func (h *Handler) Get(c echo.Context) error {
	rec, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, rec)
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, apperrors.Validation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, apperrors.FromValidation(err))
	}
	rec, err := h.service.Create(c.Request().Context(), identity.FromContext(c), req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, rec)
}

func (h *Handler) Update(c echo.Context) error {
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, apperrors.Validation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, apperrors.FromValidation(err))
	}
	rec, err := h.service.Update(c.Request().Context(), identity.FromContext(c), c.Param("id"), req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, rec)
}

func (h *Handler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), identity.FromContext(c), c.Param("id")); err != nil {
		return response.Error(c, err)
	}
	return response.Message(c, http.StatusOK, "placement record deleted")
}

func (h *Handler) Verify(c echo.Context) error {
	rec, err := h.service.Verify(c.Request().Context(), identity.FromContext(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, rec)
}
