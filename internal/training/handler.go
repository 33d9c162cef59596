package training

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"PlacementPortal/internal/identity"
	"PlacementPortal/pkg/apperrors"
	"PlacementPortal/pkg/response"
)

// Handler exposes the training program endpoints.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(c echo.Context) error {
	filter := ListFilter{
		Category: Category(c.QueryParam("category")),
		Level:    Level(c.QueryParam("level")),
		Status:   ProgramStatus(c.QueryParam("status")),
	}
	filter.Page, _ = strconv.Atoi(c.QueryParam("page"))
	filter.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	filter.Page, filter.Limit = response.NormalizePage(filter.Page, filter.Limit)
	if v := c.QueryParam("open"); v != "" {
		open := v == "true"
		filter.Open = &open
	}

	programs, total, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Paginated(c, programs,
		&response.Pagination{Page: filter.Page, Limit: filter.Limit, Total: total})
}

func (h *Handler) Get(c echo.Context) error {
	p, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, p)
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, apperrors.Validation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, apperrors.FromValidation(err))
	}
	p, err := h.service.Create(c.Request().Context(), identity.FromContext(c), req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, p)
}

func (h *Handler) Update(c echo.Context) error {
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, apperrors.Validation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, apperrors.FromValidation(err))
	}
	p, err := h.service.Update(c.Request().Context(), identity.FromContext(c), c.Param("id"), req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, p)
}

func (h *Handler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), identity.FromContext(c), c.Param("id")); err != nil {
		return response.Error(c, err)
	}
	return response.Message(c, http.StatusOK, "training program deleted")
}

func (h *Handler) Enroll(c echo.Context) error {
	p, err := h.service.Enroll(c.Request().Context(), identity.FromContext(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, p)
}

func (h *Handler) Progress(c echo.Context) error {
	var req ProgressRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, apperrors.Validation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, apperrors.FromValidation(err))
	}
	p, err := h.service.Progress(c.Request().Context(), identity.FromContext(c), c.Param("id"), req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, p)
}

func (h *Handler) Drop(c echo.Context) error {
	p, err := h.service.Drop(c.Request().Context(), identity.FromContext(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, p)
}

func (h *Handler) Feedback(c echo.Context) error {
	var req FeedbackRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, apperrors.Validation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, apperrors.FromValidation(err))
	}
	p, err := h.service.Feedback(c.Request().Context(), identity.FromContext(c), c.Param("id"), req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, p)
}
