package chatbot

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"PlacementPortal/pkg/apperrors"
	"PlacementPortal/pkg/response"
)

type askRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// Handler exposes the chatbot proxy endpoint.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Ask(c echo.Context) error {
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, apperrors.Validation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, apperrors.FromValidation(err))
	}
	answer := h.service.Ask(c.Request().Context(), req.Message)
	return response.JSON(c, http.StatusOK, answer)
}
