package response

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"PlacementPortal/pkg/apperrors"
)

const (
	loggerKey = "responseLogger"
	debugKey  = "responseDebug"
)

// Middleware attaches the logger and environment flag Error relies on. In
// development the wrapped cause is echoed to the client; in production it is
// only logged.
func Middleware(logger *zap.Logger, development bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(loggerKey, logger)
			c.Set(debugKey, development)
			return next(c)
		}
	}
}

// NormalizePage clamps list paging to the values the services actually serve.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

// Envelope is the uniform response contract: success always present, data on
// success, message and field errors on failure.
type Envelope struct {
	Success    bool                   `json:"success"`
	Data       interface{}            `json:"data,omitempty"`
	Message    string                 `json:"message,omitempty"`
	Errors     []apperrors.FieldError `json:"errors,omitempty"`
	Pagination *Pagination            `json:"pagination,omitempty"`
}

// Pagination describes list slicing metadata.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// JSON sends a success response.
func JSON(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, Envelope{Success: true, Data: data})
}

// Created sends a 201 with the created resource.
func Created(c echo.Context, data interface{}) error {
	return JSON(c, http.StatusCreated, data)
}

// Paginated sends a success response with pagination metadata.
func Paginated(c echo.Context, data interface{}, p *Pagination) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Pagination: p})
}

// Message sends a success response carrying only a message.
func Message(c echo.Context, status int, message string) error {
	return c.JSON(status, Envelope{Success: true, Message: message})
}

// Error normalises err into the envelope. A wrapped cause is logged and, in
// development only, appended to the outward message; production responses
// stay redacted.
func Error(c echo.Context, err error) error {
	appErr := apperrors.FromError(err)
	message := appErr.Message
	if appErr.Err != nil {
		if logger, ok := c.Get(loggerKey).(*zap.Logger); ok {
			logger.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.String("code", appErr.Code),
				zap.Error(appErr.Err),
			)
		}
		if debug, ok := c.Get(debugKey).(bool); ok && debug {
			message = fmt.Sprintf("%s: %v", appErr.Message, appErr.Err)
		}
	}
	return c.JSON(appErr.Status, Envelope{Success: false, Message: message, Errors: appErr.Fields})
}
