package router

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kpvarma/ecoas-forge-sub000/internal/coa/service"
	"github.com/kpvarma/ecoas-forge-sub000/internal/uploads"
)

// Envelope is the response wrapper of the template endpoints.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse is the body of a failed bare-JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, uploads.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, uploads.ErrInvalidDocument):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrConfirmationRequired):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func errorLabel(status int) string {
	return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}

// writeError sends err as bare JSON. Internal errors are logged and hidden.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		msg = "internal server error"
	}
	c.JSON(status, ErrorResponse{Error: errorLabel(status), Message: msg})
}

// writeEnvelopeError sends err wrapped as {success:false}.
func writeEnvelopeError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		msg = "internal server error"
	}
	c.JSON(status, Envelope{Success: false, Message: msg})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: err.Error()})
}

// intQuery parses an optional integer query parameter.
func intQuery(c *gin.Context, name string) (*int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errors.New("invalid '" + name + "' query parameter, must be an integer")
	}
	return &v, nil
}

// boolQuery parses an optional boolean query parameter.
func boolQuery(c *gin.Context, name string, def bool) (bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.New("invalid '" + name + "' query parameter, must be a boolean")
	}
	return v, nil
}

// pageQuery reads page and page_size.
func pageQuery(c *gin.Context) (page, pageSize *int, err error) {
	if page, err = intQuery(c, "page"); err != nil {
		return nil, nil, err
	}
	if pageSize, err = intQuery(c, "page_size"); err != nil {
		return nil, nil, err
	}
	return page, pageSize, nil
}

// bindOptionalJSON binds a JSON body when there is one.
func bindOptionalJSON(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
