// Package respond holds the JSON envelope and error mapping shared by the
// HTTP handlers.
package respond

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/nan702ya/skt-ai-adoption-plan/pkg/core/simulation"
	"github.com/nan702ya/skt-ai-adoption-plan/pkg/models"
)

// maximum accepted request body
const maxBodyBytes = 8 << 20

type apiResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func Ok(c *gin.Context, data any, meta map[string]any) {
	c.JSON(http.StatusOK, apiResponse{
		Code:    0,
		Message: "ok",
		Data:    data,
		Meta:    meta,
	})
}

func Error(c *gin.Context, status int, message string, meta map[string]any) {
	c.JSON(status, apiResponse{
		Code:    status,
		Message: message,
		Meta:    meta,
	})
}

// Fail maps err to a status code: validation and malformed input give 400,
// an expired deadline 504, anything else 500. Server errors are logged.
func Fail(c *gin.Context, log *zap.Logger, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		Error(c, http.StatusBadRequest, verr.Error(), map[string]any{
			"missing": verr.Missing,
			"invalid": verr.Invalid,
		})
	case errors.Is(err, models.ErrMalformedInput), errors.Is(err, simulation.ErrInvalidInput):
		Error(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, context.DeadlineExceeded):
		Error(c, http.StatusGatewayTimeout, "storage timed out", nil)
	default:
		if log != nil {
			log.Error("request failed",
				zap.String("method", c.Request.Method),
				zap.String("path", c.FullPath()),
				zap.Error(err))
		}
		Error(c, http.StatusInternalServerError, "internal error", nil)
	}
}

// NotFound reports a missing record.
func NotFound(c *gin.Context, entity, id string) {
	Error(c, http.StatusNotFound, entity+" not found", map[string]any{"id": id})
}

// Bind decodes the JSON request body into v, rejecting unknown keys. Decode
// failures wrap models.ErrMalformedInput.
func Bind(c *gin.Context, v any) error {
	dec := json.NewDecoder(io.LimitReader(c.Request.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", models.ErrMalformedInput, err)
	}
	return nil
}

// Body reads the raw request body.
func Body(c *gin.Context) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedInput, err)
	}
	return data, nil
}
