package respond

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nan702ya/skt-ai-adoption-plan/pkg/core/simulation"
	"github.com/nan702ya/skt-ai-adoption-plan/pkg/models"
)

func TestFail(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"validation", fmt.Errorf("save: %w", &models.ValidationError{Entity: "design", Missing: []string{"manufacturer"}}), http.StatusBadRequest, `"missing":["manufacturer"]`},
		{"malformed", fmt.Errorf("%w: eof", models.ErrMalformedInput), http.StatusBadRequest, "malformed input"},
		{"invalid simulation input", fmt.Errorf("%w: no current plans", simulation.ErrInvalidInput), http.StatusBadRequest, "no current plans"},
		{"timeout", fmt.Errorf("query: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "timed out"},
		{"other", errors.New("connection reset"), http.StatusInternalServerError, "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			Fail(c, zap.NewNop(), tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestBind(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"ok", `{"name": "a"}`, false},
		{"unknown key", `{"name": "a", "age": 3}`, true},
		{"wrong type", `{"name": 3}`, true},
		{"empty", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var v struct {
				Name string `json:"name"`
			}
			err := Bind(c, &v)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "a", v.Name)
				return
			}
			assert.ErrorIs(t, err, models.ErrMalformedInput)
		})
	}
}
