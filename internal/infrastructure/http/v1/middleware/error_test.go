package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailops/internal/core/apperror"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, handler gin.HandlerFunc) (int, map[string]any) {
	t.Helper()
	r := gin.New()
	r.Use(Recovery(), Trace(), ErrorHandler())
	r.GET("/x", handler)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec.Code, body
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:    "app error",
			err:     apperror.NewNotFound("purchase", "p-1"),
			status:  http.StatusNotFound,
			code:    apperror.CodeNotFound,
			message: "purchase not found",
		},
		{
			name:   "wrapped app error",
			err:    fmt.Errorf("load: %w", apperror.NewInsufficientStock("p-1", 5, 2)),
			status: http.StatusConflict,
			code:   apperror.CodeInsufficientStock,
		},
		{
			name:    "internal app error hides cause",
			err:     apperror.NewInternal(errors.New("pq: relation missing")),
			status:  http.StatusInternalServerError,
			code:    apperror.CodeInternal,
			message: "Internal server error",
		},
		{
			name:    "plain error",
			err:     errors.New("boom"),
			status:  http.StatusInternalServerError,
			code:    apperror.CodeInternal,
			message: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := serve(t, func(c *gin.Context) {
				_ = c.Error(tt.err)
				c.Abort()
			})
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body["code"])
			if tt.message != "" {
				assert.Equal(t, tt.message, body["message"])
			}
			assert.NotContains(t, fmt.Sprint(body), "relation missing")
		})
	}
}

func TestRecovery(t *testing.T) {
	status, body := serve(t, func(c *gin.Context) {
		panic("nil map")
	})
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, apperror.CodeInternal, body["code"])
	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, details["request_id"])
}
