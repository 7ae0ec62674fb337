package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"agent-order-service/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func statusFor(t *testing.T, err error) int {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondError(c, err)
	return w.Code
}

func TestRespondErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"order not found", models.ErrOrderNotFound, http.StatusNotFound},
		{"missing references", &models.NotFoundError{Resource: "product", IDs: []int64{3}}, http.StatusNotFound},
		{"unknown product", &models.UnknownProductError{ProductID: 3}, http.StatusNotFound},
		{"conflict", &models.ConflictError{Reason: "pricing entries already exist"}, http.StatusConflict},
		{"validation", models.NewValidationError("bad totals"), http.StatusBadRequest},
		{"wrapped validation", errorsWrap(models.NewValidationError("bad totals")), http.StatusBadRequest},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, statusFor(t, tc.err))
		})
	}
}

func errorsWrap(err error) error {
	return &wrappedErr{err}
}

type wrappedErr struct{ inner error }

func (w *wrappedErr) Error() string { return "context: " + w.inner.Error() }
func (w *wrappedErr) Unwrap() error { return w.inner }
