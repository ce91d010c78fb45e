package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"anoa.com/collegetrack/pkg/apperror"
	"anoa.com/collegetrack/pkg/ratelimiter"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	ResponseError(c, err)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestResponseError_Sentinels(t *testing.T) {
	cases := map[error]int{
		fmt.Errorf("application not found: %w", apperror.ErrNotFound): http.StatusNotFound,
		fmt.Errorf("nope: %w", apperror.ErrForbidden):                 http.StatusForbidden,
		fmt.Errorf("dup: %w", apperror.ErrConflict):                   http.StatusConflict,
		fmt.Errorf("bad: %w", apperror.ErrInvalidTransition):          http.StatusBadRequest,
		apperror.New(http.StatusServiceUnavailable, "off", nil):        http.StatusServiceUnavailable,
	}
	for err, code := range cases {
		w := render(err)
		assert.Equal(t, code, w.Code, err.Error())
		assert.Equal(t, err.Error(), errorBody(t, w))
	}
}

func TestResponseError_HidesInternalErrors(t *testing.T) {
	w := render(errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", errorBody(t, w))
}

func TestResponseError_RateLimit(t *testing.T) {
	w := render(&ratelimiter.RateLimitError{Message: "slow down", RetryAfter: 42 * time.Second})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "42", w.Header().Get("Retry-After"))
	assert.Equal(t, "slow down", errorBody(t, w))
}

func TestResponseError_MalformedJSON(t *testing.T) {
	var v struct{ A int }
	err := json.Unmarshal([]byte(`{"A": "x"}`), &v)
	w := render(err)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "malformed request body", errorBody(t, w))

	for _, body := range []string{"", `{"A": 1`} {
		err := json.NewDecoder(strings.NewReader(body)).Decode(&v)
		require.Error(t, err)
		w := render(err)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, "malformed request body", errorBody(t, w))
	}
}

func TestGetUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, err := GetUserID(c)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	c.Set("user_id", "not-a-uuid")
	_, err = GetUserID(c)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	id := uuid.New()
	c.Set("user_id", id.String())
	got, err := GetUserID(c)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}
