package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

func render(fn func(c *gin.Context)) (*httptest.ResponseRecorder, Response) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	fn(c)

	var body Response
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestError_BookingCodesPassThrough(t *testing.T) {
	w, body := render(func(c *gin.Context) { Error(c, apperror.ErrDuplicateActive) })

	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "already_active", body.Error.Code)
	assert.False(t, body.Success)

	w, body = render(func(c *gin.Context) { Error(c, apperror.ErrRequestCooldown) })
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "cooldown_24h", body.Error.Code)
}

func TestError_HidesInternalDetails(t *testing.T) {
	w, body := render(func(c *gin.Context) { Error(c, errors.New("pq: relation bookings does not exist")) })
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, string(apperror.ErrCodeInternal), body.Error.Code)
	assert.NotContains(t, w.Body.String(), "pq:")

	dbErr := apperror.Wrap(errors.New("conn refused"), apperror.ErrCodeDatabaseError, "не удалось сохранить бронирование")
	w, body = render(func(c *gin.Context) { Error(c, dbErr) })
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, internalErrorMessage, body.Error.Message)
}

func TestPaginated_HasMore(t *testing.T) {
	w, _ := render(func(c *gin.Context) { Paginated(c, []int{1, 2}, 5, 2, 0) })

	var body PaginatedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Pagination.HasMore)
	assert.Equal(t, 5, body.Pagination.Total)
}
