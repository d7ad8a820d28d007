package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/ignatzorin/hebammen-backend/internal/interface/http/response"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

// RateLimitMiddleware ограничивает количество запросов с одного IP.
// По умолчанию: 10 запросов в минуту.
func RateLimitMiddleware(limit int64, period time.Duration) gin.HandlerFunc {
	return rateLimit(limit, period, "ip", func(c *gin.Context) string {
		return c.ClientIP()
	})
}

// UserRateLimitMiddleware ограничивает запросы аутентифицированного пользователя.
// Ставится после AuthMiddleware; без пользователя считает по IP.
func UserRateLimitMiddleware(limit int64, period time.Duration) gin.HandlerFunc {
	return rateLimit(limit, period, "user", func(c *gin.Context) string {
		if id, ok := c.Get(ContextUserIDKey); ok {
			if userID, ok := id.(uuid.UUID); ok {
				return userID.String()
			}
		}
		return c.ClientIP()
	})
}

func rateLimit(limit int64, period time.Duration, prefix string, keyFn func(c *gin.Context) string) gin.HandlerFunc {
	if limit <= 0 {
		limit = 10
	}
	if period <= 0 {
		period = time.Minute
	}

	instance := limiter.New(memory.NewStore(), limiter.Rate{Period: period, Limit: limit})

	return func(c *gin.Context) {
		lctx, err := instance.Get(c.Request.Context(), prefix+":"+keyFn(c))
		if err != nil {
			response.Error(c, apperror.Wrap(err, apperror.ErrCodeInternal, "внутренняя ошибка сервера"))
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

		if lctx.Reached {
			response.Error(c, apperror.New(apperror.ErrCodeRateLimited, "слишком много запросов, попробуйте позже"))
			c.Abort()
			return
		}

		c.Next()
	}
}
