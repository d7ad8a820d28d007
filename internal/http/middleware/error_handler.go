package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/hebammen-backend/internal/interface/http/response"
	"github.com/ignatzorin/hebammen-backend/internal/logger"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

// ErrorHandler обрабатывает ошибки, добавленные через c.Error, и паники хэндлеров.
// Внутренние подробности клиенту не отдаются.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.ForRequest(c).WithField("panic", r).Error("http: паника в обработчике")
				if !c.Writer.Written() {
					response.Error(c, apperror.New(apperror.ErrCodeInternal, "внутренняя ошибка сервера"))
				}
				c.Abort()
			}
		}()

		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		entry := logger.ForRequest(c).WithFields(logrus.Fields{"error": err.Error()})
		if code := apperror.CodeOf(err); code == "" || code == apperror.ErrCodeInternal || code == apperror.ErrCodeDatabaseError {
			entry.Error("http: ошибка запроса")
		} else {
			entry.Debug("http: ошибка запроса")
		}

		response.Error(c, err)
	}
}
